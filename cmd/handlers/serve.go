package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"portfolio/internal/logger"
	"portfolio/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port        int
		host        string
		templateDir string
		reload      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server and blog API",
		Long: `Start the portfolio web server.

The server provides:
  • HTML pages: /, /blog, /blog/{slug}
  • JSON API: GET /api/blog, GET /api/blog/{slug}
  • Generation endpoint: GET|POST /api/blog/generate (Bearer BLOG_GENERATION_SECRET)
  • Health check: /health

Examples:
  # Start server on default port 8080
  portfolio serve

  # Start on custom port
  portfolio serve --port 3000

  # Edit templates on disk and reload them on change
  portfolio serve --template-dir ./internal/server/templates --reload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, templateDir, reload)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Template directory (default: templates built into the binary)")
	cmd.Flags().BoolVar(&reload, "reload", false, "Reload templates from --template-dir when they change")

	return cmd
}

func runServe(ctx context.Context, port int, host, templateDir string, reload bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Get()

	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	// Flags override the loaded server section.
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if templateDir != "" {
		cfg.Server.TemplateDir = templateDir
	}
	if reload {
		cfg.Server.DevMode = true
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Dependencies{
		Gateway:    a.gateway,
		Experience: a.experience,
		Generator:  svc,
		Limiters:   a.limiters(),
		Analytics:  a.analytics,
	})
	if err != nil {
		return err
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s", cfg.Server.Address()),
			"cms", cfg.CMS.Provider, "ai", cfg.AI.Provider, "environment", cfg.App.Environment)
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
