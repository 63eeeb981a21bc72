package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"portfolio/internal/cms"
	"portfolio/internal/config"
	"portfolio/internal/generator"
	"portfolio/internal/logger"
	"portfolio/internal/observability"
	"portfolio/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Limiters holds the per-policy rate limiters. A nil limiter disables that policy.
type Limiters struct {
	Generate ratelimit.Limiter
	API      ratelimit.Limiter
	Default  ratelimit.Limiter
}

// Dependencies are the collaborators the server routes requests to.
type Dependencies struct {
	Gateway    cms.Gateway
	// Experience supplies the home page work history; nil uses the built-in list.
	Experience cms.ExperienceSource
	Generator  *generator.Service
	Limiters   Limiters
	Analytics  *observability.PostHogClient
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     config.Server
	app        config.App
	blog       config.Blog
	posthog    config.PostHogConfig
	gateway    cms.Gateway
	experience cms.ExperienceSource
	generator  *generator.Service
	limiters   Limiters
	analytics  *observability.PostHogClient
	log        *slog.Logger
	renderer   *TemplateRenderer
	now        func() time.Time
}

// New creates a new HTTP server instance
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	log := logger.Get()

	renderer, err := NewTemplateRenderer(cfg.Server.DevMode, cfg.Server.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template renderer: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg.Server,
		app:       cfg.App,
		blog:      cfg.Blog,
		posthog:   cfg.Analytics.PostHog,
		gateway:    deps.Gateway,
		experience: deps.Experience,
		generator:  deps.Generator,
		limiters:   deps.Limiters,
		analytics:  deps.Analytics,
		log:        log,
		renderer:   renderer,
		now:        time.Now,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	return s, nil
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.config.RequestTimeoutDuration()))
	s.router.Use(securityHeaders)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/blog", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.limiters.Generate))
			r.Use(noCache)
			r.Get("/generate", s.handleGenerate)
			r.Post("/generate", s.handleGenerate)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.limiters.API))
			r.Get("/", s.handleListPosts)
			r.Get("/{slug}", s.handleGetPost)
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit(s.limiters.Default))
		r.Get("/", s.handleHomePage)
		r.Get("/blog", s.handleBlogPage)
		r.Get("/blog/{slug}", s.handlePostPage)
	})

	s.router.NotFound(s.handleNotFound)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := s.renderer.Close(); err != nil {
		s.log.Warn("Failed to stop template watcher", "error", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) development() bool {
	return s.app.IsDevelopment()
}
