/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"portfolio/internal/config"
	"portfolio/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	// appConfig is loaded once by the root command before any subcommand runs.
	appConfig *config.Config
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio site and blog backend with AI-drafted posts.",
		Long: `portfolio serves a personal site with a blog backed by a headless CMS
(Sanity) or a local database, and drafts new posts with an AI model.

Commands:
  serve            Start the web server and JSON API
  generate         Draft a post with the configured AI provider
  import           Publish a markdown file with front matter
  convert          Convert markdown into portable text blocks
  seed-experience  Write the built-in work history to the CMS`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.portfolio.yaml or $HOME/.portfolio.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewImportCmd())
	rootCmd.AddCommand(NewConvertCmd())
	rootCmd.AddCommand(NewSeedExperienceCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and applies the logging settings.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	appConfig = cfg
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// loadedConfig returns the configuration read by the root command, loading it
// when a subcommand runs on its own.
func loadedConfig() (*config.Config, error) {
	if appConfig == nil {
		if err := initConfig(); err != nil {
			return nil, err
		}
	}
	return appConfig, nil
}
