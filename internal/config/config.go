package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Server    Server    `mapstructure:"server"`
	AI        AI        `mapstructure:"ai"`
	CMS       CMS       `mapstructure:"cms"`
	Blog      Blog      `mapstructure:"blog"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
	Redis     Redis     `mapstructure:"redis"`
	Analytics Analytics `mapstructure:"analytics"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application and site configuration
type App struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Author      string `mapstructure:"author"`
	Bio         string `mapstructure:"bio"`
	DataDir     string `mapstructure:"data_dir"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	IdleTimeout     string   `mapstructure:"idle_timeout"`
	RequestTimeout  string   `mapstructure:"request_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	DevMode         bool     `mapstructure:"dev_mode"`
	TemplateDir     string   `mapstructure:"template_dir"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// AI holds AI/LLM configuration
type AI struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float64 `mapstructure:"temperature"`
}

// CMS holds content store configuration
type CMS struct {
	Provider string         `mapstructure:"provider"`
	Sanity   SanityConfig   `mapstructure:"sanity"`
	Database DatabaseConfig `mapstructure:"database"`
}

// SanityConfig holds Sanity project configuration
type SanityConfig struct {
	ProjectID  string `mapstructure:"project_id"`
	Dataset    string `mapstructure:"dataset"`
	Token      string `mapstructure:"token"`
	APIVersion string `mapstructure:"api_version"`
	UseCDN     bool   `mapstructure:"use_cdn"`
	Timeout    string `mapstructure:"timeout"`
}

// DatabaseConfig holds SQL store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // SQLite data directory
	URL  string `mapstructure:"url"`  // PostgreSQL connection string
}

// Blog holds blog API and generation configuration
type Blog struct {
	GenerationSecret string `mapstructure:"generation_secret"`
	BodyFormat       string `mapstructure:"body_format"`
	PageSize         int    `mapstructure:"page_size"`
	MaxPageSize      int    `mapstructure:"max_page_size"`
	TopicSeed        int64  `mapstructure:"topic_seed"`
}

// RateLimit holds per-route request budgets
type RateLimit struct {
	Enabled       bool   `mapstructure:"enabled"`
	Window        string `mapstructure:"window"`
	GenerateLimit int    `mapstructure:"generate_limit"`
	APILimit      int    `mapstructure:"api_limit"`
	DefaultLimit  int    `mapstructure:"default_limit"`
	MaxClients    int    `mapstructure:"max_clients"`
}

// Redis holds Redis connection configuration
type Redis struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Analytics holds product analytics configuration
type Analytics struct {
	PostHog PostHogConfig `mapstructure:"posthog"`
}

// PostHogConfig holds PostHog configuration
type PostHogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".portfolio")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "Portfolio")
	viper.SetDefault("app.environment", "production")
	viper.SetDefault("app.author", "")
	viper.SetDefault("app.bio", "Software engineer writing about the web platform, cloud infrastructure and AI tooling.")
	viper.SetDefault("app.data_dir", ".portfolio-data")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.request_timeout", "90s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.dev_mode", false)
	viper.SetDefault("server.template_dir", "")
	viper.SetDefault("server.cors_origins", []string{"*"})

	// AI defaults
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.8)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "60s")
	viper.SetDefault("ai.openai.temperature", 0.8)

	// CMS defaults
	viper.SetDefault("cms.provider", "sanity")
	viper.SetDefault("cms.sanity.dataset", "production")
	viper.SetDefault("cms.sanity.api_version", "2025-10-08")
	viper.SetDefault("cms.sanity.use_cdn", false)
	viper.SetDefault("cms.sanity.timeout", "15s")

	// Blog defaults
	viper.SetDefault("blog.body_format", "markdown")
	viper.SetDefault("blog.page_size", 25)
	viper.SetDefault("blog.max_page_size", 100)
	viper.SetDefault("blog.topic_seed", 0)

	// Rate limit defaults
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.generate_limit", 5)
	viper.SetDefault("rate_limit.api_limit", 100)
	viper.SetDefault("rate_limit.default_limit", 60)
	viper.SetDefault("rate_limit.max_clients", 10000)

	// Redis defaults
	viper.SetDefault("redis.key_prefix", "portfolio:ratelimit")

	// Analytics defaults
	viper.SetDefault("analytics.posthog.enabled", false)
	viper.SetDefault("analytics.posthog.host", "https://us.i.posthog.com")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"AI_PROVIDER",
	})

	bindEnvKeys("blog.generation_secret", []string{
		"BLOG_GENERATION_SECRET",
	})

	bindEnvKeys("cms.provider", []string{
		"CMS_PROVIDER",
	})

	// Sanity - accept the public names used by the frontend build
	bindEnvKeys("cms.sanity.project_id", []string{
		"SANITY_PROJECT_ID",
		"NEXT_PUBLIC_SANITY_PROJECT_ID",
	})

	bindEnvKeys("cms.sanity.dataset", []string{
		"SANITY_DATASET",
		"NEXT_PUBLIC_SANITY_DATASET",
	})

	bindEnvKeys("cms.sanity.token", []string{
		"SANITY_API_TOKEN",
		"SANITY_TOKEN",
	})

	bindEnvKeys("cms.sanity.api_version", []string{
		"SANITY_API_VERSION",
		"NEXT_PUBLIC_SANITY_API_VERSION",
	})

	bindEnvKeys("cms.database.url", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("redis.url", []string{
		"REDIS_URL",
		"KV_URL",
	})

	bindEnvKeys("analytics.posthog.api_key", []string{
		"POSTHOG_API_KEY",
		"NEXT_PUBLIC_POSTHOG_KEY",
	})

	bindEnvKeys("analytics.posthog.host", []string{
		"POSTHOG_HOST",
		"NEXT_PUBLIC_POSTHOG_HOST",
	})

	// General settings
	bindEnvKeys("app.environment", []string{
		"APP_ENV",
		"NODE_ENV",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	// The SQLite store lives in the data directory unless a path is given.
	if config.CMS.Database.Path == "" {
		config.CMS.Database.Path = config.App.DataDir
	} else {
		config.CMS.Database.Path = expandPath(config.CMS.Database.Path)
	}
	if config.Server.TemplateDir != "" {
		config.Server.TemplateDir = expandPath(config.Server.TemplateDir)
	}

	// Placeholder keys copied from an example .env count as unset.
	if !isValidAPIKey(config.AI.Gemini.APIKey) {
		config.AI.Gemini.APIKey = ""
	}
	if !isValidAPIKey(config.AI.OpenAI.APIKey) {
		config.AI.OpenAI.APIKey = ""
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.CMS.Provider = strings.ToLower(strings.TrimSpace(config.CMS.Provider))
	config.App.Environment = strings.ToLower(strings.TrimSpace(config.App.Environment))

	// Validate durations
	durations := map[string]string{
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.idle_timeout":     config.Server.IdleTimeout,
		"server.request_timeout":  config.Server.RequestTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"ai.openai.timeout":       config.AI.OpenAI.Timeout,
		"cms.sanity.timeout":      config.CMS.Sanity.Timeout,
		"rate_limit.window":       config.RateLimit.Window,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig checks enumerations and numeric bounds. Missing credentials
// are not fatal here: the site serves without them and the affected
// operations report a configuration error per request.
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini", "openai", "mock":
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai, mock", config.AI.Provider))
	}

	switch config.CMS.Provider {
	case "sanity", "sqlite":
	case "postgres":
		if config.CMS.Database.URL == "" {
			errors = append(errors, "PostgreSQL CMS requires a connection string. Set DATABASE_URL or cms.database.url")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown CMS provider: %s. Supported: sanity, sqlite, postgres", config.CMS.Provider))
	}

	switch strings.ToLower(config.Blog.BodyFormat) {
	case "", "markdown", "blocks":
	default:
		errors = append(errors, fmt.Sprintf("Unknown blog body format: %s. Supported: markdown, blocks", config.Blog.BodyFormat))
	}

	switch config.App.Environment {
	case "development", "production", "test":
	default:
		errors = append(errors, fmt.Sprintf("Unknown environment: %s. Supported: development, production, test", config.App.Environment))
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("Server port must be between 1 and 65535, got %d", config.Server.Port))
	}

	if config.Blog.MaxPageSize < 1 {
		errors = append(errors, "blog.max_page_size must be at least 1")
	}
	if config.Blog.PageSize < 1 || config.Blog.PageSize > config.Blog.MaxPageSize {
		errors = append(errors, fmt.Sprintf("blog.page_size must be between 1 and %d", config.Blog.MaxPageSize))
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.GenerateLimit < 1 || config.RateLimit.APILimit < 1 || config.RateLimit.DefaultLimit < 1 {
			errors = append(errors, "rate limits must be at least 1 when rate limiting is enabled")
		}
	}

	if config.Analytics.PostHog.Enabled && config.Analytics.PostHog.APIKey == "" {
		errors = append(errors, "PostHog analytics is enabled but no API key is set. Set POSTHOG_API_KEY")
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("Unknown log level: %s. Supported: debug, info, warn, error", config.Logging.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// parseDuration returns the parsed value or fallback. Values are validated at load.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// Address returns the host:port the server listens on.
func (s Server) Address() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

func (s Server) ReadTimeoutDuration() time.Duration  { return parseDuration(s.ReadTimeout, 15*time.Second) }
func (s Server) WriteTimeoutDuration() time.Duration { return parseDuration(s.WriteTimeout, 120*time.Second) }
func (s Server) IdleTimeoutDuration() time.Duration  { return parseDuration(s.IdleTimeout, 60*time.Second) }
func (s Server) RequestTimeoutDuration() time.Duration {
	return parseDuration(s.RequestTimeout, 90*time.Second)
}
func (s Server) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout, 30*time.Second)
}

// TimeoutDuration returns the call timeout of the selected provider.
func (a AI) TimeoutDuration() time.Duration {
	if a.Provider == "openai" {
		return parseDuration(a.OpenAI.Timeout, 60*time.Second)
	}
	return parseDuration(a.Gemini.Timeout, 60*time.Second)
}

func (r RateLimit) WindowDuration() time.Duration { return parseDuration(r.Window, time.Minute) }
func (s SanityConfig) TimeoutDuration() time.Duration {
	return parseDuration(s.Timeout, 15*time.Second)
}

// IsDevelopment reports whether detailed error messages may be returned to clients.
func (a App) IsDevelopment() bool { return a.Environment == "development" }

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-openai-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
