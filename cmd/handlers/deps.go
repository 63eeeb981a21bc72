package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"portfolio/internal/apierr"
	"portfolio/internal/cms"
	"portfolio/internal/config"
	"portfolio/internal/generator"
	"portfolio/internal/llm"
	"portfolio/internal/logger"
	"portfolio/internal/observability"
	"portfolio/internal/ratelimit"
	"portfolio/internal/server"
	"portfolio/internal/store"

	"github.com/redis/go-redis/v9"
)

// app holds the collaborators built from configuration. Close releases them.
type app struct {
	cfg        *config.Config
	gateway    cms.Gateway
	experience cms.ExperienceSource
	ai         llm.Generator
	analytics  *observability.PostHogClient
	redis      *redis.Client
	closers    []io.Closer
}

// buildApp wires every backend named by cfg. Missing CMS or AI credentials are
// logged and leave the corresponding field nil so read-only use keeps working.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Get()
	a := &app{cfg: cfg}

	gateway, closer, err := openGateway(cfg.CMS)
	switch {
	case apierr.IsKind(err, apierr.KindConfiguration):
		log.Warn("CMS is not configured, blog endpoints will report configuration errors", "provider", cfg.CMS.Provider, "error", err)
	case err != nil:
		a.Close()
		return nil, err
	default:
		a.gateway = gateway
		if src, ok := gateway.(cms.ExperienceSource); ok {
			a.experience = src
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	ai, err := newGenerator(ctx, cfg.AI)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Warn("AI provider API key is not set, generation is disabled", "provider", cfg.AI.Provider)
	case err != nil:
		a.Close()
		return nil, err
	default:
		a.ai = ai
	}

	ph := cfg.Analytics.PostHog
	a.analytics, err = observability.NewPostHogClient(observability.PostHogConfig{
		Enabled: ph.Enabled,
		APIKey:  ph.APIKey,
		Host:    ph.Host,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize analytics: %w", err)
	}

	if cfg.RateLimit.Enabled && cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			a.redis = client
			a.closers = append(a.closers, client)
		}
	}

	return a, nil
}

// openGateway is replaced in tests.
var openGateway = newGateway

func newGateway(cfg config.CMS) (cms.Gateway, io.Closer, error) {
	switch cfg.Provider {
	case "sqlite":
		s, err := store.NewStore(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store in %s: %w", filepath.Clean(cfg.Database.Path), err)
		}
		return s, s, nil
	case "postgres":
		s, err := store.NewPostgresStore(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return s, s, nil
	default:
		c, err := cms.NewSanityClient(cms.SanityConfig{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			Token:      cfg.Sanity.Token,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     cfg.Sanity.UseCDN,
			Timeout:    cfg.Sanity.TimeoutDuration(),
		})
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	}
}

func newGenerator(ctx context.Context, cfg config.AI) (llm.Generator, error) {
	return llm.New(ctx, llm.ProviderConfig{
		Provider: cfg.Provider,
		Gemini: llm.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: cfg.Gemini.Temperature,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: float32(cfg.OpenAI.Temperature),
		},
	})
}

// service builds the generation service, or nil when no AI provider is available.
func (a *app) service() (*generator.Service, error) {
	if a.ai == nil {
		return nil, nil
	}
	format, err := generator.ParseBodyFormat(a.cfg.Blog.BodyFormat)
	if err != nil {
		return nil, err
	}

	svcCfg := generator.ServiceConfig{
		AI:         a.ai,
		Selector:   generator.NewTopicSelector(a.cfg.Blog.TopicSeed),
		BodyFormat: format,
		AITimeout:  a.cfg.AI.TimeoutDuration(),
	}
	if a.gateway != nil {
		svcCfg.Gateway = a.gateway
	}
	if a.analytics.IsEnabled() {
		svcCfg.Tracker = a.analytics
	}
	return generator.NewService(svcCfg), nil
}

// limiters builds one limiter per policy, backed by Redis when connected.
func (a *app) limiters() server.Limiters {
	rl := a.cfg.RateLimit
	if !rl.Enabled {
		return server.Limiters{}
	}

	window := rl.WindowDuration()
	policy := func(base ratelimit.Policy, limit int) ratelimit.Limiter {
		base.Limit = limit
		base.Window = window
		if a.redis != nil {
			return ratelimit.NewRedisLimiter(a.redis, base, a.cfg.Redis.KeyPrefix)
		}
		return ratelimit.NewMemoryLimiter(base).WithMaxEntries(rl.MaxClients)
	}

	return server.Limiters{
		Generate: policy(ratelimit.BlogGenerate, rl.GenerateLimit),
		API:      policy(ratelimit.BlogAPI, rl.APILimit),
		Default:  policy(ratelimit.Default, rl.DefaultLimit),
	}
}

// Close releases database and Redis connections and flushes analytics.
func (a *app) Close() {
	log := logger.Get()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn("Failed to close resource", "error", err)
		}
	}
	if err := a.analytics.Shutdown(context.Background()); err != nil {
		log.Warn("Failed to flush analytics", "error", err)
	}
}
