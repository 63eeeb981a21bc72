package observability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"portfolio/internal/logger"
)

// SystemDistinctID is the PostHog distinct id used for server-side events.
const SystemDistinctID = "portfolio-server"

// PostHogConfig configures product analytics.
type PostHogConfig struct {
	Enabled bool
	APIKey  string
	Host    string
}

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	log     *slog.Logger
}

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// NewPostHogClient creates a new PostHog analytics client. A disabled config
// yields a client whose methods are no-ops.
func NewPostHogClient(cfg PostHogConfig) (*PostHogClient, error) {
	if !cfg.Enabled {
		return &PostHogClient{
			enabled: false,
			log:     logger.Get(),
		}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{
		client:  client,
		enabled: true,
		log:     logger.Get(),
	}, nil
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		p.log.Warn("Failed to enqueue analytics event", "event", event, "error", err)
		return err
	}
	return nil
}

// TrackPostGenerated records a successfully generated and stored post.
func (p *PostHogClient) TrackPostGenerated(ctx context.Context, postID, slug, provider string, topics []string, durationMs int64) error {
	return p.Capture(ctx, SystemDistinctID, "blog_post_generated", EventProperties{
		"post_id":     postID,
		"slug":        slug,
		"provider":    provider,
		"topics":      topics,
		"duration_ms": durationMs,
	})
}

// TrackGenerationFailed records a generation attempt that returned an error code.
func (p *PostHogClient) TrackGenerationFailed(ctx context.Context, code, provider string) error {
	return p.Capture(ctx, SystemDistinctID, "blog_generation_failed", EventProperties{
		"code":     code,
		"provider": provider,
	})
}

// TrackRateLimited records a throttled request.
func (p *PostHogClient) TrackRateLimited(ctx context.Context, clientID, policy, path string) error {
	return p.Capture(ctx, clientID, "rate_limited", EventProperties{
		"policy": policy,
		"path":   path,
	})
}

// Shutdown flushes pending events and closes the client.
func (p *PostHogClient) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}

	return p.client.Close()
}
