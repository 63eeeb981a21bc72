package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPostHogClient_Disabled(t *testing.T) {
	p, err := NewPostHogClient(PostHogConfig{})
	if err != nil {
		t.Fatalf("NewPostHogClient failed: %v", err)
	}
	if p.IsEnabled() {
		t.Error("client should be disabled")
	}

	ctx := context.Background()
	if err := p.TrackPostGenerated(ctx, "id", "slug", "mock", nil, 10); err != nil {
		t.Errorf("disabled TrackPostGenerated returned %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("disabled Shutdown returned %v", err)
	}
}

func TestNewPostHogClient_MissingKey(t *testing.T) {
	if _, err := NewPostHogClient(PostHogConfig{Enabled: true}); err == nil {
		t.Error("Expected error when enabled without an API key")
	}
}

func TestNilClient(t *testing.T) {
	var p *PostHogClient
	if p.IsEnabled() {
		t.Error("nil client should report disabled")
	}
	if err := p.TrackGenerationFailed(context.Background(), "AI_GENERATION_FAILED", "mock"); err != nil {
		t.Errorf("nil client Capture returned %v", err)
	}
}

func TestPostHogClient_Enabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	p, err := NewPostHogClient(PostHogConfig{Enabled: true, APIKey: "phc_test", Host: srv.URL})
	if err != nil {
		t.Fatalf("NewPostHogClient failed: %v", err)
	}
	if !p.IsEnabled() {
		t.Fatal("client should be enabled")
	}

	ctx := context.Background()
	if err := p.TrackPostGenerated(ctx, "id", "hello-world", "gemini", []string{"Go"}, 1200); err != nil {
		t.Errorf("TrackPostGenerated failed: %v", err)
	}
	if err := p.TrackRateLimited(ctx, "203.0.113.7", "blog_api", "/api/blog"); err != nil {
		t.Errorf("TrackRateLimited failed: %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
