package handlers

import (
	"context"
	"io"
	"testing"

	"portfolio/internal/cms"
	"portfolio/internal/config"
)

type closeRecorder struct{ closed int }

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestBuildApp_ClosesGatewayWhenGeneratorFails(t *testing.T) {
	rec := &closeRecorder{}
	orig := openGateway
	openGateway = func(config.CMS) (cms.Gateway, io.Closer, error) {
		return nil, rec, nil
	}
	t.Cleanup(func() { openGateway = orig })

	cfg := &config.Config{AI: config.AI{Provider: "llama"}}
	a, err := buildApp(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unknown AI provider")
	}
	if a != nil {
		t.Error("app should be nil on error")
	}
	if rec.closed != 1 {
		t.Errorf("gateway closed %d times, want 1", rec.closed)
	}
}

func TestBuildApp_MockProvider(t *testing.T) {
	rec := &closeRecorder{}
	orig := openGateway
	openGateway = func(config.CMS) (cms.Gateway, io.Closer, error) {
		return nil, rec, nil
	}
	t.Cleanup(func() { openGateway = orig })

	a, err := buildApp(context.Background(), &config.Config{AI: config.AI{Provider: "mock"}})
	if err != nil {
		t.Fatalf("buildApp failed: %v", err)
	}
	if a.ai == nil || a.ai.Provider() != "mock" {
		t.Errorf("ai = %v, want mock", a.ai)
	}
	a.Close()
	if rec.closed != 1 {
		t.Errorf("gateway closed %d times, want 1", rec.closed)
	}
}

func TestLoadedConfig_ReusesRootConfig(t *testing.T) {
	orig := appConfig
	t.Cleanup(func() { appConfig = orig })

	want := &config.Config{App: config.App{Name: "already loaded"}}
	appConfig = want

	got, err := loadedConfig()
	if err != nil {
		t.Fatalf("loadedConfig failed: %v", err)
	}
	if got != want {
		t.Errorf("loadedConfig returned %p, want the root config %p", got, want)
	}
}
