package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigured(t *testing.T) {
	var buf bytes.Buffer
	Configured(&buf, "warn", "json")
	defer Configured(&bytes.Buffer{}, "info", "json")

	Info("hidden")
	Error("boom", errors.New("disk full"), "component", "store")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"error":"disk full"`) || !strings.Contains(out, `"component":"store"`) {
		t.Errorf("error line missing attributes: %s", out)
	}

	buf.Reset()
	Configured(&buf, "debug", "text")
	Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("text handler output = %q", buf.String())
	}
}
