package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Configuration(CodeMissingAIKey, ""), http.StatusInternalServerError},
		{Unauthorized(CodeUnauthorized, ""), http.StatusUnauthorized},
		{Validation("bad", nil), http.StatusBadRequest},
		{NotFound(CodePostNotFound, ""), http.StatusNotFound},
		{Generation(CodeAIJSONParse, "", nil), http.StatusInternalServerError},
		{Persistence("write failed", errors.New("boom")), http.StatusInternalServerError},
		{RateLimited(time.Second), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom_WrapsPlainErrors(t *testing.T) {
	plain := errors.New("disk on fire")
	got := From(plain)
	if got.Kind != KindInternal || got.Code != CodeServerError {
		t.Errorf("From(plain) = %+v", got)
	}
	if !errors.Is(got, plain) {
		t.Error("From should keep the original error in the chain")
	}

	wrapped := fmt.Errorf("handler: %w", NotFound(CodePostNotFound, "missing"))
	if From(wrapped).Kind != KindNotFound {
		t.Error("From should unwrap to the inner *Error")
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind should find wrapped *Error")
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("parse: %w", Generation(CodeAIJSONParse, "no title", nil))
	if !errors.Is(err, New(KindGeneration, CodeAIJSONParse, "")) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, New(KindGeneration, CodeMissingRequiredFields, "")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestNewEnvelope_Production(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	e := Generation(CodeAIJSONParse, "title not found at offset 12", errors.New("regex miss"))

	env := NewEnvelope(e, false, now)
	if env.Error != CodeAIJSONParse.Message(false) {
		t.Errorf("Error = %q, want production message", env.Error)
	}
	if env.Details != nil {
		t.Error("production envelope must not carry details")
	}
	if strings.Contains(env.Error, "offset") {
		t.Error("production envelope leaked internal message")
	}
	if env.Timestamp != "2025-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %q", env.Timestamp)
	}
}

func TestNewEnvelope_Development(t *testing.T) {
	e := Validation("limit must be between 1 and 100", map[string]string{"limit": "must be no greater than 100"})
	env := NewEnvelope(e, true, time.Now())

	if env.Error != "limit must be between 1 and 100" {
		t.Errorf("Error = %q", env.Error)
	}
	if env.Details == nil {
		t.Error("development envelope should carry details")
	}
	if env.Code != CodeValidation {
		t.Errorf("Code = %q", env.Code)
	}
}

func TestNewEnvelope_RateLimit(t *testing.T) {
	env := NewEnvelope(RateLimited(1500*time.Millisecond), false, time.Now())
	if env.RetryAfter != 2 {
		t.Errorf("RetryAfter = %d, want 2", env.RetryAfter)
	}
	if env.Code != CodeRateLimitExceeded {
		t.Errorf("Code = %q", env.Code)
	}
}

func TestCode_MessageFallback(t *testing.T) {
	if got := Code("NOPE").Message(false); got != CodeUnknown.Message(false) {
		t.Errorf("unknown code message = %q", got)
	}
}
