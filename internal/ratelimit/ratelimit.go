// Package ratelimit throttles requests per client. Limits are enforced either
// in process (MemoryLimiter) or across instances through Redis (RedisLimiter).
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Policy is a request budget per client over a window.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string // returned to throttled clients
}

// Built-in policies.
var (
	BlogGenerate = Policy{
		Name:    "blog_generate",
		Limit:   5,
		Window:  time.Minute,
		Message: "Too many blog generation requests. Please try again later.",
	}
	BlogAPI = Policy{
		Name:    "blog_api",
		Limit:   100,
		Window:  time.Minute,
		Message: "Too many requests. Please try again later.",
	}
	Default = Policy{
		Name:    "default",
		Limit:   60,
		Window:  time.Minute,
		Message: "Too many requests. Please try again later.",
	}
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// Limiter consumes one unit of a client's budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Policy() Policy
}

// AnonymousClient is the key used when a request carries no client address headers.
const AnonymousClient = "anonymous"

// ClientID identifies the caller: the first X-Forwarded-For entry, then
// X-Real-IP, then the remote address host, then AnonymousClient.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return AnonymousClient
}
