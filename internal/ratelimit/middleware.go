package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

// DenyFunc writes the response for a throttled request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, p Policy, d Decision)

// Middleware enforces l on every request, keyed by ClientID. Limiter errors
// are logged and the request is let through.
func Middleware(l Limiter, log *slog.Logger, deny DenyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientID(r)
			d, err := l.Allow(r.Context(), client)
			if err != nil {
				log.Warn("Rate limiter unavailable, allowing request",
					"policy", l.Policy().Name, "client", client, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds(d)))
				log.Warn("Rate limit exceeded", "policy", l.Policy().Name, "client", client, "path", r.URL.Path)
				deny(w, r, l.Policy(), d)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RetryAfterSeconds rounds d.RetryAfter up to whole seconds, at least 1.
func RetryAfterSeconds(d Decision) int {
	return max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
}
