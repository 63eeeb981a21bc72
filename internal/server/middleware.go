package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"portfolio/internal/apierr"
	"portfolio/internal/ratelimit"
)

// requireGenerationSecret protects the generate endpoint with the shared
// bearer secret. With no secret configured the endpoint is disabled.
func (s *Server) requireGenerationSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := s.blog.GenerationSecret
		if secret == "" {
			s.respondError(w, r, apierr.Configuration(apierr.CodeGenerationDisabled, "generation secret is not set"))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, r, apierr.Unauthorized(apierr.CodeUnauthorized, "missing Authorization header"))
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) != 1 {
			s.log.Warn("Invalid generation secret attempt", "client", ratelimit.ClientID(r))
			s.respondError(w, r, apierr.Unauthorized(apierr.CodeInvalidSecret, "bearer token does not match"))
			return
		}

		next(w, r)
	}
}

// rateLimit applies l to the wrapped routes, answering throttled requests
// with the standard error envelope.
func (s *Server) rateLimit(l ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(l, s.log, s.denyRateLimited)
}

func (s *Server) denyRateLimited(w http.ResponseWriter, r *http.Request, p ratelimit.Policy, d ratelimit.Decision) {
	_ = s.analytics.TrackRateLimited(r.Context(), ratelimit.ClientID(r), p.Name, r.URL.Path)

	e := apierr.RateLimited(d.RetryAfter)
	e.Message = p.Message
	s.respondError(w, r, e)
}

// securityHeaders adds security headers to all responses
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://*.posthog.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; " +
			"font-src 'self' data:; " +
			"connect-src 'self' https://*.posthog.com;"
		w.Header().Set("Content-Security-Policy", csp)

		next.ServeHTTP(w, r)
	})
}

// noCache adds headers to prevent caching
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		next.ServeHTTP(w, r)
	})
}
