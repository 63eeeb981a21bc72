package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"portfolio/internal/apierr"

	"github.com/go-chi/chi/v5/middleware"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"cms": "ok",
		"ai":  "ok",
	}
	if s.gateway == nil {
		checks["cms"] = "unconfigured"
	}
	if s.generator == nil {
		checks["ai"] = "unconfigured"
	}

	if p, ok := s.gateway.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.log.Warn("Health check failed", "check", "cms", "error", err)
			checks["cms"] = "error"
			s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unhealthy",
				Checks: checks,
			})
			return
		}
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleNotFound answers unknown API paths with the error envelope and
// everything else with the HTML not-found page.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.respondError(w, r, apierr.NotFound(apierr.CodeUnknown, "no route for "+r.URL.Path))
		return
	}
	s.renderErrorPage(w, r, http.StatusNotFound, "Page not found")
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError is the single place API errors are logged and written.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	e := apierr.From(err)
	status := e.Status()

	attrs := []any{
		"kind", e.Kind,
		"code", e.Code,
		"status", status,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", e.Error(),
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", attrs...)
	} else {
		s.log.Warn("Request rejected", attrs...)
	}

	if e.Kind == apierr.KindRateLimit {
		w.Header().Set("X-RateLimit-Remaining", "0")
	}

	s.respondJSON(w, status, apierr.NewEnvelope(e, s.development(), s.now()))
}
