package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foorschtbar/BeamerControl/internal/session"
)

// authRealm is shown by browsers in the basic auth prompt.
const authRealm = "BeamerControl"

// healthCheckTimeout bounds the dependency checks behind /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.activityMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			if s.admin.Username != "" {
				r.Use(middleware.BasicAuth(authRealm, map[string]string{
					s.admin.Username: s.admin.Password,
				}))
			}

			r.Get("/status", s.handleStatus)
			r.Post("/power", s.handlePower)
			r.Get("/history", s.handleHistory)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth reports the version and the state of local storage and the
// bus. Only an unusable database makes the bridge unhealthy; a broker that
// is down or not configured is reported but still answers 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"database": "ok",
		"bus":      "not_configured",
	}

	if s.database != nil {
		if err := s.database.HealthCheck(ctx); err != nil {
			s.logger.Warn("database health check failed", "error", err)
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "unavailable"
		}
	}

	if s.broker != nil {
		body["bus"] = session.Connected.String()
		if err := s.broker.HealthCheck(ctx); err != nil {
			body["bus"] = session.Disconnected.String()
		}
	}

	writeJSON(w, status, body)
}
