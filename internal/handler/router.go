package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the full HTTP surface: middleware, health, metrics and
// the festival API.
func NewRouter(h *FestivalHandler, m *Metrics, logger *zap.Logger, origins []string) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(m.Middleware)
	r.Use(Recoverer(logger)) // recover from panics, return the JSON envelope
	r.Use(CORS(origins))

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Route("/festivals", h.Routes)

	return r
}
