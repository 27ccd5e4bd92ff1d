package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/quarterpay/internal/hermes"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

// NewRouter wires the calculation API. h may be nil to disable events;
// rateLimit is requests per minute per client, 0 for no limit.
func NewRouter(calc *scoring.Calculator, h hermes.Client, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	if rateLimit > 0 {
		r.Use(RateLimitMiddleware(rateLimit))
	}

	calculations := NewCalculationsHandler(calc, h, logger)
	projects := NewProjectsHandler(calc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/calculations", calculations.Create)

		r.Get("/projects", projects.List)
		r.Get("/projects/{key}", projects.Get)
		r.Get("/coefficients", projects.Coefficients)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
