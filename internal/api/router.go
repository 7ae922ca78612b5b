// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loandoc-workers/internal/api/handlers"
	"loandoc-workers/internal/api/middleware"
	"loandoc-workers/internal/audit"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/requirements/aggregate"
	"loandoc-workers/pkg/registry"
)

// RouterDeps carries everything the validation API serves from.
type RouterDeps struct {
	Validator  *docvalid.Validator
	Aggregator *aggregate.Aggregator
	Auditor    *audit.Indexer
	Registry   *registry.CategoryRegistry
	Version    string
	Readiness  map[string]handlers.ReadinessCheck
	Logger     logger.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.CORS)

	// Health checks and metrics (no auth required)
	r.Get("/health", handlers.Health(deps.Version))
	r.Get("/ready", handlers.Ready(deps.Readiness))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	documentHandler := handlers.NewDocumentHandler(deps.Validator, deps.Aggregator, deps.Auditor, deps.Logger)
	requirementsHandler := handlers.NewRequirementsHandler(deps.Registry)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/validate", documentHandler.Validate)
			r.Post("/validate-batch", documentHandler.ValidateBatch)
			r.Post("/upload-status", documentHandler.UploadStatus)
		})

		r.Get("/requirements/{applicationType}", requirementsHandler.Get)
	})

	return r
}
