package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto-api/handlers"
	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto-api/middleware"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/service"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, svc *service.Service, cfg config.ServerConfig) http.Handler {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := svc.Store.DB.PingContext(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"` + status + `","service":"quantity-engine"}`))
	})

	models := handlers.NewModelHandler(logger, svc, cfg.MaxUploadBytes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/models", func(r chi.Router) {
			r.Post("/", models.Import)
			r.Get("/", models.List)

			r.Route("/{modelId}", func(r chi.Router) {
				r.Get("/summary", models.Summary)
				r.Post("/query", models.Query)
				r.Get("/history", models.History)
				r.Get("/export", models.Export)
				r.Delete("/", models.Delete)
			})
		})
	})

	return r
}
