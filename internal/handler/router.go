package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes. metrics is mounted on /metrics when not nil.
func NewRouter(health *HealthHandler, catalog *CatalogHandler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", health.Check)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/skus", catalog.ListSkus)
		r.Get("/manufacturers", catalog.ListManufacturers)
		r.Post("/kits/match", catalog.MatchKits)
		r.Post("/mppt/validate", catalog.ValidateMPPT)
		r.Post("/system/validate", catalog.ValidateSystem)
		r.Get("/reports/prices", catalog.PriceReport)
	})

	return r
}
