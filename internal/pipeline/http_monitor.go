package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"solar-catalog-api/internal/observability"
)

// HTTPMonitor provides HTTP endpoints for monitoring a pipeline run
type HTTPMonitor struct {
	server   *http.Server
	progress *ProgressTracker
	logger   *slog.Logger
}

// NewHTTPMonitor creates a new HTTP monitoring server
func NewHTTPMonitor(port int, progress *ProgressTracker, logger *slog.Logger) *HTTPMonitor {
	monitor := &HTTPMonitor{
		progress: progress,
		logger:   logger,
	}
	monitor.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           monitor.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return monitor
}

// Routes returns the monitor's handler.
func (m *HTTPMonitor) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/status", m.handleStatus)
	r.Get("/health", m.handleHealth)
	r.Handle("/metrics", observability.Handler())
	return r
}

// Start starts the HTTP server in a goroutine
func (m *HTTPMonitor) Start() {
	go func() {
		m.logger.Info("starting HTTP monitor", "addr", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP monitor error", "error", err)
		}
	}()
}

// Stop gracefully stops the HTTP server
func (m *HTTPMonitor) Stop(ctx context.Context) error {
	m.logger.Info("stopping HTTP monitor")
	return m.server.Shutdown(ctx)
}

// handleStatus returns current run status as JSON
func (m *HTTPMonitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := m.progress.GetSnapshot()

	response := map[string]any{
		"run_id":     snapshot.RunID,
		"status":     snapshot.Status,
		"started_at": snapshot.StartedAt.Format(time.RFC3339),
		"elapsed":    snapshot.Elapsed.String(),
		"progress": map[string]any{
			"total_products": snapshot.TotalProducts,
			"processed":      snapshot.Processed,
			"percentage":     fmt.Sprintf("%.2f", snapshot.Percentage),
			"categories":     snapshot.CategoriesDone,
			"current":        snapshot.CurrentCategory,
		},
		"results": map[string]any{
			"skus_created":    snapshot.SkusCreated,
			"offers_merged":   snapshot.OffersMerged,
			"kits_normalized": snapshot.KitsNormalized,
			"rejected":        snapshot.Rejected,
		},
		"rate": map[string]any{
			"products_per_sec": fmt.Sprintf("%.2f", snapshot.ProductsPerSecond),
			"time_remaining":   snapshot.Remaining.String(),
		},
		"last_error": snapshot.LastError,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHealth returns simple health check
func (m *HTTPMonitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
