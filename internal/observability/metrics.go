package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProductsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_processed_total",
			Help: "Raw distributor products read by the pipeline",
		},
		[]string{"category"},
	)

	ProductsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_rejected_total",
			Help: "Raw products rejected or partially used, by reason",
		},
		[]string{"category", "reason"},
	)

	SkusCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_skus_created_total",
			Help: "Canonical SKUs created",
		},
		[]string{"category"},
	)

	OffersMerged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_offers_merged_total",
			Help: "Distributor offers merged into an existing SKU",
		},
		[]string{"category"},
	)

	KitsNormalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_kits_normalized_total",
			Help: "Normalized kits produced",
		},
	)

	KitsRejectedMPPT = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_kits_rejected_mppt_total",
			Help: "Candidate kits excluded from match results by MPPT validation",
		},
	)

	KitMatchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_kit_match_requests_total",
			Help: "Kit matching requests by outcome",
		},
		[]string{"outcome"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_pipeline_phase_duration_seconds",
			Help:    "Duration of pipeline phases",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"phase"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProductsProcessed,
			ProductsRejected,
			SkusCreated,
			OffersMerged,
			KitsNormalized,
			KitsRejectedMPPT,
			KitMatchRequests,
			PipelineDuration,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePhase records the time elapsed since start for phase.
func ObservePhase(phase string, start time.Time) {
	PipelineDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
