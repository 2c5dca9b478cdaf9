package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// catalogFilesLoaded tracks catalog file loads by file type and outcome.
	catalogFilesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_catalog_files_loaded_total",
		Help: "Total number of catalog files loaded by type and outcome",
	}, []string{"type", "outcome"})

	// catalogArticlesLoaded tracks the distribution of articles per loaded file.
	catalogArticlesLoaded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_catalog_articles_per_file",
		Help:    "Number of articles parsed per catalog file",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000},
	})

	// catalogParseWarnings tracks coercion warnings during catalog parsing.
	catalogParseWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_catalog_parse_warnings_total",
		Help: "Total number of cell coercion warnings during catalog parsing",
	})

	// cartSize tracks the distribution of cart sizes at recalculation time.
	cartSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_cart_items_count",
		Help:    "Number of items in the cart at recalculation time",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// recalcDuration tracks the time taken for a full cart recalculation.
	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_cart_recalculation_duration_seconds",
		Help:    "Time taken to recalculate all cart items",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// proposalsExported tracks generated proposal documents by outcome.
	proposalsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_proposals_exported_total",
		Help: "Total number of proposal documents generated by outcome",
	}, []string{"outcome"})

	// sessionsActive tracks the number of live sessions.
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quote_sessions_active",
		Help: "Number of live quoting sessions",
	})
)

// MetricsRecorder provides methods to record quote service metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordCatalogLoad records a catalog file load attempt.
func (m *MetricsRecorder) RecordCatalogLoad(fileType string, articles, warnings int, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	catalogFilesLoaded.WithLabelValues(fileType, outcome).Inc()
	if success {
		catalogArticlesLoaded.Observe(float64(articles))
	}
	catalogParseWarnings.Add(float64(warnings))
}

// RecordRecalculation records a full cart recalculation.
func (m *MetricsRecorder) RecordRecalculation(items int, duration time.Duration) {
	cartSize.Observe(float64(items))
	recalcDuration.Observe(duration.Seconds())
}

// RecordProposalExport records a proposal document generation attempt.
func (m *MetricsRecorder) RecordProposalExport(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	proposalsExported.WithLabelValues(outcome).Inc()
}

// SetActiveSessions records the current number of live sessions.
func (m *MetricsRecorder) SetActiveSessions(count int) {
	sessionsActive.Set(float64(count))
}
