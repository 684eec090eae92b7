package analysis

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks sync run outcomes for the optional scrape endpoint.
type Metrics struct {
	imagesProcessed  *prometheus.CounterVec
	imagesFailed     prometheus.Counter
	imagesFlagged    prometheus.Counter
	batchesCommitted prometheus.Counter
	runDuration      prometheus.Histogram
}

// NewMetrics registers the sync metrics on the given registerer. A nil
// registerer yields metrics that are tracked but never exported, which is
// what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phototag_images_processed_total",
			Help: "Number of images processed, partitioned by run mode.",
		}, []string{"mode"}),
		imagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phototag_images_failed_total",
			Help: "Number of images that failed enrichment after retries.",
		}),
		imagesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phototag_images_flagged_total",
			Help: "Number of records held as pending by the quality gate.",
		}),
		batchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phototag_batches_committed_total",
			Help: "Number of record batches committed to the store.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phototag_run_duration_seconds",
			Help:    "Duration of sync runs.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.imagesProcessed, m.imagesFailed, m.imagesFlagged, m.batchesCommitted, m.runDuration)
	}
	return m
}

var (
	defaultMetricsOnce sync.Once
	defaultMetricsInst *Metrics
)

// DefaultMetrics returns the process-wide metrics instance, registered on the
// default Prometheus registerer exactly once. Repeated runs in one process
// share it.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetricsInst = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetricsInst
}
