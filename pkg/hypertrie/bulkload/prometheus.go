package bulkload

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// batches prometheus metric.
	batches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of batches applied by bulk loaders",
			Name:      "batches_total",
			Namespace: "hypertrie",
			Subsystem: "bulkload",
		},
	)
	// skippedEntries prometheus metric.
	skippedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of queued entries skipped as duplicates or already present",
			Name:      "skipped_entries_total",
			Namespace: "hypertrie",
			Subsystem: "bulkload",
		},
	)
	// batchDuration prometheus metric.
	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Help:      "Time spent applying a single batch",
			Name:      "batch_duration_seconds",
			Namespace: "hypertrie",
			Subsystem: "bulkload",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(
		batches,
		skippedEntries,
		batchDuration,
	)
}

func updateBatchMetrics(bs BatchStats) {
	batches.Inc()
	skippedEntries.Add(float64(bs.Received - bs.Inserted))
	batchDuration.Observe(bs.Duration.Seconds())
}
