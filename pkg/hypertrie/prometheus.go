package hypertrie

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// nodesGauge prometheus metric.
	nodesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Number of stored hypertrie nodes",
			Name:      "nodes",
			Namespace: "hypertrie",
		},
		[]string{"depth", "kind"},
	)
	// appliedEntries prometheus metric.
	appliedEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of entries applied to hypertries",
			Name:      "applied_entries_total",
			Namespace: "hypertrie",
		},
		[]string{"op"},
	)
	// reusedNodes prometheus metric.
	reusedNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of full nodes reused in place during apply",
			Name:      "reused_nodes_total",
			Namespace: "hypertrie",
		},
	)
)

func init() {
	prometheus.MustRegister(
		nodesGauge,
		appliedEntries,
		reusedNodes,
	)
}

func depthLabel(depth int) string {
	return strconv.Itoa(depth)
}

func updateAppliedEntriesMetric(op changeOp, n int) {
	appliedEntries.WithLabelValues(op.String()).Add(float64(n))
}
