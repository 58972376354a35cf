package metrics

import (
	"net/http"

	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsPath is the path Prometheus metrics are served at.
const MetricsPath = "/metrics"

// NewPrometheusService creates a service exposing all metrics registered in
// the default registry (node populations, applied entries, bulk loader
// batches) at MetricsPath. It returns nil if log is nil.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	handler := promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:      zap.NewStdLog(log),
			ErrorHandling: promhttp.ContinueOnError,
		}))
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, handler)
	return NewService("Prometheus", newServers(cfg, mux), cfg, log)
}
