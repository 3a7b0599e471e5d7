// Package metrics implements the logger's Observer contract with
// Prometheus collectors on an injected registerer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/logger"
)

// PrometheusObserver counts dispatched records per level, contained
// pipeline errors, and pipeline latency.
type PrometheusObserver struct {
	records    *prometheus.CounterVec
	errors     prometheus.Counter
	processing prometheus.Histogram
}

var _ logger.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the collectors on the given
// registerer. Registering twice on the same registerer panics, as is
// usual for promauto.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turboprint",
			Name:      "records_total",
			Help:      "Records dispatched through the pipeline, by level.",
		}, []string{"level"}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "turboprint",
			Name:      "pipeline_errors_total",
			Help:      "Contained handler and filter failures.",
		}),
		processing: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turboprint",
			Name:      "processing_seconds",
			Help:      "Time spent dispatching one record.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

// RecordProcessed implements logger.Observer.
func (o *PrometheusObserver) RecordProcessed(level core.Level, d time.Duration) {
	o.records.WithLabelValues(level.String()).Inc()
	o.processing.Observe(d.Seconds())
}

// ErrorOccurred implements logger.Observer.
func (o *PrometheusObserver) ErrorOccurred() {
	o.errors.Inc()
}
