package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tracks request counts and latencies for store traffic.
type MetricsCollector struct {
	registry *prometheus.Registry

	requestCount *prometheus.CounterVec
	errorCount   *prometheus.CounterVec

	// Operation name to latency
	operationTimes *prometheus.HistogramVec

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_requests_total",
				Help: "Total number of content store requests",
			},
			[]string{"operation"},
		),
		errorCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_errors_total",
				Help: "Total number of failed content store requests",
			},
			[]string{"operation"},
		),
		operationTimes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Duration of content store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		systemStartTime: time.Now(),
	}
	mc.registry.MustRegister(mc.requestCount, mc.errorCount, mc.operationTimes)
	return mc
}

func (mc *MetricsCollector) IncrementRequests(operationName string) {
	mc.requestCount.WithLabelValues(operationName).Inc()
}

func (mc *MetricsCollector) IncrementErrors(operationName string) {
	mc.errorCount.WithLabelValues(operationName).Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

// Registry exposes the collector's metrics, e.g. to promhttp.HandlerFor.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}
