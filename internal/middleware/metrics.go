package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware records per-path request counts, durations and
// in-flight requests.
type PrometheusMiddleware struct {
	handler  http.Handler
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	active   prometheus.Gauge
}

func NewPrometheusMiddleware(handlerToWrap http.Handler, registerer prometheus.Registerer) *PrometheusMiddleware {
	m := &PrometheusMiddleware{
		handler: handlerToWrap,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by path and status code",
		}, []string{"path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of requests being served",
		}),
	}
	registerer.MustRegister(m.requests, m.duration, m.active)
	return m
}

func (m *PrometheusMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/metrics" {
		// Skip collecting metrics from metrics endpoint itself
		m.handler.ServeHTTP(w, r)
		return
	}

	timer := prometheus.NewTimer(m.duration.WithLabelValues(path))
	m.active.Inc()

	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	m.handler.ServeHTTP(recorder, r)

	timer.ObserveDuration()
	m.active.Dec()
	m.requests.WithLabelValues(path, strconv.Itoa(recorder.status)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
