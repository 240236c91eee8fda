package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ HTTP = (*httpMetrics)(nil)

type httpMetrics struct {
	requests     *prometheus.CounterVec
	slowRequests *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newHTTPMetrics(factory promauto.Factory) *httpMetrics {
	labels := []string{"method", "route", "status"}

	return &httpMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route template and status class.",
		}, labels),
		slowRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "http",
			Name:      "slow_requests_total",
			Help:      "HTTP requests that exceeded the slow request threshold.",
		}, labels),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: _namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, labels),
	}
}

func (m *httpMetrics) Request(method, route string, status int, duration time.Duration) {
	class := statusClass(status)
	m.requests.WithLabelValues(method, route, class).Inc()
	m.duration.WithLabelValues(method, route, class).Observe(duration.Seconds())
}

// SlowRequest only counts; the latency is already observed by Request.
func (m *httpMetrics) SlowRequest(method, route string, status int, _ time.Duration) {
	m.slowRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
