package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ Transaction = (*transactionMetrics)(nil)

// transactionMetrics covers the postgres document store transactions.
type transactionMetrics struct {
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newTransactionMetrics(factory promauto.Factory) *transactionMetrics {
	return &transactionMetrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: _namespace,
			Subsystem: "store_tx",
			Name:      "duration_seconds",
			Help:      "Document store transaction latency, retries included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{"operation"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "store_tx",
			Name:      "retries_total",
			Help:      "Transactions retried after a serialization or deadlock failure.",
		}, []string{"operation"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "store_tx",
			Name:      "failures_total",
			Help:      "Transactions that failed after all attempts.",
		}, []string{"operation"}),
	}
}

func (m *transactionMetrics) ObserveDuration(operation string, duration time.Duration) {
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *transactionMetrics) IncrementRetries(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

func (m *transactionMetrics) IncrementFailures(operation string) {
	m.failures.WithLabelValues(operation).Inc()
}
