package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ DLQ = (*dlqMetrics)(nil)

type dlqMetrics struct {
	sent       *prometheus.CounterVec
	retryCount *prometheus.HistogramVec
	errors     *prometheus.CounterVec
}

func newDLQMetrics(factory promauto.Factory) *dlqMetrics {
	return &dlqMetrics{
		sent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "dlq",
			Name:      "letters_sent_total",
			Help:      "Submissions written to the dead letter topic.",
		}, []string{"dlq_topic", "original_topic"}),
		retryCount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: _namespace,
			Subsystem: "dlq",
			Name:      "retry_count",
			Help:      "Attempts made on a submission before it was dead-lettered.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}, []string{"original_topic"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "dlq",
			Name:      "errors_total",
			Help:      "Failures writing to the dead letter topic.",
		}, []string{"dlq_topic", "reason"}),
	}
}

func (m *dlqMetrics) DLSent(dlqTopic, originalTopic string, retryCount int) {
	m.sent.WithLabelValues(dlqTopic, originalTopic).Inc()
	m.DLRetryCount(originalTopic, retryCount)
}

func (m *dlqMetrics) DLRetryCount(originalTopic string, retryCount int) {
	m.retryCount.WithLabelValues(originalTopic).Observe(float64(retryCount))
}

func (m *dlqMetrics) DLError(dlqTopic, reason string) {
	m.errors.WithLabelValues(dlqTopic, reason).Inc()
}
