package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ Kafka = (*kafkaMetrics)(nil)

type kafkaMetrics struct {
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	lag       *prometheus.GaugeVec
}

func newKafkaMetrics(factory promauto.Factory) *kafkaMetrics {
	return &kafkaMetrics{
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "intake",
			Name:      "messages_processed_total",
			Help:      "Intake submissions turned into orders.",
		}, []string{"topic", "partition"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "intake",
			Name:      "messages_failed_total",
			Help:      "Intake submissions that did not become orders, by outcome.",
		}, []string{"topic", "partition", "reason"}),
		lag: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: _namespace,
			Subsystem: "intake",
			Name:      "consumer_lag",
			Help:      "Messages the intake consumer is behind the partition head.",
		}, []string{"topic", "partition"}),
	}
}

func (m *kafkaMetrics) MessageProcessed(topic string, partition int) {
	m.processed.WithLabelValues(topic, partitionLabel(partition)).Inc()
}

func (m *kafkaMetrics) MessageFailed(topic string, partition int, reason string) {
	m.failed.WithLabelValues(topic, partitionLabel(partition), reason).Inc()
}

func (m *kafkaMetrics) ConsumerGroupLag(topic string, partition int, lag int64) {
	m.lag.WithLabelValues(topic, partitionLabel(partition)).Set(float64(lag))
}

// partitionLabel maps the reader's "all partitions" marker to a label.
func partitionLabel(partition int) string {
	if partition < 0 {
		return "all"
	}
	return strconv.Itoa(partition)
}
