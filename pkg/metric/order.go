package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ Order = (*orderMetrics)(nil)

type orderMetrics struct {
	submitted     *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	expired       prometheus.Counter
	notifications *prometheus.CounterVec
}

func newOrderMetrics(factory promauto.Factory) *orderMetrics {
	return &orderMetrics{
		submitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "orders",
			Name:      "submitted_total",
			Help:      "Orders accepted, by intake source.",
		}, []string{"source"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Order status changes made through the admin API.",
		}, []string{"from", "to"}),
		expired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "orders",
			Name:      "expired_total",
			Help:      "Unpaid orders cancelled after the payment window.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "orders",
			Name:      "notifications_rendered_total",
			Help:      "WhatsApp messages rendered, by template.",
		}, []string{"template"}),
	}
}

func (m *orderMetrics) Submitted(source string) { m.submitted.WithLabelValues(source).Inc() }

func (m *orderMetrics) StatusChanged(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *orderMetrics) Expired(count int) { m.expired.Add(float64(count)) }

func (m *orderMetrics) NotificationRendered(template string) {
	m.notifications.WithLabelValues(template).Inc()
}
