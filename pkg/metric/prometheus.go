package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Every collector is registered under this namespace.
const _namespace = "umkm"

var _ Factory = (*prometheusFactory)(nil)

type prometheusFactory struct {
	registry    *prometheus.Registry
	http        *httpMetrics
	transaction *transactionMetrics
	cache       *cacheMetrics
	kafka       *kafkaMetrics
	dlq         *dlqMetrics
	order       *orderMetrics
}

// NewFactory builds every collector on a private registry, so two factories
// never clash on registration.
func NewFactory() Factory {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: _namespace}),
	)

	factory := promauto.With(registry)

	return &prometheusFactory{
		registry:    registry,
		http:        newHTTPMetrics(factory),
		transaction: newTransactionMetrics(factory),
		cache:       newCacheMetrics(factory),
		kafka:       newKafkaMetrics(factory),
		dlq:         newDLQMetrics(factory),
		order:       newOrderMetrics(factory),
	}
}

func (f *prometheusFactory) HTTP() HTTP               { return f.http }
func (f *prometheusFactory) Transaction() Transaction { return f.transaction }
func (f *prometheusFactory) Cache() Cache             { return f.cache }
func (f *prometheusFactory) Kafka() Kafka             { return f.kafka }
func (f *prometheusFactory) DLQ() DLQ                 { return f.dlq }
func (f *prometheusFactory) Order() Order             { return f.order }

func (f *prometheusFactory) Handler() http.Handler {
	return promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          f.registry,
	})
}
