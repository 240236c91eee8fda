// Package metric defines the collectors the order service reports to and
// their Prometheus implementation.
package metric

//go:generate mockgen -source=metrics.go -destination=mock/metrics.go -package=mock_metric

import (
	"net/http"
	"time"
)

type (
	// Factory hands out the per-component collectors and serves them over
	// HTTP.
	Factory interface {
		HTTP() HTTP
		Transaction() Transaction
		Cache() Cache
		Kafka() Kafka
		DLQ() DLQ
		Order() Order
		Handler() http.Handler
	}

	HTTP interface {
		Request(method, route string, status int, elapsed time.Duration)
		SlowRequest(method, route string, status int, elapsed time.Duration)
	}

	// Transaction tracks the postgres document store's retried transactions.
	Transaction interface {
		ObserveDuration(name string, elapsed time.Duration)
		IncrementRetries(name string)
		IncrementFailures(name string)
	}

	Cache interface {
		Hit(name string)
		Miss(name string)
		Eviction(name, reason string)
		Size(name string, entries int)
	}

	// Kafka covers the intake topic consumer.
	Kafka interface {
		MessageProcessed(topic string, partition int)
		MessageFailed(topic string, partition int, reason string)
		ConsumerGroupLag(topic string, partition int, lag int64)
	}

	Order interface {
		Submitted(source string)
		StatusChanged(from, to string)
		Expired(count int)
		NotificationRendered(template string)
	}

	DLQ interface {
		DLSent(dlqTopic, originalTopic string, retryCount int)
		DLError(dlqTopic, reason string)
		DLRetryCount(originalTopic string, retryCount int)
	}
)
