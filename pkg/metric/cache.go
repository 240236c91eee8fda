package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ Cache = (*cacheMetrics)(nil)

type cacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	entries   *prometheus.GaugeVec
}

func newCacheMetrics(factory promauto.Factory) *cacheMetrics {
	return &cacheMetrics{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Lookups served from the cache.",
		}, []string{"cache"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Lookups that fell through to the store.",
		}, []string{"cache"}),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries dropped from the cache, by reason (capacity, expired, removed).",
		}, []string{"cache", "reason"}),
		entries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: _namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently held.",
		}, []string{"cache"}),
	}
}

func (m *cacheMetrics) Hit(cache string)  { m.hits.WithLabelValues(cache).Inc() }
func (m *cacheMetrics) Miss(cache string) { m.misses.WithLabelValues(cache).Inc() }

func (m *cacheMetrics) Eviction(cache, reason string) {
	m.evictions.WithLabelValues(cache, reason).Inc()
}

func (m *cacheMetrics) Size(cache string, size int) {
	m.entries.WithLabelValues(cache).Set(float64(size))
}
