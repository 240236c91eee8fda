package cache

import (
	"time"
)

// Cache is a bounded key/value cache with per-entry TTL. A zero TTL never
// expires.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V, ttl time.Duration)
	Has(key K) bool
	Remove(key K) bool
	Len() int
	Capacity() int
	Purge()
	StartCleanup(interval time.Duration)
	StopCleanup()
	SetOnEvicted(onEvicted func(key K, value V))
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// Clock replaces time.Now for expiry checks.
func Clock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
