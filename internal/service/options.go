package service

import (
	"time"

	"umkmorder/pkg/metric"
)

const (
	_defaultCacheTTL = 10 * time.Minute
	_defaultIDPrefix = "SMB"
)

type Option func(*OrderService)

func CacheTTL(ttl time.Duration) Option {
	return func(s *OrderService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// CachedReads lets GetOrder and Track answer from the in-process cache.
// Enable it only when this process is the sole writer of the store.
func CachedReads(enabled bool) Option {
	return func(s *OrderService) {
		s.cachedReads = enabled
	}
}

func Metrics(m metric.Order) Option {
	return func(s *OrderService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Clock replaces time.Now, mostly for tests.
func Clock(now func() time.Time) Option {
	return func(s *OrderService) {
		if now != nil {
			s.now = now
		}
	}
}

// Location sets the timezone used for order IDs, the month window and
// rendered dates.
func Location(loc *time.Location) Option {
	return func(s *OrderService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func CutoffDay(day int) Option {
	return func(s *OrderService) {
		if day >= 1 && day <= 31 {
			s.cutoffDay = day
		}
	}
}

func WindowMonths(months int) Option {
	return func(s *OrderService) {
		if months > 0 {
			s.windowMonths = months
		}
	}
}

func IDPrefix(prefix string) Option {
	return func(s *OrderService) {
		if prefix != "" {
			s.idPrefix = prefix
		}
	}
}

// FallbackPhone is the WhatsApp number used when an order has no phone.
func FallbackPhone(phone string) Option {
	return func(s *OrderService) {
		s.fallbackPhone = phone
	}
}
