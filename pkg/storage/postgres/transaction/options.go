package transaction

import "time"

type Option func(*manager)

// MaxAttempts counts the first try, so 1 disables retries.
func MaxAttempts(attempts int) Option {
	return func(m *manager) {
		m.retry.Attempts = attempts
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(m *manager) {
		m.retry.Base = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(m *manager) {
		m.retry.Max = delay
	}
}
