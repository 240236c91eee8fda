package dlq

import "time"

type Option func(*DLQ)

// MaxAttemptsCount bounds handler calls made by ProcessWithRetry before the
// message is dead-lettered.
func MaxAttemptsCount(count int) Option {
	return func(d *DLQ) {
		d.retry.Attempts = count
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(d *DLQ) {
		d.retry.Base = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(d *DLQ) {
		d.retry.Max = delay
	}
}
