package lifecycle

import "time"

type Option func(*Engine)

func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithStrictTransitions switches to PolicyForwardOnly when strict is true.
func WithStrictTransitions(strict bool) Option {
	return func(e *Engine) {
		if strict {
			e.policy = PolicyForwardOnly
		}
	}
}

func WithPaymentWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.paymentWindow = window
		}
	}
}
