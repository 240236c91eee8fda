package kafkat

import (
	"context"
	"time"

	"umkmorder/pkg/backoff"
)

const (
	_readRetryBase = 100 * time.Millisecond
	_readRetryMax  = 5 * time.Second
)

// readBackoff paces ReadMessage after consecutive failures so a broken
// reader does not spin.
type readBackoff struct {
	policy   backoff.Policy
	sleep    func(ctx context.Context, d time.Duration) error
	failures int
}

func newReadBackoff() *readBackoff {
	return &readBackoff{
		policy: backoff.Policy{Attempts: 1, Base: _readRetryBase, Max: _readRetryMax},
		sleep:  backoff.Sleep,
	}
}

// wait blocks before the next read. It fails only when ctx is done.
func (b *readBackoff) wait(ctx context.Context) error {
	b.failures++
	return b.sleep(ctx, b.policy.Delay(b.failures-1))
}

func (b *readBackoff) reset() { b.failures = 0 }
