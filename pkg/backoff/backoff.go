// Package backoff holds the capped exponential retry policy shared by the
// postgres pool, the transaction manager and the dead letter queue.
package backoff

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const _multiplier = 2

// Policy allows Attempts tries in total. The n-th wait is drawn uniformly
// from [0, min(Max, Base*2^n)).
type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

func (p Policy) Validate() error {
	var errs []error
	if p.Attempts <= 0 {
		errs = append(errs, errors.New("attempts must be > 0"))
	}
	if p.Base <= 0 {
		errs = append(errs, errors.New("base retry delay must be > 0"))
	}
	if p.Max <= 0 {
		errs = append(errs, errors.New("max retry delay must be > 0"))
	}
	if p.Base > p.Max {
		errs = append(errs, errors.New("base retry delay cannot exceed max retry delay"))
	}
	return errors.Join(errs...)
}

// Ceiling is the upper bound of the wait before retry n (0-based).
func (p Policy) Ceiling(retry int) time.Duration {
	ceiling := p.Base
	for range retry {
		if ceiling >= p.Max/_multiplier {
			return p.Max
		}
		ceiling *= _multiplier
	}
	return min(ceiling, p.Max)
}

// Delay returns a jittered wait before retry n (0-based).
func (p Policy) Delay(retry int) time.Duration {
	ceiling := p.Ceiling(retry)
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling)))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
