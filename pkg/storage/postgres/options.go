package postgres

import (
	"errors"
	"time"
)

type Option func(*Postgres)

func MaxPoolSize(size int32) Option {
	return func(p *Postgres) {
		p.maxPoolSize = size
	}
}

// MaxConnAttempts bounds how many times the pool is dialled at startup.
func MaxConnAttempts(attempts int) Option {
	return func(p *Postgres) {
		p.connect.Attempts = attempts
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(p *Postgres) {
		p.connect.Base = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(p *Postgres) {
		p.connect.Max = delay
	}
}

func (p *Postgres) validate() error {
	var errs []error
	if p.maxPoolSize <= 0 {
		errs = append(errs, errors.New("max pool size must be > 0"))
	}
	if err := p.connect.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
