package redis

import (
	"context"
	"fmt"
	"time"

	"umkmorder/internal/config"
	"umkmorder/pkg/backoff"
	"umkmorder/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const (
	_baseRetryDelay = 100 * time.Millisecond
	_maxRetryDelay  = 3 * time.Second
)

// NewClient connects to Redis and pings it, backing off between attempts.
func NewClient(ctx context.Context, cfg *config.Redis, log logger.Logger) (*goredis.Client, error) {
	const op = "storage.redis.NewClient"

	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	retry := backoff.Policy{Attempts: cfg.MaxRetries, Base: _baseRetryDelay, Max: _maxRetryDelay}
	if err := retry.Validate(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var err error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		if attempt == retry.Attempts {
			break
		}

		wait := retry.Delay(attempt - 1)
		log.LogAttrs(ctx, logger.WarnLevel, "redis ping failed",
			logger.String("operation", op),
			logger.String("addr", cfg.Addr),
			logger.Int("attempt", attempt),
			logger.Duration("retry_after", wait),
			logger.Err(err),
		)

		if sleepErr := backoff.Sleep(ctx, wait); sleepErr != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: %w", op, sleepErr)
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
}
