package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"umkmorder/internal/config"
	"umkmorder/pkg/backoff"
	"umkmorder/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	_defaultMaxPoolSize    = 20
	_defaultConnAttempts   = 10
	_defaultBaseRetryDelay = 100 * time.Millisecond
	_defaultMaxRetryDelay  = 5 * time.Second
)

type Postgres struct {
	Builder squirrel.StatementBuilderType
	Pool    *pgxpool.Pool

	connect     backoff.Policy
	maxPoolSize int32
}

// DSN builds a connection URL for cfg using the given scheme, e.g.
// "postgres" for pgxpool or "pgx5" for migrations.
func DSN(scheme string, cfg *config.Postgres) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

func NewPostgres(
	ctx context.Context,
	cfg *config.Postgres,
	log logger.Logger,
	opts ...Option,
) (*Postgres, error) {
	const op = "storage.postgres.NewPostgres"

	pg := &Postgres{
		connect: backoff.Policy{
			Attempts: _defaultConnAttempts,
			Base:     _defaultBaseRetryDelay,
			Max:      _defaultMaxRetryDelay,
		},
		maxPoolSize: _defaultMaxPoolSize,
	}

	for _, opt := range opts {
		opt(pg)
	}
	if err := pg.validate(); err != nil {
		return nil, fmt.Errorf("%s: validation: %w", op, err)
	}

	pg.Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	poolConfig, err := pgxpool.ParseConfig(DSN("postgres", cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: parse pool config: %w", op, err)
	}

	poolConfig.MaxConns = pg.maxPoolSize

	for attempt := 1; ; attempt++ {
		pg.Pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = pg.Pool.Ping(ctx)
		}
		if err == nil {
			log.LogAttrs(ctx, logger.InfoLevel, "postgres connected",
				logger.String("host", cfg.Host),
				logger.String("database", cfg.Name),
				logger.Int("attempt", attempt),
			)
			return pg, nil
		}
		if pg.Pool != nil {
			pg.Pool.Close()
			pg.Pool = nil
		}
		if attempt >= pg.connect.Attempts {
			return nil, fmt.Errorf("%s: connect after %d attempts: %w", op, attempt, err)
		}

		wait := pg.connect.Delay(attempt - 1)
		log.LogAttrs(ctx, logger.WarnLevel, "postgres connection attempt failed",
			logger.String("operation", op),
			logger.Int("attempt", attempt),
			logger.Duration("retry_after", wait),
			logger.Err(err),
		)

		if sleepErr := backoff.Sleep(ctx, wait); sleepErr != nil {
			return nil, fmt.Errorf("%s: %w", op, sleepErr)
		}
	}
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
