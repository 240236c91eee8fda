package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"umkmorder/pkg/backoff"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"
	"umkmorder/pkg/storage/postgres"

	"github.com/jackc/pgx/v5"
)

const (
	_defaultMaxAttempts    = 3
	_defaultBaseRetryDelay = 10 * time.Millisecond
	_defaultMaxRetryDelay  = 100 * time.Millisecond
)

// Manager runs a unit of work atomically. name labels logs and metrics.
type Manager interface {
	ExecuteInTransaction(ctx context.Context, name string, fn func(tx postgres.QueryExecuter) error) error
}

type manager struct {
	pool    *postgres.Postgres
	log     logger.Logger
	metrics metric.Transaction
	retry   backoff.Policy
}

func NewManager(
	pool *postgres.Postgres,
	log logger.Logger,
	metrics metric.Transaction,
	opts ...Option,
) (Manager, error) {
	tm := &manager{
		pool:    pool,
		log:     log,
		metrics: metrics,
		retry: backoff.Policy{
			Attempts: _defaultMaxAttempts,
			Base:     _defaultBaseRetryDelay,
			Max:      _defaultMaxRetryDelay,
		},
	}

	for _, opt := range opts {
		opt(tm)
	}
	if err := tm.retry.Validate(); err != nil {
		return nil, fmt.Errorf("storage.postgres.transaction.NewManager: %w", err)
	}

	return tm, nil
}

// ExecuteInTransaction runs fn in a read-committed transaction and retries
// the whole transaction on serialization failures, deadlocks and dropped
// connections.
func (tm *manager) ExecuteInTransaction(
	ctx context.Context,
	name string,
	fn func(tx postgres.QueryExecuter) error,
) error {
	const op = "storage.postgres.transaction.ExecuteInTransaction"

	return tm.withRetry(ctx, name, func() error {
		tx, err := tm.pool.Pool.BeginTx(ctx, pgx.TxOptions{
			IsoLevel:   pgx.ReadCommitted,
			AccessMode: pgx.ReadWrite,
		})
		if err != nil {
			return fmt.Errorf("%s: begin tx: %w", op, err)
		}
		defer tm.safelyRollback(ctx, tx, name)

		if err = fn(&postgres.TxQueryExecuter{Tx: tx}); err != nil {
			return fmt.Errorf("%s: %w", op, HandleError(name, "execute", err))
		}
		if err = tx.Commit(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, HandleError(name, "commit", err))
		}
		return nil
	})
}

func (tm *manager) safelyRollback(ctx context.Context, tx pgx.Tx, name string) {
	const op = "storage.postgres.transaction.safelyRollback"

	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		tm.log.LogAttrs(ctx, logger.ErrorLevel, "rollback failed",
			logger.String("operation", op),
			logger.String("transaction", name),
			logger.Err(err),
		)
	}
}

// withRetry replays fn while it fails with a Retryable error, waiting
// between attempts according to tm.retry.
func (tm *manager) withRetry(ctx context.Context, name string, fn func() error) error {
	const op = "storage.postgres.transaction.withRetry"

	start := time.Now()
	defer func() {
		tm.metrics.ObserveDuration(name, time.Since(start))
	}()

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			tm.metrics.IncrementFailures(name)
			return err
		}
		if attempt >= tm.retry.Attempts {
			tm.metrics.IncrementFailures(name)
			return fmt.Errorf("%s: %s gave up after %d attempts: %w", op, name, attempt, err)
		}

		tm.metrics.IncrementRetries(name)
		wait := tm.retry.Delay(attempt - 1)
		tm.log.LogAttrs(ctx, logger.InfoLevel, "retrying transaction",
			logger.String("operation", op),
			logger.String("transaction", name),
			logger.Int("attempt", attempt+1),
			logger.Int("max_attempts", tm.retry.Attempts),
			logger.Duration("retry_after", wait),
			logger.Err(err),
		)

		if sleepErr := backoff.Sleep(ctx, wait); sleepErr != nil {
			tm.metrics.IncrementFailures(name)
			return fmt.Errorf("%s: %w", op, sleepErr)
		}
	}
}
