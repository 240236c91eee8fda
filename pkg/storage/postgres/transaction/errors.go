package transaction

import (
	"context"
	"errors"
	"fmt"

	"umkmorder/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const _uniqueViolation = "23505"

// SQLSTATE codes after which the whole transaction is worth replaying.
var _retryableCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"08000": {},
	"08001": {},
	"08003": {},
	"08004": {},
	"08006": {},
	"08007": {},
	"08P01": {},
}

// HandleError annotates an error raised inside a transaction with the
// transaction name and step. Unique violations become
// entity.ErrConflictingData; other errors keep their chain.
func HandleError(name, step string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == _uniqueViolation {
		return fmt.Errorf("%s: %s: %w", name, step, entity.ErrConflictingData)
	}
	return fmt.Errorf("%s: %s: %w", name, step, err)
}

// Retryable reports whether err came from a conflict or a dropped
// connection rather than from the caller's own logic. Context errors are
// never retried.
func Retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := _retryableCodes[pgErr.Code]
		return ok
	}
	return errors.Is(err, pgx.ErrTxClosed)
}
