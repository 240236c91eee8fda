package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryExecuter runs statements either on the pool or inside a transaction.
type QueryExecuter interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var (
	_ QueryExecuter = (*pgxpool.Pool)(nil)
	_ QueryExecuter = (*TxQueryExecuter)(nil)
)

// TxQueryExecuter adapts a pgx.Tx and tags its errors.
type TxQueryExecuter struct {
	Tx pgx.Tx
}

func (t *TxQueryExecuter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := t.Tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.postgres.TxQueryExecuter.Query: %w", err)
	}
	return rows, nil
}

func (t *TxQueryExecuter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.Tx.QueryRow(ctx, sql, args...)
}

func (t *TxQueryExecuter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := t.Tx.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("storage.postgres.TxQueryExecuter.Exec: %w", err)
	}
	return tag, nil
}

// ExecBuilt renders query and executes it on e.
func ExecBuilt(ctx context.Context, e QueryExecuter, query squirrel.Sqlizer) (pgconn.CommandTag, error) {
	const op = "storage.postgres.ExecBuilt"

	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("%s: building query: %w", op, err)
	}
	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("%s: %w", op, err)
	}
	return tag, nil
}

// QueryRowBuilt renders query and runs it on e. A build failure is reported
// by Scan on the returned row.
func QueryRowBuilt(ctx context.Context, e QueryExecuter, query squirrel.Sqlizer) pgx.Row {
	sql, args, err := query.ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("storage.postgres.QueryRowBuilt: building query: %w", err)}
	}
	return e.QueryRow(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
