package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/pkg/storage/postgres"
	"umkmorder/pkg/storage/postgres/transaction"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const documentsTable = "documents"

var _ DocumentStore = (*PostgresStore)(nil)

// PostgresStore keeps documents in the documents table as JSONB. Update
// locks the row with SELECT ... FOR UPDATE inside a retried transaction.
type PostgresStore struct {
	db        *postgres.Postgres
	txManager transaction.Manager
	now       func() time.Time
}

func NewPostgresStore(db *postgres.Postgres, txManager transaction.Manager) *PostgresStore {
	return &PostgresStore{
		db:        db,
		txManager: txManager,
		now:       time.Now,
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "repository.PostgresStore.Get"

	doc, err := s.selectDocument(ctx, s.db.Pool, key, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %s: %w", op, key, entity.ErrDataNotFound)
	}
	return doc, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, doc []byte) error {
	const op = "repository.PostgresStore.Put"

	if err := s.upsertDocument(ctx, s.db.Pool, key, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) Update(
	ctx context.Context,
	key string,
	fn func(current []byte) ([]byte, error),
) error {
	const op = "repository.PostgresStore.Update"

	err := s.txManager.ExecuteInTransaction(ctx, "UpdateDocument", func(tx postgres.QueryExecuter) error {
		current, err := s.selectDocument(ctx, tx, key, true)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}

		return s.upsertDocument(ctx, tx, key, next)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// selectDocument returns nil without error when the key is absent.
func (s *PostgresStore) selectDocument(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	key string,
	forUpdate bool,
) ([]byte, error) {
	const op = "repository.PostgresStore.selectDocument"

	query := s.db.Builder.Select("value").
		From(documentsTable).
		Where(squirrel.Eq{"key": key})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	var doc []byte
	if err := postgres.QueryRowBuilt(ctx, queryExecuter, query).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}
	return doc, nil
}

func (s *PostgresStore) upsertDocument(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	key string,
	doc []byte,
) error {
	const op = "repository.PostgresStore.upsertDocument"

	query := s.db.Builder.Insert(documentsTable).
		Columns("key", "value", "updated_at").
		Values(key, string(doc), s.now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at")

	if _, err := postgres.ExecBuilt(ctx, queryExecuter, query); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
