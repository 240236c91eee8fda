package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"umkmorder/internal/config"
	"umkmorder/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, cfg *config.Postgres, log logger.Logger) error {
	const op = "storage.postgres.Migrate"

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%s: open migrations: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, DSN("pgx5", cfg))
	if err != nil {
		return fmt.Errorf("%s: init migrate: %w", op, err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.LogAttrs(ctx, logger.WarnLevel, "closing migrator failed",
				logger.String("operation", op),
				logger.Any("source_error", srcErr),
				logger.Any("database_error", dbErr),
			)
		}
	}()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.LogAttrs(ctx, logger.InfoLevel, "no new migrations to apply",
				logger.String("operation", op),
			)
			return nil
		}
		return fmt.Errorf("%s: apply migrations: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "migrations applied",
		logger.String("operation", op),
	)
	return nil
}
