package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vidly/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	createSchemaMigrationsQuery = `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version    INT PRIMARY KEY,
            name       TEXT NOT NULL,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`

	currentSchemaVersionQuery = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`

	recordMigrationQuery = `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`
)

type Migrator struct {
	db         DBPool
	migrations []Migration
	logger     *slog.Logger
}

// NewMigrator rejects histories that are not strictly increasing positive versions.
func NewMigrator(db DBPool, migrations []Migration, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: DBPool cannot be nil for Migrator", apperrors.ErrInvalidArgument)
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	prev := 0
	for _, m := range migrations {
		if m.Version <= prev {
			return nil, fmt.Errorf("%w: migration %q has version %d, expected greater than %d",
				apperrors.ErrInvalidArgument, m.Name, m.Version, prev)
		}
		prev = m.Version
	}
	return &Migrator{
		db:         db,
		migrations: migrations,
		logger:     logger.With("component", "Migrator"),
	}, nil
}

func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	if err := m.db.QueryRow(ctx, currentSchemaVersionQuery).Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: failed to read schema version: %w", apperrors.ErrDatabase, err)
	}
	return version, nil
}

// Up applies every migration newer than the recorded schema version and
// returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if _, err := m.db.Exec(ctx, createSchemaMigrationsQuery); err != nil {
		return 0, fmt.Errorf("%w: failed to ensure schema_migrations table: %w", apperrors.ErrDatabase, err)
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	m.logger.InfoContext(ctx, "Current schema version", slog.Int("version", current))

	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return applied, err
		}
		applied++
	}

	m.logger.InfoContext(ctx, "Migrations applied", slog.Int("count", applied))
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (err error) {
	logCtx := m.logger.With(slog.Int("version", mig.Version), slog.String("name", mig.Name))
	logCtx.InfoContext(ctx, "Applying migration")

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin migration %d: %w", apperrors.ErrDatabase, mig.Version, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logCtx.ErrorContext(ctx, "Failed to rollback migration", slog.Any("error", rbErr))
		}
	}()

	for _, stmt := range mig.Statements {
		if _, err = tx.Exec(ctx, stmt); err != nil {
			logCtx.ErrorContext(ctx, "Migration statement failed", slog.Any("error", err))
			return fmt.Errorf("%w: apply migration %d (%s): %w", apperrors.ErrDatabase, mig.Version, mig.Name, err)
		}
	}
	if _, err = tx.Exec(ctx, recordMigrationQuery, mig.Version, mig.Name); err != nil {
		return fmt.Errorf("%w: record migration %d: %w", apperrors.ErrDatabase, mig.Version, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit migration %d: %w", apperrors.ErrDatabase, mig.Version, err)
	}
	return nil
}
