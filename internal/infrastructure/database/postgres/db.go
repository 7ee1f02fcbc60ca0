package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidly/internal/domain/customer"
	"vidly/internal/infrastructure/monitoring"
	"vidly/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation        = "23505"
	pgForeignKeyViolation    = "23503"
	pgSerializationFailure   = "40001"
	pgCharacterNotInCharset  = "22021"
	membershipTypeForeignKey = "customers_membership_type_id_fkey"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ DBPool = (*pgxpool.Pool)(nil)

var errMsgFormat = "%w: %w"

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %w: %s", apperrors.ErrConflict, apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			if pgErr.ConstraintName == membershipTypeForeignKey || pgErr.ColumnName == "membership_type_id" {
				contextLogger.Warn("Referenced membership type does not exist", "detail", pgErr.Detail)
				return apperrors.NewValidationError(customer.FieldMembershipTypeID, customer.MsgUnknownMembershipType)
			}
		case pgCharacterNotInCharset:
			contextLogger.Warn("Value rejected by database encoding", "message", pgErr.Message)
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, pgErr.Message)
		case pgSerializationFailure:
			contextLogger.Warn("Concurrent modification detected", "detail", pgErr.Detail)
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Message)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}

// observe times a query; defer the returned func so the final error is seen.
func observe(queryName string, err *error) func() {
	start := time.Now()
	return func() {
		monitoring.RecordDBQuery(queryName, *err, time.Since(start))
	}
}
