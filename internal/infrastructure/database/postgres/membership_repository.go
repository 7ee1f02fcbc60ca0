package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	selectMembershipTypeQuery = `
        SELECT id, name, sign_up_fee::text, duration_in_months, discount_rate
        FROM membership_types`

	findAllMembershipTypesQuery = selectMembershipTypeQuery + `
        ORDER BY id ASC`

	findMembershipTypeByIDQuery = selectMembershipTypeQuery + `
        WHERE id = $1`
)

type MembershipRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ membership.Repository = (*MembershipRepository)(nil)

func NewMembershipRepository(db DBPool, logger *slog.Logger) *MembershipRepository {
	if db == nil {
		panic("DBPool cannot be nil for MembershipRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &MembershipRepository{
		db:     db,
		logger: logger.With("component", "MembershipRepository"),
	}
}

func (r *MembershipRepository) FindAll(ctx context.Context) (types []*membership.MembershipType, err error) {
	defer observe("membership_type_find_all", &err)()

	rows, err := r.db.Query(ctx, findAllMembershipTypesQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query membership types", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query membership types: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	types = make([]*membership.MembershipType, 0)
	for rows.Next() {
		mt, scanErr := scanMembershipType(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan membership type row", slog.Any("error", scanErr))
			return nil, fmt.Errorf("%w: failed to scan membership type row: %w", apperrors.ErrDatabase, scanErr)
		}
		types = append(types, mt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating membership type rows: %w", apperrors.ErrDatabase, err)
	}
	return types, nil
}

func (r *MembershipRepository) FindByID(ctx context.Context, id membership.TypeID) (mt *membership.MembershipType, err error) {
	defer observe("membership_type_find_by_id", &err)()

	mt, err = scanMembershipType(r.db.QueryRow(ctx, findMembershipTypeByIDQuery, int16(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Membership type not found", slog.Int("membershipTypeID", int(id)))
			return nil, apperrors.ErrNotFound
		}
		return nil, translateDBError(err, r.logger)
	}
	return mt, nil
}

func scanMembershipType(row pgx.Row) (*membership.MembershipType, error) {
	var (
		id       int16
		name     string
		fee      string
		duration int16
		discount int16
	)
	if err := row.Scan(&id, &name, &fee, &duration, &discount); err != nil {
		return nil, err
	}
	signUpFee, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("invalid sign up fee %q: %w", fee, err)
	}
	return &membership.MembershipType{
		ID:               membership.TypeID(id),
		Name:             name,
		SignUpFee:        signUpFee,
		DurationInMonths: uint8(duration),
		DiscountRate:     uint8(discount),
	}, nil
}
