package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	insertCustomerQuery = `
        INSERT INTO customers (name, birth_date, is_subscribed_to_newsletter, membership_type_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	updateCustomerQuery = `
        UPDATE customers
        SET name = $1,
            birth_date = $2,
            is_subscribed_to_newsletter = $3,
            membership_type_id = $4
        WHERE id = $5`

	selectCustomerQuery = `
        SELECT c.id, c.name, c.birth_date, c.is_subscribed_to_newsletter, c.membership_type_id,
               m.name, m.sign_up_fee::text, m.duration_in_months, m.discount_rate
        FROM customers c
        JOIN membership_types m ON m.id = c.membership_type_id`

	findCustomerByIDQuery = selectCustomerQuery + `
        WHERE c.id = $1`

	findAllCustomersQuery = selectCustomerQuery + `
        ORDER BY c.id ASC`

	deleteCustomerQuery = `
        WITH c AS (
            DELETE FROM customers
            WHERE id = $1
            RETURNING id, name, birth_date, is_subscribed_to_newsletter, membership_type_id
        )
        SELECT c.id, c.name, c.birth_date, c.is_subscribed_to_newsletter, c.membership_type_id,
               m.name, m.sign_up_fee::text, m.duration_in_months, m.discount_rate
        FROM c
        JOIN membership_types m ON m.id = c.membership_type_id`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.ID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer observe("customer_insert", &err)()
	r.logger.DebugContext(ctx, "Attempting to insert new customer", slog.String("name", cust.Name))

	err = r.db.QueryRow(ctx, insertCustomerQuery,
		cust.Name,
		toPgDate(cust.BirthDate),
		cust.IsSubscribedToNewsletter,
		int16(cust.MembershipTypeID),
	).Scan(&cust.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer observe("customer_update", &err)()
	logCtx := r.logger.With(slog.Int64("customerID", cust.ID))
	logCtx.DebugContext(ctx, "Attempting to update customer")

	cmdTag, err := r.db.Exec(ctx, updateCustomerQuery,
		cust.Name,
		toPgDate(cust.BirthDate),
		cust.IsSubscribedToNewsletter,
		int16(cust.MembershipTypeID),
		cust.ID,
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return translateDBError(err, logCtx)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer observe("customer_find_by_id", &err)()
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	cust, err = scanCustomerWithMembership(r.db.QueryRow(ctx, findCustomerByIDQuery, customerID))
	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found")
		}
		return nil, translated
	}

	logCtx.DebugContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []*customer.Customer, err error) {
	defer observe("customer_find_all", &err)()

	rows, err := r.db.Query(ctx, findAllCustomersQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		cust, scanErr := scanCustomerWithMembership(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", scanErr))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, scanErr)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer observe("customer_delete", &err)()
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	cust, err = scanCustomerWithMembership(r.db.QueryRow(ctx, deleteCustomerQuery, customerID))
	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Delete matched zero rows, customer likely not found")
		}
		return nil, translated
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return cust, nil
}

func scanCustomerWithMembership(row pgx.Row) (*customer.Customer, error) {
	var (
		cust     customer.Customer
		mt       membership.MembershipType
		typeID   int16
		fee      string
		duration int16
		discount int16
	)
	err := row.Scan(
		&cust.ID,
		&cust.Name,
		&cust.BirthDate,
		&cust.IsSubscribedToNewsletter,
		&typeID,
		&mt.Name,
		&fee,
		&duration,
		&discount,
	)
	if err != nil {
		return nil, err
	}

	signUpFee, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("invalid sign up fee %q: %w", fee, err)
	}

	cust.BirthDate = dateOnly(cust.BirthDate)
	cust.MembershipTypeID = membership.TypeID(typeID)
	mt.ID = cust.MembershipTypeID
	mt.SignUpFee = signUpFee
	mt.DurationInMonths = uint8(duration)
	mt.DiscountRate = uint8(discount)
	cust.MembershipType = &mt
	return &cust, nil
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
