package customer

import (
	"context"

	"vidly/internal/pkg/apperrors"
)

var ErrNotFound = apperrors.ErrNotFound

type CustomerRepository interface {
	// Save inserts c when c.ID is zero and assigns the new ID, otherwise it
	// overwrites the mutable fields of the existing row. Updating a missing
	// row returns ErrNotFound.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	// Delete removes the row and returns it as it was before removal.
	Delete(ctx context.Context, customerID int64) (*Customer, error)
}
