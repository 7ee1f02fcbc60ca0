package membership

import (
	"context"

	"vidly/internal/pkg/apperrors"
)

var ErrNotFound = apperrors.ErrNotFound

type Repository interface {
	FindAll(ctx context.Context) ([]*MembershipType, error)

	FindByID(ctx context.Context, id TypeID) (*MembershipType, error)
}
