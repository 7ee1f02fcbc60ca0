package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

type Service interface {
	ListMembershipTypes(ctx context.Context) ([]*MembershipType, error)
	GetMembershipType(ctx context.Context, id TypeID) (*MembershipType, error)
}

var _ Service = (*service)(nil)

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("membership repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to membership.NewService, using default stderr handler")
	}
	return &service{
		repo:   repo,
		logger: logger.With(slog.String("component", "membershipService")),
	}
}

func (s *service) ListMembershipTypes(ctx context.Context) ([]*MembershipType, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing membership types", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list membership types: %w", err)
	}
	s.logger.DebugContext(ctx, "Listed membership types", slog.Int("count", len(types)))
	return types, nil
}

func (s *service) GetMembershipType(ctx context.Context, id TypeID) (*MembershipType, error) {
	mt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Membership type not found", slog.Int("membershipTypeID", int(id)))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding membership type", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get membership type %d: %w", id, err)
	}
	return mt, nil
}
