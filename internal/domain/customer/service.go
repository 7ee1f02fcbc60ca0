package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vidly/internal/event"
	"vidly/internal/infrastructure/monitoring"
	"vidly/internal/pkg/apperrors"
)

const customerNotFound = "Customer not found by repository"

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, in CustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	clock  Clock
	logger *slog.Logger
}

type ServiceOption func(*customerService)

// WithClock replaces the wall clock used for age checks.
func WithClock(clock Clock) ServiceOption {
	return func(s *customerService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewCustomerService(repo CustomerRepository, publisher event.EventPublisher, logger *slog.Logger, opts ...ServiceOption) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if publisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		publisher = event.NopPublisher{}
	}

	s := &customerService{
		repo:   repo,
		pub:    publisher,
		clock:  SystemClock,
		logger: logger.With(slog.String("component", "customerService")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newEventPayload(c *Customer) event.CustomerEventPayload {
	return event.CustomerEventPayload{
		CustomerID:               c.ID,
		Name:                     c.Name,
		BirthDate:                event.FormatBirthDate(c.BirthDate),
		IsSubscribedToNewsletter: c.IsSubscribedToNewsletter,
		MembershipTypeID:         uint8(c.MembershipTypeID),
	}
}

func (s *customerService) validate(ctx context.Context, logger *slog.Logger, c *Customer) error {
	errs := Validate(c, s.clock())
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		monitoring.RecordValidationFailure(e.Field)
	}
	logger.WarnContext(ctx, "Validation failed", slog.String("error", errs.Error()))
	return errs
}

// storeFailure records field failures raised by the store (a missing
// membership type) before handing the error back.
func (s *customerService) storeFailure(err error) {
	for _, e := range apperrors.Fields(err) {
		monitoring.RecordValidationFailure(e.Field)
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	logger := s.logger.With(slog.Int("membershipTypeID", int(in.MembershipTypeID)))
	logger.InfoContext(ctx, "Attempting to create new customer")

	customer := NewCustomer(in)
	if err := s.validate(ctx, logger, customer); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		s.storeFailure(err)
		logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	logger = logger.With(slog.Int64("customerID", customer.ID))
	monitoring.RecordCustomerOperation("created")

	evt := event.CustomerCreatedEvent{Timestamp: time.Now(), Payload: newEventPayload(customer)}
	if pubErr := s.pub.PublishCustomerCreated(ctx, evt); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logger.DebugContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

// UpdateCustomer overwrites every mutable field. Concurrent updates of the
// same customer are not reconciled: the last write to reach the store wins.
func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, in CustomerInput) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	if customerID <= 0 {
		logger.WarnContext(ctx, customerNotFound)
		return nil, ErrNotFound
	}

	customer := NewCustomer(in)
	customer.ID = customerID
	if err := s.validate(ctx, logger, customer); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		s.storeFailure(err)
		logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerOperation("updated")

	evt := event.CustomerUpdatedEvent{Timestamp: time.Now(), Payload: newEventPayload(customer)}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, evt); pubErr != nil {
		logger.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully updated customer")
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	if customerID <= 0 {
		logger.WarnContext(ctx, customerNotFound)
		return nil, ErrNotFound
	}

	removed, err := s.repo.Delete(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerOperation("deleted")

	evt := event.CustomerDeletedEvent{Timestamp: time.Now(), Payload: newEventPayload(removed)}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, evt); pubErr != nil {
		logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully deleted customer")
	return removed, nil
}
