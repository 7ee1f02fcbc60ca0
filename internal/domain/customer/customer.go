package customer

import (
	"strings"
	"time"

	"vidly/internal/domain/membership"
)

type Customer struct {
	ID                       int64
	Name                     string
	BirthDate                *time.Time
	IsSubscribedToNewsletter bool
	MembershipTypeID         membership.TypeID

	// MembershipType is populated by list and lookup queries; it is never
	// written back to the store.
	MembershipType *membership.MembershipType
}

// CustomerInput carries the mutable fields of a customer as submitted by a
// form or API payload.
type CustomerInput struct {
	Name                     string
	BirthDate                *time.Time
	IsSubscribedToNewsletter bool
	MembershipTypeID         membership.TypeID
}

// NewCustomer builds an unsaved customer from input. Names are trimmed and
// birth dates are truncated to the calendar day.
func NewCustomer(in CustomerInput) *Customer {
	c := &Customer{}
	c.Apply(in)
	return c
}

// Apply replaces every mutable field with the input values.
func (c *Customer) Apply(in CustomerInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.BirthDate = dateOnly(in.BirthDate)
	c.IsSubscribedToNewsletter = in.IsSubscribedToNewsletter
	c.MembershipTypeID = in.MembershipTypeID
	if c.MembershipType != nil && c.MembershipType.ID != in.MembershipTypeID {
		c.MembershipType = nil
	}
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
