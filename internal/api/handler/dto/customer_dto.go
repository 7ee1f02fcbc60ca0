package dto

import (
	"strings"
	"time"

	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"
)

const DateLayout = "2006-01-02"

const msgInvalidBirthDate = "birth date must be a date in YYYY-MM-DD format"

type CustomerRequest struct {
	ID                       int64   `json:"id" example:"0"`
	Name                     string  `json:"name" example:"Mary William"`
	BirthDate                *string `json:"birthDate,omitempty" example:"1990-01-01"`
	IsSubscribedToNewsletter bool    `json:"isSubscribedToNewsletter" example:"true"`
	MembershipTypeID         uint8   `json:"membershipTypeId" example:"2"`
}

// ToInput converts the payload into service input. An empty birth date is
// treated as absent.
func (r *CustomerRequest) ToInput() (customer.CustomerInput, error) {
	in := customer.CustomerInput{
		Name:                     r.Name,
		IsSubscribedToNewsletter: r.IsSubscribedToNewsletter,
		MembershipTypeID:         membership.TypeID(r.MembershipTypeID),
	}
	if r.BirthDate != nil {
		d, err := ParseDate(*r.BirthDate)
		if err != nil {
			return customer.CustomerInput{}, err
		}
		in.BirthDate = d
	}
	return in, nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp. Blank input
// yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError(customer.FieldBirthDate, msgInvalidBirthDate)
}

type CustomerResponse struct {
	ID                       int64                   `json:"id" example:"1"`
	Name                     string                  `json:"name" example:"Mary William"`
	BirthDate                *string                 `json:"birthDate" example:"1990-01-01"`
	IsSubscribedToNewsletter bool                    `json:"isSubscribedToNewsletter" example:"true"`
	MembershipTypeID         uint8                   `json:"membershipTypeId" example:"2"`
	MembershipType           *MembershipTypeResponse `json:"membershipType,omitempty"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	resp := CustomerResponse{
		ID:                       cust.ID,
		Name:                     cust.Name,
		IsSubscribedToNewsletter: cust.IsSubscribedToNewsletter,
		MembershipTypeID:         uint8(cust.MembershipTypeID),
	}
	if cust.BirthDate != nil {
		s := cust.BirthDate.Format(DateLayout)
		resp.BirthDate = &s
	}
	if cust.MembershipType != nil {
		mt := NewMembershipTypeResponse(cust.MembershipType)
		resp.MembershipType = &mt
	}
	return resp
}
