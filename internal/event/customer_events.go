package event

import "time"

const birthDateLayout = "2006-01-02"

type CustomerEventPayload struct {
	CustomerID               int64   `json:"customerId"`
	Name                     string  `json:"name"`
	BirthDate                *string `json:"birthDate,omitempty"`
	IsSubscribedToNewsletter bool    `json:"isSubscribedToNewsletter"`
	MembershipTypeID         uint8   `json:"membershipTypeId"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

// FormatBirthDate renders an optional birth date as a calendar date.
func FormatBirthDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(birthDateLayout)
	return &s
}
