package customer

import (
	"strings"
	"time"
	"unicode/utf8"

	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"
)

const (
	MaxNameLength = 255

	FieldName             = "name"
	FieldBirthDate        = "birthDate"
	FieldMembershipTypeID = "membershipTypeId"

	MsgNameRequired          = "name is required"
	MsgNameTooLong           = "name must be at most 255 characters"
	MsgNameInvalidCharacters = "name contains invalid characters"
	MsgBirthDateRequired     = "birth date required"
	MsgMustBeAdult           = "must be at least 18"
	MsgUnknownMembershipType = "membership type does not exist"

	minimumAge = 18
)

// Clock supplies the current time to validation.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// ValidateAgeEligibility checks that customers on paying tiers have a birth
// date and are adults. Unknown and pay-as-you-go customers are not checked.
//
// Age is the difference of calendar years only, so a customer whose birthday
// has not yet come this year counts one year older than they are. This matches
// the behaviour of the existing data and is kept as is until a date-exact rule
// is agreed.
func ValidateAgeEligibility(typeID membership.TypeID, birthDate *time.Time, today time.Time) *apperrors.ValidationError {
	if !typeID.RequiresAgeVerification() {
		return nil
	}
	if birthDate == nil {
		return &apperrors.ValidationError{Field: FieldBirthDate, Message: MsgBirthDateRequired}
	}
	if today.Year()-birthDate.Year() < minimumAge {
		return &apperrors.ValidationError{Field: FieldBirthDate, Message: MsgMustBeAdult}
	}
	return nil
}

// Validate returns every failing field of c. An empty result means c can be
// persisted. Membership type existence is left to the store's foreign key.
func Validate(c *Customer, today time.Time) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	switch {
	case c.Name == "":
		errs = errs.Add(FieldName, MsgNameRequired)
	case !utf8.ValidString(c.Name) || strings.ContainsRune(c.Name, 0):
		// The store rejects both in text columns.
		errs = errs.Add(FieldName, MsgNameInvalidCharacters)
	case utf8.RuneCountInString(c.Name) > MaxNameLength:
		errs = errs.Add(FieldName, MsgNameTooLong)
	}

	if ve := ValidateAgeEligibility(c.MembershipTypeID, c.BirthDate, today); ve != nil {
		errs = append(errs, ve)
	}
	return errs
}
