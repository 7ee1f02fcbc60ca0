package membership

import (
	"github.com/shopspring/decimal"
)

// TypeID is the small integer code identifying a membership tier.
type TypeID uint8

const (
	Unknown    TypeID = 0
	PayAsYouGo TypeID = 1
)

// RequiresAgeVerification reports whether customers on this tier must prove
// they are adults. Only the two reserved codes are exempt.
func (id TypeID) RequiresAgeVerification() bool {
	return id != Unknown && id != PayAsYouGo
}

type MembershipType struct {
	ID               TypeID
	Name             string
	SignUpFee        decimal.Decimal
	DurationInMonths uint8
	DiscountRate     uint8
}
