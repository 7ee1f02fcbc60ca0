package dto

import (
	"vidly/internal/domain/membership"

	"github.com/shopspring/decimal"
)

type MembershipTypeResponse struct {
	ID               uint8           `json:"id" example:"2"`
	Name             string          `json:"name" example:"Monthly"`
	SignUpFee        decimal.Decimal `json:"signUpFee" swaggertype:"string" example:"30"`
	DurationInMonths uint8           `json:"durationInMonths" example:"1"`
	DiscountRate     uint8           `json:"discountRate" example:"10"`
}

func NewMembershipTypeResponse(mt *membership.MembershipType) MembershipTypeResponse {
	if mt == nil {
		return MembershipTypeResponse{}
	}
	return MembershipTypeResponse{
		ID:               uint8(mt.ID),
		Name:             mt.Name,
		SignUpFee:        mt.SignUpFee,
		DurationInMonths: mt.DurationInMonths,
		DiscountRate:     mt.DiscountRate,
	}
}
