package customer_test

import (
	"strings"
	"testing"
	"time"

	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestValidateAgeEligibility_Scenarios(t *testing.T) {
	const quarterly membership.TypeID = 3
	year := today.Year()

	tests := []struct {
		name      string
		typeID    membership.TypeID
		birthDate *time.Time
		wantMsg   string
	}{
		{"A: pay as you go without birth date", membership.PayAsYouGo, nil, ""},
		{"B: paying tier without birth date", quarterly, nil, customer.MsgBirthDateRequired},
		{"C: paying tier aged 17 by year", quarterly, date(year-17, 1, 1), customer.MsgMustBeAdult},
		{"D: paying tier aged 18 by year", quarterly, date(year-18, 1, 1), ""},
		{"D: birthday later this year still counts", quarterly, date(year-18, 12, 31), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := customer.ValidateAgeEligibility(tt.typeID, tt.birthDate, today)
			if tt.wantMsg == "" {
				assert.Nil(t, ve)
				return
			}
			require.NotNil(t, ve)
			assert.Equal(t, customer.FieldBirthDate, ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestValidateAgeEligibility_ExemptTiersIgnoreBirthDate(t *testing.T) {
	birthDates := []*time.Time{nil, date(2026, 1, 1), date(1900, 6, 15), date(2030, 1, 1)}
	for _, id := range []membership.TypeID{membership.Unknown, membership.PayAsYouGo} {
		for _, bd := range birthDates {
			assert.Nil(t, customer.ValidateAgeEligibility(id, bd, today))
		}
	}
}

func TestValidateAgeEligibility_PayingTiers(t *testing.T) {
	for id := 2; id <= 255; id++ {
		typeID := membership.TypeID(id)

		ve := customer.ValidateAgeEligibility(typeID, nil, today)
		require.NotNil(t, ve)
		assert.Equal(t, customer.MsgBirthDateRequired, ve.Message)

		for yearsAgo := 0; yearsAgo <= 40; yearsAgo += 3 {
			ve := customer.ValidateAgeEligibility(typeID, date(today.Year()-yearsAgo, 6, 1), today)
			if yearsAgo < 18 {
				require.NotNil(t, ve)
				assert.Equal(t, customer.MsgMustBeAdult, ve.Message)
			} else {
				assert.Nil(t, ve)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid customer", func(t *testing.T) {
		c := &customer.Customer{Name: "John Smith", MembershipTypeID: membership.PayAsYouGo}
		assert.Empty(t, customer.Validate(c, today))
	})

	t.Run("collects every failing field", func(t *testing.T) {
		c := &customer.Customer{Name: "", MembershipTypeID: 2}
		errs := customer.Validate(c, today)
		require.Len(t, errs, 2)
		assert.Equal(t, customer.FieldName, errs[0].Field)
		assert.Equal(t, customer.MsgNameRequired, errs[0].Message)
		assert.Equal(t, customer.FieldBirthDate, errs[1].Field)
		assert.Equal(t, customer.MsgBirthDateRequired, errs[1].Message)
	})

	t.Run("name length counted in characters", func(t *testing.T) {
		ok := &customer.Customer{Name: strings.Repeat("é", customer.MaxNameLength)}
		assert.Empty(t, customer.Validate(ok, today))

		long := &customer.Customer{Name: strings.Repeat("a", customer.MaxNameLength+1)}
		errs := customer.Validate(long, today)
		require.Len(t, errs, 1)
		assert.Equal(t, customer.MsgNameTooLong, errs[0].Message)
	})

	t.Run("name with characters the store cannot hold", func(t *testing.T) {
		for _, name := range []string{"Mary\x00William", "Mary\xffWilliam"} {
			c := &customer.Customer{Name: name, MembershipTypeID: membership.PayAsYouGo}
			errs := customer.Validate(c, today)
			require.Len(t, errs, 1, "name %q", name)
			assert.Equal(t, customer.FieldName, errs[0].Field)
			assert.Equal(t, customer.MsgNameInvalidCharacters, errs[0].Message)
		}
	})
}

func TestNewCustomer_Normalises(t *testing.T) {
	birth := time.Date(1990, 3, 4, 17, 45, 0, 0, time.FixedZone("X", 3600))
	c := customer.NewCustomer(customer.CustomerInput{
		Name:             "  Mary William ",
		BirthDate:        &birth,
		MembershipTypeID: 2,
	})

	assert.Equal(t, "Mary William", c.Name)
	assert.Equal(t, date(1990, 3, 4), c.BirthDate)
	assert.Zero(t, c.ID)
}
