package membership_test

import (
	"testing"

	"vidly/internal/domain/membership"

	"github.com/stretchr/testify/assert"
)

func TestTypeID_RequiresAgeVerification(t *testing.T) {
	tests := []struct {
		name string
		id   membership.TypeID
		want bool
	}{
		{"Unknown is exempt", membership.Unknown, false},
		{"Pay as you go is exempt", membership.PayAsYouGo, false},
		{"Monthly is a paying tier", 2, true},
		{"Quarterly is a paying tier", 3, true},
		{"Highest code is a paying tier", 255, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.RequiresAgeVerification())
		})
	}
}
