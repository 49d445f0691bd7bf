package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode(t *testing.T) {
	v := NewLocationValidator()

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"City With Code", "Chicago (ORD)", "ORD"},
		{"Code With Surrounding Spaces", "  New York (JFK)  ", "JFK"},
		{"Multiple Parens Takes First Code", "Tokyo (Narita) (NRT)", "NRT"},
		{"Plain City Passes Through", "Paris", "Paris"},
		{"Lowercase Code Is Not A Code", "Chicago (ord)", "Chicago (ord)"},
		{"Bare Code Without Parens Passes Through", "LHR", "LHR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ExtractCode(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Empty Label", func(t *testing.T) {
		_, err := v.ExtractCode("   ")
		assert.ErrorIs(t, err, ErrEmptyLocation)
	})
}

func TestValidateDate(t *testing.T) {
	v := NewLocationValidator()

	assert.NoError(t, v.ValidateDate("2026-04-01"))
	assert.ErrorIs(t, v.ValidateDate(""), ErrEmptyDate)
	assert.ErrorIs(t, v.ValidateDate("04/01/2026"), ErrInvalidDate)
	assert.ErrorIs(t, v.ValidateDate("2026-02-30"), ErrInvalidDate)
}
