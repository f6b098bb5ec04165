package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmountAttached(t *testing.T) {
	tests := []struct {
		name string
		caps Captures
		want string
	}{
		{name: "two digits", caps: Captures{GroupInteger: "123", GroupFraction: "20"}, want: "123.20"},
		{name: "one digit is tenths", caps: Captures{GroupInteger: "123", GroupFraction: "5"}, want: "123.50"},
		{name: "leading zero fraction", caps: Captures{GroupInteger: "7", GroupFraction: "05"}, want: "7.05"},
		{name: "empty fraction is whole", caps: Captures{GroupInteger: "123", GroupFraction: ""}, want: "123"},
		{name: "absent fraction is whole", caps: Captures{GroupInteger: "123"}, want: "123"},
		{name: "grouped thousands", caps: Captures{GroupInteger: "1 234", GroupFraction: "56"}, want: "1234.56"},
		{name: "nbsp grouping", caps: Captures{GroupInteger: "12 345"}, want: "12345"},
		{name: "zero", caps: Captures{GroupInteger: "0", GroupFraction: "00"}, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(ShapeAttached, tt.caps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, got.Value.IsNegative())
		})
	}
}

func TestNormalizeAmountSubunit(t *testing.T) {
	tests := []struct {
		name string
		caps Captures
		want string
	}{
		{name: "units and subunits", caps: Captures{GroupInteger: "123", GroupSubunit: "20"}, want: "123.20"},
		{name: "single digit subunit is hundredths", caps: Captures{GroupInteger: "123", GroupSubunit: "5"}, want: "123.05"},
		{name: "units only", caps: Captures{GroupInteger: "40"}, want: "40"},
		{name: "subunits only", caps: Captures{GroupSubunit: "99"}, want: "0.99"},
		{name: "grouped units", caps: Captures{GroupInteger: "2 000", GroupSubunit: "01"}, want: "2000.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(ShapeSubunit, tt.caps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalizeAmountErrors(t *testing.T) {
	tests := []struct {
		name  string
		shape AmountShape
		caps  Captures
	}{
		{name: "attached without integer", shape: ShapeAttached, caps: Captures{GroupFraction: "20"}},
		{name: "attached three digit fraction", shape: ShapeAttached, caps: Captures{GroupInteger: "1", GroupFraction: "123"}},
		{name: "subunit nothing captured", shape: ShapeSubunit, caps: Captures{}},
		{name: "subunit over 99", shape: ShapeSubunit, caps: Captures{GroupSubunit: "100"}},
		{name: "non digit", shape: ShapeSubunit, caps: Captures{GroupInteger: "1x"}},
		{name: "unknown shape", shape: ShapeNone, caps: Captures{GroupInteger: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeAmount(tt.shape, tt.caps)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestAmountNotationsAgree(t *testing.T) {
	attached, err := NormalizeAmount(ShapeAttached, Captures{GroupInteger: "123", GroupFraction: "20"})
	require.NoError(t, err)
	subunit, err := NormalizeAmount(ShapeSubunit, Captures{GroupInteger: "123", GroupSubunit: "20"})
	require.NoError(t, err)

	assert.True(t, attached.Equal(subunit))
	assert.True(t, attached.Value.Equal(decimal.RequireFromString("123.2")))
	assert.Equal(t, attached.String(), subunit.String())
}
