package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when captured groups cannot form an amount
var ErrInvalidAmount = errors.New("invalid amount captures")

const maxSubunit = 99

// Amount is a normalized debited sum. Scale is 2 when the message carried a
// fractional or kopeck component and 0 for a whole amount.
type Amount struct {
	Value decimal.Decimal
	Scale int32
}

// String renders the amount with exactly Scale fractional digits
func (a Amount) String() string {
	return a.Value.StringFixed(a.Scale)
}

// Equal compares values, ignoring Scale
func (a Amount) Equal(b Amount) bool {
	return a.Value.Equal(b.Value)
}

// NormalizeAmount converts one amount match into an Amount according to shape
func NormalizeAmount(shape AmountShape, caps Captures) (Amount, error) {
	switch shape {
	case ShapeAttached:
		return attachedAmount(caps)
	case ShapeSubunit:
		return subunitAmount(caps)
	default:
		return Amount{}, fmt.Errorf("%w: unknown shape %d", ErrInvalidAmount, shape)
	}
}

// attachedAmount: integer + fraction / 10^len(fraction)
func attachedAmount(caps Captures) (Amount, error) {
	whole, err := digits(caps[GroupInteger])
	if err != nil {
		return Amount{}, fmt.Errorf("%w: integer part %q", ErrInvalidAmount, caps[GroupInteger])
	}

	frac := caps[GroupFraction]
	if frac == "" {
		return Amount{Value: whole}, nil
	}
	if len(frac) > 2 {
		return Amount{}, fmt.Errorf("%w: fraction %q", ErrInvalidAmount, frac)
	}
	f, err := digits(frac)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: fraction %q", ErrInvalidAmount, frac)
	}
	return Amount{Value: whole.Add(f.Shift(-int32(len(frac)))), Scale: 2}, nil
}

// subunitAmount: integer (or 0) + subunit / 100 (or 0)
func subunitAmount(caps Captures) (Amount, error) {
	if !caps.Has(GroupInteger) && !caps.Has(GroupSubunit) {
		return Amount{}, fmt.Errorf("%w: neither whole units nor subunits captured", ErrInvalidAmount)
	}

	value := decimal.Zero
	if caps.Has(GroupInteger) {
		whole, err := digits(caps[GroupInteger])
		if err != nil {
			return Amount{}, fmt.Errorf("%w: integer part %q", ErrInvalidAmount, caps[GroupInteger])
		}
		value = whole
	}
	if !caps.Has(GroupSubunit) {
		return Amount{Value: value}, nil
	}

	sub, err := digits(caps[GroupSubunit])
	if err != nil || sub.GreaterThan(decimal.NewFromInt(maxSubunit)) {
		return Amount{}, fmt.Errorf("%w: subunit %q", ErrInvalidAmount, caps[GroupSubunit])
	}
	return Amount{Value: value.Add(sub.Shift(-2)), Scale: 2}, nil
}

// digits parses a run of ASCII digits, dropping thousands grouping spaces
func digits(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return decimal.Zero, fmt.Errorf("non-digit %q in %q", s[i], s)
		}
	}
	return decimal.NewFromString(s)
}
