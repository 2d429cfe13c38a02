// Package money stores currency values as integer hundredths so prices and
// order totals never drift through float rounding.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a value in minor units (1/100 of the currency unit). It is
// stored as a bigint column and encoded in JSON as a decimal number.
type Amount int64

const scale = 100

// maxDigits is the widest integer part an Amount can carry.
const maxDigits = 17

// ErrOutOfRange is returned for values that do not fit in an Amount.
var ErrOutOfRange = errors.New("money: amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(-math.MaxInt64)
)

func FromMinor(minor int64) Amount { return Amount(minor) }

func (a Amount) IsNegative() bool { return a < 0 }

// String renders the shortest decimal form: 100, 10.5, 299.99.
func (a Amount) String() string {
	return decimal.New(int64(a), -2).String()
}

// Parse reads a decimal string such as "299.99" or "1e2". Digits past the
// second decimal place are rounded half away from zero.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	a, err := fromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, s)
	}
	return a, nil
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsZero() {
		return 0, nil
	}
	// Check the magnitude before rounding so huge exponents are never expanded.
	switch mag := d.NumDigits() + int(d.Exponent()); {
	case mag > maxDigits+1:
		return 0, ErrOutOfRange
	case mag < -2:
		return 0, nil
	}
	minor := d.Round(2).Shift(2)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrOutOfRange
	}
	return Amount(minor.IntPart()), nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
