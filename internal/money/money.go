// Package money represents monetary values as integer minor units (cents).
//
// All arithmetic in the share calculator and the debt ledger is done on
// Amount, so rounding happens exactly once: when a decimal value enters the
// system. Conversions go through shopspring/decimal and round half away from
// zero at the cent.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a value cannot be read as a monetary amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a monetary value in cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Max is the largest magnitude an Amount may hold (10 trillion in major units).
const Max Amount = 1_000_000_000_000_000

var maxCents = decimal.NewFromInt(int64(Max))

// FromDecimal rounds d to the nearest cent. Values beyond ±Max are rejected
// with ErrInvalidAmount.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, d.String(), Max)
	}
	return Amount(cents.IntPart()), nil
}

// FromFloat converts a float (e.g. a JSON number decoded as float64) to cents.
func FromFloat(f float64) (Amount, error) {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "12.34" or "12,34".
// Values with more than two decimals are rounded to the cent.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// Decimal returns the amount as a decimal with two places.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Cents returns the raw minor-unit value.
func (a Amount) Cents() int64 {
	return int64(a)
}

// String formats the amount with exactly two decimals, e.g. "333.34".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Format prefixes the amount with a currency symbol.
func (a Amount) Format(symbol string) string {
	if a < 0 {
		return "-" + symbol + (-a).String()
	}
	return symbol + a.String()
}

// MarshalJSON encodes the amount as a plain JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
