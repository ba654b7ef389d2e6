// Package currency converts between decimal major-unit amounts, as people
// type them, and the integer minor units the ledger stores. The scale comes
// from the currency: two places for USD, none for JPY, three for BHD.
package currency

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// Default is used when no currency is configured.
const Default = money.USD

// Unit is a currency with its minor-unit scale.
type Unit struct {
	code     string
	fraction int32
}

// Lookup finds a currency by ISO 4217 code.
func Lookup(code string) (Unit, error) {
	c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		return Unit{}, fmt.Errorf("%w: unknown currency %q", model.ErrInvalidInput, code)
	}
	return Unit{code: c.Code, fraction: int32(c.Fraction)}, nil
}

// MustLookup is Lookup for codes known to be valid.
func MustLookup(code string) Unit {
	u, err := Lookup(code)
	if err != nil {
		panic(err)
	}
	return u
}

func (u Unit) Code() string { return u.code }

// Fraction is the number of decimal places of the minor unit.
func (u Unit) Fraction() int { return int(u.fraction) }

// MinorUnits converts a major-unit amount to minor units. Amounts finer
// than the minor unit are rejected.
func (u Unit) MinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(u.fraction)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimal places for %s",
			model.ErrInvalidInput, amount.String(), u.fraction, u.code)
	}
	if !shifted.Equal(decimal.NewFromInt(shifted.IntPart())) {
		return 0, fmt.Errorf("%w: amount %s is out of range", model.ErrInvalidInput, amount.String())
	}
	return shifted.IntPart(), nil
}

// Parse reads a typed major-unit amount ("12.50", "-3") into minor units.
func (u Unit) Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", model.ErrInvalidInput, s)
	}
	return u.MinorUnits(d)
}

// Major renders minor units as a plain decimal with the currency's scale,
// e.g. "-12.50" for USD or "1200" for JPY.
func (u Unit) Major(amount int64) string {
	return decimal.New(amount, -u.fraction).StringFixed(u.fraction)
}

// Format renders minor units for display, e.g. "$1,200.00" or "¥1,200".
func (u Unit) Format(amount int64) string {
	return money.New(amount, u.code).Display()
}
