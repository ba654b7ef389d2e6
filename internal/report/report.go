// Package report shapes ledger aggregates into printable reports.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/oikonomos-dev/oikonomos/internal/currency"
)

// Kind names a report.
type Kind string

const (
	KindCashFlow Kind = "cash-flow"
	KindUtility  Kind = "utility"
)

// Item is one labelled line of a report.
type Item struct {
	Label  string
	Amount int64
}

// Report is a period summary grouped by label.
type Report struct {
	Kind   Kind
	Period string // YYYY-MM
	Items  []Item
}

// Title is the human-readable heading of the report.
func (r Report) Title() string {
	switch r.Kind {
	case KindCashFlow:
		return "Cash flow " + r.Period
	case KindUtility:
		return "Utility " + r.Period
	default:
		return string(r.Kind) + " " + r.Period
	}
}

// Total sums every item.
func (r Report) Total() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.Amount
	}
	return total
}

// AdjustmentKPI measures how much of the books came from reconciliation
// adjustments rather than recorded spending.
type AdjustmentKPI struct {
	From, To    string // YYYY-MM, empty = open
	Adjustments int64
	Expenses    int64
	Ratio       decimal.Decimal // Adjustments / Expenses, 4 places; 0 without expenses
}

// NewAdjustmentKPI computes the ratio for the given totals.
func NewAdjustmentKPI(from, to string, adjustments, expenses int64) AdjustmentKPI {
	k := AdjustmentKPI{From: from, To: to, Adjustments: adjustments, Expenses: expenses, Ratio: decimal.Zero}
	if expenses != 0 {
		k.Ratio = decimal.NewFromInt(adjustments).DivRound(decimal.NewFromInt(expenses), 4)
	}
	return k
}

// FormatAmount renders minor units in currency, e.g. "$1,200.00".
func FormatAmount(amount int64, code string) string {
	return unitOf(code).Format(amount)
}

// unitOf falls back to the default currency for unknown codes.
func unitOf(code string) currency.Unit {
	u, err := currency.Lookup(code)
	if err != nil {
		return currency.MustLookup(currency.Default)
	}
	return u
}
