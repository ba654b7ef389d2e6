// Package calendar produces canonical UTC timestamps and parses the
// calendar periods (YYYY-MM) and dates (YYYY-MM-DD) used by the ledger.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// DateFormat is the wire format of calendar dates.
const DateFormat = "2006-01-02"

// Now returns the current instant in canonical form.
func Now() time.Time { return Canonical(time.Now()) }

// Canonical converts t to UTC and drops sub-second precision.
func Canonical(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

// FormatTimestamp renders t as RFC 3339 in UTC with second precision,
// e.g. "2026-02-22T12:00:00Z".
func FormatTimestamp(t time.Time) string { return Canonical(t).Format(time.RFC3339) }

// ParseTimestamp parses an RFC 3339 timestamp carrying an explicit offset and
// returns it in canonical form.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time must be RFC3339, e.g. 2026-02-22T12:00:00Z: %q", model.ErrInvalidInput, s)
	}
	return Canonical(t), nil
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD: %q", model.ErrInvalidInput, s)
	}
	return t, nil
}

// FormatDate renders the calendar day of t (in UTC) as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(DateFormat) }

// Period is a calendar month.
type Period struct {
	year  int
	month time.Month
}

// NewPeriod returns the normalized period for year and month, so that
// NewPeriod(2025, 13) is January 2026.
func NewPeriod(year int, month time.Month) Period {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{year: t.Year(), month: t.Month()}
}

// PeriodOf returns the period containing t (in UTC).
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{year: t.Year(), month: t.Month()}
}

// ParsePeriod parses "YYYY-MM". A single-digit month ("2026-1") is accepted;
// the result always prints in canonical two-digit form.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || !digits(parts[0]) || !digits(parts[1]) {
		return Period{}, fmt.Errorf("%w: invalid period %q, want YYYY-MM", model.ErrInvalidInput, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: invalid period %q, want YYYY-MM", model.ErrInvalidInput, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: invalid period %q, want YYYY-MM", model.ErrInvalidInput, s)
	}
	return Period{year: year, month: time.Month(month)}, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Year returns the period's year.
func (p Period) Year() int { return p.year }

// Month returns the period's month.
func (p Period) Month() time.Month { return p.month }

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool { return p.year == 0 && p.month == 0 }

// String formats the period as YYYY-MM.
func (p Period) String() string { return fmt.Sprintf("%04d-%02d", p.year, int(p.month)) }

// Start returns the first instant of the period.
func (p Period) Start() time.Time { return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC) }

// End returns the first instant of the following period.
func (p Period) End() time.Time { return p.Start().AddDate(0, 1, 0) }

// Add returns the period n months after p (n may be negative).
func (p Period) Add(n int) Period { return NewPeriod(p.year, p.month+time.Month(n)) }

// Before reports whether p is earlier than q.
func (p Period) Before(q Period) bool { return MonthsBetween(p, q) > 0 }

// MonthsBetween returns the number of calendar months from `from` to `to`;
// negative when `to` is earlier.
func MonthsBetween(from, to Period) int {
	return (to.year-from.year)*12 + int(to.month) - int(from.month)
}
