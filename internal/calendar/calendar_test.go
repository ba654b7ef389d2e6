package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oikonomos-dev/oikonomos/internal/model"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-01", "2026-01"},
		{"2026-12", "2026-12"},
		{"2026-1", "2026-01"},
		{"0001-06", "0001-06"},
	}
	for _, tt := range tests {
		p, err := ParsePeriod(tt.in)
		require.NoError(t, err, "ParsePeriod(%q)", tt.in)
		assert.Equal(t, tt.want, p.String(), "ParsePeriod(%q)", tt.in)
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, in := range []string{"", "2026", "2026-00", "2026-13", "2026-01-01", "abcd-01", "2026-+1", "-2026-01", "2026/01"} {
		_, err := ParsePeriod(in)
		require.Error(t, err, "ParsePeriod(%q) should fail", in)
		assert.ErrorIs(t, err, model.ErrInvalidInput, "ParsePeriod(%q)", in)
	}
}

func TestPeriodBounds(t *testing.T) {
	p := NewPeriod(2025, time.December)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), p.End())
	assert.Equal(t, "2026-01", p.Add(1).String())
	assert.Equal(t, "2025-01", p.Add(-11).String())
}

func TestNewPeriod_Normalizes(t *testing.T) {
	assert.Equal(t, "2026-01", NewPeriod(2025, 13).String())
	assert.Equal(t, "2024-12", NewPeriod(2025, 0).String())
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2026-01", "2026-01", 0},
		{"2026-01", "2026-03", 2},
		{"2025-11", "2026-02", 3},
		{"2026-03", "2026-01", -2},
		{"2020-01", "2026-01", 72},
	}
	for _, tt := range tests {
		from, err := ParsePeriod(tt.from)
		require.NoError(t, err)
		to, err := ParsePeriod(tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, MonthsBetween(from, to), "MonthsBetween(%s, %s)", tt.from, tt.to)
	}
	a, _ := ParsePeriod("2026-01")
	b, _ := ParsePeriod("2026-02")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}

func TestPeriodOf(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2026-02-01 05:00 in UTC+8 is still January in UTC.
	assert.Equal(t, "2026-01", PeriodOf(time.Date(2026, 2, 1, 5, 0, 0, 0, loc)).String())
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2026-02-22T20:00:00.750+08:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-22T12:00:00Z", FormatTimestamp(got))
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseTimestamp("2026-02-22 12:00:00")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = ParseTimestamp("2026-02-22T12:00:00")
	assert.ErrorIs(t, err, model.ErrInvalidInput, "offset is required")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", FormatDate(d))
	assert.Equal(t, "2026-01", PeriodOf(d).String())

	for _, in := range []string{"2026-1-15", "2026-02-30", "15/01/2026", ""} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, model.ErrInvalidInput, "ParseDate(%q)", in)
	}
}

func TestCanonical(t *testing.T) {
	in := time.Date(2026, 3, 1, 10, 11, 12, 999_999_999, time.FixedZone("X", -3600))
	got := Canonical(in)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 11, 12, 0, time.UTC), got)
	now := Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond())
}
