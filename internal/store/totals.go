package store

import (
	"strings"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
)

// Total is an amount aggregated under a label.
type Total struct {
	Label  string
	Amount int64
}

// CashFlowTotals sums every non-depreciation transaction of period by
// category name ("Uncategorized" when none), largest first.
func (t *Tx) CashFlowTotals(period calendar.Period) ([]Total, error) {
	return t.totals(
		`SELECT COALESCE(c.name, 'Uncategorized') AS label, SUM(t.amount_cents) AS total
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.accrual_type != 'Depreciation'
		  AND t.occurred_at >= ? AND t.occurred_at < ?
		GROUP BY label
		ORDER BY total DESC, label ASC`,
		formatTime(period.Start()), formatTime(period.End()),
	)
}

// UtilityTotals sums the consumption of period: ordinary flows by category
// plus depreciation under "Depreciation". Asset purchases are excluded since
// their cost is carried by depreciation.
func (t *Tx) UtilityTotals(period calendar.Period) ([]Total, error) {
	return t.totals(
		`SELECT
		  CASE WHEN t.accrual_type = 'Depreciation' THEN 'Depreciation'
		       ELSE COALESCE(c.name, 'Uncategorized') END AS label,
		  SUM(t.amount_cents) AS total
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.occurred_at >= ? AND t.occurred_at < ?
		  AND ((t.accrual_type = 'Flow' AND t.is_asset_purchase = 0) OR t.accrual_type = 'Depreciation')
		GROUP BY label
		ORDER BY total DESC, label ASC`,
		formatTime(period.Start()), formatTime(period.End()),
	)
}

// AdjustmentTotals returns the summed amounts of Adjustment transactions and
// of non-purchase Flow transactions between from and to inclusive. A zero
// period leaves that side of the range open.
func (t *Tx) AdjustmentTotals(from, to calendar.Period) (adjustments, expenses int64, err error) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, formatTime(from.Start()))
	}
	if !to.IsZero() {
		where = append(where, "occurred_at < ?")
		args = append(args, formatTime(to.End()))
	}
	suffix := ""
	if len(where) > 0 {
		suffix = " AND " + strings.Join(where, " AND ")
	}

	err = t.queryRow(
		`SELECT COALESCE(SUM(ABS(amount_cents)), 0) FROM transactions WHERE accrual_type = 'Adjustment'`+suffix,
		args...,
	).Scan(&adjustments)
	if err != nil {
		return 0, 0, translate(err, "summing adjustments")
	}
	err = t.queryRow(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE accrual_type = 'Flow' AND is_asset_purchase = 0`+suffix,
		args...,
	).Scan(&expenses)
	if err != nil {
		return 0, 0, translate(err, "summing expenses")
	}
	return adjustments, expenses, nil
}

func (t *Tx) totals(query string, args ...any) ([]Total, error) {
	rows, err := t.query(query, args...)
	if err != nil {
		return nil, translate(err, "aggregating totals")
	}
	defer rows.Close()

	var out []Total
	for rows.Next() {
		var tot Total
		if err := rows.Scan(&tot.Label, &tot.Amount); err != nil {
			return nil, translate(err, "scanning total")
		}
		out = append(out, tot)
	}
	return out, translate(rows.Err(), "aggregating totals")
}
