package store

import (
	"database/sql"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// InsertSnapshot appends a reconciliation snapshot.
func (t *Tx) InsertSnapshot(s model.BalanceSnapshot) (model.BalanceSnapshot, error) {
	s.ID = newID()
	s.CapturedAt = calendar.Now()

	_, err := t.exec(
		`INSERT INTO balance_snapshots (
			id, account_id, actual_balance_cents, system_balance_cents,
			delta_cents, captured_at, adjustment_tx_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.Actual, s.System, s.Delta, formatTime(s.CapturedAt), nullable(s.AdjustmentTxID),
	)
	if err != nil {
		return model.BalanceSnapshot{}, translate(err, "inserting balance snapshot")
	}
	return s, nil
}

// ListSnapshots returns the snapshots of an account, newest first.
func (t *Tx) ListSnapshots(accountID string) ([]model.BalanceSnapshot, error) {
	rows, err := t.query(
		`SELECT id, account_id, actual_balance_cents, system_balance_cents, delta_cents, captured_at, adjustment_tx_id
		FROM balance_snapshots WHERE account_id = ?
		ORDER BY captured_at DESC, rowid DESC`,
		accountID,
	)
	if err != nil {
		return nil, translate(err, "listing balance snapshots")
	}
	defer rows.Close()

	var out []model.BalanceSnapshot
	for rows.Next() {
		var (
			s          model.BalanceSnapshot
			capturedAt string
			adjustment sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Actual, &s.System, &s.Delta, &capturedAt, &adjustment); err != nil {
			return nil, translate(err, "scanning balance snapshot")
		}
		if s.CapturedAt, err = parseTime(capturedAt); err != nil {
			return nil, err
		}
		s.AdjustmentTxID = adjustment.String
		out = append(out, s)
	}
	return out, translate(rows.Err(), "listing balance snapshots")
}
