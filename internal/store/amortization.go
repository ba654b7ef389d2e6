package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

const scheduleColumns = `s.id, s.asset_account_id, s.strategy, s.total_periods, s.residual_cents,
	s.start_date, s.source_transaction_id, s.status, s.created_at`

// InsertSchedule stores a new amortization schedule and returns it with ID
// and CreatedAt set.
func (t *Tx) InsertSchedule(s model.AmortizationSchedule) (model.AmortizationSchedule, error) {
	s.ID = newID()
	s.CreatedAt = calendar.Now()

	_, err := t.exec(
		`INSERT INTO amortization_schedules (
			id, asset_account_id, strategy, total_periods, residual_cents,
			start_date, source_transaction_id, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AssetAccountID, s.Strategy.String(), s.TotalPeriods, s.Residual,
		calendar.FormatDate(s.StartDate), s.SourceTransactionID, s.Status.String(),
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return model.AmortizationSchedule{}, translate(err, "inserting amortization schedule")
	}
	return s, nil
}

// GetSchedule returns the schedule with the given ID.
func (t *Tx) GetSchedule(id string) (model.AmortizationSchedule, error) {
	row := t.queryRow(`SELECT `+scheduleColumns+` FROM amortization_schedules s WHERE s.id = ?`, id)
	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AmortizationSchedule{}, fmt.Errorf("%w: amortization schedule %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.AmortizationSchedule{}, translate(err, "loading amortization schedule "+id)
	}
	return s, nil
}

// ListSchedules returns every schedule, oldest first.
func (t *Tx) ListSchedules() ([]model.AmortizationSchedule, error) {
	rows, err := t.query(`SELECT ` + scheduleColumns + ` FROM amortization_schedules s ORDER BY s.created_at ASC, s.rowid ASC`)
	if err != nil {
		return nil, translate(err, "listing amortization schedules")
	}
	defer rows.Close()

	var out []model.AmortizationSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, translate(err, "scanning amortization schedule")
		}
		out = append(out, s)
	}
	return out, translate(rows.Err(), "listing amortization schedules")
}

// ActiveSchedule is an active schedule together with the amount of the
// purchase it depreciates.
type ActiveSchedule struct {
	model.AmortizationSchedule
	PurchaseAmount int64
}

// ActiveSchedules returns every Active schedule joined to its source
// purchase transaction.
func (t *Tx) ActiveSchedules() ([]ActiveSchedule, error) {
	rows, err := t.query(
		`SELECT ` + scheduleColumns + `, tx.amount_cents
		FROM amortization_schedules s
		JOIN transactions tx ON tx.id = s.source_transaction_id
		WHERE s.status = 'Active'
		ORDER BY s.created_at ASC, s.rowid ASC`,
	)
	if err != nil {
		return nil, translate(err, "loading active schedules")
	}
	defer rows.Close()

	var out []ActiveSchedule
	for rows.Next() {
		var as ActiveSchedule
		s, err := scanSchedule(rows, &as.PurchaseAmount)
		if err != nil {
			return nil, translate(err, "scanning active schedule")
		}
		as.AmortizationSchedule = s
		out = append(out, as)
	}
	return out, translate(rows.Err(), "loading active schedules")
}

// SetScheduleStatus changes the status of a schedule.
func (t *Tx) SetScheduleStatus(id string, status model.ScheduleStatus) error {
	res, err := t.exec(`UPDATE amortization_schedules SET status = ? WHERE id = ?`, status.String(), id)
	if err != nil {
		return translate(err, "updating amortization schedule "+id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err, "updating amortization schedule "+id)
	}
	if n == 0 {
		return fmt.Errorf("%w: amortization schedule %s", model.ErrNotFound, id)
	}
	return nil
}

// PostingExists reports whether period has already been posted for the schedule.
func (t *Tx) PostingExists(scheduleID string, period calendar.Period) (bool, error) {
	var id string
	err := t.queryRow(
		`SELECT id FROM amortization_postings WHERE schedule_id = ? AND period_ym = ?`,
		scheduleID, period.String(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, "looking up amortization posting")
	}
	return true, nil
}

// InsertPosting records a posted depreciation period.
func (t *Tx) InsertPosting(p model.AmortizationPosting) (model.AmortizationPosting, error) {
	p.ID = newID()
	p.GeneratedAt = calendar.Now()

	_, err := t.exec(
		`INSERT INTO amortization_postings (id, schedule_id, period_ym, amount_cents, transaction_id, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ScheduleID, p.Period, p.Amount, p.TransactionID, formatTime(p.GeneratedAt),
	)
	if err != nil {
		return model.AmortizationPosting{}, translate(err, "inserting amortization posting")
	}
	return p, nil
}

// ListPostings returns the postings of a schedule in period order.
func (t *Tx) ListPostings(scheduleID string) ([]model.AmortizationPosting, error) {
	rows, err := t.query(
		`SELECT id, schedule_id, period_ym, amount_cents, transaction_id, generated_at
		FROM amortization_postings WHERE schedule_id = ? ORDER BY period_ym ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, translate(err, "listing amortization postings")
	}
	defer rows.Close()

	var out []model.AmortizationPosting
	for rows.Next() {
		var (
			p           model.AmortizationPosting
			generatedAt string
		)
		if err := rows.Scan(&p.ID, &p.ScheduleID, &p.Period, &p.Amount, &p.TransactionID, &generatedAt); err != nil {
			return nil, translate(err, "scanning amortization posting")
		}
		if p.GeneratedAt, err = parseTime(generatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), "listing amortization postings")
}

func scanSchedule(row scanner, extra ...any) (model.AmortizationSchedule, error) {
	var (
		s                    model.AmortizationSchedule
		strategy, status     string
		startDate, createdAt string
	)
	dest := append([]any{&s.ID, &s.AssetAccountID, &strategy, &s.TotalPeriods, &s.Residual,
		&startDate, &s.SourceTransactionID, &status, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.AmortizationSchedule{}, err
	}

	var err error
	if s.Strategy, err = model.ParseStrategy(strategy); err != nil {
		return model.AmortizationSchedule{}, err
	}
	if s.Status, err = model.ParseScheduleStatus(status); err != nil {
		return model.AmortizationSchedule{}, err
	}
	if s.StartDate, err = calendar.ParseDate(startDate); err != nil {
		return model.AmortizationSchedule{}, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.AmortizationSchedule{}, err
	}
	return s, nil
}
