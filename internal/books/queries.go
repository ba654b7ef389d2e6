package books

import (
	"context"
	"fmt"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/report"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// TransactionQuery filters ListTransactions. Empty fields do not filter.
type TransactionQuery struct {
	Period      string // YYYY-MM
	AccrualType string
	AccountID   string
}

// ListTransactions returns matching transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, q TransactionQuery) ([]model.Transaction, error) {
	var f store.TransactionFilter
	if q.Period != "" {
		p, err := calendar.ParsePeriod(q.Period)
		if err != nil {
			return nil, err
		}
		f.Period = p
	}
	if q.AccrualType != "" {
		a, err := model.ParseAccrualType(q.AccrualType)
		if err != nil {
			return nil, err
		}
		f.AccrualType = a
	}
	f.AccountID = q.AccountID

	var txns []model.Transaction
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		txns, err = tx.ListTransactions(f)
		return err
	})
	return txns, err
}

// ScheduleView is a schedule with the depreciation posted against it so far.
type ScheduleView struct {
	model.AmortizationSchedule
	Postings []model.AmortizationPosting
}

// Posted sums the depreciation posted so far.
func (v ScheduleView) Posted() int64 {
	var total int64
	for _, p := range v.Postings {
		total += p.Amount
	}
	return total
}

// ListSchedules returns every amortization schedule with its postings.
func (s *Service) ListSchedules(ctx context.Context) ([]ScheduleView, error) {
	var views []ScheduleView
	err := s.store.View(ctx, func(tx *store.Tx) error {
		scheds, err := tx.ListSchedules()
		if err != nil {
			return err
		}
		for _, sc := range scheds {
			postings, err := tx.ListPostings(sc.ID)
			if err != nil {
				return err
			}
			views = append(views, ScheduleView{AmortizationSchedule: sc, Postings: postings})
		}
		return nil
	})
	return views, err
}

// ListSnapshots returns an account's reconciliation history, newest first.
func (s *Service) ListSnapshots(ctx context.Context, accountID string) ([]model.BalanceSnapshot, error) {
	var snaps []model.BalanceSnapshot
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetAccount(accountID); err != nil {
			return err
		}
		var err error
		snaps, err = tx.ListSnapshots(accountID)
		return err
	})
	return snaps, err
}

// CashFlowReport groups the period's money movements by category.
func (s *Service) CashFlowReport(ctx context.Context, period string) (report.Report, error) {
	p, err := calendar.ParsePeriod(period)
	if err != nil {
		return report.Report{}, err
	}
	var totals []store.Total
	err = s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		totals, err = tx.CashFlowTotals(p)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}
	return newReport(report.KindCashFlow, p, totals), nil
}

// UtilityReport groups the period's consumption by category, counting
// depreciation instead of asset purchases. Depreciation due in the period
// is posted first, in the same unit of work.
func (s *Service) UtilityReport(ctx context.Context, period string) (report.Report, error) {
	p, err := calendar.ParsePeriod(period)
	if err != nil {
		return report.Report{}, err
	}
	var totals []store.Total
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.scheduler.EnsurePeriodPosted(tx, p); err != nil {
			return err
		}
		var err error
		totals, err = tx.UtilityTotals(p)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}
	return newReport(report.KindUtility, p, totals), nil
}

// AdjustmentKPI compares reconciliation adjustments with recorded spending
// between from and to ("YYYY-MM", inclusive, empty = open).
func (s *Service) AdjustmentKPI(ctx context.Context, from, to string) (report.AdjustmentKPI, error) {
	var fp, tp calendar.Period
	var err error
	if from != "" {
		if fp, err = calendar.ParsePeriod(from); err != nil {
			return report.AdjustmentKPI{}, err
		}
	}
	if to != "" {
		if tp, err = calendar.ParsePeriod(to); err != nil {
			return report.AdjustmentKPI{}, err
		}
	}
	if !fp.IsZero() && !tp.IsZero() && tp.Before(fp) {
		return report.AdjustmentKPI{}, fmt.Errorf("%w: range ends (%s) before it starts (%s)", model.ErrInvalidInput, tp, fp)
	}

	var adjustments, expenses int64
	err = s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		adjustments, expenses, err = tx.AdjustmentTotals(fp, tp)
		return err
	})
	if err != nil {
		return report.AdjustmentKPI{}, err
	}

	var fs, ts string
	if !fp.IsZero() {
		fs = fp.String()
	}
	if !tp.IsZero() {
		ts = tp.String()
	}
	return report.NewAdjustmentKPI(fs, ts, adjustments, expenses), nil
}

func newReport(kind report.Kind, p calendar.Period, totals []store.Total) report.Report {
	r := report.Report{Kind: kind, Period: p.String()}
	for _, t := range totals {
		r.Items = append(r.Items, report.Item{Label: t.Label, Amount: t.Amount})
	}
	return r
}
