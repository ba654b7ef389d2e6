// Package depreciation records asset purchases and materializes their
// monthly depreciation on demand.
package depreciation

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// Scheduler owns amortization schedules. Every transaction it creates goes
// through the ledger.
type Scheduler struct {
	ledger *ledger.Ledger
	log    *zap.Logger
}

// NewScheduler creates a Scheduler posting through l.
func NewScheduler(l *ledger.Ledger, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{ledger: l, log: logger}
}

// PurchaseParams holds parameters for buying a depreciable asset.
type PurchaseParams struct {
	FundingAccountID string
	AssetAccountID   string
	Amount           int64
	Strategy         model.Strategy
	TotalPeriods     int
	Residual         int64
	StartDate        string    // YYYY-MM-DD, first depreciation period
	OccurredAt       time.Time // when the purchase happened; zero = now
	PayeeID          string
	CategoryID       string
	Note             string
}

// PurchaseResult is the outcome of a purchase.
type PurchaseResult struct {
	Transaction model.Transaction
	Schedule    model.AmortizationSchedule
}

// PurchaseAsset moves Amount from the funding account to the asset account
// as an asset-purchase Flow and opens an Active schedule for it.
func (s *Scheduler) PurchaseAsset(tx *store.Tx, p PurchaseParams) (PurchaseResult, error) {
	if p.Amount <= 0 {
		return PurchaseResult{}, fmt.Errorf("%w: purchase amount must be positive, got %d", model.ErrInvalidInput, p.Amount)
	}
	if p.TotalPeriods <= 0 {
		return PurchaseResult{}, fmt.Errorf("%w: total periods must be positive, got %d", model.ErrInvalidInput, p.TotalPeriods)
	}
	if p.Residual < 0 || p.Residual > p.Amount {
		return PurchaseResult{}, fmt.Errorf("%w: residual must be between 0 and the purchase amount, got %d", model.ErrInvalidInput, p.Residual)
	}
	if _, err := model.ParseStrategy(string(p.Strategy)); err != nil {
		return PurchaseResult{}, err
	}
	start, err := calendar.ParseDate(p.StartDate)
	if err != nil {
		return PurchaseResult{}, err
	}
	if p.FundingAccountID == "" || p.AssetAccountID == "" {
		return PurchaseResult{}, fmt.Errorf("%w: funding and asset accounts are required", model.ErrInvalidInput)
	}
	asset, err := tx.GetAccount(p.AssetAccountID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if _, err := tx.GetAccount(p.FundingAccountID); err != nil {
		return PurchaseResult{}, err
	}

	txn, err := s.ledger.Post(tx, ledger.PostParams{
		Amount:          p.Amount,
		FromAccountID:   p.FundingAccountID,
		ToAccountID:     p.AssetAccountID,
		PayeeID:         p.PayeeID,
		CategoryID:      p.CategoryID,
		AccrualType:     model.AccrualFlow,
		IsAssetPurchase: true,
		Note:            p.Note,
		OccurredAt:      p.OccurredAt,
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	sched, err := tx.InsertSchedule(model.AmortizationSchedule{
		AssetAccountID:      asset.ID,
		Strategy:            p.Strategy,
		TotalPeriods:        p.TotalPeriods,
		Residual:            p.Residual,
		StartDate:           start,
		SourceTransactionID: txn.ID,
		Status:              model.ScheduleActive,
	})
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("opening amortization schedule: %w", err)
	}

	s.log.Info("asset purchased",
		zap.String("asset", asset.Name),
		zap.Int64("amount", p.Amount),
		zap.Stringer("strategy", p.Strategy),
		zap.Int("periods", p.TotalPeriods),
		zap.String("schedule", sched.ID),
	)
	return PurchaseResult{Transaction: txn, Schedule: sched}, nil
}

// PostedPeriod describes one depreciation charge made by EnsurePeriodPosted.
type PostedPeriod struct {
	Schedule    model.AmortizationSchedule
	Posting     model.AmortizationPosting
	Transaction model.Transaction
	Completed   bool
}

// EnsurePeriodPosted charges period's depreciation for every Active
// schedule that covers it and has not been charged for it yet. Calling it
// again for the same period changes nothing.
func (s *Scheduler) EnsurePeriodPosted(tx *store.Tx, period calendar.Period) ([]PostedPeriod, error) {
	if period.IsZero() {
		return nil, fmt.Errorf("%w: period is required", model.ErrInvalidInput)
	}

	schedules, err := tx.ActiveSchedules()
	if err != nil {
		return nil, err
	}

	var posted []PostedPeriod
	for _, sched := range schedules {
		index := calendar.MonthsBetween(calendar.PeriodOf(sched.StartDate), period)
		if index < 0 || index >= sched.TotalPeriods {
			continue
		}

		exists, err := tx.PostingExists(sched.ID, period)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		amount := Amount(sched.Strategy, sched.PurchaseAmount-sched.Residual, sched.TotalPeriods, index)
		if amount <= 0 {
			continue
		}

		txn, err := s.ledger.Post(tx, ledger.PostParams{
			Amount:      amount,
			AccrualType: model.AccrualDepreciation,
			Note:        "Depreciation for " + period.String(),
			OccurredAt:  period.Start(),
		})
		if err != nil {
			return nil, fmt.Errorf("depreciating schedule %s for %s: %w", sched.ID, period, err)
		}

		posting, err := tx.InsertPosting(model.AmortizationPosting{
			ScheduleID:    sched.ID,
			Period:        period.String(),
			Amount:        amount,
			TransactionID: txn.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("recording depreciation of schedule %s for %s: %w", sched.ID, period, err)
		}

		pp := PostedPeriod{Schedule: sched.AmortizationSchedule, Posting: posting, Transaction: txn}
		if index == sched.TotalPeriods-1 {
			if err := tx.SetScheduleStatus(sched.ID, model.ScheduleCompleted); err != nil {
				return nil, err
			}
			pp.Schedule.Status = model.ScheduleCompleted
			pp.Completed = true
		}
		posted = append(posted, pp)

		s.log.Info("depreciation posted",
			zap.String("schedule", sched.ID),
			zap.Stringer("period", period),
			zap.Int("index", index),
			zap.Int64("amount", amount),
			zap.Bool("completed", pp.Completed),
		)
	}
	return posted, nil
}
