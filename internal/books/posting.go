package books

import (
	"context"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/depreciation"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/reconcile"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// PostTransaction posts a transaction atomically. A transaction with a
// payee but no category takes the payee's default category.
func (s *Service) PostTransaction(ctx context.Context, p ledger.PostParams) (model.Transaction, error) {
	var txn model.Transaction
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if p.PayeeID != "" && p.CategoryID == "" {
			payee, err := tx.GetPayee(p.PayeeID)
			if err != nil {
				return err
			}
			p.CategoryID = payee.DefaultCategoryID
		}
		var err error
		txn, err = s.ledger.Post(tx, p)
		return err
	})
	return txn, err
}

// PurchaseAsset records an asset purchase and its amortization schedule.
func (s *Service) PurchaseAsset(ctx context.Context, p depreciation.PurchaseParams) (depreciation.PurchaseResult, error) {
	var res depreciation.PurchaseResult
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		res, err = s.scheduler.PurchaseAsset(tx, p)
		return err
	})
	return res, err
}

// Reconcile adjusts an account to an asserted real-world balance.
func (s *Service) Reconcile(ctx context.Context, p reconcile.Params) (reconcile.Result, error) {
	var res reconcile.Result
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		res, err = s.reconciler.Reconcile(tx, p)
		return err
	})
	return res, err
}

// EnsureDepreciationForPeriod posts any depreciation due in period
// ("YYYY-MM") that has not been posted yet.
func (s *Service) EnsureDepreciationForPeriod(ctx context.Context, period string) ([]depreciation.PostedPeriod, error) {
	p, err := calendar.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	var posted []depreciation.PostedPeriod
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		posted, err = s.scheduler.EnsurePeriodPosted(tx, p)
		return err
	})
	return posted, err
}
