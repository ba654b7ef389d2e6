// Package reconcile compares asserted real-world balances with the books
// and posts the adjustment needed to make them agree.
package reconcile

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// DefaultNote is attached to adjustments posted without an explicit note.
const DefaultNote = "Auto adjustment from reconciliation"

// Engine reconciles accounts.
type Engine struct {
	ledger *ledger.Ledger
	log    *zap.Logger
}

// NewEngine creates an Engine posting adjustments through l.
func NewEngine(l *ledger.Ledger, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{ledger: l, log: logger}
}

// Params holds parameters for a reconciliation.
type Params struct {
	AccountID  string
	Actual     int64     // real-world balance in minor units
	OccurredAt time.Time // zero = now
	Note       string    // empty = DefaultNote
}

// Result is the outcome of a reconciliation.
type Result struct {
	Account    model.Account
	Delta      int64
	Adjustment *model.Transaction // nil when the books already agreed
	Snapshot   model.BalanceSnapshot
}

// Reconcile brings the account's balance to p.Actual by posting an
// Adjustment for the difference, and records a snapshot either way.
func (e *Engine) Reconcile(tx *store.Tx, p Params) (Result, error) {
	acct, err := tx.GetAccount(p.AccountID)
	if err != nil {
		return Result{}, err
	}

	delta := p.Actual - acct.Balance
	res := Result{Delta: delta}

	if delta != 0 {
		note := p.Note
		if note == "" {
			note = DefaultNote
		}
		params := ledger.PostParams{
			Amount:      abs(delta),
			AccrualType: model.AccrualAdjustment,
			Note:        note,
			OccurredAt:  p.OccurredAt,
		}
		if delta < 0 {
			params.FromAccountID = acct.ID
		} else {
			params.ToAccountID = acct.ID
		}

		txn, err := e.ledger.Post(tx, params)
		if err != nil {
			return Result{}, fmt.Errorf("posting reconciliation adjustment for %s: %w", acct.Name, err)
		}
		res.Adjustment = &txn
	}

	snap := model.BalanceSnapshot{
		AccountID: acct.ID,
		Actual:    p.Actual,
		System:    acct.Balance,
		Delta:     delta,
	}
	if res.Adjustment != nil {
		snap.AdjustmentTxID = res.Adjustment.ID
	}
	if res.Snapshot, err = tx.InsertSnapshot(snap); err != nil {
		return Result{}, fmt.Errorf("recording balance snapshot: %w", err)
	}

	if res.Account, err = tx.GetAccount(acct.ID); err != nil {
		return Result{}, err
	}

	e.log.Info("account reconciled",
		zap.String("account", acct.Name),
		zap.Int64("system", acct.Balance),
		zap.Int64("actual", p.Actual),
		zap.Int64("delta", delta),
	)
	return res, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
