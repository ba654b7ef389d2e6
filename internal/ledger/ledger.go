// Package ledger is the posting engine: the only code that changes account
// balances after an account has been created.
package ledger

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// Ledger posts transactions and keeps balances consistent with them.
type Ledger struct {
	log *zap.Logger
}

// New creates a Ledger. A nil logger disables logging.
func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{log: logger}
}

// PostParams holds parameters for posting a transaction.
type PostParams struct {
	Amount          int64
	FromAccountID   string
	ToAccountID     string
	PayeeID         string
	CategoryID      string
	AccrualType     model.AccrualType
	IsAssetPurchase bool
	Note            string
	OccurredAt      time.Time // zero = now
}

// Post records a transaction and applies its legs inside tx: -Amount to
// the from account, then +Amount to the to account. Any failure leaves the
// whole unit of work to be rolled back by the caller.
func (l *Ledger) Post(tx *store.Tx, p PostParams) (model.Transaction, error) {
	if err := validate(p); err != nil {
		return model.Transaction{}, err
	}

	occurredAt := p.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = calendar.Now()
	}

	txn, err := tx.InsertTransaction(model.Transaction{
		Amount:          p.Amount,
		FromAccountID:   p.FromAccountID,
		ToAccountID:     p.ToAccountID,
		PayeeID:         p.PayeeID,
		CategoryID:      p.CategoryID,
		AccrualType:     p.AccrualType,
		IsAssetPurchase: p.IsAssetPurchase,
		Note:            p.Note,
		OccurredAt:      occurredAt,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("posting transaction: %w", err)
	}

	// The liability rule is checked here before each balance moves; the
	// accounts table CHECK constraint backs it up.
	for _, leg := range txn.Legs() {
		acct, err := tx.GetAccount(leg.AccountID)
		if err != nil {
			return model.Transaction{}, err
		}
		if next := acct.Balance + leg.Delta; !acct.Type.AllowsBalance(next) {
			l.log.Warn("posting rejected: liability balance would be positive",
				zap.String("account", acct.ID),
				zap.Int64("balance", acct.Balance),
				zap.Int64("delta", leg.Delta),
			)
			return model.Transaction{}, fmt.Errorf("%w: liability account balance cannot be positive: %s would be %d",
				model.ErrInvalidInput, acct.Name, next)
		}
		if _, err := tx.ApplyBalanceDelta(acct.ID, leg.Delta); err != nil {
			l.log.Warn("posting rejected",
				zap.String("account", acct.ID),
				zap.Int64("delta", leg.Delta),
				zap.Error(err),
			)
			return model.Transaction{}, err
		}
	}

	l.log.Debug("transaction posted",
		zap.String("id", txn.ID),
		zap.Int64("amount", txn.Amount),
		zap.Stringer("accrual", txn.AccrualType),
		zap.String("from", txn.FromAccountID),
		zap.String("to", txn.ToAccountID),
	)
	return txn, nil
}

func validate(p PostParams) error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", model.ErrInvalidInput, p.Amount)
	}
	if _, err := model.ParseAccrualType(string(p.AccrualType)); err != nil {
		return err
	}

	hasLegs := p.FromAccountID != "" || p.ToAccountID != ""
	switch p.AccrualType {
	case model.AccrualDepreciation:
		if hasLegs {
			return fmt.Errorf("%w: depreciation transactions do not move money between accounts", model.ErrInvalidInput)
		}
		if p.IsAssetPurchase {
			return fmt.Errorf("%w: depreciation transactions cannot be asset purchases", model.ErrInvalidInput)
		}
	default:
		if !hasLegs {
			return fmt.Errorf("%w: %s transaction needs a from or to account", model.ErrInvalidInput, p.AccrualType)
		}
	}
	return nil
}
