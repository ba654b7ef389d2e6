package model

import (
	"fmt"
	"time"
)

// AccrualType classifies the economic nature of a transaction.
type AccrualType string

const (
	AccrualFlow         AccrualType = "Flow"
	AccrualDepreciation AccrualType = "Depreciation"
	AccrualAdjustment   AccrualType = "Adjustment"
)

// ParseAccrualType maps a stored or user-supplied string to an AccrualType.
func ParseAccrualType(s string) (AccrualType, error) {
	switch a := AccrualType(s); a {
	case AccrualFlow, AccrualDepreciation, AccrualAdjustment:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown accrual type %q", ErrInvalidInput, s)
	}
}

func (a AccrualType) String() string { return string(a) }

// Transaction is an immutable movement of Amount minor units from
// FromAccountID to ToAccountID. Either leg may be empty; depreciation
// transactions have neither.
type Transaction struct {
	ID              string
	Amount          int64
	FromAccountID   string // empty = none
	ToAccountID     string // empty = none
	PayeeID         string // empty = none
	CategoryID      string // empty = none
	AccrualType     AccrualType
	IsAssetPurchase bool
	Note            string
	OccurredAt      time.Time
	CreatedAt       time.Time
}

// Legs returns the signed balance deltas the transaction applies, in
// application order (from before to).
func (t Transaction) Legs() []Leg {
	var legs []Leg
	if t.FromAccountID != "" {
		legs = append(legs, Leg{AccountID: t.FromAccountID, Delta: -t.Amount})
	}
	if t.ToAccountID != "" {
		legs = append(legs, Leg{AccountID: t.ToAccountID, Delta: t.Amount})
	}
	return legs
}

// Leg is one side of a transaction applied to one account.
type Leg struct {
	AccountID string
	Delta     int64
}

// BalanceSnapshot records one reconciliation attempt.
type BalanceSnapshot struct {
	ID             string
	AccountID      string
	Actual         int64
	System         int64
	Delta          int64
	CapturedAt     time.Time
	AdjustmentTxID string // empty when no adjustment was needed
}
