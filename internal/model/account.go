package model

import (
	"fmt"
	"time"
)

// AccountType classifies accounts. Liability accounts never hold a positive balance.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
)

// ParseAccountType maps a stored or user-supplied string to an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeAsset, AccountTypeLiability:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, s)
	}
}

func (t AccountType) String() string { return string(t) }

// AssetPurpose is a classification tag with no effect on postings.
type AssetPurpose string

const (
	PurposeInvestment   AssetPurpose = "Investment"
	PurposeProductivity AssetPurpose = "Productivity"
	PurposeLifeSupport  AssetPurpose = "LifeSupport"
	PurposeSpiritual    AssetPurpose = "Spiritual"
)

// ParseAssetPurpose maps a stored or user-supplied string to an AssetPurpose.
func ParseAssetPurpose(s string) (AssetPurpose, error) {
	switch p := AssetPurpose(s); p {
	case PurposeInvestment, PurposeProductivity, PurposeLifeSupport, PurposeSpiritual:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown account purpose %q", ErrInvalidInput, s)
	}
}

func (p AssetPurpose) String() string { return string(p) }

// Account is a monetary account. Balance is in minor currency units and is
// the running total of every movement posted against the account.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	Purpose   AssetPurpose
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowsBalance reports whether the account type admits balance.
func (t AccountType) AllowsBalance(balance int64) bool {
	return t != AccountTypeLiability || balance <= 0
}

// Category labels transactions for reporting.
type Category struct {
	ID       string
	Name     string
	ParentID string // empty = top-level
	Active   bool
}

// Payee is the counterparty of a transaction.
type Payee struct {
	ID                string
	Name              string
	DefaultCategoryID string // empty = none
}
