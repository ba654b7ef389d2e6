package model

import "errors"

// Error kinds surfaced by the ledger. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	// ErrInvalidInput marks malformed amounts, periods, dates or transaction
	// shapes, unknown enum values and liability invariant violations.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a referenced account, transaction, schedule, payee or
	// category that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreFailure marks an underlying persistence error.
	ErrStoreFailure = errors.New("store failure")
	// ErrConcurrencyFailure marks a store lock that could not be acquired.
	ErrConcurrencyFailure = errors.New("concurrency failure")
)
