package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.MemoryPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createAccount(t *testing.T, s *store.Store, name string, typ model.AccountType, balance int64) model.Account {
	t.Helper()
	var acct model.Account
	err := s.Update(context.Background(), func(tx *store.Tx) error {
		var err error
		acct, err = tx.InsertAccount(model.Account{Name: name, Type: typ, Purpose: model.PurposeLifeSupport, Balance: balance})
		return err
	})
	require.NoError(t, err)
	return acct
}

func post(s *store.Store, l *Ledger, p PostParams) (model.Transaction, error) {
	var txn model.Transaction
	err := s.Update(context.Background(), func(tx *store.Tx) error {
		var err error
		txn, err = l.Post(tx, p)
		return err
	})
	return txn, err
}

func balance(t *testing.T, s *store.Store, id string) int64 {
	t.Helper()
	var bal int64
	err := s.View(context.Background(), func(tx *store.Tx) error {
		acct, err := tx.GetAccount(id)
		bal = acct.Balance
		return err
	})
	require.NoError(t, err)
	return bal
}

func countTransactions(t *testing.T, s *store.Store) int {
	t.Helper()
	var n int
	err := s.View(context.Background(), func(tx *store.Tx) error {
		txns, err := tx.ListTransactions(store.TransactionFilter{})
		n = len(txns)
		return err
	})
	require.NoError(t, err)
	return n
}

func TestPost_Transfer(t *testing.T) {
	s := setup(t)
	l := New(nil)
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 10000)
	card := createAccount(t, s, "CreditCard", model.AccountTypeLiability, -8000)

	occurred := time.Date(2026, 3, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	txn, err := post(s, l, PostParams{
		Amount:        5000,
		FromAccountID: checking.ID,
		ToAccountID:   card.ID,
		AccrualType:   model.AccrualFlow,
		Note:          "pay card",
		OccurredAt:    occurred,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, time.UTC, txn.OccurredAt.Location())
	assert.True(t, occurred.Equal(txn.OccurredAt))

	assert.Equal(t, int64(5000), balance(t, s, checking.ID))
	assert.Equal(t, int64(-3000), balance(t, s, card.ID))
}

// Posting that would push a liability above zero fails with no trace.
func TestPost_LiabilityInvariant(t *testing.T) {
	s := setup(t)
	core, logs := observer.New(zapcore.WarnLevel)
	l := New(zap.New(core))
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 0)
	card := createAccount(t, s, "CreditCard", model.AccountTypeLiability, 0)

	_, err := post(s, l, PostParams{
		Amount:        5000,
		FromAccountID: checking.ID,
		ToAccountID:   card.ID,
		AccrualType:   model.AccrualFlow,
	})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	assert.Equal(t, int64(0), balance(t, s, checking.ID))
	assert.Equal(t, int64(0), balance(t, s, card.ID))
	assert.Zero(t, countTransactions(t, s))
	assert.Equal(t, 1, logs.FilterMessageSnippet("posting rejected").Len())
}

// The engine refuses the leg itself, before the store constraint is reached.
func TestPost_LiabilityCheckedBeforeUpdate(t *testing.T) {
	s := setup(t)
	core, logs := observer.New(zapcore.WarnLevel)
	l := New(zap.New(core))
	card := createAccount(t, s, "CreditCard", model.AccountTypeLiability, -1000)

	_, err := post(s, l, PostParams{
		Amount:      1500,
		ToAccountID: card.ID,
		AccrualType: model.AccrualAdjustment,
	})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "CreditCard would be 500")

	rejected := logs.FilterMessage("posting rejected: liability balance would be positive").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(-1000), rejected[0].ContextMap()["balance"])
	assert.Equal(t, int64(1500), rejected[0].ContextMap()["delta"])
	assert.Equal(t, int64(-1000), balance(t, s, card.ID))

	// Exactly zero is allowed.
	_, err = post(s, l, PostParams{Amount: 1000, ToAccountID: card.ID, AccrualType: model.AccrualAdjustment})
	require.NoError(t, err)
	assert.Zero(t, balance(t, s, card.ID))
}

func TestPost_AssetMayGoNegative(t *testing.T) {
	s := setup(t)
	l := New(nil)
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 100)

	_, err := post(s, l, PostParams{Amount: 500, FromAccountID: checking.ID, AccrualType: model.AccrualFlow})
	require.NoError(t, err)
	assert.Equal(t, int64(-400), balance(t, s, checking.ID))
}

func TestPost_Conservation(t *testing.T) {
	s := setup(t)
	l := New(nil)
	a := createAccount(t, s, "A", model.AccountTypeAsset, 1000)
	b := createAccount(t, s, "B", model.AccountTypeAsset, 2000)
	card := createAccount(t, s, "Card", model.AccountTypeLiability, -5000)

	moves := []PostParams{
		{Amount: 300, FromAccountID: a.ID, ToAccountID: b.ID, AccrualType: model.AccrualFlow},
		{Amount: 1200, FromAccountID: b.ID, ToAccountID: card.ID, AccrualType: model.AccrualFlow},
		{Amount: 700, FromAccountID: card.ID, ToAccountID: a.ID, AccrualType: model.AccrualFlow},
		{Amount: 45, FromAccountID: a.ID, ToAccountID: a.ID, AccrualType: model.AccrualAdjustment},
	}
	for _, m := range moves {
		_, err := post(s, l, m)
		require.NoError(t, err)
	}

	total := balance(t, s, a.ID) + balance(t, s, b.ID) + balance(t, s, card.ID)
	assert.Equal(t, int64(1000+2000-5000), total)
	assert.Equal(t, int64(1400), balance(t, s, a.ID))
	assert.Equal(t, int64(1100), balance(t, s, b.ID))
	assert.Equal(t, int64(-4500), balance(t, s, card.ID))
}

func TestPost_OneSided(t *testing.T) {
	s := setup(t)
	l := New(nil)
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 0)

	_, err := post(s, l, PostParams{Amount: 2500, ToAccountID: checking.ID, AccrualType: model.AccrualFlow, Note: "salary"})
	require.NoError(t, err)
	_, err = post(s, l, PostParams{Amount: 500, FromAccountID: checking.ID, AccrualType: model.AccrualFlow, Note: "rent"})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), balance(t, s, checking.ID))
}

func TestPost_Depreciation(t *testing.T) {
	s := setup(t)
	l := New(nil)

	txn, err := post(s, l, PostParams{Amount: 40000, AccrualType: model.AccrualDepreciation})
	require.NoError(t, err)
	assert.Empty(t, txn.Legs())
	assert.False(t, txn.OccurredAt.IsZero(), "defaults to now")
}

func TestPost_InvalidInput(t *testing.T) {
	s := setup(t)
	l := New(nil)
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 0)

	tests := []struct {
		name   string
		params PostParams
	}{
		{"zero amount", PostParams{Amount: 0, ToAccountID: checking.ID, AccrualType: model.AccrualFlow}},
		{"negative amount", PostParams{Amount: -5, ToAccountID: checking.ID, AccrualType: model.AccrualFlow}},
		{"unknown accrual", PostParams{Amount: 5, ToAccountID: checking.ID, AccrualType: "Gift"}},
		{"flow without legs", PostParams{Amount: 5, AccrualType: model.AccrualFlow}},
		{"adjustment without legs", PostParams{Amount: 5, AccrualType: model.AccrualAdjustment}},
		{"depreciation with legs", PostParams{Amount: 5, FromAccountID: checking.ID, AccrualType: model.AccrualDepreciation}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := post(s, l, tt.params)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
	assert.Zero(t, countTransactions(t, s))
}

func TestPost_UnknownAccount(t *testing.T) {
	s := setup(t)
	l := New(nil)
	checking := createAccount(t, s, "Checking", model.AccountTypeAsset, 100)

	_, err := post(s, l, PostParams{
		Amount:        50,
		FromAccountID: checking.ID,
		ToAccountID:   "no-such-account",
		AccrualType:   model.AccrualFlow,
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, int64(100), balance(t, s, checking.ID))
	assert.Zero(t, countTransactions(t, s))
}
