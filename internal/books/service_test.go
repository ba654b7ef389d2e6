package books

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/depreciation"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/reconcile"
	"github.com/oikonomos-dev/oikonomos/internal/report"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := store.Open(store.MemoryPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, nil)
}

func mustCreate(t *testing.T, svc *Service, name string, typ model.AccountType, balance int64) model.Account {
	t.Helper()
	acct, err := svc.CreateAccount(context.Background(), CreateAccountParams{
		Name:           name,
		Type:           typ,
		Purpose:        model.PurposeLifeSupport,
		OpeningBalance: balance,
	})
	require.NoError(t, err)
	return acct
}

func mustBalance(t *testing.T, svc *Service, id string) int64 {
	t.Helper()
	acct, err := svc.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance
}

func TestCreateAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{
		Name:    "  Checking  ",
		Type:    model.AccountTypeAsset,
		Purpose: model.PurposeLifeSupport,
	})
	require.NoError(t, err)
	assert.Equal(t, "Checking", acct.Name)

	tests := []struct {
		name   string
		params CreateAccountParams
	}{
		{"blank name", CreateAccountParams{Name: "  ", Type: model.AccountTypeAsset, Purpose: model.PurposeInvestment}},
		{"bad type", CreateAccountParams{Name: "x", Type: "Equity", Purpose: model.PurposeInvestment}},
		{"bad purpose", CreateAccountParams{Name: "x", Type: model.AccountTypeAsset, Purpose: "Fun"}},
		{"positive liability", CreateAccountParams{Name: "Card", Type: model.AccountTypeLiability, Purpose: model.PurposeLifeSupport, OpeningBalance: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tt.params)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	accts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accts, 1)
}

func TestFindAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 0)
	mustCreate(t, svc, "Savings", model.AccountTypeAsset, 0)
	mustCreate(t, svc, "savings", model.AccountTypeAsset, 0)

	got, err := svc.FindAccount(ctx, checking.ID)
	require.NoError(t, err)
	assert.Equal(t, checking.ID, got.ID)

	got, err = svc.FindAccount(ctx, "CHECKING")
	require.NoError(t, err)
	assert.Equal(t, checking.ID, got.ID)

	_, err = svc.FindAccount(ctx, "Savings")
	assert.ErrorIs(t, err, model.ErrInvalidInput, "ambiguous")

	_, err = svc.FindAccount(ctx, "Brokerage")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostTransaction_LiabilityInvariant(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 0)
	card := mustCreate(t, svc, "CreditCard", model.AccountTypeLiability, 0)

	_, err := svc.PostTransaction(ctx, ledger.PostParams{
		Amount:        5000,
		FromAccountID: checking.ID,
		ToAccountID:   card.ID,
		AccrualType:   model.AccrualFlow,
	})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	assert.Zero(t, mustBalance(t, svc, checking.ID))
	assert.Zero(t, mustBalance(t, svc, card.ID))
	txns, err := svc.ListTransactions(ctx, TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestPostTransaction_PayeeDefaultCategory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 1000)

	food, err := svc.CreateCategory(ctx, "Food", "")
	require.NoError(t, err)
	bakery, err := svc.CreatePayee(ctx, "Bakery", food.ID)
	require.NoError(t, err)

	txn, err := svc.PostTransaction(ctx, ledger.PostParams{
		Amount:        350,
		FromAccountID: checking.ID,
		PayeeID:       bakery.ID,
		AccrualType:   model.AccrualFlow,
	})
	require.NoError(t, err)
	assert.Equal(t, food.ID, txn.CategoryID)

	_, err = svc.PostTransaction(ctx, ledger.PostParams{
		Amount:        350,
		FromAccountID: checking.ID,
		PayeeID:       "missing",
		AccrualType:   model.AccrualFlow,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCatalog(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = svc.CreatePayee(ctx, " ", "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	home, err := svc.CreateCategory(ctx, "Home", "")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Garden", home.ID)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Home", "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = svc.CreateCategory(ctx, "Orphan", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Garden", cats[0].Name)

	_, err = svc.CreatePayee(ctx, "Landlord", "")
	require.NoError(t, err)
	payees, err := svc.ListPayees(ctx)
	require.NoError(t, err)
	require.Len(t, payees, 1)
	assert.Empty(t, payees[0].DefaultCategoryID)
}

// Asset accounts may go negative: only the liability rule is enforced.
func TestPurchaseAndDepreciate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 100000)
	laptop := mustCreate(t, svc, "Laptop", model.AccountTypeAsset, 0)

	res, err := svc.PurchaseAsset(ctx, depreciation.PurchaseParams{
		FundingAccountID: checking.ID,
		AssetAccountID:   laptop.ID,
		Amount:           120000,
		Strategy:         model.StrategyLinear,
		TotalPeriods:     3,
		StartDate:        "2026-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-20000), mustBalance(t, svc, checking.ID))

	for _, period := range []string{"2026-01", "2026-02", "2026-03"} {
		posted, err := svc.EnsureDepreciationForPeriod(ctx, period)
		require.NoError(t, err)
		require.Len(t, posted, 1)
		assert.Equal(t, int64(40000), posted[0].Posting.Amount)
	}

	scheds, err := svc.ListSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, scheds, 1)
	assert.Equal(t, res.Schedule.ID, scheds[0].ID)
	assert.Equal(t, model.ScheduleCompleted, scheds[0].Status)
	assert.Equal(t, int64(120000), scheds[0].Posted())
	assert.Len(t, scheds[0].Postings, 3)

	_, err = svc.EnsureDepreciationForPeriod(ctx, "2026-13")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestReconcile(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 500)

	res, err := svc.Reconcile(ctx, reconcile.Params{AccountID: checking.ID, Actual: 500})
	require.NoError(t, err)
	assert.Zero(t, res.Delta)
	assert.Nil(t, res.Adjustment)

	res, err = svc.Reconcile(ctx, reconcile.Params{AccountID: checking.ID, Actual: 200})
	require.NoError(t, err)
	assert.Equal(t, int64(-300), res.Delta)
	assert.Equal(t, int64(200), res.Account.Balance)

	snaps, err := svc.ListSnapshots(ctx, checking.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(-300), snaps[0].Delta)

	_, err = svc.ListSnapshots(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListTransactions_Filters(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 0)

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{jan, jan.AddDate(0, 1, 0)} {
		_, err := svc.PostTransaction(ctx, ledger.PostParams{Amount: 100, ToAccountID: checking.ID, AccrualType: model.AccrualFlow, OccurredAt: at})
		require.NoError(t, err)
	}
	_, err := svc.Reconcile(ctx, reconcile.Params{AccountID: checking.ID, Actual: 150, OccurredAt: jan})
	require.NoError(t, err)

	txns, err := svc.ListTransactions(ctx, TransactionQuery{Period: "2026-01"})
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	txns, err = svc.ListTransactions(ctx, TransactionQuery{AccrualType: "Adjustment"})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(50), txns[0].Amount)

	_, err = svc.ListTransactions(ctx, TransactionQuery{Period: "January"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = svc.ListTransactions(ctx, TransactionQuery{AccrualType: "flow"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestReports(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 500000)
	laptop := mustCreate(t, svc, "Laptop", model.AccountTypeAsset, 0)
	food, err := svc.CreateCategory(ctx, "Food", "")
	require.NoError(t, err)

	_, err = svc.PurchaseAsset(ctx, depreciation.PurchaseParams{
		FundingAccountID: checking.ID,
		AssetAccountID:   laptop.ID,
		Amount:           6000,
		Strategy:         model.StrategyAccelerated,
		TotalPeriods:     3,
		StartDate:        "2026-02-10",
		OccurredAt:       time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.PostTransaction(ctx, ledger.PostParams{
		Amount:        1200,
		FromAccountID: checking.ID,
		CategoryID:    food.ID,
		AccrualType:   model.AccrualFlow,
		OccurredAt:    time.Date(2026, 2, 11, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	cash, err := svc.CashFlowReport(ctx, "2026-02")
	require.NoError(t, err)
	assert.Equal(t, report.KindCashFlow, cash.Kind)
	assert.Equal(t, []report.Item{
		{Label: "Uncategorized", Amount: 6000},
		{Label: "Food", Amount: 1200},
	}, cash.Items)

	// The utility report posts February's depreciation on the way.
	utility, err := svc.UtilityReport(ctx, "2026-02")
	require.NoError(t, err)
	assert.Equal(t, []report.Item{
		{Label: "Depreciation", Amount: 3000},
		{Label: "Food", Amount: 1200},
	}, utility.Items)
	assert.Equal(t, int64(4200), utility.Total())

	again, err := svc.UtilityReport(ctx, "2026-02")
	require.NoError(t, err)
	assert.Equal(t, utility, again)

	_, err = svc.CashFlowReport(ctx, "2026")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAdjustmentKPI(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 10000)

	_, err := svc.PostTransaction(ctx, ledger.PostParams{
		Amount:        4000,
		FromAccountID: checking.ID,
		AccrualType:   model.AccrualFlow,
		OccurredAt:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.Reconcile(ctx, reconcile.Params{
		AccountID:  checking.ID,
		Actual:     5000,
		OccurredAt: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	kpi, err := svc.AdjustmentKPI(ctx, "2026-03", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), kpi.Adjustments)
	assert.Equal(t, int64(4000), kpi.Expenses)
	assert.Equal(t, "0.2500", kpi.Ratio.StringFixed(4))

	kpi, err = svc.AdjustmentKPI(ctx, "2026-04", "")
	require.NoError(t, err)
	assert.True(t, kpi.Ratio.IsZero())
	assert.Equal(t, "2026-04", kpi.From)
	assert.Empty(t, kpi.To)

	_, err = svc.AdjustmentKPI(ctx, "2026-05", "2026-04")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestImportStatement(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 0)

	f, err := os.Open(filepath.Join("..", "importer", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	defer f.Close()

	res, err := svc.ImportStatement(ctx, ImportParams{AccountID: checking.ID, Format: "Chase", Source: f})
	require.NoError(t, err)
	assert.Len(t, res.Posted, 6)
	assert.Zero(t, res.Skipped)
	// 2750.00 in, 10.99 + 84.37 + 42.00 + 51.20 + 1450.00 out.
	assert.Equal(t, int64(275000-163856), mustBalance(t, svc, checking.ID))
}

func TestImportStatement_AllOrNothing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	card := mustCreate(t, svc, "Card", model.AccountTypeLiability, -1000)

	in := "date,description,amount\n" +
		"2026-03-01,Payment,5.00\n" +
		"2026-03-02,Zero,0\n" +
		"2026-03-03,Refund,20.00\n" // drives the card to +1500
	_, err := svc.ImportStatement(ctx, ImportParams{AccountID: card.ID, Format: "native", Source: strings.NewReader(in)})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, int64(-1000), mustBalance(t, svc, card.ID))

	in = "date,description,amount\n2026-03-01,Payment,5.00\n2026-03-02,Zero,0\n"
	res, err := svc.ImportStatement(ctx, ImportParams{AccountID: card.ID, Format: "native", Source: strings.NewReader(in)})
	require.NoError(t, err)
	assert.Len(t, res.Posted, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, int64(-500), mustBalance(t, svc, card.ID))
}

func TestImportStatement_BadInput(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 0)

	_, err := svc.ImportStatement(ctx, ImportParams{AccountID: checking.ID, Format: "ofx", Source: strings.NewReader("")})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.ImportStatement(ctx, ImportParams{AccountID: checking.ID, Format: "native", Source: strings.NewReader("h\nnot,a,number\n")})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.ImportStatement(ctx, ImportParams{AccountID: "missing", Format: "native", Source: strings.NewReader("h\n")})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestImportStatement_CurrencyScale(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	wallet := mustCreate(t, svc, "Wallet", model.AccountTypeAsset, 0)

	in := "date,description,amount\n2026-03-01,Salary,250000\n2026-03-02,Ramen,-980\n"
	res, err := svc.ImportStatement(ctx, ImportParams{AccountID: wallet.ID, Format: "native", Currency: "JPY", Source: strings.NewReader(in)})
	require.NoError(t, err)
	assert.Len(t, res.Posted, 2)
	assert.Equal(t, int64(250000-980), mustBalance(t, svc, wallet.ID))

	// Yen have no minor unit.
	in = "date,description,amount\n2026-03-03,Refund,1.50\n"
	_, err = svc.ImportStatement(ctx, ImportParams{AccountID: wallet.ID, Format: "native", Currency: "JPY", Source: strings.NewReader(in)})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	in = "date,description,amount\n2026-03-03,Fee,-0.125\n"
	_, err = svc.ImportStatement(ctx, ImportParams{AccountID: wallet.ID, Format: "native", Source: strings.NewReader(in)})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	in = "date,description,amount\n2026-03-03,Fee,-0.125\n"
	res, err = svc.ImportStatement(ctx, ImportParams{AccountID: wallet.ID, Format: "native", Currency: "BHD", Source: strings.NewReader(in)})
	require.NoError(t, err)
	assert.Equal(t, int64(125), res.Posted[0].Amount)

	_, err = svc.ImportStatement(ctx, ImportParams{AccountID: wallet.ID, Format: "native", Currency: "XXQ", Source: strings.NewReader(in)})
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPurchaseAsset_ReportedWhenBought(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	checking := mustCreate(t, svc, "Checking", model.AccountTypeAsset, 500000)
	laptop := mustCreate(t, svc, "Laptop", model.AccountTypeAsset, 0)

	_, err := svc.PurchaseAsset(ctx, depreciation.PurchaseParams{
		FundingAccountID: checking.ID,
		AssetAccountID:   laptop.ID,
		Amount:           120000,
		Strategy:         model.StrategyLinear,
		TotalPeriods:     12,
		StartDate:        "2026-01-01",
		OccurredAt:       time.Date(2025, 12, 20, 15, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	dec, err := svc.CashFlowReport(ctx, "2025-12")
	require.NoError(t, err)
	assert.Equal(t, []report.Item{{Label: "Uncategorized", Amount: 120000}}, dec.Items)

	jan, err := svc.CashFlowReport(ctx, "2026-01")
	require.NoError(t, err)
	assert.Empty(t, jan.Items)

	utility, err := svc.UtilityReport(ctx, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, []report.Item{{Label: "Depreciation", Amount: 10000}}, utility.Items)

	kpi, err := svc.AdjustmentKPI(ctx, "2025-12", "2025-12")
	require.NoError(t, err)
	assert.Zero(t, kpi.Expenses, "asset purchases are not expenses")
}
