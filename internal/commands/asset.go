package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/depreciation"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

func newAssetCommand(e *env) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Buy depreciable assets and inspect their schedules",
	}
	assetCmd.AddCommand(newAssetPurchaseCommand(e), newAssetSchedulesCommand(e))
	return assetCmd
}

type purchaseFlags struct {
	from, asset, amount, strategy string
	periods                       int
	residual, start, payee, note  string
	category, at                  string
}

func newAssetPurchaseCommand(e *env) *cobra.Command {
	var f purchaseFlags

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record an asset purchase and its depreciation schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				return runAssetPurchase(cmd, a, f)
			})
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "", "funding account (required)")
	cmd.Flags().StringVar(&f.asset, "asset", "", "asset account (required)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "purchase price in major units (required)")
	cmd.Flags().StringVar(&f.strategy, "strategy", string(model.StrategyLinear), "Linear or Accelerated")
	cmd.Flags().IntVar(&f.periods, "periods", 0, "number of monthly periods (required)")
	cmd.Flags().StringVar(&f.residual, "residual", "0", "value left after the last period, in major units")
	cmd.Flags().StringVar(&f.start, "start", "", "first period date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.payee, "payee", "", "payee name or ID")
	cmd.Flags().StringVar(&f.category, "category", "", "category name or ID")
	cmd.Flags().StringVar(&f.note, "note", "", "free-form note")
	cmd.Flags().StringVar(&f.at, "at", "", "when the purchase happened, RFC 3339 (default now)")
	for _, name := range []string{"from", "asset", "amount", "periods"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runAssetPurchase(cmd *cobra.Command, a *app, f purchaseFlags) error {
	ctx := cmd.Context()

	amount, err := a.parseAmount(f.amount)
	if err != nil {
		return err
	}
	residual, err := a.parseAmount(f.residual)
	if err != nil {
		return err
	}
	strategy, err := model.ParseStrategy(f.strategy)
	if err != nil {
		return err
	}
	at, err := parseTime(f.at)
	if err != nil {
		return err
	}
	start := f.start
	if start == "" {
		start = calendar.FormatDate(calendar.Now())
	}
	from, err := a.resolveAccount(ctx, f.from)
	if err != nil {
		return err
	}
	asset, err := a.resolveAccount(ctx, f.asset)
	if err != nil {
		return err
	}
	payee, err := a.resolvePayee(ctx, f.payee)
	if err != nil {
		return err
	}
	category, err := a.resolveCategory(ctx, f.category)
	if err != nil {
		return err
	}

	res, err := a.books.PurchaseAsset(ctx, depreciation.PurchaseParams{
		FundingAccountID: from,
		AssetAccountID:   asset,
		Amount:           amount,
		Strategy:         strategy,
		TotalPeriods:     f.periods,
		Residual:         residual,
		StartDate:        start,
		OccurredAt:       at,
		PayeeID:          payee,
		CategoryID:       category,
		Note:             f.note,
	})
	if err != nil {
		return err
	}

	sc := res.Schedule
	fmt.Fprintf(cmd.OutOrStdout(), "Purchased %s; %s schedule %s over %d months from %s\n",
		a.money(res.Transaction.Amount), sc.Strategy, sc.ID, sc.TotalPeriods, calendar.PeriodOf(sc.StartDate))
	return nil
}

func newAssetSchedulesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "schedules",
		Short: "List amortization schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				views, err := a.books.ListSchedules(cmd.Context())
				if err != nil {
					return err
				}
				names, err := a.accountNames(cmd.Context())
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ASSET\tSTRATEGY\tSTART\tPERIODS\tPOSTED\tDEPRECIATED\tSTATUS\tID")
				for _, v := range views {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n", names[v.AssetAccountID], v.Strategy,
						calendar.PeriodOf(v.StartDate), len(v.Postings), v.TotalPeriods,
						a.money(v.Posted()), v.Status, v.ID)
				}
				return tw.Flush()
			})
		},
	}
}
