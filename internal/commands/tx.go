package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oikonomos-dev/oikonomos/internal/books"
	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

func newTxCommand(e *env) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Post and list transactions",
	}
	txCmd.AddCommand(newTxPostCommand(e), newTxListCommand(e))
	return txCmd
}

type txPostFlags struct {
	amount, from, to, accrual string
	payee, category, note, at string
}

func newTxPostCommand(e *env) *cobra.Command {
	var f txPostFlags

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a transaction",
		Long: `Post moves --amount from one account to another. Either side may be
omitted for money entering or leaving the books.

Examples:
  oikonomos tx post --amount 42.50 --from Checking --payee Grocer
  oikonomos tx post --amount 1000 --from Checking --to "Credit Card"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				return runTxPost(cmd, a, f)
			})
		},
	}

	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in major units (required)")
	cmd.Flags().StringVar(&f.from, "from", "", "account money leaves")
	cmd.Flags().StringVar(&f.to, "to", "", "account money enters")
	cmd.Flags().StringVar(&f.accrual, "accrual", string(model.AccrualFlow), "Flow, Adjustment or Depreciation")
	cmd.Flags().StringVar(&f.payee, "payee", "", "payee name or ID")
	cmd.Flags().StringVar(&f.category, "category", "", "category name or ID")
	cmd.Flags().StringVar(&f.note, "note", "", "free-form note")
	cmd.Flags().StringVar(&f.at, "at", "", "when it happened, RFC 3339 (default now)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runTxPost(cmd *cobra.Command, a *app, f txPostFlags) error {
	ctx := cmd.Context()

	amount, err := a.parseAmount(f.amount)
	if err != nil {
		return err
	}
	accrual, err := model.ParseAccrualType(f.accrual)
	if err != nil {
		return err
	}
	at, err := parseTime(f.at)
	if err != nil {
		return err
	}
	from, err := a.resolveAccount(ctx, f.from)
	if err != nil {
		return err
	}
	to, err := a.resolveAccount(ctx, f.to)
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

	txn, err := a.books.PostTransaction(ctx, ledger.PostParams{
		Amount:        amount,
		FromAccountID: from,
		ToAccountID:   to,
		PayeeID:       payee,
		CategoryID:    category,
		AccrualType:   accrual,
		Note:          f.note,
		OccurredAt:    at,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s %s (%s)\n", txn.AccrualType, a.money(txn.Amount), txn.ID)
	return nil
}

func newTxListCommand(e *env) *cobra.Command {
	var period, accrual, account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				ctx := cmd.Context()
				accountID, err := a.resolveAccount(ctx, account)
				if err != nil {
					return err
				}
				txns, err := a.books.ListTransactions(ctx, books.TransactionQuery{
					Period:      period,
					AccrualType: accrual,
					AccountID:   accountID,
				})
				if err != nil {
					return err
				}
				names, err := a.accountNames(ctx)
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tFROM\tTO\tNOTE")
				for _, t := range txns {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", calendar.FormatDate(t.OccurredAt), t.AccrualType,
						a.money(t.Amount), orDash(names[t.FromAccountID]), orDash(names[t.ToAccountID]), t.Note)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "only this month (YYYY-MM)")
	cmd.Flags().StringVar(&accrual, "accrual", "", "only this accrual type")
	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")

	return cmd
}
