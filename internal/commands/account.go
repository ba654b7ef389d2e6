package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oikonomos-dev/oikonomos/internal/books"
	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

func newAccountCommand(e *env) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	accountCmd.AddCommand(
		newAccountCreateCommand(e),
		newAccountListCommand(e),
		newAccountShowCommand(e),
	)
	return accountCmd
}

func newAccountCreateCommand(e *env) *cobra.Command {
	var typ, purpose, balance string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Open an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				return runAccountCreate(cmd, a, args[0], typ, purpose, balance)
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "Asset", "account type: Asset or Liability")
	cmd.Flags().StringVar(&purpose, "purpose", "LifeSupport", "Investment, Productivity, LifeSupport or Spiritual")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance in major units")

	return cmd
}

func runAccountCreate(cmd *cobra.Command, a *app, name, typ, purpose, balance string) error {
	t, err := model.ParseAccountType(typ)
	if err != nil {
		return err
	}
	p, err := model.ParseAssetPurpose(purpose)
	if err != nil {
		return err
	}
	opening, err := a.parseAmount(balance)
	if err != nil {
		return err
	}

	acct, err := a.books.CreateAccount(cmd.Context(), books.CreateAccountParams{
		Name:           name,
		Type:           t,
		Purpose:        p,
		OpeningBalance: opening,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (%s) with balance %s\n", acct.Type, acct.Name, acct.ID, a.money(acct.Balance))
	return nil
}

func newAccountListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				accts, err := a.books.ListAccounts(cmd.Context())
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "NAME\tTYPE\tPURPOSE\tBALANCE\tID")
				for _, acct := range accts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", acct.Name, acct.Type, acct.Purpose, a.money(acct.Balance), acct.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newAccountShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Show an account and its reconciliation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				acct, err := a.books.FindAccount(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				snaps, err := a.books.ListSnapshots(cmd.Context(), acct.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s, %s)\nBalance: %s\nID: %s\n", acct.Name, acct.Type, acct.Purpose, a.money(acct.Balance), acct.ID)
				if len(snaps) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				tw := newTable(out)
				fmt.Fprintln(tw, "CAPTURED\tSYSTEM\tACTUAL\tDELTA\tADJUSTMENT")
				for _, s := range snaps {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", calendar.FormatTimestamp(s.CapturedAt),
						a.money(s.System), a.money(s.Actual), a.money(s.Delta), orDash(s.AdjustmentTxID))
				}
				return tw.Flush()
			})
		},
	}
}
