package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oikonomos-dev/oikonomos/internal/reconcile"
)

func newReconcileCommand(e *env) *cobra.Command {
	var note, at string

	cmd := &cobra.Command{
		Use:   "reconcile <account> <actual>",
		Short: "Bring an account in line with its real-world balance",
		Long: `Reconcile compares the books with the balance your bank reports and
posts an Adjustment for any difference. Every run is kept as a snapshot.

Example:
  oikonomos reconcile Checking 1234.56`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				ctx := cmd.Context()
				accountID, err := a.resolveAccount(ctx, args[0])
				if err != nil {
					return err
				}
				actual, err := a.parseAmount(args[1])
				if err != nil {
					return err
				}
				occurredAt, err := parseTime(at)
				if err != nil {
					return err
				}

				res, err := a.books.Reconcile(ctx, reconcile.Params{
					AccountID:  accountID,
					Actual:     actual,
					OccurredAt: occurredAt,
					Note:       note,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if res.Adjustment == nil {
					fmt.Fprintf(out, "%s already agrees at %s\n", res.Account.Name, a.money(res.Account.Balance))
					return nil
				}
				fmt.Fprintf(out, "%s adjusted by %s to %s (%s)\n", res.Account.Name,
					a.money(res.Delta), a.money(res.Account.Balance), res.Adjustment.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note for the adjustment (default \""+reconcile.DefaultNote+"\")")
	cmd.Flags().StringVar(&at, "at", "", "when the balance was observed, RFC 3339 (default now)")

	return cmd
}
