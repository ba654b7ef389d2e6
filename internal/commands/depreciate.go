package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepreciateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "depreciate <period>",
		Short: "Post depreciation due in a month (YYYY-MM)",
		Long: `Depreciate posts every active schedule's amount for the month. Running it
again for the same month posts nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				posted, err := a.books.EnsureDepreciationForPeriod(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(posted) == 0 {
					fmt.Fprintf(out, "Nothing to post for %s\n", args[0])
					return nil
				}
				var total int64
				for _, p := range posted {
					total += p.Posting.Amount
					suffix := ""
					if p.Completed {
						suffix = " (schedule completed)"
					}
					fmt.Fprintf(out, "Posted %s for schedule %s%s\n", a.money(p.Posting.Amount), p.Schedule.ID, suffix)
				}
				fmt.Fprintf(out, "Total depreciation for %s: %s\n", posted[0].Posting.Period, a.money(total))
				return nil
			})
		},
	}
}
