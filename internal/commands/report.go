package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/report"
)

func newReportCommand(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <cash|utility> <period>",
		Short: "Summarize a month by category",
		Long: `Report groups a month's transactions by category.

  cash     money that moved, asset purchases included
  utility  consumption: asset purchases replaced by their depreciation`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				opts, err := a.reportOptions(format)
				if err != nil {
					return err
				}

				var r report.Report
				switch args[0] {
				case "cash", string(report.KindCashFlow):
					r, err = a.books.CashFlowReport(cmd.Context(), args[1])
				case string(report.KindUtility):
					r, err = a.books.UtilityReport(cmd.Context(), args[1])
				default:
					return fmt.Errorf("%w: unknown report %q (want cash or utility)", model.ErrInvalidInput, args[0])
				}
				if err != nil {
					return err
				}
				return report.Write(cmd.OutOrStdout(), r, opts)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", string(report.FormatText), "text, markdown or csv")

	return cmd
}

func newKPICommand(e *env) *cobra.Command {
	var from, to, format string

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Compare reconciliation adjustments with recorded spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				opts, err := a.reportOptions(format)
				if err != nil {
					return err
				}
				k, err := a.books.AdjustmentKPI(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				return report.WriteKPI(cmd.OutOrStdout(), k, opts)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first month, YYYY-MM (default open)")
	cmd.Flags().StringVar(&to, "to", "", "last month, YYYY-MM (default open)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatText), "text, markdown or csv")

	return cmd
}

func (a *app) reportOptions(format string) (report.Options, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.Options{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	return report.Options{Format: f, Currency: a.cfg.Currency, Style: a.cfg.Report.Style}, nil
}
