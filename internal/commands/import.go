package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/books"
	"github.com/oikonomos-dev/oikonomos/internal/config"
	"github.com/oikonomos-dev/oikonomos/internal/importer"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

func newImportCommand(e *env) *cobra.Command {
	var account, format, category string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Post a bank statement CSV against an account",
		Long: `Import posts every line of a bank statement as a Flow against --account.
A statement is posted whole or not at all.

Without a file, every CSV in <data-dir>/import/ is imported and moved to
import/processed/ once posted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				ctx := cmd.Context()

				if account == "" {
					account = a.cfg.Import.Account
				}
				if account == "" {
					return fmt.Errorf("%w: --account is required (or set import.account in %s)", model.ErrInvalidInput, config.FileName)
				}
				accountID, err := a.resolveAccount(ctx, account)
				if err != nil {
					return err
				}
				categoryID, err := a.resolveCategory(ctx, category)
				if err != nil {
					return err
				}
				if format == "" {
					format = a.cfg.Import.Format
				}

				params := books.ImportParams{AccountID: accountID, Format: format, CategoryID: categoryID, Currency: a.unit.Code()}
				if len(args) == 1 {
					return importFile(cmd, a, args[0], params)
				}
				return importInbox(cmd, a, params)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account name or ID the statement belongs to")
	cmd.Flags().StringVar(&format, "format", "", "statement format (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "category for every imported line")

	return cmd
}

func importFile(cmd *cobra.Command, a *app, path string, p books.ImportParams) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	p.Source = f
	res, err := a.books.ImportStatement(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %s (%d skipped)\n", len(res.Posted), path, res.Skipped)
	return nil
}

func importInbox(cmd *cobra.Command, a *app, p books.ImportParams) error {
	files, err := importer.Scan(a.dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No statements waiting in import/")
		return nil
	}

	for _, fi := range files {
		if err := importFile(cmd, a, fi.Path, p); err != nil {
			return err
		}
		if err := importer.MarkProcessed(a.dataDir, fi.Name); err != nil {
			return err
		}
		a.log.Debug("statement moved to processed", zap.String("file", fi.Name))
	}
	return nil
}
