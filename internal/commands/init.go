package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/config"
	"github.com/oikonomos-dev/oikonomos/internal/logging"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

func newInitCommand(e *env) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.ResolveDataDir(*e.dataDirFlag)
			if err != nil {
				return err
			}
			absDir, err := filepath.Abs(dataDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd.OutOrStdout(), cmd.ErrOrStderr(), absDir, currency)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "ledger currency (ISO 4217); sets the decimal places of amounts")

	return cmd
}

func runInit(out, errOut io.Writer, dir, currency string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%w: %s is already initialized", model.ErrInvalidInput, dir)
	}

	// Data dir plus the statement inbox.
	for _, d := range []string{"", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Currency = currency
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewWithWriter(cfg.Log, errOut)
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.DatabasePath(dir), log.Named("store"))
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing ledger: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	log.Info("data directory initialized", zap.String("dir", dir))
	fmt.Fprintf(out, "Initialized oikonomos data directory at %s\n", dir)
	return nil
}
