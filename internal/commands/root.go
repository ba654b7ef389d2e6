package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/books"
	"github.com/oikonomos-dev/oikonomos/internal/buildinfo"
	"github.com/oikonomos-dev/oikonomos/internal/config"
	"github.com/oikonomos-dev/oikonomos/internal/currency"
	"github.com/oikonomos-dev/oikonomos/internal/logging"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:     "oikonomos",
		Short:   "Personal bookkeeping with depreciation and reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $"+config.EnvDataDir+" or ~/.oikonomos)")

	e := &env{dataDirFlag: &dataDir}
	rootCmd.AddCommand(
		newInitCommand(e),
		newAccountCommand(e),
		newCategoryCommand(e),
		newPayeeCommand(e),
		newTxCommand(e),
		newAssetCommand(e),
		newReconcileCommand(e),
		newDepreciateCommand(e),
		newReportCommand(e),
		newKPICommand(e),
		newImportCommand(e),
	)

	return rootCmd
}

// env carries the root flags down to subcommands.
type env struct {
	dataDirFlag *string
}

// app is an opened data directory.
type app struct {
	dataDir string
	cfg     *config.Config
	unit    currency.Unit
	log     *zap.Logger
	store   *store.Store
	books   *books.Service
}

// open resolves and opens the data directory for one command invocation.
func (e *env) open(cmd *cobra.Command) (*app, error) {
	dataDir, err := config.ResolveDataDir(*e.dataDirFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDir(dataDir)
	if err != nil {
		return nil, err
	}
	unit, err := currency.Lookup(cfg.Currency)
	if err != nil {
		return nil, err
	}
	log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DatabasePath(dataDir)
	if dbPath != config.MemoryDatabase {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no ledger at %s: run `oikonomos init` first", dataDir)
		}
	}

	s, err := store.Open(dbPath, log.Named("store"))
	if err != nil {
		return nil, err
	}
	return &app{
		dataDir: dataDir,
		cfg:     cfg,
		unit:    unit,
		log:     log,
		store:   s,
		books:   books.NewService(s, log),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store", zap.Error(err))
	}
	_ = a.log.Sync()
}

// run opens the data directory, calls fn and closes it again.
func (e *env) run(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := e.open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
