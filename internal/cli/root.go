// Package cli implements yaferactl, the command line front end of the herd
// ledger. It talks to the same worksheets as the server.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/config"
	"github.com/yafera/herdbook/internal/repository/mongodb"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
	"github.com/yafera/herdbook/pkg/logger"
)

// ledger bundles what the subcommands operate on.
type ledger struct {
	store   *store.Store
	reports *reporting.Service
	loc     *time.Location
	close   func()
}

// openLedger builds the ledger from configuration. Tests replace it.
var openLedger = func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ledger, error) {
	repo, err := sheets.Open(ctx, cfg.Sheets, logger.Named(log, "repo.sheets"))
	if err != nil {
		return nil, err
	}

	loc := cfg.Reporting.Location()
	st := store.New(repo, store.TablesFromConfig(cfg.Sheets), loc, logger.Named(log, "store"))
	l := &ledger{store: st, loc: loc, close: func() {}}

	var snapshots reporting.SnapshotRepository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, err
		}
		snapshots = mongoRepo
		l.close = func() { _ = mongoRepo.Close(context.Background()) }
	}
	l.reports = reporting.NewService(st, snapshots, logger.Named(log, "svc.reporting"))
	return l, nil
}

var (
	envFile  string
	logLevel string
	current  *ledger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (defaults to ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

var rootCmd = &cobra.Command{
	Use:   "yaferactl",
	Short: "Manage the Yafera cattle ledger",
	Long: `yaferactl records cattle purchases, sales, expenses and journal notes
in the project worksheets and prints ledger summaries. It reads the same
environment configuration as the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.NewConsole(logLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	closeLedger()
	current, err = openLedger(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	return nil
}

// Execute runs the root command. The ledger is closed whether the command
// succeeds or not.
func Execute(ctx context.Context) error {
	defer closeLedger()
	return rootCmd.ExecuteContext(ctx)
}

func closeLedger() {
	if current != nil {
		current.close()
		current = nil
	}
}
