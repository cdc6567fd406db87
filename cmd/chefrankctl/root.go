package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/config"
	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var (
	configPath   string
	databaseURL  string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "chefrankctl",
	Short: "Operate the ChefRank scoring engine",
	Long: `chefrankctl runs ranking batches, publishes monthly snapshots, manages
scoring weights and seeds chef records directly against the ChefRank database.

Connection settings come from the same config file and CHEFRANK_* environment
variables as the service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "json":
			return nil
		default:
			return fmt.Errorf("unknown output format %q (table|json)", outputFormat)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

// env bundles what a database-backed command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.PostgresStore
	engine *ranking.Engine
	sched  *scheduler.Scheduler
}

func (e *env) Close() {
	e.store.Close()
}

func loadConfig(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}
	logCfg := config.LoggingConfig{Level: "warn", Format: "text"}
	if verbose {
		logCfg.Level = "debug"
	}
	return cfg, logCfg.NewLogger(stderr), nil
}

// openEnv connects to the database and builds an engine and scheduler. The
// scheduler runs without events; the service publishes those.
func openEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	engine := ranking.NewEngine(db, logger)
	return &env{
		cfg:    cfg,
		logger: logger,
		store:  db,
		engine: engine,
		sched:  scheduler.New(engine, db, nil, cfg, logger),
	}, nil
}
