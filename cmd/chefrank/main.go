package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/api"
	"github.com/MikeSquared-Agency/ChefRank/internal/config"
	"github.com/MikeSquared-Agency/ChefRank/internal/hermes"
	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.Database.MigrateOnStart {
		if err := store.RunMigrations(cfg.Database.URL, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, hermes.Options{
			URL:        cfg.Hermes.URL,
			Name:       "chefrank",
			QueueGroup: cfg.Hermes.QueueGroup,
		}, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Ranking engine and scheduler
	engine := ranking.NewEngine(db, logger)
	sched := scheduler.New(engine, db, hermesClient, cfg, logger)
	if err := sched.SetupSubscriptions(); err != nil {
		logger.Warn("failed to subscribe to recalculation requests", "error", err)
	}

	if cfg.Scheduler.RecalculateOnStart {
		if res, err := sched.Recalculate(ctx, metrics.TriggerStartup); err != nil {
			logger.Warn("startup recalculation failed, serving last persisted ranks", "error", err)
		} else {
			logger.Info("startup recalculation complete", "chefs", len(res.Chefs))
		}
	}

	sched.Start(ctx)
	defer sched.Stop()
	logger.Info("scheduler started", "check_interval", cfg.CheckInterval(), "auto_snapshot", cfg.Scheduler.AutoSnapshot)

	// API server
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(db, engine, sched, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
