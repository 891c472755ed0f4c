// Kestrel - Multi-domain compliance risk scoring.
// Copyright (c) 2025 opencompliance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencompliance/kestrel/internal/api"
	"github.com/opencompliance/kestrel/internal/bus"
	"github.com/opencompliance/kestrel/internal/cache"
	"github.com/opencompliance/kestrel/internal/config"
	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/engine"
	"github.com/opencompliance/kestrel/internal/history"
	"github.com/opencompliance/kestrel/internal/metrics"
	"github.com/opencompliance/kestrel/internal/regulatory"
	"github.com/opencompliance/kestrel/internal/reports"
	"github.com/opencompliance/kestrel/internal/repository"
	"github.com/opencompliance/kestrel/internal/rules"
	"github.com/opencompliance/kestrel/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Load configuration before anything else; the logger shape depends
	// on it.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	slog.Info("starting kestrel",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"profile", cfg.Profile,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize custom rule engine and load persisted rules
	ruleEngine, err := rules.NewEngine(cfg.Engine.RuleWorkers)
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}
	defer ruleEngine.Close()

	if err := loadRulesFromDatabase(ctx, repo, ruleEngine); err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", ruleEngine.RulesCount())

	// Initialize the evaluation engine over an in-memory history ledger
	retention := time.Duration(cfg.Engine.HistoryRetentionDays) * 24 * time.Hour
	store := history.NewStore(history.WithRetention(retention))
	eng, err := engine.New(store,
		engine.WithRules(ruleEngine),
		engine.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to initialize engine", "error", err)
		os.Exit(1)
	}
	slog.Info("evaluation engine initialized", "history_retention_days", cfg.Engine.HistoryRetentionDays)

	// Metrics registry
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Async ingest worker
	var asyncWorker *worker.Worker
	if cfg.Worker.Enabled {
		asyncWorker = worker.NewWorker(busImpl, repo, eng, cfg.Worker.Concurrency)
		if err := asyncWorker.Start(); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "concurrency", cfg.Worker.Concurrency)
		}
	}

	// Initialize Server
	handler := api.NewHandler(
		repo,
		cacheImpl,
		busImpl,
		eng,
		ruleEngine,
		regulatory.NewCatalog(),
		reports.NewBuilder(repo),
		m,
		Version,
	)
	srv := api.NewServer(cfg.Server, handler, m)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("kestrel is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("kestrel shutdown complete")
}

func newLogger(cfg domain.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// loadRulesFromDatabase loads persisted rules into the engine. Rules are
// configured via POST /rules; an empty database is a normal start.
func loadRulesFromDatabase(ctx context.Context, repo domain.Repository, ruleEngine *rules.Engine) error {
	dbRules, err := repo.ListRuleConfigs(ctx)
	if err != nil {
		slog.Warn("failed to list rules from database", "error", err)
		return nil // Start with empty rules - they can be added via API
	}

	if len(dbRules) > 0 {
		slog.Info("loading rules from database", "count", len(dbRules))
		return ruleEngine.LoadRules(dbRules)
	}

	slog.Info("no rules in database - configure via POST /rules API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🦅 KESTREL                  ║")
	fmt.Println("  ║     Compliance Risk Scoring Engine        ║")
	fmt.Println("  ║      Small bird, sharp eyes.              ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Profile:  %s\n", cfg.Profile)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /evaluate/transaction   - Score a transaction")
	fmt.Println("    POST /evaluate/kyc           - Score a customer profile")
	fmt.Println("    POST /evaluate/communication - Score a communication")
	fmt.Println("    GET  /evaluations/{id}       - Get evaluation by ID")
	fmt.Println("    GET  /transactions/{id}      - Get transaction by ID")
	fmt.Println("    GET  /communications/{id}    - Get communication by ID")
	fmt.Println("    GET  /verifications/{id}     - Get verification by ID")
	fmt.Println("    GET  /rules                  - List all rules")
	fmt.Println("    POST /rules                  - Create a new rule")
	fmt.Println("    POST /rules/reload           - Hot-reload rules from database")
	fmt.Println("    GET  /regulatory/updates     - List regulatory updates")
	fmt.Println("    GET  /reports/{entityId}     - Build a compliance report")
	fmt.Println("    GET  /health                 - Health check")
	fmt.Println()
}
