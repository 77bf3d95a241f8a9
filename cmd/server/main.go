// Package main runs the question completion server: an HTTP API over a
// bounded-concurrency queue that fills in answers and explanations with an
// LLM provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/platform/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; environment variables override it")
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		log.Fatalf("scry-queue: %v", err)
	}
}

func run(configPath, migrateCmd string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.ModelName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, l)
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		closeDatabase(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func closeDatabase(db interface{ Close() error }, l *slog.Logger) {
	if err := db.Close(); err != nil {
		l.Error("error closing database connection", "error", err)
	}
}
