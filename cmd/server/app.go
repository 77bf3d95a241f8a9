package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/events"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/postgres"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/service"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/phrazzld/scry-queue/internal/task"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	processor *queue.Processor
	service   *service.CompletionService
}

// newApplication wires the completion pipeline:
// store -> generator -> completer -> processor -> service.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	model, err := newTextGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	logger.Info("LLM provider initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.ModelName)

	questions := postgres.NewPostgresQuestionStore(db, logger)
	return buildApplication(cfg, logger, db, questions, model)
}

// buildApplication assembles everything downstream of the store and the
// provider, so tests can supply their own.
func buildApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	questions store.QuestionStore,
	model generation.TextGenerator,
) (*application, error) {
	generator, err := generation.NewPromptGenerator(model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	completer, err := task.NewQuestionCompleter(questions, generator, cfg.LLM.RequestTimeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create completer: %w", err)
	}

	notifications := events.NewRecentBuffer(cfg.Queue.NotificationHistory)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))
	emitter.RegisterHandler(notifications)

	processor, err := queue.NewProcessor(queue.Config{
		ConcurrencyLimit: cfg.Queue.ConcurrencyLimit,
		MaxRetries:       cfg.Queue.MaxRetries,
		BackoffBase:      cfg.Queue.BackoffBase(),
	}, completer, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue processor: %w", err)
	}

	svc, err := service.NewCompletionService(processor, questions, notifications, logger)
	if err != nil {
		processor.Stop()
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	logger.Info("application initialized successfully")
	return &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		processor: processor,
		service:   svc,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the queue before closing the database so in-flight
// completions can still roll back their pending statuses.
func (app *application) cleanup() {
	if app.processor != nil {
		app.processor.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
