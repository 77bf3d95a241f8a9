package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/events"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/phrazzld/scry-queue/internal/task"
)

// Queue is the subset of *queue.Processor used by the service.
type Queue interface {
	Enqueue(items []queue.NewItem) (int, error)
	Pause() error
	Resume() error
	Remove(id string) (bool, error)
	RetryFailed() (int, error)
	ClearCompleted() (int, error)
	ClearAll() error
	SetConcurrencyLimit(n int) error
	Snapshot() (queue.Snapshot, error)
	Items() ([]queue.Item, error)
}

// QuestionFinder selects questions for completion.
type QuestionFinder interface {
	FindIDs(ctx context.Context, filter store.QuestionFilter, limit int) ([]uuid.UUID, error)
}

// NotificationSource returns recent queue notifications, oldest first.
type NotificationSource interface {
	Recent(limit int) []events.Notification
}

// EnqueueRequest selects questions to complete. When QuestionIDs is empty,
// Filter and Limit select them from the store.
type EnqueueRequest struct {
	QuestionIDs []uuid.UUID
	Mode        string
	Filter      store.QuestionFilter
	Limit       int
}

// EnqueueResult reports how many questions were selected and how many of
// them were new to the queue.
type EnqueueResult struct {
	Requested int `json:"requested"`
	Added     int `json:"added"`
}

// CompletionService provides the queue use cases.
type CompletionService struct {
	queue         Queue
	questions     QuestionFinder
	notifications NotificationSource
	logger        *slog.Logger
}

// NewCompletionService creates a CompletionService.
// It returns an error if any of the required dependencies are nil.
func NewCompletionService(
	q Queue,
	questions QuestionFinder,
	notifications NotificationSource,
	logger *slog.Logger,
) (*CompletionService, error) {
	if q == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "queue cannot be nil"}
	}
	if questions == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "question finder cannot be nil"}
	}
	if notifications == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notification source cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CompletionService{
		queue:         q,
		questions:     questions,
		notifications: notifications,
		logger:        logger.With("component", "completion_service"),
	}, nil
}

// Enqueue adds one queue item per selected question.
func (s *CompletionService) Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	var result EnqueueResult

	mode, err := domain.ParseCompletionMode(req.Mode)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	ids := req.QuestionIDs
	if len(ids) == 0 {
		ids, err = s.questions.FindIDs(ctx, req.Filter, req.Limit)
		if err != nil {
			log.Error("failed to select questions", "error", err)
			return result, NewServiceError("enqueue", "failed to select questions", err)
		}
	}

	items := make([]queue.NewItem, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return result, fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrEmptyQuestionID)
		}
		items = append(items, task.NewQueueItem(task.CompletionRequest{QuestionID: id, Mode: mode}))
	}
	result.Requested = len(items)
	if len(items) == 0 {
		log.Info("no questions selected for completion")
		return result, nil
	}

	result.Added, err = s.queue.Enqueue(items)
	if err != nil {
		return result, NewServiceError("enqueue", "failed to enqueue questions", err)
	}

	log.Info("questions enqueued for completion",
		"mode", string(mode),
		"requested", result.Requested,
		"added", result.Added)
	return result, nil
}

// Snapshot returns the queue summary.
func (s *CompletionService) Snapshot() (queue.Snapshot, error) {
	snap, err := s.queue.Snapshot()
	return snap, NewServiceError("snapshot", "failed to read queue", err)
}

// Items returns every queue item in insertion order.
func (s *CompletionService) Items() ([]queue.Item, error) {
	items, err := s.queue.Items()
	return items, NewServiceError("items", "failed to read queue", err)
}

// Notifications returns up to limit recent notifications, oldest first.
func (s *CompletionService) Notifications(limit int) []events.Notification {
	return s.notifications.Recent(limit)
}

// Pause stops admitting new work.
func (s *CompletionService) Pause(ctx context.Context) error {
	logger.FromContextOrDefault(ctx, s.logger).Info("pausing completion queue")
	return NewServiceError("pause", "failed to pause queue", s.queue.Pause())
}

// Resume clears a manual or rate-limit pause.
func (s *CompletionService) Resume(ctx context.Context) error {
	logger.FromContextOrDefault(ctx, s.logger).Info("resuming completion queue")
	return NewServiceError("resume", "failed to resume queue", s.queue.Resume())
}

// RetryFailed requeues every failed item and returns how many were requeued.
func (s *CompletionService) RetryFailed(ctx context.Context) (int, error) {
	n, err := s.queue.RetryFailed()
	if err != nil {
		return 0, NewServiceError("retry_failed", "failed to requeue items", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("failed items requeued", "count", n)
	return n, nil
}

// SetConcurrencyLimit changes how many completions may run at once.
func (s *CompletionService) SetConcurrencyLimit(ctx context.Context, limit int) error {
	if err := s.queue.SetConcurrencyLimit(limit); err != nil {
		if errors.Is(err, queue.ErrInvalidConcurrency) {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return NewServiceError("set_concurrency", "failed to set concurrency limit", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("concurrency limit changed", "limit", limit)
	return nil
}

// Remove deletes one item from the queue.
// Returns ErrItemNotFound if the queue does not hold it.
func (s *CompletionService) Remove(ctx context.Context, id string) error {
	removed, err := s.queue.Remove(id)
	if err != nil {
		return NewServiceError("remove", "failed to remove item", err)
	}
	if !removed {
		return ErrItemNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("queue item removed", "item_id", id)
	return nil
}

// ClearCompleted drops completed items and returns how many were dropped.
func (s *CompletionService) ClearCompleted(ctx context.Context) (int, error) {
	n, err := s.queue.ClearCompleted()
	if err != nil {
		return 0, NewServiceError("clear_completed", "failed to clear completed items", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("completed items cleared", "count", n)
	return n, nil
}

// ClearAll drops every item.
func (s *CompletionService) ClearAll(ctx context.Context) error {
	if err := s.queue.ClearAll(); err != nil {
		return NewServiceError("clear_all", "failed to clear queue", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("completion queue cleared")
	return nil
}
