package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-queue/internal/queue"
)

// InMemoryEventEmitter stores registered handlers in memory and dispatches
// notifications to them synchronously. It implements queue.Notifier, so it
// can be handed straight to a queue.Processor.
type InMemoryEventEmitter struct {
	handlers []NotificationHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

var (
	_ NotificationEmitter = (*InMemoryEventEmitter)(nil)
	_ queue.Notifier      = (*InMemoryEventEmitter)(nil)
)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]NotificationHandler, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new handler to receive notifications.
func (e *InMemoryEventEmitter) RegisterHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new notification handler", "handler_count", len(e.handlers))
}

// EmitNotification publishes the notification to all registered handlers.
// If any handler returns an error, the notification is still sent to all
// other handlers, and the first error encountered is returned.
func (e *InMemoryEventEmitter) EmitNotification(ctx context.Context, n *Notification) error {
	e.mu.RLock()
	handlers := make([]NotificationHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for notification",
			"notification_id", n.ID,
			"severity", string(n.Severity))
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleNotification(ctx, n); err != nil {
			e.logger.Error("handler failed to process notification",
				"error", err,
				"handler_index", i,
				"notification_id", n.ID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Notify implements queue.Notifier. Handler errors are logged, never returned.
func (e *InMemoryEventEmitter) Notify(ctx context.Context, severity queue.Severity, text string) {
	_ = e.EmitNotification(ctx, NewNotification(severity, text))
}
