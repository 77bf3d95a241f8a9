package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-queue/internal/queue"
)

// LogHandler writes every notification to a structured logger at a level
// derived from its severity.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger.With("component", "queue_notifications")}
}

// HandleNotification implements NotificationHandler.
func (h *LogHandler) HandleNotification(ctx context.Context, n *Notification) error {
	h.logger.Log(ctx, levelFor(n.Severity), n.Text,
		"notification_id", n.ID,
		"severity", string(n.Severity))
	return nil
}

func levelFor(severity queue.Severity) slog.Level {
	switch severity {
	case queue.SeverityError:
		return slog.LevelError
	case queue.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RecentBuffer keeps the latest notifications in a fixed-size ring.
type RecentBuffer struct {
	mu    sync.Mutex
	ring  []Notification
	next  int
	count int
}

// DefaultRecentCapacity is used when NewRecentBuffer is given a non-positive size.
const DefaultRecentCapacity = 50

// NewRecentBuffer creates a RecentBuffer holding up to capacity notifications.
func NewRecentBuffer(capacity int) *RecentBuffer {
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}
	return &RecentBuffer{ring: make([]Notification, capacity)}
}

// HandleNotification implements NotificationHandler.
func (b *RecentBuffer) HandleNotification(_ context.Context, n *Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring[b.next] = *n
	b.next = (b.next + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}
	return nil
}

// Recent returns up to limit notifications, oldest first. A non-positive
// limit returns everything held.
func (b *RecentBuffer) Recent(limit int) []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Notification, 0, n)
	start := (b.next - n + len(b.ring)) % len(b.ring)
	for i := 0; i < n; i++ {
		out = append(out, b.ring[(start+i)%len(b.ring)])
	}
	return out
}
