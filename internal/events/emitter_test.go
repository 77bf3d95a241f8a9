package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockNotificationHandler records the notifications it receives
type MockNotificationHandler struct {
	mu           sync.Mutex
	HandledCount int
	Last         *Notification
	HandlerError error
}

func (m *MockNotificationHandler) HandleNotification(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandledCount++
	m.Last = n
	return m.HandlerError
}

func TestInMemoryEventEmitter(t *testing.T) {
	// Create a minimal logger that discards output
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)

		err := emitter.EmitNotification(context.Background(), NewNotification(queue.SeverityInfo, "hello"))
		assert.NoError(t, err)
	})

	t.Run("emit with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		handler1 := &MockNotificationHandler{}
		handler2 := &MockNotificationHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		n := NewNotification(queue.SeveritySuccess, "batch drained: 3 completed, 0 failed")
		err := emitter.EmitNotification(context.Background(), n)

		assert.NoError(t, err)
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, n, handler1.Last)
		assert.Same(t, n, handler2.Last)
	})

	t.Run("emit with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		failing := &MockNotificationHandler{HandlerError: errors.New("handler error")}
		succeeding := &MockNotificationHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(succeeding)

		err := emitter.EmitNotification(context.Background(), NewNotification(queue.SeverityInfo, "x"))

		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failing.HandledCount)
		assert.Equal(t, 1, succeeding.HandledCount)
	})

	t.Run("notify builds a notification", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		handler := &MockNotificationHandler{HandlerError: errors.New("ignored")}
		emitter.RegisterHandler(handler)

		emitter.Notify(context.Background(), queue.SeverityError, "rate limited")

		require.NotNil(t, handler.Last)
		assert.Equal(t, queue.SeverityError, handler.Last.Severity)
		assert.Equal(t, "rate limited", handler.Last.Text)
		assert.NotEmpty(t, handler.Last.ID)
		assert.False(t, handler.Last.CreatedAt.IsZero())
	})
}

func TestLogHandler(t *testing.T) {
	buf, log := logger.NewCapture()
	handler := NewLogHandler(log)

	for _, sev := range []queue.Severity{queue.SeverityInfo, queue.SeveritySuccess, queue.SeverityWarning, queue.SeverityError} {
		require.NoError(t, handler.HandleNotification(context.Background(), NewNotification(sev, "msg "+string(sev))))
	}

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, []any{"INFO", "INFO", "WARN", "ERROR"},
		[]any{entries[0]["level"], entries[1]["level"], entries[2]["level"], entries[3]["level"]})
	assert.Equal(t, "msg warning", entries[2]["msg"])
	assert.Equal(t, "queue_notifications", entries[2]["component"])
}

func TestRecentBuffer(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, NewRecentBuffer(3).Recent(0))
	})

	t.Run("keeps only the latest", func(t *testing.T) {
		buf := NewRecentBuffer(3)
		for i := 1; i <= 5; i++ {
			require.NoError(t, buf.HandleNotification(ctx, NewNotification(queue.SeverityInfo, fmt.Sprintf("n%d", i))))
		}

		texts := func(ns []Notification) []string {
			out := make([]string, 0, len(ns))
			for _, n := range ns {
				out = append(out, n.Text)
			}
			return out
		}

		assert.Equal(t, []string{"n3", "n4", "n5"}, texts(buf.Recent(0)))
		assert.Equal(t, []string{"n4", "n5"}, texts(buf.Recent(2)))
		assert.Equal(t, []string{"n3", "n4", "n5"}, texts(buf.Recent(10)))
	})

	t.Run("default capacity", func(t *testing.T) {
		buf := NewRecentBuffer(0)
		assert.Len(t, buf.ring, DefaultRecentCapacity)
	})
}
