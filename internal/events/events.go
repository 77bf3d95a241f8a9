package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/queue"
)

// Notification is a human-readable status message published by the queue.
type Notification struct {
	// ID is a unique identifier for this notification
	ID uuid.UUID `json:"id"`

	// Severity tells the reader how much attention the message deserves
	Severity queue.Severity `json:"severity"`

	// Text is the message itself
	Text string `json:"text"`

	// CreatedAt is the timestamp when the notification was created
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification creates a Notification with a fresh ID and timestamp.
func NewNotification(severity queue.Severity, text string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Severity:  severity,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NotificationHandler defines an interface for components that consume notifications.
type NotificationHandler interface {
	// HandleNotification processes the given notification within the provided context.
	// Returns an error if the notification cannot be handled successfully.
	HandleNotification(ctx context.Context, n *Notification) error
}

// NotificationEmitter defines an interface for components that publish notifications.
type NotificationEmitter interface {
	// EmitNotification publishes the notification to all registered handlers.
	EmitNotification(ctx context.Context, n *Notification) error
}
