package queue

import "context"

// Completer performs the work for one item. Implementations must be safe for
// concurrent use and should honour ctx, which is cancelled when the processor
// stops. The processor imposes no timeout of its own.
type Completer interface {
	Complete(ctx context.Context, item Item) (any, error)
}

// CompleterFunc adapts a function to the Completer interface
type CompleterFunc func(ctx context.Context, item Item) (any, error)

// Complete calls f(ctx, item)
func (f CompleterFunc) Complete(ctx context.Context, item Item) (any, error) {
	return f(ctx, item)
}

// Severity classifies a notification for the humans watching the queue
type Severity string

// Notification severities
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives human-readable status messages. Notify is called from the
// scheduling goroutine and must not block.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, text string)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, severity Severity, text string)

// Notify calls f(ctx, severity, text)
func (f NotifierFunc) Notify(ctx context.Context, severity Severity, text string) {
	f(ctx, severity, text)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Severity, string) {}
