package queue

import "time"

// Status represents the state of an item in the queue
type Status string

// Possible item status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusRetrying   Status = "retrying"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// NewItem is a unit of work offered to Enqueue.
type NewItem struct {
	// ID identifies the item and is used for de-duplication
	ID string

	// Payload is handed to the Completer untouched
	Payload any
}

// Item is a copy of an item's state as held by the processor.
type Item struct {
	ID      string
	Payload any
	Status  Status

	// Result is set only when Status is StatusCompleted
	Result any

	// Error is set only when Status is StatusRetrying or StatusFailed
	Error string

	// RetryCount is the number of retries consumed so far
	RetryCount int

	EnqueuedAt time.Time
	UpdatedAt  time.Time
}

// Snapshot is a read-only summary of the queue.
type Snapshot struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Retrying   int `json:"retrying"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`

	// Active is the number of admitted items counted against ConcurrencyLimit
	Active           int  `json:"active"`
	ConcurrencyLimit int  `json:"concurrency_limit"`
	Paused           bool `json:"paused"`

	// HasPending reports whether any item still has work ahead of it
	HasPending bool `json:"has_pending"`
}
