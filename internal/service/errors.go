package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps these to HTTP status codes.
var (
	// ErrInvalidRequest indicates the caller asked for something malformed,
	// such as an unknown completion mode. API layer maps this to 400.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrItemNotFound indicates the queue holds no item with the given ID.
	// API layer maps this to 404.
	ErrItemNotFound = errors.New("queue item not found")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "enqueue", "pause")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("completion service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrItemNotFound) {
		return err
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
