package queue

import (
	"errors"
	"fmt"
)

// Common errors returned by the queue package
var (
	// ErrRateLimited marks a completion error as an upstream rate-limit rejection.
	// It pauses the whole processor instead of failing the item.
	ErrRateLimited = errors.New("upstream rate limit reached")

	// ErrPermanent marks a completion error that retrying cannot fix.
	ErrPermanent = errors.New("permanent failure")

	// ErrProcessorStopped is returned by every operation after Stop.
	ErrProcessorStopped = errors.New("queue processor is stopped")

	// ErrInvalidConcurrency is returned when a concurrency limit below 1 is requested.
	ErrInvalidConcurrency = errors.New("concurrency limit must be at least 1")

	// ErrInvalidConfig is returned by NewProcessor for unusable settings.
	ErrInvalidConfig = errors.New("invalid queue configuration")
)

// RateLimited wraps err so the processor treats it as a rate-limit signal.
func RateLimited(err error) error {
	if err == nil {
		return ErrRateLimited
	}
	return fmt.Errorf("%w: %w", ErrRateLimited, err)
}

// Permanent wraps err so the processor fails the item without retrying.
func Permanent(err error) error {
	if err == nil {
		return ErrPermanent
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// outcome is the classification of a settled completion.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRateLimited
	outcomePermanent
	outcomeTransient
)

// classify maps a completion error to an outcome. First match wins.
func classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, ErrPermanent):
		return outcomePermanent
	default:
		return outcomeTransient
	}
}
