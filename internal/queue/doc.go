// Package queue implements the completion queue processor: it admits queued
// items up to a concurrency limit, drives each item through its retry and
// backoff state machine, and pauses all admission when the upstream service
// reports a rate limit.
//
// All queue state is owned by a single scheduling goroutine. Public methods
// are commands executed on that goroutine, and completion operations report
// their outcomes back to it over a channel, so no lock guards the items.
//
// Completion operations classify their failures by wrapping errors:
//
//	queue.RateLimited(err) // item returns to pending, processor pauses
//	queue.Permanent(err)   // item fails without consuming retries
//
// Any other error is transient and retried with exponential backoff.
package queue
