package queue

import (
	"fmt"
	"time"
)

// Config holds the tunables of a Processor
type Config struct {
	// ConcurrencyLimit is the maximum number of items processing at once
	ConcurrencyLimit int

	// MaxRetries is the number of transient failures an item may absorb
	// before it is marked failed
	MaxRetries int

	// BackoffBase is doubled for every retry: the n-th retry waits
	// BackoffBase * 2^n
	BackoffBase time.Duration
}

// DefaultConfig returns a Config with conservative defaults. A single
// concurrent item keeps the processor well clear of unknown upstream limits.
func DefaultConfig() Config {
	return Config{
		ConcurrencyLimit: 1,
		MaxRetries:       2,
		BackoffBase:      2 * time.Second,
	}
}

// Validate reports whether the configuration can drive a Processor.
func (c Config) Validate() error {
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidConfig, ErrInvalidConcurrency, c.ConcurrencyLimit)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative (got %d)", ErrInvalidConfig, c.MaxRetries)
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("%w: backoff base must be positive (got %s)", ErrInvalidConfig, c.BackoffBase)
	}
	return nil
}

// maxBackoffShift bounds the exponent so large retry budgets cannot overflow.
const maxBackoffShift = 16

// backoff returns the delay before the given retry attempt (1-based).
func (c Config) backoff(retryCount int) time.Duration {
	shift := retryCount
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	if shift < 0 {
		shift = 0
	}
	return c.BackoffBase << uint(shift)
}
