package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cause := errors.New("HTTP 429")

	tests := []struct {
		name string
		err  error
		want outcome
	}{
		{"success", nil, outcomeSuccess},
		{"plain error is transient", cause, outcomeTransient},
		{"rate limited", RateLimited(cause), outcomeRateLimited},
		{"rate limited without cause", RateLimited(nil), outcomeRateLimited},
		{"wrapped rate limit", fmt.Errorf("completing item: %w", RateLimited(cause)), outcomeRateLimited},
		{"permanent", Permanent(cause), outcomePermanent},
		{"context deadline is transient", context.DeadlineExceeded, outcomeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestRateLimited_KeepsCause(t *testing.T) {
	cause := errors.New("RESOURCE_EXHAUSTED")
	err := RateLimited(cause)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "RESOURCE_EXHAUSTED")
}

func TestConfig_Backoff(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4*time.Second, cfg.backoff(1))
	assert.Equal(t, 8*time.Second, cfg.backoff(2))
	assert.Equal(t, cfg.backoff(maxBackoffShift), cfg.backoff(maxBackoffShift+10))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.ConcurrencyLimit)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.BackoffBase)
	assert.NoError(t, cfg.Validate())
}
