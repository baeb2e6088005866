package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/finflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("temporary failure")

	tests := []struct {
		name      string
		failures  int
		failWith  error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first time", failures: 0, attempts: 3, wantCalls: 1},
		{name: "succeeds after retries", failures: 2, failWith: transient, attempts: 3, wantCalls: 3},
		{name: "gives up", failures: 5, failWith: transient, attempts: 3, wantCalls: 3, wantErr: ErrMaxRetries},
		{
			name:      "non-retryable stops immediately",
			failures:  5,
			failWith:  &RetryableError{Err: ErrInvalidInput, Retryable: false},
			attempts:  3,
			wantCalls: 1,
			wantErr:   ErrInvalidInput,
		},
		{name: "rate limit waits max delay", failures: 1, failWith: ErrPlaidRateLimit, attempts: 2, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), "fetch transactions page", func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			}, fastRetry(tt.attempts))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWithRetry_NamesStepOnGiveUp(t *testing.T) {
	err := WithRetry(context.Background(), "fetch accounts", func() error {
		return errors.New("connection reset")
	}, fastRetry(2))

	require.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, "fetch accounts: max retries exceeded after 2 attempts: connection reset", err.Error())
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, "write report", func() error {
		calls++
		cancel()
		return errors.New("boom")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
