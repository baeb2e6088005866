package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finflow/internal/service"
)

var (
	// ErrRateLimit is returned by a bank feed or spreadsheet call that was
	// throttled. WithRetry waits the full MaxDelay before trying again.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is wrapped into the last failure once a sync or export
	// step has used every attempt.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks a failure that WithRetry must return at once, such as
// rejected Plaid credentials, by setting Retryable to false.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// WithRetry runs one named step of a Plaid sync or Google Sheets export,
// backing off exponentially between attempts. name identifies the step in
// logs and in the final error, e.g. "fetch transactions page". Records typed
// into FinFlow are saved once and never retried.
func WithRetry(ctx context.Context, name string, step func() error, opts service.RetryOptions) error {
	opts = opts.WithDefaults()
	delay := opts.InitialDelay

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		err := step()
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}

		if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrPlaidRateLimit) {
			delay = opts.MaxDelay
		}

		if attempt == opts.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %v", name, ErrMaxRetries, opts.MaxAttempts, err)
		}

		slog.Warn("step failed, retrying",
			"step", name,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * opts.Multiplier)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}

	return ErrMaxRetries
}
