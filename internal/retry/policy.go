package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// StatusError is an HTTP response with a non-success status code.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// RetryableStatus reports whether an error is worth retrying: network
// failures and 5xx responses are transient; 4xx responses indicate a
// non-transient request problem and fail immediately.
func RetryableStatus(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// url.Error and friends wrap transport failures without implementing
	// net.Error consistently; anything that is not a status error and not
	// a context cancellation is treated as a network-level failure.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Policy bounds retries for an operation.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff schedule.
	BaseDelay time.Duration
	// Retryable decides whether an error is transient. Nil means
	// RetryableStatus.
	Retryable func(error) bool
}

// DefaultPolicy returns a policy with 3 attempts and 1s base delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or a
// non-retryable error occurs. Backoff sleeps honor ctx cancellation.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = RetryableStatus
	}

	backoff := NewBackoffWithBase(p.BaseDelay)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff.Next()); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// sleep waits for d or until ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
