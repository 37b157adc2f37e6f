package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] only retries errors
// wrapped in this type; [Download] wraps connection failures and 5xx
// responses with it.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff describes a retry schedule. The delay doubles after every failed
// attempt up to Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff suits mirror downloads: three attempts, one second apart
// at first, never waiting more than thirty seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 30 * time.Second}

// next returns the wait after a failure that followed a wait of d.
func (b Backoff) next(d time.Duration) time.Duration {
	d *= 2
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. fn receives the 1-based attempt number. The last error
// is returned, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = b.next(delay)
	}
	return err
}
