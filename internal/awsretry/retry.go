// Package awsretry provides a custom retryer for AWS SDK v2 operations.
// It implements exponential backoff with jitter and retries only on error
// codes that indicate transient throttling.
package awsretry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aws/smithy-go"
)

// Default retry tuning applied by New.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 100 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// Retryer implements the aws.Retryer interface with configurable retry
// behavior. It provides exponential backoff with jitter and checks for
// AWS error codes that indicate transient failures.
//
// All fields are immutable after creation, so a single Retryer is safe
// for concurrent use.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// New creates a Retryer with the given maximum attempt count and default
// backoff tuning. Non-positive maxAttempts falls back to DefaultMaxAttempts.
func New(maxAttempts int) *Retryer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Retryer{
		maxAttempts: maxAttempts,
		baseDelay:   DefaultBaseDelay,
		maxDelay:    DefaultMaxDelay,
	}
}

// MaxAttempts returns the maximum number of attempts, including the initial one.
func (r *Retryer) MaxAttempts() int {
	return r.maxAttempts
}

// RetryDelay returns the backoff delay for the given attempt number,
// using exponential backoff with ±25% jitter to avoid thundering herd.
func (r *Retryer) RetryDelay(attempt int, _ error) (time.Duration, error) {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseDelay

	jitterRange := int64(float64(delay) * 0.25)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return delay, nil
}

// IsErrorRetryable reports whether the error is worth retrying.
// Only throttling-style API errors are retried; permanent errors and
// context cancellation never are.
func (r *Retryer) IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "SlowDown",
			"Throttling",
			"ThrottlingException",
			"RequestLimitExceeded",
			"TooManyRequestsException":
			return true
		}
	}

	// Conservative default: unknown errors are treated as permanent so a
	// broken request cannot loop.
	return false
}

// GetRetryToken deducts a retry cost from the token pool. This
// implementation always allows retries and returns a no-op release.
func (r *Retryer) GetRetryToken(_ context.Context, _ error) (func(error) error, error) {
	return func(error) error { return nil }, nil
}

// GetInitialToken returns the initial attempt token.
func (r *Retryer) GetInitialToken() func(error) error {
	return func(error) error { return nil }
}
