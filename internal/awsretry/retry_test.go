package awsretry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		want        int
	}{
		{name: "explicit attempts", maxAttempts: 3, want: 3},
		{name: "zero falls back to default", maxAttempts: 0, want: DefaultMaxAttempts},
		{name: "negative falls back to default", maxAttempts: -1, want: DefaultMaxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.maxAttempts)
			assert.Equal(t, tt.want, r.MaxAttempts())
		})
	}
}

func TestRetryer_IsErrorRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{
			name: "slow down",
			err:  &smithy.GenericAPIError{Code: "SlowDown"},
			want: true,
		},
		{
			name: "throttling",
			err:  &smithy.GenericAPIError{Code: "Throttling"},
			want: true,
		},
		{
			name: "throttling exception",
			err:  &smithy.GenericAPIError{Code: "ThrottlingException"},
			want: true,
		},
		{
			name: "request limit exceeded",
			err:  &smithy.GenericAPIError{Code: "RequestLimitExceeded"},
			want: true,
		},
		{
			name: "too many requests",
			err:  &smithy.GenericAPIError{Code: "TooManyRequestsException"},
			want: true,
		},
		{
			name: "wrapped throttling",
			err:  fmt.Errorf("list failed: %w", &smithy.GenericAPIError{Code: "SlowDown"}),
			want: true,
		},
		{
			name: "access denied is permanent",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: false,
		},
		{
			name: "no such bucket is permanent",
			err:  &smithy.GenericAPIError{Code: "NoSuchBucket"},
			want: false,
		},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
	}

	r := New(DefaultMaxAttempts)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsErrorRetryable(tt.err))
		})
	}
}

func TestRetryer_RetryDelay(t *testing.T) {
	r := New(DefaultMaxAttempts)

	var previous time.Duration
	for attempt := 1; attempt <= 5; attempt++ {
		delay, err := r.RetryDelay(attempt, nil)
		require.NoError(t, err)

		base := time.Duration(1<<(attempt-1)) * DefaultBaseDelay
		assert.GreaterOrEqual(t, delay, time.Duration(float64(base)*0.75))
		assert.LessOrEqual(t, delay, time.Duration(float64(base)*1.25))
		assert.Greater(t, delay, previous/2)
		previous = delay
	}
}

func TestRetryer_RetryDelayCapped(t *testing.T) {
	r := New(DefaultMaxAttempts)

	// Attempt 30 without the cap would be over a year of backoff.
	delay, err := r.RetryDelay(30, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, delay, DefaultMaxDelay)
}

func TestRetryer_Tokens(t *testing.T) {
	r := New(DefaultMaxAttempts)

	release, err := r.GetRetryToken(context.Background(), errors.New("boom"))
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.NoError(t, release(nil))

	initial := r.GetInitialToken()
	require.NotNil(t, initial)
	assert.NoError(t, initial(nil))
}
