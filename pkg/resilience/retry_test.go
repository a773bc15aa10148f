package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/resilience"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	cfg := resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, Multiplier: 2}

	err := resilience.Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	cfg := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1}

	err := resilience.Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})

	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		return errors.New("should not run")
	})

	require.ErrorIs(t, err, context.Canceled)
}
