package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := NewRetryPolicy(4, 10*time.Millisecond, 2)

	assert.Equal(t, 4, p.Attempts())
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 10*time.Millisecond, p.Delay(1))
	assert.Equal(t, 20*time.Millisecond, p.Delay(2))
	assert.Equal(t, 40*time.Millisecond, p.Delay(3))
}

func TestRetryPolicy_Clamps(t *testing.T) {
	p := NewRetryPolicy(0, -time.Second, 0.5)
	assert.Equal(t, 1, p.Attempts())
	assert.Equal(t, time.Duration(0), p.Delay(1))
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := config.NewSchedulerConfig().WithRetry(5, time.Second, 3)
	p := RetryPolicyFromConfig(cfg)
	assert.Equal(t, 5, p.Attempts())
	assert.Equal(t, 3*time.Second, p.Delay(2))
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), NewRetryPolicy(3, time.Millisecond, 2), testLogger(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Retry(context.Background(), NewRetryPolicy(3, time.Millisecond, 1), testLogger(), func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
	assert.Equal(t, 3, calls)
}

func TestRetry_DoesNotRetryValidationErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), NewRetryPolicy(5, time.Millisecond, 1), testLogger(), func(context.Context) error {
		calls++
		return fmt.Errorf("%w: bad input", errs.ErrValidation)
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, NewRetryPolicy(5, time.Hour, 1), testLogger(), func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
