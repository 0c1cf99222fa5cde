package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/internal/config"
)

// RetryPolicy describes exponential backoff between attempts.
type RetryPolicy struct {
	attempts     int
	initialDelay time.Duration
	factor       float64
}

// NewRetryPolicy creates a policy. Attempts below 1 run once; a factor
// below 1 keeps the delay constant.
func NewRetryPolicy(attempts int, initialDelay time.Duration, factor float64) RetryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	if factor < 1 {
		factor = 1
	}
	if initialDelay < 0 {
		initialDelay = 0
	}
	return RetryPolicy{attempts: attempts, initialDelay: initialDelay, factor: factor}
}

// RetryPolicyFromConfig reads the scheduler's retry settings.
func RetryPolicyFromConfig(cfg config.SchedulerConfig) RetryPolicy {
	return NewRetryPolicy(cfg.RetryAttempts(), cfg.RetryInitialDelay(), cfg.RetryBackoffFactor())
}

// NoRetry runs an operation exactly once.
func NoRetry() RetryPolicy {
	return NewRetryPolicy(1, 0, 1)
}

// Attempts returns the maximum number of attempts.
func (p RetryPolicy) Attempts() int { return p.attempts }

// Delay returns the wait before retry n (1 for the first retry).
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return time.Duration(float64(p.initialDelay) * math.Pow(p.factor, float64(n-1)))
}

// Retry runs fn until it succeeds, the attempts are used up or ctx ends.
// Validation errors are returned at once since repeating cannot fix them.
func Retry(ctx context.Context, p RetryPolicy, logger *slog.Logger, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			delay := p.Delay(attempt - 1)
			logger.Warn("retrying after failure",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", p.attempts),
				slog.Duration("backoff", delay),
				slog.String("error", lastErr.Error()),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry cancelled: %w", errors.Join(ctx.Err(), lastErr))
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, errs.ErrValidation) || ctx.Err() != nil {
			return err
		}
	}
	if p.attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", p.attempts, lastErr)
}
