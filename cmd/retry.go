package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	engineAttempts  = 3
	engineBaseDelay = time.Second
	engineMaxDelay  = 8 * time.Second
)

// withRetry repeats op while it fails with an error the engine marks as
// retryable. Gateway-level retries already happened inside the Gemini client.
func withRetry[T any](ctx context.Context, log *zap.Logger, op string, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= engineAttempts; attempt++ {
		result, err = fn()
		if err == nil || !interview.IsRetryable(err) || attempt == engineAttempts {
			return result, err
		}

		delay := utils.Backoff(attempt-1, engineBaseDelay, engineMaxDelay)
		log.Warn("retrying interview operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if waitErr := utils.WaitFor(ctx, delay); waitErr != nil {
			return result, err
		}
	}
	return result, err
}
