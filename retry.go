package snapscan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// retryOnServerError runs operation until it succeeds, fails with anything
// other than a server error, or MaxAttempts is reached. The delay is fixed.
func retryOnServerError(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, operationName string, operation func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = operation()
		if lastErr == nil || !IsServerError(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		logger.Warn().
			Err(lastErr).
			Str("operation", operationName).
			Int("attempt", attempt).
			Dur("delay", cfg.Delay).
			Msg("server error, retrying")

		timer := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ClassifyError(ctx.Err())
		case <-timer.C:
		}
	}

	return errors.WithMessagef(lastErr, "%s failed after %d attempts", operationName, attempts)
}
