package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64

	// Permanent marks errors that must not be retried.
	Permanent func(error) bool
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
	}
}

// Do runs operation until it succeeds, returns a permanent error or the
// retry budget is spent. It returns the number of attempts made alongside
// the last error.
func Do(ctx context.Context, log logger.Logger, operationName string, operation func(attempt int) error, cfg Config) (int, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.MaxElapsedTime = 0
	bo.Reset()

	retryable := backoff.WithMaxRetries(bo, cfg.MaxRetries)
	retryableWithContext := backoff.WithContext(retryable, ctx)

	attempts := 0
	wrapped := func() error {
		attempts++
		err := operation(attempts)
		if err != nil && cfg.Permanent != nil && cfg.Permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"attempt", attempts,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	err := backoff.RetryNotify(wrapped, retryableWithContext, notify)
	return attempts, err
}
