package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries uint64) Config {
	return Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), logger.NewNop(), "flaky", func(int) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsAtBudget(t *testing.T) {
	boom := errors.New("boom")
	attempts, err := Do(context.Background(), logger.NewNop(), "broken", func(int) error {
		return boom
	}, fastConfig(2))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestDoPermanent(t *testing.T) {
	fatal := errors.New("fatal")
	cfg := fastConfig(5)
	cfg.Permanent = func(err error) bool { return errors.Is(err, fatal) }

	attempts, err := Do(context.Background(), logger.NewNop(), "fatal", func(int) error {
		return fatal
	}, cfg)

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}
