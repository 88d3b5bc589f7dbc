package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/scheduler"
)

func TestNew_RejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	tests := []string{"", "not a cron", "* * * *", "0 7 * * * *"}

	for _, spec := range tests {
		_, err := scheduler.New(spec, func(context.Context) error { return nil }, logger.NewNop())
		require.Error(t, err, spec)
	}
}

func TestNext_DailyAtSeven(t *testing.T) {
	t.Parallel()

	s, err := scheduler.New("0 7 * * *", func(context.Context) error { return nil }, logger.NewNop())
	require.NoError(t, err)

	from := time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 3, 6, 7, 0, 0, 0, time.Local), s.Next(from))
}

func TestRunNow_ReturnsJobError(t *testing.T) {
	t.Parallel()

	errJob := errors.New("run failed")
	core, logs := observer.New(zapcore.InfoLevel)

	s, err := scheduler.New("0 7 * * *", func(context.Context) error { return errJob },
		logger.NewFromZap(zap.New(core)))
	require.NoError(t, err)

	require.ErrorIs(t, s.RunNow(context.Background()), errJob)
	assert.Equal(t, 1, logs.FilterMessage("Scheduled run finished").Len())
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	s, err := scheduler.New("* * * * *", func(context.Context) error { return nil }, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), scheduler.ErrAlreadyStarted)

	s.Stop()
	s.Stop()
}
