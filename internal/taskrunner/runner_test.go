package taskrunner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/internal/taskrunner"
)

func TestRunnerStartStop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var started, stopped atomic.Bool

	r := taskrunner.New(
		func(ctx context.Context) error {
			started.Store(true)
			<-ctx.Done()
			return nil
		},
		func(ctx context.Context) error {
			stopped.Store(true)
			return nil
		},
	)

	require.NoError(t, r.Start(ctx))
	require.Eventually(t, r.IsRunning, time.Second, 10*time.Millisecond)
	require.Eventually(t, started.Load, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Stop(ctx))
	require.True(t, stopped.Load())
	require.False(t, r.IsRunning())
}

func TestRunnerRestartStopsPrevious(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count atomic.Int32
	r := taskrunner.New(
		func(ctx context.Context) error {
			count.Add(1)
			<-ctx.Done()
			return nil
		},
		func(ctx context.Context) error { return nil },
	)

	require.NoError(t, r.Start(ctx))
	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Start(ctx))
	require.Eventually(t, func() bool { return count.Load() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Stop(ctx))
}

func TestRunnerCapturesError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	r := taskrunner.New(
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return nil },
	)

	require.NoError(t, r.Start(ctx))
	require.Eventually(t, func() bool { return !r.IsRunning() }, time.Second, 10*time.Millisecond)
	require.ErrorIs(t, r.Err(), boom)
}

func TestTickerFiresPeriodically(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count atomic.Int32
	ticker := taskrunner.NewTicker(50*time.Millisecond, func(ctx context.Context, _ *time.Ticker) error {
		count.Add(1)
		return nil
	})

	require.NoError(t, ticker.Start(ctx))
	require.Eventually(t, func() bool { return count.Load() >= 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, ticker.Stop(ctx))
	require.False(t, ticker.IsRunning())
}
