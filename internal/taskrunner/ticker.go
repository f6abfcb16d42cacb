package taskrunner

import (
	"context"
	"sync/atomic"
	"time"
)

// TickFunc is called on every tick. Returning an error does not stop the
// ticker; the caller is expected to log it.
type TickFunc func(ctx context.Context, tck *time.Ticker) error

// minTickInterval is the floor NewTicker raises a shorter interval to, mirroring the
// "use default duration when provided duration is too small" guard the
// teacher's runner/ticker test suite exercises.
const minTickInterval = 100 * time.Millisecond

// Ticker runs fn on a fixed interval until stopped or its parent context
// is cancelled. Aggregator.Ticker uses it for a one-second Tick driver
// (spec §4.5); the Supervisor's control-channel timeout is a plain
// time.Timer, not a Ticker.
type Ticker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
}

type tick struct {
	d       time.Duration
	fn      TickFunc
	running atomic.Bool
	startAt atomic.Int64
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewTicker(d time.Duration, fn TickFunc) Ticker {
	if d < minTickInterval {
		d = minTickInterval
	}
	return &tick{d: d, fn: fn}
}

func (t *tick) Start(parent context.Context) error {
	if t.running.Load() {
		_ = t.Stop(parent)
	}

	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running.Store(true)
	t.startAt.Store(time.Now().UnixNano())

	go func() {
		defer close(t.done)
		defer t.running.Store(false)
		defer t.startAt.Store(0)

		tk := time.NewTicker(t.d)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if t.fn != nil {
					_ = t.fn(ctx, tk)
				}
			}
		}
	}()

	return nil
}

func (t *tick) Stop(ctx context.Context) error {
	if !t.running.Load() {
		return nil
	}
	if t.cancel != nil {
		t.cancel()
	}
	select {
	case <-t.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (t *tick) IsRunning() bool {
	return t.running.Load()
}

func (t *tick) Uptime() time.Duration {
	start := t.startAt.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}
