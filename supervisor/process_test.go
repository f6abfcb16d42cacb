package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRunner is a minimal taskrunner.Runner stand-in that lets tests
// control IsRunning() directly instead of racing a real goroutine.
type fakeRunner struct {
	running bool
	starts  int
}

func (f *fakeRunner) Start(ctx context.Context) error { f.starts++; f.running = true; return nil }
func (f *fakeRunner) Stop(ctx context.Context) error  { f.running = false; return nil }
func (f *fakeRunner) IsRunning() bool                 { return f.running }
func (f *fakeRunner) Uptime() time.Duration           { return 0 }
func (f *fakeRunner) Err() error                      { return nil }

func TestReapOneRestartsAfterExit(t *testing.T) {
	fr := &fakeRunner{running: true}
	p := newProcess(0, "siteA", fr)

	require.False(t, p.reapOne(context.Background(), time.Now()))

	fr.running = false
	restarted := p.reapOne(context.Background(), time.Now())
	require.True(t, restarted)
	require.Equal(t, 1, fr.starts) // newProcess doesn't start it; reapOne's restart is the first real start
}

func TestReapOneCountsCrashLoop(t *testing.T) {
	fr := &fakeRunner{running: true}
	p := newProcess(0, "siteA", fr)

	now := time.Now()
	fr.running = false
	p.reapOne(context.Background(), now)

	fr.running = false
	p.reapOne(context.Background(), now.Add(time.Second))
	require.Equal(t, 1, p.restartCount)
}

func TestReapOneStopsRespawningPastLimit(t *testing.T) {
	fr := &fakeRunner{running: true}
	p := newProcess(0, "siteA", fr)
	p.restartCount = maxRestarts
	p.wasRunning = true

	fr.running = false
	restarted := p.reapOne(context.Background(), time.Now())
	require.False(t, restarted)
	require.True(t, p.disabled)
}

func TestReapOneSkipsDisabledSite(t *testing.T) {
	fr := &fakeRunner{running: false}
	p := newProcess(0, "siteA", fr)
	p.wasRunning = true
	p.disabled = true

	restarted := p.reapOne(context.Background(), time.Now())
	require.False(t, restarted)
	require.Equal(t, 0, fr.starts)
}
