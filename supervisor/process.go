package supervisor

import (
	"context"
	"time"

	"github.com/holger24/AFD-sub005/internal/taskrunner"
	"github.com/holger24/AFD-sub005/internal/uuidgen"
)

// maxRestarts is the point at which the supervisor gives up on a
// crash-looping child (spec §4.6 "after 20 restarts the supervisor
// stops respawning that child").
const maxRestarts = 20

// crashLoopWindow is how close together two deaths have to be to count
// as a crash loop (spec §4.6 "dies twice within 5 seconds").
const crashLoopWindow = 5 * time.Second

// process is the runtime-only Process entry spec §3.1 describes:
// "alias, child identifier of Polling Client, child identifier of Log
// Forwarder, start time, next-retry-time, restart counter".
type process struct {
	siteIndex int
	alias     string

	pollID string
	poll   taskrunner.Runner

	logFwdID string
	logFwd   taskrunner.Runner // nil until GOT_LC spawns it

	startTime    time.Time
	lastExitTime time.Time
	restartCount int
	wasRunning   bool
	disabled     bool // true after DISABLE_MON, or after restartCount hits maxRestarts
}

func newProcess(siteIndex int, alias string, poll taskrunner.Runner) *process {
	return &process{
		siteIndex:  siteIndex,
		alias:      alias,
		pollID:     uuidgen.New(),
		poll:       poll,
		wasRunning: true,
	}
}

// start launches the Polling Client task, recording its start time.
func (p *process) start(ctx context.Context) error {
	p.startTime = time.Now()
	p.wasRunning = true
	return p.poll.Start(ctx)
}

// reapOne checks for a completed run and applies the crash-loop /
// restart-limit policy (spec §4.6 step 3 "Reap any exited children").
// An exited child is restarted on the same call; no backoff delay is
// applied between restarts. It returns true if the child was
// (re)started this call.
func (p *process) reapOne(ctx context.Context, now time.Time) bool {
	running := p.poll.IsRunning()
	if running {
		p.wasRunning = true
		return false
	}
	if !p.wasRunning {
		return false
	}

	p.wasRunning = false
	if p.disabled {
		return false
	}

	if !p.lastExitTime.IsZero() && now.Sub(p.lastExitTime) < crashLoopWindow {
		p.restartCount++
	}
	p.lastExitTime = now

	if p.restartCount >= maxRestarts {
		p.disabled = true
		return false
	}

	_ = p.start(ctx)
	return true
}
