package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/afdssa/snapshot"
	"github.com/holger24/AFD-sub005/aggregator"
	"github.com/holger24/AFD-sub005/atomic"
	"github.com/holger24/AFD-sub005/internal/ctrl"
	"github.com/holger24/AFD-sub005/pollclient"
)

// idleTimeout and activeTimeout bound how long the control loop sleeps
// (spec §5 "Timeouts": "1 second during active aggregation or 2
// seconds while idle").
const (
	activeTimeout = time.Second
	idleTimeout   = 2 * time.Second
)

// Supervisor is the process top of spec §4.6: it owns the SSA, every
// per-site Polling Client and Log Forwarder, the Aggregator's periodic
// tick, and the control channel the rest of the system (or a sibling
// CLI invocation) uses to steer it.
type Supervisor struct {
	logger     hclog.Logger
	cfg        ProcessConfig
	configPath string

	store *afdssa.Store
	agg   *aggregator.Aggregator

	reloadRequested atomic.Value[bool]

	procsMu sync.RWMutex
	procs   []*process // index-aligned with SSA site index
	snaps   map[string]*snapshot.Manager

	ctrlCh  chan ctrl.Message
	replyCh chan ctrl.Reply

	shutdownAll atomic.Value[bool]
	fwdPaused   atomic.Value[bool]

	watchdogTouch func() // heartbeat hook; nil when disabled
}

// New attaches the SSA and opens every configured site's snapshot
// Manager, but does not start any Polling Client - call Run for that
// (spec §4.6 "launches one Polling Client per site" happens at the top
// of the control loop so a later config reload can repeat it).
func New(cfg ProcessConfig, configPath string, logger hclog.Logger) (*Supervisor, error) {
	ssaPath := filepath.Join(cfg.WorkDir, "fifo", "status_area")
	store, err := afdssa.Open(ssaPath, len(cfg.Sites))
	if err != nil {
		return nil, err
	}

	s := &Supervisor{
		logger:          logger.Named("supervisor"),
		cfg:             cfg,
		configPath:      configPath,
		store:           store,
		agg:             aggregator.New(store, logger),
		snaps:           make(map[string]*snapshot.Manager),
		ctrlCh:          make(chan ctrl.Message, 16),
		replyCh:         make(chan ctrl.Reply, 16),
		reloadRequested: atomic.NewValue[bool](),
		shutdownAll:     atomic.NewValue[bool](),
		fwdPaused:       atomic.NewValue[bool](),
	}

	if cfg.ServiceWatchdog {
		s.watchdogTouch = func() {
			p := filepath.Join(cfg.WorkDir, "fifo", "supervisor_active")
			_ = os.WriteFile(p, []byte(time.Now().UTC().Format(time.RFC3339)), 0o644)
		}
	}

	return s, nil
}

// ControlChannel returns the send side other components (or a CLI
// collaborator) use to steer this supervisor (spec §6.3).
func (s *Supervisor) ControlChannel() chan<- ctrl.Message { return s.ctrlCh }

// Replies returns the channel IS_ALIVE and START answers are posted to.
func (s *Supervisor) Replies() <-chan ctrl.Reply { return s.replyCh }

// Close detaches the SSA and every open snapshot Manager. Call after
// Run returns.
func (s *Supervisor) Close() error {
	s.procsMu.Lock()
	defer s.procsMu.Unlock()

	for _, m := range s.snaps {
		_ = m.Close()
	}
	return s.store.Close()
}

// launchAll builds a process entry and starts the Polling Client for
// every configured, non-group site, fanning the initial connects out
// concurrently so one slow site can't hold up the rest (spec §4.6
// "launches one Polling Client per site", SPEC_FULL §3 errgroup note).
func (s *Supervisor) launchAll(ctx context.Context) error {
	s.procsMu.Lock()
	s.procs = make([]*process, len(s.cfg.Sites))
	s.procsMu.Unlock()

	// A plain errgroup.Group, not WithContext: one slow or failing
	// connect must not cancel its siblings' launch.
	var g errgroup.Group

	for i, site := range s.cfg.Sites {
		i, site := i, site
		if site.IsGroup {
			groupSite := afdssa.Site{Alias: site.Alias}
			if err := s.store.Write(i, groupSite); err != nil {
				return err
			}
			continue
		}

		g.Go(func() error {
			return s.launchSite(ctx, i, site)
		})
	}

	return g.Wait()
}

func (s *Supervisor) launchSite(ctx context.Context, index int, site SiteConfig) error {
	snaps, err := snapshot.OpenManager(filepath.Join(s.cfg.WorkDir, "fifo"), site.Alias)
	if err != nil {
		s.logger.Warn("open snapshot manager failed", "alias", site.Alias, "error", err)
	}

	initial := afdssa.Site{
		Alias:         site.Alias,
		Host1:         site.Host1,
		Port1:         site.Port1,
		Host2:         site.Host2,
		Port2:         site.Port2,
		RemoteCommand: site.Command,
		ConnectStatus: afdssa.StatusDisconnected,
		PollInterval:  site.PollInterval,
	}
	if err := s.store.Write(index, initial); err != nil {
		return err
	}

	pc := pollclient.New(pollClientConfig(site, index, s.cfg), s.store, snaps, s.logger, s.ctrlCh)
	runner := pc.Runner()

	s.procsMu.Lock()
	s.procs[index] = newProcess(index, site.Alias, runner)
	if snaps != nil {
		s.snaps[site.Alias] = snaps
	}
	s.procsMu.Unlock()

	return runner.Start(ctx)
}

// Run is the control loop of spec §4.6: launch everything, then loop
// sleeping on the control channel with a computed timeout, dispatching
// messages, and on timeout running the Aggregator and reaping children.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.launchAll(ctx); err != nil {
		s.logger.Warn("initial launch had errors", "error", err)
	}

	for {
		timeout := s.nextTimeout()
		timer := time.NewTimer(timeout)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.teardown(context.Background())
			return nil

		case msg := <-s.ctrlCh:
			timer.Stop()
			if shuttingDown := s.dispatch(ctx, msg); shuttingDown {
				s.teardown(context.Background())
				return nil
			}

		case <-timer.C:
			s.onTimeout(ctx)
		}
	}
}

// nextTimeout picks between the active and idle control-channel
// timeouts (spec §5 "Timeouts"): active while any site is mid-restart
// backoff or streaming, idle otherwise.
func (s *Supervisor) nextTimeout() time.Duration {
	s.procsMu.RLock()
	defer s.procsMu.RUnlock()

	for _, p := range s.procs {
		if p != nil && p.poll.IsRunning() {
			return activeTimeout
		}
	}
	return idleTimeout
}

func (s *Supervisor) onTimeout(ctx context.Context) {
	if s.reloadRequested.CompareAndSwap(true, false) {
		if err := s.reload(ctx); err != nil {
			s.logger.Error("config reload failed, keeping running state", "error", err)
		}
	}

	if err := s.agg.Tick(time.Now()); err != nil {
		s.logger.Warn("aggregator tick failed", "error", err)
	}

	s.reapAndRestart(ctx)

	if s.watchdogTouch != nil {
		s.watchdogTouch()
	}
}

func (s *Supervisor) reapAndRestart(ctx context.Context) {
	s.procsMu.RLock()
	procs := append([]*process(nil), s.procs...)
	s.procsMu.RUnlock()

	now := time.Now()
	for _, p := range procs {
		if p == nil {
			continue
		}
		if restarted := p.reapOne(ctx, now); restarted {
			s.logger.Warn("restarted worker", "alias", p.alias, "restart_count", p.restartCount)
		} else if p.disabled && p.restartCount >= maxRestarts {
			s.logger.Error("worker crash-looped past restart limit, giving up", "alias", p.alias)
		}
	}
}

// teardown stops every running child (spec §5 "Cancellation": up to 1
// second per child, nine 100ms polls, implemented here by delegating
// to taskrunner.Runner.Stop's own context-bounded wait).
func (s *Supervisor) teardown(ctx context.Context) {
	s.procsMu.RLock()
	procs := append([]*process(nil), s.procs...)
	s.procsMu.RUnlock()

	for _, p := range procs {
		if p == nil {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		_ = p.poll.Stop(stopCtx)
		if p.logFwd != nil {
			_ = p.logFwd.Stop(stopCtx)
		}
		cancel()
	}
}
