package supervisor

import (
	"context"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/internal/bitflags"
	"github.com/holger24/AFD-sub005/internal/ctrl"
	"github.com/holger24/AFD-sub005/logfwd"
)

// dispatch handles one control-channel message (spec §4.6 step 2,
// §6.3). It returns true if the supervisor should tear down and Run
// should return.
func (s *Supervisor) dispatch(ctx context.Context, msg ctrl.Message) bool {
	switch msg.Op {
	case ctrl.OpShutdown:
		return true

	case ctrl.OpShutdownAll:
		s.shutdownAll.Store(true)
		return true

	case ctrl.OpStart:
		if err := s.launchAll(ctx); err != nil {
			s.logger.Warn("restart-all had errors", "error", err)
		}
		s.reply(ctrl.ReplyAck)

	case ctrl.OpIsAlive:
		if s.fwdPaused.Load() {
			s.reply(ctrl.ReplyAckStopped)
		} else {
			s.reply(ctrl.ReplyAck)
		}

	case ctrl.OpGotLC:
		s.handleGotLC(msg.SiteIndex, msg.Capability)

	case ctrl.OpDisableMon:
		s.handleDisableMon(ctx, msg.SiteIndex)

	case ctrl.OpEnableMon:
		s.handleEnableMon(ctx, msg.SiteIndex)
	}
	return false
}

func (s *Supervisor) reply(r ctrl.Reply) {
	select {
	case s.replyCh <- r:
	default:
	}
}

// handleGotLC (re)spawns the site's Log Forwarder once its reported
// capabilities intersect the streams this site's configuration
// actually requested (spec §4.6 "GOT_LC <index> -> if the indicated
// site's log capabilities intersect its requested options, (re)spawn
// its Log Forwarder").
func (s *Supervisor) handleGotLC(siteIndex int, caps uint64) {
	s.procsMu.Lock()
	defer s.procsMu.Unlock()

	if siteIndex < 0 || siteIndex >= len(s.procs) || s.procs[siteIndex] == nil {
		return
	}
	p := s.procs[siteIndex]
	if siteIndex >= len(s.cfg.Sites) {
		return
	}
	site := s.cfg.Sites[siteIndex]

	requested := optionsFromSite(site)
	reported := bitflags.FromUint64(caps)
	if !requested.Intersects(reported) {
		return
	}

	if p.logFwd != nil {
		_ = p.logFwd.Stop(context.Background())
	}

	fw, err := logfwd.New(logfwd.Config{
		Kind:         logfwd.KindSite,
		Alias:        p.alias,
		WorkDir:      s.cfg.WorkDir,
		Capabilities: reported,
	}, s.logger)
	if err != nil {
		s.logger.Warn("open log forwarder failed", "alias", p.alias, "error", err)
		return
	}

	p.logFwd = fw.Runner()
	p.logFwdID = p.pollID // paired with the poll client's own run
	_ = p.logFwd.Start(context.Background())
}

// handleDisableMon marks the site DISABLED and stops its Polling
// Client (spec §4.6 "DISABLE_MON <index> -> set the site's
// connect_status to DISABLED and stop its Polling Client").
func (s *Supervisor) handleDisableMon(ctx context.Context, siteIndex int) {
	s.procsMu.Lock()
	p := s.procAt(siteIndex)
	s.procsMu.Unlock()
	if p == nil {
		return
	}

	p.disabled = true
	_ = p.poll.Stop(ctx)

	site, err := s.store.Read(siteIndex)
	if err == nil {
		site.ConnectStatus = afdssa.StatusDisabled
		_ = s.store.Write(siteIndex, site)
	}
}

// handleEnableMon marks the site DISCONNECTED and restarts its Polling
// Client (spec §4.6 "ENABLE_MON <index> -> set status to DISCONNECTED
// and start its Polling Client").
func (s *Supervisor) handleEnableMon(ctx context.Context, siteIndex int) {
	s.procsMu.Lock()
	p := s.procAt(siteIndex)
	s.procsMu.Unlock()
	if p == nil {
		return
	}

	p.disabled = false
	p.restartCount = 0

	site, err := s.store.Read(siteIndex)
	if err == nil {
		site.ConnectStatus = afdssa.StatusDisconnected
		_ = s.store.Write(siteIndex, site)
	}
	_ = p.start(ctx)
}

// procAt returns the process entry for siteIndex, or nil if out of
// range or never launched (e.g. a group row). Caller holds procsMu.
func (s *Supervisor) procAt(siteIndex int) *process {
	if siteIndex < 0 || siteIndex >= len(s.procs) {
		return nil
	}
	return s.procs[siteIndex]
}
