package supervisor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/internal/bitflags"
	"github.com/holger24/AFD-sub005/internal/ctrl"
)

func newTestSupervisor(t *testing.T, sites []SiteConfig) *Supervisor {
	t.Helper()
	dir := t.TempDir()
	cfg := ProcessConfig{WorkDir: dir, Sites: sites}
	s, err := New(cfg, filepath.Join(dir, "etc", "config"), hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDispatchIsAliveReportsPausedState(t *testing.T) {
	s := newTestSupervisor(t, nil)

	s.dispatch(context.Background(), ctrl.Message{Op: ctrl.OpIsAlive})
	require.Equal(t, ctrl.ReplyAck, <-s.replyCh)

	s.fwdPaused.Store(true)
	s.dispatch(context.Background(), ctrl.Message{Op: ctrl.OpIsAlive})
	require.Equal(t, ctrl.ReplyAckStopped, <-s.replyCh)
}

func TestDispatchShutdownSignalsReturn(t *testing.T) {
	s := newTestSupervisor(t, nil)
	require.True(t, s.dispatch(context.Background(), ctrl.Message{Op: ctrl.OpShutdown}))
}

func TestHandleDisableAndEnableMon(t *testing.T) {
	site := SiteConfig{Alias: "siteA", Command: "afd_rsd"}
	s := newTestSupervisor(t, []SiteConfig{site})

	fr := &fakeRunner{running: true}
	s.procs = []*process{newProcess(0, "siteA", fr)}
	require.NoError(t, s.store.Write(0, afdssa.Site{Alias: "siteA", RemoteCommand: "afd_rsd", ConnectStatus: afdssa.StatusConnected}))

	s.handleDisableMon(context.Background(), 0)
	require.False(t, fr.running)
	got, err := s.store.Read(0)
	require.NoError(t, err)
	require.Equal(t, afdssa.StatusDisabled, got.ConnectStatus)
	require.True(t, s.procs[0].disabled)

	s.handleEnableMon(context.Background(), 0)
	require.True(t, fr.running)
	got, err = s.store.Read(0)
	require.NoError(t, err)
	require.Equal(t, afdssa.StatusDisconnected, got.ConnectStatus)
	require.False(t, s.procs[0].disabled)
}

func TestHandleGotLCSpawnsForwarderOnIntersection(t *testing.T) {
	site := SiteConfig{Alias: "siteA", Command: "afd_rsd", StreamReceive: true}
	s := newTestSupervisor(t, []SiteConfig{site})

	fr := &fakeRunner{running: true}
	s.procs = []*process{newProcess(0, "siteA", fr)}

	caps := bitflags.New(8).Set(bitflags.OptStreamReceiveLog).Uint64()
	s.handleGotLC(0, caps)
	require.NotNil(t, s.procs[0].logFwd)
}

func TestHandleGotLCIgnoresNonIntersectingCapabilities(t *testing.T) {
	site := SiteConfig{Alias: "siteA", Command: "afd_rsd", StreamReceive: true}
	s := newTestSupervisor(t, []SiteConfig{site})

	fr := &fakeRunner{running: true}
	s.procs = []*process{newProcess(0, "siteA", fr)}

	caps := bitflags.New(8).Set(bitflags.OptStreamTransferLog).Uint64()
	s.handleGotLC(0, caps)
	require.Nil(t, s.procs[0].logFwd)
}
