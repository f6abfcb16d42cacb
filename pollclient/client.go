package pollclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/afdssa/snapshot"
	"github.com/holger24/AFD-sub005/internal/ctrl"
	"github.com/holger24/AFD-sub005/internal/taskrunner"
)

// Client is one site's Polling Client: the state machine of spec §4.3,
// modeled on the teacher ftpclient's atomic.Value-guarded reconnecting
// session rather than a raw mutex-protected struct, since the supervisor
// and this client's own goroutine both need to read the live connection
// without blocking each other.
type Client struct {
	cfg    Config
	store  *afdssa.Store
	snaps  *snapshot.Manager
	logger hclog.Logger
	ctrlOut chan<- ctrl.Message

	conn  atomic.Value // net.Conn
	state atomic.Value // State

	mu           sync.Mutex
	fo           failoverState
	firstLCSeen  bool
	sessionStart time.Time
}

// New builds a Client for one site. snaps may be nil if the site's
// snapshot files could not be opened at startup (spec §7 "Filesystem"
// error policy: continue with in-memory state only).
func New(cfg Config, store *afdssa.Store, snaps *snapshot.Manager, logger hclog.Logger, ctrlOut chan<- ctrl.Message) *Client {
	c := &Client{cfg: cfg, store: store, snaps: snaps, logger: logger.Named("pollclient." + cfg.Alias), ctrlOut: ctrlOut}
	c.setState(StateDisconnected)
	return c
}

// Runner wraps this client's connect loop as a start/stop task unit for
// the Supervisor's process table (spec §5 "Scheduling model").
func (c *Client) Runner() taskrunner.Runner {
	return taskrunner.New(c.start, c.stop)
}

func (c *Client) State() State { return c.state.Load().(State) }

func (c *Client) setState(s State) {
	c.state.Store(s)
	site, err := c.store.Read(c.cfg.SiteIndex)
	if err != nil {
		return
	}
	site.ConnectStatus = toConnectStatus(s)
	_ = c.store.Write(c.cfg.SiteIndex, site)
}

func toConnectStatus(s State) afdssa.ConnectStatus {
	switch s {
	case StateConnecting:
		return afdssa.StatusConnecting
	case StateConnEstablished, StateStreaming:
		return afdssa.StatusConnected
	case StateConnDefunct:
		return afdssa.StatusConnectionDefunct
	default:
		return afdssa.StatusDisconnected
	}
}

func (c *Client) getConn() net.Conn {
	if v := c.conn.Load(); v != nil {
		if conn, ok := v.(net.Conn); ok {
			return conn
		}
	}
	return nil
}

func (c *Client) setConn(conn net.Conn) { c.conn.Store(conn) }

// start is the Polling Client's connect loop (taskrunner.Func): it
// keeps running sessions, handling reconnect backoff, scheduled
// disconnect, and automatic failover, until ctx is cancelled.
func (c *Client) start(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		reason, err := c.runSession(ctx)
		if err != nil {
			c.setState(StateConnDefunct)
			toggle := c.fo.recordFailure(c.cfg, consecutiveFailuresForFlip(c.cfg))
			c.logger.Warn("connect failed", "error", err, "next_endpoint_toggle", toggle)
			if !sleepCtx(ctx, c.cfg.RetryInterval) {
				return nil
			}
			continue
		}

		c.fo.recordSuccess()

		switch reason {
		case ExitScheduledDisconnect:
			c.setState(StateDisconnected)
			if !sleepCtx(ctx, c.cfg.DisconnectTime) {
				return nil
			}
		case ExitShuttingDown:
			c.logger.Warn("========> REMOTE SHUTDOWN <========")
			c.setState(StateDisconnected)
			if !sleepCtx(ctx, c.cfg.RetryInterval) {
				return nil
			}
		case ExitCancelled:
			return nil
		case ExitError:
			// runSession pairs ExitError with a non-nil error in every
			// case, which the err branch above handles, so this arm does
			// not run. Unparseable lines are logged and never reset the
			// session, wherever in the session they arrive.
		}
	}
}

// stop attempts a graceful QUIT before the caller drops the socket
// (spec §4.3 "Cancellation", spec §5 "Cancellation").
func (c *Client) stop(ctx context.Context) error {
	conn := c.getConn()
	if conn != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_, _ = fmt.Fprint(conn, "QUIT\r\n")
		_ = conn.Close()
	}
	c.setState(StateDisconnected)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
