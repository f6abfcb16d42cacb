package pollclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/holger24/AFD-sub005/afdproto"
)

// runSession drives exactly one connect/stream/disconnect cycle (spec
// §4.3's diagram, "Connect" through "Streaming loop"). It returns how
// the session ended so start's backoff/reconnect logic can react.
func (c *Client) runSession(ctx context.Context) (ExitReason, error) {
	c.setState(StateConnecting)

	toggle := c.fo.toggle
	conn, err := dial(ctx, c.cfg, toggle)
	if err != nil {
		return ExitError, err
	}
	defer func() { _ = conn.Close() }()

	c.setConn(conn)
	defer c.setConn(nil)

	c.setState(StateConnEstablished)
	c.mu.Lock()
	c.sessionStart = time.Now()
	c.mu.Unlock()

	if err := sendLine(conn, "START_STAT"); err != nil {
		return ExitError, err
	}

	pending, err := c.readStartupBurst(conn)
	if err != nil {
		if errors.Is(err, errShutdownDuringHandshake) {
			return ExitShuttingDown, nil
		}
		return ExitError, err
	}

	c.setState(StateStreaming)
	return c.streamLoop(ctx, conn, pending)
}

func sendLine(conn net.Conn, cmd string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, err := fmt.Fprintf(conn, "%s\r\n", cmd)
	return err
}

// readStartupBurst consumes the multi-line reply to START_STAT: it
// begins "211-" and ends at a line whose first three bytes are digits
// and fourth is '-' (spec §4.3 "Session startup"). It frames messages
// the same way streamLoop does (afdproto.SplitMessages on a raw byte
// buffer), so a read that spans the startup burst and the first
// streaming message never loses bytes at the handshake boundary. Any
// bytes read past the terminator are returned as pending for the
// caller to hand to streamLoop.
func (c *Client) readStartupBurst(conn net.Conn) ([]byte, error) {
	_ = conn.SetReadDeadline(time.Now().Add(defaultConnectTimeout(c.cfg)))

	var pending []byte
	first := true
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil, err
		}
		pending = append(pending, buf[:n]...)

		msgs, rest := afdproto.SplitMessages(pending)
		pending = rest

		for i, m := range msgs {
			line := string(m)

			site, serr := c.store.Read(c.cfg.SiteIndex)
			if serr != nil {
				return nil, serr
			}
			u := afdproto.Parse(line)
			for _, w := range u.Warnings {
				c.logger.Warn("parse", "line", line, "note", w)
			}
			res := c.applyUpdate(&site, c.snaps, u, time.Now(), &c.firstLCSeen)
			_ = c.store.Write(c.cfg.SiteIndex, site)
			c.reactTo(res)

			if u.Kind == afdproto.KindShutdown {
				return nil, errShutdownDuringHandshake
			}
			// The opening "211-" line is itself shaped like a terminator;
			// only a later line closes the block (spec §4.3 "Session
			// startup").
			if !first && u.Kind == afdproto.KindNumericStatus && isMultilineTerminator(line) {
				return leftoverMessages(msgs[i+1:], pending), nil
			}
			first = false
		}
	}
}

// leftoverMessages re-frames messages split out of the same read as
// the startup terminator, so none of them are dropped when control
// passes to streamLoop.
func leftoverMessages(msgs [][]byte, tail []byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, m...)
		out = append(out, '\r', '\n')
	}
	return append(out, tail...)
}

// isMultilineTerminator reports whether line has the shape that ends a
// multi-line reply: three digits then '-'. The reply's opening line has
// the same shape, so readStartupBurst skips this check for the first
// line after START_STAT and only a later matching line ends the burst.
func isMultilineTerminator(line string) bool {
	if len(line) < 4 {
		return false
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return line[3] == '-'
}

// streamLoop is the STREAMING state: wait for inbound bytes with a
// poll-interval deadline, sending STAT on timeout, and watch for
// scheduled disconnect (spec §4.3 "Streaming loop", "Scheduled
// disconnect"). pending carries over any bytes readStartupBurst read
// past the handshake terminator.
func (c *Client) streamLoop(ctx context.Context, conn net.Conn, pending []byte) (ExitReason, error) {
	for {
		if ctx.Err() != nil {
			return ExitCancelled, nil
		}

		if c.scheduledDisconnectDue() {
			_ = sendLine(conn, "QUIT")
			return ExitScheduledDisconnect, nil
		}

		// Drain any already-buffered messages (e.g. leftover from the
		// startup burst) before blocking on the wire for more.
		msgs, rest := afdproto.SplitMessages(pending)
		pending = rest
		if len(msgs) == 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PollInterval))
			buf := make([]byte, 4096)
			n, err := conn.Read(buf)
			if err != nil {
				if isTimeout(err) {
					if err := sendLine(conn, "STAT"); err != nil {
						return ExitError, err
					}
					continue
				}
				return ExitError, err
			}
			pending = append(pending, buf[:n]...)
			continue
		}

		site, serr := c.store.Read(c.cfg.SiteIndex)
		if serr != nil {
			return ExitError, serr
		}
		site.LastDataTime = time.Now().Unix()

		for _, m := range msgs {
			line := string(m)
			u := afdproto.Parse(line)
			for _, w := range u.Warnings {
				c.logger.Warn("parse", "line", line, "note", w)
			}
			if u.Kind == afdproto.KindShutdown {
				_ = c.store.Write(c.cfg.SiteIndex, site)
				return ExitShuttingDown, nil
			}
			res := c.applyUpdate(&site, c.snaps, u, time.Now(), &c.firstLCSeen)
			c.reactTo(res)
		}

		if err := c.store.Write(c.cfg.SiteIndex, site); err != nil {
			return ExitError, err
		}
	}
}

func (c *Client) scheduledDisconnectDue() bool {
	if c.cfg.ConnectTime <= 0 || c.cfg.DisconnectTime <= 0 {
		return false
	}
	c.mu.Lock()
	start := c.sessionStart
	c.mu.Unlock()
	return time.Since(start) >= c.cfg.ConnectTime
}

func (c *Client) reactTo(res applyResult) {
	if res.gotFirstLC && c.ctrlOut != nil {
		select {
		case c.ctrlOut <- ctrlGotLC(c.cfg.SiteIndex, res.logCaps):
		default:
		}
	}
}

func isTimeout(err error) bool {
	type timeoutError interface{ Timeout() bool }
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
