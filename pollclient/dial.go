package pollclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// dial opens the TCP (optionally TLS-wrapped) connection to the
// currently-toggled endpoint (spec §4.3 "Connect"). The spec's
// Non-goals rule out a full TLS stack beyond "opens a TCP or TLS
// socket"; InsecureSkipVerify mirrors StrictHostKey the way a minimal
// enable-TLS bool would, without the teacher's full cipher/curve
// enumeration package (see DESIGN.md).
func dial(ctx context.Context, cfg Config, toggle int) (net.Conn, error) {
	host, port := cfg.endpoint(toggle)
	addr := fmt.Sprintf("%s:%d", host, port)

	d := net.Dialer{Timeout: defaultConnectTimeout(cfg)}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if !cfg.TLSEnabled {
		return conn, nil
	}

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: !cfg.StrictHostKey,
		MinVersion:         tls.VersionTLS12,
	})
	hctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout(cfg))
	defer cancel()
	if err := tlsConn.HandshakeContext(hctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// failoverState tracks the per-site toggle and consecutive-failure
// count an AUTO-switching site needs (spec §4.3 "Automatic failover",
// spec §8 property 5 "Failover fairness").
type failoverState struct {
	toggle       int
	failureCount int
}

// recordFailure reports a failed connect attempt; it returns the
// toggle to use on the *next* attempt. USER and NONE switching never
// flip automatically - USER leaves the decision to a control-channel
// command this package doesn't originate, NONE never switches at all.
func (f *failoverState) recordFailure(cfg Config, consecutiveForFlip int) int {
	f.failureCount++
	if cfg.Switching == SwitchAuto && f.failureCount >= consecutiveForFlip {
		f.toggle = 1 - f.toggle
		f.failureCount = 0
	}
	return f.toggle
}

// recordSuccess resets the failure counter (spec §8 property 5
// "connection success resets the failure counter"). The toggle itself
// is left as-is - a successful connect doesn't flip back.
func (f *failoverState) recordSuccess() {
	f.failureCount = 0
}

// consecutiveFailuresForFlip turns the configured RetryInterval and
// poll interval into a failure count: spec §4.3 says the flip happens
// after "RETRY_INTERVAL worth of consecutive connect failures". The
// count is RetryInterval divided by PollInterval, at least 1.
// Client.start sleeps a full RetryInterval after each failed attempt,
// so the flip comes after n attempts spread over n*RetryInterval.
func consecutiveFailuresForFlip(cfg Config) int {
	if cfg.PollInterval <= 0 {
		return 1
	}
	n := int(cfg.RetryInterval / cfg.PollInterval)
	if n < 1 {
		return 1
	}
	return n
}
