// Package pollclient implements the per-site Polling Client: the
// bounded TCP dialogue with one remote status daemon, streaming tagged
// records through afdproto, applying them to the site's afdssa.Store
// record, and reconciling host/dir/job snapshots (spec §4.3).
package pollclient

import (
	"time"

	"github.com/holger24/AFD-sub005/internal/bitflags"
)

// Switching mirrors afdssa.Switching; kept as its own type so this
// package doesn't need afdssa for anything but the Store it writes
// into.
type Switching int

const (
	SwitchNone Switching = iota
	SwitchAuto
	SwitchUser
)

// Config is everything about one site a Polling Client needs, read
// once from the supervisor's parsed configuration (spec §6.4 "the
// readable text configuration listing alias, endpoints, command,
// interval, connect_time, disconnect_time, options for each site").
type Config struct {
	Alias string

	Host1 string
	Port1 int
	Host2 string
	Port2 int

	// RemoteCommand is empty for a group row; a group row never gets a
	// Polling Client (spec §3.2 invariant 6), so Config for a real site
	// always carries a non-empty value here.
	RemoteCommand string

	PollInterval   time.Duration
	ConnectTime    time.Duration // 0 disables scheduled disconnect
	DisconnectTime time.Duration
	ConnectTimeout time.Duration // spec §5 "tcp_timeout", default 120s

	TLSEnabled    bool
	StrictHostKey bool
	Options       bitflags.Set

	Switching Switching

	// RetryInterval bounds both the reconnect backoff after a transient
	// failure (spec §7) and the number of consecutive failures on one
	// endpoint before an AUTO-switching site flips its toggle (spec §4.3
	// "Automatic failover").
	RetryInterval time.Duration

	// RetentionSeconds is offset_time for this site's dir/job reshuffle
	// (spec §4.4 "offset_time = max_log_files * switch_file_time"),
	// resolved once by the supervisor from the process-wide log
	// rotation settings.
	RetentionSeconds int64

	SiteIndex int
}

func (c Config) endpoint(toggle int) (host string, port int) {
	if toggle == 0 {
		return c.Host1, c.Port1
	}
	return c.Host2, c.Port2
}

func defaultConnectTimeout(c Config) time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return 120 * time.Second
}
