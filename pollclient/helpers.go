package pollclient

import (
	"errors"
	"hash/crc32"

	"github.com/holger24/AFD-sub005/internal/bitflags"
	"github.com/holger24/AFD-sub005/internal/ctrl"
)

// errShutdownDuringHandshake is returned when the remote sends the
// shutdown literal before the startup burst has completed - an edge
// case spec §4.3 doesn't name explicitly, but its "Failure semantics"
// rule (shutdown string -> SHUTTING_DOWN exit) applies regardless of
// which state it arrives in.
var errShutdownDuringHandshake = errors.New("remote shut down during startup burst")

func ctrlGotLC(siteIndex int, caps uint64) ctrl.Message {
	return ctrl.Message{Op: ctrl.OpGotLC, SiteIndex: siteIndex, Capability: caps}
}

func crc32String(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

func bitflagsFromCaps(v uint64) bitflags.Set {
	return bitflags.FromUint64(v)
}

// retentionSeconds is the offset_time the Snapshot Manager's reshuffle
// uses to decide whether an old entry has aged out (spec §4.4
// "offset_time = max_log_files * switch_file_time, a configured
// retention"). Both factors are process-wide log-rotation settings this
// package doesn't own, so the supervisor resolves the product once and
// threads it through Config.
func (c *Client) retentionSeconds() int64 {
	return int64(c.cfg.RetentionSeconds)
}
