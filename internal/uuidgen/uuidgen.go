// Package uuidgen mints the per-launch child task identifier recorded in
// a supervisor Process entry (spec §3.1) alongside the child's start
// time and restart counter, so log lines and the process table can refer
// to "this particular run" of a Polling Client or Log Forwarder even
// across a restart that reuses the same site alias.
package uuidgen

import "github.com/hashicorp/go-uuid"

// New returns a new random identifier string, or a zero-value fallback
// if the system entropy source is unavailable - a child identifier is
// informational, not load-bearing, so this never fails task startup.
func New() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "00000000-0000-0000-0000-000000000000"
	}
	return id
}
