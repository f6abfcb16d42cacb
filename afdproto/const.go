// Package afdproto implements the client half of the remote status
// daemon's tag protocol (spec §4.1, §4.2, §6.1): a pure function from one
// framed protocol line to a typed Update, plus the message framer that
// splits a raw read buffer into complete lines. No I/O, no global state,
// no filesystem access - exactly the contract spec §4.1 requires so the
// parser can be exercised by "replay this byte sequence" property tests
// regardless of how the caller chunked its reads.
package afdproto

// Wire-format limits (spec §3.1, §4.1). STORAGE_TIME / ErrorHistoryLength
// / MaxLogHistory / LogFifoSize also size the corresponding SSA arrays
// (afdssa imports this package for that reason).
const (
	StorageTime        = 7   // top-N rolling maxima: today + six days back
	ErrorHistoryLength = 16  // EL tag: per-host error history slots
	MaxLogHistory      = 48  // RH/TH/SH tags: 48-hour severity history
	LogFifoSize        = 16  // SR tag: system-log radar fifo depth
	ColorPoolSize      = 8   // valid severity codes are 0..ColorPoolSize
	NoInformation      = 0xFF
	MaxVersionLength   = 40
	MaxPathLength      = 256
	MaxRecipientLength = 256
	MaxAliasLength     = 12
	MaxHostnameLength  = 70
	DataStepSize       = 10 // snapshot files grow/shrink in blocks of this many entries
)

// ShutdownLiteral is the line the remote sends to announce a graceful
// shutdown (spec §4.1 "shutdown string"). The exact upstream literal
// could not be recovered from original_source (filtered out of this
// retrieval pack - see SPEC_FULL.md §4); this is the value this client
// and a cooperating test-double server agree on.
const ShutdownLiteral = "500 AFD-sub005 is shutting down"
