// Package afdssa implements the Shared Status Area: the typed,
// fixed-layout, memory-mapped region holding one record per monitored
// site, plus the invariants and reshuffle procedure spec §3 and §4.4
// define for it.
//
// A Store (see store.go) owns the mmap'd backing file; Site is the
// convenient in-memory shape callers (the Polling Client, the
// Aggregator, the Supervisor for group rows) read and mutate before
// writing back through the Store, which does the marshal/unmarshal and
// bumps the per-record sequence number so external readers can detect a
// torn read (spec §5, §9 "per-record sequence number").
package afdssa

import (
	"time"

	"github.com/holger24/AFD-sub005/afdproto"
	"github.com/holger24/AFD-sub005/internal/bitflags"
)

// ConnectStatus codes (spec §3.1 "numeric connect-status code").
type ConnectStatus int32

const (
	StatusDisconnected ConnectStatus = iota
	StatusConnecting
	StatusConnected
	StatusConnectionDefunct
	StatusDisabled
	StatusShuttingDown
)

// Switching mode for the failover toggle (spec §3.1 "afd_switching").
type Switching int32

const (
	SwitchNone Switching = iota
	SwitchAuto
	SwitchUser
)

// special_flag bits (spec §3.1).
const (
	FlagCountersInitialized uint32 = 1 << iota
)

// CounterRing is the six-slot family described in spec §3.2 invariant 2:
// slot 0 is the monotonically growing current counter; slots 1..5 hold
// the value slot 0 had at the start of the current hour/day/week/month/
// year, so a delta is slot0-slot[n].
type CounterRing [6]uint64

// Ring slot indices.
const (
	SlotCurrent = 0
	SlotHour    = 1
	SlotDay     = 2
	SlotWeek    = 3
	SlotMonth   = 4
	SlotYear    = 5
)

// TopN is the STORAGE_TIME-slot rolling maximum kept for one metric
// (spec §3.1 "rolling maxima").
type TopN struct {
	Value [afdproto.StorageTime]uint64
	Time  [afdproto.StorageTime]int64 // unix seconds, slot 0 cleared on rotation
}

// LogHistory48 is one of the three 48-hour per-hour severity histories
// (spec §3.1 "three 48-hour history arrays").
type LogHistory48 struct {
	Bytes         [afdproto.MaxLogHistory]byte
	ShiftDone     bool  // set by the first ShiftHourly shift and never cleared
	LastShiftHour int64 // unix hour bucket of the last applied shift
}

// Site is the in-memory shape of one SSA record (spec §3.1 "Site
// record"). Exactly one Polling Client writes the fields it owns; the
// Aggregator owns CounterRing slots 1..5 and the TopN arrays; the
// Supervisor owns group-aggregate rows (spec §3.2 invariant 1).
type Site struct {
	// identity
	Alias            string
	Host1, Host2     string
	Port1, Port2     int
	RemoteCommand    string // empty => this is a group-aggregate row
	RemoteVersion    string
	RemoteWorkDir    string

	// live status
	ConnectStatus    ConnectStatus
	RemoteAMG        bool
	RemoteFD         bool
	RemoteArchiveWatch bool
	FilesPending     uint64
	BytesPending     uint64
	TransferRate     uint64
	FileRate         uint64
	ErrorCounter     uint64
	QueueDepth       uint64
	ActiveTransfers  uint64
	HostErrorCount   uint64
	MaxConnections   int64
	DangerNoOfJobs   int64
	NoOfHosts        int
	NoOfDirs         int
	NoOfJobs         int

	// rolling maxima
	TopTransferRate  TopN
	TopFileRate      TopN
	TopTransfers     TopN

	// counters ring
	FilesSend          CounterRing
	BytesSend          CounterRing
	FilesReceived      CounterRing
	BytesReceived      CounterRing
	Connections        CounterRing
	TotalErrors        CounterRing
	LogBytesReceived   CounterRing

	// log fifo + history
	LogFifo        [afdproto.LogFifoSize]byte
	LogFifoCount   uint64
	ReceiveHistory LogHistory48
	TransferHistory LogHistory48
	SystemHistory  LogHistory48

	// timing
	PollInterval   time.Duration
	ConnectTime    time.Duration
	DisconnectTime time.Duration
	LastDataTime   int64 // unix seconds

	// failover
	AfdSwitching Switching
	AfdToggle    int

	// flags
	Options      bitflags.Set
	Capabilities bitflags.Set
	SpecialFlag  uint32

	// runtime-only book-keeping not part of the spec record but useful
	// to readers: monotonically incremented on every Store.Write so
	// external readers can tell that a record changed between two
	// samples. It does not mark a write that is still in progress.
	SeqNo uint64
}

// IsGroup reports whether this row is a group-aggregate row (spec §3.2
// invariant 6, §9 "Cyclic group row").
func (s *Site) IsGroup() bool {
	return s.RemoteCommand == ""
}

// CountersInitialized reports whether the baseline seeding of spec §3.2
// invariant 2 has happened for this site yet.
func (s *Site) CountersInitialized() bool {
	return s.SpecialFlag&FlagCountersInitialized != 0
}

func (s *Site) SetCountersInitialized() {
	s.SpecialFlag |= FlagCountersInitialized
}
