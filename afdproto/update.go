package afdproto

// Kind identifies which of the spec §4.1 tags an Update carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindIntervalSummary
	KindNewHostCount
	KindNewDirCount
	KindNewJobCount
	KindMaxConnections
	KindRemoteAMG
	KindRemoteFD
	KindRemoteArchiveWatch
	KindDangerJobs
	KindRemoteVersion
	KindRemoteWorkDir
	KindLogCapabilities
	KindTypesize
	KindHostList
	KindDirList
	KindJobList
	KindErrorHistory
	KindLogHistoryReceive
	KindLogHistoryTransfer
	KindLogHistorySystem
	KindSystemRadar
	KindNumericStatus
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindIntervalSummary:
		return "IS"
	case KindNewHostCount:
		return "NH"
	case KindNewDirCount:
		return "ND"
	case KindNewJobCount:
		return "NJ"
	case KindMaxConnections:
		return "MC"
	case KindRemoteAMG:
		return "AM"
	case KindRemoteFD:
		return "FD"
	case KindRemoteArchiveWatch:
		return "AW"
	case KindDangerJobs:
		return "DJ"
	case KindRemoteVersion:
		return "AV"
	case KindRemoteWorkDir:
		return "WD"
	case KindLogCapabilities:
		return "LC"
	case KindTypesize:
		return "TD"
	case KindHostList:
		return "HL"
	case KindDirList:
		return "DL"
	case KindJobList:
		return "JL"
	case KindErrorHistory:
		return "EL"
	case KindLogHistoryReceive:
		return "RH"
	case KindLogHistoryTransfer:
		return "TH"
	case KindLogHistorySystem:
		return "SH"
	case KindSystemRadar:
		return "SR"
	case KindNumericStatus:
		return "numeric"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// IntervalSummary is the IS tag payload. The trailing six counter fields
// are optional (a short IS line only reports the eight leading fields);
// HasCounters reports whether they were present.
type IntervalSummary struct {
	FC                uint64
	FS                uint64
	TR                uint64
	FR                uint64
	EC                uint64
	HostErrorCounter  uint64
	NoOfTransfers     uint64
	JobsInQueue       uint64
	HasCounters       bool
	FilesSend         uint64
	BytesSend         uint64
	Connections       uint64
	TotalErrors       uint64
	FilesReceived     uint64
	BytesReceived     uint64
}

// HostListEntry is one HL tag: a row written into the host-list snapshot
// being built (spec §4.1, §4.4). IsGroup is set when Real1 was omitted.
type HostListEntry struct {
	Pos     int
	Alias   string
	Real1   string
	Real2   string
	IsGroup bool
}

// DirListEntry is one DL tag.
type DirListEntry struct {
	Pos      int
	DirID    uint32
	Alias    string
	Name     string
	OrigName string
	HomeUser string
	HomeLen  uint32
	HasOrig  bool
	HasUser  bool
}

// JobListEntry is one JL/Jl tag. Recipient has already been
// de-obfuscated (spec §4.2) if the tag was the lowercase variant.
type JobListEntry struct {
	Pos       int
	JobID     uint32
	DirID     uint32
	NoOptions uint32
	Priority  byte
	Recipient string
	WasBlurred bool
}

// ErrorHistory is the EL tag: a full ErrorHistoryLength-slot array, with
// any unreported tail already zero-filled (spec §4.1, and the resolved
// "intended semantics" of the open question about the tail zero-fill).
type ErrorHistory struct {
	HostPos int
	History [ErrorHistoryLength]uint32
}

// LogHistory is the payload shared by RH/TH/SH: up to MaxLogHistory
// severity bytes, each already range-checked and replaced with
// NoInformation if out of range.
type LogHistory struct {
	Bytes []byte // len <= MaxLogHistory
}

// RadarFifo is the SR tag payload.
type RadarFifo struct {
	EntryCounter uint64
	Bytes        []byte // len <= LogFifoSize
}

// Update is the parser's single output type: exactly one payload field
// is populated, selected by Kind. A zero-value Update with Kind ==
// KindUnknown signals protocol garbage (spec §7 "Protocol garbage").
type Update struct {
	Kind Kind

	IS            *IntervalSummary
	NewCount      int64 // NH/ND/NJ
	SingleInt     int64 // MC/AM/FD/AW/DJ
	Str           string // AV/WD
	LogCaps       uint64
	Typesize      []int64 // up to 16
	Host          *HostListEntry
	Dir           *DirListEntry
	Job           *JobListEntry
	ErrHist       *ErrorHistory
	LogHist       *LogHistory
	Radar         *RadarFifo
	NumericStatus int

	// Warnings carries non-fatal parse notes (field overflow, unknown
	// severity byte) the caller should log once per tag (spec §4.1,
	// §7 "Field overflow").
	Warnings []string
}
