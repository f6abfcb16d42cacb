package afdproto

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse turns one already-framed protocol line (no trailing CRLF/NUL -
// SplitMessages has already stripped it) into an Update.
//
// Per spec §4.1: this never allocates persistent memory and never
// touches the filesystem. Any missing trailing field is "not present",
// not an error - it is simply absent from the returned Update. Only a
// present-but-unparsable field produces a Warning (spec §7 "Field
// overflow" / "Protocol garbage").
func Parse(line string) Update {
	if line == ShutdownLiteral {
		return Update{Kind: KindShutdown}
	}

	if isNumericStatus(line) {
		n, _ := strconv.Atoi(line[:3])
		return Update{Kind: KindNumericStatus, NumericStatus: n}
	}

	if len(line) < 2 {
		return Update{Kind: KindUnknown, Warnings: []string{"line too short: " + line}}
	}

	tag := line[:2]
	payload := ""
	if len(line) > 3 && line[2] == ' ' {
		payload = line[3:]
	} else if len(line) > 2 {
		payload = strings.TrimPrefix(line[2:], " ")
	}

	switch tag {
	case "IS":
		return parseIS(payload)
	case "NH":
		return parseSingleCount(KindNewHostCount, payload)
	case "ND":
		return parseSingleCount(KindNewDirCount, payload)
	case "NJ":
		return parseSingleCount(KindNewJobCount, payload)
	case "MC":
		return parseSingleInt(KindMaxConnections, payload)
	case "AM":
		return parseSingleInt(KindRemoteAMG, payload)
	case "FD":
		return parseSingleInt(KindRemoteFD, payload)
	case "AW":
		return parseSingleInt(KindRemoteArchiveWatch, payload)
	case "DJ":
		return parseSingleInt(KindDangerJobs, payload)
	case "AV":
		return parseString(KindRemoteVersion, payload, MaxVersionLength)
	case "WD":
		return parseString(KindRemoteWorkDir, payload, MaxPathLength)
	case "LC":
		return parseLC(payload)
	case "TD":
		return parseTD(payload)
	case "HL":
		return parseHL(payload)
	case "DL":
		return parseDL(payload)
	case "JL":
		return parseJL(payload, false)
	case "Jl":
		return parseJL(payload, true)
	case "EL":
		return parseEL(payload)
	case "RH":
		return parseLogHistory(KindLogHistoryReceive, payload)
	case "TH":
		return parseLogHistory(KindLogHistoryTransfer, payload)
	case "SH":
		return parseLogHistory(KindLogHistorySystem, payload)
	case "SR":
		return parseSR(payload)
	default:
		return Update{Kind: KindUnknown, Warnings: []string{"unrecognized tag: " + tag}}
	}
}

func isNumericStatus(line string) bool {
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

func fields(payload string) []string {
	return strings.Fields(payload)
}

func parseUint(s string) (uint64, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

func parseInt64(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func parseHexUint32(s string) (uint32, bool) {
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err == nil
}

func parseIS(payload string) Update {
	f := fields(payload)
	if len(f) < 8 {
		return Update{Kind: KindUnknown, Warnings: []string{"IS: expected at least 8 fields, got " + strconv.Itoa(len(f))}}
	}

	is := &IntervalSummary{}
	var warn []string
	var ok bool

	vals := make([]uint64, 8)
	for i := 0; i < 8; i++ {
		if vals[i], ok = parseUint(f[i]); !ok {
			warn = append(warn, fmt.Sprintf("IS: field %d not an unsigned integer: %q", i, f[i]))
		}
	}
	is.FC, is.FS, is.TR, is.FR = vals[0], vals[1], vals[2], vals[3]
	is.EC, is.HostErrorCounter, is.NoOfTransfers, is.JobsInQueue = vals[4], vals[5], vals[6], vals[7]

	if len(f) >= 14 {
		cvals := make([]uint64, 6)
		for i := 0; i < 6; i++ {
			if cvals[i], ok = parseUint(f[8+i]); !ok {
				warn = append(warn, fmt.Sprintf("IS: counter field %d not an unsigned integer: %q", i, f[8+i]))
			}
		}
		is.FilesSend, is.BytesSend = cvals[0], cvals[1]
		is.Connections, is.TotalErrors = cvals[2], cvals[3]
		is.FilesReceived, is.BytesReceived = cvals[4], cvals[5]
		is.HasCounters = true
	}

	return Update{Kind: KindIntervalSummary, IS: is, Warnings: warn}
}

func parseSingleCount(kind Kind, payload string) Update {
	f := fields(payload)
	if len(f) < 1 {
		return Update{Kind: KindUnknown, Warnings: []string{kind.String() + ": missing count"}}
	}
	v, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{kind.String() + ": not an integer: " + f[0]}}
	}
	return Update{Kind: kind, NewCount: v}
}

func parseSingleInt(kind Kind, payload string) Update {
	f := fields(payload)
	if len(f) < 1 {
		return Update{Kind: KindUnknown, Warnings: []string{kind.String() + ": missing value"}}
	}
	v, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{kind.String() + ": not an integer: " + f[0]}}
	}
	return Update{Kind: kind, SingleInt: v}
}

func parseString(kind Kind, payload string, max int) Update {
	s := strings.TrimSpace(payload)
	var warn []string
	if len(s) > max {
		warn = append(warn, fmt.Sprintf("%s: value truncated from %d to %d bytes", kind, len(s), max))
		s = s[:max]
	}
	return Update{Kind: kind, Str: s, Warnings: warn}
}

func parseLC(payload string) Update {
	f := fields(payload)
	if len(f) < 1 {
		return Update{Kind: KindUnknown, Warnings: []string{"LC: missing bitmask"}}
	}
	v, ok := parseUint(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"LC: not an integer: " + f[0]}}
	}
	return Update{Kind: KindLogCapabilities, LogCaps: v}
}

func parseTD(payload string) Update {
	f := fields(payload)
	out := make([]int64, 0, len(f))
	var warn []string
	for i, s := range f {
		if i >= 16 {
			warn = append(warn, "TD: more than 16 values, extra ignored")
			break
		}
		v, ok := parseInt64(s)
		if !ok {
			warn = append(warn, "TD: field not an integer: "+s)
			continue
		}
		out = append(out, v)
	}
	return Update{Kind: KindTypesize, Typesize: out, Warnings: warn}
}

func parseHL(payload string) Update {
	f := fields(payload)
	if len(f) < 2 {
		return Update{Kind: KindUnknown, Warnings: []string{"HL: expected at least pos and alias"}}
	}
	pos, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"HL: pos not an integer: " + f[0]}}
	}
	e := &HostListEntry{Pos: int(pos), Alias: f[1]}
	if len(f) >= 3 {
		e.Real1 = f[2]
	} else {
		e.IsGroup = true
	}
	if len(f) >= 4 {
		e.Real2 = f[3]
	}
	return Update{Kind: KindHostList, Host: e}
}

func parseDL(payload string) Update {
	f := fields(payload)
	if len(f) < 4 {
		return Update{Kind: KindUnknown, Warnings: []string{"DL: expected at least pos, dir_id, alias, name"}}
	}

	pos, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"DL: pos not an integer: " + f[0]}}
	}
	id, ok := parseHexUint32(f[1])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"DL: dir_id not hex: " + f[1]}}
	}

	e := &DirListEntry{Pos: int(pos), DirID: id, Alias: f[2], Name: f[3]}
	var warn []string

	if len(f) >= 5 {
		e.OrigName = f[4]
		e.HasOrig = true
	}
	if len(f) >= 7 {
		e.HomeUser = f[5]
		if hl, ok := parseHexUint32(f[6]); ok {
			e.HomeLen = hl
			e.HasUser = true
		} else {
			warn = append(warn, "DL: home_len not hex: "+f[6])
		}
	}

	return Update{Kind: KindDirList, Dir: e, Warnings: warn}
}

func parseJL(payload string, blurred bool) Update {
	f := strings.SplitN(strings.TrimSpace(payload), " ", 6)
	if len(f) < 5 {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: expected at least 5 fields"}}
	}

	pos, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: pos not an integer: " + f[0]}}
	}
	jobID, ok := parseHexUint32(f[1])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: job_id not hex: " + f[1]}}
	}
	dirID, ok := parseHexUint32(f[2])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: dir_id not hex: " + f[2]}}
	}
	noOpts, ok := parseHexUint32(f[3])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: no_loptions not hex: " + f[3]}}
	}
	if len(f[4]) < 1 {
		return Update{Kind: KindUnknown, Warnings: []string{"JL: missing priority"}}
	}

	e := &JobListEntry{
		Pos:        int(pos),
		JobID:      jobID,
		DirID:      dirID,
		NoOptions:  noOpts,
		Priority:   f[4][0],
		WasBlurred: blurred,
	}

	var warn []string
	if len(f) >= 6 {
		recipient := f[5]
		if blurred {
			recipient = Unblur(recipient)
		}
		if len(recipient) > MaxRecipientLength {
			warn = append(warn, fmt.Sprintf("JL: recipient truncated from %d to %d bytes", len(recipient), MaxRecipientLength))
			recipient = recipient[:MaxRecipientLength]
		}
		e.Recipient = recipient
	}

	return Update{Kind: KindJobList, Job: e, Warnings: warn}
}

func parseEL(payload string) Update {
	f := fields(payload)
	if len(f) < 1 {
		return Update{Kind: KindUnknown, Warnings: []string{"EL: missing host_pos"}}
	}
	pos, ok := parseInt64(f[0])
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"EL: host_pos not an integer: " + f[0]}}
	}

	e := &ErrorHistory{HostPos: int(pos)}
	var warn []string
	n := len(f) - 1
	if n > ErrorHistoryLength {
		n = ErrorHistoryLength
	}
	for i := 0; i < n; i++ {
		v, ok := parseUint(f[1+i])
		if !ok {
			warn = append(warn, "EL: history value not an integer: "+f[1+i])
			continue
		}
		e.History[i] = uint32(v)
	}
	// Tail (from n to ErrorHistoryLength-1) stays zero-valued - the
	// array was already zero-initialized above, which is the "clearly
	// intended semantics" spec §9's open question asks implementers to
	// supply instead of guessing at the source's index bug.

	return Update{Kind: KindErrorHistory, ErrHist: e, Warnings: warn}
}

// decodeSeverityBytes decodes the RH/TH/SH/SR wire encoding: each
// severity is transmitted as the printable byte (severity + ' '), so
// that the whole history can ride inside a text line without control
// characters. Bytes decoding to a value above ColorPoolSize are
// replaced with NoInformation (spec §4.1 "Unknown severity bytes").
func decodeSeverityBytes(raw string, max int) ([]byte, bool) {
	n := len(raw)
	if n > max {
		n = max
	}
	out := make([]byte, n)
	sawInvalid := false
	for i := 0; i < n; i++ {
		v := int(raw[i]) - ' '
		if v < 0 || v > ColorPoolSize {
			out[i] = NoInformation
			sawInvalid = true
		} else {
			out[i] = byte(v)
		}
	}
	return out, sawInvalid
}

func parseLogHistory(kind Kind, payload string) Update {
	bytes, invalid := decodeSeverityBytes(payload, MaxLogHistory)
	var warn []string
	if invalid {
		warn = append(warn, kind.String()+": unknown severity byte(s) replaced with NO_INFORMATION")
	}
	return Update{Kind: kind, LogHist: &LogHistory{Bytes: bytes}, Warnings: warn}
}

func parseSR(payload string) Update {
	idx := strings.IndexByte(payload, ' ')
	var counterStr, rest string
	if idx < 0 {
		counterStr, rest = payload, ""
	} else {
		counterStr, rest = payload[:idx], payload[idx+1:]
	}

	counter, ok := parseUint(counterStr)
	if !ok {
		return Update{Kind: KindUnknown, Warnings: []string{"SR: entry counter not an integer: " + counterStr}}
	}

	bytes, invalid := decodeSeverityBytes(rest, LogFifoSize)
	var warn []string
	if invalid {
		warn = append(warn, "SR: unknown severity byte(s) replaced with NO_INFORMATION")
	}

	return Update{Kind: KindSystemRadar, Radar: &RadarFifo{EntryCounter: counter, Bytes: bytes}, Warnings: warn}
}
