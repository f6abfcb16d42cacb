package afdssa

import (
	"github.com/holger24/AFD-sub005/afdproto"
)

// ShiftHourly rolls the 48-hour severity history forward by one slot and
// records severity at slot 0 (spec §3.1 "three 48-hour history arrays",
// spec §8 property "log history hourly shift": a shift happens at most
// once per hour no matter how many log lines arrive in that hour, and
// a quiet hour still shifts in a NoInformation placeholder).
//
// nowHour is the caller's HourBucket(time.Now()) value; a later call
// with the same nowHour does not shift again, it only overwrites slot 0
// with the new severity, which is what makes it safe to call
// unconditionally on every received log line.
func (h *LogHistory48) ShiftHourly(nowHour int64, severity byte) {
	if h.LastShiftHour == nowHour {
		h.Bytes[0] = severity
		return
	}
	copy(h.Bytes[1:], h.Bytes[:len(h.Bytes)-1])
	h.Bytes[0] = severity
	h.LastShiftHour = nowHour
	h.ShiftDone = true
}

// AdvanceQuietHours is called once per tick by the Aggregator for sites
// that received no log line in the current hour: it fills each skipped
// hour with NoInformation so the history does not silently compress a
// gap of inactivity into a single shift (spec §3.1, §8 "hourly shift").
func (h *LogHistory48) AdvanceQuietHours(nowHour int64) {
	if h.LastShiftHour == 0 || nowHour <= h.LastShiftHour {
		h.LastShiftHour = nowHour
		return
	}
	// nowHour/LastShiftHour are HourBucket values (Unix seconds truncated
	// to the hour), not hour counts, so the raw difference must be
	// converted to whole hours before it drives the shift loop.
	gap := (nowHour - h.LastShiftHour) / 3600
	if gap <= 0 {
		h.LastShiftHour = nowHour
		return
	}
	if gap > int64(afdproto.MaxLogHistory) {
		gap = int64(afdproto.MaxLogHistory)
	}
	for i := int64(0); i < gap; i++ {
		copy(h.Bytes[1:], h.Bytes[:len(h.Bytes)-1])
		h.Bytes[0] = afdproto.NoInformation
	}
	h.LastShiftHour = nowHour
}

// AppendFifo pushes one radar byte into the system-log fifo (spec §3.1
// "SR tag: system-log radar fifo"), dropping the oldest entry once full.
func (s *Site) AppendFifo(b byte) {
	n := len(s.LogFifo)
	copy(s.LogFifo[:n-1], s.LogFifo[1:])
	s.LogFifo[n-1] = b
	s.LogFifoCount++
}
