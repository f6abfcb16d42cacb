package aggregator

import (
	"time"

	"github.com/holger24/AFD-sub005/afdssa"
)

// RunHourlyPass computes the hour delta for every site on every pass,
// plus the day/week/month/year delta for whichever of those boundaries
// was actually crossed (spec §4.5 second bullet: "for slot_type in
// {hour, day, week, month, year}, compute delta = slot0 -
// slot[slot_type]"), logs a one-line summary per site and slot_type
// plus a totals line per slot_type, and rebaselines the boundaries
// that were crossed. prev and cur are UTC hour buckets; the boundary
// comparisons spec §4.5 describes ("calendar week/month/year of the
// new hour differs from the stored one") are evaluated between them.
func (a *Aggregator) RunHourlyPass(prev, cur time.Time) error {
	dayChanged := prev.YearDay() != cur.YearDay() || prev.Year() != cur.Year()
	_, prevWeek := prev.ISOWeek()
	_, curWeek := cur.ISOWeek()
	weekChanged := prevWeek != curWeek || prev.Year() != cur.Year()
	monthChanged := prev.Month() != cur.Month() || prev.Year() != cur.Year()
	yearChanged := prev.Year() != cur.Year()

	bounds := boundaries{dayChanged, weekChanged, monthChanged, yearChanged}

	hdr := a.store.Header()
	total := int(hdr.NoOfSites)

	var hourTotals, dayTotals, weekTotals, monthTotals, yearTotals siteTotals

	for i := 0; i < total; i++ {
		site, err := a.store.Read(i)
		if err != nil {
			return err
		}

		r := a.rollSite(&site, bounds)
		hourTotals.add(r.hour)

		a.logSite(site.Alias, "hour", r.hour)
		if bounds.day {
			dayTotals.add(r.day)
			a.logSite(site.Alias, "day", r.day)
		}
		if bounds.week {
			weekTotals.add(r.week)
			a.logSite(site.Alias, "week", r.week)
		}
		if bounds.month {
			monthTotals.add(r.month)
			a.logSite(site.Alias, "month", r.month)
		}
		if bounds.year {
			yearTotals.add(r.year)
			a.logSite(site.Alias, "year", r.year)
		}

		if err := a.store.Write(i, site); err != nil {
			return err
		}
	}

	a.logTotals(total, "hour", hourTotals)
	if bounds.day {
		a.logTotals(total, "day", dayTotals)
	}
	if bounds.week {
		a.logTotals(total, "week", weekTotals)
	}
	if bounds.month {
		a.logTotals(total, "month", monthTotals)
	}
	if bounds.year {
		a.logTotals(total, "year", yearTotals)
	}

	return nil
}

func (a *Aggregator) logSite(alias, slotType string, s siteTotals) {
	a.logger.Info("rollover",
		"site", alias,
		"slot_type", slotType,
		"files_send_delta", s.filesSend,
		"bytes_send_delta", s.bytesSend,
		"files_recv_delta", s.filesRecv,
		"bytes_recv_delta", s.bytesRecv,
		"connections_delta", s.connections,
		"errors_delta", s.errors,
	)
}

func (a *Aggregator) logTotals(sites int, slotType string, s siteTotals) {
	a.logger.Info("rollover totals",
		"sites", sites,
		"slot_type", slotType,
		"files_send_delta", s.filesSend,
		"bytes_send_delta", s.bytesSend,
		"files_recv_delta", s.filesRecv,
		"bytes_recv_delta", s.bytesRecv,
		"connections_delta", s.connections,
		"errors_delta", s.errors,
	)
}

type boundaries struct {
	day, week, month, year bool
}

type siteTotals struct {
	filesSend, bytesSend, filesRecv, bytesRecv, connections, errors uint64
}

func (t *siteTotals) add(s siteTotals) {
	t.filesSend += s.filesSend
	t.bytesSend += s.bytesSend
	t.filesRecv += s.filesRecv
	t.bytesRecv += s.bytesRecv
	t.connections += s.connections
	t.errors += s.errors
}

// rollup holds the hour delta (always populated) and the day/week/
// month/year delta (populated only when that boundary was crossed
// this pass, per the boundaries passed to rollSite).
type rollup struct {
	hour, day, week, month, year siteTotals
}

// rollSite computes this site's hour delta for every counter ring,
// plus the day/week/month/year delta for any boundary crossed this
// pass, rebaselines the hour slot unconditionally and the other slots
// that were crossed, and rotates the top-N arrays at day boundary
// (spec §4.5 second bullet, third sentence).
func (a *Aggregator) rollSite(site *afdssa.Site, b boundaries) rollup {
	var r rollup

	r.hour.filesSend, r.day.filesSend, r.week.filesSend, r.month.filesSend, r.year.filesSend =
		a.deltaAndRebaseline(site.Alias, "files_send", &site.FilesSend, b)
	r.hour.bytesSend, r.day.bytesSend, r.week.bytesSend, r.month.bytesSend, r.year.bytesSend =
		a.deltaAndRebaseline(site.Alias, "bytes_send", &site.BytesSend, b)
	r.hour.filesRecv, r.day.filesRecv, r.week.filesRecv, r.month.filesRecv, r.year.filesRecv =
		a.deltaAndRebaseline(site.Alias, "files_received", &site.FilesReceived, b)
	r.hour.bytesRecv, r.day.bytesRecv, r.week.bytesRecv, r.month.bytesRecv, r.year.bytesRecv =
		a.deltaAndRebaseline(site.Alias, "bytes_received", &site.BytesReceived, b)
	r.hour.connections, r.day.connections, r.week.connections, r.month.connections, r.year.connections =
		a.deltaAndRebaseline(site.Alias, "connections", &site.Connections, b)
	r.hour.errors, r.day.errors, r.week.errors, r.month.errors, r.year.errors =
		a.deltaAndRebaseline(site.Alias, "total_errors", &site.TotalErrors, b)
	a.deltaAndRebaseline(site.Alias, "log_bytes_received", &site.LogBytesReceived, b)

	if b.day {
		site.TopTransferRate.RotateMidnight()
		site.TopFileRate.RotateMidnight()
		site.TopTransfers.RotateMidnight()
	}

	return r
}

// deltaAndRebaseline reports this ring's hour delta, plus its day/
// week/month/year delta whenever that boundary was crossed this pass
// (zero otherwise), each measured against the ring's own stored
// baseline before that baseline is advanced (spec §4.5 "If slot0 <
// slot[slot_type] the delta is treated as zero and a 'counter
// overflowed' warning is emitted"), then rebaselines the hour slot plus
// every other boundary that was crossed.
func (a *Aggregator) deltaAndRebaseline(alias, metric string, ring *afdssa.CounterRing, b boundaries) (hour, day, week, month, year uint64) {
	if ring[afdssa.SlotCurrent] < ring[afdssa.SlotHour] ||
		(b.day && ring[afdssa.SlotCurrent] < ring[afdssa.SlotDay]) ||
		(b.week && ring[afdssa.SlotCurrent] < ring[afdssa.SlotWeek]) ||
		(b.month && ring[afdssa.SlotCurrent] < ring[afdssa.SlotMonth]) ||
		(b.year && ring[afdssa.SlotCurrent] < ring[afdssa.SlotYear]) {
		a.logger.Warn("counter overflowed", "site", alias, "metric", metric)
	}
	hour = ring.Delta(afdssa.SlotHour)
	if b.day {
		day = ring.Delta(afdssa.SlotDay)
	}
	if b.week {
		week = ring.Delta(afdssa.SlotWeek)
	}
	if b.month {
		month = ring.Delta(afdssa.SlotMonth)
	}
	if b.year {
		year = ring.Delta(afdssa.SlotYear)
	}

	ring.RebaselineHour()
	if b.day {
		ring.RebaselineDay()
	}
	if b.week {
		ring.RebaselineWeek()
	}
	if b.month {
		ring.RebaselineMonth()
	}
	if b.year {
		ring.RebaselineYear()
	}

	return hour, day, week, month, year
}
