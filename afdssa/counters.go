package afdssa

import "time"

// Observe records a new monotonic reading of slot 0 (spec §3.2 invariant
// 2: "the current counter only grows or wraps to zero on overflow").
// Overflow (newValue < current) bumps the overflow counter the caller
// passes in rather than silently resetting the baselines, so a wrap does
// not manufacture a spurious negative delta on the next Delta call.
func (r *CounterRing) Observe(newValue uint64, overflow *uint64) {
	if newValue < r[SlotCurrent] {
		if overflow != nil {
			*overflow++
		}
	}
	r[SlotCurrent] = newValue
}

// Delta returns how much slot 0 has grown since the baseline in slot
// was captured (spec §3.2 invariant 2). A wrapped counter (current <
// baseline) reports zero rather than a huge unsigned underflow - the
// Aggregator's rebaseline on rollover (RebaselineHour et al.) is what
// actually resets the baseline; Delta alone only ever looks backward.
func (r CounterRing) Delta(slot int) uint64 {
	if r[SlotCurrent] < r[slot] {
		return 0
	}
	return r[SlotCurrent] - r[slot]
}

// RebaselineHour snapshots slot 0 into the hour baseline (spec §3.2
// invariant 2, spec §8 property "hourly rollover rebaselines without
// losing the running total"). RebaselineDay/Week/Month/Year are
// identical in shape; kept distinct so each can be called independently
// from the Aggregator's own day/week/month/year boundary detection.
func (r *CounterRing) RebaselineHour() { r[SlotHour] = r[SlotCurrent] }
func (r *CounterRing) RebaselineDay()  { r[SlotDay] = r[SlotCurrent] }
func (r *CounterRing) RebaselineWeek() { r[SlotWeek] = r[SlotCurrent] }
func (r *CounterRing) RebaselineMonth() { r[SlotMonth] = r[SlotCurrent] }
func (r *CounterRing) RebaselineYear() { r[SlotYear] = r[SlotCurrent] }

// SeedAll sets every baseline slot to the current value. Used the first
// time a site's counters are observed (spec §3.2 invariant 2,
// "COUNTERS_INITIALIZED"), so the first Delta call after startup reports
// zero instead of the whole lifetime total.
func (r *CounterRing) SeedAll() {
	v := r[SlotCurrent]
	r[SlotHour], r[SlotDay], r[SlotWeek], r[SlotMonth], r[SlotYear] = v, v, v, v, v
}

// HourBucket truncates a time to the hour it falls in, the granularity
// the Aggregator uses to decide whether a rebaseline is due (spec §4.4,
// §8 "hourly rollover").
func HourBucket(t time.Time) int64 {
	return t.UTC().Truncate(time.Hour).Unix()
}

// DayBucket truncates a time to the UTC day it falls in (spec §4.4
// "day-boundary top-N rotation").
func DayBucket(t time.Time) int64 {
	return t.UTC().Truncate(24 * time.Hour).Unix()
}
