package afdssa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa"
)

func TestCounterRingMonotonicDelta(t *testing.T) {
	var r afdssa.CounterRing
	var overflow uint64
	r.Observe(10, &overflow)
	r.SeedAll()
	require.Equal(t, uint64(0), r.Delta(afdssa.SlotHour))

	r.Observe(25, &overflow)
	require.Equal(t, uint64(15), r.Delta(afdssa.SlotHour))
	require.Equal(t, uint64(0), overflow)

	r.RebaselineHour()
	require.Equal(t, uint64(0), r.Delta(afdssa.SlotHour))
}

func TestCounterRingOverflowDoesNotUnderflow(t *testing.T) {
	var r afdssa.CounterRing
	var overflow uint64
	r.Observe(100, &overflow)
	r.SeedAll()

	r.Observe(5, &overflow) // wrapped
	require.Equal(t, uint64(1), overflow)
	require.Equal(t, uint64(0), r.Delta(afdssa.SlotHour))
}

func TestTopNRotationDropsOldestSlot(t *testing.T) {
	var top afdssa.TopN
	for i := int64(0); i < 7; i++ {
		top.Observe(uint64(i+1)*10, i)
		top.RotateMidnight()
	}
	// After 7 rotations slot 0 is freshly empty, the daily maxima sit
	// newest-first in slots 1..6, and the first day's 10 has been
	// rotated out of the last slot.
	require.Equal(t, uint64(0), top.Value[0])
	require.Equal(t, uint64(70), top.Value[1])
	require.Equal(t, uint64(20), top.Value[6])
}

func TestTopNObserveKeepsDailyMax(t *testing.T) {
	var top afdssa.TopN
	top.Observe(5, 100)
	top.Observe(20, 101)
	top.Observe(3, 102)
	require.Equal(t, uint64(20), top.Value[0])
	require.Equal(t, int64(101), top.Time[0])
}

// HourBucket values are Unix seconds truncated to the hour, so
// consecutive hours in these tests are 3600 apart.
const testHour = int64(3600)

func TestLogHistoryShiftsOncePerHour(t *testing.T) {
	var h afdssa.LogHistory48
	h.ShiftHourly(1000*testHour, 3)
	require.Equal(t, byte(3), h.Bytes[0])

	h.ShiftHourly(1000*testHour, 7) // same hour: overwrite slot 0, no shift
	require.Equal(t, byte(7), h.Bytes[0])

	h.ShiftHourly(1001*testHour, 2) // new hour: shift
	require.Equal(t, byte(2), h.Bytes[0])
	require.Equal(t, byte(7), h.Bytes[1])
}

func TestLogHistoryQuietHoursFillNoInformation(t *testing.T) {
	var h afdssa.LogHistory48
	h.ShiftHourly(1000*testHour, 5)
	h.AdvanceQuietHours(1003 * testHour)
	require.Equal(t, byte(0xFF), h.Bytes[0])
}
