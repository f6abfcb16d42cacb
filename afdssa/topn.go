package afdssa

import "github.com/holger24/AFD-sub005/afdproto"

// Observe folds a new reading into today's slot (spec §3.1 "rolling
// maxima" - each slot holds the highest value seen that day, not a
// running sum).
func (t *TopN) Observe(value uint64, nowUnix int64) {
	if value > t.Value[0] {
		t.Value[0] = value
		t.Time[0] = nowUnix
	}
}

// RotateMidnight shifts every slot one day older and opens a fresh,
// empty slot 0 (spec §4.4 "day-boundary top-N rotation", spec §8
// property "top-N rotation": the oldest of the STORAGE_TIME slots is
// dropped, never averaged or merged into its neighbor).
func (t *TopN) RotateMidnight() {
	for i := afdproto.StorageTime - 1; i > 0; i-- {
		t.Value[i] = t.Value[i-1]
		t.Time[i] = t.Time[i-1]
	}
	t.Value[0] = 0
	t.Time[0] = 0
}
