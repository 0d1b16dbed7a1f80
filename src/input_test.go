package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU8ToQ15MapsMidpointToZero(t *testing.T) {
	assert.Equal(t, int16(0), u8ToQ15(127))
}

func TestU8ToQ15IsMonotonic(t *testing.T) {
	assert.Less(t, u8ToQ15(0), u8ToQ15(127))
	assert.Less(t, u8ToQ15(127), u8ToQ15(255))
}

func newTestInputWorker() *inputWorker {
	return newInputWorker(newDecodeState(), newAcquire(), newSyncTracker(newDecodeState()))
}

func TestPushCU8BuffersMisalignedResidue(t *testing.T) {
	w := newTestInputWorker()
	// 6 bytes: one full cu8 sample (4 bytes) plus a 2-byte residue.
	w.pushCU8([]byte{10, 20, 30, 40, 50, 60})
	require.Len(t, w.leftoverCU8, 2)
	assert.Equal(t, []byte{50, 60}, w.leftoverCU8)
}

func TestPushCU8PrependsLeftoverOnNextCall(t *testing.T) {
	w := newTestInputWorker()
	w.pushCU8([]byte{10, 20, 30, 40, 50}) // 1 byte residue
	require.Len(t, w.leftoverCU8, 1)

	avail := w.avail
	w.pushCU8([]byte{60, 70, 80}) // completes the residue into one more sample
	assert.Greater(t, w.avail, avail)
	assert.Empty(t, w.leftoverCU8)
}

func TestPushCS16BuffersOddSampleResidue(t *testing.T) {
	w := newTestInputWorker()
	w.pushCS16([]int16{1, 2, 3}) // one full I/Q pair plus a lone residue sample
	require.NotNil(t, w.leftoverCS16)
	assert.Equal(t, int16(3), *w.leftoverCS16)
}

func TestInputWorkerResetClearsRingState(t *testing.T) {
	w := newTestInputWorker()
	w.pushCU8([]byte{10, 20, 30, 40})
	w.setSkip(5)
	w.rateAdjust(0.01)

	w.reset()

	assert.Equal(t, 0, w.avail)
	assert.Equal(t, 0, w.used)
	assert.Equal(t, 0, w.skip)
	assert.Equal(t, 1.0, w.resampRate)
}

func TestRateAdjustAccumulates(t *testing.T) {
	w := newTestInputWorker()
	w.rateAdjust(0.02)
	w.rateAdjust(-0.01)
	assert.InDelta(t, 1.01, w.resampRate, 1e-12)
}
