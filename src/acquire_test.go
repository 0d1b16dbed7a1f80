package nrsc5

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseShapeRampsAndFlat(t *testing.T) {
	shape := pulseShape(10, 6, 4)
	require.Len(t, shape, 10)

	assert.InDelta(t, 0, shape[0], 1e-9)
	for i := 4; i < 6; i++ {
		assert.InDelta(t, 1.0, shape[i], 1e-9)
	}
	// The cosine ramp-out starts right at the FFT/CP boundary (i==fft==6)
	// and has not yet reached zero by the last sample (i==fftcp-1==9).
	assert.InDelta(t, 1.0, shape[6], 1e-9)
	assert.InDelta(t, math.Cos(math.Pi/2*3.0/4.0), shape[9], 1e-9)
}

func TestFFTShiftSwapsHalves(t *testing.T) {
	buf := []complex128{1, 2, 3, 4}
	fftShift(buf)
	assert.Equal(t, []complex128{3, 4, 1, 2}, buf)
}

func TestAcquireSetModeSwitchesGeometry(t *testing.T) {
	a := newAcquire()
	assert.Equal(t, FFTSizeFM, a.fft)

	a.setMode(BandAM)
	assert.Equal(t, FFTSizeAM, a.fft)
	assert.Equal(t, CPSizeAM, a.cp)

	a.setMode(BandFM)
	assert.Equal(t, FFTSizeFM, a.fft)
	assert.Equal(t, CPSizeFM, a.cp)
}

func TestAcquireResetClearsTrackingState(t *testing.T) {
	a := newAcquire()
	a.idx = 123
	a.cfo = 7
	a.prevAngle = 1.5
	a.state = acquireFine

	a.reset()

	assert.Equal(t, 0, a.idx)
	assert.Equal(t, 0, a.cfo)
	assert.Equal(t, 0.0, a.prevAngle)
	assert.Equal(t, acquireCoarse, a.state)
}

func TestAcquirePushGatesOnFullFFTCPChunk(t *testing.T) {
	a := newAcquire()
	short := make([]cint16, a.fftcp-1)
	assert.Equal(t, 0, a.push(short))
	assert.Equal(t, 0, a.idx)

	exact := make([]cint16, a.fftcp)
	assert.Equal(t, a.fftcp, a.push(exact))
	assert.Equal(t, a.fftcp, a.idx)
}

func TestAcquireFineAdjustAccumulates(t *testing.T) {
	a := newAcquire()
	a.fineAdjust(3, 0.5)
	a.fineAdjust(2, 0.25)
	assert.Equal(t, 5, a.fineSamperr)
	assert.InDelta(t, 0.75, a.fineAngle, 1e-12)
}

func TestAcquireCFOAdjustAccumulates(t *testing.T) {
	a := newAcquire()
	a.cfoAdjust(4)
	a.cfoAdjust(-1)
	assert.Equal(t, 3, a.cfo)
}
