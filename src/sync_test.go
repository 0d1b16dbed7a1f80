package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefIndexIsLinearFromLowerBandStart(t *testing.T) {
	st := newSyncTracker(newDecodeState())
	assert.Equal(t, 0, st.refIndex(LowerBandStart))
	assert.Equal(t, BlockSizeFM, st.refIndex(LowerBandStart+1))
	assert.Equal(t, 5*BlockSizeFM, st.refIndex(LowerBandStart+5))
}

func TestPartitionsPerBandTable(t *testing.T) {
	assert.Equal(t, 11, partitionsPerBand(2))
	assert.Equal(t, 12, partitionsPerBand(3))
	assert.Equal(t, 14, partitionsPerBand(5))
	assert.Equal(t, 14, partitionsPerBand(6))
	assert.Equal(t, 14, partitionsPerBand(11))
	assert.Equal(t, 10, partitionsPerBand(0))
	assert.Equal(t, 10, partitionsPerBand(99))
}

func TestIdealQPSKPicksNearestConstellationPoint(t *testing.T) {
	assert.Equal(t, complex(1, 1), idealQPSK(complex(0.2, 0.3)))
	assert.Equal(t, complex(-1, 1), idealQPSK(complex(-0.2, 0.3)))
	assert.Equal(t, complex(1, -1), idealQPSK(complex(0.2, -0.3)))
	assert.Equal(t, complex(-1, -1), idealQPSK(complex(-0.2, -0.3)))
}

func TestClampMultBounds(t *testing.T) {
	assert.Equal(t, 127.0, clampMult(500))
	assert.Equal(t, 1.0, clampMult(0))
	assert.Equal(t, 1.0, clampMult(-50))
	assert.Equal(t, 64.0, clampMult(64))
}

func TestDemodSignOfInput(t *testing.T) {
	pos := demod(0.5, 40)
	neg := demod(-0.5, 40)
	assert.Greater(t, pos, softBit(0))
	assert.Less(t, neg, softBit(0))
}

func TestCalcSmagIsMeanAbsReal(t *testing.T) {
	st := newSyncTracker(newDecodeState())
	buf := make([]complex128, BlockSizeFM*SyncSearchLen)
	base := st.refIndex(LowerBandStart)
	for n := 0; n < BlockSizeFM; n++ {
		buf[base+n] = complex(2.0, 99.0) // imaginary part must not affect the result
	}
	assert.InDelta(t, 2.0, st.calcSmag(buf, LowerBandStart), 1e-9)
}
