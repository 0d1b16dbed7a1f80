package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockCounterProgression(t *testing.T) {
	d := newDecodeState()
	assert.Equal(t, 0, d.blockCounter())

	for i := 0; i < pmBlockBits; i++ {
		d.pushPM(1)
	}
	assert.Equal(t, 1, d.blockCounter())
}

func TestPushPMTriggersPIDSEveryBlockAndP1OncePerFrame(t *testing.T) {
	d := newDecodeState()
	pidsCalls := 0
	var p1Calls int
	d.onPIDS = func([]byte) { pidsCalls++ }
	d.onP1 = func([]byte) { p1Calls++ }

	for i := 0; i < pmTotalBits; i++ {
		d.pushPM(1)
	}

	assert.Equal(t, pmTotalBits/pmBlockBits, pidsCalls)
	assert.Equal(t, 1, p1Calls)
	assert.Equal(t, 0, d.idxPM, "idxPM wraps to zero after a full frame")
}

func TestResetClearsCountersAndP3State(t *testing.T) {
	d := newDecodeState()
	for i := 0; i < pmBlockBits+5; i++ {
		d.pushPM(1)
	}
	d.p3.iP3 = 7

	d.reset()

	assert.Equal(t, 0, d.idxPM)
	assert.Equal(t, 0, d.idxPX1)
	assert.Equal(t, 0, d.p3.iP3)
}
