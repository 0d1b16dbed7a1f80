package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// encodeForViterbiTest runs the tail-biting K=7/N=3 convolutional encoder
// (reencodeP1, already exercised in production by calcCBER) over message
// bits and returns a noiseless soft-bit sequence ready for viterbiDecode.
func encodeForViterbiTest(msg []byte) []softBit {
	nrz := reencodeP1(msg)
	out := make([]softBit, len(nrz))
	for i, v := range nrz {
		out[i] = clampSoft(float64(v) * 127)
	}
	return out
}

func TestViterbiDecodeRoundTripNoiseless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(8, 64).Draw(rt, "n")
		msg := make([]byte, n)
		for i := range msg {
			msg[i] = byte(rapid.IntRange(0, 1).Draw(rt, "bit"))
		}

		coded := encodeForViterbiTest(msg)
		decoded := viterbiDecode(coded, n)

		assert.Equal(rt, msg, decoded)
	})
}

func TestCalcCBERZeroAtZeroNoise(t *testing.T) {
	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i % 2)
	}
	coded := encodeForViterbiTest(msg)
	decoded := viterbiDecode(coded, len(msg))
	assert.Equal(t, 0.0, calcCBER(coded, decoded))
}
