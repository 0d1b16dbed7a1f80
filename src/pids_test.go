package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// buildValidPIDSFrame fills bits[0:68] from payloadBits (padding with
// zero), computes its CRC-12, and appends it, producing a frame
// checkCRC12 accepts.
func buildValidPIDSFrame(payloadBits []byte) []byte {
	frame := make([]byte, PIDSFrameBits)
	copy(frame, payloadBits)

	crc := crc12(frame)
	for i := 0; i < 12; i++ {
		frame[68+i] = byte((crc >> (11 - i)) & 1)
	}
	return frame
}

func TestCheckCRC12AcceptsValidFrame(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := make([]byte, 68)
		for i := range payload {
			payload[i] = byte(rapid.IntRange(0, 1).Draw(rt, "bit"))
		}
		frame := buildValidPIDSFrame(payload)
		assert.True(rt, checkCRC12(frame))
	})
}

func TestCheckCRC12RejectsSingleBitFlip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := make([]byte, 68)
		for i := range payload {
			payload[i] = byte(rapid.IntRange(0, 1).Draw(rt, "bit"))
		}
		frame := buildValidPIDSFrame(payload)
		require.True(rt, checkCRC12(frame))

		flip := rapid.IntRange(0, PIDSFrameBits-1).Draw(rt, "flip")
		frame[flip] ^= 1

		assert.False(rt, checkCRC12(frame))
	})
}

func TestPIDSFramePushDropsBadCRC(t *testing.T) {
	st := newPIDSState()
	var gotSIS bool
	st.onSIS = func(SISInfo) { gotSIS = true }

	bits := make([]byte, PIDSFrameBits) // all-zero frame: CRC will not match
	pidsFramePush(st, bits)

	assert.False(t, gotSIS)
}

func TestDecodeShortNameUpdatesOnChange(t *testing.T) {
	st := newPIDSState()

	frame := make([]byte, 80)
	// bits[0]=0 (not extended), bits[1]=0 (1 payload), msg_id=1 at off=2
	off := 2
	putBits(frame, &off, 1, 4)  // msg_id = 1 (short name)
	putBits(frame, &off, 0, 5)  // 'A'
	putBits(frame, &off, 1, 5)  // 'B'
	putBits(frame, &off, 2, 5)  // 'C'
	putBits(frame, &off, 3, 5)  // 'D'
	putBits(frame, &off, 0, 2) // not "-FM" suffix pattern (bits!=0,1)

	var got SISInfo
	st.onSIS = func(info SISInfo) { got = info }
	st.decodeSIS(frame)

	assert.Equal(t, "ABCD", got.Name)
}

// putBits writes the low `length` bits of v into bits starting at *off,
// MSB-first, matching decodeBitsInt's read order.
func putBits(bits []byte, off *int, v uint32, length int) {
	for i := length - 1; i >= 0; i-- {
		bits[*off] = byte((v >> uint(i)) & 1)
		*off++
	}
}
