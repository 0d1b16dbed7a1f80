package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC8ZeroOverItsOwnRemainder(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	crc := crc8(data)
	assert.Equal(t, byte(0), crc8(append(data, crc)))
}

func TestHasFixedMatchesBothTolerances(t *testing.T) {
	assert.True(t, hasFixed(pciAudioFixed))
	assert.True(t, hasFixed(pciAudioFixed|0x3))
	assert.False(t, hasFixed(pciAudio))
}

// TestAASPushDispatchesHiPayload reproduces the worked HDLC/AAS example:
// a frame carrying protocol byte 0x21 and payload "Hi", FCS-protected and
// byte-stuffed, delivers exactly the payload "Hi" to onAAS.
func TestAASPushDispatchesHiPayload(t *testing.T) {
	payload := []byte{0x21, 'H', 'i'}
	fcs := hdlcFCS(payload)
	body := append(append([]byte{}, payload...), byte(fcs), byte(fcs>>8))
	escaped := hdlcEscapeBytes(body)

	f := newFrameParser()
	var gotProg int
	var gotPayload []byte
	f.onAAS = func(prog int, data []byte) {
		gotProg = prog
		gotPayload = append([]byte{}, data...)
	}

	f.aasPush(3, escaped)

	require.Equal(t, []byte("Hi"), gotPayload)
	assert.Equal(t, 3, gotProg)
}

func TestAASPushRejectsBadFCS(t *testing.T) {
	payload := []byte{0x21, 'H', 'i'}
	fcs := hdlcFCS(payload)
	body := append(append([]byte{}, payload...), byte(fcs)^0xFF, byte(fcs>>8))
	escaped := hdlcEscapeBytes(body)

	f := newFrameParser()
	called := false
	f.onAAS = func(int, []byte) { called = true }

	f.aasPush(0, escaped)

	assert.False(t, called)
}

func TestAASPushRejectsUnknownProtocolByte(t *testing.T) {
	payload := []byte{0x99, 'X'}
	fcs := hdlcFCS(payload)
	body := append(append([]byte{}, payload...), byte(fcs), byte(fcs>>8))
	escaped := hdlcEscapeBytes(body)

	f := newFrameParser()
	called := false
	f.onAAS = func(int, []byte) { called = true }

	f.aasPush(0, escaped)

	assert.False(t, called)
}

func TestHDLCBufDeliversFrameOnFlag(t *testing.T) {
	var got [][]byte
	b := hdlcBuf{data: make([]byte, 16), idx: -1}
	b.push([]byte{hdlcFlag, 0x01, 0x02, hdlcFlag, 0x03, hdlcFlag}, func(frame []byte) {
		got = append(got, append([]byte{}, frame...))
	})

	require.Len(t, got, 2)
	assert.Equal(t, []byte{0x01, 0x02}, got[0])
	assert.Equal(t, []byte{0x03}, got[1])
}

func TestFixHeaderRoundTripsCleanCodeword(t *testing.T) {
	msg := make([]byte, RSCodeK)
	for i := range msg {
		msg[i] = byte(i)
	}
	codeword := rsEncodeForTest(msg)

	buf := make([]byte, len(codeword))
	for i, b := range codeword {
		buf[rsCodewordLen-i-1] = b
	}

	ok := fixHeader(buf)
	require.True(t, ok)

	for i := 0; i < RSCodeK; i++ {
		assert.Equal(t, msg[i], buf[rsCodewordLen-i-1])
	}
}
