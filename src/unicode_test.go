package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestISO88591ToUTF8PassesASCIIThrough(t *testing.T) {
	assert.Equal(t, "Hi!", iso88591ToUTF8([]byte("Hi!")))
}

func TestISO88591ToUTF8WidensHighBytes(t *testing.T) {
	// 0xE9 is Latin-1 'e with acute, U+00E9, UTF-8 encoded as 0xC3 0xA9.
	got := iso88591ToUTF8([]byte{0xE9})
	assert.Equal(t, []byte{0xC3, 0xA9}, []byte(got))
}

func TestUCS2ToUTF8LittleEndianNoBOM(t *testing.T) {
	// U+0041 'A', U+0042 'B' as little-endian UCS-2.
	got := ucs2ToUTF8([]byte{0x41, 0x00, 0x42, 0x00})
	assert.Equal(t, "AB", got)
}

func TestUCS2ToUTF8BigEndianBOM(t *testing.T) {
	got := ucs2ToUTF8([]byte{0xFE, 0xFF, 0x00, 0x41})
	assert.Equal(t, "A", got)
}

func TestUCS2ToUTF8LittleEndianBOM(t *testing.T) {
	got := ucs2ToUTF8([]byte{0xFF, 0xFE, 0x41, 0x00})
	assert.Equal(t, "A", got)
}

func TestDecodeStationTextDispatchesByEncodingByte(t *testing.T) {
	assert.Equal(t, "Hi", decodeStationText(0, []byte("Hi")))
	assert.Equal(t, "A", decodeStationText(4, []byte{0x41, 0x00}))
	assert.Equal(t, "", decodeStationText(99, []byte("x")))
}
