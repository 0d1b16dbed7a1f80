package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGF256ExpLogAreInverses(t *testing.T) {
	for a := 0; a < 255; a++ {
		x := gf256.exp[a]
		assert.Equal(t, uint8(a), gf256.log[x], "log(exp(%d)) should round-trip", a)
	}
}

func TestGF256LogOfZeroIsSentinel(t *testing.T) {
	assert.Equal(t, uint8(255), gf256.log[0])
	assert.Equal(t, uint8(0), gf256.exp[255])
}

func TestGF256ExpIsNeverZeroExceptSentinel(t *testing.T) {
	for a := 0; a < 255; a++ {
		assert.NotEqual(t, uint8(0), gf256.exp[a], "exp(%d) should be a nonzero field element", a)
	}
}

func TestGF256ExpCoversEveryNonzeroElementOnce(t *testing.T) {
	seen := make(map[uint8]bool)
	for a := 0; a < 255; a++ {
		x := gf256.exp[a]
		assert.False(t, seen[x], "exp(%d)=%d repeats a prior value", a, x)
		seen[x] = true
	}
	assert.Len(t, seen, 255)
}
