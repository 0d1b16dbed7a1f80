package nrsc5

// galoisField is GF(2^r) represented by parallel exp/log tables, generated
// from a primitive polynomial the same way gf_generate_field does: walk
// the multiplicative group by repeated doubling, reducing modulo poly
// whenever the shift overflows the field's order.
type galoisField struct {
	len uint32
	exp []uint8
	log []uint8
}

// newGaloisField builds GF(2^r) from primitive polynomial poly (its low r+1
// bits set the reduction constant; poly's r-th bit must be set and no
// higher bit may be).
func newGaloisField(r uint8, poly uint32) *galoisField {
	gf := &galoisField{len: 1 << r}
	gf.exp = make([]uint8, gf.len)
	gf.log = make([]uint8, gf.len)

	gf.exp[gf.len-1] = 0
	gf.log[0] = uint8(gf.len - 1)
	gf.exp[0] = 1
	gf.log[1] = 0

	for i := uint32(1); i < gf.len-1; i++ {
		tmp := uint32(gf.exp[i-1]) << 1
		if tmp&(1<<r) != 0 {
			tmp ^= poly
		}
		gf.exp[i] = uint8(tmp)
		gf.log[tmp] = uint8(i)
	}
	return gf
}

// gf256 is the GF(2^8)/0x11D field shared by the RS(96,80) header codec.
var gf256 = newGaloisField(8, RSGenPoly)
