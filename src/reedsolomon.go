package nrsc5

// Reed-Solomon codec for the Layer-2 PCI header: RS(96,80) over GF(2^8)
// with primitive polynomial 0x11D, correcting up to 8 symbol errors.
// Structurally this is the classic BCH-view RS decoder (syndrome calc,
// Berlekamp-Massey error locator, Chien search, Forney error values), the
// same four-stage pipeline as the field's own reed-solomon codec, run over
// a virtually-shortened codeword: the natural GF(256) codeword length is
// 255, so a 96-byte transmitted block is conceptually 159 leading zero
// bytes followed by the 96 received bytes.

const (
	rsNaturalLen = 255 // N for the full-length GF(2^8) code
	rsParity     = RSCodeN - RSCodeK // 16 parity symbols
	rsMaxErrors  = rsParity / 2       // 8
	a0           = rsNaturalLen       // field.log[a0] == 0, the "log of zero" sentinel
)

// rsGenerator is the RS(96,80) generator polynomial, stored as field logs,
// built once the way rs_generate_generator_polynomial does.
var rsGenerator = buildRSGenerator()

func buildRSGenerator() []uint8 {
	gen := make([]uint8, rsParity+1)
	gen[0] = 1
	for i := 0; i < rsParity; i++ {
		gen[i+1] = 1
		for j := i; j > 0; j-- {
			if gen[j] != 0 {
				gen[j] = gen[j-1] ^ gf256.exp[(int(gf256.log[gen[j]])+i+1)%rsNaturalLen]
			} else {
				gen[j] = gen[j-1]
			}
		}
		gen[0] = gf256.exp[(int(gf256.log[gen[0]])+i+1)%rsNaturalLen]
	}
	for i := range gen {
		gen[i] = gf256.log[gen[i]]
	}
	return gen
}

// rsDecode corrects up to rsMaxErrors symbol errors in-place in a 96-byte
// mirror-ordered codeword and returns the number of corrected symbols, or
// -1 if the block is unrecoverable.
func rsDecode(codeword []byte) int {
	if len(codeword) != RSCodeN {
		panic("nrsc5: rsDecode requires a 96-byte codeword")
	}

	// Embed into the natural 255-byte block: leading zeros for the
	// shortened portion, codeword occupying the low-order positions.
	msg := make([]byte, rsNaturalLen)
	copy(msg[rsNaturalLen-RSCodeN:], codeword)

	syndromes := rsSyndromes(msg)
	if syndromes == nil {
		return 0 // all zero: no errors
	}

	errPoly, deg := rsErrorLocator(syndromes)
	roots, locPoly, rootsCount := rsChienSearch(errPoly, deg)
	if rootsCount < 0 {
		return -1
	}
	evalPoly, evalDeg := rsErrorEvaluator(syndromes, deg, errPoly)

	for j := rootsCount - 1; j >= 0; j-- {
		var n1 byte
		for i := evalDeg; i >= 0; i-- {
			if evalPoly[i] != a0 {
				n1 ^= gf256.exp[(int(evalPoly[i])+i*int(roots[j]))%rsNaturalLen]
			}
		}
		n2 := gf256.exp[(rsNaturalLen-int(roots[j]))%rsNaturalLen]

		var tmp byte
		top := deg
		if rsParity-1 < top {
			top = rsParity - 1
		}
		top &^= 1
		for i := top; i >= 0; i -= 2 {
			if errPoly[i+1] != a0 {
				tmp ^= gf256.exp[(int(evalPoly[i])+i*int(roots[j]))%rsNaturalLen]
			}
		}
		if tmp == 0 {
			return -1
		}

		if n1 != 0 && j < rsMaxErrors {
			msg[locPoly[j]] ^= gf256.exp[(int(gf256.log[n1])+int(gf256.log[n2])+rsNaturalLen-int(gf256.log[tmp]))%rsNaturalLen]
		}
	}

	copy(codeword, msg[rsNaturalLen-RSCodeN:])
	return rootsCount
}

func rsSyndromes(msg []byte) []byte {
	syn := make([]byte, rsParity)
	for i := range syn {
		syn[i] = msg[0]
	}
	errs := 0
	for i := 1; i < rsNaturalLen; i++ {
		if msg[i] == 0 {
			continue
		}
		l := int(gf256.log[msg[i]])
		for j := range syn {
			syn[j] ^= gf256.exp[(l+j*i)%rsNaturalLen]
		}
	}
	for i := range syn {
		if syn[i] != 0 {
			errs++
		}
		syn[i] = gf256.log[syn[i]]
	}
	if errs == 0 {
		return nil
	}
	return syn
}

func rsErrorLocator(syn []byte) ([]byte, int) {
	errPoly := make([]byte, rsParity+1)
	b := make([]byte, rsParity+1)
	t := make([]byte, rsParity+1)

	errPoly[0] = 1
	b[0] = gf256.log[1]
	for i := 1; i <= rsParity; i++ {
		errPoly[i] = 0
		b[i] = gf256.log[0]
	}

	el := 0
	deg := 0
	for r := 0; r < rsParity; r++ {
		var discr int
		for i := 0; i < r; i++ {
			if errPoly[i] != 0 && syn[r-i] != a0 {
				discr ^= int(gf256.exp[(int(errPoly[i])+int(syn[r-i]))%rsNaturalLen])
			}
		}
		discrLog := int(gf256.log[byte(discr)])

		if discrLog == a0 {
			for i := rsParity - 1; i >= 0; i-- {
				b[i+1] = b[i]
			}
			b[0] = a0
		} else {
			t[0] = errPoly[0]
			for i := 0; i < rsParity; i++ {
				t[i+1] = errPoly[i+1]
				if b[i] != a0 {
					t[i+1] ^= gf256.exp[(discrLog+int(b[i]))%rsNaturalLen]
				}
			}
			if 2*el <= r {
				el = r - el
				for i := 0; i <= rsParity; i++ {
					if errPoly[i] != 0 {
						b[i] = byte((int(gf256.log[errPoly[i]]) - discrLog + rsNaturalLen) % rsNaturalLen)
					} else {
						b[i] = a0
					}
				}
			} else {
				for i := rsParity - 1; i >= 0; i-- {
					b[i+1] = b[i]
				}
				b[0] = a0
			}
			copy(errPoly, t)
		}
	}

	for i := 0; i <= rsParity; i++ {
		if errPoly[i] != 0 {
			deg = i
		}
		errPoly[i] = gf256.log[errPoly[i]]
	}
	return errPoly, deg
}

func rsChienSearch(errPoly []byte, deg int) (roots []byte, locPoly []byte, count int) {
	reg := make([]byte, rsParity+1)
	copy(reg[1:], errPoly[1:])
	locPoly = make([]byte, rsMaxErrors)
	roots = make([]byte, rsParity+1)

	k := rsNaturalLen - 1
	for i := 1; i <= rsNaturalLen; i++ {
		q := 1
		for j := deg; j > 0; j-- {
			if reg[j] != a0 {
				reg[j] = byte((int(reg[j]) + j) % rsNaturalLen)
				q ^= int(gf256.exp[reg[j]])
			}
		}
		if q != 0 {
			k = (rsNaturalLen + k - 1) % rsNaturalLen
			continue
		}
		roots[count] = byte(i)
		if count < rsMaxErrors {
			locPoly[count] = byte(k)
		}
		count++
		if count == deg {
			break
		}
		k = (rsNaturalLen + k - 1) % rsNaturalLen
	}

	if count != deg {
		return nil, nil, -1
	}
	return roots, locPoly, count
}

func rsErrorEvaluator(syn []byte, deg int, errPoly []byte) ([]byte, int) {
	eval := make([]byte, rsParity)
	evalDeg := 0
	for i := range eval {
		var tmp byte
		top := deg
		if i < top {
			top = i
		}
		for j := top; j >= 0; j-- {
			if syn[i-j] != a0 && errPoly[j] != a0 {
				tmp ^= gf256.exp[(int(syn[i-j])+int(errPoly[j]))%rsNaturalLen]
			}
		}
		if tmp != 0 {
			evalDeg = i
		}
		eval[i] = gf256.log[tmp]
	}
	return eval, evalDeg
}
