package nrsc5

import "math/cmplx"

// cint16 is a fixed-point complex sample: 16-bit I/Q in Q15 format, the
// front-end's native representation, which the FIR decimator operates on
// directly; the resampler works on complex128 values from toComplex.
type cint16 struct {
	I, Q int16
}

func (c cint16) toComplex() complex128 {
	return complex(float64(c.I)/32768.0, float64(c.Q)/32768.0)
}

func fromComplex(c complex128) cint16 {
	return cint16{
		I: clampQ15(real(c) * 32768.0),
		Q: clampQ15(imag(c) * 32768.0),
	}
}

func clampQ15(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// softBit is a soft-decision channel symbol fed to the Viterbi decoder:
// positive values vote 1, negative vote 0, magnitude is confidence.
type softBit = int8

// clampSoft clamps an MER-scaled soft value into the int8 range used by
// the Viterbi branch metric, the way sync.c's soft demodulator does.
func clampSoft(v float64) softBit {
	if v > 127 {
		return 127
	}
	if v < -127 {
		return -127
	}
	return softBit(v)
}

// unitPhase renormalizes a complex accumulator back to unit magnitude,
// used after every symbol's carrier-phase rotation to prevent drift.
func unitPhase(p complex128) complex128 {
	m := cmplx.Abs(p)
	if m == 0 {
		return 1
	}
	return p / complex(m, 0)
}
