package nrsc5

import "math/bits"

// viterbi is a tail-biting K=7, rate-1/3 Viterbi decoder shared by the P1,
// P3, and PIDS logical channels. It is the scalar reference path described
// by the spec: a SIMD implementation is an optimization, never a
// correctness requirement, so only the portable butterfly/traceback shape
// is implemented here.
const (
	viterbiK        = ConvConstraintLength // 7
	viterbiN        = ConvNumOutputs       // 3
	viterbiNumStates = 64
)

// viterbiTrellis[state] holds the NRZ (+-1) output triple produced by the
// generator polynomials at that trellis state, and the input bit that
// drives the trellis into it — the one-time setup conv_dec.c calls
// "generate_trellis".
type viterbiTrellisState struct {
	val     uint8
	outputs [viterbiN]int16
}

var viterbiTrellis = buildViterbiTrellis()

func buildViterbiTrellis() [viterbiNumStates]viterbiTrellisState {
	var trellis [viterbiNumStates]viterbiTrellisState
	for state := 0; state < viterbiNumStates; state++ {
		prev := vstateLshift(state, 0)
		val := uint8((state >> (viterbiK - 2)) & 1)
		prev |= int(val) << (viterbiK - 1)
		var out [viterbiN]int16
		for i, gen := range ConvGeneratorPolys {
			p := bits.OnesCount(uint(prev) & uint(gen))
			out[i] = int16(p%2)*2 - 1
		}
		trellis[state] = viterbiTrellisState{val: val, outputs: out}
	}
	return trellis
}

// vstateLshift computes the predecessor state reached by shifting in bit
// val, masked to the K=7 shift register width.
func vstateLshift(reg int, val int) int {
	const mask = 0x3e // K=7
	return ((reg << 1) & mask) | val
}

// viterbiDecode runs the tail-biting Viterbi decoder over a soft-bit
// sequence of length 3*n (n trellis stages) and returns the n decoded
// message bits. The trellis is run twice (tail-biting requires the
// decoder to "wrap" state before trusting the final survivor), then traced
// back from the best-scoring final state.
func viterbiDecode(in []softBit, n int) []byte {
	intrvl := 32767/(viterbiN*127) - viterbiK

	sums := make([]int16, viterbiNumStates)
	paths := make([][viterbiNumStates]int8, n)

	runPass := func() {
		for i := 0; i < n; i++ {
			seq := in[viterbiN*i : viterbiN*i+viterbiN]
			norm := i%intrvl == 0
			viterbiStep(seq, sums, &paths[i], norm)
		}
	}
	runPass()
	runPass()

	// Tail-biting traceback: pick the best-scoring final state.
	state, maxSum := 0, int16(-1)
	for i, s := range sums {
		if s > maxSum {
			maxSum = s
			state = i
		}
	}

	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		path := int(paths[i][state]) + 1
		out[i] = viterbiTrellis[state].val
		state = vstateLshift(state, path)
	}
	return out
}

// viterbiStep runs one ACS (add-compare-select) butterfly stage across all
// 64 states, writing path decisions for this trellis column.
func viterbiStep(seq []softBit, sums []int16, path *[viterbiNumStates]int8, norm bool) {
	var metrics [32]int16
	for i := 0; i < viterbiNumStates/2; i++ {
		out := viterbiTrellis[i].outputs
		metrics[i] = int16(seq[0])*out[0] + int16(seq[1])*out[1] + int16(seq[2])*out[2]
	}

	newSums := make([]int16, viterbiNumStates)
	for i := 0; i < viterbiNumStates/2; i++ {
		s0 := sums[2*i+0]
		s1 := sums[2*i+1]
		m := metrics[i]

		sum0 := s0 + m
		sum1 := s1 - m
		sum2 := s0 - m
		sum3 := s1 + m

		if sum0 > sum1 {
			newSums[i] = sum0
			path[i] = -1
		} else {
			newSums[i] = sum1
			path[i] = 0
		}
		if sum2 > sum3 {
			newSums[i+viterbiNumStates/2] = sum2
			path[i+viterbiNumStates/2] = -1
		} else {
			newSums[i+viterbiNumStates/2] = sum3
			path[i+viterbiNumStates/2] = 0
		}
	}

	if norm {
		min := newSums[0]
		for _, s := range newSums {
			if s < min {
				min = s
			}
		}
		for i := range newSums {
			newSums[i] -= min
		}
	}
	copy(sums, newSums)
}

// reencodeP1 re-runs the K=7/N=3 convolutional encoder over a decoded P1
// frame, returning the NRZ (+-1) coded sequence that calcCBER compares
// against the received coded bits for the channel BER estimate.
func reencodeP1(decoded []byte) []int8 {
	var r uint8
	for i := 0; i < 6; i++ {
		r = (r >> 1) | (decoded[len(decoded)-6+i] << 6)
	}
	out := make([]int8, 0, len(decoded)*3)
	for i := 0; i < len(decoded); i++ {
		r = (r >> 1) | (decoded[i] << 6)
		out = append(out,
			parityBit(r&0133),
			parityBit(r&0171),
			parityBit(r&0165),
		)
	}
	return out
}

func parityBit(v uint8) int8 {
	if bits.OnesCount8(v)%2 == 1 {
		return 1
	}
	return -1
}

// calcCBER recomputes channel bit-error-rate by re-encoding a decoded P1
// frame and comparing it against the punctured coded sequence that went
// into the decoder, counting mismatches at the un-punctured positions.
func calcCBER(coded []softBit, decoded []byte) float64 {
	re := reencodeP1(decoded)
	errors := 0
	j := 0
	for i := 0; i < len(decoded); i++ {
		for k := 0; k < 3; k++ {
			if j%6 == 5 {
				j++
				continue
			}
			got := int8(0)
			if coded[j] > 0 {
				got = 1
			}
			want := int8(0)
			if re[i*3+k] > 0 {
				want = 1
			}
			if got != want {
				errors++
			}
			j++
		}
	}
	return float64(errors) / (2.5 * float64(len(decoded)))
}
