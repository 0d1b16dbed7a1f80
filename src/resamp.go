package nrsc5

import "math"

// resampState tracks which half of a polyphase interpolation step we're in,
// mirroring the reference's RESAMP_STATE_BOUNDARY/RESAMP_STATE_INTERP pair.
type resampState int

const (
	resampInterp resampState = iota
	resampBoundary
)

// resampQ15 is a polyphase-filterbank resampler driven by a timing-error
// feedback loop (the Sync→Acquire back-edge). It interpolates between two
// adjacent polyphase branch outputs by the fractional filterbank index mu,
// and is the sample-rate-correction stage of the front-end.
type resampQ15 struct {
	rate float64 // output/input rate, adjusted by timing feedback
	del  float64 // 1/rate
	tau  float64 // accumulated phase, 0 <= tau < 1
	bf   float64
	b    int
	mu   float64
	y0   complex128
	y1   complex128
	state resampState

	npfb int
	subLen int
	branches [][]float64 // [branch][tap], forward order
	windows  [][]complex128
	idx      []int
}

// newResampQ15 builds an npfb-branch polyphase filterbank from a prototype
// lowpass of length npfb*subLen, the same Kaiser-windowed design the
// reference generates via liquid_firdes_kaiser before slicing into phases.
func newResampQ15(npfb, subLen int, prototype []float64) *resampQ15 {
	q := &resampQ15{
		rate: 1.0, del: 1.0, state: resampInterp,
		npfb: npfb, subLen: subLen,
	}
	q.branches = make([][]float64, npfb)
	q.windows = make([][]complex128, npfb)
	q.idx = make([]int, npfb)
	for f := 0; f < npfb; f++ {
		br := make([]float64, subLen)
		for j := 0; j < subLen; j++ {
			idx := (subLen-1-j)*npfb + f
			if idx < len(prototype) {
				br[j] = prototype[idx]
			}
		}
		q.branches[f] = br
		q.windows[f] = make([]complex128, subLen)
	}
	return q
}

// kaiserPrototype builds an npfb*subLen-tap windowed-sinc lowpass, the
// polyphase-filterbank prototype resamp_q15_create slices into npfb phases.
// cutoff is expressed as a fraction of the polyphase (post-interpolation)
// sample rate, beta is the Kaiser window shape parameter.
func kaiserPrototype(npfb, subLen int, cutoff, beta float64) []float64 {
	n := npfb * subLen
	h := make([]float64, n)
	mid := float64(n-1) / 2
	for i := 0; i < n; i++ {
		x := float64(i) - mid
		var sinc float64
		if x == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		r := (float64(i) - mid) / mid
		w := besselI0(beta*math.Sqrt(1-r*r)) / besselI0(beta)
		h[i] = sinc * w
	}
	return h
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// evaluated by its power series (converges quickly for the beta range a
// Kaiser window needs).
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 25; k++ {
		term *= (halfX * halfX) / float64(k*k)
		sum += term
	}
	return sum
}

// setRate updates the resampling rate from a timing-feedback correction;
// rate 1.0 is nominal, values near it absorb the drift Sync reports back.
func (q *resampQ15) setRate(rate float64) {
	q.rate = rate
	q.del = 1.0 / rate
}

func (q *resampQ15) pushSample(x complex128) {
	for f := 0; f < q.npfb; f++ {
		w := q.windows[f]
		copy(w, w[1:])
		w[len(w)-1] = x
	}
}

func (q *resampQ15) branchOutput(f int) complex128 {
	var acc complex128
	w := q.windows[f]
	taps := q.branches[f]
	for i := range taps {
		acc += w[i] * complex(taps[i], 0)
	}
	return acc
}

func (q *resampQ15) updateTiming() {
	q.tau += q.del
	q.bf = q.tau * float64(q.npfb)
	q.b = int(math.Floor(q.bf))
	q.mu = q.bf - float64(q.b)
}

// execute pushes one input sample and appends zero or more resampled output
// samples to out, returning the number produced.
func (q *resampQ15) execute(x complex128, out []complex128) int {
	q.pushSample(x)
	n := 0
	for q.b < q.npfb {
		switch q.state {
		case resampInterp:
			q.y0 = q.branchOutput(q.b)
			if q.b == q.npfb-1 {
				q.state = resampBoundary
				q.b = q.npfb
			} else {
				q.y1 = q.branchOutput(q.b + 1)
				out[n] = complex(1-q.mu, 0)*q.y0 + complex(q.mu, 0)*q.y1
				n++
				q.updateTiming()
			}
		case resampBoundary:
			q.y1 = q.branchOutput(0)
			out[n] = complex(1-q.mu, 0)*q.y0 + complex(q.mu, 0)*q.y1
			n++
			q.updateTiming()
			q.state = resampInterp
		}
	}
	q.tau -= 1.0
	q.bf -= float64(q.npfb)
	q.b -= q.npfb
	return n
}
