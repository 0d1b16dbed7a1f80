package nrsc5

// firDecimQ15 is a fixed-coefficient FIR filter with integer decimation,
// operating on Q15 fixed-point complex samples. It is a shift-window +
// dot-product filter: samples push into a circular window and every
// decim-th sample produces one filtered output, the same shape as the
// reference decimator (minus its NEON dot-product, done here as a plain
// Q15 multiply-accumulate).
type firDecimQ15 struct {
	decim int
	taps  []int32 // Q15 taps, stored forward (not time-reversed)
	window []cint16
	idx    int
}

// newFIRDecimQ15 builds a decimator for the given Q15-scaled tap set
// (taps in the range [-1,1)) and decimation factor.
func newFIRDecimQ15(taps []float64, decim int) *firDecimQ15 {
	q := &firDecimQ15{
		decim:  decim,
		taps:   make([]int32, len(taps)),
		window: make([]cint16, len(taps)),
	}
	for i, t := range taps {
		q.taps[i] = int32(t * 32767.0)
	}
	return q
}

// push slides one sample into the window, oldest first.
func (q *firDecimQ15) push(x cint16) {
	copy(q.window, q.window[1:])
	q.window[len(q.window)-1] = x
}

func (q *firDecimQ15) dot() cint16 {
	var accI, accQ int64
	n := len(q.taps)
	for i := 0; i < n; i++ {
		accI += int64(q.window[i].I) * int64(q.taps[i])
		accQ += int64(q.window[i].Q) * int64(q.taps[i])
	}
	return cint16{I: int16(accI >> 15), Q: int16(accQ >> 15)}
}

// execute consumes decim input samples and returns one filtered, decimated
// output sample; only the first of every decim pushes produces a dot
// product, matching the reference's decim=2 fast path generalized to
// arbitrary decim.
func (q *firDecimQ15) execute(in []cint16) cint16 {
	var out cint16
	for i, x := range in {
		q.push(x)
		if i == 0 {
			out = q.dot()
		}
	}
	return out
}
