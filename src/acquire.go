package nrsc5

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Acquisition locates OFDM symbol boundaries and the residual carrier
// frequency offset before the reference tracker in Sync can run. It moves
// through two states: coarse (cyclic-prefix autocorrelation over one whole
// frame) and fine (small per-frame corrections fed back from Sync).
type acquireState int

const (
	acquireCoarse acquireState = iota
	acquireFine
)

const (
	acquireSymbols     = 2 * BlockSizeFM // cyclic-prefix correlation window, in OFDM symbols
	acquireFilterDelay = 15

	// centerAM is the FFT bin landed on by the AM carrier once fftShift has
	// centered bin 0. pidsOuterIndexAM is the half-width of the bin
	// neighborhood swept to find the strongest nearby carrier for the
	// integer CFO search; the reference's exact value wasn't present in the
	// retrieved source, so this follows the AM hybrid primary sideband span
	// (see DESIGN.md).
	centerAM         = FFTSizeAM / 2
	pidsOuterIndexAM = 25
)

// acquire tracks symbol timing and carrier offset for one band (FM or AM).
// Every fftcp input samples it attempts one acquire_process pass; once Sync
// reports lock it switches into fine mode and only nudges timing using the
// feedback Sync supplies each frame.
type acquire struct {
	mode Band
	fft, fftcp, cp int

	filterFM, filterAM *firDecimQ15
	fftPlanFM, fftPlanAM *fourier.CmplxFFT
	shapeFM, shapeAM []float64
	shape            []float64

	inBuffer []cint16
	buffer   []complex128
	sums     []complex128
	fftin    []complex128

	idx       int
	samperr   int
	cfo       int
	keepExtra int
	phase     complex128
	prevAngle float64

	state acquireState

	// fine-mode feedback, written by Sync and consumed on the next pass
	fineSamperr int
	fineAngle   float64
}

func newAcquire() *acquire {
	a := &acquire{
		mode:  BandFM,
		fft:   FFTSizeFM,
		fftcp: FFTSizeFM + CPSizeFM,
		cp:    CPSizeFM,
	}
	// These filters run at decim=1: acquisition needs a smoothed sample
	// stream at full rate for its autocorrelation, not a decimated one.
	a.filterFM = newFIRDecimQ15(acquireFilterTapsFM, 1)
	a.filterAM = newFIRDecimQ15(acquireFilterTapsAM, 1)
	a.fftPlanFM = fourier.NewCmplxFFT(FFTSizeFM)
	a.fftPlanAM = fourier.NewCmplxFFT(FFTSizeAM)

	a.shapeFM = pulseShape(FFTSizeFM+CPSizeFM, FFTSizeFM, CPSizeFM)
	a.shapeAM = pulseShape(FFTSizeAM+CPSizeAM, FFTSizeAM, CPSizeAM)
	a.shape = a.shapeFM

	bufLen := (FFTSizeFM + CPSizeFM) * (acquireSymbols + 1)
	a.inBuffer = make([]cint16, bufLen)
	a.buffer = make([]complex128, bufLen)
	a.sums = make([]complex128, FFTSizeFM+CPSizeFM)
	a.fftin = make([]complex128, FFTSizeFM)

	a.reset()
	return a
}

// pulseShape builds the raised-cosine window applied across the cyclic
// prefix boundary: sin ramp in, flat through the FFT body, cos ramp out.
func pulseShape(fftcp, fft, cp int) []float64 {
	out := make([]float64, fftcp)
	for i := 0; i < fftcp; i++ {
		switch {
		case i < cp:
			out[i] = math.Sin(math.Pi / 2 * float64(i) / float64(cp))
		case i < fft:
			out[i] = 1
		default:
			out[i] = math.Cos(math.Pi / 2 * float64(i-fft) / float64(cp))
		}
	}
	return out
}

func (a *acquire) reset() {
	a.idx = 0
	a.prevAngle = 0
	a.phase = 1
	a.keepExtra = 0
	a.cfo = 0
	a.state = acquireCoarse
}

func (a *acquire) setMode(mode Band) {
	a.mode = mode
	if mode == BandFM {
		a.fft, a.fftcp, a.cp = FFTSizeFM, FFTSizeFM+CPSizeFM, CPSizeFM
		a.shape = a.shapeFM
	} else {
		a.fft, a.fftcp, a.cp = FFTSizeAM, FFTSizeAM+CPSizeAM, CPSizeAM
		a.shape = a.shapeAM
	}
}

// push appends up to one fftcp-aligned chunk of samples and reports how
// many it consumed, mirroring acquire_push's "wait for a whole cp+fft
// boundary" gate.
func (a *acquire) push(buf []cint16) int {
	needed := a.fftcp - a.idx%a.fftcp
	if len(buf) < needed {
		return 0
	}
	copy(a.inBuffer[a.idx:a.idx+needed], buf[:needed])
	a.idx += needed
	return needed
}

// cfoAdjust nudges the running carrier-frequency-offset estimate, called
// back from Sync's wideband CFO sweep and from amCFOSearch in AM mode.
func (a *acquire) cfoAdjust(delta int) { a.cfo += delta }

// fineAdjust accumulates Sync's per-block residual timing/phase correction
// (the sole C->B backward edge in the pipeline); process consumes and
// zeros both fields on the next fine-tracking pass.
func (a *acquire) fineAdjust(samperr int, angle float64) {
	a.fineSamperr += samperr
	a.fineAngle += angle
}

// process runs one acquisition pass once a full (symbols+1)*fftcp window has
// accumulated, pushing acquireSymbols worth of frequency-domain symbols into
// Sync and retaining the tail for the next pass.
func (a *acquire) process(sy *syncTracker) {
	want := a.fftcp * (acquireSymbols + 1)
	if a.idx != want {
		return
	}

	var maxV complex128
	maxMag := -1.0
	samperr := 0
	wasFine := a.state == acquireFine

	if a.state == acquireFine {
		samperr = a.fftcp/2 + a.fineSamperr
		a.fineSamperr = 0

		angleDiff := -a.fineAngle
		a.fineAngle = 0
		a.prevAngle += angleDiff
	} else {
		filt := a.filterFM
		if a.mode == BandAM {
			filt = a.filterAM
		}
		for i := 0; i < want; i++ {
			y := filt.execute([]cint16{a.inBuffer[i]})
			c := y.toComplex()
			if a.mode == BandFM {
				c = cmplx.Conj(c)
			}
			a.buffer[i] = c
		}

		for i := range a.sums {
			a.sums[i] = 0
		}
		for i := 0; i < a.fftcp; i++ {
			for j := 0; j < acquireSymbols; j++ {
				a.sums[i] += a.buffer[i+j*a.fftcp] * cmplx.Conj(a.buffer[i+j*a.fftcp+a.fft])
			}
		}

		for i := 0; i < a.fftcp; i++ {
			var v complex128
			for j := 0; j < a.cp; j++ {
				v += a.sums[(i+j)%a.fftcp] * complex(a.shape[j]*a.shape[j+a.fft], 0)
			}
			mag := cmplx.Abs(v)
			if mag > maxMag {
				maxMag = mag
				maxV = v
				samperr = (i + a.fftcp - acquireFilterDelay) % a.fftcp
			}
		}

		angleDiff := cmplx.Phase(maxV * cmplx.Exp(complex(0, -a.prevAngle)))
		angleFactor := 0.25
		if a.prevAngle == 0 {
			angleFactor = 1.0
		}
		a.prevAngle += angleDiff * angleFactor
		a.state = acquireFine
	}

	for i := 0; i < want; i++ {
		c := a.inBuffer[i].toComplex()
		if a.mode == BandFM {
			c = cmplx.Conj(c)
		}
		a.buffer[i] = c
	}

	angle := a.prevAngle - 2*math.Pi*float64(a.cfo)
	a.phase *= cmplx.Exp(complex(0, -(float64(a.fftcp)/2-float64(samperr))*angle/float64(a.fft)))
	phaseIncrement := cmplx.Exp(complex(0, angle/float64(a.fft)))

	if a.mode == BandAM {
		phaseIncrement, a.phase = a.amCFOSearch(phaseIncrement, samperr, wasFine)
	}

	for i := 0; i < acquireSymbols; i++ {
		offset := 0
		if a.mode == BandAM {
			offset = (FFTSizeAM - CPSizeAM) / 2
		}
		for j := 0; j < a.fftcp; j++ {
			sample := a.phase * a.buffer[i*a.fftcp+j+samperr]
			switch {
			case j < a.cp:
				a.fftin[(j+offset)%a.fft] = complex(a.shape[j], 0) * sample
			case j < a.fft:
				a.fftin[(j+offset)%a.fft] = sample
			default:
				a.fftin[(j+offset)%a.fft] += complex(a.shape[j], 0) * sample
			}
			a.phase *= phaseIncrement
		}
		a.phase /= complex(cmplx.Abs(a.phase), 0)

		plan := a.fftPlanFM
		if a.mode == BandAM {
			plan = a.fftPlanAM
		}
		out := make([]complex128, a.fft)
		plan.Coefficients(out, a.fftin)
		fftShift(out)
		sy.push(out)
	}

	keep := a.fftcp + (a.fftcp/2 - samperr) + a.keepExtra
	a.keepExtra = 0
	copy(a.inBuffer[0:keep], a.inBuffer[a.idx-keep:a.idx])
	a.idx = keep
}

// amCFOSearch runs AM's center-carrier CFO tracking: a trial mix+FFT pass
// over acquireSymbols symbols (using a scratch copy of phase so it doesn't
// disturb the real mixing loop that follows), accumulating center-carrier
// bin magnitudes to pick an integer CFO correction and a sum_xy/sum_x2
// linear regression of the per-symbol center-carrier phase to refine the
// fractional frequency. Only runs the integer bin search while still
// acquiring (wasFine false); once locked, only the regression correction
// applies each pass.
func (a *acquire) amCFOSearch(phaseIncrement complex128, samperr int, wasFine bool) (complex128, complex128) {
	offset := (FFTSizeAM - CPSizeAM) / 2
	tempPhase := a.phase

	var sumY, sumXY, sumX2, y float64
	var lastCarrier complex128
	magSums := make([]float64, FFTSizeAM)

	for i := 0; i < acquireSymbols; i++ {
		for j := 0; j < a.fftcp; j++ {
			sample := tempPhase * a.buffer[i*a.fftcp+j+samperr]
			switch {
			case j < a.cp:
				a.fftin[(j+offset)%a.fft] = complex(a.shape[j], 0) * sample
			case j < a.fft:
				a.fftin[(j+offset)%a.fft] = sample
			default:
				a.fftin[(j+offset)%a.fft] += complex(a.shape[j], 0) * sample
			}
			tempPhase *= phaseIncrement
		}
		tempPhase /= complex(cmplx.Abs(tempPhase), 0)

		out := make([]complex128, a.fft)
		a.fftPlanAM.Coefficients(out, a.fftin)
		fftShift(out)

		x := float64(a.fftcp) * (float64(i) - float64(acquireSymbols-1)/2)
		if i == 0 {
			y = cmplx.Phase(out[centerAM])
		} else {
			y += cmplx.Phase(out[centerAM] / lastCarrier)
		}
		lastCarrier = out[centerAM]

		sumY += y
		sumXY += x * y
		sumX2 += x * x

		if !wasFine {
			for j := centerAM - pidsOuterIndexAM; j <= centerAM+pidsOuterIndexAM; j++ {
				magSums[j] += cmplx.Abs(out[j])
			}
		}
	}

	if !wasFine {
		maxMag := -1.0
		maxIndex := -1
		for j := centerAM - pidsOuterIndexAM; j <= centerAM+pidsOuterIndexAM; j++ {
			if magSums[j] > maxMag {
				maxMag = magSums[j]
				maxIndex = j
			}
		}
		a.cfoAdjust(maxIndex - centerAM)
	}

	phaseIncrement *= cmplx.Exp(complex(0, -sumXY/sumX2))
	// Empirical bias of -0.06 rad/symbol; kept for bit-compatibility with the
	// reference decoder. Undocumented origin, flagged as an open question.
	phase := a.phase * cmplx.Exp(complex(0, -sumY/float64(acquireSymbols)+(sumXY/sumX2)*float64(acquireSymbols)*float64(a.fftcp)/2-0.06))
	return phaseIncrement, phase
}

// fftShift swaps the two halves of a spectrum so bin 0 lands at the center,
// matching fftwf's layout expectation in the reference acquisition code.
func fftShift(buf []complex128) {
	n := len(buf)
	half := n / 2
	for i := 0; i < half; i++ {
		buf[i], buf[i+half] = buf[i+half], buf[i]
	}
}

// acquireFilterTapsFM and acquireFilterTapsAM are fixed lowpass filters
// applied before cyclic-prefix autocorrelation, one per band.
var acquireFilterTapsFM = []float64{
	-0.000685643230099231, 0.005636964458972216, 0.009015781804919243,
	-0.015486305579543114, -0.035108357667922974, 0.017446253448724747,
	0.08155813068151474, 0.007995186373591423, -0.13311293721199036,
	-0.0727422907948494, 0.15914097428321838, 0.16498781740665436,
	-0.1324498951435089, -0.2484012246131897, 0.051773931831121445,
	0.2821577787399292, 0.051773931831121445, -0.2484012246131897,
	-0.1324498951435089, 0.16498781740665436, 0.15914097428321838,
	-0.0727422907948494, -0.13311293721199036, 0.007995186373591423,
	0.08155813068151474, 0.017446253448724747, -0.035108357667922974,
	-0.015486305579543114, 0.009015781804919243, 0.005636964458972216,
	-0.000685643230099231, 0,
}

var acquireFilterTapsAM = []float64{
	-0.00038464731187559664, -0.00021618751634377986, 0.0026779419276863337,
	-0.00029802651260979474, -0.0012626448879018426, -0.0013182522961869836,
	-0.012252614833414555, 0.015980124473571777, 0.037112727761268616,
	-0.05451361835002899, -0.05804193392395973, 0.11320608854293823,
	0.055298302322626114, -0.16878043115139008, -0.022917453199625015,
	0.19178225100040436, -0.022917453199625015, -0.16878043115139008,
	0.055298302322626114, 0.11320608854293823, -0.05804193392395973,
	-0.05451361835002899, 0.037112727761268616, 0.015980124473571777,
	-0.012252614833414555, -0.0013182522961869836, -0.0012626448879018426,
	-0.00029802651260979474, 0.0026779419276863337, -0.00021618751634377986,
	-0.00038464731187559664, 0,
}
