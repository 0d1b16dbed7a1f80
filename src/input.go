package nrsc5

import "sync"

// inputBufLen bounds the ring buffer between the device callback and the
// DSP worker goroutine; it must comfortably hold the deepest acquire+sync
// backlog the pipeline can accumulate between worker wakeups.
const inputBufLen = 2048 * 32 * 8

// inputWorker is the front-end stage: it owns the Q15 channel filter and
// polyphase resampler, ring-buffers their output, and runs a dedicated
// goroutine that drains the ring into Acquire/Sync/Decode. It corresponds
// to input_t plus its worker thread.
type inputWorker struct {
	mu   sync.Mutex
	cond *sync.Cond

	buffer   []cint16
	avail    int
	used     int
	skip     int
	resampRate float64

	filter     *firDecimQ15 // cu8 path: 1 488 375 Sa/s -> 744 187.5 Sa/s, decim=2
	filterCS16 *firDecimQ15 // cs16 path: already at 744 187.5 Sa/s, decim=1
	resamp     *resampQ15

	acq    *acquire
	syncTr *syncTracker
	decode *decodeState

	outfp func([]byte) // optional raw-sample capture sink

	leftoverCU8  []byte // up to 3 residual bytes from a misaligned cu8 push
	leftoverCS16 *int16 // one residual sample from a misaligned cs16 push

	started bool
}

func newInputWorker(decode *decodeState, acq *acquire, sy *syncTracker) *inputWorker {
	prototype := kaiserPrototype(16, 16, 0.45/16, 7.0)
	w := &inputWorker{
		buffer:     make([]cint16, inputBufLen),
		filter:     newFIRDecimQ15(inputFilterTaps, 2),
		filterCS16: newFIRDecimQ15(inputFilterTaps, 1),
		resamp:     newResampQ15(16, 16, prototype),
		acq:        acq,
		syncTr:     sy,
		decode:     decode,
		resampRate: 1.0,
	}
	w.cond = sync.NewCond(&w.mu)
	sy.input = acq
	return w
}

func (w *inputWorker) reset() {
	w.avail = 0
	w.used = 0
	w.skip = 0
	w.resampRate = 1.0
}

func (w *inputWorker) setSkip(n int) { w.skip = n }

func (w *inputWorker) rateAdjust(adj float64) { w.resampRate += adj }

// start launches the DSP worker goroutine; it runs for the lifetime of the
// Session, draining newly available samples into Acquire/Sync each time the
// device callback signals.
func (w *inputWorker) start() {
	if w.started {
		return
	}
	w.started = true
	go w.run()
}

func (w *inputWorker) run() {
	for {
		w.mu.Lock()
		for w.avail-w.used < w.acq.fftcp {
			w.cond.Wait()
		}
		if w.skip > 0 {
			remaining := w.avail - w.used
			if w.skip > remaining {
				w.skip -= remaining
				w.used = w.avail
			} else {
				w.used += w.skip
				w.skip = 0
			}
		}
		w.used += w.acq.push(w.buffer[w.used:w.avail])
		w.mu.Unlock()
		w.cond.Signal()

		w.acq.process(w.syncTr)
	}
}

// wait blocks until the ring buffer has drained below a watermark, or
// (flush) entirely, then optionally waits for the sync worker to catch up.
func (w *inputWorker) wait(flush bool) {
	w.mu.Lock()
	threshold := 256 * w.acq.fftcp
	if flush {
		threshold = w.acq.fftcp
	}
	for w.avail-w.used > threshold {
		w.cond.Wait()
	}
	w.mu.Unlock()

	if flush {
		w.syncTr.wait()
	}
}

// pushCU8 ingests one rtl_tcp-style buffer of interleaved unsigned-8-bit
// I/Q samples, running them through the channel filter and resampler before
// appending to the ring buffer. A trailing residue of 1-3 bytes (less than
// one cint16 pair) is buffered and prepended to the next call, per the
// front-end's "rejects misaligned residues" contract.
func (w *inputWorker) pushCU8(rawBuf []byte) {
	if w.outfp != nil {
		w.outfp(rawBuf)
	}

	buf := rawBuf
	if len(w.leftoverCU8) > 0 {
		buf = append(append([]byte(nil), w.leftoverCU8...), rawBuf...)
		w.leftoverCU8 = nil
	}

	cnt := len(buf) / 4
	if rem := len(buf) % 4; rem > 0 {
		w.leftoverCU8 = append([]byte(nil), buf[cnt*4:]...)
	}

	w.mu.Lock()
	if cnt+w.avail > inputBufLen {
		if w.avail > w.used {
			copy(w.buffer, w.buffer[w.used:w.avail])
			w.avail -= w.used
			w.used = 0
		} else {
			w.avail, w.used = 0, 0
		}
	}
	newAvail := w.avail
	w.resamp.setRate(w.resampRate)
	w.mu.Unlock()

	if cnt+newAvail > inputBufLen {
		logger.Errorf("input buffer overflow")
		return
	}

	resampOut := make([]complex128, 32)
	for i := 0; i < cnt; i++ {
		x0 := cint16{I: u8ToQ15(buf[i*4+0]), Q: u8ToQ15(buf[i*4+1])}
		x1 := cint16{I: u8ToQ15(buf[i*4+2]), Q: u8ToQ15(buf[i*4+3])}

		y := w.filter.execute([]cint16{x0, x1})
		n := w.resamp.execute(y.toComplex(), resampOut)
		for j := 0; j < n; j++ {
			w.buffer[newAvail] = fromComplex(resampOut[j])
			newAvail++
		}
	}

	w.mu.Lock()
	w.avail = newAvail
	w.mu.Unlock()
	w.cond.Signal()
}

func u8ToQ15(b byte) int16 {
	return (int16(b) - 127) << 8
}

// pushCS16 ingests one buffer of interleaved signed-16-bit I/Q samples
// already at the baseband cs16 rate. A trailing odd sample (half an IQ
// pair) is buffered and prepended to the next call.
func (w *inputWorker) pushCS16(rawSamples []int16) {
	samples := rawSamples
	if w.leftoverCS16 != nil {
		samples = append([]int16{*w.leftoverCS16}, rawSamples...)
		w.leftoverCS16 = nil
	}

	cnt := len(samples) / 2
	if len(samples)%2 != 0 {
		last := samples[cnt*2]
		w.leftoverCS16 = &last
	}

	w.mu.Lock()
	if cnt+w.avail > inputBufLen {
		if w.avail > w.used {
			copy(w.buffer, w.buffer[w.used:w.avail])
			w.avail -= w.used
			w.used = 0
		} else {
			w.avail, w.used = 0, 0
		}
	}
	newAvail := w.avail
	w.resamp.setRate(w.resampRate)
	w.mu.Unlock()

	if cnt+newAvail > inputBufLen {
		logger.Errorf("input buffer overflow")
		return
	}

	resampOut := make([]complex128, 32)
	for i := 0; i < cnt; i++ {
		x := cint16{I: samples[i*2+0], Q: samples[i*2+1]}

		y := w.filterCS16.execute([]cint16{x})
		n := w.resamp.execute(y.toComplex(), resampOut)
		for j := 0; j < n; j++ {
			w.buffer[newAvail] = fromComplex(resampOut[j])
			newAvail++
		}
	}

	w.mu.Lock()
	w.avail = newAvail
	w.mu.Unlock()
	w.cond.Signal()
}

// inputFilterTaps is the shared channel-select lowpass ahead of the
// polyphase resampler, applied at decim=2 on the cu8 path and decim=1 on
// the cs16 path.
var inputFilterTaps = []float64{
	-0.006910541036924275, -0.013268228805145532, -0.006644557670245421,
	0.018375039238181595, 0.04259143500924495, 0.03712705276833042,
	0.0017215227032129474, -0.024593813581821018, -0.009907236685353248,
	0.01767132823382834, -0.008287758762202712, -0.10098124598840287,
	-0.17157955612468512, -0.10926609589776617, 0.08158909906685183,
	0.25361698433482543, 0.25361698433482543, 0.08158909906685183,
	-0.10926609589776617, -0.17157955612468512, -0.10098124598840287,
	-0.008287758762202712, 0.01767132823382834, -0.009907236685353248,
	-0.024593813581821018, 0.0017215227032129474, 0.03712705276833042,
	0.04259143500924495, 0.018375039238181595, -0.006644557670245421,
	-0.013268228805145532, -0.006910541036924275,
}
