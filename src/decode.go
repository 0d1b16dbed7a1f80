package nrsc5

// decodeState pulls together Sync's two soft-bit streams (the P1/PIDS
// interleaved stream "pm", and P3's "px1") with the deinterleaver, Viterbi
// decoder, and descrambler, dispatching fully decoded frames to whichever
// higher layer registered a callback. It is the Go analogue of decode_t,
// with decode_push_pm/decode_push_px1's inline triggers made explicit
// methods instead of macros.
type decodeState struct {
	deint *deinterleaveState
	p3    p3State

	bufferPM  []softBit
	idxPM     int
	bufferPX1 []softBit
	idxPX1    int

	onP1   func(bits []byte)
	onPIDS func(bits []byte)
	onP3   func(bits []byte)
	onBER  func(float64)
}

const (
	pmBlockBits  = p1BlockStride * BlockSizeFM // 720*32
	pmTotalBits  = pmBlockBits * 16
	px1BlockBits = 144 * BlockSizeFM * 2
)

func newDecodeState() *decodeState {
	d := &decodeState{
		deint:     newDeinterleaveState(pmTotalBits, px1BlockBits, p3PrimeBits),
		bufferPM:  make([]softBit, pmTotalBits),
		bufferPX1: make([]softBit, px1BlockBits),
	}
	return d
}

// blockCounter is the running P1 block index, decode_get_block's Go form.
func (d *decodeState) blockCounter() int { return d.idxPM / pmBlockBits }

func (d *decodeState) pushPM(sbit softBit) {
	d.bufferPM[d.idxPM] = sbit
	d.idxPM++
	if d.idxPM%pmBlockBits == 0 {
		d.processPIDS()
	}
	if d.idxPM == pmTotalBits {
		d.processP1()
		d.idxPM = 0
	}
}

func (d *decodeState) pushPX1(sbit softBit) {
	d.bufferPX1[d.idxPX1] = sbit
	d.idxPX1++
	if d.idxPX1%px1BlockBits == 0 {
		d.processP3()
		d.idxPX1 = 0
	}
}

func (d *decodeState) processP1() {
	coded := deinterleaveP1(d.bufferPM)
	decoded := viterbiDecode(coded, len(coded)/viterbiN)
	if d.onBER != nil {
		d.onBER(calcCBER(coded, decoded))
	}
	descramble(decoded)
	if d.onP1 != nil {
		d.onP1(decoded)
	}
}

func (d *decodeState) processPIDS() {
	blockIdx := d.blockCounter() - 1
	if blockIdx < 0 {
		blockIdx += 16
	}
	coded := deinterleavePIDS(d.bufferPM, blockIdx)
	decoded := viterbiDecode(coded, len(coded)/viterbiN)
	if d.onPIDS != nil {
		d.onPIDS(decoded)
	}
}

func (d *decodeState) processP3() {
	out, ready := deinterleaveP3(&d.p3, d.deint.internalP3, d.bufferPX1)
	if !ready {
		return
	}
	decoded := viterbiDecode(out, len(out)/viterbiN)
	descramble(decoded)
	if d.onP3 != nil {
		d.onP3(decoded)
	}
}

func (d *decodeState) reset() {
	d.idxPM = 0
	d.idxPX1 = 0
	d.p3 = p3State{}
}
