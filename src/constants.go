// Package nrsc5 implements an HD Radio (NRSC-5) hybrid FM/AM software receiver:
// sample front-end, OFDM acquisition/synchronization, Viterbi/interleaving,
// Layer 2 frame parsing, and PIDS/SIS parsing, dispatched through a single
// event callback.
package nrsc5

// Band selects which waveform variant (FM or AM hybrid) is being decoded.
type Band int

const (
	BandFM Band = iota
	BandAM
)

// OFDM waveform geometry. FM and AM use different FFT/cyclic-prefix sizes.
const (
	FFTSizeFM = 2048
	CPSizeFM  = 112
	SymbolsFM = FFTSizeFM + CPSizeFM // 2160 samples/symbol

	FFTSizeAM = 256
	CPSizeAM  = 28
	SymbolsAM = FFTSizeAM + CPSizeAM // 284 samples/symbol

	BlockSizeFM    = 32 // OFDM symbols per P1 block
	BlocksPerFrame = 16

	// Reference/data subcarrier layout, per frequency band (upper/lower).
	RefsPerBand  = 11
	DataPerBand  = 180
	BandLength   = RefsPerBand + DataPerBand
	TotalRefs    = RefsPerBand * 2
	TotalData    = DataPerBand * 2
	LowerBandStart = 1024 - 546
	UpperBandStart = 1024 + 356
	UpperBandOffset = UpperBandStart - LowerBandStart
	SyncSearchLen   = UpperBandOffset + BandLength

	// Sample rates, Hz.
	SampleRateAudio = 44100
	SampleRateCU8   = 1488375 // rtl_tcp native front-end rate
	SampleRateCS16  = 744187.5

	// Layer 2 audio superframe length in bits.
	FrameLenBits = 146176
)

// PIDS/SIS frame geometry.
const (
	PIDSFrameBits   = 80
	PIDSCRCBits     = 12
	PIDSPayloadBits = PIDSFrameBits - PIDSCRCBits
)

// Reed-Solomon field/code parameters for the Layer 2 PCI header protection.
const (
	RSFieldBits   = 8
	RSFieldSize   = 1 << RSFieldBits // 256
	RSGenPoly     = 0x11D
	RSCodeN       = 96
	RSCodeK       = 80
	RSParitySyms  = RSCodeN - RSCodeK // 16
)

// Convolutional code parameters (tail-biting K=7 rate-1/3, punctured).
const (
	ConvConstraintLength = 7
	ConvNumOutputs       = 3
)

// ConvGeneratorPolys are the three octal generator polynomials for the
// rate-1/3 K=7 convolutional code used across P1/P3/PIDS.
var ConvGeneratorPolys = [ConvNumOutputs]uint8{0133, 0171, 0165}

// Descrambler LFSR: x^11 + x^9 + 1, initialized to all-ones (0x3FF spans the
// low 10 bits of an 11-bit state — see descramble in interleave.go).
const (
	ScramblerPolyTap1 = 11
	ScramblerPolyTap2 = 9
	ScramblerInit     = 0x3FF
)
