package nrsc5

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormat = 1 // PCM, as opposed to float

// WAVWriter captures decoded stereo PCM audio to a WAV file, an optional
// consumer of EventAudio for offline analysis of a capture session.
type WAVWriter struct {
	f       *os.File
	enc     *wav.Encoder
	intBuf  *audio.IntBuffer
	scratch []int
}

// NewWAVWriter creates path and starts a WAV encoder at SampleRateAudio,
// 16-bit stereo.
func NewWAVWriter(path string) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: creating wav file: %w", err)
	}

	const channels, bitDepth = 2, 16
	enc := wav.NewEncoder(f, SampleRateAudio, bitDepth, channels, wavFormat)

	return &WAVWriter{
		f:   f,
		enc: enc,
		intBuf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: SampleRateAudio},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends one interleaved stereo int16 PCM buffer (as carried by
// Event.Audio) to the WAV stream.
func (w *WAVWriter) Write(samples []int16) error {
	w.scratch = w.scratch[:0]
	for _, s := range samples {
		w.scratch = append(w.scratch, int(s))
	}
	w.intBuf.Data = w.scratch
	return w.enc.Write(w.intBuf)
}

// Close finalizes the WAV header and closes the underlying file.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
