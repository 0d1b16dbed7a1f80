package nrsc5

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// audioSinkBufLen is the PCM sink's fixed buffer size, in int16 samples
// (stereo pairs), and audioSinkBufCount the depth of its free-list —
// the third pipeline thread's back-pressure budget per spec §5.
const (
	audioSinkBufLen   = 8192
	audioSinkBufCount = 32
)

// AudioSink is the PCM output worker (thread 3 of the spec's concurrency
// contract): it owns a free-list of fixed-size buffers, decoded audio
// events enqueue onto it, and a dedicated goroutine drains the queue into
// a live portaudio output stream.
type AudioSink struct {
	stream *portaudio.Stream

	mu      sync.Mutex
	cond    *sync.Cond
	free    [][]int16
	pending [][]int16
	closed  bool
}

// NewAudioSink opens the default portaudio output device at
// SampleRateAudio in stereo 16-bit, with a free-list of audioSinkBufCount
// buffers of audioSinkBufLen samples each.
func NewAudioSink() (*AudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("nrsc5: portaudio init: %w", err)
	}

	s := &AudioSink{
		free: make([][]int16, 0, audioSinkBufCount),
	}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < audioSinkBufCount; i++ {
		s.free = append(s.free, make([]int16, audioSinkBufLen))
	}

	out := make([]int16, audioSinkBufLen)
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(SampleRateAudio), len(out)/2, &out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("nrsc5: opening audio stream: %w", err)
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("nrsc5: starting audio stream: %w", err)
	}

	go s.run(out)
	return s, nil
}

// Push enqueues one decoded stereo PCM buffer for playback, borrowing a
// buffer from the free-list (blocking if none is available — the sink's
// back-pressure signal to the decode pipeline).
func (s *AudioSink) Push(samples []int16) {
	s.mu.Lock()
	for len(s.free) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		s.mu.Unlock()
		return
	}
	buf := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.mu.Unlock()

	n := copy(buf, samples)
	for ; n < len(buf); n++ {
		buf[n] = 0
	}

	s.mu.Lock()
	s.pending = append(s.pending, buf)
	s.mu.Unlock()
	s.cond.Signal()
}

// run drains pending buffers into the portaudio stream, returning emptied
// buffers to the free-list.
func (s *AudioSink) run(out []int16) {
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed && len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		buf := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		copy(out, buf)
		if err := s.stream.Write(); err != nil {
			logger.Errorf("audio write failed: %v", err)
		}

		s.mu.Lock()
		s.free = append(s.free, buf)
		s.mu.Unlock()
		s.cond.Signal()
	}
}

// Close stops playback and releases the portaudio stream and device.
func (s *AudioSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()

	err := s.stream.Stop()
	s.stream.Close()
	portaudio.Terminate()
	return err
}
