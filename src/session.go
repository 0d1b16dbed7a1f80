package nrsc5

import (
	"errors"
	"sync"
)

// Mode names a front-end sample format: ModeCU8 goes with PushCU8 and
// ModeCS16 with PushCS16. Session does not read Config.Mode; the Push*
// method a caller uses decides the format.
type Mode int

const (
	ModeCU8  Mode = iota // rtl_tcp-style unsigned 8-bit I/Q at SampleRateCU8
	ModeCS16             // signed 16-bit I/Q already at SampleRateCS16
)

// Config is the one-shot tuning/runtime configuration for a Session,
// mirroring the reference receiver's nrsc5_open/nrsc5_set_mode call
// surface collapsed into a single struct plus a callback.
type Config struct {
	Band      Band
	Mode      Mode
	Program   int // which audio program's PDUs/AAS dispatch as EventHDC/EventID3
	PPMError  int
	BiasTee   bool
	DirectSampling int

	Callback EventHandler
}

// ErrConfigRejected is returned by any Session mutator called while the
// session is running; the reference receiver requires stop-then-reconfigure
// rather than changing tuning parameters mid-stream.
var ErrConfigRejected = errors.New("nrsc5: configuration rejected while running")

// Session wires the front-end, acquisition, sync, decode, frame, and PIDS
// stages into the three-thread pipeline: the caller's own goroutine feeding
// Push* (the "device" thread), the DSP worker goroutine inputWorker.run
// spawns internally, and the sync worker goroutine sync.go's process runs
// on. All Event dispatch happens synchronously on the sync worker thread,
// exactly where decode callbacks fire, matching nrsc5's single-callback
// contract.
type Session struct {
	mu      sync.Mutex
	running bool

	cfg Config

	input  *inputWorker
	acq    *acquire
	syncTr *syncTracker
	decode *decodeState
	frame  *frameParser
	pids   *pidsState
}

// NewSession builds an idle, unstarted Session from cfg. Call Start to
// begin accepting Push* calls.
func NewSession(cfg Config) *Session {
	s := &Session{cfg: cfg}

	s.decode = newDecodeState()
	s.acq = newAcquire()
	s.syncTr = newSyncTracker(s.decode)
	s.input = newInputWorker(s.decode, s.acq, s.syncTr)
	s.frame = newFrameParser()
	s.pids = newPIDSState()

	s.frame.setProgram(cfg.Program)
	s.acq.setMode(cfg.Band)

	s.decode.onP1 = s.frame.push
	s.decode.onP3 = s.frame.push
	s.decode.onPIDS = func(bits []byte) { pidsFramePush(s.pids, bits) }
	s.decode.onBER = func(cber float64) { s.dispatch(Event{Kind: EventBER, BER: cber}) }

	s.syncTr.onSync = func() { s.dispatch(Event{Kind: EventSync}) }
	s.syncTr.onLostSync = func() { s.dispatch(Event{Kind: EventLostSync}) }
	s.syncTr.onMER = func(lower, upper float64) {
		s.dispatch(Event{Kind: EventMER, MERLower: lower, MERUpper: upper})
	}
	s.syncTr.onPSMI = func(psmi int) { s.dispatch(Event{Kind: EventPSMI, PSMI: psmi}) }

	s.pids.onSIS = func(info SISInfo) { s.dispatch(Event{Kind: EventSIS, SIS: info}) }

	s.frame.onAAS = s.handleAAS
	s.frame.onPDU = s.handlePDU

	return s
}

// dispatch invokes the registered callback, if any. It always runs on the
// sync worker goroutine, never the caller's Push* goroutine.
func (s *Session) dispatch(e Event) {
	if s.cfg.Callback != nil {
		s.cfg.Callback(e)
	}
}

// handleAAS routes a decoded Advanced Application Services payload. ID3
// tag fields (title/artist/album/...) are a binary sub-format layered on
// top of this payload that isn't decodable from the pipeline's own inputs
// alone; this dispatches the program number and raw payload bytes and
// leaves structured ID3 fields for a higher-layer tag parser to fill in.
func (s *Session) handleAAS(prog int, payload []byte) {
	if prog != s.cfg.Program {
		return
	}
	s.dispatch(Event{Kind: EventID3, ID3: ID3Info{Program: prog, Raw: payload}})
}

// handlePDU routes a reassembled stream/packet PDU. frame.go's onPDU hook
// carries only (program, streamID, payload); it has no codec field to
// distinguish an HDC audio superframe from a generic data PDU, since that
// distinction lives in the SIG service table (sig.go), not in the PCI
// header this reassembly is built from. Every PDU on the tuned program is
// therefore dispatched as EventHDC. The Session dispatches no EventSIG;
// the audio/data service descriptors carried by EventSIS are the service
// information a caller receives.
func (s *Session) handlePDU(prog, streamID int, payload []byte) {
	if prog != s.cfg.Program {
		return
	}
	s.dispatch(Event{Kind: EventHDC, Program: prog, HDC: payload})
}

// Config returns the session's current configuration snapshot.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetCallback installs the event handler. Safe to call at any time.
func (s *Session) SetCallback(cb EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Callback = cb
}

// Start launches the DSP and sync worker goroutines. Calling Start twice
// is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.input.start()
}

// Stop blocks until the input ring has drained, then marks the session
// idle; reconfiguration calls (SetFrequency, SetMode, SetGain) are only
// accepted while stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.input.wait(true)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Close releases the session; the pipeline goroutines are daemon-style and
// exit with the process, so Close just ensures Stop semantics have run.
func (s *Session) Close() {
	s.Stop()
}

// SetMode reconfigures the FFT/CP geometry for the FM/AM band split.
// Rejected while running; mode changes require Stop first, mirroring the
// reference receiver's requirement that mode switches happen between
// streams.
func (s *Session) SetMode(band Band) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrConfigRejected
	}
	s.cfg.Band = band
	s.acq.setMode(band)
	s.acq.reset()

	s.syncTr = newSyncTracker(s.decode)
	s.syncTr.input = s.acq
	s.syncTr.onSync = func() { s.dispatch(Event{Kind: EventSync}) }
	s.syncTr.onLostSync = func() { s.dispatch(Event{Kind: EventLostSync}) }
	s.syncTr.onMER = func(lower, upper float64) {
		s.dispatch(Event{Kind: EventMER, MERLower: lower, MERUpper: upper})
	}
	s.syncTr.onPSMI = func(psmi int) { s.dispatch(Event{Kind: EventPSMI, PSMI: psmi}) }
	s.input.syncTr = s.syncTr
	return nil
}

// SetFrequency is a config acceptance gate for callers driving their own
// SDR tuning (e.g. rtl_tcp); the Session itself has no direct hardware
// handle and does not store the value. It rejects the call while running.
func (s *Session) SetFrequency(hz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrConfigRejected
	}
	return nil
}

// SetGain is likewise a pass-through config acceptance gate; actual gain
// control lives in the rtl_tcp client or local SDR driver, not here.
func (s *Session) SetGain(db float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrConfigRejected
	}
	return nil
}

// SetProgram changes which audio program's PDUs/AAS this session dispatches
// as EventHDC/EventID3. Unlike tuning parameters this is accepted while
// running, matching nrsc5_set_program's live-switch behavior.
func (s *Session) SetProgram(program int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Program = program
	s.frame.setProgram(program)
}

// PushCU8 feeds one buffer of rtl_tcp-format unsigned 8-bit I/Q samples
// into the front end. Safe to call only while the session is running.
func (s *Session) PushCU8(buf []byte) {
	s.input.pushCU8(buf)
}

// PushCS16 feeds one buffer of signed 16-bit I/Q samples, already at the
// target baseband rate, into the front end.
func (s *Session) PushCS16(buf []int16) {
	s.input.pushCS16(buf)
}
