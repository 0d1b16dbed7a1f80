package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(program int, cb EventHandler) *Session {
	return NewSession(Config{Band: BandFM, Program: program, Callback: cb})
}

func TestNewSessionBuildsIdleSession(t *testing.T) {
	s := newTestSession(0, nil)
	assert.False(t, s.running)
	assert.Equal(t, 0, s.Config().Program)
}

func TestSetModeRejectedWhileRunning(t *testing.T) {
	s := newTestSession(0, nil)
	s.running = true

	err := s.SetMode(BandAM)
	assert.ErrorIs(t, err, ErrConfigRejected)
	assert.Equal(t, BandFM, s.Config().Band)
}

func TestSetModeAcceptedWhileStopped(t *testing.T) {
	s := newTestSession(0, nil)

	err := s.SetMode(BandAM)
	require.NoError(t, err)
	assert.Equal(t, BandAM, s.Config().Band)
	assert.Same(t, s.syncTr, s.input.syncTr)
}

func TestSetProgramUpdatesConfigLiveEvenWhileRunning(t *testing.T) {
	s := newTestSession(0, nil)
	s.running = true

	s.SetProgram(4)

	assert.Equal(t, 4, s.Config().Program)
	assert.Equal(t, 4, s.frame.program)
}

func TestHandleAASFiltersByProgram(t *testing.T) {
	var events []Event
	s := newTestSession(1, func(e Event) { events = append(events, e) })

	s.handleAAS(2, []byte("skip me"))
	assert.Empty(t, events)

	s.handleAAS(1, []byte("take me"))
	require.Len(t, events, 1)
	assert.Equal(t, EventID3, events[0].Kind)
	assert.Equal(t, []byte("take me"), events[0].ID3.Raw)
}

func TestHandlePDUFiltersByProgram(t *testing.T) {
	var events []Event
	s := newTestSession(3, func(e Event) { events = append(events, e) })

	s.handlePDU(0, 0, []byte{0x01})
	assert.Empty(t, events)

	s.handlePDU(3, 1, []byte{0x02, 0x03})
	require.Len(t, events, 1)
	assert.Equal(t, EventHDC, events[0].Kind)
	assert.Equal(t, []byte{0x02, 0x03}, events[0].HDC)
}

func TestSessionDispatchesSISOnDecodedPIDSPayload(t *testing.T) {
	var events []Event
	s := newTestSession(0, func(e Event) { events = append(events, e) })

	frame := make([]byte, 80)
	off := 2
	putBits(frame, &off, 1, 4) // msg_id = 1 (short name)
	putBits(frame, &off, 4, 5)
	putBits(frame, &off, 5, 5)
	putBits(frame, &off, 6, 5)
	putBits(frame, &off, 7, 5)
	putBits(frame, &off, 0, 2)

	s.pids.decodeSIS(frame)

	require.Len(t, events, 1)
	assert.Equal(t, EventSIS, events[0].Kind)
	assert.Equal(t, "EFGH", events[0].SIS.Name)
}

func TestSetCallbackIsSafeToChangeAfterConstruction(t *testing.T) {
	s := newTestSession(0, nil)
	var called bool
	s.SetCallback(func(Event) { called = true })

	s.handleAAS(0, []byte("x"))
	assert.True(t, called)
}
