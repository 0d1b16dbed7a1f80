package nrsc5

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// rtl_tcp command opcodes, unchanged from librtlsdr's wire protocol.
const (
	rtltcpSetCenterFreq   = 0x01
	rtltcpSetSampleRate   = 0x02
	rtltcpSetTunerGainMode = 0x03
	rtltcpSetTunerGain    = 0x04
	rtltcpSetFreqCorrection = 0x05
	rtltcpSetDirectSampling = 0x09
	rtltcpSetOffsetTuning = 0x0a
	rtltcpSetBiasTee     = 0x0e
)

// RTLTCPClient is a thin client for the rtl_tcp wire protocol: a 12-byte
// dongle-info header on connect, followed by a stream of cu8 I/Q samples,
// with tuning controlled by fire-and-forget {cmd byte, param uint32 BE}
// commands sent back over the same connection.
type RTLTCPClient struct {
	conn       net.Conn
	TunerType  uint32
	GainCount  uint32
}

// DialRTLTCP connects to an rtl_tcp server at addr and reads its
// dongle-info header.
func DialRTLTCP(addr string) (*RTLTCPClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: dialing rtl_tcp: %w", err)
	}

	var hdr [12]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("nrsc5: reading dongle info: %w", err)
	}
	if string(hdr[0:4]) != "RTL0" {
		conn.Close()
		return nil, fmt.Errorf("nrsc5: bad dongle info magic %q", hdr[0:4])
	}

	return &RTLTCPClient{
		conn:      conn,
		TunerType: binary.BigEndian.Uint32(hdr[4:8]),
		GainCount: binary.BigEndian.Uint32(hdr[8:12]),
	}, nil
}

func (c *RTLTCPClient) sendCommand(cmd byte, param uint32) error {
	var buf [5]byte
	buf[0] = cmd
	binary.BigEndian.PutUint32(buf[1:], param)
	_, err := c.conn.Write(buf[:])
	return err
}

// SetCenterFreq tunes the dongle's LO to hz.
func (c *RTLTCPClient) SetCenterFreq(hz uint32) error {
	return c.sendCommand(rtltcpSetCenterFreq, hz)
}

// SetSampleRate requests a new native sample rate.
func (c *RTLTCPClient) SetSampleRate(sps uint32) error {
	return c.sendCommand(rtltcpSetSampleRate, sps)
}

// SetTunerGainMode selects manual (1) or automatic (0) gain.
func (c *RTLTCPClient) SetTunerGainMode(manual bool) error {
	var v uint32
	if manual {
		v = 1
	}
	return c.sendCommand(rtltcpSetTunerGainMode, v)
}

// SetTunerGain sets manual gain in tenths of a dB.
func (c *RTLTCPClient) SetTunerGain(tenthsDB int32) error {
	return c.sendCommand(rtltcpSetTunerGain, uint32(tenthsDB))
}

// SetFreqCorrection sets the crystal frequency correction in PPM.
func (c *RTLTCPClient) SetFreqCorrection(ppm int32) error {
	return c.sendCommand(rtltcpSetFreqCorrection, uint32(ppm))
}

// SetDirectSampling selects the direct-sampling input (0=off, 1=I, 2=Q).
func (c *RTLTCPClient) SetDirectSampling(mode uint32) error {
	return c.sendCommand(rtltcpSetDirectSampling, mode)
}

// SetOffsetTuning enables/disables offset tuning (E4000 tuners).
func (c *RTLTCPClient) SetOffsetTuning(enable bool) error {
	var v uint32
	if enable {
		v = 1
	}
	return c.sendCommand(rtltcpSetOffsetTuning, v)
}

// SetBiasTee enables/disables the bias-tee power feed on supported dongles.
func (c *RTLTCPClient) SetBiasTee(enable bool) error {
	var v uint32
	if enable {
		v = 1
	}
	return c.sendCommand(rtltcpSetBiasTee, v)
}

// Read fills buf with raw cu8 I/Q sample bytes, matching rtltcp_read's
// "keep recv'ing until buf is full or the peer closes" loop.
func (c *RTLTCPClient) Read(buf []byte) (int, error) {
	return io.ReadFull(c.conn, buf)
}

// Close shuts down the underlying connection.
func (c *RTLTCPClient) Close() error {
	return c.conn.Close()
}

// tunerGains mirrors rtltcp_get_tuner_gains' static tables, in tenths of a
// dB, keyed by rtl-sdr tuner type ID.
var tunerGains = map[uint32][]int{
	1: {-10, 15, 40, 65, 90, 115, 140, 165, 190, 215, 240, 290, 340, 420},     // E4000
	2: {-99, -40, 71, 179, 192},                                              // FC0012
	3: {-99, -73, -65, -63, -60, -58, -54, 58, 61, 63, 65, 67, 68, 70, 71, 179, 181, 182, 184, 186, 188, 191, 197}, // FC0013
	4: {0}, // FC2580, no discrete gain values
	5: {0, 9, 14, 27, 37, 77, 87, 125, 144, 157, 166, 197, 207, 229, 254, 280, 297, 328, 338, 364, 372, 386, 402, 421, 434, 439, 445, 480, 496}, // R820T/R828D
}

// TunerGains returns the discrete gain steps (tenths of a dB) known for
// the connected tuner type, or nil if unknown.
func (c *RTLTCPClient) TunerGains() []int {
	return tunerGains[c.TunerType]
}
