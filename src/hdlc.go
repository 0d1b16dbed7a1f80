package nrsc5

// HDLC framing wraps Program Service Data / Advanced Application Services:
// frames are delimited by the flag byte 0x7E, with 0x7D escaping (the next
// byte XORed with 0x20) used to keep flag and escape bytes out of the
// payload, and a trailing 16-bit CCITT FCS protecting the unescaped frame.

const (
	hdlcFlag   = 0x7E
	hdlcEscape = 0x7D
	hdlcXOR    = 0x20
)

// hdlcCRCTable is the reflected poly-0x8408 table of the PPP/HDLC FCS-16
// (CRC-16/X-25: hdlcFCS starts from 0xFFFF and XORs the result with 0xFFFF).
var hdlcCRCTable = buildHDLCCRCTable()

func buildHDLCCRCTable() [256]uint16 {
	var tab [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for b := 0; b < 8; b++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
		tab[i] = crc
	}
	return tab
}

func hdlcFCS(data []byte) uint16 {
	fcs := uint16(0xFFFF)
	for _, b := range data {
		fcs = (fcs >> 8) ^ hdlcCRCTable[(fcs^uint16(b))&0xff]
	}
	return fcs ^ 0xFFFF
}

// hdlcEscapeBytes byte-stuffs a frame body so it contains no literal flag
// or escape bytes, ready to be bracketed with 0x7E on both sides.
func hdlcEscapeBytes(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8+2)
	for _, b := range data {
		if b == hdlcFlag || b == hdlcEscape {
			out = append(out, hdlcEscape, b^hdlcXOR)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// hdlcUnescapeBytes reverses hdlcEscapeBytes. It is an involution's inverse
// by construction: unescape(escape(s)) == s for every byte sequence s.
func hdlcUnescapeBytes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == hdlcEscape && i+1 < len(data) {
			i++
			out = append(out, data[i]^hdlcXOR)
		} else {
			out = append(out, data[i])
		}
	}
	return out
}

// hdlcDecoder reassembles a byte stream delimited by 0x7E flags into
// unescaped, FCS-validated frames, discarding any frame shorter than three
// bytes or failing its checksum. The protocol byte is not checked here.
type hdlcDecoder struct {
	current []byte
	inFrame bool
}

// push feeds one raw byte and returns a validated, unescaped frame body
// (protocol byte and payload, FCS stripped) whenever a complete frame
// closes; ok is false otherwise or when the frame was rejected.
func (h *hdlcDecoder) push(b byte) (frame []byte, ok bool) {
	if b == hdlcFlag {
		if h.inFrame && len(h.current) > 0 {
			raw := hdlcUnescapeBytes(h.current)
			h.current = nil
			if len(raw) < 3 {
				return nil, false
			}
			payload, fcsBytes := raw[:len(raw)-2], raw[len(raw)-2:]
			want := uint16(fcsBytes[0]) | uint16(fcsBytes[1])<<8
			if hdlcFCS(payload) != want {
				logger.Warnf("HDLC frame failed FCS check")
				return nil, false
			}
			return payload, true
		}
		h.inFrame = true
		h.current = h.current[:0]
		return nil, false
	}
	if h.inFrame {
		h.current = append(h.current, b)
	}
	return nil, false
}

// encodeHDLCFrame wraps a payload (protocol byte plus body) with its FCS,
// escapes it, and brackets it with flag bytes on both ends.
func encodeHDLCFrame(payload []byte) []byte {
	fcs := hdlcFCS(payload)
	body := make([]byte, len(payload)+2)
	copy(body, payload)
	body[len(payload)] = byte(fcs)
	body[len(payload)+1] = byte(fcs >> 8)

	escaped := hdlcEscapeBytes(body)
	out := make([]byte, 0, len(escaped)+2)
	out = append(out, hdlcFlag)
	out = append(out, escaped...)
	out = append(out, hdlcFlag)
	return out
}
