package nrsc5

import "github.com/golang/geo/s2"

// EventKind tags the payload carried by an Event, mirroring the reference
// receiver's event enum with one addition: PSMI is surfaced as its own
// event (the reference folds it into block-zero detection logging only),
// since the expanded spec calls it out as a first-class dispatch.
type EventKind int

const (
	EventLostDevice EventKind = iota
	EventIQ
	EventSync
	EventLostSync
	EventMER
	EventBER
	EventHDC
	EventAudio
	EventID3
	EventSIG
	EventLOT
	EventSIS
	EventStream
	EventPacket
	EventPSMI
)

func (k EventKind) String() string {
	switch k {
	case EventLostDevice:
		return "LOST_DEVICE"
	case EventIQ:
		return "IQ"
	case EventSync:
		return "SYNC"
	case EventLostSync:
		return "LOST_SYNC"
	case EventMER:
		return "MER"
	case EventBER:
		return "BER"
	case EventHDC:
		return "HDC"
	case EventAudio:
		return "AUDIO"
	case EventID3:
		return "ID3"
	case EventSIG:
		return "SIG"
	case EventLOT:
		return "LOT"
	case EventSIS:
		return "SIS"
	case EventStream:
		return "STREAM"
	case EventPacket:
		return "PACKET"
	case EventPSMI:
		return "PSMI"
	default:
		return "UNKNOWN"
	}
}

// Event is the single tagged union dispatched through Session's callback.
// Slice/string fields borrow from worker-owned scratch and are valid only
// for the duration of the callback invocation.
type Event struct {
	Kind EventKind

	IQ      []byte
	BER     float64
	MERLower, MERUpper float64

	Program int
	HDC     []byte
	Audio   []int16

	ID3 ID3Info

	Stream PDU
	Packet PDU
	LOT    LOTInfo
	SIG    []SIGService
	SIS    SISInfo
	PSMI   int
}

// ID3Info carries program-associated text, mirroring nrsc5_event_t's id3
// union member.
type ID3Info struct {
	Program           int
	Title, Artist, Album, Genre string
	UFIDOwner, UFIDID string
	XHDRMime          uint32
	XHDRParam, XHDRLot int

	// Raw is the undecoded AAS payload (protocol byte and FCS already
	// stripped). Structured tag fields above are populated only when a
	// higher layer parses the ID3 frame format out of Raw; this pipeline
	// dispatches the payload boundary, not the tag-binary format itself.
	Raw []byte
}

// PDU is a stream or packet service delivery unit.
type PDU struct {
	Port uint16
	Seq  uint16
	MIME uint32
	Data []byte
}

// LOTInfo describes a Large Object Transfer delivery (file reassembly
// itself is out of scope; this only carries one already-reassembled
// object's metadata plus bytes, when a consumer has supplied them).
type LOTInfo struct {
	Port uint16
	LOT  uint32
	MIME uint32
	Name string
	Data []byte
}

// EventHandler receives events synchronously on the DSP worker thread; it
// must not block for long, since it is called inline with decode progress.
type EventHandler func(Event)

// AudioServiceDescriptor is one entry of the SIS audio service descriptor
// list (msg_id 6, category 0), replacing the reference's
// nrsc5_sis_asd_t linked list with an owned slice entry.
type AudioServiceDescriptor struct {
	Program  int
	Access   int
	Type     int
	SoundExp int
}

// DataServiceDescriptor is one entry of the SIS data service descriptor
// list (msg_id 6, category 1), replacing nrsc5_sis_dsd_t.
type DataServiceDescriptor struct {
	Access   int
	Type     int
	MIMEType uint32
}

// SISInfo is the consolidated Station Information Service snapshot
// dispatched whenever any field changes, mirroring pids.c's report():
// every known field is carried, not just the one that just changed.
type SISInfo struct {
	CountryCode   string
	FCCFacilityID int
	Name          string
	LongName      string
	Slogan        string
	Message       string
	Alert         string

	HasLocation bool
	Location    s2.LatLng
	Altitude    int

	AudioServices []AudioServiceDescriptor
	DataServices  []DataServiceDescriptor
}
