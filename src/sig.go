package nrsc5

import "strconv"

// Station Information Guide (SIG) projection: the reference receiver
// builds its SIG table from a separate, L1-carried service/component
// linked-list structure (out of scope for this library, per spec.md's
// "SIG table construction" external-collaborator boundary). What IS in
// scope is PIDS msg_id 6's audio/data service descriptor state, which
// already gives programs an access/type/MIME classification; this file
// projects that state into the same owned-slice-of-records shape the
// real SIG table would produce (§9's "pointer-based linked lists ->
// owned vectors" redesign direction). Session does not call
// buildSIGTable and dispatches no EventSIG.

// SIGComponent is one component of a SIGService: the audio or data
// stream that makes up part of a multicast program.
type SIGComponent struct {
	IsData   bool
	ID       int
	Access   int
	Type     int // program type (audio) or service data type (data)
	SoundExp int // audio components only
	MIMEType uint32
	Port     uint16
}

// SIGService is one projected SIG record: a numbered audio or data
// service with its component list.
type SIGService struct {
	IsData     bool
	Number     int
	Name       string
	Components []SIGComponent
}

// buildSIGTable projects the PIDS audio/data service descriptor arrays
// into a SIG service list. Audio program 0 is always "MPS" (Main
// Program Service); the rest are "SPSn" per convention.
func buildSIGTable(st *pidsState) []SIGService {
	var out []SIGService

	for prog, svc := range st.audioServices {
		if svc.typ == -1 {
			continue
		}
		name := "MPS"
		if prog != 0 {
			name = "SPS" + strconv.Itoa(prog)
		}
		out = append(out, SIGService{
			Number: prog,
			Name:   name,
			Components: []SIGComponent{{
				ID:       0,
				Access:   svc.access,
				Type:     svc.typ,
				SoundExp: svc.soundExp,
			}},
		})
	}

	for i, svc := range st.dataServices {
		if svc.typ == -1 {
			continue
		}
		out = append(out, SIGService{
			IsData: true,
			Number: i,
			Name:   "SIS" + strconv.Itoa(i),
			Components: []SIGComponent{{
				IsData:   true,
				ID:       0,
				Access:   svc.access,
				Type:     svc.typ,
				MIMEType: uint32(svc.mimeType),
			}},
		})
	}

	return out
}
