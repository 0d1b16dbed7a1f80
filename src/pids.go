package nrsc5

import (
	"bytes"
	"math"

	"github.com/golang/geo/s2"
)

// PIDS (Station Information Service) parsing: every PIDS frame is 80
// descrambled bits, bit-reversed within each byte-group of 8, carrying a
// 12-bit CRC over the leading 68 bits followed by a sequence of
// variable-length payloads tagged by a 4-bit msg_id. This file is the Go
// counterpart of pids.c: crc12 check, the ten msg_id payload layouts,
// and the long-name/message/slogan/alert multi-frame reassembly bitmaps.

const (
	maxAudioServices = 8
	maxDataServices  = 8
	numParameters    = 12

	sisCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ ?-*$ "
)

// crc12 implements the CRC over bits[0:68], poly 0xD010, processed LSB
// first (the reversed shift register pids.c uses), then final-XORed with
// 0x955, matching crc12() exactly.
func crc12(bits []byte) uint16 {
	const poly = 0xD010
	var reg uint16
	for i := 67; i >= 0; i-- {
		lowbit := reg & 1
		reg >>= 1
		reg ^= uint16(bits[i]) << 15
		if lowbit != 0 {
			reg ^= poly
		}
	}
	for i := 0; i < 16; i++ {
		lowbit := reg & 1
		reg >>= 1
		if lowbit != 0 {
			reg ^= poly
		}
	}
	reg ^= 0x955
	return reg & 0xfff
}

// checkCRC12 compares the trailing 12 bits of a descrambled PIDS frame
// against the computed CRC over its leading 68 bits.
func checkCRC12(bits []byte) bool {
	var expected uint16
	for i := 68; i < 80; i++ {
		expected <<= 1
		expected |= uint16(bits[i])
	}
	return expected == crc12(bits)
}

func decodeBitsInt(bits []byte, off *int, length int) uint32 {
	var result uint32
	for i := 0; i < length; i++ {
		result <<= 1
		result |= uint32(bits[*off])
		*off++
	}
	return result
}

func decodeBitsSigned(bits []byte, off *int, length int) int32 {
	result := int32(decodeBitsInt(bits, off, length))
	if result&(1<<(uint(length)-1)) != 0 {
		result -= 1 << uint(length)
	}
	return result
}

func decodeChar5(bits []byte, off *int) byte {
	return sisCharset[decodeBitsInt(bits, off, 5)]
}

func decodeChar7(bits []byte, off *int) byte {
	return byte(decodeBitsInt(bits, off, 7))
}

type audioServiceDesc struct {
	access, typ, soundExp int
}

type dataServiceDesc struct {
	access, typ, mimeType int
}

// pidsState accumulates SIS fields across frames. Each text assembler
// (long name, message, slogan, alert) keeps a per-frame "have" bitmap. The
// long-name, message and alert assemblers track a sequence number, and a
// sequence-number change resets them; the slogan assembler does not
// (sloganSeq is never set). Message, slogan and alert complete at a target
// length; the long name completes once every frame up to its flagged last
// frame has arrived. Each fully received text is displayed once.
type pidsState struct {
	countryCode   string
	fccFacilityID int
	shortName     string

	longName          [56]byte
	longNameHaveFrame [8]bool
	longNameSeq       int
	longNameDisplayed bool

	latitude, longitude float64
	altitude            int

	messageSeq        int
	messageDisplayed  bool
	messagePriority   int
	messageEncoding   int
	messageLen        int
	message           [256]byte
	messageHaveFrame  [48]bool

	audioServices [maxAudioServices]audioServiceDesc
	dataServices  [maxDataServices]dataServiceDesc

	parameters [numParameters]int

	sloganSeq        int
	sloganEncoding   int
	sloganLen        int
	slogan           [128]byte
	sloganHaveFrame  [16]bool
	sloganDisplayed  bool

	alertSeq        int
	alertEncoding   int
	alertLen        int
	alertCntLen     int
	alert           [512]byte
	alertHaveFrame  [64]bool
	alertDisplayed  bool

	onSIS func(SISInfo)
}

func newPIDSState() *pidsState {
	st := &pidsState{}
	st.reset()
	return st
}

func (st *pidsState) reset() {
	st.countryCode = ""
	st.fccFacilityID = 0
	st.shortName = ""

	st.longNameSeq = -1
	st.longNameDisplayed = false

	st.latitude = math.NaN()
	st.longitude = math.NaN()
	st.altitude = 0

	st.messageSeq = -1
	st.messageDisplayed = false

	for i := range st.audioServices {
		st.audioServices[i] = audioServiceDesc{access: -1, typ: -1, soundExp: -1}
	}
	for i := range st.dataServices {
		st.dataServices[i] = dataServiceDesc{access: -1, typ: -1, mimeType: -1}
	}

	for i := range st.parameters {
		st.parameters[i] = -1
	}

	st.sloganLen = -1
	st.sloganDisplayed = false

	st.alertLen = -1
	st.alertDisplayed = false
}

// pidsFramePush reverses each byte-group's bit order (matching the
// transmitted order), checks the CRC-12, and parses the payload sequence
// on success. A CRC mismatch silently drops the frame, per BadCRC
// handling: counted, never fatal.
func pidsFramePush(st *pidsState, bits []byte) {
	reversed := make([]byte, PIDSFrameBits)
	for i := 0; i < PIDSFrameBits; i++ {
		reversed[i] = bits[((i>>3)<<3)+7-(i&7)]
	}
	if !checkCRC12(reversed) {
		return
	}
	st.decodeSIS(reversed)
}

func (st *pidsState) decodeSIS(bits []byte) {
	if bits[0] != 0 {
		return
	}
	payloads := int(bits[1]) + 1
	off := 2
	updated := false

	for i := 0; i < payloads; i++ {
		if off > 60 {
			break
		}
		msgID := int(decodeBitsInt(bits, &off, 4))

		switch msgID {
		case 0:
			updated = st.decodeCountryCode(bits, &off) || updated
		case 1:
			updated = st.decodeShortName(bits, &off) || updated
		case 2:
			updated = st.decodeLongName(bits, &off) || updated
		case 3:
			off += 32
		case 4:
			updated = st.decodeLocation(bits, &off) || updated
		case 5:
			updated = st.decodeMessage(bits, &off) || updated
		case 6:
			updated = st.decodeServiceDescriptor(bits, &off) || updated
		case 7:
			updated = st.decodeParameter(bits, &off) || updated
		case 8:
			updated = st.decodeSlogan(bits, &off) || updated
		case 9:
			updated = st.decodeAlert(bits, &off) || updated
		default:
			logger.Errorf("unexpected pids msg_id: %d", msgID)
		}
	}

	if updated {
		st.report()
	}
}

func (st *pidsState) decodeCountryCode(bits []byte, off *int) bool {
	if *off > 64-32 {
		return false
	}
	var cc [2]byte
	for j := 0; j < 2; j++ {
		cc[j] = decodeChar5(bits, off)
	}
	*off += 3 // reserved
	fccFacilityID := int(decodeBitsInt(bits, off, 19))

	countryCode := string(cc[:])
	if countryCode != st.countryCode || fccFacilityID != st.fccFacilityID {
		st.countryCode = countryCode
		st.fccFacilityID = fccFacilityID
		return true
	}
	return false
}

func (st *pidsState) decodeShortName(bits []byte, off *int) bool {
	if *off > 64-22 {
		return false
	}
	name := make([]byte, 0, 7)
	for j := 0; j < 4; j++ {
		name = append(name, decodeChar5(bits, off))
	}
	if bits[*off] == 0 && bits[*off+1] == 1 {
		name = append(name, '-', 'F', 'M')
	}
	*off += 2

	shortName := string(name)
	if shortName != st.shortName {
		st.shortName = shortName
		return true
	}
	return false
}

func (st *pidsState) decodeLongName(bits []byte, off *int) bool {
	if *off > 64-58 {
		return false
	}
	start := *off
	*off += 55
	seq := int(decodeBitsInt(bits, off, 3))
	*off = start

	lastFrame := int(decodeBitsInt(bits, off, 3))
	currentFrame := int(decodeBitsInt(bits, off, 3))

	if currentFrame == 0 && seq != st.longNameSeq {
		st.longName = [56]byte{}
		st.longNameHaveFrame = [8]bool{}
		st.longNameSeq = seq
		st.longNameDisplayed = false
	}

	for j := 0; j < 7; j++ {
		st.longName[currentFrame*7+j] = decodeChar7(bits, off)
	}
	st.longNameHaveFrame[currentFrame] = true
	*off += 3

	updated := false
	if st.longNameSeq >= 0 && !st.longNameDisplayed {
		complete := true
		for j := 0; j <= lastFrame; j++ {
			complete = complete && st.longNameHaveFrame[j]
		}
		if complete {
			st.longNameDisplayed = true
			updated = true
		}
	}
	return updated
}

func (st *pidsState) decodeLocation(bits []byte, off *int) bool {
	if *off > 64-27 {
		return false
	}
	updated := false
	if decodeBitsInt(bits, off, 1) != 0 {
		lat := float64(decodeBitsSigned(bits, off, 22)) / 8192.0
		st.altitude = (st.altitude & 0x0f0) | int(decodeBitsInt(bits, off, 4))<<8
		if lat != st.latitude {
			st.latitude = lat
			if !math.IsNaN(st.longitude) {
				updated = true
			}
		}
	} else {
		lon := float64(decodeBitsSigned(bits, off, 22)) / 8192.0
		st.altitude = (st.altitude & 0xf00) | int(decodeBitsInt(bits, off, 4))<<4
		if lon != st.longitude {
			st.longitude = lon
			if !math.IsNaN(st.latitude) {
				updated = true
			}
		}
	}
	return updated
}

func (st *pidsState) decodeMessage(bits []byte, off *int) bool {
	if *off > 64-58 {
		return false
	}
	currentFrame := int(decodeBitsInt(bits, off, 5))
	seq := int(decodeBitsInt(bits, off, 2))

	if currentFrame == 0 {
		if seq != st.messageSeq {
			st.message = [256]byte{}
			st.messageHaveFrame = [48]bool{}
			st.messageSeq = seq
			st.messageDisplayed = false
		}
		st.messagePriority = int(decodeBitsInt(bits, off, 1))
		st.messageEncoding = int(decodeBitsInt(bits, off, 3))
		st.messageLen = int(decodeBitsInt(bits, off, 8))
		*off += 7 // checksum
		for j := 0; j < 4; j++ {
			st.message[j] = byte(decodeBitsInt(bits, off, 8))
		}
	} else {
		*off += 3 // reserved
		for j := 0; j < 6; j++ {
			idx := currentFrame*6 - 2 + j
			if idx >= 0 && idx < len(st.message) {
				st.message[idx] = byte(decodeBitsInt(bits, off, 8))
			} else {
				*off += 8
			}
		}
	}
	if currentFrame < len(st.messageHaveFrame) {
		st.messageHaveFrame[currentFrame] = true
	}

	updated := false
	if st.messageSeq >= 0 && !st.messageDisplayed {
		need := (st.messageLen + 7) / 6
		complete := true
		for j := 0; j < need; j++ {
			if j >= len(st.messageHaveFrame) || !st.messageHaveFrame[j] {
				complete = false
				break
			}
		}
		if complete {
			st.messageDisplayed = true
			updated = true
		}
	}
	return updated
}

func (st *pidsState) decodeServiceDescriptor(bits []byte, off *int) bool {
	if *off > 64-27 {
		return false
	}
	category := int(decodeBitsInt(bits, off, 2))
	switch category {
	case 0:
		access := int(decodeBitsInt(bits, off, 1))
		progNum := int(decodeBitsInt(bits, off, 6))
		typ := int(decodeBitsInt(bits, off, 8))
		*off += 5 // reserved
		soundExp := int(decodeBitsInt(bits, off, 5))

		if progNum >= maxAudioServices {
			logger.Warnf("invalid program number: %d", progNum)
			return false
		}
		svc := audioServiceDesc{access: access, typ: typ, soundExp: soundExp}
		if st.audioServices[progNum] != svc {
			st.audioServices[progNum] = svc
			return true
		}
	case 1:
		access := int(decodeBitsInt(bits, off, 1))
		typ := int(decodeBitsInt(bits, off, 9))
		*off += 3 // reserved
		mimeType := int(decodeBitsInt(bits, off, 12))
		svc := dataServiceDesc{access: access, typ: typ, mimeType: mimeType}
		for j := 0; j < maxDataServices; j++ {
			if st.dataServices[j] == svc {
				break
			} else if st.dataServices[j].typ == -1 {
				st.dataServices[j] = svc
				return true
			}
		}
	default:
		logger.Warnf("unknown service category identifier: %d", category)
	}
	return false
}

func (st *pidsState) decodeParameter(bits []byte, off *int) bool {
	if *off > 64-22 {
		return false
	}
	index := int(decodeBitsInt(bits, off, 6))
	parameter := int(decodeBitsInt(bits, off, 16))
	if index >= numParameters {
		logger.Warnf("invalid parameter index: %d", index)
		return false
	}
	if st.parameters[index] != parameter {
		st.parameters[index] = parameter
		logger.Debugf("sis parameter %d = %d", index, parameter)
	}
	return false
}

func (st *pidsState) decodeSlogan(bits []byte, off *int) bool {
	if *off > 64-58 {
		return false
	}
	currentFrame := int(decodeBitsInt(bits, off, 4))
	if decodeBitsInt(bits, off, 1) == 0 {
		*off += 53 // Universal Short Station Name: unimplemented
		return false
	}

	if currentFrame == 0 {
		st.sloganEncoding = int(decodeBitsInt(bits, off, 3))
		*off += 3 // reserved
		st.sloganLen = int(decodeBitsInt(bits, off, 7))
		for j := 0; j < 5; j++ {
			st.slogan[j] = byte(decodeBitsInt(bits, off, 8))
		}
	} else {
		*off += 5 // reserved
		for j := 0; j < 6; j++ {
			idx := currentFrame*6 - 1 + j
			if idx >= 0 && idx < len(st.slogan) {
				st.slogan[idx] = byte(decodeBitsInt(bits, off, 8))
			} else {
				*off += 8
			}
		}
	}
	if currentFrame < len(st.sloganHaveFrame) {
		st.sloganHaveFrame[currentFrame] = true
	}

	updated := false
	if st.sloganLen >= 0 && !st.sloganDisplayed {
		need := (st.sloganLen + 6) / 6
		complete := true
		for j := 0; j < need; j++ {
			if j >= len(st.sloganHaveFrame) || !st.sloganHaveFrame[j] {
				complete = false
				break
			}
		}
		if complete {
			st.sloganDisplayed = true
			updated = true
		}
	}
	return updated
}

func (st *pidsState) decodeAlert(bits []byte, off *int) bool {
	if *off > 64-58 {
		return false
	}
	currentFrame := int(decodeBitsInt(bits, off, 6))
	seq := int(decodeBitsInt(bits, off, 2))
	*off += 2 // reserved

	if currentFrame == 0 {
		if seq != st.alertSeq {
			st.alert = [512]byte{}
			st.alertHaveFrame = [64]bool{}
			st.alertSeq = seq
			st.alertDisplayed = false
		}
		st.alertEncoding = int(decodeBitsInt(bits, off, 3))
		st.alertLen = int(decodeBitsInt(bits, off, 9))
		*off += 7 // CRC-7 integrity check, not verified here
		st.alertCntLen = int(decodeBitsInt(bits, off, 5))
		for j := 0; j < 3; j++ {
			st.alert[j] = byte(decodeBitsInt(bits, off, 8))
		}
	} else {
		for j := 0; j < 6; j++ {
			idx := currentFrame*6 - 3 + j
			if idx >= 0 && idx < len(st.alert) {
				st.alert[idx] = byte(decodeBitsInt(bits, off, 8))
			} else {
				*off += 8
			}
		}
	}
	if currentFrame < len(st.alertHaveFrame) {
		st.alertHaveFrame[currentFrame] = true
	}

	updated := false
	if st.alertLen >= 0 && !st.alertDisplayed {
		need := (st.alertLen + 8) / 6
		complete := true
		for j := 0; j < need; j++ {
			if j >= len(st.alertHaveFrame) || !st.alertHaveFrame[j] {
				complete = false
				break
			}
		}
		if complete {
			st.alertDisplayed = true
			updated = true
		}
	}
	return updated
}

// cString trims a fixed-size text buffer at its first NUL byte, the way
// the reference's long_name buffer (always one byte longer than its
// maximum write extent) behaves as a C string.
func cString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// report assembles the consolidated SISInfo snapshot and dispatches it,
// mirroring report()'s one-shot linked-list construction from the audio/
// data service arrays.
func (st *pidsState) report() {
	if st.onSIS == nil {
		return
	}
	info := SISInfo{
		CountryCode:   st.countryCode,
		FCCFacilityID: st.fccFacilityID,
		Name:          st.shortName,
	}

	if st.sloganDisplayed {
		info.Slogan = decodeStationText(st.sloganEncoding, st.slogan[:st.sloganLen])
	}
	if st.longNameDisplayed {
		info.LongName = cString(st.longName[:])
	}

	if st.messageDisplayed {
		info.Message = decodeStationText(st.messageEncoding, st.message[:st.messageLen])
	}

	if st.alertDisplayed {
		cntBytes := 1 + 2*st.alertCntLen
		if cntBytes <= st.alertLen {
			info.Alert = decodeStationText(st.alertEncoding, st.alert[cntBytes:st.alertLen])
		}
	}

	if !math.IsNaN(st.latitude) && !math.IsNaN(st.longitude) {
		ll := s2.LatLngFromDegrees(st.latitude, st.longitude)
		info.Location = ll
		info.HasLocation = true
		info.Altitude = st.altitude
	}

	for i := maxAudioServices - 1; i >= 0; i-- {
		if st.audioServices[i].typ != -1 {
			info.AudioServices = append(info.AudioServices, AudioServiceDescriptor{
				Program:  i,
				Access:   st.audioServices[i].access,
				Type:     st.audioServices[i].typ,
				SoundExp: st.audioServices[i].soundExp,
			})
		}
	}
	for i := maxDataServices - 1; i >= 0; i-- {
		if st.dataServices[i].typ != -1 {
			info.DataServices = append(info.DataServices, DataServiceDescriptor{
				Access:   st.dataServices[i].access,
				Type:     st.dataServices[i].typ,
				MIMEType: uint32(st.dataServices[i].mimeType),
			})
		}
	}

	st.onSIS(info)
}
