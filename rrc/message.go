package rrc

import (
	"github.com/openlte/lte-fdd-dl-file-scan/bitcursor"
)

// PackBCCHBCHMsg encodes the MIB into the fixed 24-bit BCH payload:
// dl-Bandwidth (3 bits), phich-Config (3 bits), systemFrameNumber/4
// (8 bits), spare (10 bits, always zero). Grounded on
// liblte_rrc_pack_bcch_bch_msg.
func PackBCCHBCHMsg(msg BCCHBCHMessage) ([]byte, int) {
	w := bitcursor.NewWriter()
	w.WriteBits(uint32(msg.MIB.DLBandwidth), 3)
	packPHICHConfig(w, msg.MIB.PHICHConfig)
	w.WriteBits(uint32(msg.MIB.SFNDiv4), 8)
	w.WriteBits(0, 10) // spare
	return w.Bits()
}

// UnpackBCCHBCHMsg decodes a 24-bit BCH payload into a MIB. Only the first
// 14 bits carry information; the trailing 10 spare bits are consumed but
// ignored, matching the original's own treatment of that field.
func UnpackBCCHBCHMsg(buf []byte) (BCCHBCHMessage, error) {
	if len(buf)*8 < 24 {
		return BCCHBCHMessage{}, ErrInvalidInput
	}
	r := bitcursor.NewReader(buf, 24)
	var m MIB
	m.DLBandwidth = DLBandwidth(r.ReadBits(3))
	m.PHICHConfig = unpackPHICHConfig(r)
	m.SFNDiv4 = uint8(r.ReadBits(8))
	r.ReadBits(10) // spare
	return BCCHBCHMessage{MIB: m}, nil
}

// PackSysInfoBlockType1Msg encodes SIB1 per liblte_rrc_pack_sys_info_block_type_1_msg's
// field order.
func PackSysInfoBlockType1Msg(s SIB1) ([]byte, int) {
	w := bitcursor.NewWriter()

	w.WriteBool(s.PMaxPresent)
	w.WriteBool(s.TDD)
	w.WriteBool(false) // non-crit-ext, never emitted by this codec
	w.WriteBool(s.CSGIdentityPresent)

	w.WriteBits(uint32(len(s.PLMNIdentityList)-1), 3)
	for _, p := range s.PLMNIdentityList {
		PackPLMNIdentity(w, p)
		w.WriteBits(0, 1) // cellReservedForOperatorUse, always "not reserved"
	}

	w.WriteBits(uint32(s.TrackingAreaCode), 16)
	w.WriteBits(s.CellIdentity, 28)
	w.WriteBool(s.CellBarred)
	w.WriteBool(s.IntraFreqReselection)
	w.WriteBool(s.CSGIndication)
	if s.CSGIdentityPresent {
		w.WriteBits(s.CSGIdentity, 27)
	}

	w.WriteBool(s.QRxLevMinOffsetPresent)
	packConstrainedInt(w, int32(s.QRxLevMin), -70, 6)
	if s.QRxLevMinOffsetPresent {
		w.WriteBits(uint32(s.QRxLevMinOffset/2-1), 3)
	}

	if s.PMaxPresent {
		packPMax(w, s.PMax)
	}

	w.WriteBits(uint32(s.FreqBandIndicator-1), 6)

	w.WriteBits(uint32(len(s.SchedulingInfoList)-1), 5)
	for _, si := range s.SchedulingInfoList {
		w.WriteBits(siPeriodicityToIndex(si.SIPeriodicity), 3)
		w.WriteBits(uint32(len(si.SIBMappingInfo)), 5)
		for _, t := range si.SIBMappingInfo {
			w.WriteBool(false) // extension, always 0
			w.WriteBits(uint32(t), 4)
		}
	}

	if s.TDD {
		w.WriteBits(uint32(s.TDDSubframeAssignment), 3)
		w.WriteBits(uint32(s.TDDSpecialSubframePatterns), 4)
	}

	w.WriteBits(siWindowLengthToIndex(s.SIWindowLength), 3)
	w.WriteBits(uint32(s.SystemInfoValueTag), 5)

	return w.Bits()
}

// UnpackSysInfoBlockType1Msg decodes SIB1. When a non-first PLMN entry
// omits its MCC, this mirrors 36.331's rule that it reuses the MCC of the
// entry immediately before it in the list.
func UnpackSysInfoBlockType1Msg(buf []byte, nbits int) (SIB1, error) {
	r := bitcursor.NewReader(buf, nbits)
	var s SIB1

	s.PMaxPresent = r.ReadBool()
	s.TDD = r.ReadBool()
	nonCritExt := r.ReadBool()
	s.CSGIdentityPresent = r.ReadBool()

	nPLMN := int(r.ReadBits(3)) + 1
	s.PLMNIdentityList = make([]PLMNIdentity, nPLMN)
	for i := 0; i < nPLMN; i++ {
		p := UnpackPLMNIdentity(r)
		r.ReadBits(1) // cellReservedForOperatorUse
		if !p.MCCPresent && i > 0 {
			p.MCC = s.PLMNIdentityList[i-1].MCC
		}
		s.PLMNIdentityList[i] = p
	}

	s.TrackingAreaCode = uint16(r.ReadBits(16))
	s.CellIdentity = r.ReadBits(28)
	s.CellBarred = r.ReadBool()
	s.IntraFreqReselection = r.ReadBool()
	s.CSGIndication = r.ReadBool()
	if s.CSGIdentityPresent {
		s.CSGIdentity = r.ReadBits(27)
	}

	s.QRxLevMinOffsetPresent = r.ReadBool()
	s.QRxLevMin = int8(unpackConstrainedInt(r, -70, 6))
	if s.QRxLevMinOffsetPresent {
		s.QRxLevMinOffset = uint8((r.ReadBits(3) + 1) * 2)
	}

	if s.PMaxPresent {
		s.PMax = unpackPMax(r)
	}

	s.FreqBandIndicator = uint8(r.ReadBits(6)) + 1

	nSched := int(r.ReadBits(5)) + 1
	s.SchedulingInfoList = make([]SchedulingInfo, nSched)
	for i := 0; i < nSched; i++ {
		var si SchedulingInfo
		si.SIPeriodicity = siPeriodicityFromIndex(r.ReadBits(3))
		nMap := int(r.ReadBits(5))
		if nMap > 0 {
			si.SIBMappingInfo = make([]uint8, nMap)
		}
		for j := 0; j < nMap; j++ {
			if r.ReadBool() {
				return s, ErrUnexpectedExtension
			}
			si.SIBMappingInfo[j] = uint8(r.ReadBits(4))
		}
		s.SchedulingInfoList[i] = si
	}

	if s.TDD {
		s.TDDSubframeAssignment = uint8(r.ReadBits(3))
		s.TDDSpecialSubframePatterns = uint8(r.ReadBits(4))
	}

	s.SIWindowLength = siWindowLengthFromIndex(r.ReadBits(3))
	s.SystemInfoValueTag = uint8(r.ReadBits(5))

	if nonCritExt {
		return s, ErrUnexpectedExtension
	}
	return s, nil
}

// sibTypeToBits/sibTypeFromBits map SIBType to the 4-bit sib-Type enum,
// whose ordering comes from liblte_rrc.h:
// 2,3,4,5,6,7,8,9,10,11,12,13 then 1 ("SIBType1 intentionally not first").
func sibTypeToBits(t SIBType) uint32 { return uint32(t) }
func sibTypeFromBits(v uint32) SIBType { return SIBType(v) }

// PackSysInfoMsg encodes the SystemInformation container: crit-ext choice
// (1 bit, 0), optional-indicator (1 bit, 0), sib count-1 (5 bits), then
// per-entry extension bit + 4-bit type + body. Grounded on
// liblte_rrc_pack_sys_info_msg, including its refusal to encode SIB types
// the original never implemented (5,6,7,9-13).
func PackSysInfoMsg(msg SystemInformation) ([]byte, int, error) {
	w := bitcursor.NewWriter()
	w.WriteBits(0, 1) // critical extension choice
	w.WriteBits(0, 1) // optional non-crit-ext indicator

	w.WriteBits(uint32(len(msg.SIBs)-1), 5)
	for _, e := range msg.SIBs {
		w.WriteBool(false) // extension
		w.WriteBits(sibTypeToBits(e.Type), 4)

		switch e.Type {
		case SIBTypeSIB2:
			if e.SIB2 == nil {
				return nil, 0, ErrInvalidInput
			}
			packSIB2(w, *e.SIB2)
		case SIBTypeSIB3:
			if e.SIB3 == nil {
				return nil, 0, ErrInvalidInput
			}
			packSIB3(w, *e.SIB3)
		case SIBTypeSIB4:
			if e.SIB4 == nil {
				return nil, 0, ErrInvalidInput
			}
			packSIB4(w, *e.SIB4)
		case SIBTypeSIB8:
			if e.SIB8 == nil {
				return nil, 0, ErrInvalidInput
			}
			packSIB8(w, *e.SIB8)
		default:
			return nil, 0, ErrUnsupportedSIB
		}
	}
	buf, nbits := w.Bits()
	return buf, nbits, nil
}

// UnpackSysInfoMsg decodes the SystemInformation container. Decoding stops
// at the first entry whose type this codec does not implement: that entry
// is returned with its Type and no decoded body, the entries after it are
// not returned (the unsupported body's length is unknown, so they cannot be
// located), and the error is ErrUnsupportedSIB, or ErrUnexpectedExtension
// if an extension bit was set on that or an earlier entry.
func UnpackSysInfoMsg(buf []byte, nbits int) (SystemInformation, error) {
	r := bitcursor.NewReader(buf, nbits)
	_ = r.ReadBits(1) // crit ext choice
	_ = r.ReadBits(1) // optional indicator

	n := int(r.ReadBits(5)) + 1
	var out SystemInformation
	out.SIBs = make([]SIBEntry, n)
	var firstErr error
	for i := 0; i < n; i++ {
		var e SIBEntry
		if r.ReadBool() {
			firstErr = ErrUnexpectedExtension
		}
		e.Type = sibTypeFromBits(r.ReadBits(4))

		switch e.Type {
		case SIBTypeSIB2:
			sib := unpackSIB2(r)
			e.SIB2 = &sib
		case SIBTypeSIB3:
			sib := unpackSIB3(r)
			e.SIB3 = &sib
		case SIBTypeSIB4:
			sib := unpackSIB4(r)
			e.SIB4 = &sib
		case SIBTypeSIB8:
			sib := unpackSIB8(r)
			e.SIB8 = &sib
		default:
			out.SIBs[i] = e
			out.SIBs = out.SIBs[:i+1]
			if firstErr == nil {
				firstErr = ErrUnsupportedSIB
			}
			return out, firstErr
		}
		out.SIBs[i] = e
	}
	return out, firstErr
}

// PackBCCHDLSCHMsg encodes the BCCH-DLSCH-Message container: an extension
// bit (0) and a choice bit selecting SIB1 vs SystemInformation. Grounded
// on liblte_rrc_pack_bcch_dlsch_msg.
func PackBCCHDLSCHMsg(msg BCCHDLSCHMessage) ([]byte, int, error) {
	w := bitcursor.NewWriter()
	w.WriteBool(false) // extension

	switch msg.Type {
	case BCCHDLSCHMessageTypeSIB1:
		if msg.SIB1 == nil {
			return nil, 0, ErrInvalidInput
		}
		w.WriteBool(true)
		body, nbits := PackSysInfoBlockType1Msg(*msg.SIB1)
		appendBitcursorBody(w, body, nbits)
	case BCCHDLSCHMessageTypeSystemInformation:
		if msg.SysInfo == nil {
			return nil, 0, ErrInvalidInput
		}
		w.WriteBool(false)
		body, nbits, err := PackSysInfoMsg(*msg.SysInfo)
		if err != nil {
			return nil, 0, err
		}
		appendBitcursorBody(w, body, nbits)
	default:
		return nil, 0, ErrInvalidInput
	}
	buf, nbits := w.Bits()
	return buf, nbits, nil
}

// UnpackBCCHDLSCHMsg decodes the BCCH-DLSCH-Message container and
// dispatches to SIB1 or SystemInformation decoding based on the choice
// bit.
func UnpackBCCHDLSCHMsg(buf []byte, nbits int) (BCCHDLSCHMessage, error) {
	if nbits < 2 {
		return BCCHDLSCHMessage{}, ErrInvalidInput
	}
	r := bitcursor.NewReader(buf, nbits)
	ext := r.ReadBool()
	isSIB1 := r.ReadBool()

	rest, restBits := remainingBits(r)

	var out BCCHDLSCHMessage
	var err error
	if isSIB1 {
		out.Type = BCCHDLSCHMessageTypeSIB1
		var sib1 SIB1
		sib1, err = UnpackSysInfoBlockType1Msg(rest, restBits)
		out.SIB1 = &sib1
	} else {
		out.Type = BCCHDLSCHMessageTypeSystemInformation
		var si SystemInformation
		si, err = UnpackSysInfoMsg(rest, restBits)
		out.SysInfo = &si
	}
	if ext && err == nil {
		err = ErrUnexpectedExtension
	}
	return out, err
}

// appendBitcursorBody copies nbits of body onto w bit-by-bit. Used where
// a sub-message is encoded independently and then spliced into its
// container, mirroring the original's scratch-buffer-then-memcpy pattern
// without needing a shared global buffer.
func appendBitcursorBody(w *bitcursor.Writer, body []byte, nbits int) {
	rr := bitcursor.NewReader(body, nbits)
	for rr.Remaining() >= 8 {
		w.WriteBits(rr.ReadBits(8), 8)
	}
	if rem := rr.Remaining(); rem > 0 {
		w.WriteBits(rr.ReadBits(uint(rem)), uint(rem))
	}
}

// remainingBits materializes the unread tail of r as a fresh byte buffer,
// so it can be handed to a nested Unpack* call starting at bit 0.
func remainingBits(r *bitcursor.Reader) ([]byte, int) {
	n := r.Remaining()
	w := bitcursor.NewWriter()
	for n >= 32 {
		w.WriteBits(r.ReadBits(32), 32)
		n -= 32
	}
	if n > 0 {
		w.WriteBits(r.ReadBits(uint(n)), uint(n))
	}
	return w.Bits()
}
