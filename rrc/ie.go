package rrc

import (
	"github.com/openlte/lte-fdd-dl-file-scan/bitcursor"
)

// packConstrainedInt writes value-offset in nbits bits (the unaligned-PER
// encoding of an INTEGER(offset..offset+2^nbits-1) constraint). Grounded on
// liblte_rrc.cc's repeated value-offset-then-rrc_value_2_bits pattern (e.g.
// q_rx_lev_min_offset's "(value/2)-1", p_max's "value+30").
func packConstrainedInt(w *bitcursor.Writer, value int32, offset int32, nbits uint) {
	w.WriteBits(uint32(value-offset), nbits)
}

func unpackConstrainedInt(r *bitcursor.Reader, offset int32, nbits uint) int32 {
	return int32(r.ReadBits(nbits)) + offset
}

// packPHICHConfig writes the 3-bit PHICH-Config IE (1-bit duration,
// 2-bit resource), grounded on liblte_rrc_pack_phich_config_ie.
func packPHICHConfig(w *bitcursor.Writer, c PHICHConfig) {
	w.WriteBits(uint32(c.Duration), 1)
	w.WriteBits(uint32(c.Resource), 2)
}

func unpackPHICHConfig(r *bitcursor.Reader) PHICHConfig {
	return PHICHConfig{
		Duration: PHICHDuration(r.ReadBits(1)),
		Resource: PHICHResource(r.ReadBits(2)),
	}
}

// packPMax writes the p-Max IE: actual dBm in [-30,33] packed as value+30
// in 6 bits, grounded on liblte_rrc_pack_p_max_ie.
func packPMax(w *bitcursor.Writer, pMax int8) {
	packConstrainedInt(w, int32(pMax), -30, 6)
}

func unpackPMax(r *bitcursor.Reader) int8 {
	return int8(unpackConstrainedInt(r, -30, 6))
}

// PackPLMNIdentity writes the PLMN-Identity IE: an optional 3-digit MCC
// (12 bits) and a 2- or 3-digit MNC selected by a 1-bit size choice.
// Grounded on liblte_rrc_pack_plmn_identity_ie. Exported for composite
// message packers (SIB1's PLMN list) and for direct unit testing of the
// MCC-reuse / MNC-size behavior.
func PackPLMNIdentity(w *bitcursor.Writer, p PLMNIdentity) {
	w.WriteBool(p.MCCPresent)
	if p.MCCPresent {
		mcc := uint32(p.MCC[0])<<8 | uint32(p.MCC[1])<<4 | uint32(p.MCC[2])
		w.WriteBits(mcc, 12)
	}

	mncSize := len(p.MNC)
	// (mnc_size/4)-2: mncSize==2 -> (2/4)-2 == -2 in the original's integer
	// arithmetic intent is actually size-selector bit = 0 for 2 digits, 1
	// for 3 digits; encode that directly rather than replaying the
	// original's underflowing expression.
	if mncSize == 2 {
		w.WriteBits(0, 1)
	} else {
		w.WriteBits(1, 1)
	}

	mnc := uint32(0)
	for _, d := range p.MNC {
		mnc = mnc<<4 | uint32(d)
	}
	if mncSize == 2 {
		w.WriteBits(mnc, 8)
	} else {
		w.WriteBits(mnc, 12)
	}
}

// UnpackPLMNIdentity reads the PLMN-Identity IE. If the MCC-present bit is
// clear, MCCPresent is left false and MCC is the zero value; the caller
// (UnpackSysInfoBlockType1Msg) is responsible for reusing the previous
// list entry's MCC per 36.331's "same as previous PLMN" rule.
func UnpackPLMNIdentity(r *bitcursor.Reader) PLMNIdentity {
	var p PLMNIdentity
	p.MCCPresent = r.ReadBool()
	if p.MCCPresent {
		v := r.ReadBits(12)
		p.MCC = [3]uint8{uint8(v >> 8 & 0xF), uint8(v >> 4 & 0xF), uint8(v & 0xF)}
	}

	threeDigit := r.ReadBits(1) == 1
	if threeDigit {
		v := r.ReadBits(12)
		p.MNC = []uint8{uint8(v >> 8 & 0xF), uint8(v >> 4 & 0xF), uint8(v & 0xF)}
	} else {
		v := r.ReadBits(8)
		p.MNC = []uint8{uint8(v >> 4 & 0xF), uint8(v & 0xF)}
	}
	return p
}

// siPeriodicityTable maps the 3-bit si-Periodicity enum to its value in
// radio frames (36.331 6.3.1, SchedulingInfo), grounded on liblte_rrc.cc's
// si_periodicity switch in pack/unpack_sys_info_block_type_1_msg.
var siPeriodicityTable = [8]uint16{8, 16, 32, 64, 128, 256, 512, 0}

func siPeriodicityToIndex(frames uint16) uint32 {
	for i, v := range siPeriodicityTable {
		if v == frames {
			return uint32(i)
		}
	}
	return 0
}

func siPeriodicityFromIndex(idx uint32) uint16 {
	if int(idx) >= len(siPeriodicityTable) {
		return 0
	}
	return siPeriodicityTable[idx]
}

// siWindowLengthTable maps the 3-bit si-WindowLength enum to milliseconds,
// grounded on the same source's si_window_length switch.
var siWindowLengthTable = [8]uint16{1, 2, 5, 10, 15, 20, 40, 0}

func siWindowLengthToIndex(ms uint16) uint32 {
	for i, v := range siWindowLengthTable {
		if v == ms {
			return uint32(i)
		}
	}
	return 0
}

func siWindowLengthFromIndex(idx uint32) uint16 {
	if int(idx) >= len(siWindowLengthTable) {
		return 0
	}
	return siWindowLengthTable[idx]
}
