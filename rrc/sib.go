package rrc

import "github.com/openlte/lte-fdd-dl-file-scan/bitcursor"

// ac-BarringConfig field widths, grounded on liblte_rrc.h's
// AC_BARRING_CONFIG_STRUCT and its pack/unpack in liblte_rrc.cc: a 4-bit
// barring-factor index, a 3-bit barring-time index, and a 5-bit
// special-AC bitmap.
func packACBarringConfig(w *bitcursor.Writer, c ACBarringConfig) {
	w.WriteBits(uint32(c.BarringFactor), 4)
	w.WriteBits(uint32(c.BarringTime), 3)
	w.WriteBits(uint32(c.BarringForSpecialAC), 5)
}

func unpackACBarringConfig(r *bitcursor.Reader) ACBarringConfig {
	return ACBarringConfig{
		BarringFactor:       uint8(r.ReadBits(4)),
		BarringTime:         uint8(r.ReadBits(3)),
		BarringForSpecialAC: uint8(r.ReadBits(5)),
	}
}

func packSIB2(w *bitcursor.Writer, s SIB2) {
	w.WriteBool(s.ACBarringInfoPresent)
	if s.ACBarringInfoPresent {
		w.WriteBool(s.ACBarringForEmergency)
		w.WriteBool(s.ACBarringForMOSignallingPresent)
		if s.ACBarringForMOSignallingPresent {
			packACBarringConfig(w, s.ACBarringForMOSignalling)
		}
		w.WriteBool(s.ACBarringForMODataPresent)
		if s.ACBarringForMODataPresent {
			packACBarringConfig(w, s.ACBarringForMOData)
		}
	}

	w.WriteBits(uint32(s.UETimersAndConstantsT300), 3)
	w.WriteBits(uint32(s.UETimersAndConstantsT301), 3)
	w.WriteBits(uint32(s.UETimersAndConstantsT310), 3)
	w.WriteBits(uint32(s.UETimersAndConstantsN310), 3)
	w.WriteBits(uint32(s.UETimersAndConstantsT311), 3)
	w.WriteBits(uint32(s.UETimersAndConstantsN311), 3)

	w.WriteBool(s.ARFCNValueEUTRAPresent)
	if s.ARFCNValueEUTRAPresent {
		w.WriteBits(uint32(s.ARFCNValueEUTRA), 16)
	}

	w.WriteBits(uint32(s.TimeAlignmentTimer), 3)
}

func unpackSIB2(r *bitcursor.Reader) SIB2 {
	var s SIB2
	s.ACBarringInfoPresent = r.ReadBool()
	if s.ACBarringInfoPresent {
		s.ACBarringForEmergency = r.ReadBool()
		s.ACBarringForMOSignallingPresent = r.ReadBool()
		if s.ACBarringForMOSignallingPresent {
			s.ACBarringForMOSignalling = unpackACBarringConfig(r)
		}
		s.ACBarringForMODataPresent = r.ReadBool()
		if s.ACBarringForMODataPresent {
			s.ACBarringForMOData = unpackACBarringConfig(r)
		}
	}

	s.UETimersAndConstantsT300 = uint8(r.ReadBits(3))
	s.UETimersAndConstantsT301 = uint8(r.ReadBits(3))
	s.UETimersAndConstantsT310 = uint8(r.ReadBits(3))
	s.UETimersAndConstantsN310 = uint8(r.ReadBits(3))
	s.UETimersAndConstantsT311 = uint8(r.ReadBits(3))
	s.UETimersAndConstantsN311 = uint8(r.ReadBits(3))

	s.ARFCNValueEUTRAPresent = r.ReadBool()
	if s.ARFCNValueEUTRAPresent {
		s.ARFCNValueEUTRA = uint16(r.ReadBits(16))
	}

	s.TimeAlignmentTimer = uint8(r.ReadBits(3))
	return s
}

func packSIB3(w *bitcursor.Writer, s SIB3) {
	w.WriteBits(uint32(s.QHyst), 4)
	w.WriteBool(s.SNonIntraSearchPresent)
	if s.SNonIntraSearchPresent {
		w.WriteBits(uint32(s.SNonIntraSearch), 5)
	}
	w.WriteBits(uint32(s.ThreshServingLow), 5)
	w.WriteBits(uint32(s.CellReselectionPriority), 3)

	packConstrainedInt(w, int32(s.QRxLevMin), -70, 6)
	w.WriteBool(s.PMaxPresent)
	if s.PMaxPresent {
		packPMax(w, s.PMax)
	}
	w.WriteBits(uint32(s.SIntraSearch), 5)
	w.WriteBool(s.AllowedMeasBandwidthPresent)
	if s.AllowedMeasBandwidthPresent {
		w.WriteBits(uint32(s.AllowedMeasBandwidth), 3)
	}
	w.WriteBool(s.PresenceAntennaPort1)
	w.WriteBits(uint32(s.NeighCellConfig), 2)
	w.WriteBits(uint32(s.TReselEUTRA), 4)

	w.WriteBool(s.SpeedStateReselectionPresent)
	if s.SpeedStateReselectionPresent {
		w.WriteBits(uint32(s.MobilityStateParamsTEvaluation), 4)
		w.WriteBits(uint32(s.MobilityStateParamsTHystNormal), 4)
		w.WriteBits(uint32(s.MobilityStateParamsNCellChangeMedium), 3)
		w.WriteBits(uint32(s.MobilityStateParamsNCellChangeHigh), 3)
		w.WriteBits(uint32(s.SFMedium), 2)
		w.WriteBits(uint32(s.SFHigh), 2)
	}
}

func unpackSIB3(r *bitcursor.Reader) SIB3 {
	var s SIB3
	s.QHyst = uint8(r.ReadBits(4))
	s.SNonIntraSearchPresent = r.ReadBool()
	if s.SNonIntraSearchPresent {
		s.SNonIntraSearch = uint8(r.ReadBits(5))
	}
	s.ThreshServingLow = uint8(r.ReadBits(5))
	s.CellReselectionPriority = uint8(r.ReadBits(3))

	s.QRxLevMin = int8(unpackConstrainedInt(r, -70, 6))
	s.PMaxPresent = r.ReadBool()
	if s.PMaxPresent {
		s.PMax = unpackPMax(r)
	}
	s.SIntraSearch = uint8(r.ReadBits(5))
	s.AllowedMeasBandwidthPresent = r.ReadBool()
	if s.AllowedMeasBandwidthPresent {
		s.AllowedMeasBandwidth = uint8(r.ReadBits(3))
	}
	s.PresenceAntennaPort1 = r.ReadBool()
	s.NeighCellConfig = uint8(r.ReadBits(2))
	s.TReselEUTRA = uint8(r.ReadBits(4))

	s.SpeedStateReselectionPresent = r.ReadBool()
	if s.SpeedStateReselectionPresent {
		s.MobilityStateParamsTEvaluation = uint8(r.ReadBits(4))
		s.MobilityStateParamsTHystNormal = uint8(r.ReadBits(4))
		s.MobilityStateParamsNCellChangeMedium = uint8(r.ReadBits(3))
		s.MobilityStateParamsNCellChangeHigh = uint8(r.ReadBits(3))
		s.SFMedium = uint8(r.ReadBits(2))
		s.SFHigh = uint8(r.ReadBits(2))
	}
	return s
}

// packPhysCellIDRange writes the PhysCellIdRange IE: start (9 bits) and an
// optional range-size choice, grounded on liblte_rrc.h's
// PHYS_CELL_ID_RANGE_STRUCT used by SIB4's blacklist.
func packPhysCellIDRange(w *bitcursor.Writer, p PhysCellIDRange) {
	w.WriteBits(uint32(p.Start), 9)
	w.WriteBool(p.Range != 0)
	if p.Range != 0 {
		w.WriteBits(uint32(p.Range), 5)
	}
}

func unpackPhysCellIDRange(r *bitcursor.Reader) PhysCellIDRange {
	var p PhysCellIDRange
	p.Start = uint16(r.ReadBits(9))
	if r.ReadBool() {
		p.Range = uint16(r.ReadBits(5))
	}
	return p
}

func packSIB4(w *bitcursor.Writer, s SIB4) {
	w.WriteBits(uint32(len(s.IntraFreqNeighCellList)), 4)
	for _, n := range s.IntraFreqNeighCellList {
		w.WriteBits(uint32(n.PhysCellID), 9)
		// QOffsetRange is signed (36.331 Q-OffsetRange is INTEGER(-15..15)-ish);
		// encode via the same offset convention as every other constrained
		// integer in this codec so unpack can sign-extend correctly, rather
		// than relying on a raw truncating cast.
		packConstrainedInt(w, int32(n.QOffsetRange), -16, 5)
	}
	w.WriteBits(uint32(len(s.IntraFreqBlackCellList)), 4)
	for _, b := range s.IntraFreqBlackCellList {
		packPhysCellIDRange(w, b)
	}
	w.WriteBool(s.CSGPhysCellIDRangePresent)
	if s.CSGPhysCellIDRangePresent {
		packPhysCellIDRange(w, s.CSGPhysCellIDRange)
	}
}

func unpackSIB4(r *bitcursor.Reader) SIB4 {
	var s SIB4
	nIntra := int(r.ReadBits(4))
	s.IntraFreqNeighCellList = make([]IntraFreqNeighCellInfo, nIntra)
	for i := 0; i < nIntra; i++ {
		s.IntraFreqNeighCellList[i] = IntraFreqNeighCellInfo{
			PhysCellID:   uint16(r.ReadBits(9)),
			QOffsetRange: int8(unpackConstrainedInt(r, -16, 5)),
		}
	}
	nBlack := int(r.ReadBits(4))
	s.IntraFreqBlackCellList = make([]PhysCellIDRange, nBlack)
	for i := 0; i < nBlack; i++ {
		s.IntraFreqBlackCellList[i] = unpackPhysCellIDRange(r)
	}
	s.CSGPhysCellIDRangePresent = r.ReadBool()
	if s.CSGPhysCellIDRangePresent {
		s.CSGPhysCellIDRange = unpackPhysCellIDRange(r)
	}
	return s
}

func packBandClassInfoCDMA2000(w *bitcursor.Writer, b BandClassInfoCDMA2000) {
	w.WriteBits(uint32(b.BandClass), 5)
	w.WriteBool(b.CellReselectionPriorityPresent)
	if b.CellReselectionPriorityPresent {
		w.WriteBits(uint32(b.CellReselectionPriority), 3)
	}
	w.WriteBits(uint32(b.ThreshXHigh), 6)
	w.WriteBits(uint32(b.ThreshXLow), 6)
}

func unpackBandClassInfoCDMA2000(r *bitcursor.Reader) BandClassInfoCDMA2000 {
	var b BandClassInfoCDMA2000
	b.BandClass = uint8(r.ReadBits(5))
	b.CellReselectionPriorityPresent = r.ReadBool()
	if b.CellReselectionPriorityPresent {
		b.CellReselectionPriority = uint8(r.ReadBits(3))
	}
	b.ThreshXHigh = uint8(r.ReadBits(6))
	b.ThreshXLow = uint8(r.ReadBits(6))
	return b
}

// packSIB8 encodes the CDMA2000 reselection-parameter subset of SIB8 that
// this codec carries. Grounded on liblte_rrc.h's SIB8 struct and the
// MAX_CDMA_BAND_CLASS=32 list bound; list lengths are written as the raw
// entry count in 5 bits, with no -1 offset, so 0..31 entries encode
// correctly and a list of 32 or more entries does not. SysTimeInfo's Synchronous
// bit selects a 32+17-bit (cdma-EUTRA-Sync) or 32+7-bit (asynchronous)
// encoding, grounded on
// liblte_rrc_pack/unpack_system_time_info_cdma2000_ie.
func packSIB8(w *bitcursor.Writer, s SIB8) {
	w.WriteBool(s.SysTimeInfoPresent)
	if s.SysTimeInfoPresent {
		w.WriteBool(s.SysTimeInfo.Synchronous)
		w.WriteBits(s.SysTimeInfo.Upper32, 32)
		if s.SysTimeInfo.Synchronous {
			w.WriteBits(s.SysTimeInfo.Lower, 17)
		} else {
			w.WriteBits(s.SysTimeInfo.Lower, 7)
		}
	}

	w.WriteBool(s.SearchWindowSizePresent)
	if s.SearchWindowSizePresent {
		w.WriteBits(uint32(s.SearchWindowSize), 4)
	}

	w.WriteBool(s.ParamsHRPDPresent)
	if s.ParamsHRPDPresent {
		w.WriteBits(uint32(len(s.CellReselectionParamsHRPD)), 5)
		for _, b := range s.CellReselectionParamsHRPD {
			packBandClassInfoCDMA2000(w, b)
		}
	}

	w.WriteBool(s.Params1XRTTPresent)
	if s.Params1XRTTPresent {
		w.WriteBits(uint32(len(s.CellReselectionParams1XRTT)), 5)
		for _, b := range s.CellReselectionParams1XRTT {
			packBandClassInfoCDMA2000(w, b)
		}
	}
}

func unpackSIB8(r *bitcursor.Reader) SIB8 {
	var s SIB8
	s.SysTimeInfoPresent = r.ReadBool()
	if s.SysTimeInfoPresent {
		s.SysTimeInfo.Synchronous = r.ReadBool()
		s.SysTimeInfo.Upper32 = r.ReadBits(32)
		if s.SysTimeInfo.Synchronous {
			s.SysTimeInfo.Lower = r.ReadBits(17)
		} else {
			s.SysTimeInfo.Lower = r.ReadBits(7)
		}
	}

	s.SearchWindowSizePresent = r.ReadBool()
	if s.SearchWindowSizePresent {
		s.SearchWindowSize = uint8(r.ReadBits(4))
	}

	s.ParamsHRPDPresent = r.ReadBool()
	if s.ParamsHRPDPresent {
		n := int(r.ReadBits(5))
		s.CellReselectionParamsHRPD = make([]BandClassInfoCDMA2000, n)
		for i := 0; i < n; i++ {
			s.CellReselectionParamsHRPD[i] = unpackBandClassInfoCDMA2000(r)
		}
	}

	s.Params1XRTTPresent = r.ReadBool()
	if s.Params1XRTTPresent {
		n := int(r.ReadBits(5))
		s.CellReselectionParams1XRTT = make([]BandClassInfoCDMA2000, n)
		for i := 0; i < n; i++ {
			s.CellReselectionParams1XRTT[i] = unpackBandClassInfoCDMA2000(r)
		}
	}
	return s
}
