// Package rrc implements a bit-exact subset of the 3GPP 36.331 unaligned-PER
// RRC codec: MIB, SIB1-SIB4 and SIB8 (SIB5-SIB7 are reported as
// ErrUnsupportedSIB), the SystemInformation container, Paging, and
// the BCCH-BCH / BCCH-DLSCH / PCCH message wrappers. Field layout and
// constant choices are grounded on original_source/liblte/src/liblte_rrc.cc,
// the C++ implementation this module's behavior was distilled from.
package rrc

// PHICHDuration is the phich-Duration IE (1 bit).
type PHICHDuration uint8

const (
	PHICHDurationNormal PHICHDuration = iota
	PHICHDurationExtended
)

// PHICHResource is the phich-Resource IE (2 bits), kept as the true
// rational multiplier of Ng rather than truncated to an integer.
//
// The original C++ computed this with integer division (1/6 and 1/2 both
// truncate to 0), silently losing the resource value for two of the four
// enum members. This codec instead exposes the exact rational via
// Rational() so callers can compute N_g = numerator/denominator
// * 2^ceil(log2(N_rb_dl)) correctly.
type PHICHResource uint8

const (
	PHICHResourceOneSixth PHICHResource = iota
	PHICHResourceHalf
	PHICHResourceOne
	PHICHResourceTwo
)

// Rational returns the exact Ng multiplier this resource value encodes.
func (r PHICHResource) Rational() (numerator, denominator int) {
	switch r {
	case PHICHResourceOneSixth:
		return 1, 6
	case PHICHResourceHalf:
		return 1, 2
	case PHICHResourceOne:
		return 1, 1
	case PHICHResourceTwo:
		return 2, 1
	default:
		return 0, 1
	}
}

func (r PHICHResource) String() string {
	switch r {
	case PHICHResourceOneSixth:
		return "1/6"
	case PHICHResourceHalf:
		return "1/2"
	case PHICHResourceOne:
		return "1"
	case PHICHResourceTwo:
		return "2"
	default:
		return "unknown"
	}
}

// PHICHConfig is the PHICH-Config IE: duration (1 bit) + resource (2 bits).
type PHICHConfig struct {
	Duration PHICHDuration
	Resource PHICHResource
}

// DLBandwidth is the dl-Bandwidth IE (3 bits), one of six enumerated RB
// counts.
type DLBandwidth uint8

const (
	DLBandwidth6 DLBandwidth = iota
	DLBandwidth15
	DLBandwidth25
	DLBandwidth50
	DLBandwidth75
	DLBandwidth100
)

// NRBDL returns the number of downlink resource blocks this value encodes.
func (b DLBandwidth) NRBDL() uint32 {
	switch b {
	case DLBandwidth6:
		return 6
	case DLBandwidth15:
		return 15
	case DLBandwidth25:
		return 25
	case DLBandwidth50:
		return 50
	case DLBandwidth75:
		return 75
	case DLBandwidth100:
		return 100
	default:
		return 0
	}
}

// MIB is the MasterInformationBlock carried on BCH: 24 bits total
// (dl-Bandwidth 3 bits, phich-Config 3 bits, systemFrameNumber/4 8 bits,
// spare 10 bits).
type MIB struct {
	DLBandwidth  DLBandwidth
	PHICHConfig  PHICHConfig
	SFNDiv4      uint8 // the 8 MSBs of the system frame number
}

// PLMNIdentity is the PLMN-Identity IE: an optional 3-digit MCC and a 2- or
// 3-digit MNC.
//
// MCCPresent mirrors the original's MCC_NOT_PRESENT sentinel: 36.331 lets a
// PLMN entry after the first omit its MCC, reusing the previous entry's
// value. Decode leaves MCCPresent false and MCC unset in that case; the
// caller (UnpackSysInfoBlockType1Msg) resolves it against plmnIdentityList[i-1].
type PLMNIdentity struct {
	MCCPresent bool
	MCC        [3]uint8 // decimal digits, MSD first
	MNC        []uint8  // 2 or 3 decimal digits, MSD first
}

// CellSelectionInfo carries q-RxLevMin (and its optional offset) from SIB1.
type CellSelectionInfo struct {
	QRxLevMin       int8 // actual dBm = 2*QRxLevMin
	QRxLevMinOffset uint8
}

// SchedulingInfo is one entry of SIB1's schedulingInfoList: a periodicity
// and the set of SIB types multiplexed into that SI message.
type SchedulingInfo struct {
	SIPeriodicity  uint16 // in radio frames: 8,16,32,64,128,256,512
	SIBMappingInfo []uint8
}

// SIB1 is SystemInformationBlockType1.
type SIB1 struct {
	PLMNIdentityList      []PLMNIdentity
	TrackingAreaCode      uint16
	CellIdentity          uint32
	CellBarred            bool
	IntraFreqReselection  bool
	CSGIndication         bool
	CSGIdentityPresent    bool
	CSGIdentity           uint32

	QRxLevMin       int8
	QRxLevMinOffsetPresent bool
	QRxLevMinOffset uint8

	PMaxPresent bool
	PMax        int8

	FreqBandIndicator uint8

	SchedulingInfoList []SchedulingInfo

	TDD           bool
	TDDSubframeAssignment   uint8
	TDDSpecialSubframePatterns uint8

	SIWindowLength      uint16 // ms: 1,2,5,10,15,20,40
	SystemInfoValueTag  uint8
}

// SIBType enumerates the SIB types that can be multiplexed into a
// SystemInformation message (3GPP order: 2..13 then 1, "1 intentionally
// not first" per the original source's own comment).
type SIBType uint8

const (
	SIBTypeSIB2 SIBType = iota
	SIBTypeSIB3
	SIBTypeSIB4
	SIBTypeSIB5
	SIBTypeSIB6
	SIBTypeSIB7
	SIBTypeSIB8
	SIBTypeSIB9
	SIBTypeSIB10
	SIBTypeSIB11
	SIBTypeSIB12
	SIBTypeSIB13
)

// ACBarringConfig is the ac-BarringConfig IE reused by SIB2's two
// AC-barring-for-* config fields.
type ACBarringConfig struct {
	BarringFactor  uint8 // index into {0,5,10,15,20,25,30,40,50,60,70,75,80,85,90,95}, percent
	BarringTime    uint8 // index into {4,8,16,32,64,128,256,512} seconds
	BarringForSpecialAC uint8 // 5-bit bitmap, AC 11-15
}

// SIB2 is SystemInformationBlockType2 (kept to the RRC-codec-relevant
// subset: AC barring and the common radio resource config fields the
// scanner's cell reporter surfaces).
type SIB2 struct {
	ACBarringInfoPresent bool
	ACBarringForEmergency bool
	ACBarringForMOSignallingPresent bool
	ACBarringForMOSignalling ACBarringConfig
	ACBarringForMODataPresent bool
	ACBarringForMOData ACBarringConfig

	UETimersAndConstantsT300 uint8
	UETimersAndConstantsT301 uint8
	UETimersAndConstantsT310 uint8
	UETimersAndConstantsN310 uint8
	UETimersAndConstantsT311 uint8
	UETimersAndConstantsN311 uint8

	ARFCNValueEUTRAPresent bool
	ARFCNValueEUTRA        uint16

	TimeAlignmentTimer uint8
}

// SIB3 is SystemInformationBlockType3 (cell reselection common parameters).
type SIB3 struct {
	QHyst              uint8
	SNonIntraSearchPresent bool
	SNonIntraSearch    uint8
	ThreshServingLow   uint8
	CellReselectionPriority uint8

	QRxLevMin       int8
	PMaxPresent     bool
	PMax            int8
	SIntraSearch    uint8
	AllowedMeasBandwidthPresent bool
	AllowedMeasBandwidth uint8
	PresenceAntennaPort1 bool
	NeighCellConfig uint8
	TReselEUTRA     uint8

	SpeedStateReselectionPresent bool
	MobilityStateParamsTEvaluation uint8
	MobilityStateParamsTHystNormal uint8
	MobilityStateParamsNCellChangeMedium uint8
	MobilityStateParamsNCellChangeHigh   uint8
	SFMedium uint8
	SFHigh   uint8
}

// PhysCellIDRange is the PhysCellIdRange IE used by SIB4's blacklist.
type PhysCellIDRange struct {
	Start uint16
	Range uint16 // 0 means "not present" (single cell)
}

// IntraFreqNeighCellInfo is one entry of SIB4's intra-frequency neighbor
// list.
type IntraFreqNeighCellInfo struct {
	PhysCellID   uint16
	QOffsetRange int8
}

// SIB4 is SystemInformationBlockType4 (intra-frequency neighbor and
// blacklist info).
type SIB4 struct {
	IntraFreqNeighCellList []IntraFreqNeighCellInfo
	IntraFreqBlackCellList []PhysCellIDRange
	CSGPhysCellIDRangePresent bool
	CSGPhysCellIDRange        PhysCellIDRange
}

// BandClassInfoCDMA2000 is one entry of SIB8's band-class reselection
// parameter list.
type BandClassInfoCDMA2000 struct {
	BandClass           uint8
	CellReselectionPriorityPresent bool
	CellReselectionPriority uint8
	ThreshXHigh uint8
	ThreshXLow  uint8
}

// SystemTimeInfoCDMA2000 is the system-time-info-cdma2000 IE: a 32-bit
// upper half plus a lower half whose width depends on a sync/async
// discriminator bit (17 bits when Synchronous, 7 bits when not).
// Grounded on liblte_rrc_pack/unpack_system_time_info_cdma2000_ie.
type SystemTimeInfoCDMA2000 struct {
	Synchronous bool
	Upper32     uint32
	Lower       uint32 // 17 bits if Synchronous, 7 bits otherwise
}

// SIB8 is SystemInformationBlockType8 (kept to the CDMA2000 cell
// reselection parameter subset; pre-registration/HRPD system-time fields
// are represented but not interpreted beyond round-trip).
type SIB8 struct {
	SysTimeInfoPresent bool
	SysTimeInfo        SystemTimeInfoCDMA2000

	SearchWindowSizePresent bool
	SearchWindowSize        uint8

	ParamsHRPDPresent bool
	CellReselectionParamsHRPD []BandClassInfoCDMA2000

	Params1XRTTPresent bool
	CellReselectionParams1XRTT []BandClassInfoCDMA2000
}

// SIBEntry is one multiplexed SIB within a SystemInformation message.
// When Type has no decoded struct in this codec (SIB5/6/7/9-13), all four
// SIB pointers are nil. Raw is neither filled in by UnpackSysInfoMsg nor
// read by PackSysInfoMsg.
type SIBEntry struct {
	Type SIBType
	SIB2 *SIB2
	SIB3 *SIB3
	SIB4 *SIB4
	SIB8 *SIB8
	Raw  []byte
}

// SystemInformation is the SystemInformation RRC message: a list of
// multiplexed SIBs sharing one BCCH-DLSCH transmission.
type SystemInformation struct {
	SIBs []SIBEntry
}

// PagingUEIdentity is the Paging message's paging-UE-Identity choice: an
// S-TMSI (not modeled further; this codec only needs to round-trip IMSI
// digit strings, which is all the scanner's reporter surfaces) or an IMSI
// digit string.
type PagingUEIdentity struct {
	IsIMSI bool
	IMSI   []uint8 // decimal digits, 6-21 of them
}

// PagingRecord is one entry of Paging's pagingRecordList.
type PagingRecord struct {
	UEIdentity PagingUEIdentity
	CNDomainPS bool // false = CS, true = PS
}

// Paging is the Paging RRC message broadcast on PCCH.
type Paging struct {
	PagingRecordList           []PagingRecord
	SystemInfoModification     bool
	ETWSIndication             bool
	CMASIndication             bool
}

// BCCHBCHMessage is the outer container carried on BCH: just the MIB, no
// further wrapping in 36.331.
type BCCHBCHMessage struct {
	MIB MIB
}

// BCCHDLSCHMessageType discriminates the single bit in BCCH-DLSCH-Message
// between "this is SIB1" and "this is a SystemInformation message".
type BCCHDLSCHMessageType uint8

const (
	BCCHDLSCHMessageTypeSIB1 BCCHDLSCHMessageType = iota
	BCCHDLSCHMessageTypeSystemInformation
)

// BCCHDLSCHMessage is the outer container carried on DL-SCH via BCCH: an
// extension marker, a choice bit, and either SIB1 or a SystemInformation
// message.
type BCCHDLSCHMessage struct {
	Type   BCCHDLSCHMessageType
	SIB1   *SIB1
	SysInfo *SystemInformation
}

// PCCHMessage is the outer container carried on PCCH: a choice bit
// (currently only one arm defined) wrapping Paging.
type PCCHMessage struct {
	Paging Paging
}
