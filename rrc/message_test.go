package rrc

import (
	"testing"

	"github.com/openlte/lte-fdd-dl-file-scan/bitcursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawMIB(t *rapid.T) MIB {
	return MIB{
		DLBandwidth: DLBandwidth(rapid.IntRange(0, 5).Draw(t, "dlbw")),
		PHICHConfig: PHICHConfig{
			Duration: PHICHDuration(rapid.IntRange(0, 1).Draw(t, "dur")),
			Resource: PHICHResource(rapid.IntRange(0, 3).Draw(t, "res")),
		},
		SFNDiv4: uint8(rapid.IntRange(0, 255).Draw(t, "sfn")),
	}
}

func Test_BCCHBCHMsg_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mib := drawMIB(t)
		buf, nbits := PackBCCHBCHMsg(BCCHBCHMessage{MIB: mib})
		assert.Equal(t, 24, nbits)

		got, err := UnpackBCCHBCHMsg(buf)
		require.NoError(t, err)
		assert.Equal(t, mib, got.MIB)
	})
}

func Test_UnpackBCCHBCHMsg_RejectsShortBuffer(t *testing.T) {
	_, err := UnpackBCCHBCHMsg([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func drawPLMNIdentity(t *rapid.T, mccPresent bool) PLMNIdentity {
	var p PLMNIdentity
	p.MCCPresent = mccPresent
	if mccPresent {
		p.MCC = [3]uint8{
			uint8(rapid.IntRange(0, 9).Draw(t, "mcc0")),
			uint8(rapid.IntRange(0, 9).Draw(t, "mcc1")),
			uint8(rapid.IntRange(0, 9).Draw(t, "mcc2")),
		}
	}
	if rapid.Bool().Draw(t, "threeDigitMNC") {
		p.MNC = []uint8{
			uint8(rapid.IntRange(0, 9).Draw(t, "mnc0")),
			uint8(rapid.IntRange(0, 9).Draw(t, "mnc1")),
			uint8(rapid.IntRange(0, 9).Draw(t, "mnc2")),
		}
	} else {
		p.MNC = []uint8{
			uint8(rapid.IntRange(0, 9).Draw(t, "mnc0")),
			uint8(rapid.IntRange(0, 9).Draw(t, "mnc1")),
		}
	}
	return p
}

func Test_PLMNIdentity_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPLMNIdentity(t, true)

		w := bitcursor.NewWriter()
		PackPLMNIdentity(w, p)
		buf, nbits := w.Bits()

		got := UnpackPLMNIdentity(bitcursor.NewReader(buf, nbits))
		assert.Equal(t, p, got)
	})
}

func Test_SIB1_PLMNList_MCCReuse(t *testing.T) {
	s := SIB1{
		PLMNIdentityList: []PLMNIdentity{
			{MCCPresent: true, MCC: [3]uint8{3, 1, 0}, MNC: []uint8{1, 4}},
			{MCCPresent: false, MNC: []uint8{1, 5}},
		},
		TrackingAreaCode:   1,
		CellIdentity:       1,
		FreqBandIndicator:  1,
		SchedulingInfoList: []SchedulingInfo{{SIPeriodicity: 16}},
		SIWindowLength:     10,
		SystemInfoValueTag: 3,
	}

	buf, nbits := PackSysInfoBlockType1Msg(s)
	got, err := UnpackSysInfoBlockType1Msg(buf, nbits)
	require.NoError(t, err)

	require.Len(t, got.PLMNIdentityList, 2)
	assert.Equal(t, s.PLMNIdentityList[0].MCC, got.PLMNIdentityList[1].MCC,
		"second PLMN entry must reuse the first entry's MCC when it omits its own")
}

func Test_SIB1_RoundTrip_Minimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := SIB1{
			PLMNIdentityList: []PLMNIdentity{
				drawPLMNIdentity(t, true),
			},
			TrackingAreaCode:   uint16(rapid.IntRange(0, 0xFFFF).Draw(t, "tac")),
			CellIdentity:       uint32(rapid.IntRange(0, 1<<28-1).Draw(t, "cid")),
			CellBarred:         rapid.Bool().Draw(t, "barred"),
			FreqBandIndicator:  uint8(rapid.IntRange(1, 64).Draw(t, "band")),
			SchedulingInfoList: []SchedulingInfo{{SIPeriodicity: 32}},
			SIWindowLength:     20,
			SystemInfoValueTag: uint8(rapid.IntRange(0, 31).Draw(t, "tag")),
			QRxLevMin:          int8(rapid.IntRange(-70, -7).Draw(t, "qrxlevmin")),
		}

		buf, nbits := PackSysInfoBlockType1Msg(s)
		got, err := UnpackSysInfoBlockType1Msg(buf, nbits)
		require.NoError(t, err)
		assert.Equal(t, s.TrackingAreaCode, got.TrackingAreaCode)
		assert.Equal(t, s.CellIdentity, got.CellIdentity)
		assert.Equal(t, s.CellBarred, got.CellBarred)
		assert.Equal(t, s.FreqBandIndicator, got.FreqBandIndicator)
		assert.Equal(t, s.SchedulingInfoList, got.SchedulingInfoList)
		assert.Equal(t, s.SIWindowLength, got.SIWindowLength)
		assert.Equal(t, s.SystemInfoValueTag, got.SystemInfoValueTag)
		assert.Equal(t, s.QRxLevMin, got.QRxLevMin)
	})
}

func Test_SIB1_SchedulingInfo_ExpectedFlags(t *testing.T) {
	s := SIB1{
		PLMNIdentityList: []PLMNIdentity{drawPLMNIdentityFixed()},
		FreqBandIndicator: 1,
		SchedulingInfoList: []SchedulingInfo{
			{SIPeriodicity: 16, SIBMappingInfo: []uint8{uint8(SIBTypeSIB3)}},
			{SIPeriodicity: 32, SIBMappingInfo: []uint8{uint8(SIBTypeSIB4), uint8(SIBTypeSIB8)}},
		},
		SIWindowLength:     10,
		SystemInfoValueTag: 1,
	}

	buf, nbits := PackSysInfoBlockType1Msg(s)
	got, err := UnpackSysInfoBlockType1Msg(buf, nbits)
	require.NoError(t, err)
	require.Len(t, got.SchedulingInfoList, 2)
	assert.Equal(t, []uint8{uint8(SIBTypeSIB3)}, got.SchedulingInfoList[0].SIBMappingInfo)
	assert.Equal(t, []uint8{uint8(SIBTypeSIB4), uint8(SIBTypeSIB8)}, got.SchedulingInfoList[1].SIBMappingInfo)
}

func drawPLMNIdentityFixed() PLMNIdentity {
	return PLMNIdentity{MCCPresent: true, MCC: [3]uint8{3, 1, 0}, MNC: []uint8{1, 4}}
}

func Test_SystemInformation_RoundTrip_MixedSIBs(t *testing.T) {
	si := SystemInformation{
		SIBs: []SIBEntry{
			{Type: SIBTypeSIB2, SIB2: &SIB2{TimeAlignmentTimer: 2}},
			{Type: SIBTypeSIB3, SIB3: &SIB3{QHyst: 5, TReselEUTRA: 2}},
			{Type: SIBTypeSIB4, SIB4: &SIB4{}},
			{Type: SIBTypeSIB8, SIB8: &SIB8{
				SysTimeInfoPresent: true,
				SysTimeInfo: SystemTimeInfoCDMA2000{
					Synchronous: true,
					Upper32:     0xDEADBEEF,
					Lower:       0x1FFFF,
				},
			}},
		},
	}

	buf, nbits, err := PackSysInfoMsg(si)
	require.NoError(t, err)

	got, err := UnpackSysInfoMsg(buf, nbits)
	require.NoError(t, err)
	require.Len(t, got.SIBs, 4)
	assert.Equal(t, uint8(2), got.SIBs[0].SIB2.TimeAlignmentTimer)
	assert.Equal(t, uint8(5), got.SIBs[1].SIB3.QHyst)
	require.NotNil(t, got.SIBs[3].SIB8)
	assert.True(t, got.SIBs[3].SIB8.SysTimeInfo.Synchronous)
	assert.Equal(t, uint32(0xDEADBEEF), got.SIBs[3].SIB8.SysTimeInfo.Upper32)
	assert.Equal(t, uint32(0x1FFFF), got.SIBs[3].SIB8.SysTimeInfo.Lower)
}

func Test_SIB8_SysTimeInfo_AsynchronousRoundTrip(t *testing.T) {
	w := bitcursor.NewWriter()
	packSIB8(w, SIB8{
		SysTimeInfoPresent: true,
		SysTimeInfo: SystemTimeInfoCDMA2000{
			Synchronous: false,
			Upper32:     0x12345678,
			Lower:       0x7F,
		},
	})
	buf, nbits := w.Bits()

	r := bitcursor.NewReader(buf, nbits)
	got := unpackSIB8(r)
	assert.False(t, got.SysTimeInfo.Synchronous)
	assert.Equal(t, uint32(0x12345678), got.SysTimeInfo.Upper32)
	assert.Equal(t, uint32(0x7F), got.SysTimeInfo.Lower)
}

func Test_SystemInformation_UnsupportedSIBType(t *testing.T) {
	si := SystemInformation{
		SIBs: []SIBEntry{{Type: SIBTypeSIB5}},
	}
	_, _, err := PackSysInfoMsg(si)
	assert.ErrorIs(t, err, ErrUnsupportedSIB)
}

func Test_BCCHDLSCHMsg_RoundTrip_SIB1(t *testing.T) {
	s := SIB1{
		PLMNIdentityList:   []PLMNIdentity{drawPLMNIdentityFixed()},
		FreqBandIndicator:  1,
		SchedulingInfoList: []SchedulingInfo{{SIPeriodicity: 8}},
		SIWindowLength:     1,
		SystemInfoValueTag: 0,
	}
	msg := BCCHDLSCHMessage{Type: BCCHDLSCHMessageTypeSIB1, SIB1: &s}

	buf, nbits, err := PackBCCHDLSCHMsg(msg)
	require.NoError(t, err)

	got, err := UnpackBCCHDLSCHMsg(buf, nbits)
	require.NoError(t, err)
	require.Equal(t, BCCHDLSCHMessageTypeSIB1, got.Type)
	require.NotNil(t, got.SIB1)
	assert.Equal(t, s.TrackingAreaCode, got.SIB1.TrackingAreaCode)
}

func Test_BCCHDLSCHMsg_RoundTrip_SystemInformation(t *testing.T) {
	si := SystemInformation{SIBs: []SIBEntry{{Type: SIBTypeSIB2, SIB2: &SIB2{TimeAlignmentTimer: 1}}}}
	msg := BCCHDLSCHMessage{Type: BCCHDLSCHMessageTypeSystemInformation, SysInfo: &si}

	buf, nbits, err := PackBCCHDLSCHMsg(msg)
	require.NoError(t, err)

	got, err := UnpackBCCHDLSCHMsg(buf, nbits)
	require.NoError(t, err)
	require.Equal(t, BCCHDLSCHMessageTypeSystemInformation, got.Type)
	require.NotNil(t, got.SysInfo)
	require.Len(t, got.SysInfo.SIBs, 1)
	assert.Equal(t, uint8(1), got.SysInfo.SIBs[0].SIB2.TimeAlignmentTimer)
}

func Test_Paging_RoundTrip(t *testing.T) {
	p := Paging{
		PagingRecordList: []PagingRecord{
			{UEIdentity: PagingUEIdentity{IsIMSI: true, IMSI: []uint8{2, 3, 4, 5, 6, 7, 8}}, CNDomainPS: false},
			{UEIdentity: PagingUEIdentity{IsIMSI: true, IMSI: []uint8{1, 1, 1, 1, 1, 1}}, CNDomainPS: true},
		},
		SystemInfoModification: true,
	}

	buf, nbits := PackPagingMsg(p)
	got, err := UnpackPagingMsg(buf, nbits)
	require.NoError(t, err)
	assert.Equal(t, p.PagingRecordList, got.PagingRecordList)
	assert.Equal(t, p.SystemInfoModification, got.SystemInfoModification)
}

func Test_PCCHMsg_RoundTrip(t *testing.T) {
	msg := PCCHMessage{Paging: Paging{
		PagingRecordList: []PagingRecord{
			{UEIdentity: PagingUEIdentity{IsIMSI: true, IMSI: []uint8{9, 8, 7, 6, 5, 4}}},
		},
	}}

	buf, nbits := PackPCCHMsg(msg)
	got, err := UnpackPCCHMsg(buf, nbits)
	require.NoError(t, err)
	assert.Equal(t, msg.Paging.PagingRecordList, got.Paging.PagingRecordList)
}
