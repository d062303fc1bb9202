package scanner

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/openlte/lte-fdd-dl-file-scan/phy"
	"github.com/openlte/lte-fdd-dl-file-scan/rrc"
	"github.com/openlte/lte-fdd-dl-file-scan/sampbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func fillBuffer(t *testing.T, s *Scanner, n int) {
	t.Helper()
	// enough interleaved byte pairs to produce n complex samples
	buf := make([]byte, n*2)
	s.Ingest(buf)
}

func mibBits(t *testing.T) phy.DecodedBits {
	t.Helper()
	buf, nbits := rrc.PackBCCHBCHMsg(rrc.BCCHBCHMessage{MIB: rrc.MIB{
		DLBandwidth: rrc.DLBandwidth25,
		PHICHConfig: rrc.PHICHConfig{Duration: rrc.PHICHDurationNormal, Resource: rrc.PHICHResourceOne},
		SFNDiv4:     10,
	}})
	return phy.DecodedBits{Bits: buf, NBits: nbits}
}

func sib1Bits(t *testing.T, tag uint8) phy.DecodedBits {
	t.Helper()
	sib1 := rrc.SIB1{
		PLMNIdentityList:   []rrc.PLMNIdentity{{MCCPresent: true, MCC: [3]uint8{0, 0, 1}, MNC: []uint8{0, 1}}},
		FreqBandIndicator:  1,
		SchedulingInfoList: []rrc.SchedulingInfo{{SIPeriodicity: 16}},
		SIWindowLength:     10,
		SystemInfoValueTag: tag,
	}
	buf, nbits, err := rrc.PackBCCHDLSCHMsg(rrc.BCCHDLSCHMessage{Type: rrc.BCCHDLSCHMessageTypeSIB1, SIB1: &sib1})
	require.NoError(t, err)
	return phy.DecodedBits{Bits: buf, NBits: nbits}
}

func sysInfoBits(t *testing.T) phy.DecodedBits {
	t.Helper()
	si := rrc.SystemInformation{SIBs: []rrc.SIBEntry{{Type: rrc.SIBTypeSIB2, SIB2: &rrc.SIB2{}}}}
	buf, nbits, err := rrc.PackBCCHDLSCHMsg(rrc.BCCHDLSCHMessage{Type: rrc.BCCHDLSCHMessageTypeSystemInformation, SysInfo: &si})
	require.NoError(t, err)
	return phy.DecodedBits{Bits: buf, NBits: nbits}
}

func Test_Scanner_HappyPath_CompletesOneCell(t *testing.T) {
	fake := &phy.Fake{
		CoarseTimingResults: []phy.FakeCoarseTimingResult{{Timing: phy.CoarseTiming{FrameStartIdx: 0, FreqOffsetHz: 100}, NCorrPeaks: 1}},
		PSSResults:          []phy.FakeResult[phy.FineTiming]{{Value: phy.FineTiming{NID2: 1}}},
		SSSResults:          []phy.FakeResult[phy.SSSResult]{{Value: phy.SSSResult{NID1: 5, FrameAligned: true}}},
		SubframeResults: []phy.FakeResult[phy.Subframe]{
			{Value: phy.Subframe{}}, // BCH
			{Value: phy.Subframe{}}, // SIB1
			{Value: phy.Subframe{}}, // SI generic
		},
		BCHResults: []phy.FakeBCHResult{{Bits: mibBits(t), NAnt: 1}},
		PDCCHResults: []phy.FakeResult[phy.DCI]{
			{Value: phy.DCI{TBSizeBits: 100}},
			{Value: phy.DCI{TBSizeBits: 100}},
		},
		PDSCHResults: []phy.FakeResult[phy.DecodedBits]{
			{Value: sib1Bits(t, 1)},
			{Value: sysInfoBits(t)},
		},
	}

	s := New(fake, testLogger())
	// enough samples to carry the scanner through all six states once:
	// coarse timing + pss + sss (12 subframes each) + bch (2 frames) +
	// sib1 (2 frames) + si generic (1 frame), comfortably under sampbuf.Size.
	needed := 3*StateCoarseTiming.NumSampsNeeded() + 2*StateBchDecode.NumSampsNeeded() + StatePdschSiGeneric.NumSampsNeeded()
	fillBuffer(t, s, needed)

	s.Work()

	assert.True(t, s.decoded.MIBPrinted || s.corrPeakIdx > 0, "cell should have completed and reset, or still mid-decode")
	assert.GreaterOrEqual(t, s.corrPeakIdx, 1, "a fully-decoded cell should advance corrPeakIdx")
}

func Test_StepBchDecode_FailureRetriesCoarseTimingBy12Subframes(t *testing.T) {
	fake := &phy.Fake{
		SubframeResults: []phy.FakeResult[phy.Subframe]{{Err: phy.ErrNotFound}},
	}
	s := New(fake, testLogger())
	s.state = StateBchDecode
	fillBuffer(t, s, StateBchDecode.NumSampsNeeded())

	s.step()

	assert.Equal(t, StateCoarseTiming, s.state)
	assert.Equal(t, StateCoarseTiming.NumSampsNeeded(), s.Buf.R(),
		"BchDecode failure must advance r by 12 subframes, not by the 20-subframe window it read")
}

func Test_StepPdschSib1_FailureStaysInStateAndPreservesCell(t *testing.T) {
	fake := &phy.Fake{
		SubframeResults: []phy.FakeResult[phy.Subframe]{{Err: phy.ErrDecodeFailed}},
	}
	s := New(fake, testLogger())
	s.state = StatePdschSib1
	s.cell.NIDCell = 7
	s.cell.SFN = 100
	n := StatePdschSib1.NumSampsNeeded()
	fillBuffer(t, s, n)

	s.step()

	assert.Equal(t, StatePdschSib1, s.state, "a transient SIB1 decode failure must stay in PdschSib1, not reset to CoarseTiming")
	assert.Equal(t, n, s.Buf.R())
	assert.Equal(t, uint32(102), s.cell.SFN)
	assert.Equal(t, 7, s.cell.NIDCell, "a transient SIB1 failure must not wipe the acquired cell")
}

func Test_StepCoarseTiming_IdleWhenPeaksExhausted(t *testing.T) {
	fake := &phy.Fake{
		CoarseTimingResults: []phy.FakeCoarseTimingResult{{NCorrPeaks: 0}},
	}
	s := New(fake, testLogger())
	n := StateCoarseTiming.NumSampsNeeded()
	fillBuffer(t, s, n)

	s.step()
	assert.Equal(t, StateIdle, s.state)

	s.step() // drains the idle window and resumes searching
	assert.Equal(t, StateCoarseTiming, s.state)
	assert.Equal(t, n, s.Buf.R())
	assert.Equal(t, 0, s.corrPeakIdx)
}

func Test_DecodedSIBSet_Complete(t *testing.T) {
	d := newDecodedSIBSet()
	assert.False(t, d.Complete())

	d.MIBPrinted = true
	d.SIB1Printed = true
	d.SIB2Printed = true
	assert.True(t, d.Complete(), "with no SIBs scheduled beyond SIB2, MIB+SIB1+SIB2 is complete")

	d.Expected[rrc.SIBTypeSIB3] = true
	assert.False(t, d.Complete(), "an expected-but-unprinted SIB keeps the cell incomplete")

	d.Printed[rrc.SIBTypeSIB3] = true
	assert.True(t, d.Complete())
}

func Test_Reporter_ValueTagChange_ReArmsPrintedFlags(t *testing.T) {
	rp := NewReporter(testLogger())
	decoded := newDecodedSIBSet()
	decoded.Expected[rrc.SIBTypeSIB3] = true
	decoded.Printed[rrc.SIBTypeSIB3] = true
	decoded.SIB1Printed = true
	decoded.SIB2Printed = true

	cell := &CellDescriptor{}
	sib1 := &rrc.SIB1{SystemInfoValueTag: 2, SchedulingInfoList: []rrc.SchedulingInfo{{SIPeriodicity: 8}}}

	rp.prevSIValueTag = 1
	rp.prevSIValueTagValid = true

	rp.ReportSIB1(sib1, cell, &decoded)

	assert.False(t, decoded.Printed[rrc.SIBTypeSIB3], "a changed system-info value tag must clear previously printed SIBs")
	assert.True(t, decoded.SIB1Printed, "ReportSIB1 re-prints and re-sets SIB1Printed after a tag change")
}

func Test_Reporter_ReportMIB_OnlyPrintsOnce(t *testing.T) {
	rp := NewReporter(testLogger())
	decoded := newDecodedSIBSet()
	cell := &CellDescriptor{PHICHConfig: rrc.PHICHConfig{Resource: rrc.PHICHResourceOneSixth}}

	rp.ReportMIB(cell, &decoded)
	assert.True(t, decoded.MIBPrinted)

	// second call must be a no-op; nothing to assert on output directly,
	// but it must not panic or alter state
	rp.ReportMIB(cell, &decoded)
	assert.True(t, decoded.MIBPrinted)
}

func Test_State_NumSampsNeeded(t *testing.T) {
	assert.Equal(t, 12*30720, StateCoarseTiming.NumSampsNeeded())
	assert.Equal(t, 2*sampbuf.OneFrameNumSamps, StateBchDecode.NumSampsNeeded())
	assert.Equal(t, sampbuf.OneFrameNumSamps, StatePdschSiGeneric.NumSampsNeeded())
}
