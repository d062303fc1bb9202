package scanner

import (
	"github.com/charmbracelet/log"
	"github.com/openlte/lte-fdd-dl-file-scan/internal/assertx"
	"github.com/openlte/lte-fdd-dl-file-scan/phy"
	"github.com/openlte/lte-fdd-dl-file-scan/rrc"
	"github.com/openlte/lte-fdd-dl-file-scan/sampbuf"
)

// lookbackSamps is the 100-sample lookback the original preserves across
// every tail copy-down: when the sample buffer wraps, the last 100
// samples of the consumed region are kept as correlation context for the
// next coarse-timing search, rather than starting that search completely
// cold.
const lookbackSamps = 100

// Scanner drives the six-state cell-scan FSM against a sample buffer,
// calling out to a phy.Provider for all signal-processing primitives and
// a Reporter for all decoded-field output.
//
// Grounded on LTE_fdd_dl_fs_samp_buf::work()/init().
type Scanner struct {
	Buf      sampbuf.Buf
	PHY      phy.Provider
	Reporter *Reporter
	Log      *log.Logger

	state State
	cell  CellDescriptor

	decoded     DecodedSIBSet
	corrPeakIdx int

	// idleConsumed is the sample count stashed by stepCoarseTiming when a
	// window's candidate peaks are exhausted, drained by stepIdle.
	idleConsumed int
}

// New returns a Scanner ready to ingest samples, ground state at
// StateCoarseTiming.
func New(provider phy.Provider, logger *log.Logger) *Scanner {
	s := &Scanner{
		PHY:      provider,
		Reporter: NewReporter(logger),
		Log:      logger,
	}
	s.initCell()
	return s
}

// initCell resets per-cell-attempt state, mirroring init(). phich_res
// starts at the zero rrc.PHICHResource (1/6, matching the original's
// zeroed phich_res before any MIB is decoded) and N_rb_dl/FFTPadSize
// default to the narrowest (1.4 MHz) configuration.
func (s *Scanner) initCell() {
	s.state = StateCoarseTiming
	s.cell = CellDescriptor{
		NRBDL:      bandwidthTable[rrc.DLBandwidth6].NRBDL,
		FFTPadSize: bandwidthTable[rrc.DLBandwidth6].FFTPadSize,
	}
	s.decoded = newDecodedSIBSet()
}

// Ingest appends raw interleaved-byte I/Q samples to the scanner's sample
// buffer. Callers (the CLI read loop) are responsible for not calling
// Ingest with more bytes than the buffer has room for; Buf.Ingest panics
// on overflow exactly like the original refuses further input once
// samp_buf_w_idx leaves no room for a full I/Q pair.
func (s *Scanner) Ingest(in []byte) {
	s.Buf.Ingest(in)
}

// Work drives the FSM forward as far as the sample buffer currently
// allows, i.e. while Buf.Avail() >= s.state.NumSampsNeeded(). It returns
// after exhausting the available samples for the current state, mirroring
// work()'s inner `while (r < w - num_samps_needed)` loop; the caller
// (the CLI) calls Work again after the next Ingest.
func (s *Scanner) Work() {
	for s.Buf.Avail() >= s.state.NumSampsNeeded() {
		s.step()

		if s.decoded.Complete() {
			s.corrPeakIdx++
			s.initCell()
		}
	}
}

func (s *Scanner) step() {
	switch s.state {
	case StateCoarseTiming:
		s.stepCoarseTiming()
	case StatePssFineTiming:
		s.stepPssFineTiming()
	case StateSssSearch:
		s.stepSssSearch()
	case StateBchDecode:
		s.stepBchDecode()
	case StatePdschSib1:
		s.stepPdschSib1()
	case StatePdschSiGeneric:
		s.stepPdschSiGeneric()
	case StateIdle:
		s.stepIdle()
	default:
		assertx.Assert(false, "scanner: unreachable state %v", s.state)
	}
}

// iqWindow returns the next n samples starting at the current read index
// as a complex slice for a PHY call. Once a cell's carrier frequency
// offset is known (every state but StateCoarseTiming, which is still
// searching for it), the window is shifted forward by FreqOffsetHz in
// place before being handed to the PHY, mirroring work()'s frequency
// correction pass; CopyDown later undoes exactly this same shift when
// retaining lookback samples across a buffer wrap.
func (s *Scanner) iqWindow(n int) []complex128 {
	r := s.Buf.R()
	if s.state != StateCoarseTiming && s.cell.FreqOffsetHz != 0 {
		sampbuf.FreqShift(&s.Buf, r, n, s.cell.FreqOffsetHz)
	}
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = complex(s.Buf.I(r+i), s.Buf.Q(r+i))
	}
	return out
}

// retryFromCoarseTiming consumes consumed samples and returns to coarse
// timing, mirroring work()'s behavior when a search/decode primitive
// fails to find or decode anything at the current peak: search again on
// the following samples, with the same corrPeakIdx, rather than aborting
// the whole scan.
func (s *Scanner) retryFromCoarseTiming(consumed int) {
	s.Buf.SetR(s.Buf.R() + consumed)
	s.initCell()
}

// advanceAndRetrySib1 advances past a failed SIB1 decode attempt without
// discarding the already-acquired cell: it stays in StatePdschSib1,
// advances r by consumed (one PDSCH_DECODE_SIB1_NUM_SAMPS window), and
// bumps sfn by 2 to track the frames skipped, mirroring
// `samp_buf_r_idx += PDSCH_DECODE_SIB1_NUM_SAMPS; sfn += 2;` with no state
// reset. A transient SIB1 CRC failure must not throw away NID_cell,
// FrameStartIdx, NRBDL, PHICHConfig, or NAnt.
func (s *Scanner) advanceAndRetrySib1(consumed int) {
	s.Buf.SetR(s.Buf.R() + consumed)
	s.cell.SFN += 2
}

// stepIdle drains the coarse-timing window whose candidate peaks were
// exhausted by stepCoarseTiming and resets the peak cursor, so the next
// window is searched again from peak 0. No error is raised; this is the
// scanner's normal behavior once every correlation peak in a window has
// been tried.
func (s *Scanner) stepIdle() {
	s.Buf.SetR(s.Buf.R() + s.idleConsumed)
	s.corrPeakIdx = 0
	s.state = StateCoarseTiming
}

func (s *Scanner) stepCoarseTiming() {
	n := s.state.NumSampsNeeded()
	result, nCorrPeaks, err := s.PHY.FindCoarseTimingAndFreqOffset(s.iqWindow(n), s.corrPeakIdx)
	if err != nil || s.corrPeakIdx >= nCorrPeaks {
		s.idleConsumed = n
		s.state = StateIdle
		return
	}

	s.cell.FrameStartIdx = result.FrameStartIdx
	s.cell.FreqOffsetHz = result.FreqOffsetHz

	// Align frame_start_idx forward past the current read index, as
	// work() does with its `while(frame_start_idx < samp_buf_r_idx)` loop.
	for s.cell.FrameStartIdx < s.Buf.R() {
		s.cell.FrameStartIdx += sampbuf.OneFrameNumSamps
	}

	s.Buf.SetR(s.Buf.R() + n)
	s.state = StatePssFineTiming
}

func (s *Scanner) stepPssFineTiming() {
	n := s.state.NumSampsNeeded()
	result, err := s.PHY.FindPSSAndFineTiming(s.iqWindow(n), s.cell.FrameStartIdx)
	if err != nil {
		s.retryFromCoarseTiming(n)
		return
	}

	s.cell.NID2 = result.NID2
	s.Buf.SetR(s.Buf.R() + n)
	s.state = StateSssSearch
}

func (s *Scanner) stepSssSearch() {
	n := s.state.NumSampsNeeded()
	result, err := s.PHY.FindSSS(s.iqWindow(n), s.cell.FrameStartIdx, s.cell.NID2)
	if err != nil {
		s.retryFromCoarseTiming(n)
		return
	}

	s.cell.NID1 = result.NID1
	s.cell.NIDCell = 3*result.NID1 + s.cell.NID2
	s.Buf.SetR(s.Buf.R() + n)
	s.state = StateBchDecode
}

func (s *Scanner) stepBchDecode() {
	n := s.state.NumSampsNeeded()

	// On any failure here, work() advances r by COARSE_TIMING_SEARCH_NUM_SAMPS
	// (12 subframes), not by the 20-subframe window BchDecode itself just
	// read, and falls back to a fresh coarse-timing search.
	bchFailRetry := StateCoarseTiming.NumSampsNeeded()

	sf, err := s.PHY.GetSubframeAndCE(s.iqWindow(n), s.cell.FrameStartIdx, 0, s.cell.NRBDL, s.cell.NIDCell)
	if err != nil {
		s.retryFromCoarseTiming(bchFailRetry)
		return
	}

	bits, nAnt, err := s.PHY.BCHChannelDecode(sf, s.cell.NRBDL, s.cell.NIDCell)
	if err != nil {
		s.retryFromCoarseTiming(bchFailRetry)
		return
	}

	msg, err := rrc.UnpackBCCHBCHMsg(bits.Bits)
	if err != nil {
		s.retryFromCoarseTiming(bchFailRetry)
		return
	}

	bw := bandwidthTable[msg.MIB.DLBandwidth]
	s.cell.NRBDL = bw.NRBDL
	s.cell.FFTPadSize = bw.FFTPadSize
	s.cell.PHICHConfig = msg.MIB.PHICHConfig
	s.cell.NAnt = nAnt

	// sfn = (sfn_div_4 << 2) + SFNOffset. Nothing in this package sets
	// SFNOffset, so it stays 0 and sfn is the first frame of the MIB's
	// 40ms period; the decoded frame's position within that period is not
	// recovered.
	s.cell.SFN = (uint32(msg.MIB.SFNDiv4) << 2) + s.cell.SFNOffset

	s.Reporter.ReportMIB(&s.cell, &s.decoded)

	s.Buf.SetR(s.Buf.R() + n)
	s.state = StatePdschSib1
}

func (s *Scanner) stepPdschSib1() {
	n := s.state.NumSampsNeeded()
	sf, err := s.PHY.GetSubframeAndCE(s.iqWindow(n), s.cell.FrameStartIdx, 5, s.cell.NRBDL, s.cell.NIDCell)
	if err != nil {
		s.advanceAndRetrySib1(n)
		return
	}

	dci, err := s.PHY.PDCCHChannelDecode(sf, s.cell.NRBDL, s.cell.NIDCell, s.cell.NAnt,
		phy.PhichCfg{Duration: int(s.cell.PHICHConfig.Duration), Resource: int(s.cell.PHICHConfig.Resource)},
		1, s.cell.SFN, 5)
	if err != nil {
		s.advanceAndRetrySib1(n)
		return
	}

	bits, err := s.PHY.PDSCHChannelDecode(sf, dci, s.cell.NRBDL, s.cell.NIDCell, s.cell.NAnt)
	if err != nil {
		s.advanceAndRetrySib1(n)
		return
	}

	msg, err := rrc.UnpackBCCHDLSCHMsg(bits.Bits, bits.NBits)
	if err != nil || msg.Type != rrc.BCCHDLSCHMessageTypeSIB1 {
		s.advanceAndRetrySib1(n)
		return
	}

	s.Reporter.ReportSIB1(msg.SIB1, &s.cell, &s.decoded)

	s.Buf.SetR(s.Buf.R() + n)
	s.state = StatePdschSiGeneric
}

func (s *Scanner) stepPdschSiGeneric() {
	n := s.state.NumSampsNeeded()
	sf, err := s.PHY.GetSubframeAndCE(s.iqWindow(n), s.cell.FrameStartIdx, 0, s.cell.NRBDL, s.cell.NIDCell)
	if err != nil {
		s.Buf.SetR(s.Buf.R() + n)
		s.maybeCopyDownTail()
		return
	}

	dci, err := s.PHY.PDCCHChannelDecode(sf, s.cell.NRBDL, s.cell.NIDCell, s.cell.NAnt,
		phy.PhichCfg{Duration: int(s.cell.PHICHConfig.Duration), Resource: int(s.cell.PHICHConfig.Resource)},
		1, s.cell.SFN, 0)
	if err != nil {
		s.Buf.SetR(s.Buf.R() + n)
		s.maybeCopyDownTail()
		return
	}

	bits, err := s.PHY.PDSCHChannelDecode(sf, dci, s.cell.NRBDL, s.cell.NIDCell, s.cell.NAnt)
	if err == nil {
		if msg, uerr := rrc.UnpackBCCHDLSCHMsg(bits.Bits, bits.NBits); uerr == nil &&
			msg.Type == rrc.BCCHDLSCHMessageTypeSystemInformation {
			for _, entry := range msg.SysInfo.SIBs {
				switch entry.Type {
				case rrc.SIBTypeSIB2:
					if entry.SIB2 != nil {
						s.Reporter.ReportSIB2(entry.SIB2, &s.decoded)
					}
				case rrc.SIBTypeSIB3:
					if entry.SIB3 != nil {
						s.Reporter.ReportSIB3(entry.SIB3, &s.decoded)
					}
				case rrc.SIBTypeSIB4:
					if entry.SIB4 != nil {
						s.Reporter.ReportSIB4(entry.SIB4, &s.decoded)
					}
				case rrc.SIBTypeSIB8:
					if entry.SIB8 != nil {
						s.Reporter.ReportSIB8(entry.SIB8, &s.decoded)
					}
				default:
					s.Reporter.ReportSIBGeneric(entry.Type, &s.decoded)
				}
			}
		}
	}

	s.Buf.SetR(s.Buf.R() + n)
	s.maybeCopyDownTail()
}

// maybeCopyDownTail copies the buffer's unconsumed tail down to index 0
// once the read index has advanced far enough to need it, preserving the
// lookbackSamps of correlation context. Grounded on work()'s tail
// copy-down: `samp_buf_r_idx -= 100; ... w=0; r=100;`.
func (s *Scanner) maybeCopyDownTail() {
	if s.Buf.R() < lookbackSamps {
		return
	}
	r := s.Buf.R() - lookbackSamps
	s.Buf.CopyDown(r, s.cell.FreqOffsetHz)
	s.Buf.SetR(lookbackSamps)
}
