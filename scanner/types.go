// Package scanner implements the passive cell-scan state machine: coarse
// timing/frequency search, PSS/SSS detection, BCH/MIB decode, and
// iterated PDSCH/SIB decode against a sample buffer, plus the stateful
// cell reporter that prints each decoded field exactly once per cell
// (re-arming on system-info value-tag change).
//
// Grounded on
// original_source/LTE_fdd_dl_file_scan/src/LTE_fdd_dl_fs_samp_buf.cc's
// work(), init(), print_mib(), and print_sib1()/print_sib2().
package scanner

import (
	"github.com/openlte/lte-fdd-dl-file-scan/rrc"
	"github.com/openlte/lte-fdd-dl-file-scan/sampbuf"
)

// State is one of the scanner states: the six decode states visited in a
// fixed order for each candidate cell, plus StateIdle.
type State int

const (
	StateCoarseTiming State = iota
	StatePssFineTiming
	StateSssSearch
	StateBchDecode
	StatePdschSib1
	StatePdschSiGeneric
	// StateIdle is entered when a coarse-timing search window's candidate
	// correlation peaks are exhausted (peak_idx >= n_corr_peaks); it
	// consumes the window and returns to StateCoarseTiming without
	// raising an error, per the scanner's multi-cell iteration rule.
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateCoarseTiming:
		return "coarse_timing"
	case StatePssFineTiming:
		return "pss_fine_timing"
	case StateSssSearch:
		return "sss_search"
	case StateBchDecode:
		return "bch_decode"
	case StatePdschSib1:
		return "pdsch_sib1"
	case StatePdschSiGeneric:
		return "pdsch_si_generic"
	case StateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// NumSampsNeeded returns how many unconsumed samples State needs before
// the scanner will attempt its work, grounded on work()'s num_samps_needed
// switch.
func (s State) NumSampsNeeded() int {
	switch s {
	case StateCoarseTiming:
		return 12 * sampbuf.OneSubframeNumSamps
	case StatePssFineTiming, StateSssSearch:
		return 12 * sampbuf.OneSubframeNumSamps
	case StateBchDecode:
		return 2 * sampbuf.OneFrameNumSamps
	case StatePdschSib1:
		return 2 * sampbuf.OneFrameNumSamps
	case StatePdschSiGeneric:
		return sampbuf.OneFrameNumSamps
	case StateIdle:
		// idle drains the already-read coarse-timing window on its own;
		// it never blocks waiting for more samples.
		return 0
	default:
		return 0
	}
}

// CellDescriptor accumulates everything known about the cell currently
// being decoded: physical-layer identity, timing, and the MIB fields.
// Reset by Scanner.initCell at the start of every peak attempt.
type CellDescriptor struct {
	NIDCell int
	NID1    int
	NID2    int

	FrameStartIdx int
	FreqOffsetHz  float64

	NRBDL        uint32
	FFTPadSize   int
	NAnt         int

	PHICHConfig rrc.PHICHConfig
	SFN         uint32
	SFNOffset   uint32
}

// bandwidthTable maps rrc.DLBandwidth to (N_rb_dl, fft_pad_size), grounded
// on work()'s bandwidth switch (1.4/3/5/10/15/20 MHz).
var bandwidthTable = map[rrc.DLBandwidth]struct {
	NRBDL      uint32
	FFTPadSize int
}{
	rrc.DLBandwidth6:   {6, 966},
	rrc.DLBandwidth15:  {15, 858},
	rrc.DLBandwidth25:  {25, 726},
	rrc.DLBandwidth50:  {50, 476},
	rrc.DLBandwidth75:  {75, 226},
	rrc.DLBandwidth100: {100, 0},
}

// DecodedSIBSet tracks which SIBs have been both expected (per SIB1's
// scheduling info) and printed for the current cell, so the scanner knows
// when a cell's decode is complete and can advance to the next peak.
//
// Grounded on the mib_printed/sib1_printed/.../sib8_printed and
// sib3_expected/sib4_expected/sib8_expected fields of
// LTE_fdd_dl_fs_samp_buf, generalized here into a map so future SIB types
// slot in without new struct fields.
type DecodedSIBSet struct {
	MIBPrinted  bool
	SIB1Printed bool
	SIB2Printed bool

	Expected map[rrc.SIBType]bool
	Printed  map[rrc.SIBType]bool
}

func newDecodedSIBSet() DecodedSIBSet {
	return DecodedSIBSet{
		Expected: make(map[rrc.SIBType]bool),
		Printed:  make(map[rrc.SIBType]bool),
	}
}

// Complete reports whether every expected SIB (plus MIB, SIB1, and the
// always-implicit SIB2) has been printed, mirroring work()'s cell-complete
// check.
func (d DecodedSIBSet) Complete() bool {
	if !d.MIBPrinted || !d.SIB1Printed || !d.SIB2Printed {
		return false
	}
	for t, exp := range d.Expected {
		if t == rrc.SIBTypeSIB2 {
			continue // SIB2 is tracked by SIB2Printed, checked above
		}
		if exp && !d.Printed[t] {
			return false
		}
	}
	return true
}
