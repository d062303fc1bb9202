// Package phy defines the boundary between the scanner state machine and
// the lower physical layer (correlation, OFDM demodulation, channel
// decode). The real DSP chain is out of scope for this repository (see
// spec's Non-goals); this package only carries the contract the scanner
// drives, grounded on the PHY call sites in
// original_source/LTE_fdd_dl_file_scan's work() state machine
// (liblte_phy_find_coarse_timing_and_freq_offset,
// liblte_phy_find_pss_and_fine_timing, liblte_phy_find_sss,
// liblte_phy_get_subframe_and_ce, liblte_phy_bch_channel_decode,
// liblte_phy_pdcch_channel_decode, liblte_phy_pdsch_channel_decode).
package phy

import "errors"

// ErrNotFound is returned by a search primitive (coarse timing, PSS, SSS)
// when no peak clears its detection threshold in the supplied window. The
// scanner treats this as "keep consuming samples", not a fatal condition.
var ErrNotFound = errors.New("phy: not found")

// ErrDecodeFailed is returned by a channel-decode primitive (BCH, PDCCH,
// PDSCH) when a CRC check fails. The scanner treats this as a transient
// failure: a BCH failure sends it back to a fresh coarse-timing search, a
// SIB1 failure retries on the next SIB1 window, and a SystemInformation
// failure skips the window. The correlation-peak index is not advanced.
var ErrDecodeFailed = errors.New("phy: channel decode failed")

// CoarseTiming is the result of coarse timing and frequency offset
// acquisition: a sample index believed to be a frame boundary and a
// carrier frequency offset estimate in Hz.
type CoarseTiming struct {
	FrameStartIdx int
	FreqOffsetHz  float64
}

// FineTiming is the result of PSS-based fine timing search: a refined
// sample index and the detected N_id_2 (physical-layer identity group
// member, 0-2).
type FineTiming struct {
	PeakIdx int
	NID2    int
}

// SSSResult is the result of SSS search: the cell-identity group N_id_1
// (N_id_2 comes from the PSS search) and whether frame alignment was
// resolved.
type SSSResult struct {
	NID1        int
	FrameAligned bool
}

// Subframe is a demodulated, channel-estimated OFDM subframe handed to a
// channel decoder. Fields are opaque to the scanner; only phy produces and
// consumes them.
type Subframe struct {
	Samples []complex128
	CFO     float64
}

// DecodedBits is the output of a channel decoder: the information bits
// that survived CRC, packed MSB-first the same way bitcursor.Writer packs
// them.
type DecodedBits struct {
	Bits  []byte
	NBits int
}

// Provider is the physical-layer contract the scanner state machine
// drives. One primitive per row of the external-interface table: each is
// a pure function of the buffers it is handed, matching how
// LTE_fdd_dl_fs_samp_buf::work() treats the PHY calls it makes.
type Provider interface {
	// FindCoarseTimingAndFreqOffset searches iq for a frame boundary and
	// carrier frequency offset over a COARSE_TIMING_SEARCH_NUM_SAMPS
	// window, returning the peakIdx-th candidate correlation peak found
	// and the total number of candidate peaks in this window (n_corr_peaks).
	// A caller that has exhausted every candidate (peakIdx >= nCorrPeaks)
	// goes idle rather than treating this as an error.
	FindCoarseTimingAndFreqOffset(iq []complex128, peakIdx int) (timing CoarseTiming, nCorrPeaks int, err error)

	// FindPSSAndFineTiming refines timing against the primary
	// synchronization signal and determines N_id_2.
	FindPSSAndFineTiming(iq []complex128, frameStartIdx int) (FineTiming, error)

	// FindSSS searches for the secondary synchronization signal to
	// determine N_id_1 and resolve full frame alignment.
	FindSSS(iq []complex128, peakIdx int, nid2 int) (SSSResult, error)

	// GetSubframeAndCE demodulates one subframe and estimates its channel.
	GetSubframeAndCE(iq []complex128, frameStartIdx int, subframeIdx int, nRBDL uint32, nIDCell int) (Subframe, error)

	// BCHChannelDecode decodes the physical broadcast channel, producing
	// the 24-bit MIB payload plus the detected number of antenna ports.
	BCHChannelDecode(sf Subframe, nRBDL uint32, nIDCell int) (bits DecodedBits, nAnt int, err error)

	// PDCCHChannelDecode decodes the control region of a subframe to
	// locate a DCI pointing at a SIB's PDSCH allocation.
	PDCCHChannelDecode(sf Subframe, nRBDL uint32, nIDCell int, nAnt int, phichRes PhichCfg, cfi int, sfn uint32, subframeIdx int) (DCI, error)

	// PDSCHChannelDecode decodes the data region identified by a DCI into
	// the transport block bits (a BCCH-DLSCH message payload).
	PDSCHChannelDecode(sf Subframe, dci DCI, nRBDL uint32, nIDCell int, nAnt int) (DecodedBits, error)
}

// PhichCfg is the minimal PHICH configuration a PDCCH decode needs: just
// the duration/resource pair already carried by rrc.PHICHConfig, kept as
// its own type here so phy does not import rrc (the PHY boundary has no
// business depending on the RRC message codec).
type PhichCfg struct {
	Duration int
	Resource int
}

// DCI is the subset of downlink control information the scanner needs to
// locate a SIB's PDSCH allocation: resource block assignment and
// modulation/coding scheme are collapsed into TBSizeBits, since nothing
// above this boundary needs to recompute them.
type DCI struct {
	TBSizeBits int
}
