package scanner

import (
	"github.com/charmbracelet/log"
	"github.com/openlte/lte-fdd-dl-file-scan/rrc"
)

// Reporter prints each decoded field exactly once per cell, mirroring
// print_mib()/print_sib1()/print_sib2() in LTE_fdd_dl_fs_samp_buf. It
// tracks the previous systemInfoValueTag and invalidates every
// already-printed SIB when the tag changes, since a changed value tag
// means SIB contents have been re-broadcast with new values.
type Reporter struct {
	log *log.Logger

	prevSIValueTag      uint8
	prevSIValueTagValid bool
}

// NewReporter returns a Reporter that writes through logger.
func NewReporter(logger *log.Logger) *Reporter {
	return &Reporter{log: logger}
}

// ReportMIB prints the MIB fields once per cell. Grounded on print_mib().
func (rp *Reporter) ReportMIB(cell *CellDescriptor, decoded *DecodedSIBSet) {
	if decoded.MIBPrinted {
		return
	}
	num, den := cell.PHICHConfig.Resource.Rational()
	rp.log.Info("MIB decoded",
		"freq_offset_hz", cell.FreqOffsetHz,
		"sfn", cell.SFN,
		"n_id_cell", cell.NIDCell,
		"n_ant", cell.NAnt,
		"n_rb_dl", cell.NRBDL,
		"phich_duration", cell.PHICHConfig.Duration,
		"phich_resource", cell.PHICHConfig.Resource.String(),
		"phich_resource_numerator", num,
		"phich_resource_denominator", den,
	)
	decoded.MIBPrinted = true
}

// ReportSIB1 prints SIB1's fields once per cell, and arms the
// sib*_expected flags in decoded per the scheduling info list. A changed
// systemInfoValueTag clears every previously-printed flag so the next
// broadcast of each SIB is reported again, mirroring print_sib1()'s
// "value tag changed" branch.
func (rp *Reporter) ReportSIB1(sib1 *rrc.SIB1, cell *CellDescriptor, decoded *DecodedSIBSet) {
	tagChanged := rp.prevSIValueTagValid && rp.prevSIValueTag != sib1.SystemInfoValueTag
	rp.prevSIValueTag = sib1.SystemInfoValueTag
	rp.prevSIValueTagValid = true

	if tagChanged {
		decoded.SIB1Printed = false
		decoded.SIB2Printed = false
		for t := range decoded.Printed {
			decoded.Printed[t] = false
		}
	}

	if decoded.SIB1Printed {
		return
	}

	for _, plmn := range sib1.PLMNIdentityList {
		rp.log.Info("SIB1 PLMN", "mcc", plmn.MCC, "mnc", plmn.MNC)
	}
	rp.log.Info("SIB1 decoded",
		"tac", sib1.TrackingAreaCode,
		"cell_id", sib1.CellIdentity,
		"cell_barred", sib1.CellBarred,
		"intra_freq_reselection", sib1.IntraFreqReselection,
		"csg_indication", sib1.CSGIndication,
		"q_rx_lev_min_dbm", int(sib1.QRxLevMin)*2,
		"freq_band_indicator", sib1.FreqBandIndicator,
		"si_window_length_ms", sib1.SIWindowLength,
		"system_info_value_tag", sib1.SystemInfoValueTag,
	)

	decoded.Expected[rrc.SIBTypeSIB2] = true
	for _, si := range sib1.SchedulingInfoList {
		for _, t := range si.SIBMappingInfo {
			decoded.Expected[rrc.SIBType(t)] = true
		}
	}

	decoded.SIB1Printed = true
}

// ReportSIB2 prints SIB2's AC barring fields once per cell. Grounded on
// print_sib2().
func (rp *Reporter) ReportSIB2(sib2 *rrc.SIB2, decoded *DecodedSIBSet) {
	if decoded.SIB2Printed {
		return
	}
	rp.log.Info("SIB2 decoded",
		"ac_barring_info_present", sib2.ACBarringInfoPresent,
		"ac_barring_for_emergency", sib2.ACBarringForEmergency,
		"time_alignment_timer", sib2.TimeAlignmentTimer,
	)
	decoded.SIB2Printed = true
}

// ReportSIB3 prints SIB3's cell-reselection fields once per cell; the
// speed-dependent (mobility-state) parameters are not printed. Grounded on
// print_sib3().
func (rp *Reporter) ReportSIB3(sib3 *rrc.SIB3, decoded *DecodedSIBSet) {
	if decoded.Printed[rrc.SIBTypeSIB3] {
		return
	}
	rp.log.Info("SIB3 decoded",
		"q_hyst", sib3.QHyst,
		"thresh_serving_low", sib3.ThreshServingLow,
		"cell_reselection_priority", sib3.CellReselectionPriority,
		"q_rx_lev_min", sib3.QRxLevMin,
		"s_intra_search", sib3.SIntraSearch,
		"neigh_cell_config", sib3.NeighCellConfig,
		"t_resel_eutra", sib3.TReselEUTRA,
	)
	decoded.Printed[rrc.SIBTypeSIB3] = true
}

// ReportSIB4 prints SIB4's intra-frequency neighbor and blacklist cell
// lists once per cell. Grounded on print_sib4().
func (rp *Reporter) ReportSIB4(sib4 *rrc.SIB4, decoded *DecodedSIBSet) {
	if decoded.Printed[rrc.SIBTypeSIB4] {
		return
	}
	for _, n := range sib4.IntraFreqNeighCellList {
		rp.log.Info("SIB4 intra-freq neighbor", "phys_cell_id", n.PhysCellID, "q_offset_range", n.QOffsetRange)
	}
	for _, b := range sib4.IntraFreqBlackCellList {
		rp.log.Info("SIB4 intra-freq blacklist", "start", b.Start, "range", b.Range)
	}
	rp.log.Info("SIB4 decoded",
		"n_neigh_cells", len(sib4.IntraFreqNeighCellList),
		"n_blacklist_cells", len(sib4.IntraFreqBlackCellList),
		"csg_phys_cell_id_range_present", sib4.CSGPhysCellIDRangePresent,
	)
	decoded.Printed[rrc.SIBTypeSIB4] = true
}

// ReportSIB8 prints SIB8's system-time and search-window fields and the
// number of HRPD and 1xRTT band-class entries once per cell; the
// per-band-class reselection parameters are not printed. Grounded on
// print_sib8().
func (rp *Reporter) ReportSIB8(sib8 *rrc.SIB8, decoded *DecodedSIBSet) {
	if decoded.Printed[rrc.SIBTypeSIB8] {
		return
	}
	rp.log.Info("SIB8 decoded",
		"sys_time_info_present", sib8.SysTimeInfoPresent,
		"sys_time_info_synchronous", sib8.SysTimeInfo.Synchronous,
		"search_window_size_present", sib8.SearchWindowSizePresent,
		"search_window_size", sib8.SearchWindowSize,
		"n_hrpd_band_classes", len(sib8.CellReselectionParamsHRPD),
		"n_1xrtt_band_classes", len(sib8.CellReselectionParams1XRTT),
	)
	decoded.Printed[rrc.SIBTypeSIB8] = true
}

// ReportSIBGeneric prints any other SIB type once per cell, keyed by its
// entry in decoded.Printed.
func (rp *Reporter) ReportSIBGeneric(t rrc.SIBType, decoded *DecodedSIBSet) {
	if decoded.Printed[t] {
		return
	}
	rp.log.Info("SIB decoded", "sib_type", t)
	decoded.Printed[t] = true
}
