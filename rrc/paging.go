package rrc

import "github.com/openlte/lte-fdd-dl-file-scan/bitcursor"

// PackPagingMsg encodes the Paging RRC message. Field order and presence
// rules are grounded on liblte_rrc_pack_paging_msg: a paging-record-list
// presence bit derived from the record count, the system-info-modification
// and etws-indication presence bits (each followed by its value bit when
// present) and the non-critical-extension presence bit, then the records
// (per-record extension + nested UE-identity choice, S-TMSI not modeled,
// only IMSI digit strings, then cn-Domain), and finally the non-critical
// extension chain carrying CMAS indication.
func PackPagingMsg(p Paging) ([]byte, int) {
	w := bitcursor.NewWriter()

	hasRecords := len(p.PagingRecordList) > 0
	w.WriteBool(hasRecords)

	// systemInfoModification-r8/etws-Indication-r9 are each
	// ENUMERATED{true} OPTIONAL: a presence bit, and only when present a
	// further 1-bit value (always true), per liblte_rrc.cc:6161-6340.
	// Absent and present-but-false are indistinguishable in this codec's
	// bool model, so presence doubles as the value.
	w.WriteBool(p.SystemInfoModification)
	if p.SystemInfoModification {
		w.WriteBool(true)
	}
	w.WriteBool(p.ETWSIndication)
	if p.ETWSIndication {
		w.WriteBool(true)
	}

	hasNonCritExt := p.CMASIndication
	w.WriteBool(hasNonCritExt)

	if hasRecords {
		w.WriteBits(uint32(len(p.PagingRecordList)-1), 4)
		for _, rec := range p.PagingRecordList {
			w.WriteBool(false) // record extension
			w.WriteBool(false) // UE-identity extension

			w.WriteBool(rec.UEIdentity.IsIMSI) // choice bit: 0=S-TMSI path unused here, 1=IMSI
			if rec.UEIdentity.IsIMSI {
				w.WriteBool(true)
				w.WriteBits(uint32(len(rec.UEIdentity.IMSI)-6), 4)
				for _, d := range rec.UEIdentity.IMSI {
					w.WriteBits(uint32(d), 4)
				}
			} else {
				w.WriteBool(false)
			}
			w.WriteBool(rec.CNDomainPS)
		}
	}

	if p.SystemInfoModification {
		// the etws/system-info-modification value bits were already written
		// with their presence bits above; no further fields follow them.
	}

	if hasNonCritExt {
		w.WriteBool(false) // late-non-crit-ext present
		w.WriteBool(true)  // non-crit-ext present (carries cmas)
		w.WriteBool(false) // inner non-crit-ext present
		w.WriteBool(true)  // cmas-Indication-r9 present
	}

	return w.Bits()
}

// UnpackPagingMsg decodes the Paging RRC message.
func UnpackPagingMsg(buf []byte, nbits int) (Paging, error) {
	r := bitcursor.NewReader(buf, nbits)
	var p Paging

	hasRecords := r.ReadBool()

	p.SystemInfoModification = r.ReadBool()
	if p.SystemInfoModification {
		r.ReadBool() // enumerated{true} value, always true
	}
	p.ETWSIndication = r.ReadBool()
	if p.ETWSIndication {
		r.ReadBool() // enumerated{true} value, always true
	}

	hasNonCritExt := r.ReadBool()

	if hasRecords {
		n := int(r.ReadBits(4)) + 1
		p.PagingRecordList = make([]PagingRecord, n)
		for i := 0; i < n; i++ {
			var rec PagingRecord
			recExt := r.ReadBool()
			idExt := r.ReadBool()
			if recExt || idExt {
				return p, ErrUnexpectedExtension
			}

			isIMSIChoice := r.ReadBool()
			if isIMSIChoice {
				imsiPresent := r.ReadBool()
				if !imsiPresent {
					return p, ErrInvalidInput
				}
				rec.UEIdentity.IsIMSI = true
				size := int(r.ReadBits(4)) + 6
				rec.UEIdentity.IMSI = make([]uint8, size)
				for j := 0; j < size; j++ {
					rec.UEIdentity.IMSI[j] = uint8(r.ReadBits(4))
				}
			} else {
				r.ReadBool() // S-TMSI presence bit, not modeled further
			}
			rec.CNDomainPS = r.ReadBool()
			p.PagingRecordList[i] = rec
		}
	}

	if hasNonCritExt {
		_ = r.ReadBool() // late-non-crit-ext present
		innerPresent := r.ReadBool()
		if innerPresent {
			_ = r.ReadBool() // inner non-crit-ext present
			p.CMASIndication = r.ReadBool()
		}
	}

	return p, nil
}

// PackPCCHMsg encodes the PCCH-Message container: a 1-bit choice
// (currently only the Paging arm is defined) followed by the Paging body.
// Grounded on liblte_rrc_pack_pcch_msg.
func PackPCCHMsg(msg PCCHMessage) ([]byte, int) {
	w := bitcursor.NewWriter()
	w.WriteBool(false) // choice: 0 selects Paging, the only defined arm
	body, nbits := PackPagingMsg(msg.Paging)
	appendBitcursorBody(w, body, nbits)
	return w.Bits()
}

// UnpackPCCHMsg decodes the PCCH-Message container.
func UnpackPCCHMsg(buf []byte, nbits int) (PCCHMessage, error) {
	if nbits < 1 {
		return PCCHMessage{}, ErrInvalidInput
	}
	r := bitcursor.NewReader(buf, nbits)
	choice := r.ReadBool()
	rest, restBits := remainingBits(r)

	var out PCCHMessage
	paging, err := UnpackPagingMsg(rest, restBits)
	out.Paging = paging
	if choice && err == nil {
		err = ErrInvalidInput
	}
	return out, err
}
