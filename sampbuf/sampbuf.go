// Package sampbuf is the fixed-capacity interleaved I/Q sample buffer the
// scanner reads from. It converts a stream of interleaved signed-byte
// samples into planar float arrays and supports in-place frequency
// shifting, preserving the read/write index invariant
// 0 <= r <= w <= SAMP_BUF_SIZE.
//
// Grounded on
// original_source/LTE_fdd_dl_file_scan/src/LTE_fdd_dl_fs_samp_buf.cc's
// copy_input_to_samp_buf and freq_shift.
package sampbuf

import (
	"math"

	"github.com/openlte/lte-fdd-dl-file-scan/internal/assertx"
)

// OneSubframeNumSamps is the sample count of one 1ms LTE subframe at the
// 30.72 MHz reference sample rate.
const OneSubframeNumSamps = 30720

// OneFrameNumSamps is the sample count of one 10ms LTE radio frame. Named
// so call sites never repeat the literal 307200 the original hard-codes
// at its SFN-parity-skip site.
const OneFrameNumSamps = 10 * OneSubframeNumSamps

// Size is the sample buffer's fixed capacity, SAMP_BUF_SIZE in the
// original: ten LTE frames' worth of I/Q samples.
const Size = OneFrameNumSamps * 10

// Buf is the fixed-capacity interleaved I/Q sample buffer. The zero value
// is ready to use.
type Buf struct {
	i [Size]float64
	q [Size]float64

	r int // read index
	w int // write index

	lastWasI bool // carry flag: true if the most recently ingested byte was an I sample awaiting its Q pair
	pendingI float64
}

// R returns the current read index.
func (b *Buf) R() int { return b.r }

// W returns the current write index.
func (b *Buf) W() int { return b.w }

// SetR advances the read index, e.g. after a scanner state consumes
// num_samps_needed samples. 0 <= r <= w is enforced.
func (b *Buf) SetR(r int) {
	assertx.Assert(r >= 0 && r <= b.w, "sampbuf: SetR(%d) violates 0<=r<=w (w=%d)", r, b.w)
	b.r = r
}

// I returns the in-phase sample at idx.
func (b *Buf) I(idx int) float64 { return b.i[idx] }

// Q returns the quadrature sample at idx.
func (b *Buf) Q(idx int) float64 { return b.q[idx] }

// Avail returns the number of unconsumed samples, w-r.
func (b *Buf) Avail() int { return b.w - b.r }

// Ingest appends interleaved signed-byte I/Q samples (I0,Q0,I1,Q1,...) to
// the buffer, converting each byte to a float sample in [-1,1) by
// dividing by 128. If in has an odd length, the final I byte is held in
// lastWasI/pendingI and paired with the first byte of the next Ingest
// call, mirroring copy_input_to_samp_buf's last_samp_was_i carry.
//
// Ingest refuses to write past Size; callers (the CLI read loop) must
// check Avail()/remaining capacity and defer input the way work() defers
// ninput_items when samp_buf_w_idx leaves no room for a full pair.
func (b *Buf) Ingest(in []byte) {
	idx := 0

	if b.lastWasI {
		assertx.Assert(len(in) > 0, "sampbuf: Ingest called with empty input while an I sample is pending")
		b.writeSample(b.pendingI, sampleToFloat(in[0]))
		b.lastWasI = false
		idx = 1
	}

	for idx+1 < len(in) {
		b.writeSample(sampleToFloat(in[idx]), sampleToFloat(in[idx+1]))
		idx += 2
	}

	if idx < len(in) {
		b.pendingI = sampleToFloat(in[idx])
		b.lastWasI = true
	}
}

func sampleToFloat(b byte) float64 {
	return float64(int8(b)) / 128.0
}

func (b *Buf) writeSample(iv, qv float64) {
	assertx.Assert(b.w < Size, "sampbuf: write index %d exceeds capacity %d", b.w, Size)
	b.i[b.w] = iv
	b.q[b.w] = qv
	b.w++
}

// CopyDown discards the first r samples and the 100-sample lookback
// convention preserved from the original: the caller passes r already
// decremented by 100 (or clamped to 0) so the next coarse-timing search
// retains correlation context from the tail of the previous search
// window. Samples from r..w-1 are moved to 0..(w-r-1), freqOffset is
// un-applied across the copied range (the original always stores samples
// pre-frequency-correction in the retained tail), w is set to the number of
// samples kept (w-r) and r is set to 0; the caller then moves r past the
// lookback samples with SetR.
func (b *Buf) CopyDown(r int, freqOffsetHz float64) {
	assertx.Assert(r >= 0 && r <= b.w, "sampbuf: CopyDown r=%d out of [0,w=%d]", r, b.w)

	n := b.w - r
	if freqOffsetHz != 0 {
		FreqShift(b, r, n, -freqOffsetHz)
	}
	for i := 0; i < n; i++ {
		b.i[i] = b.i[r+i]
		b.q[i] = b.q[r+i]
	}
	b.w = n
	b.r = 0
}

// FreqShift multiplies num samples starting at startIdx by a complex tone
// of the given offset (Hz), in place. Grounded on freq_shift's exact
// formula: f_samp = exp(-j * 2*pi*(i+1)*freqOffset*(0.0005/15360)),
// applied as (i,q) -> (i*cos+q*sin, q*cos-i*sin).
//
// FreqShift is self-inverse under offset negation: FreqShift(b, start, n,
// -f) exactly undoes FreqShift(b, start, n, f), since the tone applied at
// sample i only depends on (i, freqOffset) and negating freqOffset
// conjugates the unit-magnitude tone.
func FreqShift(b *Buf, startIdx, num int, freqOffsetHz float64) {
	assertx.Assert(startIdx >= 0 && startIdx+num <= Size, "sampbuf: FreqShift range [%d,%d) exceeds capacity %d", startIdx, startIdx+num, Size)

	const sampPeriod = 0.0005 / 15360.0
	for n := 0; n < num; n++ {
		angle := float64(n+1) * (-freqOffsetHz) * 2 * math.Pi * sampPeriod
		re := math.Cos(angle)
		im := math.Sin(angle)

		i := b.i[startIdx+n]
		q := b.q[startIdx+n]
		b.i[startIdx+n] = i*re + q*im
		b.q[startIdx+n] = q*re - i*im
	}
}
