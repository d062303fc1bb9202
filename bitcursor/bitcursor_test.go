package bitcursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_WriteBitsReadBits_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 32).Draw(t, "n")
		var mask uint32 = 0xFFFFFFFF
		if n < 32 {
			mask = (1 << uint(n)) - 1
		}
		value := rapid.Uint32().Draw(t, "value") & mask

		w := NewWriter()
		w.WriteBits(value, uint(n))
		buf, nbits := w.Bits()

		assert.Equal(t, n, nbits)

		r := NewReader(buf, nbits)
		got := r.ReadBits(uint(n))
		assert.Equal(t, value, got)
		assert.Equal(t, 0, r.Remaining())
	})
}

func Test_MultipleFields_RoundTripInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		widths := rapid.SliceOfN(rapid.IntRange(1, 16), 1, 12).Draw(t, "widths")
		values := make([]uint32, len(widths))

		w := NewWriter()
		for i, n := range widths {
			v := rapid.Uint32Range(0, uint32(1<<uint(n)-1)).Draw(t, "v")
			values[i] = v
			w.WriteBits(v, uint(n))
		}
		buf, nbits := w.Bits()

		r := NewReader(buf, nbits)
		for i, n := range widths {
			assert.Equal(t, values[i], r.ReadBits(uint(n)))
		}
		assert.Equal(t, 0, r.Remaining())
	})
}

func Test_WriteBool_ReadBool(t *testing.T) {
	w := NewWriter()
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteBool(true)
	buf, nbits := w.Bits()

	r := NewReader(buf, nbits)
	assert.True(t, r.ReadBool())
	assert.False(t, r.ReadBool())
	assert.True(t, r.ReadBool())
}

func Test_WriteOctets_ReadOctets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "in")

		w := NewWriter()
		w.WriteOctets(in)
		buf, nbits := w.Bits()

		assert.Equal(t, len(in)*8, nbits)

		r := NewReader(buf, nbits)
		out := r.ReadOctets(len(in))
		assert.Equal(t, in, out)
	})
}

func Test_ReadBits_PanicsPastEnd(t *testing.T) {
	w := NewWriter()
	w.WriteBits(1, 1)
	buf, nbits := w.Bits()
	r := NewReader(buf, nbits)

	assert.Panics(t, func() {
		r.ReadBits(2)
	})
}

func Test_WriteBits_PanicsOnZeroWidth(t *testing.T) {
	w := NewWriter()
	assert.Panics(t, func() {
		w.WriteBits(0, 0)
	})
}

func Test_WriteBits_PanicsOnOversizedWidth(t *testing.T) {
	w := NewWriter()
	assert.Panics(t, func() {
		w.WriteBits(0, 33)
	})
}

func Test_MSBFirst_PackingOrder(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	buf, nbits := w.Bits()
	assert.Equal(t, 3, nbits)
	assert.Equal(t, byte(0b10100000), buf[0])
}
