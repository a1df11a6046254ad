package taper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpheroidalAt(t *testing.T) {
	assert.InDelta(t, 1.0, SpheroidalAt(0), 1e-5)
	assert.Equal(t, 0.0, SpheroidalAt(1))
	assert.Equal(t, 0.0, SpheroidalAt(1.5))
	assert.Equal(t, 0.0, SpheroidalAt(-0.1))

	prev := SpheroidalAt(0)
	for nu := 0.05; nu <= 1.0; nu += 0.05 {
		v := SpheroidalAt(nu)
		assert.Less(t, v, prev, "nu %v", nu)
		assert.GreaterOrEqual(t, v, 0.0, "nu %v", nu)
		prev = v
	}

	// both pieces agree where they meet
	assert.InDelta(t, SpheroidalAt(0.7499999), SpheroidalAt(0.75), 1e-3)
}

func TestMake2D(t *testing.T) {
	const size = 32

	tp := Make2D(size, Spheroidal)
	assert.Len(t, tp, size*size)

	// peak at the centre, zero on the first row and column
	centre := tp[size/2*size+size/2]
	assert.InDelta(t, 1.0, centre, 1e-5)
	assert.Equal(t, float32(0), tp[0])
	assert.Equal(t, float32(0), tp[5])
	assert.Equal(t, float32(0), tp[5*size])

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			assert.Equal(t, tp[y*size+x], tp[x*size+y])
			assert.LessOrEqual(t, tp[y*size+x], centre)
		}
	}
}

func TestIdentity(t *testing.T) {
	for _, v := range Identity(8) {
		assert.Equal(t, float32(1), v)
	}
}

func TestWindows(t *testing.T) {
	for _, name := range Names() {
		buf := []float64{1, 1, 1, 1, 1, 1, 1, 1}
		Functions[name](buf)

		// periodic windows peak in the middle
		for i, v := range buf {
			assert.LessOrEqual(t, v, buf[4]+1e-12, "%s[%d]", name, i)
		}
	}

	buf := []float64{1, 1, 1, 1}
	Hann(buf)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5}, buf, 1e-12)
}
