package dsp

import (
	"testing"

	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/gridder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropBounds(t *testing.T) {
	lo, hi := CropBounds(512)
	assert.Equal(t, 51, lo)
	assert.Equal(t, 460, hi)

	lo, hi = CropBounds(64)
	assert.Equal(t, 6, lo)
	assert.Equal(t, 57, hi)
}

func TestImagerPointSource(t *testing.T) {
	const size = 64

	im, err := NewImager(size, taper.Identity(size))
	require.NoError(t, err)

	// a unit visibility in the zero-spacing cell images to a flat sky
	grid := gridder.NewGrid(4, size)
	grid.Plane(0)[0] = 2

	require.NoError(t, im.Transform(grid))
	f := im.Render(grid, 3, 3600*25+60*7+5)

	assert.Equal(t, 3, f.Batch)
	assert.Equal(t, "UV Data: 01:07", f.Title())
	assert.Equal(t, 51, f.ImageSize)
	assert.Len(t, f.Image, 51*51)

	for _, v := range f.Image {
		assert.InDelta(t, 2.0, v, 1e-9)
	}

	assert.InDelta(t, 2.0, f.Peak, 1e-9)
	assert.InDelta(t, -0.02, f.Low, 1e-12)
	assert.InDelta(t, 0.6, f.High, 1e-12)

	assert.InDelta(t, 1.0986122886681098, f.GridAt(0, 0), 1e-9) // log(3)
	assert.Equal(t, 0.0, f.GridAt(1, 1))
}

func TestImagerTaper(t *testing.T) {
	const size = 16

	tp := taper.Identity(size)
	for i := range tp {
		tp[i] = 2
	}
	tp[8*size+8] = 0

	im, err := NewImager(size, tp)
	require.NoError(t, err)

	grid := gridder.NewGrid(1, size)
	grid.Plane(0)[0] = 1

	require.NoError(t, im.Transform(grid))
	f := im.Render(grid, 0, 0)

	lo, _ := CropBounds(size)
	assert.Equal(t, 0.5, f.ImageAt(0, 0))
	assert.Equal(t, 0.0, f.ImageAt(8-lo, 8-lo))
}

func TestImagerSize(t *testing.T) {
	_, err := NewImager(16, taper.Identity(8))
	assert.Error(t, err)

	im, err := NewImager(16, taper.Identity(16))
	require.NoError(t, err)
	assert.Error(t, im.Transform(gridder.NewGrid(1, 8)))
}

func TestScaler(t *testing.T) {
	s := NewScaler()

	assert.Equal(t, 1.0, s.Update(0))

	mag := s.Update(4)
	assert.InDelta(t, 4.0, mag, 1e-12)

	for i := 0; i < 10; i++ {
		mag = s.Update(4)
	}
	assert.InDelta(t, 4.0, mag, 1e-12)

	// invalid peaks do not move the scale
	assert.InDelta(t, 4.0, s.Update(-1), 1e-12)
}
