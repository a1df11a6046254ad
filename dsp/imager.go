// Package dsp turns gridded visibilities into images.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/noriah/visgrid/fft"
	"github.com/noriah/visgrid/gridder"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Crop window as a fraction of the grid size.
const (
	CropLow  = 0.1
	CropHigh = 0.9
)

// Imager transforms the first correlation of a grid into a sky image.
type Imager struct {
	size  int
	taper []float32
	buf   []complex128
	plan  *fft.Plan
	frame Frame
}

// NewImager returns an imager for size × size grids. taper is the grid
// taper divided out of the image, size × size.
func NewImager(size int, taper []float32) (*Imager, error) {
	if len(taper) != size*size {
		return nil, errors.Errorf("grid taper has %d cells, want %d²", len(taper), size)
	}

	lo, hi := CropBounds(size)

	im := &Imager{
		size:  size,
		taper: taper,
		buf:   make([]complex128, size*size),
		frame: Frame{
			GridSize:  size,
			Grid:      make([]float64, size*size),
			ImageSize: hi - lo,
			Image:     make([]float64, (hi-lo)*(hi-lo)),
		},
	}

	fft.InitPlan(&im.plan, im.buf, size, size, fft.Forward)

	return im, nil
}

// CropBounds returns the [lo, hi) pixel range kept along each axis.
func CropBounds(size int) (int, int) {
	return int(float64(size) * CropLow), int(float64(size) * CropHigh)
}

// Transform runs the 2-D FFT over the first correlation of grid.
func (im *Imager) Transform(grid *gridder.Grid) error {
	if grid.Height != im.size || grid.Width != im.size {
		return errors.Errorf("grid is %d×%d, imager expects %d²", grid.Height, grid.Width, im.size)
	}

	for i, v := range grid.Plane(0) {
		im.buf[i] = complex128(v)
	}

	im.plan.Execute()

	return nil
}

// Render fills the frame from grid and the last transform. The frame is
// reused by the next call.
func (im *Imager) Render(grid *gridder.Grid, batch int, time float64) *Frame {
	f := &im.frame
	f.Batch = batch
	f.Time = time

	for i, v := range grid.Plane(0) {
		f.Grid[i] = math.Log(cmplx.Abs(complex128(v)) + 1)
	}

	lo, hi := CropBounds(im.size)
	w := hi - lo

	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			i := y*im.size + x

			var v float64
			if t := im.taper[i]; t != 0 {
				v = real(im.buf[i]) / float64(t)
			}

			f.Image[(y-lo)*w+(x-lo)] = v
		}
	}

	f.Peak = floats.Max(f.Image)
	f.Low, f.High = ColourLimits(f.Peak)

	return f
}

// ColourLimits returns the display range for an image peaking at m.
func ColourLimits(m float64) (float64, float64) {
	return -0.01 * m, 0.3 * m
}
