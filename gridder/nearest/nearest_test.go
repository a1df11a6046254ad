package nearest

import (
	"errors"
	"testing"

	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gridSize    = 64
	subgridSize = 8
	imageSize   = 0.2
)

func newProxy(t *testing.T) (*Proxy, *gridder.Grid) {
	t.Helper()

	p := New()
	grid := gridder.NewGrid(4, gridSize)

	require.NoError(t, p.SetGrid(grid))
	require.NoError(t, p.InitCache(subgridSize, imageSize/gridSize, 0, [2]float32{}))

	return p, grid
}

// One baseline, one timestep, one channel at a frequency where 1 m is
// 0.2 pixels.
func newRequest() *gridder.Request {
	buf := stage.NewBufferSet(1, 1, 1, 4)
	buf.Baselines[0] = stage.Baseline{Antenna1: 0, Antenna2: 1}
	copy(buf.UVWAt(0, 0), []float32{50, -25, 3})
	copy(buf.Visibility(0, 0), []complex64{1 + 1i, 0.5i, 0.25, 2})

	return &gridder.Request{
		KernelSize:   4,
		Frequencies:  []float32{speedOfLight},
		Buffers:      buf,
		ATerms:       gridder.IdentityATerms(1, 2, subgridSize),
		ATermOffsets: gridder.ATermOffsets(1, 1),
		Taper:        taper.Make2D(subgridSize, taper.Spheroidal),
	}
}

func TestGridding(t *testing.T) {
	p, grid := newProxy(t)
	require.NoError(t, p.Gridding(newRequest()))

	// (10, -5) pixels from the centre
	at := 27*gridSize + 42
	assert.Equal(t, complex64(1+1i), grid.Plane(0)[at])
	assert.Equal(t, complex64(0.5i), grid.Plane(1)[at])
	assert.Equal(t, complex64(0.25), grid.Plane(2)[at])
	assert.Equal(t, complex64(2), grid.Plane(3)[at])

	// conjugate at (-10, 5), XY and YX swapped
	mir := 37*gridSize + 22
	assert.Equal(t, complex64(1-1i), grid.Plane(0)[mir])
	assert.Equal(t, complex64(0.25), grid.Plane(1)[mir])
	assert.Equal(t, complex64(-0.5i), grid.Plane(2)[mir])
	assert.Equal(t, complex64(2), grid.Plane(3)[mir])

	nonZero := 0
	for _, v := range grid.Data {
		if v != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 8, nonZero)
}

func TestDegridding(t *testing.T) {
	p, _ := newProxy(t)

	req := newRequest()
	require.NoError(t, p.Gridding(req))

	req.Buffers.Reset()
	req.Buffers.Baselines[0] = stage.Baseline{Antenna1: 0, Antenna2: 1}
	copy(req.Buffers.UVWAt(0, 0), []float32{50, -25, 3})
	require.NoError(t, p.Degridding(req))

	assert.Equal(t, []complex64{1 + 1i, 0.5i, 0.25, 2}, req.Buffers.Visibility(0, 0))
}

func TestOutsideGrid(t *testing.T) {
	p, grid := newProxy(t)

	req := newRequest()
	copy(req.Buffers.UVWAt(0, 0), []float32{1e6, 0, 0})
	require.NoError(t, p.Gridding(req))

	for _, v := range grid.Data {
		assert.Equal(t, complex64(0), v)
	}
}

func TestNotReady(t *testing.T) {
	p := New()

	err := p.Gridding(newRequest())
	assert.True(t, errors.Is(err, gridder.ErrNoGrid))

	require.NoError(t, p.SetGrid(gridder.NewGrid(4, gridSize)))
	err = p.Gridding(newRequest())
	assert.True(t, errors.Is(err, gridder.ErrNoCache))

	require.NoError(t, p.InitCache(subgridSize, imageSize/gridSize, 0, [2]float32{}))
	req := newRequest()
	req.Frequencies = nil
	err = p.Gridding(req)
	assert.True(t, errors.Is(err, stage.ErrShapeMismatch))

	assert.Error(t, p.SetGrid(gridder.NewGrid(1, gridSize)))
}

func TestTransformRoundTrip(t *testing.T) {
	p, grid := newProxy(t)
	require.NoError(t, p.Gridding(newRequest()))

	want := append([]complex64(nil), grid.Data...)

	require.NoError(t, p.Transform(gridder.FourierToImage))
	require.NoError(t, p.Transform(gridder.ImageToFourier))

	for i := range want {
		assert.InDelta(t, real(want[i]), real(grid.Data[i]), 1e-5)
		assert.InDelta(t, imag(want[i]), imag(grid.Data[i]), 1e-5)
	}
}

func TestTransformHermitianIsReal(t *testing.T) {
	p, grid := newProxy(t)
	require.NoError(t, p.Gridding(newRequest()))
	require.NoError(t, p.Transform(gridder.FourierToImage))

	for _, v := range grid.Plane(0) {
		assert.InDelta(t, 0.0, imag(v), 1e-6)
	}
}

func TestRegistered(t *testing.T) {
	proxy, err := gridder.InitBackend("nearest")
	require.NoError(t, err)
	assert.IsType(t, &Proxy{}, proxy)
	assert.NoError(t, proxy.Close())
}
