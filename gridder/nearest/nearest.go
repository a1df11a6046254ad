// Package nearest is a pure-Go stand-in for the IDG proxies. Every
// visibility is added to the single grid cell nearest its uv coordinate,
// with its Hermitian mirror at (-u, -v). It ignores the kernel, the taper,
// w and the phase shift, so it is for development and tests only and is not
// image-domain gridding.
package nearest

import (
	"math"

	"github.com/noriah/visgrid/fft"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/stage"
)

const speedOfLight = 299792458.0

func init() {
	gridder.RegisterBackend("nearest", gridder.BackendFunc(func() (gridder.Proxy, error) {
		return New(), nil
	}))
}

// mirror maps a correlation onto its partner in the conjugate baseline.
var mirror = [stage.NrCorrelations]int{0, 2, 1, 3}

// Proxy grids onto the nearest cell.
type Proxy struct {
	grid        *gridder.Grid
	subgridSize int
	cellSize    float32
	wStep       float32
	shift       [2]float32
	cached      bool
	plane       []complex128
}

var _ gridder.Proxy = (*Proxy)(nil)

func New() *Proxy {
	return &Proxy{}
}

func (p *Proxy) SetGrid(grid *gridder.Grid) error {
	if grid == nil {
		return gridder.ErrNoGrid
	}

	if grid.Correlations != stage.NrCorrelations {
		return stage.ErrShapeMismatch
	}

	p.grid = grid
	p.plane = make([]complex128, grid.Height*grid.Width)
	return nil
}

func (p *Proxy) InitCache(subgridSize int, cellSize, wStep float32, shift [2]float32) error {
	p.subgridSize = subgridSize
	p.cellSize = cellSize
	p.wStep = wStep
	p.shift = shift
	p.cached = true
	return nil
}

func (p *Proxy) ready(req *gridder.Request) error {
	if p.grid == nil {
		return gridder.ErrNoGrid
	}

	if !p.cached {
		return gridder.ErrNoCache
	}

	return req.Validate(p.subgridSize)
}

// cell returns the grid index nearest (u, v) in metres at freq, or -1 when
// it falls outside the grid.
func (p *Proxy) cell(u, v float32, freq float32) int {
	imageSize := float64(p.cellSize) * float64(p.grid.Width)
	scale := imageSize * float64(freq) / speedOfLight

	x := int(math.Round(float64(u)*scale)) + p.grid.Width/2
	y := int(math.Round(float64(v)*scale)) + p.grid.Height/2

	if x < 0 || x >= p.grid.Width || y < 0 || y >= p.grid.Height {
		return -1
	}

	return y*p.grid.Width + x
}

// jones returns the aterms of both stations of baseline bl at timestep t,
// taken at the subgrid centre.
func (p *Proxy) jones(req *gridder.Request, bl, t int) ([4]complex64, [4]complex64) {
	pair := req.Buffers.Baselines[bl]
	slot := gridder.Timeslot(req.ATermOffsets, t)
	c := p.subgridSize / 2

	return req.ATerms.At(slot, int(pair.Antenna1), c, c),
		req.ATerms.At(slot, int(pair.Antenna2), c, c)
}

func (p *Proxy) Gridding(req *gridder.Request) error {
	if err := p.ready(req); err != nil {
		return err
	}

	buf := req.Buffers

	for bl := 0; bl < buf.NrBaselines; bl++ {
		for t := 0; t < buf.NrTimesteps; t++ {
			uvw := buf.UVWAt(bl, t)
			vis := buf.Visibility(bl, t)
			a1, a2 := p.jones(req, bl, t)

			for ch, freq := range req.Frequencies {
				var v [4]complex64
				copy(v[:], vis[ch*4:ch*4+4])
				v = gridder.Apply(a1, v, a2)

				if i := p.cell(uvw[0], uvw[1], freq); i >= 0 {
					for c := range v {
						p.grid.Plane(c)[i] += v[c]
					}
				}

				if i := p.cell(-uvw[0], -uvw[1], freq); i >= 0 {
					for c := range v {
						m := v[mirror[c]]
						p.grid.Plane(c)[i] += complex(real(m), -imag(m))
					}
				}
			}
		}
	}

	return nil
}

func (p *Proxy) Degridding(req *gridder.Request) error {
	if err := p.ready(req); err != nil {
		return err
	}

	buf := req.Buffers

	for bl := 0; bl < buf.NrBaselines; bl++ {
		for t := 0; t < buf.NrTimesteps; t++ {
			uvw := buf.UVWAt(bl, t)
			vis := buf.Visibility(bl, t)
			a1, a2 := p.jones(req, bl, t)

			for ch, freq := range req.Frequencies {
				var g [4]complex64

				if i := p.cell(uvw[0], uvw[1], freq); i >= 0 {
					for c := range g {
						g[c] = p.grid.Plane(c)[i]
					}
					g = gridder.Apply(a1, g, a2)
				}

				copy(vis[ch*4:ch*4+4], g[:])
			}
		}
	}

	return nil
}

// Transform moves every grid plane between the Fourier and image domains
// with the zero frequency at the centre. The inverse is normalized.
func (p *Proxy) Transform(dir gridder.Direction) error {
	if p.grid == nil {
		return gridder.ErrNoGrid
	}

	h, w := p.grid.Height, p.grid.Width

	fftDir := fft.Forward
	scale := 1.0
	if dir == gridder.FourierToImage {
		fftDir = fft.Backward
		scale = 1 / float64(h*w)
	}

	plan := fft.NewPlan(p.plane, h, w, fftDir)
	defer plan.Destroy()

	for c := 0; c < p.grid.Correlations; c++ {
		plane := p.grid.Plane(c)
		for i, v := range plane {
			p.plane[i] = complex128(v)
		}

		fft.Shift(p.plane, h, w)
		plan.Execute()
		fft.Shift(p.plane, h, w)

		for i, v := range p.plane {
			plane[i] = complex64(v * complex(scale, 0))
		}
	}

	return nil
}

func (p *Proxy) Close() error {
	p.grid = nil
	p.plane = nil
	p.cached = false
	return nil
}
