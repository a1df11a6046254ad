//go:build idg && cgo

// Package idg binds the image-domain gridding proxies of libidg.
package idg

/*
#cgo LDFLAGS: -lidg
#include <stdlib.h>
#include <string.h>

typedef struct Proxy Proxy;

void Proxy_destroy(Proxy* p);

void Proxy_set_grid(Proxy* p, float _Complex* grid, int nr_w_layers,
                    int nr_correlations, int height, int width);

void Proxy_init_cache(Proxy* p, int subgrid_size, float cell_size,
                      float w_step, float* shift);

void Proxy_gridding(Proxy* p, int kernel_size, int subgrid_size,
                    int nr_channels, int nr_baselines, int nr_timesteps,
                    int nr_correlations, int nr_timeslots, int nr_stations,
                    float* frequencies, float _Complex* visibilities,
                    float* uvw, unsigned int* baselines,
                    float _Complex* aterms, unsigned int* aterms_offsets,
                    float* taper);

void Proxy_degridding(Proxy* p, int kernel_size, int subgrid_size,
                      int nr_channels, int nr_baselines, int nr_timesteps,
                      int nr_correlations, int nr_timeslots, int nr_stations,
                      float* frequencies, float _Complex* visibilities,
                      float* uvw, unsigned int* baselines,
                      float _Complex* aterms, unsigned int* aterms_offsets,
                      float* taper);

void Proxy_transform(Proxy* p, int direction);
*/
import "C"

import (
	"unsafe"

	"github.com/noriah/visgrid/gridder"
	"github.com/pkg/errors"
)

// libidg directions
const (
	fourierDomainToImageDomain = 0
	imageDomainToFourierDomain = 1
)

// Proxy wraps a libidg proxy. libidg keeps the grid pointer between calls,
// so the grid lives in C memory and is copied back into the Go grid after
// every call that writes it.
type Proxy struct {
	ptr         *C.Proxy
	grid        *gridder.Grid
	cgrid       unsafe.Pointer
	subgridSize int
	cached      bool
}

var _ gridder.Proxy = (*Proxy)(nil)

func newProxy(ptr *C.Proxy) (*Proxy, error) {
	if ptr == nil {
		return nil, errors.New("libidg returned no proxy")
	}
	return &Proxy{ptr: ptr}, nil
}

func (p *Proxy) SetGrid(grid *gridder.Grid) error {
	if grid == nil {
		return gridder.ErrNoGrid
	}

	p.freeGrid()

	size := C.size_t(len(grid.Data)) * C.size_t(unsafe.Sizeof(complex64(0)))
	p.cgrid = C.malloc(size)
	if p.cgrid == nil {
		return errors.New("failed to allocate grid")
	}

	p.grid = grid
	p.push()

	C.Proxy_set_grid(p.ptr, (*C.complexfloat)(p.cgrid), 1,
		C.int(grid.Correlations), C.int(grid.Height), C.int(grid.Width))

	return nil
}

func (p *Proxy) InitCache(subgridSize int, cellSize, wStep float32, shift [2]float32) error {
	C.Proxy_init_cache(p.ptr, C.int(subgridSize), C.float(cellSize), C.float(wStep),
		(*C.float)(unsafe.Pointer(&shift[0])))

	p.subgridSize = subgridSize
	p.cached = true
	return nil
}

// cSlice views the C grid as Go memory.
func (p *Proxy) cSlice() []complex64 {
	return unsafe.Slice((*complex64)(p.cgrid), len(p.grid.Data))
}

// push copies the Go grid into C memory.
func (p *Proxy) push() {
	copy(p.cSlice(), p.grid.Data)
}

// pull copies the C grid back into the Go grid.
func (p *Proxy) pull() {
	copy(p.grid.Data, p.cSlice())
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

type call func(p *C.Proxy, kernelSize, subgridSize, nrChannels, nrBaselines,
	nrTimesteps, nrCorrelations, nrTimeslots, nrStations C.int,
	frequencies *C.float, visibilities *C.complexfloat, uvw *C.float,
	baselines *C.uint, aterms *C.complexfloat, atermsOffsets *C.uint,
	taper *C.float)

func (p *Proxy) run(req *gridder.Request, fn call) {
	buf := req.Buffers

	fn(p.ptr,
		C.int(req.KernelSize),
		C.int(p.subgridSize),
		C.int(buf.NrChannels),
		C.int(buf.NrBaselines),
		C.int(buf.NrTimesteps),
		C.int(buf.NrCorrelations),
		C.int(req.ATerms.Timeslots),
		C.int(req.ATerms.Stations),
		(*C.float)(unsafe.Pointer(&req.Frequencies[0])),
		(*C.complexfloat)(unsafe.Pointer(&buf.Visibilities[0])),
		(*C.float)(unsafe.Pointer(&buf.UVW[0])),
		(*C.uint)(unsafe.Pointer(&buf.Baselines[0])),
		(*C.complexfloat)(unsafe.Pointer(&req.ATerms.Data[0])),
		(*C.uint)(unsafe.Pointer(&req.ATermOffsets[0])),
		(*C.float)(unsafe.Pointer(&req.Taper[0])),
	)
}

func gridding(p *C.Proxy, kernelSize, subgridSize, nrChannels, nrBaselines,
	nrTimesteps, nrCorrelations, nrTimeslots, nrStations C.int,
	frequencies *C.float, visibilities *C.complexfloat, uvw *C.float,
	baselines *C.uint, aterms *C.complexfloat, atermsOffsets *C.uint,
	taper *C.float) {
	C.Proxy_gridding(p, kernelSize, subgridSize, nrChannels, nrBaselines,
		nrTimesteps, nrCorrelations, nrTimeslots, nrStations, frequencies,
		visibilities, uvw, baselines, aterms, atermsOffsets, taper)
}

func degridding(p *C.Proxy, kernelSize, subgridSize, nrChannels, nrBaselines,
	nrTimesteps, nrCorrelations, nrTimeslots, nrStations C.int,
	frequencies *C.float, visibilities *C.complexfloat, uvw *C.float,
	baselines *C.uint, aterms *C.complexfloat, atermsOffsets *C.uint,
	taper *C.float) {
	C.Proxy_degridding(p, kernelSize, subgridSize, nrChannels, nrBaselines,
		nrTimesteps, nrCorrelations, nrTimeslots, nrStations, frequencies,
		visibilities, uvw, baselines, aterms, atermsOffsets, taper)
}

func (p *Proxy) Gridding(req *gridder.Request) error {
	if err := p.ready(req); err != nil {
		return err
	}

	p.run(req, gridding)
	p.pull()

	return nil
}

func (p *Proxy) Degridding(req *gridder.Request) error {
	if err := p.ready(req); err != nil {
		return err
	}

	p.push()
	p.run(req, degridding)

	return nil
}

func (p *Proxy) Transform(dir gridder.Direction) error {
	if p.grid == nil {
		return gridder.ErrNoGrid
	}

	d := fourierDomainToImageDomain
	if dir == gridder.ImageToFourier {
		d = imageDomainToFourierDomain
	}

	p.push()
	C.Proxy_transform(p.ptr, C.int(d))
	p.pull()

	return nil
}

func (p *Proxy) freeGrid() {
	if p.cgrid != nil {
		C.free(p.cgrid)
		p.cgrid = nil
	}
}

func (p *Proxy) Close() error {
	if p.ptr != nil {
		C.Proxy_destroy(p.ptr)
		p.ptr = nil
	}

	p.freeGrid()
	p.grid = nil

	return nil
}
