// Package gridder describes the image-domain gridding backends the staged
// batches are handed to.
package gridder

import (
	"github.com/noriah/visgrid/stage"
	"github.com/pkg/errors"
)

var (
	// ErrBackendNotFound is returned for backend names nobody registered.
	ErrBackendNotFound = errors.New("backend not found")

	// ErrBackendUnavailable is returned when a registered backend is not
	// part of this build.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNoGrid is returned when a proxy is used before SetGrid.
	ErrNoGrid = errors.New("grid not set")

	// ErrNoCache is returned when a proxy grids before InitCache.
	ErrNoCache = errors.New("cache not initialized")
)

// Direction selects the grid transform.
type Direction int

const (
	FourierToImage Direction = iota
	ImageToFourier
)

func (d Direction) String() string {
	switch d {
	case FourierToImage:
		return "fourier-to-image"
	case ImageToFourier:
		return "image-to-fourier"
	default:
		return "unknown"
	}
}

// Proxy is a gridding backend. Buffers passed in are only borrowed for the
// duration of a call, except the grid which the proxy writes into until
// the next SetGrid.
type Proxy interface {
	SetGrid(grid *Grid) error
	InitCache(subgridSize int, cellSize, wStep float32, shift [2]float32) error
	Gridding(req *Request) error
	Degridding(req *Request) error
	Transform(dir Direction) error
	Close() error
}

// Grid is a correlations × height × width complex array.
type Grid struct {
	Correlations int
	Height       int
	Width        int
	Data         []complex64
}

// NewGrid allocates a zeroed square grid.
func NewGrid(correlations, size int) *Grid {
	return &Grid{
		Correlations: correlations,
		Height:       size,
		Width:        size,
		Data:         make([]complex64, correlations*size*size),
	}
}

// Plane returns the height × width cells of correlation c.
func (g *Grid) Plane(c int) []complex64 {
	n := g.Height * g.Width
	return g.Data[c*n : (c+1)*n : (c+1)*n]
}

// Reset zeroes the grid.
func (g *Grid) Reset() {
	clear(g.Data)
}

// Request carries everything one Gridding or Degridding call needs besides
// the grid and cache settings.
type Request struct {
	KernelSize   int
	Frequencies  []float32
	Buffers      *stage.BufferSet
	ATerms       *ATerms
	ATermOffsets []int32
	Taper        []float32 // subgrid × subgrid
}

// Validate checks the request shapes against its buffers.
func (r *Request) Validate(subgridSize int) error {
	buf := r.Buffers

	switch {
	case buf == nil:
		return errors.New("request has no buffers")

	case buf.NrCorrelations != stage.NrCorrelations:
		return errors.Wrapf(stage.ErrShapeMismatch,
			"%d correlations, want %d", buf.NrCorrelations, stage.NrCorrelations)

	case len(r.Frequencies) != buf.NrChannels:
		return errors.Wrapf(stage.ErrShapeMismatch,
			"%d frequencies for %d channels", len(r.Frequencies), buf.NrChannels)

	case r.KernelSize < 1 || r.KernelSize > subgridSize:
		return errors.Errorf("kernel size %d outside [1, %d]", r.KernelSize, subgridSize)

	case len(r.Taper) != subgridSize*subgridSize:
		return errors.Wrapf(stage.ErrShapeMismatch,
			"taper has %d cells, want %d²", len(r.Taper), subgridSize)

	case r.ATerms == nil:
		return errors.New("request has no aterms")

	case r.ATerms.SubgridSize != subgridSize:
		return errors.Wrapf(stage.ErrShapeMismatch,
			"aterms are %d², subgrid is %d²", r.ATerms.SubgridSize, subgridSize)
	}

	if err := r.ATerms.validate(); err != nil {
		return err
	}

	if err := validateOffsets(r.ATermOffsets, r.ATerms.Timeslots, buf.NrTimesteps); err != nil {
		return err
	}

	for bl, pair := range buf.Baselines {
		if pair.Antenna1 < 0 || pair.Antenna2 < 0 ||
			int(pair.Antenna1) >= r.ATerms.Stations || int(pair.Antenna2) >= r.ATerms.Stations {
			return errors.Wrapf(stage.ErrShapeMismatch,
				"baseline %d (%d, %d) outside %d stations",
				bl, pair.Antenna1, pair.Antenna2, r.ATerms.Stations)
		}
	}

	return nil
}
