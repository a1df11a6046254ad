// Package simulate generates synthetic measurement-set shaped datasets: a
// random station layout observing a single point source while the earth
// rotates.
package simulate

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/source/memory"
	"github.com/pkg/errors"
)

const (
	speedOfLight = 299792458.0
	earthRate    = 7.292115e-5 // rad/s
)

// Config describes the observation.
type Config struct {
	Stations     int     // number of stations
	Times        int     // number of timesteps
	Channels     int     // number of frequency channels
	Correlations int     // 4 for full polarisation
	StartTime    float64 // seconds
	Interval     float64 // seconds between timesteps
	Frequency    float64 // first channel, Hz
	ChannelWidth float64 // Hz
	Radius       float64 // station layout radius, metres
	Latitude     float64 // radians
	Declination  float64 // radians
	SourceL      float64 // point source direction cosine
	SourceM      float64 // point source direction cosine
	Flux         float64 // Jy
	Flagged      float64 // fraction of flagged samples [0, 1]
	NaN          float64 // fraction of NaN samples [0, 1]
	Seed         int64
}

// DefaultConfig returns a small LOFAR-like observation.
func DefaultConfig() Config {
	return Config{
		Stations:     16,
		Times:        512,
		Channels:     8,
		Correlations: 4,
		StartTime:    4.8728e9,
		Interval:     10.0,
		Frequency:    150e6,
		ChannelWidth: 195312.5,
		Radius:       3000.0,
		Latitude:     52.9 * math.Pi / 180.0,
		Declination:  58.8 * math.Pi / 180.0,
		SourceL:      0.01,
		SourceM:      -0.005,
		Flux:         1.0,
		Seed:         1,
	}
}

// Validate checks the config for obvious mistakes.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Stations < 2:
		return errors.New("too few stations (2 min)")
	case cfg.Times < 1:
		return errors.New("too few timesteps (1 min)")
	case cfg.Channels < 1:
		return errors.New("too few channels (1 min)")
	case cfg.Correlations != 4:
		return errors.New("correlations must be 4")
	case cfg.Flagged < 0 || cfg.Flagged > 1:
		return errors.New("flagged fraction outside [0, 1]")
	case cfg.NaN < 0 || cfg.NaN > 1:
		return errors.New("nan fraction outside [0, 1]")
	}

	return nil
}

// Generator produces rows one timestep at a time.
type Generator struct {
	cfg      Config
	rng      *rand.Rand
	antennas []source.Antenna
	freqs    []float64
}

// New lays out the stations.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		antennas: make([]source.Antenna, cfg.Stations),
		freqs:    make([]float64, cfg.Channels),
	}

	for i := range g.antennas {
		r := cfg.Radius * math.Sqrt(g.rng.Float64())
		theta := 2 * math.Pi * g.rng.Float64()

		g.antennas[i] = source.Antenna{
			Name:     fmt.Sprintf("ST%03d", i),
			Position: [3]float64{r * math.Cos(theta), r * math.Sin(theta), 0},
		}
	}

	for ch := range g.freqs {
		g.freqs[ch] = cfg.Frequency + float64(ch)*cfg.ChannelWidth
	}

	return g, nil
}

// Metadata returns the dataset metadata.
func (g *Generator) Metadata() source.Metadata {
	return source.Metadata{
		Stations:     g.cfg.Stations,
		Frequencies:  append([]float64(nil), g.freqs...),
		Correlations: g.cfg.Correlations,
	}
}

// Antennas returns the station layout.
func (g *Generator) Antennas() []source.Antenna {
	return append([]source.Antenna(nil), g.antennas...)
}

// RowsPerTimestep returns stations × (stations + 1) / 2: every cross
// baseline plus one autocorrelation per station.
func (g *Generator) RowsPerTimestep() int {
	return g.cfg.Stations * (g.cfg.Stations + 1) / 2
}

// Timestep returns the rows of timestep t in storage order: antenna1
// ascending, then antenna2 ascending from antenna1, autocorrelations
// included.
func (g *Generator) Timestep(t int) []source.Row {
	cfg := &g.cfg

	time := cfg.StartTime + float64(t)*cfg.Interval
	ha := float64(t) * cfg.Interval * earthRate

	sinLat, cosLat := math.Sincos(cfg.Latitude)
	sinDec, cosDec := math.Sincos(cfg.Declination)
	sinHA, cosHA := math.Sincos(ha)

	n := math.Sqrt(1 - cfg.SourceL*cfg.SourceL - cfg.SourceM*cfg.SourceM)

	rows := make([]source.Row, 0, g.RowsPerTimestep())
	samples := cfg.Channels * cfg.Correlations

	for a1 := 0; a1 < cfg.Stations; a1++ {
		for a2 := a1; a2 < cfg.Stations; a2++ {
			p1 := g.antennas[a1].Position
			p2 := g.antennas[a2].Position

			east := p2[0] - p1[0]
			north := p2[1] - p1[1]
			up := p2[2] - p1[2]

			// local horizon to equatorial
			x := -sinLat*north + cosLat*up
			y := east
			z := cosLat*north + sinLat*up

			uvw := source.UVW{
				sinHA*x + cosHA*y,
				-sinDec*cosHA*x + sinDec*sinHA*y + cosDec*z,
				cosDec*cosHA*x - cosDec*sinHA*y + sinDec*z,
			}

			row := source.Row{
				Time:     time,
				Antenna1: int32(a1),
				Antenna2: int32(a2),
				UVW:      uvw,
				Data:     make([]complex128, samples),
				Flag:     make([]bool, samples),
			}

			for ch, f := range g.freqs {
				phase := -2 * math.Pi * (uvw[0]*cfg.SourceL + uvw[1]*cfg.SourceM + uvw[2]*(n-1)) * f / speedOfLight
				v := complex(cfg.Flux, 0) * cmplx.Rect(1, phase)

				// XX and YY carry the source, XY and YX stay zero
				base := ch * cfg.Correlations
				row.Data[base] = v
				row.Data[base+cfg.Correlations-1] = v
			}

			g.corrupt(&row)

			rows = append(rows, row)
		}
	}

	return rows
}

func (g *Generator) corrupt(row *source.Row) {
	if g.cfg.Flagged == 0 && g.cfg.NaN == 0 {
		return
	}

	for i := range row.Data {
		if g.rng.Float64() < g.cfg.Flagged {
			row.Flag[i] = true
		}

		if g.rng.Float64() < g.cfg.NaN {
			row.Data[i] = complex(math.NaN(), imag(row.Data[i]))
		}
	}
}

// Each calls fn with the rows of every timestep in order.
func (g *Generator) Each(ctx context.Context, fn func(t int, rows []source.Row) error) error {
	for t := 0; t < g.cfg.Times; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(t, g.Timestep(t)); err != nil {
			return errors.Wrapf(err, "timestep %d", t)
		}
	}

	return nil
}

// Table generates the whole observation into a memory table.
func (g *Generator) Table(ctx context.Context, column string) (*memory.Table, error) {
	tbl := memory.New(g.Metadata(), column)

	err := g.Each(ctx, func(_ int, rows []source.Row) error {
		return tbl.Append(rows...)
	})
	if err != nil {
		return nil, err
	}

	return tbl, nil
}
