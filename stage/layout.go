package stage

import (
	"context"

	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

// NrCorrelations is the only correlation count the gridder accepts.
const NrCorrelations = 4

// Layout describes how a table splits into batches.
type Layout struct {
	Rows             int // rows visible through the table
	Times            int // distinct TIME values
	RowsPerTimestep  int // rows sharing one TIME, autocorrelations included
	Autocorrelations int // autocorrelation rows per timestep
	Baselines        int // cross baselines per timestep
	Timesteps        int // timesteps per batch
	Stations         int
	Frequencies      []float64
	Correlations     int
}

// Channels returns the number of frequency channels.
func (l *Layout) Channels() int {
	return len(l.Frequencies)
}

// RowsPerBatch returns the number of table rows one batch consumes.
func (l *Layout) RowsPerBatch() int {
	return l.RowsPerTimestep * l.Timesteps
}

// NewBufferSet allocates buffers sized for one batch.
func (l *Layout) NewBufferSet() *BufferSet {
	return NewBufferSet(l.Baselines, l.Timesteps, l.Channels(), l.Correlations)
}

// Probe reads the table metadata and the antenna pairs of the first
// timestep. Batches hold min(Times, timesteps) timesteps.
func Probe(ctx context.Context, tbl source.Table, timesteps int) (Layout, error) {
	var l Layout

	if timesteps < 1 {
		return l, errors.Errorf("timesteps per batch must be positive, got %d", timesteps)
	}

	meta, err := tbl.Metadata(ctx)
	if err != nil {
		return l, errors.Wrap(err, "read metadata")
	}

	if meta.Correlations != NrCorrelations {
		return l, errors.Wrapf(ErrShapeMismatch,
			"%d correlations, want %d", meta.Correlations, NrCorrelations)
	}

	if meta.Channels() == 0 {
		return l, errors.Wrap(ErrShapeMismatch, "no channels")
	}

	l.Rows = tbl.NumRows()
	l.Stations = meta.Stations
	l.Frequencies = meta.Frequencies
	l.Correlations = meta.Correlations

	if l.Times, err = tbl.NumTimes(ctx); err != nil {
		return l, errors.Wrap(err, "count times")
	}

	if l.RowsPerTimestep, err = tbl.RowsPerTimestep(ctx); err != nil {
		return l, errors.Wrap(err, "count rows per timestep")
	}

	if l.Rows == 0 || l.RowsPerTimestep == 0 {
		return l, errors.New("table is empty")
	}

	blk := source.NewBlock(l.RowsPerTimestep, 0, 0)
	for _, col := range []string{source.ColAntenna1, source.ColAntenna2} {
		if err := tbl.ReadColumn(ctx, col, 0, l.RowsPerTimestep, blk); err != nil {
			return l, errors.Wrapf(err, "read %s", col)
		}
	}

	for i := 0; i < blk.Rows; i++ {
		if blk.Antenna1[i] == blk.Antenna2[i] {
			l.Autocorrelations++
		}
	}

	l.Baselines = l.RowsPerTimestep - l.Autocorrelations
	if l.Baselines == 0 {
		return l, errors.Wrap(ErrShapeMismatch, "no cross-correlation baselines")
	}

	l.Timesteps = min(l.Times, timesteps)

	return l, nil
}
