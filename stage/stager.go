// Package stage turns row-oriented visibility tables into the dense
// baseline-major buffers a gridder consumes.
//
// One batch goes through four steps: the Extractor reads a fixed number of
// contiguous rows, Normalize zeroes flagged and NaN samples,
// FilterAutocorrelations drops rows where both antennas are equal and
// Transpose reorders the remaining (timestep, baseline) rows into
// (baseline, timestep) buffers.
package stage

import (
	"context"

	"github.com/noriah/visgrid/source"
)

// Batch describes the last staged batch.
type Batch struct {
	Index    int     // zero based
	Offset   int     // first table row
	Time     float64 // TIME of the first row
	Flagged  int     // flagged samples
	NaN      int     // NaN samples
	Autocorr int     // rows dropped as autocorrelations
}

// Stager runs the staging steps over one table, reusing its block and
// buffers for every batch.
type Stager struct {
	layout  Layout
	ext     *Extractor
	buffers *BufferSet
	block   *source.Block
	batch   Batch
	index   int
}

// NewStager stages the first limit rows of tbl.
func NewStager(tbl source.Table, column string, layout Layout, limit int) *Stager {
	return &Stager{
		layout: layout,
		ext: NewExtractor(tbl, column, layout.RowsPerBatch(), limit,
			layout.Channels(), layout.Correlations),
		buffers: layout.NewBufferSet(),
		index:   -1,
	}
}

// Layout returns the batch layout.
func (s *Stager) Layout() Layout {
	return s.layout
}

// Buffers returns the buffer set Transpose writes into.
func (s *Stager) Buffers() *BufferSet {
	return s.buffers
}

// Batch returns the state of the last batch read.
func (s *Stager) Batch() Batch {
	return s.batch
}

// Remaining returns the unread rows below the limit.
func (s *Stager) Remaining() int {
	return s.ext.Remaining()
}

// Read zeroes the buffers, then extracts and normalizes the next batch.
// It returns ErrEndOfData when fewer rows remain than a batch needs.
func (s *Stager) Read(ctx context.Context) error {
	s.buffers.Reset()
	s.block = nil

	offset := s.ext.Offset()

	blk, err := s.ext.Next(ctx)
	if err != nil {
		return err
	}

	s.index++
	s.block = blk
	s.batch = Batch{
		Index:  s.index,
		Offset: offset,
		Time:   blk.Time[0],
	}

	s.batch.Flagged, s.batch.NaN = Normalize(blk)

	return nil
}

// Transpose filters autocorrelations out of the batch read last and
// writes it into the buffers.
func (s *Stager) Transpose() error {
	if s.block == nil {
		return ErrEndOfData
	}

	s.batch.Autocorr = FilterAutocorrelations(s.block)

	return Transpose(s.block, s.buffers)
}

// Next reads and transposes the next batch.
func (s *Stager) Next(ctx context.Context) (*BufferSet, error) {
	if err := s.Read(ctx); err != nil {
		return nil, err
	}

	if err := s.Transpose(); err != nil {
		return nil, err
	}

	return s.buffers, nil
}
