package stage

import (
	"context"
	"math"

	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

// Limit returns how many rows of nrows are processed for a percentage in
// [0, 100].
func Limit(nrows int, percentage float64) int {
	n := int(math.Floor(float64(nrows) * percentage / 100.0))
	if n > nrows {
		return nrows
	}
	if n < 0 {
		return 0
	}
	return n
}

// Extractor reads fixed-size batches of contiguous rows.
type Extractor struct {
	table        source.Table
	columns      []string
	rowsPerBatch int
	limit        int
	offset       int
	block        *source.Block
}

// NewExtractor returns an extractor reading rowsPerBatch rows at a time out
// of the first limit rows of table. column names the visibility column.
func NewExtractor(table source.Table, column string, rowsPerBatch, limit, channels, correlations int) *Extractor {
	if column == "" {
		column = source.DefaultDataColumn
	}

	return &Extractor{
		table: table,
		columns: []string{
			source.ColTime,
			source.ColAntenna1,
			source.ColAntenna2,
			source.ColUVW,
			column,
			source.ColFlag,
		},
		rowsPerBatch: rowsPerBatch,
		limit:        limit,
		block:        source.NewBlock(rowsPerBatch, channels, correlations),
	}
}

// Offset returns the first row of the next batch.
func (e *Extractor) Offset() int {
	return e.offset
}

// Remaining returns the number of unread rows below the limit.
func (e *Extractor) Remaining() int {
	return e.limit - e.offset
}

// Next reads the next batch. It returns ErrEndOfData, without reading,
// when fewer than rowsPerBatch rows remain. The returned block is reused by
// the next call.
func (e *Extractor) Next(ctx context.Context) (*source.Block, error) {
	if e.Remaining() < e.rowsPerBatch {
		return nil, ErrEndOfData
	}

	e.block.Resize(e.rowsPerBatch)

	for _, col := range e.columns {
		if err := e.table.ReadColumn(ctx, col, e.offset, e.rowsPerBatch, e.block); err != nil {
			return nil, errors.Wrapf(err, "read %s at row %d", col, e.offset)
		}
	}

	e.offset += e.rowsPerBatch
	return e.block, nil
}
