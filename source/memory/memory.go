// Package memory provides an in-memory visibility table.
package memory

import (
	"context"
	"sync"

	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

func init() {
	source.Register("memory", source.OpenerFunc(open))
}

var (
	tablesMu sync.Mutex
	tables   = map[string]*Table{}
)

// Put publishes t under name so it can be opened through the "memory"
// source.
func Put(name string, t *Table) {
	tablesMu.Lock()
	tables[name] = t
	tablesMu.Unlock()
}

func open(_ context.Context, name string, opts source.Options) (source.Table, error) {
	tablesMu.Lock()
	t, ok := tables[name]
	tablesMu.Unlock()

	if !ok {
		return nil, errors.Errorf("no memory table named %q", name)
	}

	if opts.CrossOnly {
		return t.CrossOnly(), nil
	}

	return t, nil
}

// Table keeps rows in insertion order.
type Table struct {
	meta   source.Metadata
	column string
	rows   []source.Row
}

// New returns an empty table whose Row.Data is served as column.
func New(meta source.Metadata, column string) *Table {
	if column == "" {
		column = source.DefaultDataColumn
	}

	return &Table{meta: meta, column: column}
}

// Append adds rows. Each row must carry Channels × Correlations samples.
func (t *Table) Append(rows ...source.Row) error {
	n := t.meta.Channels() * t.meta.Correlations

	for i := range rows {
		if len(rows[i].Data) != n || len(rows[i].Flag) != n {
			return errors.Errorf("row %d: want %d samples, got %d data and %d flags",
				len(t.rows)+i, n, len(rows[i].Data), len(rows[i].Flag))
		}
	}

	t.rows = append(t.rows, rows...)
	return nil
}

// CrossOnly returns a view of t without autocorrelation rows.
func (t *Table) CrossOnly() *Table {
	out := &Table{meta: t.meta, column: t.column}

	for i := range t.rows {
		if !t.rows[i].IsAuto() {
			out.rows = append(out.rows, t.rows[i])
		}
	}

	return out
}

func (t *Table) NumRows() int {
	return len(t.rows)
}

func (t *Table) NumTimes(ctx context.Context) (int, error) {
	seen := make(map[float64]struct{})
	for i := range t.rows {
		seen[t.rows[i].Time] = struct{}{}
	}
	return len(seen), nil
}

func (t *Table) RowsPerTimestep(ctx context.Context) (int, error) {
	if len(t.rows) == 0 {
		return 0, nil
	}

	first := t.rows[0].Time
	count := 0
	for i := range t.rows {
		if t.rows[i].Time == first {
			count++
		}
	}

	return count, nil
}

func (t *Table) Metadata(ctx context.Context) (source.Metadata, error) {
	return t.meta, nil
}

func (t *Table) ReadColumn(ctx context.Context, col string, start, count int, blk *source.Block) error {
	if start < 0 || count < 0 || start+count > len(t.rows) {
		return errors.Wrapf(source.ErrRange, "rows [%d, %d) of %d", start, start+count, len(t.rows))
	}

	if blk.Rows != count {
		return errors.Errorf("block holds %d rows, asked for %d", blk.Rows, count)
	}

	rows := t.rows[start : start+count]

	switch col {
	case source.ColTime:
		for i := range rows {
			blk.Time[i] = rows[i].Time
		}

	case source.ColAntenna1:
		for i := range rows {
			blk.Antenna1[i] = rows[i].Antenna1
		}

	case source.ColAntenna2:
		for i := range rows {
			blk.Antenna2[i] = rows[i].Antenna2
		}

	case source.ColUVW:
		for i := range rows {
			blk.UVW[i] = rows[i].UVW
		}

	case source.ColFlag:
		for i := range rows {
			copy(blk.Flags(i), rows[i].Flag)
		}

	case t.column:
		for i := range rows {
			copy(blk.Samples(i), rows[i].Data)
		}

	default:
		return errors.Wrap(source.ErrUnknownColumn, col)
	}

	return nil
}

func (t *Table) Close() error {
	return nil
}
