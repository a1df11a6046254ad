// Package source describes the row-oriented visibility tables the stager
// reads from.
//
// A table is measurement-set shaped: one row per (time, baseline), with
// fixed per-dataset metadata (stations, channel frequencies). Rows are
// stored time-major, every baseline of timestep 0 before any of timestep 1.
package source

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Column names understood by ReadColumn.
const (
	ColTime     = "TIME"
	ColAntenna1 = "ANTENNA1"
	ColAntenna2 = "ANTENNA2"
	ColUVW      = "UVW"
	ColFlag     = "FLAG"

	ColData          = "DATA"
	ColCorrectedData = "CORRECTED_DATA"
	ColModelData     = "MODEL_DATA"
)

// DefaultDataColumn is read when no data column is configured.
const DefaultDataColumn = ColCorrectedData

// DataColumns lists the visibility columns a table may carry.
var DataColumns = []string{ColData, ColCorrectedData, ColModelData}

// IsDataColumn reports whether name is a visibility column.
func IsDataColumn(name string) bool {
	for _, c := range DataColumns {
		if c == name {
			return true
		}
	}
	return false
}

// ErrUnknownColumn is returned for column names a table cannot serve.
var ErrUnknownColumn = errors.New("unknown column")

// ErrRange is returned when a read runs past the end of the table.
var ErrRange = errors.New("row range out of bounds")

// Metadata is fixed per dataset.
type Metadata struct {
	Stations     int       // number of antennas in the ANTENNA table
	Frequencies  []float64 // channel frequencies in Hz
	Correlations int       // correlations per sample (4 for full polarisation)
}

// Channels returns the number of frequency channels.
func (m Metadata) Channels() int {
	return len(m.Frequencies)
}

// Table is a readable visibility table.
type Table interface {
	// NumRows returns the number of rows visible through this table.
	NumRows() int
	// NumTimes counts distinct TIME values.
	NumTimes(ctx context.Context) (int, error)
	// RowsPerTimestep counts the rows sharing the first TIME value.
	RowsPerTimestep(ctx context.Context) (int, error)
	// Metadata returns the per-dataset metadata.
	Metadata(ctx context.Context) (Metadata, error)
	// ReadColumn reads count rows of col starting at row start into blk.
	ReadColumn(ctx context.Context, col string, start, count int, blk *Block) error
	Close() error
}

// Options control how a table is opened.
type Options struct {
	// CrossOnly hides rows where ANTENNA1 == ANTENNA2.
	CrossOnly bool
}

// Opener opens a table at path.
type Opener interface {
	Open(ctx context.Context, path string, opts Options) (Table, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, path string, opts Options) (Table, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string, opts Options) (Table, error) {
	return f(ctx, path, opts)
}

var openers = map[string]Opener{}

// Register registers an opener under name. This function is not
// thread-safe, and most packages should call it on init().
func Register(name string, o Opener) {
	openers[name] = o
}

// Names returns all registered source names, sorted.
func Names() []string {
	out := make([]string, 0, len(openers))
	for name := range openers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open opens path with the source registered under name.
func Open(ctx context.Context, name, path string, opts Options) (Table, error) {
	o, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("source not found: %q", name)
	}

	tbl, err := o.Open(ctx, path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s source %q", name, path)
	}

	return tbl, nil
}
