package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

// Writer creates a dataset and appends rows to it.
type Writer struct {
	db      *sql.DB
	columns []string
	samples int
	next    int64
	cross   int64
}

// Create creates a new dataset at path. Row data is written to every
// column in columns (DATA and CORRECTED_DATA when empty). It fails if path
// already exists.
func Create(ctx context.Context, path string, meta source.Metadata, antennas []source.Antenna, columns ...string) (*Writer, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("%s already exists", path)
	}

	if len(antennas) != meta.Stations {
		return nil, errors.Errorf("%d antennas for %d stations", len(antennas), meta.Stations)
	}

	if len(columns) == 0 {
		columns = []string{source.ColData, source.ColCorrectedData}
	}

	for _, c := range columns {
		if !source.IsDataColumn(c) {
			return nil, errors.Wrap(source.ErrUnknownColumn, c)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	w := &Writer{
		db:      db,
		columns: columns,
		samples: meta.Channels() * meta.Correlations,
	}

	if err := w.writeMetadata(ctx, meta, antennas); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

func (w *Writer) writeMetadata(ctx context.Context, meta source.Metadata, antennas []source.Antenna) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO layout (id, nr_channels, nr_correlations) VALUES (0, ?, ?)`,
		meta.Channels(), meta.Correlations)
	if err != nil {
		return errors.Wrap(err, "failed to insert layout")
	}

	for ch, f := range meta.Frequencies {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO spectral_window (chan, chan_freq) VALUES (?, ?)`, ch, f)
		if err != nil {
			return errors.Wrap(err, "failed to insert channel frequency")
		}
	}

	for id, a := range antennas {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO antenna (id, name, x, y, z) VALUES (?, ?, ?, ?, ?)`,
			id, a.Name, a.Position[0], a.Position[1], a.Position[2])
		if err != nil {
			return errors.Wrap(err, "failed to insert antenna")
		}
	}

	return tx.Commit()
}

// Append writes rows in one transaction, numbering them after the rows
// already written. Cross-correlation rows also get the next cross row id.
func (w *Writer) Append(ctx context.Context, rows ...source.Row) error {
	dataCols := make([]string, len(w.columns))
	for i, c := range w.columns {
		dataCols[i] = sqlColumns[c]
	}

	query := fmt.Sprintf(`INSERT INTO visibility
		(row_id, cross_row_id, time, antenna1, antenna2, u, v, w, flag, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?%s)`,
		strings.Join(dataCols, ", "),
		strings.Repeat(", ?", len(dataCols)))

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	args := make([]interface{}, 9+len(dataCols))
	cross := w.cross

	for i := range rows {
		r := &rows[i]

		if len(r.Data) != w.samples || len(r.Flag) != w.samples {
			return errors.Errorf("row %d: want %d samples, got %d data and %d flags",
				w.next+int64(i), w.samples, len(r.Data), len(r.Flag))
		}

		args[0] = w.next + int64(i)
		args[1] = nil
		if r.Antenna1 != r.Antenna2 {
			args[1] = cross
			cross++
		}
		args[2] = r.Time
		args[3] = r.Antenna1
		args[4] = r.Antenna2
		args[5] = r.UVW[0]
		args[6] = r.UVW[1]
		args[7] = r.UVW[2]
		args[8] = source.EncodeFlag(r.Flag)

		data := source.EncodeData(r.Data)
		for c := range dataCols {
			args[9+c] = data
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "failed to insert row %d", w.next+int64(i))
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	w.next += int64(len(rows))
	w.cross = cross
	return nil
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int64 {
	return w.next
}

func (w *Writer) Close() error {
	return w.db.Close()
}
