// Package sqlite stores measurement-set shaped visibility tables in a
// sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/util"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

func init() {
	source.Register("sqlite", source.OpenerFunc(func(ctx context.Context, path string, opts source.Options) (source.Table, error) {
		return Open(ctx, path, opts)
	}))
}

const (
	viewAll   = "visibility"
	viewCross = "visibility_cross"
)

// sqlColumns maps table column names onto sql expressions.
var sqlColumns = map[string]string{
	source.ColTime:          "time",
	source.ColAntenna1:      "antenna1",
	source.ColAntenna2:      "antenna2",
	source.ColUVW:           "u, v, w",
	source.ColFlag:          "flag",
	source.ColData:          "data",
	source.ColCorrectedData: "corrected_data",
	source.ColModelData:     "model_data",
}

// ErrNotDataset is returned by Open for sqlite files that Create did not
// write.
var ErrNotDataset = errors.New("not a visgrid dataset")

// Dataset is a visibility table backed by sqlite.
type Dataset struct {
	*sql.DB

	view string
	rows int
	meta source.Metadata
}

var _ source.Table = (*Dataset)(nil)

// Open opens an existing dataset at path.
func Open(ctx context.Context, path string, opts source.Options) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	version, err := checkSchema(ctx, db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, path)
	}

	ds := &Dataset{DB: db, view: viewAll}
	if opts.CrossOnly {
		ds.view = viewCross
	}

	if err := ds.load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	util.Logf("opened dataset %s (schema %d): %d rows, %d stations, %d channels",
		path, version, ds.rows, ds.meta.Stations, ds.meta.Channels())

	return ds, nil
}

func (ds *Dataset) load(ctx context.Context) error {
	err := ds.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, ds.view)).Scan(&ds.rows)
	if err != nil {
		return errors.Wrap(err, "failed to count rows")
	}

	err = ds.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM antenna`).Scan(&ds.meta.Stations)
	if err != nil {
		return errors.Wrap(err, "failed to count antennas")
	}

	var channels int
	err = ds.QueryRowContext(ctx,
		`SELECT nr_channels, nr_correlations FROM layout WHERE id = 0`).
		Scan(&channels, &ds.meta.Correlations)
	if err != nil {
		return errors.Wrap(err, "failed to read layout")
	}

	rows, err := ds.QueryContext(ctx,
		`SELECT chan_freq FROM spectral_window ORDER BY chan`)
	if err != nil {
		return errors.Wrap(err, "failed to read spectral window")
	}
	defer rows.Close()

	for rows.Next() {
		var f float64
		if err := rows.Scan(&f); err != nil {
			return err
		}
		ds.meta.Frequencies = append(ds.meta.Frequencies, f)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	if len(ds.meta.Frequencies) != channels {
		return errors.Errorf("layout has %d channels, spectral window %d",
			channels, len(ds.meta.Frequencies))
	}

	return nil
}

func (ds *Dataset) NumRows() int {
	return ds.rows
}

func (ds *Dataset) NumTimes(ctx context.Context) (int, error) {
	var n int
	err := ds.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(DISTINCT time) FROM %s`, ds.view)).Scan(&n)
	return n, err
}

func (ds *Dataset) RowsPerTimestep(ctx context.Context) (int, error) {
	var n int
	err := ds.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM %[1]s
		WHERE time = (SELECT time FROM %[1]s ORDER BY row_id LIMIT 1)`, ds.view)).Scan(&n)
	return n, err
}

func (ds *Dataset) Metadata(ctx context.Context) (source.Metadata, error) {
	return ds.meta, nil
}

func (ds *Dataset) ReadColumn(ctx context.Context, col string, start, count int, blk *source.Block) error {
	expr, ok := sqlColumns[col]
	if !ok {
		return errors.Wrap(source.ErrUnknownColumn, col)
	}

	if start < 0 || count < 0 || start+count > ds.rows {
		return errors.Wrapf(source.ErrRange, "rows [%d, %d) of %d", start, start+count, ds.rows)
	}

	if blk.Rows != count {
		return errors.Errorf("block holds %d rows, asked for %d", blk.Rows, count)
	}

	rows, err := ds.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE row_id >= ? AND row_id < ? ORDER BY row_id`,
		expr, ds.view), start, start+count)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", col)
	}
	defer rows.Close()

	i := 0
	for ; rows.Next(); i++ {
		if i >= count {
			return errors.Errorf("%s: more than %d rows returned", col, count)
		}

		if err := ds.scan(col, rows, blk, i); err != nil {
			return errors.Wrapf(err, "%s row %d", col, start+i)
		}
	}

	if err := rows.Err(); err != nil {
		return err
	}

	if i != count {
		return errors.Wrapf(source.ErrRange, "%s: %d of %d rows returned", col, i, count)
	}

	return nil
}

func (ds *Dataset) scan(col string, rows *sql.Rows, blk *source.Block, i int) error {
	switch col {
	case source.ColTime:
		return rows.Scan(&blk.Time[i])

	case source.ColAntenna1:
		return rows.Scan(&blk.Antenna1[i])

	case source.ColAntenna2:
		return rows.Scan(&blk.Antenna2[i])

	case source.ColUVW:
		return rows.Scan(&blk.UVW[i][0], &blk.UVW[i][1], &blk.UVW[i][2])

	case source.ColFlag:
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		return source.DecodeFlag(raw, blk.Flags(i))

	default:
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		if raw == nil {
			return errors.Errorf("column %s not present", col)
		}
		return source.DecodeData(raw, blk.Samples(i))
	}
}
