package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/source/simulate"
	"github.com/noriah/visgrid/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	util.SetLogger(nil)
}

func writeDataset(t *testing.T) (string, *simulate.Generator) {
	t.Helper()

	cfg := simulate.DefaultConfig()
	cfg.Stations = 3
	cfg.Times = 4
	cfg.Channels = 2

	g, err := simulate.New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "obs.db")

	w, err := Create(ctx, path, g.Metadata(), g.Antennas())
	require.NoError(t, err)

	require.NoError(t, g.Each(ctx, func(_ int, rows []source.Row) error {
		return w.Append(ctx, rows...)
	}))
	assert.Equal(t, int64(24), w.Rows())
	require.NoError(t, w.Close())

	return path, g
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	path, g := writeDataset(t)

	ds, err := Open(ctx, path, source.Options{})
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, 24, ds.NumRows())

	n, err := ds.NumTimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = ds.RowsPerTimestep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	meta, err := ds.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.Metadata(), meta)

	want := g.Timestep(1)
	blk := source.NewBlock(6, 2, 4)

	for _, col := range []string{
		source.ColTime, source.ColAntenna1, source.ColAntenna2,
		source.ColUVW, source.ColFlag, source.ColCorrectedData,
	} {
		require.NoError(t, ds.ReadColumn(ctx, col, 6, 6, blk), col)
	}

	for i := range want {
		got := blk.Row(i)
		assert.Equal(t, want[i].Time, got.Time)
		assert.Equal(t, want[i].Antenna1, got.Antenna1)
		assert.Equal(t, want[i].Antenna2, got.Antenna2)
		assert.Equal(t, want[i].UVW, got.UVW)
		assert.Equal(t, want[i].Flag, got.Flag)

		// stored as complex64
		for j := range want[i].Data {
			assert.InDelta(t, real(want[i].Data[j]), real(got.Data[j]), 1e-6)
			assert.InDelta(t, imag(want[i].Data[j]), imag(got.Data[j]), 1e-6)
		}
	}
}

func TestCrossOnlyView(t *testing.T) {
	ctx := context.Background()
	path, _ := writeDataset(t)

	ds, err := Open(ctx, path, source.Options{CrossOnly: true})
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, 12, ds.NumRows())

	n, err := ds.RowsPerTimestep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	blk := source.NewBlock(12, 2, 4)
	require.NoError(t, ds.ReadColumn(ctx, source.ColAntenna1, 0, 12, blk))
	require.NoError(t, ds.ReadColumn(ctx, source.ColAntenna2, 0, 12, blk))

	for i := 0; i < 12; i++ {
		assert.NotEqual(t, blk.Antenna1[i], blk.Antenna2[i])
	}
}

func TestCrossOnlyNumbering(t *testing.T) {
	ctx := context.Background()
	path, g := writeDataset(t)

	ds, err := Open(ctx, path, source.Options{CrossOnly: true})
	require.NoError(t, err)
	defer ds.Close()

	// rows were appended one timestep at a time
	blk := source.NewBlock(3, 2, 4)
	require.NoError(t, ds.ReadColumn(ctx, source.ColTime, 6, 3, blk))
	require.NoError(t, ds.ReadColumn(ctx, source.ColAntenna1, 6, 3, blk))
	require.NoError(t, ds.ReadColumn(ctx, source.ColAntenna2, 6, 3, blk))

	var want []source.Row
	for _, r := range g.Timestep(2) {
		if r.Antenna1 != r.Antenna2 {
			want = append(want, r)
		}
	}
	require.Len(t, want, 3)

	for i, r := range want {
		assert.Equal(t, r.Time, blk.Time[i])
		assert.Equal(t, r.Antenna1, blk.Antenna1[i])
		assert.Equal(t, r.Antenna2, blk.Antenna2[i])
	}
}

func TestCrossOnlyUsesIndex(t *testing.T) {
	ctx := context.Background()
	path, _ := writeDataset(t)

	ds, err := Open(ctx, path, source.Options{CrossOnly: true})
	require.NoError(t, err)
	defer ds.Close()

	rows, err := ds.QueryContext(ctx, `EXPLAIN QUERY PLAN
		SELECT time FROM visibility_cross WHERE row_id >= ? AND row_id < ? ORDER BY row_id`, 3, 6)
	require.NoError(t, err)
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var id, parent, notused int
		var detail string
		require.NoError(t, rows.Scan(&id, &parent, &notused, &detail))
		plan = append(plan, detail)
	}
	require.NoError(t, rows.Err())

	joined := strings.Join(plan, "\n")
	assert.Contains(t, joined, "idx_visibility_cross")
	assert.NotContains(t, joined, "TEMP B-TREE")
}

func TestOpenForeignDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "other.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(ctx, path, source.Options{})
	assert.True(t, errors.Is(err, ErrNotDataset), err)

	// the file is left untouched
	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestOpenNewerSchema(t *testing.T) {
	path, _ := writeDataset(t)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE schema_migrations SET version = ?`, schemaLatest+1)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(context.Background(), path, source.Options{})
	assert.True(t, errors.Is(err, ErrNotDataset), err)
}

func TestSchemaLatest(t *testing.T) {
	ups, err := fs.Glob(migrations, "migrations/*.up.sql")
	require.NoError(t, err)
	assert.Len(t, ups, schemaLatest)
}

func TestReadErrors(t *testing.T) {
	ctx := context.Background()
	path, _ := writeDataset(t)

	ds, err := Open(ctx, path, source.Options{})
	require.NoError(t, err)
	defer ds.Close()

	blk := source.NewBlock(4, 2, 4)

	err = ds.ReadColumn(ctx, "WEIGHT", 0, 4, blk)
	assert.True(t, errors.Is(err, source.ErrUnknownColumn))

	err = ds.ReadColumn(ctx, source.ColTime, 22, 4, blk)
	assert.True(t, errors.Is(err, source.ErrRange))

	// only DATA and CORRECTED_DATA were written
	err = ds.ReadColumn(ctx, source.ColModelData, 0, 4, blk)
	assert.Error(t, err)
}

func TestCreateExisting(t *testing.T) {
	path, g := writeDataset(t)

	_, err := Create(context.Background(), path, g.Metadata(), g.Antennas())
	assert.Error(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := source.Open(context.Background(), "sqlite",
		filepath.Join(t.TempDir(), "nope.db"), source.Options{})
	assert.Error(t, err)
}
