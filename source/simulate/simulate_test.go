package simulate

import (
	"context"
	"math"
	"testing"

	"github.com/noriah/visgrid/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Stations = 4
	cfg.Times = 3
	cfg.Channels = 2
	return cfg
}

func TestTimestepLayout(t *testing.T) {
	g, err := New(smallConfig())
	require.NoError(t, err)

	rows := g.Timestep(1)
	require.Len(t, rows, g.RowsPerTimestep())
	assert.Equal(t, 10, len(rows))

	autos := 0
	for i := range rows {
		assert.Equal(t, rows[0].Time, rows[i].Time)
		assert.LessOrEqual(t, rows[i].Antenna1, rows[i].Antenna2)
		assert.Len(t, rows[i].Data, 8)

		if rows[i].IsAuto() {
			autos++
			assert.Equal(t, source.UVW{}, rows[i].UVW)
			assert.Equal(t, complex128(1), rows[i].Data[0])
		}

		// XY and YX carry nothing
		assert.Equal(t, complex128(0), rows[i].Data[1])
		assert.Equal(t, complex128(0), rows[i].Data[2])
	}
	assert.Equal(t, 4, autos)

	// the first row of a timestep is station 0's autocorrelation
	assert.True(t, rows[0].IsAuto())
	assert.Equal(t, int32(1), rows[1].Antenna2)
}

func TestDeterministic(t *testing.T) {
	a, err := New(smallConfig())
	require.NoError(t, err)
	b, err := New(smallConfig())
	require.NoError(t, err)

	assert.Equal(t, a.Antennas(), b.Antennas())
	assert.Equal(t, a.Timestep(2), b.Timestep(2))
}

func TestCorruption(t *testing.T) {
	cfg := smallConfig()
	cfg.Flagged = 1
	cfg.NaN = 1

	g, err := New(cfg)
	require.NoError(t, err)

	for _, r := range g.Timestep(0) {
		for i := range r.Data {
			assert.True(t, r.Flag[i])
			assert.True(t, math.IsNaN(real(r.Data[i])))
		}
	}
}

func TestTable(t *testing.T) {
	g, err := New(smallConfig())
	require.NoError(t, err)

	tbl, err := g.Table(context.Background(), source.ColCorrectedData)
	require.NoError(t, err)

	assert.Equal(t, 30, tbl.NumRows())

	n, err := tbl.NumTimes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestValidate(t *testing.T) {
	cfg := smallConfig()
	cfg.Stations = 1
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.NaN = 1.5
	assert.Error(t, cfg.Validate())
}
