package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/noriah/visgrid/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() *dsp.Frame {
	f := &dsp.Frame{
		Batch:     3,
		Time:      3600*13 + 60*7,
		GridSize:  8,
		Grid:      make([]float64, 64),
		ImageSize: 6,
		Image:     make([]float64, 36),
	}

	for i := range f.Grid {
		f.Grid[i] = float64(i % 8)
	}

	f.Image[2*6+3] = 2
	f.Peak = 2
	f.Low, f.High = -0.02, 0.6

	return f
}

func TestGrid(t *testing.T) {
	g := Grid{Size: 2, Data: []float64{1, 2, 3, 4}}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 3.0, g.Z(0, 1))
	assert.Equal(t, 2.0, g.Z(1, 0))
	assert.Equal(t, 1.0, g.X(1))
	assert.Equal(t, 1.0, g.Y(1))
}

func TestWriterDraw(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")

	w, err := NewWriter(dir, 0)
	require.NoError(t, err)
	defer w.Close()

	f := testFrame()
	require.NoError(t, w.Draw(f))

	gridPath, skyPath := w.Paths(f.Batch)
	assert.Equal(t, filepath.Join(dir, "grid_00003.png"), gridPath)
	assert.Equal(t, filepath.Join(dir, "sky_00003.png"), skyPath)

	for _, p := range []string{gridPath, skyPath} {
		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")), p)
	}
}

func TestWriterBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewWriter(filepath.Join(file, "sub"), 0)
	assert.Error(t, err)
}
