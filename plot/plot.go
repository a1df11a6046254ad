// Package plot writes frames as heatmap images.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/noriah/visgrid/dsp"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PaletteSize is the number of colours in each heatmap.
const PaletteSize = 255

// Writer saves the grid and sky image of every frame as PNG files in a
// directory.
type Writer struct {
	dir  string
	size vg.Length

	gridPal palette.Palette
	skyPal  palette.Palette
}

// NewWriter creates dir if needed. size is the side of each image.
func NewWriter(dir string, size vg.Length) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create plot directory")
	}

	if size <= 0 {
		size = 6 * vg.Inch
	}

	return &Writer{
		dir:     dir,
		size:    size,
		gridPal: moreland.ExtendedBlackBody().Palette(PaletteSize),
		skyPal:  palette.Heat(PaletteSize, 1),
	}, nil
}

// Paths returns the grid and sky file names for batch.
func (w *Writer) Paths(batch int) (string, string) {
	return filepath.Join(w.dir, fmt.Sprintf("grid_%05d.png", batch)),
		filepath.Join(w.dir, fmt.Sprintf("sky_%05d.png", batch))
}

// Draw writes both images of f.
func (w *Writer) Draw(f *dsp.Frame) error {
	gridPath, skyPath := w.Paths(f.Batch)

	grid := plotter.NewHeatMap(Grid{Size: f.GridSize, Data: f.Grid}, w.gridPal)
	widen(grid)
	if err := w.save(grid, f.Title(), gridPath); err != nil {
		return err
	}

	sky := plotter.NewHeatMap(Grid{Size: f.ImageSize, Data: f.Image}, w.skyPal)
	if f.High > f.Low {
		sky.Min = f.Low
		sky.Max = f.High
	}
	sky.Underflow = w.skyPal.Colors()[0]
	sky.Overflow = w.skyPal.Colors()[len(w.skyPal.Colors())-1]
	widen(sky)

	return w.save(sky, fmt.Sprintf("Sky image (peak %.3g)", f.Peak), skyPath)
}

func (w *Writer) save(h *plotter.HeatMap, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (pixels)"
	p.Y.Label.Text = "y (pixels)"
	p.Add(h)

	if err := p.Save(w.size, w.size, path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}

	return nil
}

// widen gives a flat heatmap a non-empty value range.
func widen(h *plotter.HeatMap) {
	if h.Max <= h.Min {
		h.Max = h.Min + 1
	}
}

func (w *Writer) Close() error {
	return nil
}

// Grid adapts a square row-major image to plotter.GridXYZ.
type Grid struct {
	Size int
	Data []float64
}

var _ plotter.GridXYZ = Grid{}

func (g Grid) Dims() (c, r int) { return g.Size, g.Size }

func (g Grid) Z(c, r int) float64 { return g.Data[r*g.Size+c] }

func (g Grid) X(c int) float64 { return float64(c) }

func (g Grid) Y(r int) float64 { return float64(r) }
