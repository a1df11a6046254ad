package main

import (
	"fmt"
	"io"

	"github.com/noriah/visgrid"
	"github.com/noriah/visgrid/dsp"
)

// PeakThreshold is the threshold below which a frame does not rescale.
const PeakThreshold = 1e-9

// TextOutput prints one line per frame: batch, title, image peak and the
// peak relative to the smoothed scale, in percent.
type TextOutput struct {
	out    io.Writer
	scaler *dsp.Scaler
	scale  float64
}

var _ visgrid.Output = &TextOutput{}

func NewTextOutput(out io.Writer) *TextOutput {
	return &TextOutput{
		out:    out,
		scaler: dsp.NewScaler(),
		scale:  1,
	}
}

// Draw takes a frame and writes its line.
func (d *TextOutput) Draw(f *dsp.Frame) error {
	if f.Peak >= PeakThreshold {
		d.scale = d.scaler.Update(f.Peak)
	}

	_, err := fmt.Fprintf(d.out, "%5d  %s  peak %10.4g  %6.2f %%\n",
		f.Batch, f.Title(), f.Peak, 100*f.Peak/d.scale)

	return err
}

func (d *TextOutput) Close() error {
	return nil
}
