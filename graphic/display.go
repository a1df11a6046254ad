// Package graphic draws frames as heatmaps in the terminal.
package graphic

import (
	"context"
	"fmt"
	"sync"

	"github.com/noriah/visgrid/dsp"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

// Config is the display configuration.
type Config struct {
	// Gap is the number of columns between the panes
	Gap int
	// Color draws 256-colour half blocks instead of shade runes
	Color bool
}

// NewZeroConfig returns the default display configuration.
func NewZeroConfig() Config {
	return Config{
		Gap:   2,
		Color: true,
	}
}

// Display handles drawing frames
type Display struct {
	cfg Config

	scaler *dsp.Scaler

	gridBuf  []float64
	imageBuf []float64

	restore func()
	done    chan struct{}
	once    sync.Once
}

// New returns a display. Init must be called before drawing.
func New(cfg Config) *Display {
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}

	return &Display{
		cfg:    cfg,
		scaler: dsp.NewScaler(),
	}
}

// Init sets up the terminal.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}

	if err := termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	d.restore = restore

	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	if d.cfg.Color {
		termbox.SetOutputMode(termbox.Output256)
	}

	return nil
}

// Start starts the key poller. The returned context is cancelled on 'q' or
// Ctrl-C, or when the display is closed.
func (d *Display) Start(ctx context.Context) context.Context {
	var dispCtx, dispCancel = context.WithCancel(ctx)

	d.done = make(chan struct{})
	go eventPoller(dispCancel, d.done)

	return dispCtx
}

// eventPoller only leaves through PollEvent, so Close can always wake it
// with an interrupt.
func eventPoller(fn context.CancelFunc, done chan<- struct{}) {
	defer close(done)
	defer fn()

	for {
		var ev = termbox.PollEvent()

		switch ev.Type {
		case termbox.EventKey:
			switch {
			case ev.Ch == 'q', ev.Ch == 'Q':
				return

			case ev.Key == termbox.KeyCtrlC:
				return
			}

		case termbox.EventInterrupt, termbox.EventError:
			return
		}
	}
}

// Draw renders one frame: the gridded data on the left, the sky image on
// the right.
func (d *Display) Draw(f *dsp.Frame) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}

	var width, height = termbox.Size()
	var left, right = Layout(width, height, d.cfg.Gap)

	drawText(left.X, 0, f.Title(), termbox.ColorDefault|termbox.AttrBold)
	drawText(right.X, 0, fmt.Sprintf("Sky: peak %.3g", f.Peak), termbox.ColorDefault)

	if left.Side == 0 {
		return termbox.Flush()
	}

	var mag = d.scaler.Update(gridPeak(f.Grid))

	d.gridBuf = Resample(d.gridBuf, f.Grid, f.GridSize, left.Side)
	for i, v := range d.gridBuf {
		d.gridBuf[i] = Level(v, 0, mag)
	}

	d.imageBuf = Resample(d.imageBuf, f.Image, f.ImageSize, right.Side)
	for i, v := range d.imageBuf {
		d.imageBuf[i] = Level(v, f.Low, f.High)
	}

	drawPane(left, d.gridBuf, d.cfg.Color)
	drawPane(right, d.imageBuf, d.cfg.Color)

	return termbox.Flush()
}

// Close stops the key poller and restores the terminal. Safe to call more
// than once.
func (d *Display) Close() error {
	d.once.Do(func() {
		if d.done != nil {
			select {
			case <-d.done:
			default:
				go termbox.Interrupt()
				<-d.done
			}
		}

		termbox.Close()

		if d.restore != nil {
			d.restore()
		}
	})

	return nil
}

func gridPeak(grid []float64) float64 {
	var peak float64
	for _, v := range grid {
		if v > peak {
			peak = v
		}
	}
	return peak
}
