// Package processor runs the batch loop: stage, grid, image, draw.
package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/noriah/visgrid/dsp"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/stage"
	"github.com/noriah/visgrid/telemetry"
	"github.com/pkg/errors"
)

// Output receives one frame per batch.
type Output interface {
	Draw(f *dsp.Frame) error
	Close() error
}

// Recorder persists iteration telemetry.
type Recorder interface {
	Record(it telemetry.Iteration) error
}

// StageError ties a failure to the stage and batch it happened in.
type StageError struct {
	Stage telemetry.Stage
	Batch int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("batch %d: %s: %v", e.Batch, e.Stage, e.Err)
}

// Cause returns the wrapped error, for errors.Cause.
func (e *StageError) Cause() error { return e.Err }

// Unwrap returns the wrapped error, for errors.Is and errors.As.
func (e *StageError) Unwrap() error { return e.Err }

type Config struct {
	Stager  *stage.Stager
	Proxy   gridder.Proxy
	Grid    *gridder.Grid
	Request gridder.Request // Buffers is set from the stager
	Imager  *dsp.Imager
	Output  Output

	// Report receives the per-iteration timings. Nil disables reporting.
	Report io.Writer
	// Recorder is optional. Its errors are logged, never returned.
	Recorder Recorder
	// Logf logs recorder failures.
	Logf func(format string, v ...interface{})
	// Pause after every frame.
	Pause time.Duration
}

type Processor struct {
	cfg     Config
	watch   *telemetry.Watch
	batches int
	last    telemetry.Timings
}

func New(cfg Config) *Processor {
	cfg.Request.Buffers = cfg.Stager.Buffers()

	if cfg.Logf == nil {
		cfg.Logf = func(string, ...interface{}) {}
	}

	return &Processor{
		cfg:   cfg,
		watch: telemetry.NewWatch(),
	}
}

// Batches returns the number of batches processed.
func (p *Processor) Batches() int {
	return p.batches
}

// Last returns the timings of the last processed batch.
func (p *Processor) Last() telemetry.Timings {
	return p.last
}

// Process runs batches until the data is exhausted or ctx is done. Both end
// the run normally. Cancellation is only checked between batches.
func (p *Processor) Process(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := p.Step(ctx)

		switch {
		case err == nil:

		case errors.Is(err, stage.ErrEndOfData):
			return nil

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// a stage aborted because of the cancellation
			return nil

		default:
			return err
		}

		if p.cfg.Pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.Pause):
			}
		}
	}
}

// Step processes one batch. It returns stage.ErrEndOfData unwrapped when
// fewer rows remain than a batch needs; any other failure is a *StageError.
func (p *Processor) Step(ctx context.Context) error {
	var batch = p.batches
	var stager = p.cfg.Stager

	p.watch.Begin(batch)

	err := p.watch.Time(telemetry.Read, func() error {
		return stager.Read(ctx)
	})
	if errors.Is(err, stage.ErrEndOfData) {
		return err
	}
	if err != nil {
		return &StageError{Stage: telemetry.Read, Batch: batch, Err: err}
	}

	steps := [...]struct {
		stage telemetry.Stage
		fn    func() error
	}{
		{telemetry.Transpose, stager.Transpose},
		{telemetry.Gridding, func() error { return p.cfg.Proxy.Gridding(&p.cfg.Request) }},
		{telemetry.FFT, func() error { return p.cfg.Imager.Transform(p.cfg.Grid) }},
		{telemetry.Plot, p.draw},
	}

	for _, s := range steps {
		if err := p.watch.Time(s.stage, s.fn); err != nil {
			return &StageError{Stage: s.stage, Batch: batch, Err: err}
		}
	}

	p.last = p.watch.End()
	p.batches++

	if p.cfg.Report != nil {
		if err := telemetry.Report(p.cfg.Report, p.last); err != nil {
			p.cfg.Logf("failed to report batch %d: %v", batch, err)
		}
	}

	p.record()

	return nil
}

func (p *Processor) draw() error {
	b := p.cfg.Stager.Batch()
	frame := p.cfg.Imager.Render(p.cfg.Grid, b.Index, b.Time)

	if p.cfg.Output == nil {
		return nil
	}

	return p.cfg.Output.Draw(frame)
}

func (p *Processor) record() {
	if p.cfg.Recorder == nil {
		return
	}

	b := p.cfg.Stager.Batch()

	err := p.cfg.Recorder.Record(telemetry.Iteration{
		Timings: p.last,
		Time:    b.Time,
		Flagged: b.Flagged,
		NaN:     b.NaN,
	})
	if err != nil {
		p.cfg.Logf("telemetry: %v", err)
	}
}
