// Package visgrid stages batches of interferometric visibilities from a
// row-oriented table, grids them with an image-domain gridding backend and
// renders the grid and the sky image after every batch.
package visgrid

import (
	"context"
	"fmt"
	"strings"

	"github.com/noriah/visgrid/dsp"
	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/processor"
	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/stage"
	"github.com/noriah/visgrid/telemetry"
	"github.com/noriah/visgrid/util"
	"github.com/pkg/errors"
)

// Output receives one rendered frame per batch.
type Output = processor.Output

// StageError is returned by Run for any failure other than the end of the
// data. errors.Cause yields the original error.
type StageError = processor.StageError

// Discard drops every frame.
var Discard Output = discard{}

type discard struct{}

func (discard) Draw(*dsp.Frame) error { return nil }
func (discard) Close() error { return nil }

// Pipeline holds everything one run needs, allocated once.
type Pipeline struct {
	Layout  stage.Layout
	Backend string
	Limit   int

	table     source.Table
	ownsTable bool
	grid      *gridder.Grid
	proxy     gridder.Proxy
	output    Output
	stager    *stage.Stager
	proc      *processor.Processor

	store *telemetry.Store
	runID string
}

// Prepare opens the dataset, derives the batch layout, builds the fixed
// gridding metadata and initializes the backend. Every configuration error,
// an unavailable backend included, surfaces here before any batch is read.
func Prepare(ctx context.Context, cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		Backend: cfg.Backend,
		table:   cfg.Table,
	}

	if p.Backend == "" {
		p.Backend = gridder.DefaultBackend(cfg.UseCUDA)
	}

	if p.table == nil {
		tbl, err := source.Open(ctx, cfg.Source, cfg.Dataset, source.Options{CrossOnly: cfg.CrossOnly})
		if err != nil {
			return nil, err
		}
		p.table = tbl
		p.ownsTable = true
	}

	if err := p.prepare(ctx, cfg); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

func (p *Pipeline) prepare(ctx context.Context, cfg *Config) error {
	var err error

	if p.Layout, err = stage.Probe(ctx, p.table, cfg.Timesteps); err != nil {
		return errors.Wrap(err, "failed to probe dataset")
	}

	if cfg.Timeslots > p.Layout.Timesteps {
		return errors.Errorf("%d timeslots for %d timesteps per batch",
			cfg.Timeslots, p.Layout.Timesteps)
	}

	p.Limit = stage.Limit(p.Layout.Rows, cfg.Percentage)

	util.Logf("nr_stations: %d, nr_baselines: %d, nr_timesteps: %d, nr_channels: %d",
		p.Layout.Stations, p.Layout.Baselines, p.Layout.Timesteps, p.Layout.Channels())
	util.Logf("nr_rows: %d, nr_rows_per_batch: %d, nr_rows_to_process: %d",
		p.Layout.Rows, p.Layout.RowsPerBatch(), p.Limit)

	p.proxy, err = gridder.InitBackend(p.Backend)
	if err != nil {
		return err
	}

	p.grid = gridder.NewGrid(stage.NrCorrelations, cfg.GridSize)

	if err := p.proxy.SetGrid(p.grid); err != nil {
		return errors.Wrap(err, "failed to set grid")
	}

	if err := p.proxy.InitCache(cfg.SubgridSize, cfg.CellSize(), 0, [2]float32{}); err != nil {
		return errors.Wrap(err, "failed to init cache")
	}

	imager, err := dsp.NewImager(cfg.GridSize, taper.Make2D(cfg.GridSize, taper.Functions[cfg.GridTaper]))
	if err != nil {
		return err
	}

	frequencies := make([]float32, p.Layout.Channels())
	for i, f := range p.Layout.Frequencies {
		frequencies[i] = float32(f)
	}

	p.stager = stage.NewStager(p.table, cfg.Column, p.Layout, p.Limit)

	procCfg := processor.Config{
		Stager: p.stager,
		Proxy:  p.proxy,
		Grid:   p.grid,
		Request: gridder.Request{
			KernelSize:   cfg.KernelSize,
			Frequencies:  frequencies,
			Buffers:      p.stager.Buffers(),
			ATerms:       gridder.IdentityATerms(cfg.Timeslots, p.Layout.Stations, cfg.SubgridSize),
			ATermOffsets: gridder.ATermOffsets(cfg.Timeslots, p.Layout.Timesteps),
			Taper:        taper.Make2D(cfg.SubgridSize, taper.Functions[cfg.SubgridTaper]),
		},
		Imager: imager,
		Output: cfg.Output,
		Report: cfg.Report,
		Logf:   util.Logf,
		Pause:  cfg.Pause,
	}

	if procCfg.Output == nil {
		procCfg.Output = Discard
	}
	p.output = procCfg.Output

	if err := procCfg.Request.Validate(cfg.SubgridSize); err != nil {
		return errors.Wrap(err, "invalid gridding request")
	}

	if cfg.Record != "" {
		p.startRecording(cfg)
		if p.store != nil {
			procCfg.Recorder = p
		}
	}

	p.proc = processor.New(procCfg)

	return nil
}

// startRecording opens the telemetry store. Failures only disable
// recording.
func (p *Pipeline) startRecording(cfg *Config) {
	store, err := telemetry.NewStore(cfg.Record)
	if err != nil {
		util.Logf("telemetry disabled: %v", err)
		return
	}

	runID, err := store.StartRun(telemetry.Run{
		Dataset:   cfg.Dataset,
		Backend:   p.Backend,
		GridSize:  cfg.GridSize,
		Timesteps: p.Layout.Timesteps,
		Baselines: p.Layout.Baselines,
	})
	if err != nil {
		util.Logf("telemetry disabled: %v", err)
		store.Close()
		return
	}

	p.store = store
	p.runID = runID
}

// Record implements processor.Recorder.
func (p *Pipeline) Record(it telemetry.Iteration) error {
	return p.store.RecordIteration(p.runID, it)
}

func (p *Pipeline) logSummary() {
	if p.Batches() == 0 {
		return
	}

	summary, err := p.store.Summary(p.runID)
	if err != nil {
		util.Logf("telemetry: %v", err)
		return
	}

	parts := make([]string, len(summary))
	for i, s := range summary {
		parts[i] = fmt.Sprintf("%s %.3f ms", s.Stage, s.MeanMS)
	}

	util.Logf("run %s, %d batches, mean %s", p.runID, p.Batches(), strings.Join(parts, ", "))
}

// RunID returns the telemetry run id, empty when not recording.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Grid returns the grid the backend accumulates into.
func (p *Pipeline) Grid() *gridder.Grid {
	return p.grid
}

// Batches returns the number of batches processed.
func (p *Pipeline) Batches() int {
	if p.proc == nil {
		return 0
	}
	return p.proc.Batches()
}

// Process runs batches until the data is exhausted or ctx is done.
func (p *Pipeline) Process(ctx context.Context) error {
	return p.proc.Process(ctx)
}

// Close closes the output and releases the backend, the telemetry store
// and the table if Prepare opened it. A recorded run logs its mean stage
// timings.
func (p *Pipeline) Close() error {
	var errs []error

	if p.output != nil {
		errs = append(errs, p.output.Close())
		p.output = nil
	}

	if p.store != nil {
		if err := p.store.EndRun(p.runID); err != nil {
			util.Logf("telemetry: %v", err)
		}
		p.logSummary()
		p.store.Close()
		p.store = nil
	}

	if p.proxy != nil {
		errs = append(errs, p.proxy.Close())
		p.proxy = nil
	}

	if p.ownsTable && p.table != nil {
		errs = append(errs, p.table.Close())
		p.table = nil
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

// Run prepares the pipeline and processes the dataset. It returns nil when
// the data runs out or ctx is cancelled.
func Run(cfg *Config, ctx context.Context) error {
	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(); err != nil {
			return err
		}
	}

	if cfg.CleanupFunc != nil {
		defer cfg.CleanupFunc()
	}

	p, err := Prepare(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	if cfg.StartFunc != nil {
		if ctx, err = cfg.StartFunc(ctx); err != nil {
			return err
		}
	}

	if err := p.Process(ctx); err != nil {
		return err
	}

	util.Logf("processed %d batches", p.Batches())

	return nil
}
