package processor

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/noriah/visgrid/dsp"
	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/source/simulate"
	"github.com/noriah/visgrid/stage"
	"github.com/noriah/visgrid/telemetry"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	GridSize    = 16
	SubgridSize = 4
)

// testProxy counts calls and fails gridding on request.
type testProxy struct {
	gridded int
	seen    []int // baselines of every gridded batch
	err     error
}

func (tp *testProxy) SetGrid(*gridder.Grid) error { return nil }
func (tp *testProxy) InitCache(int, float32, float32, [2]float32) error { return nil }
func (tp *testProxy) Degridding(*gridder.Request) error { return nil }
func (tp *testProxy) Transform(gridder.Direction) error { return nil }
func (tp *testProxy) Close() error { return nil }

func (tp *testProxy) Gridding(req *gridder.Request) error {
	if tp.err != nil {
		return tp.err
	}
	tp.gridded++
	tp.seen = append(tp.seen, req.Buffers.NrBaselines)
	return nil
}

type testOutput struct {
	frames []int
}

func (to *testOutput) Draw(f *dsp.Frame) error {
	to.frames = append(to.frames, f.Batch)
	return nil
}

func (to *testOutput) Close() error { return nil }

type testRecorder struct {
	its []telemetry.Iteration
	err error
}

func (tr *testRecorder) Record(it telemetry.Iteration) error {
	tr.its = append(tr.its, it)
	return tr.err
}

// newConfig stages 3 stations over 6 timesteps, 2 timesteps per batch.
func newConfig(t *testing.T, sim simulate.Config) Config {
	t.Helper()

	g, err := simulate.New(sim)
	require.NoError(t, err)

	tbl, err := g.Table(context.Background(), source.DefaultDataColumn)
	require.NoError(t, err)

	layout, err := stage.Probe(context.Background(), tbl, 2)
	require.NoError(t, err)

	imager, err := dsp.NewImager(GridSize, taper.Identity(GridSize))
	require.NoError(t, err)

	return Config{
		Stager: stage.NewStager(tbl, source.DefaultDataColumn, layout, tbl.NumRows()),
		Proxy:  &testProxy{},
		Grid:   gridder.NewGrid(stage.NrCorrelations, GridSize),
		Imager: imager,
		Output: &testOutput{},
	}
}

func testSim() simulate.Config {
	sim := simulate.DefaultConfig()
	sim.Stations = 3
	sim.Times = 6
	sim.Channels = 1
	return sim
}

func TestProcess(t *testing.T) {
	cfg := newConfig(t, testSim())

	var report bytes.Buffer
	cfg.Report = &report

	proc := New(cfg)
	require.NoError(t, proc.Process(context.Background()))

	assert.Equal(t, 3, proc.Batches())
	assert.Equal(t, 2, proc.Last().Batch)
	assert.Equal(t, []int{3, 3, 3}, cfg.Proxy.(*testProxy).seen)
	assert.Equal(t, []int{0, 1, 2}, cfg.Output.(*testOutput).frames)

	for i := 0; i < 3; i++ {
		assert.Contains(t, report.String(), fmt.Sprintf(">>> Iteration %d\n", i))
	}
}

func TestStepEndOfData(t *testing.T) {
	proc := New(newConfig(t, testSim()))

	for i := 0; i < 3; i++ {
		require.NoError(t, proc.Step(context.Background()))
	}

	err := proc.Step(context.Background())
	assert.Equal(t, stage.ErrEndOfData, err)
	assert.Equal(t, 3, proc.Batches())
}

func TestStepGriddingError(t *testing.T) {
	cfg := newConfig(t, testSim())

	boom := errors.New("proxy failed")
	cfg.Proxy = &testProxy{err: boom}

	proc := New(cfg)
	err := proc.Process(context.Background())
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, telemetry.Gridding, se.Stage)
	assert.Equal(t, 0, se.Batch)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Equal(t, "batch 0: gridding: proxy failed", err.Error())

	assert.Empty(t, cfg.Output.(*testOutput).frames)
}

func TestRecorder(t *testing.T) {
	sim := testSim()
	sim.Flagged = 0.5

	cfg := newConfig(t, sim)

	rec := &testRecorder{err: errors.New("disk full")}
	cfg.Recorder = rec

	var logged []string
	cfg.Logf = func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	}

	proc := New(cfg)

	// recorder failures never stop the run
	require.NoError(t, proc.Process(context.Background()))
	require.Len(t, rec.its, 3)
	assert.Len(t, logged, 3)

	var flagged int
	for i, it := range rec.its {
		assert.Equal(t, i, it.Batch)
		assert.Positive(t, it.Time)
		flagged += it.Flagged
	}

	// 6 rows per timestep, 4 samples per row
	assert.Greater(t, flagged, 0)
	assert.Less(t, flagged, 6*6*4)
}

func TestProcessCancelled(t *testing.T) {
	cfg := newConfig(t, testSim())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := New(cfg)
	require.NoError(t, proc.Process(ctx))
	assert.Zero(t, proc.Batches())
	assert.Zero(t, cfg.Proxy.(*testProxy).gridded)
}

// cancelOutput cancels the run after the first frame.
type cancelOutput struct {
	testOutput
	cancel context.CancelFunc
}

func (co *cancelOutput) Draw(f *dsp.Frame) error {
	co.cancel()
	return co.testOutput.Draw(f)
}

func TestProcessStopsAtBoundary(t *testing.T) {
	cfg := newConfig(t, testSim())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &cancelOutput{cancel: cancel}
	cfg.Output = out

	proc := New(cfg)
	require.NoError(t, proc.Process(ctx))

	// the batch in flight completes, the next one never starts
	assert.Equal(t, 1, proc.Batches())
	assert.Equal(t, []int{0}, out.frames)
}

// cancelProxy cancels the run while gridding and then fails with err.
type cancelProxy struct {
	testProxy
	cancel context.CancelFunc
}

func (cp *cancelProxy) Gridding(*gridder.Request) error {
	cp.cancel()
	return cp.err
}

func TestProcessErrorAfterCancel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"backend failure", errors.New("out of device memory"), false},
		{"canceled", errors.Wrap(context.Canceled, "gridding aborted"), true},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig(t, testSim())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			cfg.Proxy = &cancelProxy{testProxy: testProxy{err: tc.err}, cancel: cancel}

			err := New(cfg).Process(ctx)
			if tc.ok {
				assert.NoError(t, err)
				return
			}

			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, telemetry.Gridding, se.Stage)
			assert.Equal(t, tc.err, errors.Cause(err))
		})
	}
}

func BenchmarkStep(b *testing.B) {
	sim := simulate.DefaultConfig()
	sim.Stations = 8
	sim.Times = 64
	sim.Channels = 4

	g, err := simulate.New(sim)
	require.NoError(b, err)

	tbl, err := g.Table(context.Background(), source.DefaultDataColumn)
	require.NoError(b, err)

	layout, err := stage.Probe(context.Background(), tbl, 64)
	require.NoError(b, err)

	imager, err := dsp.NewImager(GridSize, taper.Identity(GridSize))
	require.NoError(b, err)

	cfg := Config{
		Proxy:  &testProxy{},
		Grid:   gridder.NewGrid(stage.NrCorrelations, GridSize),
		Imager: imager,
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		cfg.Stager = stage.NewStager(tbl, source.DefaultDataColumn, layout, tbl.NumRows())
		proc := New(cfg)

		if err := proc.Step(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
