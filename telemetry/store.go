package telemetry

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noriah/visgrid/util"

	_ "modernc.org/sqlite"
)

// schema.sql contains the statements creating the run and iteration tables.
//
//go:embed schema.sql
var schemaSQL string

// Store records runs and their iteration timings in sqlite.
type Store struct {
	*sql.DB
}

// Run describes one invocation.
type Run struct {
	ID        string
	Dataset   string
	Backend   string
	GridSize  int
	Timesteps int
	Baselines int
}

// Iteration is one recorded batch.
type Iteration struct {
	Timings
	Time    float64 // TIME of the first row
	Flagged int
	NaN     int
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	util.Logf("initialized telemetry database %s", path)

	return &Store{db}, nil
}

// StartRun inserts run under a fresh id and returns it.
func (s *Store) StartRun(run Run) (string, error) {
	run.ID = uuid.NewString()

	query := `
		INSERT INTO runs (run_id, dataset, backend, grid_size, timesteps, baselines)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.Exec(query, run.ID, run.Dataset, run.Backend, run.GridSize, run.Timesteps, run.Baselines)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %v", err)
	}

	return run.ID, nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordIteration stores one batch of run.
func (s *Store) RecordIteration(runID string, it Iteration) error {
	query := `
		INSERT INTO iterations (run_id, batch, time, total_ms, read_ms, transpose_ms,
			gridding_ms, fft_ms, plot_ms, flagged, nan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.Exec(query, runID, it.Batch, it.Time, ms(it.Total),
		ms(it.Stages[Read]), ms(it.Stages[Transpose]), ms(it.Stages[Gridding]),
		ms(it.Stages[FFT]), ms(it.Stages[Plot]), it.Flagged, it.NaN)
	if err != nil {
		return fmt.Errorf("failed to record iteration %d: %v", it.Batch, err)
	}

	return nil
}

// EndRun stamps the finish time and batch count of run.
func (s *Store) EndRun(runID string) error {
	query := `
		UPDATE runs
		SET
			finished = UNIXEPOCH('subsec'),
			batches = (SELECT COUNT(*) FROM iterations WHERE run_id = ?)
		WHERE run_id = ?
	`

	_, err := s.Exec(query, runID, runID)
	if err != nil {
		return fmt.Errorf("failed to end run: %v", err)
	}

	return nil
}

// StageSummary is the mean duration of one stage over a run.
type StageSummary struct {
	Stage  Stage
	MeanMS float64
}

// Summary returns the mean per-stage durations of run.
func (s *Store) Summary(runID string) ([]StageSummary, error) {
	row := s.QueryRow(`
		SELECT AVG(read_ms), AVG(transpose_ms), AVG(gridding_ms), AVG(fft_ms), AVG(plot_ms)
		FROM iterations WHERE run_id = ?`, runID)

	var means [NumStages]sql.NullFloat64
	if err := row.Scan(&means[0], &means[1], &means[2], &means[3], &means[4]); err != nil {
		return nil, fmt.Errorf("failed to summarize run: %v", err)
	}

	out := make([]StageSummary, NumStages)
	for i := range out {
		out[i] = StageSummary{Stage: Stage(i), MeanMS: means[i].Float64}
	}

	return out, nil
}
