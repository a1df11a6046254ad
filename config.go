package visgrid

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

// Fixed per-run gridding parameters.
const (
	DefaultTimesteps   = 256
	DefaultGridSize    = 512
	DefaultSubgridSize = 32
	DefaultKernelSize  = 16
	DefaultImageSize   = 0.2
)

type (
	// SetupFunc is called before the dataset is opened.
	SetupFunc func() error
	// StartFunc is called once everything is prepared, right before the
	// first batch. The returned context replaces the run context.
	StartFunc func(ctx context.Context) (context.Context, error)
	// CleanupFunc is called when the run ends, whatever the outcome.
	CleanupFunc func() error
)

type Config struct {
	// The name of the source from the source package
	Source string
	// Path of the dataset handed to the source
	Dataset string
	// Table to read instead of opening Dataset
	Table source.Table
	// The data column to grid
	Column string
	// Percentage of the rows to process, 0 to 100
	Percentage float64
	// Only show cross-correlation rows to the stager
	CrossOnly bool

	// The name of the backend from the gridder package. Empty picks the
	// default for UseCUDA.
	Backend string
	// Prefer the CUDA proxy when Backend is empty
	UseCUDA bool

	// Maximum number of timesteps per batch
	Timesteps int
	// Number of A-term time slots per batch
	Timeslots int
	// Grid side in pixels, a power of two
	GridSize int
	// Subgrid side in pixels
	SubgridSize int
	// Kernel size in pixels
	KernelSize int
	// Image size in radians; the cell size is ImageSize / GridSize
	ImageSize float64
	// Subgrid taper name from the taper package
	SubgridTaper string
	// Grid taper divided out of the image
	GridTaper string

	// Where to write per-iteration timings. Nil disables the report.
	Report io.Writer
	// Path of a telemetry database. Empty disables recording.
	Record string
	// Pause after each frame
	Pause time.Duration

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
	// Where to send the rendered frames
	Output Output
}

func NewZeroConfig() Config {
	return Config{
		Source:       "sqlite",
		Column:       source.DefaultDataColumn,
		Percentage:   100,
		Timesteps:    DefaultTimesteps,
		Timeslots:    1,
		GridSize:     DefaultGridSize,
		SubgridSize:  DefaultSubgridSize,
		KernelSize:   DefaultKernelSize,
		ImageSize:    DefaultImageSize,
		SubgridTaper: "spheroidal",
		GridTaper:    "rectangle",
	}
}

func (cfg *Config) Validate() error {
	if cfg.Table == nil && cfg.Dataset == "" {
		return errors.New("no dataset")
	}

	if !source.IsDataColumn(cfg.Column) {
		return errors.Wrap(source.ErrUnknownColumn, cfg.Column)
	}

	switch {
	case cfg.Percentage < 0 || cfg.Percentage > 100:
		return fmt.Errorf("percentage %g outside [0, 100]", cfg.Percentage)

	case cfg.Timesteps < 1:
		return errors.New("too few timesteps (1 min)")

	case cfg.Timeslots < 1:
		return errors.New("too few timeslots (1 min)")

	case cfg.Timeslots > cfg.Timesteps:
		return fmt.Errorf("more timeslots (%d) than timesteps (%d)", cfg.Timeslots, cfg.Timesteps)

	case cfg.GridSize < 2 || cfg.GridSize&(cfg.GridSize-1) != 0:
		return fmt.Errorf("grid size %d is not a power of two", cfg.GridSize)

	case cfg.SubgridSize < 1 || cfg.SubgridSize > cfg.GridSize:
		return fmt.Errorf("subgrid size %d outside [1, %d]", cfg.SubgridSize, cfg.GridSize)

	case cfg.KernelSize < 1 || cfg.KernelSize > cfg.SubgridSize:
		return fmt.Errorf("kernel size %d outside [1, %d]", cfg.KernelSize, cfg.SubgridSize)

	case !(cfg.ImageSize > 0):
		return errors.New("image size must be positive")
	}

	for _, name := range []string{cfg.SubgridTaper, cfg.GridTaper} {
		if _, ok := taper.Functions[name]; !ok {
			return fmt.Errorf("unknown taper %q", name)
		}
	}

	return nil
}

// CellSize returns the grid cell size in radians.
func (cfg *Config) CellSize() float32 {
	return float32(cfg.ImageSize / float64(cfg.GridSize))
}
