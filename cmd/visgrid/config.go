package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/noriah/visgrid"
	"github.com/noriah/visgrid/source"
)

// Output modes
const (
	outputTerm = "term"
	outputPNG  = "png"
	outputText = "text"
	outputNone = "none"
)

// config holds the command line values
type config struct {
	// dataset is the path of the dataset to grid
	dataset string
	// percentage is the share of rows to process, as given on the command line
	percentage string
	// source is the source name the dataset is opened with
	source string
	// column is the data column to grid
	column string
	// backend is the backend name from list-backends
	backend string
	// useCUDA picks the CUDA proxy when no backend is named
	useCUDA bool
	// imageSize is the image size in radians
	imageSize float64
	// timesteps is the maximum number of timesteps per batch
	timesteps int
	// timeslots is the number of A-term time slots per batch
	timeslots int
	// gridSize is the grid side in pixels
	gridSize int
	// subgridSize is the subgrid side in pixels
	subgridSize int
	// kernelSize is the kernel size in pixels
	kernelSize int
	// crossOnly hides autocorrelation rows from the stager
	crossOnly bool
	// taper is the subgrid taper name
	taper string
	// gridTaper is the grid taper name
	gridTaper string
	// output is one of term, png, text, none
	output string
	// plotDir is where png output goes
	plotDir string
	// record is the path of a telemetry database
	record string
	// monochrome draws shade runes instead of colours
	monochrome bool
}

func newZeroConfig() config {
	base := visgrid.NewZeroConfig()

	return config{
		percentage:  "100",
		source:      base.Source,
		column:      base.Column,
		imageSize:   base.ImageSize,
		timesteps:   base.Timesteps,
		timeslots:   base.Timeslots,
		gridSize:    base.GridSize,
		subgridSize: base.SubgridSize,
		kernelSize:  base.KernelSize,
		taper:       base.SubgridTaper,
		gridTaper:   base.GridTaper,
		output:      outputTerm,
		plotDir:     "frames",
	}
}

func (cfg *config) validate() error {
	if cfg.dataset == "" {
		return errors.New("no dataset given")
	}

	if !source.IsDataColumn(cfg.column) {
		return fmt.Errorf("unknown data column %q", cfg.column)
	}

	if _, err := cfg.percent(); err != nil {
		return err
	}

	switch cfg.output {
	case outputTerm, outputPNG, outputText, outputNone:
	default:
		return fmt.Errorf("unknown output %q (term, png, text, none)", cfg.output)
	}

	if cfg.output == outputPNG && cfg.plotDir == "" {
		return errors.New("png output needs a plot directory")
	}

	return nil
}

func (cfg *config) percent() (float64, error) {
	p, err := strconv.ParseFloat(cfg.percentage, 64)
	if err != nil {
		return 0, fmt.Errorf("bad percentage %q", cfg.percentage)
	}

	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentage %g outside [0, 100]", p)
	}

	return p, nil
}

// visgridConfig maps the command line onto the run configuration. Outputs
// and hooks are left to the caller.
func (cfg *config) visgridConfig() visgrid.Config {
	out := visgrid.NewZeroConfig()

	out.Source = cfg.source
	out.Dataset = cfg.dataset
	out.Column = cfg.column
	out.Percentage, _ = cfg.percent()
	out.CrossOnly = cfg.crossOnly
	out.Backend = cfg.backend
	out.UseCUDA = cfg.useCUDA
	out.Timesteps = cfg.timesteps
	out.Timeslots = cfg.timeslots
	out.GridSize = cfg.gridSize
	out.SubgridSize = cfg.subgridSize
	out.KernelSize = cfg.kernelSize
	out.ImageSize = cfg.imageSize
	out.SubgridTaper = cfg.taper
	out.GridTaper = cfg.gridTaper
	out.Record = cfg.record

	return out
}
