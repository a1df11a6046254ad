package main

import (
	"context"
	"errors"
	"log"

	"github.com/noriah/visgrid/source"
	"github.com/noriah/visgrid/source/simulate"
	"github.com/noriah/visgrid/source/sqlite"

	"github.com/integrii/flaggy"
)

// simConfig holds the simulate subcommand values
type simConfig struct {
	// path is the dataset to create
	path string
	simulate.Config
}

func newSimConfig() simConfig {
	return simConfig{Config: simulate.DefaultConfig()}
}

func (sim *simConfig) flags(cmd *flaggy.Subcommand) {
	cmd.AddPositionalValue(&sim.path, "dataset", 1, true, "path of the dataset to create")

	cmd.Int(&sim.Stations, "", "stations", "number of stations")
	cmd.Int(&sim.Times, "", "times", "number of timesteps")
	cmd.Int(&sim.Channels, "", "channels", "number of channels")
	cmd.Float64(&sim.Radius, "", "radius", "array radius in metres")
	cmd.Float64(&sim.Flagged, "", "flagged", "fraction of flagged samples [0, 1]")
	cmd.Float64(&sim.NaN, "", "nan", "fraction of NaN samples [0, 1]")
	cmd.Int64(&sim.Seed, "", "seed", "random seed")
}

func (sim *simConfig) validate() error {
	if sim.path == "" {
		return errors.New("no dataset given")
	}

	return sim.Config.Validate()
}

// runSimulate writes the observation one timestep per transaction.
func runSimulate(ctx context.Context, sim *simConfig) error {
	gen, err := simulate.New(sim.Config)
	if err != nil {
		return err
	}

	w, err := sqlite.Create(ctx, sim.path, gen.Metadata(), gen.Antennas())
	if err != nil {
		return err
	}
	defer w.Close()

	err = gen.Each(ctx, func(_ int, rows []source.Row) error {
		return w.Append(ctx, rows...)
	})
	if err != nil {
		return err
	}

	log.Printf("wrote %d rows (%d stations, %d timesteps, %d channels) to %s",
		w.Rows(), sim.Stations, sim.Times, sim.Channels, sim.path)

	return nil
}
