package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noriah/visgrid"
	"github.com/noriah/visgrid/dsp/taper"
	"github.com/noriah/visgrid/graphic"
	"github.com/noriah/visgrid/gridder"
	"github.com/noriah/visgrid/plot"
	"github.com/noriah/visgrid/util"

	_ "github.com/noriah/visgrid/gridder/idg"
	_ "github.com/noriah/visgrid/gridder/nearest"
	_ "github.com/noriah/visgrid/source/sqlite"

	"github.com/integrii/flaggy"
)

// AppName is the app name
const AppName = "visgrid"

// AppDesc is the app description
const AppDesc = "Visibility batch stager and image-domain gridding demo"

// AppSite is the app website
const AppSite = "https://github.com/noriah/visgrid"

var version = "unknown"

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()
	sim := newSimConfig()

	if doFlags(&cfg, &sim) {
		return
	}

	chk(cfg.validate(), "invalid config")

	visCfg := cfg.visgridConfig()

	switch cfg.output {
	case outputTerm:
		dispCfg := graphic.NewZeroConfig()
		dispCfg.Color = !cfg.monochrome

		display := graphic.New(dispCfg)

		visCfg.Output = display
		visCfg.Pause = 10 * time.Millisecond
		visCfg.StartFunc = func(ctx context.Context) (context.Context, error) {
			if err := display.Init(); err != nil {
				return ctx, err
			}

			// the terminal belongs to the display from here on
			util.SetLogger(nil)

			return display.Start(ctx), nil
		}
		visCfg.CleanupFunc = display.Close

	case outputPNG:
		visCfg.Report = os.Stdout
		visCfg.SetupFunc = func() error {
			writer, err := plot.NewWriter(cfg.plotDir, 0)
			if err != nil {
				return err
			}
			visCfg.Output = writer
			return nil
		}

	case outputText:
		visCfg.Output = NewTextOutput(os.Stdout)

	case outputNone:
		visCfg.Report = os.Stdout
		visCfg.Output = visgrid.Discard
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chk(visgrid.Run(&visCfg, ctx), "failed to run visgrid")
}

func doFlags(cfg *config, sim *simConfig) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all gridding backends",
		AdditionalHelpAppend: "\n'*' marks the default, unavailable backends are not in this build",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	simulateCmd := flaggy.Subcommand{
		Name:        "simulate",
		ShortName:   "sim",
		Description: "write a synthetic dataset",
	}

	sim.flags(&simulateCmd)

	parser.AttachSubcommand(&simulateCmd, 1)

	parser.AddPositionalValue(&cfg.dataset, "dataset", 1, false, "path of the dataset")
	parser.AddPositionalValue(&cfg.percentage, "percentage", 2, false, "percentage of rows to process (100)")

	parser.String(&cfg.source, "s", "source", "source the dataset is opened with")
	parser.String(&cfg.column, "c", "column", "data column (DATA, CORRECTED_DATA, MODEL_DATA)")
	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.Bool(&cfg.useCUDA, "", "use-cuda", "use the CUDA proxy")
	parser.Float64(&cfg.imageSize, "", "imagesize", "image size in radians")
	parser.Int(&cfg.timesteps, "t", "timesteps", "timesteps per batch")
	parser.Int(&cfg.timeslots, "", "timeslots", "A-term time slots per batch")
	parser.Int(&cfg.gridSize, "g", "gridsize", "grid size in pixels, a power of two")
	parser.Int(&cfg.subgridSize, "", "subgrid", "subgrid size in pixels")
	parser.Int(&cfg.kernelSize, "k", "kernel", "kernel size in pixels")
	parser.Bool(&cfg.crossOnly, "", "cross-only", "only read cross-correlation rows")
	parser.String(&cfg.taper, "", "taper", fmt.Sprintf("subgrid taper %v", taper.Names()))
	parser.String(&cfg.gridTaper, "", "grid-taper", "grid taper divided out of the image")
	parser.String(&cfg.output, "o", "output", "output (term, png, text, none)")
	parser.String(&cfg.plotDir, "", "plotdir", "directory for png output")
	parser.String(&cfg.record, "", "record", "record timings into this sqlite database")
	parser.Bool(&cfg.monochrome, "m", "monochrome", "draw without colours")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		def := gridder.DefaultBackend(cfg.useCUDA)

		for _, backend := range gridder.Backends {
			star := ' '
			if backend.Name == def {
				star = '*'
			}

			status := ""
			if !backend.Available() {
				status = " (unavailable)"
			}

			fmt.Printf("- %s %c%s\n", backend.Name, star, status)
		}

		return true

	case simulateCmd.Used:
		chk(sim.validate(), "invalid simulation")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		chk(runSimulate(ctx, sim), "failed to simulate")

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
