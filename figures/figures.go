// Render the scaling figures of a benchmark campaign.

package figures

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	. "stdpbench/command"
	. "stdpbench/common"
	"stdpbench/plotting"
	"stdpbench/reference"
	"stdpbench/runlog"
)

type PlotCommand struct /* implements Command */ {
	SharedArgs
	AggregateArgs

	OutputDir string
	Reference string
	Formats   string
}

func (_ *PlotCommand) Summary() []string {
	return []string{
		"Average the trial logs and plot simulation time, setup time, and the gain of",
		"hybrid over flat MPI against the number of cores, with the reference data.",
	}
}

func (pc *PlotCommand) Add(fs *flag.FlagSet) {
	pc.SharedArgs.Add(fs)
	pc.AggregateArgs.Add(fs)
	fs.StringVar(&pc.OutputDir, "output-dir", "", "Write figures to `directory` [default: .]")
	fs.StringVar(&pc.Reference, "reference", "", "Read reference data from YAML `file` [default: built-in]")
	fs.StringVar(&pc.Formats, "formats", "", "Save each figure as `ext,...` [default: eps,pdf]")
}

func (pc *PlotCommand) Validate() error {
	return ValidateWithAggregate(&pc.SharedArgs, &pc.AggregateArgs, func(cfg *Config) error {
		if pc.OutputDir != "" {
			cfg.Plot.OutputDir = pc.OutputDir
		}
		if pc.Reference != "" {
			cfg.Plot.ReferenceFile = pc.Reference
		}
		if pc.Formats != "" {
			cfg.Plot.Formats = ParseStringList(pc.Formats)
		}
		return cfg.Plot.Validate()
	})
}

func (pc *PlotCommand) Perform(ctx context.Context, stdout io.Writer) error {
	cfg := pc.Config
	refs, err := reference.Load(cfg.Plot.ReferenceFile)
	if err != nil {
		return err
	}
	ref, found := refs.Lookup(reference.DefaultDataset)
	if !found {
		Log.Warningf("No reference dataset %s", reference.DefaultDataset)
	}

	campaign, err := runlog.LoadCampaign(ctx, &cfg.Aggregate)
	if err != nil {
		return err
	}
	if n := len(campaign.Dropped()); n > 0 {
		Log.Warningf("%d configurations had no readable logs and are not plotted", n)
	}

	if err := os.MkdirAll(cfg.Plot.OutputDir, 0755); err != nil {
		return err
	}
	hybrid, flat := campaign.Hybrid.Series, campaign.Flat.Series
	var errs []error
	for _, f := range plotting.Figures(&cfg.Plot, hybrid, flat, ref) {
		files, err := plotting.Save(f, cfg.Plot.OutputDir, cfg.Plot.Formats, cfg.Plot.MarkerRadius)
		if errors.Is(err, plotting.ErrNoData) {
			Log.Warningf("Skipping %s: %v", f.Name, err)
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
		for _, fn := range files {
			fmt.Fprintln(stdout, fn)
		}
	}
	return errors.Join(errs...)
}
