// Write the averaged results of a benchmark campaign to a database table.

package dbexport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	. "stdpbench/command"
	. "stdpbench/common"
	"stdpbench/export"
	"stdpbench/runlog"
)

type ExportCommand struct /* implements Command */ {
	SharedArgs
	AggregateArgs

	DatabaseURI string
	Table       string
}

func (_ *ExportCommand) Summary() []string {
	return []string{
		"Average the trial logs and insert the hybrid and flat MPI series into a",
		"PostgreSQL table, creating it if necessary.",
	}
}

func (ec *ExportCommand) Add(fs *flag.FlagSet) {
	ec.SharedArgs.Add(fs)
	ec.AggregateArgs.Add(fs)
	fs.StringVar(&ec.DatabaseURI, "database-uri", "", "Connect to the database at `uri`")
	fs.StringVar(&ec.Table, "table", "", "Insert into `table` [default: stdp_scaling]")
}

func (ec *ExportCommand) Validate() error {
	return ValidateWithAggregate(&ec.SharedArgs, &ec.AggregateArgs, func(cfg *Config) error {
		if ec.DatabaseURI != "" {
			cfg.Export.DatabaseURI = ec.DatabaseURI
		}
		if ec.Table != "" {
			cfg.Export.Table = ec.Table
		}
		if cfg.Export.DatabaseURI == "" {
			return errors.New("-database-uri is required")
		}
		return nil
	})
}

func (ec *ExportCommand) Perform(ctx context.Context, stdout io.Writer) error {
	campaign, err := runlog.LoadCampaign(ctx, &ec.Config.Aggregate)
	if err != nil {
		return err
	}
	n, err := export.Export(ctx, &ec.Config.Export, campaign.Hybrid.Series, campaign.Flat.Series)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d rows written to %s\n", n, ec.Config.Export.Table)
	return nil
}
