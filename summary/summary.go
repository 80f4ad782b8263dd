// Print the averaged results of a benchmark campaign, and what had to be left out.

package summary

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	. "stdpbench/command"
	"stdpbench/runlog"
)

type SummaryCommand struct /* implements Command */ {
	SharedArgs
	AggregateArgs

	Csv bool
}

func (_ *SummaryCommand) Summary() []string {
	return []string{
		"Average the trial logs per configuration and print the hybrid and flat MPI",
		"series, followed by the configurations that had no readable logs.",
	}
}

func (sc *SummaryCommand) Add(fs *flag.FlagSet) {
	sc.SharedArgs.Add(fs)
	sc.AggregateArgs.Add(fs)
	fs.BoolVar(&sc.Csv, "csv", false, "Print CSV instead of a table")
}

func (sc *SummaryCommand) Validate() error {
	return ValidateWithAggregate(&sc.SharedArgs, &sc.AggregateArgs)
}

func (sc *SummaryCommand) Perform(ctx context.Context, stdout io.Writer) error {
	campaign, err := runlog.LoadCampaign(ctx, &sc.Config.Aggregate)
	if err != nil {
		return err
	}
	if sc.Csv {
		return writeCsv(stdout, campaign)
	}
	return writeTable(stdout, campaign)
}

var header = []string{"series", "procs", "files", "setup_s", "sim_s", "mem"}

func rows(campaign *runlog.Campaign) [][]string {
	var rs [][]string
	for _, s := range []runlog.Series{campaign.Hybrid.Series, campaign.Flat.Series} {
		for i := range s.Procs {
			pt := s.Point(i)
			rs = append(rs, []string{
				s.Label,
				strconv.Itoa(pt.Procs),
				strconv.Itoa(pt.Files),
				strconv.FormatFloat(pt.Setup, 'f', 3, 64),
				strconv.FormatFloat(pt.Sim, 'f', 3, 64),
				strconv.FormatFloat(pt.Mem, 'f', 1, 64),
			})
		}
	}
	return rs
}

func writeCsv(stdout io.Writer, campaign *runlog.Campaign) error {
	w := csv.NewWriter(stdout)
	w.Write(header)
	w.WriteAll(rows(campaign))
	return w.Error()
}

func writeTable(stdout io.Writer, campaign *runlog.Campaign) error {
	tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	for _, h := range header {
		fmt.Fprintf(tw, "%s\t", h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows(campaign) {
		for _, f := range r {
			fmt.Fprintf(tw, "%s\t", f)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	dropped := campaign.Dropped()
	if len(dropped) > 0 {
		// Not in the plots either
		fmt.Fprintf(stdout, "\n%d configurations dropped:\n", len(dropped))
		for _, d := range dropped {
			fmt.Fprintf(stdout, "  %s procs=%d: %s\n", d.Source, d.Procs, d.Reason)
		}
	}
	return nil
}
