// `stdpbench` -- prepare, submit, and summarize stdp_bm weak-scaling runs
//
// Run `stdpbench help` for brief help.

package main

import (
	"flag"
	"fmt"
	"os"

	. "stdpbench/command"
	"stdpbench/dbexport"
	"stdpbench/figures"
	"stdpbench/generate"
	"stdpbench/process"
	"stdpbench/summary"
)

// v0.1.0 - generate, summary, plot
// v0.2.0 - export, kafka notifications, slurm dialect

const StdpbenchVersion = "0.2.0"

func main() {
	err := stdpbench()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func stdpbench() error {
	cmd := commandLine()
	ctx, stop := process.InterruptibleContext()
	defer stop()
	return cmd.Perform(ctx, os.Stdout)
}

func commandLine() Command {
	out := flag.CommandLine.Output()

	if len(os.Args) < 2 {
		fmt.Fprintf(out, "Required operation missing, try `stdpbench help`\n")
		os.Exit(2)
	}

	var cmd Command
	switch os.Args[1] {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s command [options]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  generate - create run directories and submit the batch jobs\n")
		fmt.Fprintf(out, "  summary  - print averaged timings per configuration\n")
		fmt.Fprintf(out, "  plot     - render the scaling figures\n")
		fmt.Fprintf(out, "  export   - write averaged timings to a database\n")
		fmt.Fprintf(out, "  version  - print information about the program\n")
		fmt.Fprintf(out, "  help     - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "generate", "gen":
		cmd = new(generate.GenerateCommand)
	case "summary":
		cmd = new(summary.SummaryCommand)
	case "plot":
		cmd = new(figures.PlotCommand)
	case "export":
		cmd = new(dbexport.ExportCommand)
	case "version":
		fmt.Printf("stdpbench version(%s)\n", StdpbenchVersion)
		os.Exit(0)
	default:
		fmt.Fprintf(out, "Unknown operation %s, try `stdpbench help`\n", os.Args[1])
		os.Exit(2)
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cmd.Add(fs)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s %s [options]\n\n", os.Args[0], os.Args[1])
		for _, s := range cmd.Summary() {
			fmt.Fprintln(out, "  ", s)
		}
		fmt.Fprintf(out, "\nOptions:\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	if rest := fs.Args(); len(rest) > 0 {
		fmt.Fprintf(out, "Unexpected arguments: %v\n", rest)
		os.Exit(2)
	}

	if err := cmd.Validate(); err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err.Error())
		os.Exit(2)
	}
	return cmd
}
