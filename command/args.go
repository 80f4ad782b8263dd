package command

import (
	"errors"
	"flag"
	"fmt"

	. "stdpbench/common"
	"stdpbench/status"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// SharedArgs are accepted by every verb: the config file and the diagnostics level.

type SharedArgs struct {
	ConfigFile string
	Verbose    bool
	Debug      bool
	Syslog     bool

	// Valid after Validate()
	Config *Config
}

func (sa *SharedArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&sa.ConfigFile, "config", "",
		"Read settings from ini `file` [default: $HOME/"+DefaultConfigName+" if present]")
	fs.BoolVar(&sa.Verbose, "v", false, "Print progress information to stderr")
	fs.BoolVar(&sa.Verbose, "verbose", false, "Print progress information to stderr")
	fs.BoolVar(&sa.Debug, "debug", false, "Print debugging information to stderr")
	fs.BoolVar(&sa.Syslog, "syslog", false, "Also log to syslog")
}

// Loads the configuration.  Flag overrides are applied by the caller after this, and the caller then
// validates the sections it uses.

func (sa *SharedArgs) Validate() error {
	if sa.Debug {
		Log.LowerLevelTo(status.LogLevelDebug)
	} else if sa.Verbose {
		Log.LowerLevelTo(status.LogLevelInfo)
	}
	if sa.Syslog {
		if err := status.StartSyslog("stdpbench"); err != nil {
			return fmt.Errorf("Could not connect to syslog: %w", err)
		}
	}
	cfg, err := LoadConfig(sa.ConfigFile)
	if err != nil {
		return err
	}
	sa.Config = cfg
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// AggregateArgs select the trial logs to read.  Zero values mean "use the configuration".

type AggregateArgs struct {
	DataDir string
	Trials  int
	Nodes   string
	Threads int
	Jobs    int
}

func (aa *AggregateArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&aa.DataDir, "data-dir", "",
		"Root `directory` of the run logs [default: from config, \"data\"]")
	fs.IntVar(&aa.Trials, "trials", 0, "Try this `number` of trial files per configuration [default: 30]")
	fs.StringVar(&aa.Nodes, "nodes", "", "Node counts, `n,...` [default: from config]")
	fs.IntVar(&aa.Threads, "threads", 0, "Threads per process, process count = nodes * `threads` [default: 8]")
	fs.IntVar(&aa.Jobs, "jobs", 0, "Read at most `n` configurations concurrently [default: number of CPUs]")
}

func (aa *AggregateArgs) Apply(cfg *AggregateConfig) error {
	if aa.DataDir != "" {
		cfg.DataDir = aa.DataDir
	}
	if aa.Trials != 0 {
		cfg.Trials = aa.Trials
	}
	if aa.Threads != 0 {
		cfg.ThreadsPerProc = aa.Threads
	}
	if aa.Jobs != 0 {
		cfg.Jobs = aa.Jobs
	}
	if aa.Nodes != "" {
		nodes, err := ParseIntList(aa.Nodes)
		if err != nil {
			return fmt.Errorf("-nodes: %w", err)
		}
		cfg.Nodes = nodes
	}
	return nil
}

// Validate shared args, apply the aggregation flags, and check the [aggregate] section.  Checks of
// other sections the verb uses go in `more`.
func ValidateWithAggregate(sa *SharedArgs, aa *AggregateArgs, more ...func(cfg *Config) error) error {
	if err := sa.Validate(); err != nil {
		return err
	}
	errs := []error{aa.Apply(&sa.Config.Aggregate)}
	for _, m := range more {
		errs = append(errs, m(sa.Config))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return sa.Config.Aggregate.Validate()
}
