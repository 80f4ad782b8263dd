// Create the run directories of a weak-scaling sweep and submit the batch jobs.

package generate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path"

	. "stdpbench/command"
	. "stdpbench/common"
	"stdpbench/notify"
	"stdpbench/scheduler"
	"stdpbench/sweep"
)

type GenerateCommand struct /* implements Command */ {
	SharedArgs

	NeuronsPerCore string
	Nodes          string
	Threads        int
	Dialect        string
	InstallPath    string
	OutputRoot     string
	AuxPattern     string
	DryRun         bool
	KafkaBroker    string
}

func (_ *GenerateCommand) Summary() []string {
	return []string{
		"Create one run directory per (neurons per core, node count) configuration,",
		"write the parameter file and batch script, and submit the job.",
	}
}

func (gc *GenerateCommand) Add(fs *flag.FlagSet) {
	gc.SharedArgs.Add(fs)
	fs.StringVar(&gc.NeuronsPerCore, "npc", "", "Neurons per core, `n,...` [default: 112,225,550]")
	fs.StringVar(&gc.Nodes, "nodes", "", "Node counts, `n,...` [default: 32,64,...,1024,1536]")
	fs.IntVar(&gc.Threads, "threads", 0, "OpenMP `threads` per node [default: 8]")
	fs.StringVar(&gc.Dialect, "dialect", "", "Scheduler `name`, pjm or slurm [default: pjm]")
	fs.StringVar(&gc.InstallPath, "install", "", "`directory` holding the nest binary")
	fs.StringVar(&gc.OutputRoot, "output-root", "", "Create run directories under `directory` [default: .]")
	fs.StringVar(&gc.AuxPattern, "aux", "", "Copy files matching `glob` into each run directory [default: *.sli]")
	fs.BoolVar(&gc.DryRun, "dry-run", false, "Write all files but do not submit")
	fs.StringVar(&gc.KafkaBroker, "kafka-broker", "", "Publish submissions to the Kafka broker at `host:port`")
}

func (gc *GenerateCommand) Validate() error {
	if err := gc.SharedArgs.Validate(); err != nil {
		return err
	}
	g := &gc.Config.Generate
	var e1, e2 error
	if gc.NeuronsPerCore != "" {
		g.NeuronsPerCore, e1 = ParseIntList(gc.NeuronsPerCore)
		if e1 != nil {
			e1 = fmt.Errorf("-npc: %w", e1)
		}
	}
	if gc.Nodes != "" {
		g.Nodes, e2 = ParseIntList(gc.Nodes)
		if e2 != nil {
			e2 = fmt.Errorf("-nodes: %w", e2)
		}
	}
	if gc.Threads != 0 {
		g.ThreadsPerNode = gc.Threads
	}
	if gc.Dialect != "" {
		g.Dialect = gc.Dialect
	}
	if gc.InstallPath != "" {
		g.InstallPath = gc.InstallPath
	}
	if gc.OutputRoot != "" {
		g.OutputRoot = gc.OutputRoot
	}
	if gc.AuxPattern != "" {
		g.AuxPattern = gc.AuxPattern
	}
	if gc.KafkaBroker != "" {
		gc.Config.Notify.KafkaBroker = gc.KafkaBroker
	}
	if err := errors.Join(e1, e2); err != nil {
		return err
	}
	return g.Validate()
}

func (gc *GenerateCommand) Perform(ctx context.Context, stdout io.Writer) error {
	g := &gc.Config.Generate
	cs, err := scheduler.New(g.Dialect)
	if err != nil {
		return err
	}
	var sched sweep.Scheduler = cs
	if gc.DryRun {
		sched = &scheduler.DryRun{Command: cs.Command}
	}

	var hooks []sweep.SubmitHook
	if gc.Config.Notify.KafkaBroker != "" && !gc.DryRun {
		cl, err := notify.Dial(&gc.Config.Notify)
		if err != nil {
			return err
		}
		defer cl.Close()
		hooks = append(hooks, notify.NewNotifier(cl, gc.Config.Notify.Topic).Hook(ctx))
	}

	subs, err := sweep.Generate(ctx, g, sched, hooks...)
	for _, s := range subs {
		fmt.Fprintf(stdout, "%s\t%s\n", path.Join(s.Dir, s.Script), s.JobID)
	}
	if err != nil {
		Log.Errorf("Failed with %d jobs submitted", len(subs))
	}
	return err
}
