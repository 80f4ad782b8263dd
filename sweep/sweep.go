// Generate and submit the run directories for a weak-scaling sweep of stdp_bm.
//
// Each configuration (neurons per core, node count) gets its own directory holding the simulator
// parameter file, a copy of the simulation scripts, and a batch script that is handed to the
// scheduler.  Configurations are independent and are processed in sweep order: outer loop over
// neurons per core, inner loop over node counts.

package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	. "stdpbench/common"
	"stdpbench/filesys"
)

const ParamFileName = "param.conf.sli"

type Configuration struct {
	NeuronsPerCore int
	Nodes          int
	Threads        int
}

// One virtual process per thread across all nodes.
func (c Configuration) Procs() int {
	return c.Nodes * c.Threads
}

func (c Configuration) Scale(divisor int) int {
	return Scale(c.Procs(), c.NeuronsPerCore, divisor)
}

// Matches DirName of any configuration.
const RunDirPattern = "sim_openmp_weak_trunk_NPC*_N*"

func (c Configuration) DirName() string {
	return fmt.Sprintf("sim_openmp_weak_trunk_NPC%d_N%d", c.NeuronsPerCore, c.Procs())
}

func (c Configuration) BatchName() string {
	return fmt.Sprintf("stdp_scale_%d.sh", c.Procs())
}

func (c Configuration) String() string {
	return fmt.Sprintf("npc=%d nodes=%d threads=%d", c.NeuronsPerCore, c.Nodes, c.Threads)
}

// scale = floor(procs * neuronsPerCore / divisor).  All operands are positive so integer division
// is the floor.

func Scale(procs, neuronsPerCore, divisor int) int {
	return procs * neuronsPerCore / divisor
}

func Sweep(neuronsPerCore, nodes []int, threads int) []Configuration {
	configs := make([]Configuration, 0, len(neuronsPerCore)*len(nodes))
	for _, npc := range neuronsPerCore {
		for _, n := range nodes {
			configs = append(configs, Configuration{NeuronsPerCore: npc, Nodes: n, Threads: threads})
		}
	}
	return configs
}

// The one thing we need from the cluster: submit `script` (a file name relative to `dir`) with
// `dir` as the working directory.  The job ID is "" if the scheduler did not report one.

type Scheduler interface {
	Submit(ctx context.Context, dir, script string) (jobID string, err error)
}

type Submission struct {
	Config Configuration
	Scale  int
	Dir    string
	Script string
	JobID  string
}

// Called once for every job right after it was submitted.  An error is logged and reported when the
// sweep ends but does not stop it, the job is already in the queue.
type SubmitHook func(s Submission) error

// Prepare and submit every configuration of the sweep.  The first failure stops the run; the
// submissions made until then are returned along with the error.

func Generate(
	ctx context.Context,
	cfg *GenerateConfig,
	sched Scheduler,
	hooks ...SubmitHook,
) (submitted []Submission, err error) {
	var hookErrs []error
	defer func() {
		err = errors.Join(err, errors.Join(hookErrs...))
	}()
	for _, c := range Sweep(cfg.NeuronsPerCore, cfg.Nodes, cfg.ThreadsPerNode) {
		if err := ctx.Err(); err != nil {
			return submitted, err
		}
		dir, err := Prepare(cfg, c)
		if err != nil {
			return submitted, fmt.Errorf("Preparing %s: %w", c, err)
		}
		jobID, err := sched.Submit(ctx, dir, c.BatchName())
		if err != nil {
			return submitted, fmt.Errorf("Submitting %s from %s: %w", c, dir, err)
		}
		if jobID != "" {
			Log.Infof("Submitted %s as job %s", path.Join(dir, c.BatchName()), jobID)
		} else {
			Log.Infof("Submitted %s", path.Join(dir, c.BatchName()))
		}
		s := Submission{
			Config: c,
			Scale:  c.Scale(cfg.ScaleDivisor),
			Dir:    dir,
			Script: c.BatchName(),
			JobID:  jobID,
		}
		submitted = append(submitted, s)
		for _, h := range hooks {
			if err := h(s); err != nil {
				Log.Warningf("%s: %v", path.Join(dir, s.Script), err)
				hookErrs = append(hookErrs, err)
			}
		}
	}
	return submitted, nil
}

// Create (or refresh) the run directory for one configuration and return its name.

func Prepare(cfg *GenerateConfig, c Configuration) (string, error) {
	dir := path.Join(cfg.OutputRoot, c.DirName())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// Stale scripts and the scheduler's output files for them
	n, err := filesys.RemoveMatching(dir, c.BatchName()+"*")
	if err != nil {
		return "", err
	}
	if n > 0 {
		Log.Debugf("Removed %d old batch files in %s", n, dir)
	}

	if err := writeFile(path.Join(dir, ParamFileName), 0644, func(f *os.File) error {
		return WriteParams(f, c, cfg)
	}); err != nil {
		return "", err
	}

	// A broad pattern may match the run directories of this or an earlier sweep
	copied, err := filesys.CopyMatching(cfg.AuxPattern, dir, isRunDir)
	if err != nil {
		return "", fmt.Errorf("Copying %s: %w", cfg.AuxPattern, err)
	}
	Log.Debugf("Copied %v to %s", copied, dir)
	if _, err := os.Stat(path.Join(dir, cfg.SimScript)); err != nil {
		Log.Warningf("%s: simulation script %s is missing", dir, cfg.SimScript)
	}

	if err := writeFile(path.Join(dir, c.BatchName()), 0755, func(f *os.File) error {
		return WriteBatchScript(f, c, cfg)
	}); err != nil {
		return "", err
	}
	return dir, nil
}

func isRunDir(name string) bool {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return false
	}
	matched, _ := path.Match(RunDirPattern, path.Base(name))
	return matched
}

func writeFile(name string, mode os.FileMode, contents func(f *os.File) error) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if err := contents(f); err != nil {
		f.Close()
		return fmt.Errorf("Writing %s: %w", name, err)
	}
	return f.Close()
}
