// Clients for the batch schedulers we submit to.  Each one runs the scheduler's submit command in
// the run directory and picks the job ID out of its output.

package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	. "stdpbench/common"
	"stdpbench/process"
)

type runner func(ctx context.Context, dir, program string, args []string) (string, string, error)

// CommandScheduler submits with `Command script`.
type CommandScheduler struct {
	Command string
	jobID   *regexp.Regexp
	run     runner
}

var (
	// [INFO] PJM 0000 pjsub Job 1234567 submitted.
	pjmJobID = regexp.MustCompile(`Job\s+(\d+)\s+submitted`)

	// Submitted batch job 1234567
	slurmJobID = regexp.MustCompile(`Submitted batch job\s+(\d+)`)
)

func NewPJM() *CommandScheduler {
	return &CommandScheduler{Command: "pjsub", jobID: pjmJobID, run: process.RunSubprocess}
}

func NewSlurm() *CommandScheduler {
	return &CommandScheduler{Command: "sbatch", jobID: slurmJobID, run: process.RunSubprocess}
}

func New(dialect string) (*CommandScheduler, error) {
	switch dialect {
	case DialectPJM:
		return NewPJM(), nil
	case DialectSlurm:
		return NewSlurm(), nil
	default:
		return nil, fmt.Errorf("No scheduler for dialect %q", dialect)
	}
}

func (cs *CommandScheduler) Submit(ctx context.Context, dir, script string) (string, error) {
	stdout, stderr, err := cs.run(ctx, dir, cs.Command, []string{script})
	if err != nil {
		return "", err
	}
	if stderr != "" {
		Log.Warningf("%s %s: %s", cs.Command, script, strings.TrimSpace(stderr))
	}
	if m := cs.jobID.FindStringSubmatch(stdout); m != nil {
		return m[1], nil
	}
	Log.Debugf("%s printed no job ID: %q", cs.Command, stdout)
	return "", nil
}

// DryRun submits nothing, it only logs what would have been submitted.
type DryRun struct {
	Command string
}

func (dr *DryRun) Submit(_ context.Context, dir, script string) (string, error) {
	Log.Warningf("Dry run: would run `cd %s; %s %s`", dir, dr.Command, script)
	return "", nil
}
