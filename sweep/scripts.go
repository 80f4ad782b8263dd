package sweep

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	. "stdpbench/common"
)

// The parameter file is SLI, one `<value> /<name> Set` per line.  Strings are SLI string literals
// in parentheses.
//
//   nvp       - number of virtual processes
//   Tsim      - total simulation time in ms
//   scale     - network size factor
//   recto     - argument for the /record_to variable of spike detectors
//   path_name - path where all files will be written
//   rtf       - record spikes to file (we never do)
//   log_file  - stem of the timing log

func WriteParams(w io.Writer, c Configuration, cfg *GenerateConfig) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d /nvp Set\n", c.Procs())
	fmt.Fprintf(bw, "%s /Tsim Set\n", sliFloat(cfg.SimTimeMs))
	fmt.Fprintf(bw, "%d /scale Set\n", c.Scale(cfg.ScaleDivisor))
	fmt.Fprintf(bw, "(file) /recto Set\n")
	fmt.Fprintf(bw, "(.) /path_name Set\n")
	fmt.Fprintf(bw, "false /rtf Set\n")
	fmt.Fprintf(bw, "(logfile) /log_file Set\n")
	return bw.Flush()
}

// SLI reads "1000" as an integer, a double needs the point.
func sliFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// The batch script requests one MPI process per node with ThreadsPerNode OpenMP threads each.

func WriteBatchScript(w io.Writer, c Configuration, cfg *GenerateConfig) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#!/bin/bash -x\n")
	elapse := elapseTime(cfg.ElapseMinutes)
	switch cfg.Dialect {
	case DialectPJM:
		fmt.Fprintf(bw, "#PJM --rsc-list \"node=%d\"\n", c.Nodes)
		fmt.Fprintf(bw, "#PJM --rsc-list \"elapse=%s\"\n", elapse)
		fmt.Fprintf(bw, "#PJM --mpi \"proc=%d\"\n", c.Nodes)
		fmt.Fprintf(bw, "#PJM -s\n")
	case DialectSlurm:
		fmt.Fprintf(bw, "#SBATCH --nodes=%d\n", c.Nodes)
		fmt.Fprintf(bw, "#SBATCH --time=%s\n", elapse)
		fmt.Fprintf(bw, "#SBATCH --ntasks=%d\n", c.Nodes)
		fmt.Fprintf(bw, "#SBATCH --cpus-per-task=%d\n", c.Threads)
	default:
		return fmt.Errorf("Unknown scheduler dialect %q", cfg.Dialect)
	}
	fmt.Fprintf(bw, "export OMP_NUM_THREADS=%d\n", c.Threads)
	if cfg.EnvScript != "" {
		fmt.Fprintf(bw, ". %s\n", cfg.EnvScript)
	}
	fmt.Fprintf(bw, "time %s %s %s\n", cfg.Launcher, path.Join(cfg.InstallPath, "nest"), cfg.SimScript)
	return bw.Flush()
}

func elapseTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}
