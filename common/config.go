// The configuration structure shared by all operations.
//
// The defaults are the settings used for the K computer runs of stdp_bm.  They can be overridden
// by an ini file (see inifile.go) and then by command line flags.

package common

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

const (
	DialectPJM   = "pjm"
	DialectSlurm = "slurm"

	ProfileLegacy  = "legacy"
	ProfileCurrent = "current"
)

type Config struct {
	Generate  GenerateConfig
	Aggregate AggregateConfig
	Plot      PlotConfig
	Export    ExportConfig
	Notify    NotifyConfig
}

type GenerateConfig struct {
	// Directory holding the `nest` binary
	InstallPath string

	// The simulation script handed to the simulator, must be among the auxiliary files
	SimScript string

	// Simulated time in ms
	SimTimeMs float64

	// scale = floor(procs * neuronsPerCore / ScaleDivisor)
	ScaleDivisor int

	ThreadsPerNode int

	// Wall time limit requested from the scheduler
	ElapseMinutes int

	// Sourced by the batch script before the simulator runs
	EnvScript string

	// "pjm" or "slurm"
	Dialect string

	// Prefix of the simulator command line, the binary and script are appended
	Launcher string

	NeuronsPerCore []int
	Nodes          []int

	// Glob for the static files copied into each run directory
	AuxPattern string

	// Run directories are created here
	OutputRoot string
}

// A DataSource names one set of trial logs: the files are
// <DataDir>/<DirPrefix><procs>/<FileStem><trial>.dat and are read with the named profile.

type DataSource struct {
	Label     string
	DirPrefix string
	FileStem  string
	Profile   string
}

type AggregateConfig struct {
	DataDir string

	// Number of trial files to attempt per configuration
	Trials int

	Nodes          []int
	ThreadsPerProc int

	HybridPrefix string
	FlatPrefix   string
	LegacyStem   string
	CurrentStem  string

	HybridLabel string
	FlatLabel   string

	// Configurations aggregated concurrently
	Jobs int
}

type PlotConfig struct {
	OutputDir string
	Title     string

	XTicks []float64
	YTicks []float64
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64

	// File extensions, each figure is saved once per format
	Formats []string

	MarkerRadius float64

	// If not "", replaces the built-in reference data
	ReferenceFile string
}

type ExportConfig struct {
	DatabaseURI string
	Table       string
}

type NotifyConfig struct {
	KafkaBroker string
	Topic       string
}

func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{
			InstallPath:    "/work/user0049/nest2_openmp_install/bin/",
			SimScript:      "stdp_bm.sli",
			SimTimeMs:      1000,
			ScaleDivisor:   11250,
			ThreadsPerNode: 8,
			ElapseMinutes:  60,
			EnvScript:      "/work/system/Env_base",
			Dialect:        DialectPJM,
			Launcher:       "mpiexec lpgparm -s 4MB -d 4MB -h 4MB -t 4MB -p 4MB",
			NeuronsPerCore: []int{112, 225, 550},
			Nodes:          []int{32, 64, 128, 256, 512, 1024, 1536},
			AuxPattern:     "*.sli",
			OutputRoot:     ".",
		},
		Aggregate: AggregateConfig{
			DataDir:        "data",
			Trials:         30,
			Nodes:          []int{256, 512, 1024, 1250, 1536},
			ThreadsPerProc: 8,
			HybridPrefix:   "sim_openmp_N",
			FlatPrefix:     "sim_flatmpi_N",
			LegacyStem:     "runtimes_",
			CurrentStem:    "logfile_",
			HybridLabel:    "Kei 8 threads hybrid",
			FlatLabel:      "Kei flat MPI",
			Jobs:           runtime.NumCPU(),
		},
		Plot: PlotConfig{
			OutputDir:    ".",
			Title:        "NEST trunk : stdp_bm.sli : N = 10^6, K = 10^4, T = 1 s",
			XTicks:       []float64{1024, 2048, 4096, 8192, 12288, 16384},
			YTicks:       []float64{50, 100, 200},
			XMin:         512,
			XMax:         32768,
			YMin:         30,
			YMax:         250,
			Formats:      []string{"eps", "pdf"},
			MarkerRadius: 4,
		},
		Export: ExportConfig{
			Table: "stdp_scaling",
		},
		Notify: NotifyConfig{
			Topic: "stdpbench.submissions",
		},
	}
}

// Process counts for the aggregation: one per node count, times the threads per process.
func (ac *AggregateConfig) Procs() []int {
	procs := make([]int, len(ac.Nodes))
	for i, n := range ac.Nodes {
		procs[i] = n * ac.ThreadsPerProc
	}
	return procs
}

// The hybrid runs come in two log formats, the old runs first.
func (ac *AggregateConfig) HybridSources() []DataSource {
	return []DataSource{
		{ac.HybridLabel, ac.HybridPrefix, ac.LegacyStem, ProfileLegacy},
		{ac.HybridLabel, ac.HybridPrefix, ac.CurrentStem, ProfileCurrent},
	}
}

func (ac *AggregateConfig) FlatSources() []DataSource {
	return []DataSource{
		{ac.FlatLabel, ac.FlatPrefix, ac.LegacyStem, ProfileLegacy},
	}
}

// The K computer's job class takes 10 to 60 minutes.
const (
	MinPJMElapseMinutes = 10
	MaxPJMElapseMinutes = 60
)

// Check every section.  The verbs check only the sections they use, so that a bad [generate]
// setting in the defaults file does not break plotting.

func (c *Config) Validate() error {
	return errors.Join(c.Generate.Validate(), c.Aggregate.Validate(), c.Plot.Validate())
}

func (g *GenerateConfig) Validate() error {
	var errs []error
	if g.ThreadsPerNode <= 0 {
		errs = append(errs, errors.New("threads-per-node must be positive"))
	}
	if g.ScaleDivisor <= 0 {
		errs = append(errs, errors.New("scale-divisor must be positive"))
	}
	switch g.Dialect {
	case DialectPJM:
		if g.ElapseMinutes < MinPJMElapseMinutes || g.ElapseMinutes > MaxPJMElapseMinutes {
			errs = append(errs, fmt.Errorf("elapse-minutes must be between %d and %d for pjm, got %d",
				MinPJMElapseMinutes, MaxPJMElapseMinutes, g.ElapseMinutes))
		}
	case DialectSlurm:
		if g.ElapseMinutes <= 0 {
			errs = append(errs, errors.New("elapse-minutes must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("Unknown scheduler dialect %q", g.Dialect))
	}
	if g.SimTimeMs <= 0 {
		errs = append(errs, errors.New("sim-time must be positive"))
	}
	errs = append(errs, positive("neurons-per-core", g.NeuronsPerCore), positive("nodes", g.Nodes))
	return errors.Join(errs...)
}

func (a *AggregateConfig) Validate() error {
	var errs []error
	if a.Trials <= 0 {
		errs = append(errs, errors.New("trials must be positive"))
	}
	if a.ThreadsPerProc <= 0 {
		errs = append(errs, errors.New("threads-per-proc must be positive"))
	}
	if a.Jobs <= 0 {
		errs = append(errs, errors.New("jobs must be positive"))
	}
	errs = append(errs, positive("aggregate nodes", a.Nodes))
	return errors.Join(errs...)
}

func (p *PlotConfig) Validate() error {
	var errs []error
	if p.XMin <= 0 || p.XMax <= p.XMin {
		errs = append(errs, errors.New("x limits must be positive and increasing"))
	}
	if p.YMin <= 0 || p.YMax <= p.YMin {
		errs = append(errs, errors.New("y limits must be positive and increasing"))
	}
	if len(p.Formats) == 0 {
		errs = append(errs, errors.New("At least one output format is required"))
	}
	return errors.Join(errs...)
}

func positive(what string, xs []int) error {
	if len(xs) == 0 {
		return fmt.Errorf("%s: empty list", what)
	}
	for _, x := range xs {
		if x <= 0 {
			return fmt.Errorf("%s: %d is not positive", what, x)
		}
	}
	return nil
}

// Parse "a,b,c" into integers.  Blanks around the elements are ignored.
func ParseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("Empty list")
	}
	var xs []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("Bad integer in list %q: %w", s, err)
		}
		xs = append(xs, n)
	}
	return xs, nil
}

func ParseFloatList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("Empty list")
	}
	var xs []float64
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("Bad number in list %q: %w", s, err)
		}
		xs = append(xs, n)
	}
	return xs, nil
}

func ParseStringList(s string) []string {
	var xs []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			xs = append(xs, f)
		}
	}
	return xs
}

func FormatIntList(xs []int) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = strconv.Itoa(x)
	}
	return strings.Join(ss, ",")
}

func FormatFloatList(xs []float64) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(ss, ",")
}
