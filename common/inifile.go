package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	ini "github.com/lars-t-hansen/ini"
)

const DefaultConfigName = ".stdpbench"

// MT: Constant after initialization
var (
	p = ini.NewParser()

	generate               = p.AddSection("generate")
	GenerateInstallPath    = generate.AddString("install-path")
	GenerateSimScript      = generate.AddString("sim-script")
	GenerateSimTime        = generate.AddString("sim-time")
	GenerateScaleDivisor   = generate.AddString("scale-divisor")
	GenerateThreadsPerNode = generate.AddString("threads-per-node")
	GenerateElapseMinutes  = generate.AddString("elapse-minutes")
	GenerateEnvScript      = generate.AddString("env-script")
	GenerateDialect        = generate.AddString("dialect")
	GenerateLauncher       = generate.AddString("launcher")
	GenerateNeuronsPerCore = generate.AddString("neurons-per-core")
	GenerateNodes          = generate.AddString("nodes")
	GenerateAuxPattern     = generate.AddString("aux-pattern")
	GenerateOutputRoot     = generate.AddString("output-root")

	aggregate               = p.AddSection("aggregate")
	AggregateDataDir        = aggregate.AddString("data-dir")
	AggregateTrials         = aggregate.AddString("trials")
	AggregateNodes          = aggregate.AddString("nodes")
	AggregateThreadsPerProc = aggregate.AddString("threads-per-proc")
	AggregateHybridPrefix   = aggregate.AddString("hybrid-prefix")
	AggregateFlatPrefix     = aggregate.AddString("flat-prefix")
	AggregateLegacyStem     = aggregate.AddString("legacy-stem")
	AggregateCurrentStem    = aggregate.AddString("current-stem")
	AggregateJobs           = aggregate.AddString("jobs")

	plot              = p.AddSection("plot")
	PlotOutputDir     = plot.AddString("output-dir")
	PlotTitle         = plot.AddString("title")
	PlotXTicks        = plot.AddString("x-ticks")
	PlotYTicks        = plot.AddString("y-ticks")
	PlotXMin          = plot.AddString("x-min")
	PlotXMax          = plot.AddString("x-max")
	PlotYMin          = plot.AddString("y-min")
	PlotYMax          = plot.AddString("y-max")
	PlotFormats       = plot.AddString("formats")
	PlotReferenceFile = plot.AddString("reference")

	export            = p.AddSection("export")
	ExportDatabaseURI = export.AddString("database-uri")
	ExportTable       = export.AddString("table")

	notify            = p.AddSection("notify")
	NotifyKafkaBroker = notify.AddString("kafka-broker")
	NotifyTopic       = notify.AddString("topic")
)

// Build the configuration from the defaults and the config file.  If `filename` is "" then
// $HOME/.stdpbench is used if it exists; an explicitly named file must exist.

func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := filename != ""
	if !explicit {
		home := os.Getenv("HOME")
		if home == "" {
			return cfg, nil
		}
		filename = path.Join(path.Clean(home), DefaultConfigName)
	}
	input, err := os.Open(filename)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	defer input.Close()
	Log.Debugf("Reading configuration from %s", filename)
	if err := ApplyConfigFile(cfg, input); err != nil {
		return nil, fmt.Errorf("In %s: %w", filename, err)
	}
	return cfg, nil
}

// Overlay the settings present in the ini input onto `cfg`.  Values are subject to environment
// variable expansion.

func ApplyConfigFile(cfg *Config, input io.Reader) error {
	store, err := p.Parse(input)
	if err != nil {
		return err
	}
	a := applier{store: store}

	g := &cfg.Generate
	a.str(&g.InstallPath, GenerateInstallPath)
	a.str(&g.SimScript, GenerateSimScript)
	a.number(&g.SimTimeMs, GenerateSimTime)
	a.integer(&g.ScaleDivisor, GenerateScaleDivisor)
	a.integer(&g.ThreadsPerNode, GenerateThreadsPerNode)
	a.integer(&g.ElapseMinutes, GenerateElapseMinutes)
	a.str(&g.EnvScript, GenerateEnvScript)
	a.str(&g.Dialect, GenerateDialect)
	a.str(&g.Launcher, GenerateLauncher)
	a.ints(&g.NeuronsPerCore, GenerateNeuronsPerCore)
	a.ints(&g.Nodes, GenerateNodes)
	a.str(&g.AuxPattern, GenerateAuxPattern)
	a.str(&g.OutputRoot, GenerateOutputRoot)

	ag := &cfg.Aggregate
	a.str(&ag.DataDir, AggregateDataDir)
	a.integer(&ag.Trials, AggregateTrials)
	a.ints(&ag.Nodes, AggregateNodes)
	a.integer(&ag.ThreadsPerProc, AggregateThreadsPerProc)
	a.str(&ag.HybridPrefix, AggregateHybridPrefix)
	a.str(&ag.FlatPrefix, AggregateFlatPrefix)
	a.str(&ag.LegacyStem, AggregateLegacyStem)
	a.str(&ag.CurrentStem, AggregateCurrentStem)
	a.integer(&ag.Jobs, AggregateJobs)

	pl := &cfg.Plot
	a.str(&pl.OutputDir, PlotOutputDir)
	a.str(&pl.Title, PlotTitle)
	a.floats(&pl.XTicks, PlotXTicks)
	a.floats(&pl.YTicks, PlotYTicks)
	a.number(&pl.XMin, PlotXMin)
	a.number(&pl.XMax, PlotXMax)
	a.number(&pl.YMin, PlotYMin)
	a.number(&pl.YMax, PlotYMax)
	if PlotFormats.Present(store) {
		pl.Formats = ParseStringList(PlotFormats.StringVal(store))
	}
	a.str(&pl.ReferenceFile, PlotReferenceFile)

	a.str(&cfg.Export.DatabaseURI, ExportDatabaseURI)
	a.str(&cfg.Export.Table, ExportTable)
	a.str(&cfg.Notify.KafkaBroker, NotifyKafkaBroker)
	a.str(&cfg.Notify.Topic, NotifyTopic)

	return errors.Join(a.errs...)
}

type applier struct {
	store *ini.Store
	errs  []error
}

func (a *applier) value(f *ini.Field) (string, bool) {
	if !f.Present(a.store) {
		return "", false
	}
	return os.ExpandEnv(f.StringVal(a.store)), true
}

func (a *applier) str(sp *string, f *ini.Field) {
	if s, ok := a.value(f); ok {
		*sp = s
	}
}

func (a *applier) integer(ip *int, f *ini.Field) {
	if s, ok := a.value(f); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("Bad integer %q: %w", s, err))
			return
		}
		*ip = n
	}
}

func (a *applier) number(fp *float64, f *ini.Field) {
	if s, ok := a.value(f); ok {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("Bad number %q: %w", s, err))
			return
		}
		*fp = x
	}
}

func (a *applier) ints(xp *[]int, f *ini.Field) {
	if s, ok := a.value(f); ok {
		xs, err := ParseIntList(s)
		if err != nil {
			a.errs = append(a.errs, err)
			return
		}
		*xp = xs
	}
}

func (a *applier) floats(xp *[]float64, f *ini.Field) {
	if s, ok := a.value(f); ok {
		xs, err := ParseFloatList(s)
		if err != nil {
			a.errs = append(a.errs, err)
			return
		}
		*xp = xs
	}
}
