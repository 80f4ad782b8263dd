// Average the trial logs of earlier benchmark runs.
//
// For every process count, the trial files <data-dir>/<prefix><procs>/<stem><trial>.dat are read
// with the data source's profile.  Files that cannot be read or do not have the expected layout are
// skipped; a configuration where no file could be read is dropped from the series altogether, and
// reported as dropped.

package runlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	. "stdpbench/common"
)

// The outcome for one trial file: either Metrics or Err.
type FileResult struct {
	Path    string
	Metrics Metrics
	Err     error
}

type Point struct {
	Procs int
	Setup float64
	Sim   float64
	Mem   float64

	// Number of trial files the averages are over
	Files int
}

type Dropped struct {
	Source   string
	Procs    int
	Attempts int
	Reason   string
}

// Parallel sequences, one element per configuration that had data, in configuration order.
type Series struct {
	Label string
	Procs []int
	Sim   []float64
	Setup []float64
	Mem   []float64
	Files []int
}

func (s *Series) Len() int {
	return len(s.Procs)
}

func (s *Series) Append(p Point) {
	s.Procs = append(s.Procs, p.Procs)
	s.Sim = append(s.Sim, p.Sim)
	s.Setup = append(s.Setup, p.Setup)
	s.Mem = append(s.Mem, p.Mem)
	s.Files = append(s.Files, p.Files)
}

func (s *Series) Point(i int) Point {
	return Point{Procs: s.Procs[i], Setup: s.Setup[i], Sim: s.Sim[i], Mem: s.Mem[i], Files: s.Files[i]}
}

// Concatenate series in the order given, under a new label.
func Concat(label string, ss ...Series) Series {
	r := Series{Label: label}
	for _, s := range ss {
		for i := range s.Procs {
			r.Append(s.Point(i))
		}
	}
	return r
}

type Result struct {
	Series  Series
	Dropped []Dropped
}

func TrialPath(dataDir string, src DataSource, procs, trial int) string {
	return path.Join(dataDir, fmt.Sprintf("%s%d", src.DirPrefix, procs), fmt.Sprintf("%s%d.dat", src.FileStem, trial))
}

func ReadTrial(filename string, prof Profile) FileResult {
	t, err := ReadTable(filename)
	if err != nil {
		return FileResult{Path: filename, Err: err}
	}
	m, err := prof.Extract(t)
	if err != nil {
		return FileResult{Path: filename, Err: err}
	}
	return FileResult{Path: filename, Metrics: m}
}

func ReadTrials(dataDir string, src DataSource, prof Profile, procs, trials int) []FileResult {
	results := make([]FileResult, trials)
	for p := range trials {
		results[p] = ReadTrial(TrialPath(dataDir, src, procs, p), prof)
	}
	return results
}

// Fold the trial results for one configuration.  ok is false if no trial succeeded.  Failed trials
// are logged.

func Summarize(procs int, results []FileResult) (pt Point, ok bool) {
	var setup, sim, mem []float64
	for _, r := range results {
		if r.Err != nil {
			Log.Warningf("Ignoring file %s: %v", r.Path, r.Err)
			continue
		}
		setup = append(setup, r.Metrics.Setup)
		sim = append(sim, r.Metrics.Sim)
		mem = append(mem, r.Metrics.Memory)
	}
	if len(sim) == 0 {
		return Point{}, false
	}
	return Point{
		Procs: procs,
		Setup: stat.Mean(setup, nil),
		Sim:   stat.Mean(sim, nil),
		Mem:   stat.Mean(mem, nil),
		Files: len(sim),
	}, true
}

// Aggregate one data source over the process counts.  Configurations are read concurrently, at
// most cfg.Jobs at a time; the result is in the order of `procs`.  The only error is cancellation.

func Aggregate(ctx context.Context, cfg *AggregateConfig, src DataSource, procs []int) (Result, error) {
	prof, err := LookupProfile(src.Profile)
	if err != nil {
		return Result{}, err
	}

	perConfig := make([][]FileResult, len(procs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	for i, n := range procs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			Log.Infof("Loading %s", path.Join(cfg.DataDir, fmt.Sprintf("%s%d", src.DirPrefix, n)))
			perConfig[i] = ReadTrials(cfg.DataDir, src, prof, n, cfg.Trials)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Series: Series{Label: src.Label}}
	for i, n := range procs {
		if pt, ok := Summarize(n, perConfig[i]); ok {
			result.Series.Append(pt)
			continue
		}
		d := Dropped{
			Source:   src.FileStem + " (" + prof.Name + ")",
			Procs:    n,
			Attempts: len(perConfig[i]),
			Reason:   dropReason(perConfig[i]),
		}
		Log.Warningf("Dropping %d procs from %s: %s", n, src.Label, d.Reason)
		result.Dropped = append(result.Dropped, d)
	}
	return result, nil
}

func dropReason(results []FileResult) string {
	if len(results) == 0 {
		return "no trials attempted"
	}
	missing := 0
	var other *FileResult
	for i := range results {
		r := &results[i]
		switch {
		case errors.Is(r.Err, fs.ErrNotExist):
			missing++
		case other == nil:
			other = r
		}
	}
	if other == nil {
		return fmt.Sprintf("all %d trial files missing", len(results))
	}
	return fmt.Sprintf("all %d trial files failed, %d missing, first other: %s: %v",
		len(results), missing, other.Path, other.Err)
}

// Aggregate several data sources for the same process counts and concatenate them in order.  The
// result carries the label of the first source.

func AggregateSources(
	ctx context.Context,
	cfg *AggregateConfig,
	sources []DataSource,
	procs []int,
) (Result, error) {
	var combined Result
	var parts []Series
	for _, src := range sources {
		r, err := Aggregate(ctx, cfg, src, procs)
		if err != nil {
			return Result{}, err
		}
		parts = append(parts, r.Series)
		combined.Dropped = append(combined.Dropped, r.Dropped...)
	}
	label := ""
	if len(sources) > 0 {
		label = sources[0].Label
	}
	combined.Series = Concat(label, parts...)
	return combined, nil
}
