package plotting

import (
	. "stdpbench/common"
	"stdpbench/reference"
	"stdpbench/runlog"
)

const (
	SimFigureName   = "sim_K_stdp_bm"
	SetupFigureName = "setup_K_stdp_bm"
	GainFigureName  = "gain_K_stdp_bm"

	coresLabel = "number of cores"
)

func procsAsFloats(procs []int) []float64 {
	xs := make([]float64, len(procs))
	for i, p := range procs {
		xs[i] = float64(p)
	}
	return xs
}

func scaled(xs []float64, factor float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * factor
	}
	return ys
}

// Simulation time against cores for our hybrid and flat MPI runs and the reference machine.  `ref`
// may be nil.

func SimulationFigure(cfg *PlotConfig, hybrid, flat runlog.Series, ref *reference.Dataset) *Figure {
	f := &Figure{
		Name:   SimFigureName,
		Title:  cfg.Title,
		XLabel: coresLabel,
		YLabel: "simulation time (s)",
		LogX:   true,
		LogY:   true,
		XTicks: cfg.XTicks,
		YTicks: cfg.YTicks,
		XMin:   cfg.XMin,
		XMax:   cfg.XMax,
		YMin:   cfg.YMin,
		YMax:   cfg.YMax,
		Series: []Series{
			{Label: hybrid.Label, X: procsAsFloats(hybrid.Procs), Y: hybrid.Sim},
			{Label: flat.Label, X: procsAsFloats(flat.Procs), Y: flat.Sim},
		},
	}
	if ref != nil {
		f.Series = append(f.Series, Series{Label: ref.Label, X: procsAsFloats(ref.Procs), Y: ref.Sim})
	}
	return f
}

// Setup time in minutes.  The y range is left to the data, setup times vary over orders of
// magnitude between the two log formats.

func SetupFigure(cfg *PlotConfig, hybrid, flat runlog.Series) *Figure {
	return &Figure{
		Name:   SetupFigureName,
		Title:  "setup time (min)",
		XLabel: coresLabel,
		YLabel: "setup time",
		LogX:   true,
		LogY:   true,
		XTicks: cfg.XTicks,
		XMin:   cfg.XMin,
		XMax:   cfg.XMax,
		Series: []Series{
			{Label: hybrid.Label, X: procsAsFloats(hybrid.Procs), Y: scaled(hybrid.Setup, 1.0/60)},
			{Label: flat.Label, X: procsAsFloats(flat.Procs), Y: scaled(flat.Setup, 1.0/60)},
		},
	}
}

func GainFigure(cfg *PlotConfig, hybrid, flat runlog.Series) *Figure {
	procs, gain := Gain(hybrid, flat)
	return &Figure{
		Name:   GainFigureName,
		Title:  cfg.Title,
		XLabel: coresLabel,
		YLabel: "gain hybrid/flat MPI",
		LogX:   true,
		XTicks: cfg.XTicks,
		XMin:   cfg.XMin,
		XMax:   cfg.XMax,
		Series: []Series{
			{Label: "flat MPI / hybrid", X: procsAsFloats(procs), Y: gain},
		},
	}
}

// The ratio flat/hybrid of simulation times at the process counts present in both series, in the
// order of `flat`.  If the hybrid series has several points for a process count (the two log
// formats) the last one is used.

func Gain(hybrid, flat runlog.Series) (procs []int, gain []float64) {
	hybridSim := make(map[int]float64)
	for i, p := range hybrid.Procs {
		hybridSim[p] = hybrid.Sim[i]
	}
	for i, p := range flat.Procs {
		h, found := hybridSim[p]
		if !found || h == 0 {
			continue
		}
		procs = append(procs, p)
		gain = append(gain, flat.Sim[i]/h)
	}
	return
}

// All figures, in the order they are written.
func Figures(cfg *PlotConfig, hybrid, flat runlog.Series, ref *reference.Dataset) []*Figure {
	return []*Figure{
		SimulationFigure(cfg, hybrid, flat, ref),
		SetupFigure(cfg, hybrid, flat),
		GainFigure(cfg, hybrid, flat),
	}
}
