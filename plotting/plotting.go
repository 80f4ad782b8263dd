// Scatter plots of scaling data, rendered with gonum/plot.
//
// A Figure is a plain description (series, axes, decorations); Render turns it into a plot and Save
// writes it once per requested format, the format being given by the file extension.

package plotting

import (
	"errors"
	"fmt"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	. "stdpbench/common"
)

var ErrNoData = errors.New("No data to plot")

const (
	figureWidth  = 8 * vg.Inch
	figureHeight = 6 * vg.Inch
)

type Series struct {
	Label string
	X     []float64
	Y     []float64
}

type Figure struct {
	// File stem
	Name string

	Title  string
	XLabel string
	YLabel string
	LogX   bool
	LogY   bool

	// Empty means automatic ticks
	XTicks []float64
	YTicks []float64

	// A zero pair means the range of the data
	XMin, XMax float64
	YMin, YMax float64

	Series []Series
}

// Points that cannot be shown on a log axis are left out, with a warning.
func (f *Figure) drawable(s Series) plotter.XYs {
	xys := make(plotter.XYs, 0, len(s.X))
	for i := range s.X {
		x, y := s.X[i], s.Y[i]
		if (f.LogX && x <= 0) || (f.LogY && y <= 0) {
			Log.Warningf("%s: %s: point (%g, %g) cannot be drawn on a log axis", f.Name, s.Label, x, y)
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys
}

func Render(f *Figure, markerRadius float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Legend.Top = true

	points := 0
	for i, s := range f.Series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("%s: series %s has %d x values and %d y values", f.Name, s.Label, len(s.X), len(s.Y))
		}
		xys := f.drawable(s)
		if len(xys) == 0 {
			Log.Infof("%s: nothing to draw for %s", f.Name, s.Label)
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(markerRadius)
		p.Add(sc)
		p.Legend.Add(s.Label, sc)
		points += len(xys)
	}
	if points == 0 {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrNoData)
	}

	configureAxis(&p.X, f.LogX, f.XTicks, f.XMin, f.XMax)
	configureAxis(&p.Y, f.LogY, f.YTicks, f.YMin, f.YMax)
	return p, nil
}

// Must be called after all the data are added, p.Add widens the axes to the data.
func configureAxis(a *plot.Axis, logScale bool, ticks []float64, lo, hi float64) {
	if logScale {
		a.Scale = plot.LogScale{}
		a.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if len(ticks) > 0 {
		a.Tick.Marker = plot.ConstantTicks(Ticks(ticks))
	}
	if lo != 0 || hi != 0 {
		a.Min = lo
		a.Max = hi
	} else if logScale && a.Min == a.Max {
		// A single value; the default widening by +/-1 can reach zero.
		a.Min /= 2
		a.Max *= 2
	}
}

// Major ticks at exactly these values, labeled with the plain number.
func Ticks(values []float64) []plot.Tick {
	ts := make([]plot.Tick, len(values))
	for i, v := range values {
		ts[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return ts
}

// Render and write the figure to <dir>/<name>.<format> for each format, returning the file names.
func Save(f *Figure, dir string, formats []string, markerRadius float64) ([]string, error) {
	p, err := Render(f, markerRadius)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, format := range formats {
		fn := path.Join(dir, f.Name+"."+format)
		if err := p.Save(figureWidth, figureHeight, fn); err != nil {
			return written, fmt.Errorf("Saving %s: %w", fn, err)
		}
		Log.Infof("Wrote %s", fn)
		written = append(written, fn)
	}
	return written, nil
}
