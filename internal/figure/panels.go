package figure

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

var (
	panelBackground = colornames.Whitesmoke
	likelihoodColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// preparePanel returns an empty panel with the shared text and background styling.
func preparePanel(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = panelBackground

	p.Title.Text = title
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = 14
	p.Title.Padding = vg.Points(6)

	p.X.Label.Text = xlabel
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Variant = "Sans"

	p.Y.Label.Text = ylabel
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Variant = "Sans"

	return p
}

// fixAxis pins an axis to r regardless of the data that was added.
// Must be called after the plotters are added, since Add widens the axes.
func fixAxis(a *plot.Axis, r Range) {
	if r.Min > r.Max {
		a.Min, a.Max = r.Max, r.Min
		a.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		return
	}
	a.Min, a.Max = r.Min, r.Max
	a.Scale = plot.LinearScale{}
}

// finiteRuns splits (xs[i], ys[i]) into runs of consecutive finite points so
// untracked frames show as gaps rather than bridged segments.
func finiteRuns(xs, ys []float64) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FrameSpan returns the first and last frame index of s, widened to a unit
// range when s has fewer than two samples.
func FrameSpan(s *tracking.Series) (lo, hi float64) {
	if s.Len() == 0 {
		return 0, 1
	}
	lo, hi = float64(s.Frames[0]), float64(s.Frames[s.Len()-1])
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// frameColorMap maps frame index onto a perceptually ordered color scale.
func frameColorMap(s *tracking.Series) palette.ColorMap {
	cm := moreland.Kindlmann()
	lo, hi := FrameSpan(s)
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm
}

// likelihoodPanel plots likelihood against frame index on a fixed [0, 1] axis.
func likelihoodPanel(s *tracking.Series) (*plot.Plot, error) {
	p := preparePanel(fmt.Sprintf("%s Label's Likelihood", s.Label), "FrameIndex", "Likelihood")

	frames := make([]float64, s.Len())
	for i, f := range s.Frames {
		frames[i] = float64(f)
	}

	for _, run := range finiteRuns(frames, s.Likelihood) {
		line, err := plotter.NewLine(run)
		if err != nil {
			return nil, err
		}
		line.Color = likelihoodColor
		line.Width = vg.Points(1)
		p.Add(line)
	}

	lo, hi := FrameSpan(s)
	fixAxis(&p.X, Range{Min: lo, Max: hi})
	fixAxis(&p.Y, Range{Min: 0, Max: 1})
	return p, nil
}

// trajectoryPanel plots the (x, y) path colored by frame with an arrow to
// each successor. The axes come from opts only, so points outside them are
// clipped from view.
func trajectoryPanel(s *tracking.Series, cm palette.ColorMap, opts Options) (*plot.Plot, error) {
	p := preparePanel(fmt.Sprintf("%s's trajectory", s.Label), "x", "y")
	p.Add(plotter.NewGrid())

	frameColor := func(i int) color.Color {
		c, err := cm.At(float64(s.Frames[i]))
		if err != nil {
			return color.Black
		}
		return c
	}

	p.Add(&arrows{
		X:     s.X,
		Y:     s.Y,
		Steps: tracking.Displacements(s),
		Color: frameColor,
		Width: vg.Points(0.5),
		Head:  vg.Points(4),
	})

	var pts plotter.XYs
	var idx []int
	for i := range s.X {
		if finite(s.X[i]) && finite(s.Y[i]) {
			pts = append(pts, plotter.XY{X: s.X[i], Y: s.Y[i]})
			idx = append(idx, i)
		}
	}
	if len(pts) > 0 {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  frameColor(idx[i]),
				Radius: vg.Points(1.5),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(sc)
	}

	fixAxis(&p.X, opts.X)
	fixAxis(&p.Y, opts.Y)
	return p, nil
}

// colorBarPanel is the vertical legend for the trajectory's frame colors.
func colorBarPanel(cm palette.ColorMap) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	p.HideX()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.Y.Label.Text = "FrameIndex"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Variant = "Sans"
	return p
}
