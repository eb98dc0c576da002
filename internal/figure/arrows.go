package figure

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// arrows draws a step arrow from (X[i], Y[i]) to (X[i]+DX, Y[i]+DY) for every
// sample. Zero and non-finite steps are skipped. Shafts and heads are clipped
// to the data area.
type arrows struct {
	X, Y  []float64
	Steps []tracking.Displacement

	// Color picks the color of arrow i.
	Color func(i int) color.Color
	Width vg.Length
	// Head is the largest arrowhead length; short arrows get smaller heads.
	Head vg.Length
}

var _ plot.Plotter = (*arrows)(nil)

// Plot implements the plot.Plotter interface.
func (a *arrows) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for i, d := range a.Steps {
		x, y := a.X[i], a.Y[i]
		if !finite(x) || !finite(y) || !finite(d.DX) || !finite(d.DY) {
			continue
		}
		if d.DX == 0 && d.DY == 0 {
			continue
		}

		from := vg.Point{X: trX(x), Y: trY(y)}
		to := vg.Point{X: trX(x + d.DX), Y: trY(y + d.DY)}

		sty := draw.LineStyle{Color: color.Black, Width: a.Width}
		if a.Color != nil {
			sty.Color = a.Color(i)
		}

		c.StrokeLines(sty, c.ClipLinesXY([]vg.Point{from, to})...)
		if head := arrowHead(from, to, a.Head); head != nil {
			c.FillPolygon(sty.Color, c.ClipPolygonXY(head))
		}
	}
}

// arrowHead returns the triangle at the tip of from→to, or nil for a
// zero-length arrow. The head is at most 60% of the shaft.
func arrowHead(from, to vg.Point, size vg.Length) []vg.Point {
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	l := math.Hypot(dx, dy)
	if l == 0 || size <= 0 {
		return nil
	}

	ux, uy := dx/l, dy/l
	s := math.Min(float64(size), 0.6*l)
	bx, by := float64(to.X)-ux*s, float64(to.Y)-uy*s
	hw := s / 2

	return []vg.Point{
		to,
		{X: vg.Length(bx - uy*hw), Y: vg.Length(by + ux*hw)},
		{X: vg.Length(bx + uy*hw), Y: vg.Length(by - ux*hw)},
	}
}
