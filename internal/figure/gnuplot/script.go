// Package gnuplot draws the tracking figure through a gnuplot process.
//
// The renderer itself is only compiled with the gnuplot build tag, since
// the glot client refuses to load on hosts without the gnuplot binary.
// Script generation has no such dependency.
package gnuplot

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/figure"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// Terminal returns the gnuplot terminal line for format at the figure size.
func Terminal(format string, dpi int) (string, error) {
	switch format {
	case config.FormatPNG:
		w := int(figure.Width.Dots(float64(dpi)))
		h := int(figure.Height.Dots(float64(dpi)))
		return fmt.Sprintf("png size %d,%d", w, h), nil
	case config.FormatSVG:
		return fmt.Sprintf("svg size %d,%d", int(figure.Width.Points()), int(figure.Height.Points())), nil
	case config.FormatPDF:
		return fmt.Sprintf("pdfcairo size %gin,%gin", float64(figure.Width/vg.Inch), float64(figure.Height/vg.Inch)), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// Script builds a multiplot script with inline data blocks: the likelihood
// panel on the top quarter and the trajectory below it.
func Script(s *tracking.Series, opts figure.Options, terminal, path string) string {
	var b strings.Builder
	lo, hi := figure.FrameSpan(s)

	fmt.Fprintf(&b, "set terminal %s\n", terminal)
	fmt.Fprintf(&b, "set output %s\n", quote(path))
	b.WriteString("set multiplot\n")

	// Likelihood
	b.WriteString("set size 1,0.25\nset origin 0,0.75\n")
	fmt.Fprintf(&b, "set title %s\n", quote(s.Label+" Label's Likelihood"))
	b.WriteString("set xlabel \"FrameIndex\"\nset ylabel \"Likelihood\"\n")
	fmt.Fprintf(&b, "set xrange [%g:%g]\nset yrange [0:1]\n", lo, hi)
	b.WriteString("plot '-' using 1:2 with lines lc rgb '#1f77b4' notitle\n")
	for i, f := range s.Frames {
		if finite(s.Likelihood[i]) {
			fmt.Fprintf(&b, "%d %g\n", f, s.Likelihood[i])
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("e\n")

	// Trajectory; reversed ranges are drawn inverted by gnuplot itself
	b.WriteString("set size 1,0.75\nset origin 0,0\n")
	fmt.Fprintf(&b, "set title %s\n", quote(s.Label+"'s trajectory"))
	b.WriteString("set xlabel \"x\"\nset ylabel \"y\"\nset grid\n")
	fmt.Fprintf(&b, "set xrange [%g:%g]\nset yrange [%g:%g]\n", opts.X.Min, opts.X.Max, opts.Y.Min, opts.Y.Max)
	fmt.Fprintf(&b, "set cbrange [%g:%g]\nset cblabel \"FrameIndex\"\n", lo, hi)
	b.WriteString("plot '-' using 1:2:3:4:5 with vectors head filled lc palette notitle, " +
		"'-' using 1:2:3 with points pt 7 ps 0.4 lc palette notitle\n")

	steps := tracking.Displacements(s)
	for i, d := range steps {
		if finite(s.X[i]) && finite(s.Y[i]) && finite(d.DX) && finite(d.DY) {
			fmt.Fprintf(&b, "%g %g %g %g %d\n", s.X[i], s.Y[i], d.DX, d.DY, s.Frames[i])
		}
	}
	b.WriteString("e\n")
	for i := range s.X {
		if finite(s.X[i]) && finite(s.Y[i]) {
			fmt.Fprintf(&b, "%g %g %d\n", s.X[i], s.Y[i], s.Frames[i])
		}
	}
	b.WriteString("e\n")

	b.WriteString("unset multiplot\nunset output\n")
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// quote returns s as a double-quoted gnuplot string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
