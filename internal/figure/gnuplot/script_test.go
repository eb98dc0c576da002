package gnuplot

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/figure"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

func testOptions(dir string) figure.Options {
	return figure.Options{
		OutputDir: dir,
		DPI:       20,
		Formats:   []string{config.FormatPNG},
		X:         figure.Range{Min: 0, Max: 100},
		Y:         figure.Range{Min: 100, Max: 0},
	}
}

func spiral(label string, n int) *tracking.Series {
	s := &tracking.Series{Label: label}
	for i := 0; i < n; i++ {
		a := float64(i) / 4
		s.Frames = append(s.Frames, i)
		s.X = append(s.X, 50+float64(i)*math.Cos(a))
		s.Y = append(s.Y, 50+float64(i)*math.Sin(a))
		s.Likelihood = append(s.Likelihood, 0.5+0.5*math.Sin(a))
	}
	return s
}

func TestScript(t *testing.T) {
	s := spiral(`say "hi"`, 4)
	s.X[2] = math.NaN()

	script := Script(s, testOptions("out"), "png size 240,160", "out/x.png")

	assert.Contains(t, script, "set terminal png size 240,160\n")
	assert.Contains(t, script, `set output "out/x.png"`)
	assert.Contains(t, script, `set title "say \"hi\" Label's Likelihood"`)
	assert.Contains(t, script, "set yrange [100:0]", "inverted range passes through")
	assert.Contains(t, script, "set xrange [0:3]")
	assert.True(t, strings.HasSuffix(script, "unset multiplot\nunset output\n"))

	// likelihood, arrow and point blocks each close with "e"
	assert.Equal(t, 3, strings.Count(script, "\ne\n"))
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{config.FormatPNG, "png size 240,160"},
		{config.FormatSVG, "svg size 864,576"},
		{config.FormatPDF, "pdfcairo size 12in,8in"},
	}
	for _, tt := range tests {
		got, err := Terminal(tt.format, 20)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.want, got)
	}

	_, err := Terminal("gif", 20)
	assert.Error(t, err)
}
