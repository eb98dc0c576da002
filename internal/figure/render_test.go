package figure

import (
	"bytes"
	"errors"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// testDPI keeps test images small: 12x8 inches → 240x160 pixels.
const testDPI = 20

func testOptions(dir string) Options {
	return Options{
		OutputDir: dir,
		DPI:       testDPI,
		Formats:   []string{config.FormatPNG},
		X:         Range{Min: 0, Max: 100},
		Y:         Range{Min: 100, Max: 0},
	}
}

// spiral returns a series that stays inside a 0..100 square.
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

func TestPlotRenderer_WritesLabelPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Figure")
	r := NewPlotRenderer(testOptions(dir), nil)

	_, err := os.Stat(filepath.Join(dir, "Head.png"))
	require.True(t, os.IsNotExist(err))

	path, err := r.Render(spiral("Head", 40))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Head.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 12*testDPI, img.Bounds().Dx())
	assert.Equal(t, 8*testDPI, img.Bounds().Dy())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "one file per render")
}

func TestPlotRenderer_Overwrites(t *testing.T) {
	dir := t.TempDir()
	r := NewPlotRenderer(testOptions(dir), nil)
	path := filepath.Join(dir, "Head.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	_, err := r.Render(spiral("Head", 10))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err, "stale content should be replaced by a PNG")

	// a second run over an existing directory and file is fine
	_, err = r.Render(spiral("Head", 10))
	assert.NoError(t, err)
}

func TestPlotRenderer_ExtraFormats(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	opts.Formats = []string{config.FormatPNG, config.FormatSVG, config.FormatPDF}
	r := NewPlotRenderer(opts, nil)

	path, err := r.Render(spiral("Tail", 12))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Tail.png"), path)

	for _, name := range []string{"Tail.png", "Tail.svg", "Tail.pdf"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestPlotRenderer_ShortSeries(t *testing.T) {
	r := NewPlotRenderer(testOptions(t.TempDir()), nil)

	for _, n := range []int{0, 1, 2} {
		_, err := r.Render(spiral("short", n))
		assert.NoError(t, err, "n=%d", n)
	}
}

func TestPlotRenderer_UntrackedFrames(t *testing.T) {
	s := spiral("gappy", 20)
	for _, i := range []int{0, 5, 6, 19} {
		s.X[i], s.Y[i], s.Likelihood[i] = math.NaN(), math.NaN(), math.NaN()
	}

	r := NewPlotRenderer(testOptions(t.TempDir()), nil)
	_, err := r.Render(s)
	assert.NoError(t, err)
}

// Points outside the configured axis ranges are clipped from view without
// error: the axes never follow the data.
func TestPlotRenderer_ClipsOutOfRangeTrajectory(t *testing.T) {
	offscreen := spiral("Head", 30)
	hidden := spiral("Head", 30)
	for i := range offscreen.X {
		offscreen.X[i] += 5000
		hidden.X[i], hidden.Y[i] = math.NaN(), math.NaN()
	}

	render := func(s *tracking.Series) []byte {
		dir := t.TempDir()
		path, err := NewPlotRenderer(testOptions(dir), nil).Render(s)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, render(hidden), render(offscreen),
		"an off-screen trajectory should draw nothing in the trajectory panel")
	assert.NotEqual(t, render(hidden), render(spiral("Head", 30)))
}

func TestPlotRenderer_RenderError(t *testing.T) {
	// output_dir is an existing regular file
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	r := NewPlotRenderer(testOptions(blocker), nil)
	_, err := r.Render(spiral("Head", 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Head", re.Label)
}

func TestNew(t *testing.T) {
	cfg := config.Default()

	r, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &PlotRenderer{}, r)

	// the gnuplot backend lives outside this package and is not linked here
	cfg.Renderer = config.RendererGnuplot
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	cfg.Renderer = "ascii"
	_, err = New(cfg, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

type stubRenderer struct{ opts Options }

func (s *stubRenderer) Render(*tracking.Series) (string, error) { return "", nil }

func TestNew_RegisteredBackend(t *testing.T) {
	Register("stub", func(opts Options, _ *slog.Logger) Renderer { return &stubRenderer{opts: opts} })

	cfg := config.Default()
	cfg.Renderer = "stub"
	cfg.DPI = 42
	r, err := New(cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &stubRenderer{}, r)
	assert.Equal(t, 42, r.(*stubRenderer).opts.DPI)
}

func TestPlotRenderer_UnsafeLabel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Figure")
	r := NewPlotRenderer(testOptions(dir), nil)

	for _, label := range []string{"../escape", "a/b", `a\b`, ""} {
		_, err := r.Render(spiral(label, 5))
		require.Error(t, err, label)
		assert.ErrorIs(t, err, ErrRender, label)
		assert.ErrorIs(t, err, ErrUnsafeLabel, label)
	}
	assert.NoFileExists(t, filepath.Join(root, "escape.png"))
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "out"
	cfg.DPI = 300

	opts := OptionsFrom(cfg)
	assert.Equal(t, "out", opts.OutputDir)
	assert.Equal(t, 300, opts.DPI)
	assert.Equal(t, Range{Min: 0, Max: 1920}, opts.X)
	assert.Equal(t, Range{Min: 1080, Max: 0}, opts.Y)

	opts.Formats[0] = "svg"
	assert.Equal(t, config.FormatPNG, cfg.Formats[0], "options must not alias the config")
}
