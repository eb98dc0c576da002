// Package figure draws the per-label diagnostic figure: a likelihood trace
// above a frame-colored trajectory with step arrows.
package figure

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gonum.org/v1/plot/vg"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// ErrRender is matched by every failure to produce a figure file.
var ErrRender = errors.New("render error")

// RenderError records which label and file could not be written.
type RenderError struct {
	Label string
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q to %s: %v", e.Label, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRender) match any RenderError.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// Renderer turns one label's series into image files and returns the path
// of the PNG it wrote.
type Renderer interface {
	Render(s *tracking.Series) (string, error)
}

// Figure geometry, in the 12x8 inch layout with a 1:3 panel ratio.
const (
	Width         = 12 * vg.Inch
	Height        = 8 * vg.Inch
	colorBarWidth = 1.2 * vg.Inch
	panelGap      = 0.15 * vg.Inch
)

// Range is a fixed axis extent. Min > Max draws the axis inverted.
type Range struct {
	Min, Max float64
}

// Options is the subset of the run configuration the renderers need.
type Options struct {
	OutputDir string
	DPI       int
	Formats   []string
	X, Y      Range
}

// OptionsFrom copies the rendering options out of a run configuration.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		OutputDir: cfg.OutputDir,
		DPI:       cfg.DPI,
		Formats:   append([]string(nil), cfg.Formats...),
		X:         Range{Min: cfg.XRangeMin, Max: cfg.XRangeMax},
		Y:         Range{Min: cfg.YRangeMin, Max: cfg.YRangeMax},
	}
}

// Backend builds a renderer from the rendering options.
type Backend func(opts Options, logger *slog.Logger) Renderer

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

// Register makes a renderer backend available to New under name. Backends
// that need external programs live in their own packages and register from
// init, so they are only linked into binaries that import them.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = b
}

// ErrBackendUnavailable is returned by New for a known renderer that was not
// built into the binary.
var ErrBackendUnavailable = errors.New("renderer not built in")

// New returns the renderer named in cfg.Renderer.
func New(cfg config.Config, logger *slog.Logger) (Renderer, error) {
	opts := OptionsFrom(cfg)
	if cfg.Renderer == config.RendererGonum || cfg.Renderer == "" {
		return NewPlotRenderer(opts, logger), nil
	}

	backendsMu.RLock()
	b, ok := backends[cfg.Renderer]
	backendsMu.RUnlock()
	switch {
	case ok:
		return b(opts, logger), nil
	case cfg.Renderer == config.RendererGnuplot:
		return nil, fmt.Errorf("%w: %s (build with -tags gnuplot)", ErrBackendUnavailable, cfg.Renderer)
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
}

// ErrUnsafeLabel is returned for labels that cannot be used as a file name.
var ErrUnsafeLabel = errors.New("label is not a valid file name")

// OutputPath returns <dir>/<label>.<ext>, creating dir if it is missing.
// Labels holding a path separator are rejected so output stays inside dir.
func OutputPath(dir, label, ext string) (string, error) {
	path := filepath.Join(dir, label+"."+ext)
	if label == "" || strings.ContainsAny(label, `/\`) {
		return path, fmt.Errorf("%w: %q", ErrUnsafeLabel, label)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, fmt.Errorf("failed to create output dir: %w", err)
	}
	return path, nil
}

// writeFile creates path and streams wt into it, closing the file before
// returning so nothing stays buffered between labels.
func writeFile(path string, wt io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
