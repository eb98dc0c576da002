//go:build gnuplot

package gnuplot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Arafatk/glot"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/figure"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

func init() {
	figure.Register(config.RendererGnuplot, func(opts figure.Options, logger *slog.Logger) figure.Renderer {
		return New(opts, logger)
	})
}

// Renderer draws the same two-panel figure as figure.PlotRenderer through a
// gnuplot process. It needs the gnuplot binary on PATH.
type Renderer struct {
	opts   figure.Options
	logger *slog.Logger
}

var _ figure.Renderer = (*Renderer)(nil)

// New returns a gnuplot-backed renderer. A nil logger uses slog.Default.
func New(opts figure.Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{config.FormatPNG}
	}
	return &Renderer{opts: opts, logger: logger}
}

// Render writes <OutputDir>/<label>.<format> for every configured format and
// returns the PNG path.
func (r *Renderer) Render(s *tracking.Series) (string, error) {
	var pngPath string
	for _, format := range r.opts.Formats {
		path, err := figure.OutputPath(r.opts.OutputDir, s.Label, format)
		if err != nil {
			return "", &figure.RenderError{Label: s.Label, Path: path, Err: err}
		}
		if err := r.run(s, format, path); err != nil {
			return "", &figure.RenderError{Label: s.Label, Path: path, Err: err}
		}
		if format == config.FormatPNG {
			pngPath = path
		}
		r.logger.Debug("figure written", "label", s.Label, "format", format, "path", path, "backend", "gnuplot")
	}
	return pngPath, nil
}

func (r *Renderer) run(s *tracking.Series, format, path string) error {
	terminal, err := Terminal(format, r.opts.DPI)
	if err != nil {
		return err
	}

	// a stale file would hide a gnuplot failure
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	gp, err := glot.NewPlot(2, false, false)
	if err != nil {
		return fmt.Errorf("start gnuplot: %w", err)
	}

	if err := gp.Cmd("%s", Script(s, r.opts, terminal, path)); err != nil {
		gp.Close()
		return fmt.Errorf("gnuplot: %w", err)
	}
	if err := gp.Close(); err != nil {
		return fmt.Errorf("gnuplot: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("gnuplot produced no output: %w", err)
	}
	return nil
}
