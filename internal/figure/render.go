package figure

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// PlotRenderer draws figures with gonum/plot.
type PlotRenderer struct {
	opts   Options
	logger *slog.Logger
}

var _ Renderer = (*PlotRenderer)(nil)

// NewPlotRenderer returns a gonum/plot renderer. A nil logger uses slog.Default.
func NewPlotRenderer(opts Options, logger *slog.Logger) *PlotRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{config.FormatPNG}
	}
	return &PlotRenderer{opts: opts, logger: logger}
}

// Render writes <OutputDir>/<label>.png, plus one file per extra format,
// overwriting earlier output. It returns the PNG path.
func (r *PlotRenderer) Render(s *tracking.Series) (string, error) {
	var pngPath string
	for _, format := range r.opts.Formats {
		path, err := r.renderFormat(s, format)
		if err != nil {
			return "", err
		}
		if format == config.FormatPNG {
			pngPath = path
		}
	}
	return pngPath, nil
}

func (r *PlotRenderer) renderFormat(s *tracking.Series, format string) (string, error) {
	path, err := OutputPath(r.opts.OutputDir, s.Label, format)
	if err != nil {
		return "", &RenderError{Label: s.Label, Path: path, Err: err}
	}

	c, err := r.canvas(format)
	if err != nil {
		return "", &RenderError{Label: s.Label, Path: path, Err: err}
	}

	if err := r.draw(draw.New(c), s); err != nil {
		return "", &RenderError{Label: s.Label, Path: path, Err: err}
	}

	if err := writeFile(path, c); err != nil {
		return "", &RenderError{Label: s.Label, Path: path, Err: fmt.Errorf("save %s plot: %w", format, err)}
	}

	r.logger.Debug("figure written", "label", s.Label, "format", format, "path", path)
	return path, nil
}

// canvas returns an empty figure-sized canvas for format.
func (r *PlotRenderer) canvas(format string) (vg.CanvasWriterTo, error) {
	switch format {
	case config.FormatPNG:
		img := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(r.opts.DPI))
		return vgimg.PngCanvas{Canvas: img}, nil
	case config.FormatSVG:
		return vgsvg.New(Width, Height), nil
	case config.FormatPDF:
		return vgpdf.New(Width, Height), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// draw lays out the figure: likelihood on the top quarter, trajectory with
// its color bar on the bottom three quarters.
func (r *PlotRenderer) draw(dc draw.Canvas, s *tracking.Series) error {
	lk, err := likelihoodPanel(s)
	if err != nil {
		return fmt.Errorf("likelihood panel: %w", err)
	}

	cm := frameColorMap(s)
	traj, err := trajectoryPanel(s, cm, r.opts)
	if err != nil {
		return fmt.Errorf("trajectory panel: %w", err)
	}
	bar := colorBarPanel(cm)

	h := dc.Max.Y - dc.Min.Y
	top := draw.Crop(dc, 0, 0, h*3/4+panelGap/2, 0)
	bottom := draw.Crop(dc, 0, 0, 0, -(h/4 + panelGap/2))

	w := bottom.Max.X - bottom.Min.X
	trajC := draw.Crop(bottom, 0, -colorBarWidth, 0, 0)

	// line the color bar up with the trajectory's data area
	data := traj.DataCanvas(trajC)
	barC := draw.Crop(bottom, w-colorBarWidth+panelGap, -panelGap,
		data.Min.Y-bottom.Min.Y, data.Max.Y-bottom.Max.Y)

	lk.Draw(top)
	traj.Draw(trajC)
	bar.Draw(barC)
	return nil
}
