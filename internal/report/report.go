// Package report runs the load → plot → calibrate pipeline over one tracking file.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/PluPludevil/DLC-Plot/internal/calibration"
	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/figure"
	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

// Pipeline stages, as reported in StageError.
const (
	StageLoad      = "load"
	StageLabels    = "labels"
	StageExtract   = "extract"
	StageRender    = "render"
	StageCalibrate = "calibrate"
	StageRunLog    = "run log"
)

// LowLikelihood is the cutoff below which a frame counts as poorly tracked
// in the run log.
const LowLikelihood = 0.6

// StageError names the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Figure summarizes one rendered label.
type Figure struct {
	Label string
	Path  string
	// Frames is the number of samples in the plotted window.
	Frames         int
	MeanLikelihood float64
	// LowFraction is the share of tracked frames below LowLikelihood.
	LowFraction float64
}

// Scale is the pixel calibration result.
type Scale struct {
	Label1, Label2 string
	Frames         int
	KnownMM        float64
	MMPerPixel     float64
	// Drift is nil when the trend fit failed; the scale is still valid.
	Drift *calibration.Drift
}

// Result is what a run produced. Series holds every plotted label's window
// so callers can compute on them after the loop.
type Result struct {
	Labels  []string
	Series  map[string]*tracking.Series
	Figures []Figure
	// Scale is nil when calibration is not configured or a reference label
	// is not in the file.
	Scale *Scale
}

// Run loads cfg.CSVPath, renders one figure per label through r and, when
// both reference labels are configured and present, computes the pixel
// scale. Any failure stops the run; figures already written stay on disk.
func Run(cfg config.Config, r figure.Renderer, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading tracking data", "path", cfg.CSVPath)
	tbl, err := tracking.Load(cfg.CSVPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	labels, err := tbl.Labels()
	if err != nil {
		return nil, &StageError{Stage: StageLabels, Err: err}
	}
	logger.Info("tracking data loaded", "frames", tbl.Frames(), "labels", len(labels))

	res := &Result{Labels: labels}
	res.Series, res.Figures, err = renderLabels(tbl, labels, cfg, r, logger)
	if err != nil {
		return res, err
	}

	if cfg.CalibrationEnabled() {
		res.Scale, err = calibrate(res.Series, cfg, logger)
		if err != nil {
			return res, &StageError{Stage: StageCalibrate, Err: err}
		}
	} else {
		logger.Debug("pixel scale not configured")
	}

	if cfg.RunLog {
		path, err := writeRunLog(cfg, tbl.Frames(), res)
		if err != nil {
			return res, &StageError{Stage: StageRunLog, Err: err}
		}
		logger.Debug("run log written", "path", path)
	}

	return res, nil
}

// renderLabels extracts and renders each label in turn.
func renderLabels(tbl *tracking.Table, labels []string, cfg config.Config, r figure.Renderer, logger *slog.Logger) (map[string]*tracking.Series, []Figure, error) {
	window := tracking.FrameRange{First: cfg.FirstFrame, Last: cfg.LastFrame}
	series := make(map[string]*tracking.Series, len(labels))
	figures := make([]Figure, 0, len(labels))

	for _, label := range labels {
		s, err := tbl.Extract(label, window)
		if err != nil {
			return series, figures, &StageError{Stage: StageExtract, Err: err}
		}

		path, err := r.Render(s)
		if err != nil {
			return series, figures, &StageError{Stage: StageRender, Err: err}
		}

		fig := summarize(s, path)
		logger.Info("figure rendered", "label", label, "path", path, "frames", fig.Frames)

		series[label] = s
		figures = append(figures, fig)
	}
	return series, figures, nil
}

// summarize computes likelihood statistics over the tracked frames of s.
func summarize(s *tracking.Series, path string) Figure {
	fig := Figure{Label: s.Label, Path: path, Frames: s.Len(), MeanLikelihood: math.NaN()}

	tracked := make([]float64, 0, s.Len())
	low := 0
	for _, v := range s.Likelihood {
		if math.IsNaN(v) {
			continue
		}
		tracked = append(tracked, v)
		if v < LowLikelihood {
			low++
		}
	}
	if len(tracked) > 0 {
		fig.MeanLikelihood = stat.Mean(tracked, nil)
		fig.LowFraction = float64(low) / float64(len(tracked))
	}
	return fig
}

// calibrate computes the pixel scale from the two reference labels. It
// returns nil, nil when either label was not plotted.
func calibrate(series map[string]*tracking.Series, cfg config.Config, logger *slog.Logger) (*Scale, error) {
	a, okA := series[cfg.Label1]
	b, okB := series[cfg.Label2]
	if !okA || !okB {
		logger.Debug("pixel scale skipped: reference label not in data",
			"label1", cfg.Label1, "found1", okA, "label2", cfg.Label2, "found2", okB)
		return nil, nil
	}

	logger.Debug("computing pixel scale", "label1", cfg.Label1, "label2", cfg.Label2,
		"frames", cfg.CalibrationFrameCount, "known_mm", cfg.KnownDistanceMM)

	mmPerPx, err := calibration.ScaleFactor(a, b, cfg.CalibrationFrameCount, cfg.KnownDistanceMM)
	if err != nil {
		return nil, err
	}

	sc := &Scale{
		Label1:     cfg.Label1,
		Label2:     cfg.Label2,
		Frames:     cfg.CalibrationFrameCount,
		KnownMM:    cfg.KnownDistanceMM,
		MMPerPixel: mmPerPx,
	}

	// ScaleFactor already validated the frame count
	d, _ := calibration.Distances(a, b, cfg.CalibrationFrameCount)
	drift, err := calibration.FitDrift(d)
	if err != nil {
		logger.Warn("calibration drift fit failed", "error", err)
		return sc, nil
	}
	sc.Drift = &drift
	logger.Info("pixel scale computed", "mm_per_px", mmPerPx, "drift_px_per_frame", drift.Slope)
	return sc, nil
}

// IsStage reports whether err failed in the named stage.
func IsStage(err error, stage string) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}

// ScaleLine is the one-line stdout report of a scale result.
func (s *Scale) ScaleLine() string {
	return fmt.Sprintf("pixel scale: %v mm/px", s.MMPerPixel)
}
