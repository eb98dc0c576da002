// Package config holds the options that shape a plotting run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Output formats accepted in Config.Formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// Renderer backends accepted in Config.Renderer.
const (
	RendererGonum   = "gonum"
	RendererGnuplot = "gnuplot"
)

// Config is resolved once at startup and treated as read-only afterwards.
type Config struct {
	CSVPath   string `yaml:"csv_path"`
	OutputDir string `yaml:"output_dir"`

	// Frame window shown in the figures. LastFrame nil means through the end.
	// Bounds outside the data are clamped, and an inverted window plots nothing.
	FirstFrame int  `yaml:"first_frame"`
	LastFrame  *int `yaml:"last_frame"`

	// Trajectory panel axis ranges. Min > Max draws the axis inverted.
	XRangeMin float64 `yaml:"x_range_min"`
	XRangeMax float64 `yaml:"x_range_max"`
	YRangeMin float64 `yaml:"y_range_min"`
	YRangeMax float64 `yaml:"y_range_max"`

	// Formats written per label; png is mandatory, svg and pdf are extras.
	DPI      int      `yaml:"dpi"`
	Formats  []string `yaml:"formats"`
	Renderer string   `yaml:"renderer"`
	RunLog   bool     `yaml:"run_log"`

	// Pixel scale: active only when both labels are set.
	Label1                string  `yaml:"label1"`
	Label2                string  `yaml:"label2"`
	KnownDistanceMM       float64 `yaml:"known_distance_mm"`
	CalibrationFrameCount int     `yaml:"calibration_frame_count"`
}

// Default returns the configuration used when no file or flag says otherwise.
// The y range runs 1080 → 0 so trajectories read like the video frame.
func Default() Config {
	return Config{
		OutputDir:             "./Figure",
		FirstFrame:            0,
		XRangeMin:             0,
		XRangeMax:             1920,
		YRangeMin:             1080,
		YRangeMax:             0,
		DPI:                   100,
		Formats:               []string{FormatPNG},
		Renderer:              RendererGonum,
		RunLog:                false,
		KnownDistanceMM:       350,
		CalibrationFrameCount: 10,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// CalibrationEnabled reports whether both reference labels are configured.
func (c Config) CalibrationEnabled() bool {
	return c.Label1 != "" && c.Label2 != ""
}

// Validate checks the configuration for values no run could succeed with.
// Frame bounds are not checked: out-of-range windows are clamped on extraction.
func (c Config) Validate() error {
	if c.CSVPath == "" {
		return errors.New("csv_path is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.XRangeMin == c.XRangeMax {
		return fmt.Errorf("x range is empty: min and max are both %v", c.XRangeMin)
	}
	if c.YRangeMin == c.YRangeMax {
		return fmt.Errorf("y range is empty: min and max are both %v", c.YRangeMin)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be > 0, got %d", c.DPI)
	}
	hasPNG := false
	for _, f := range c.Formats {
		switch f {
		case FormatPNG:
			hasPNG = true
		case FormatSVG, FormatPDF:
		default:
			return fmt.Errorf("unsupported output format %q", f)
		}
	}
	if !hasPNG {
		return errors.New("formats must include png")
	}
	switch c.Renderer {
	case RendererGonum, RendererGnuplot:
	default:
		return fmt.Errorf("unsupported renderer %q", c.Renderer)
	}
	if c.CalibrationEnabled() {
		if c.KnownDistanceMM <= 0 {
			return fmt.Errorf("known_distance_mm must be > 0, got %v", c.KnownDistanceMM)
		}
		if c.CalibrationFrameCount <= 0 {
			return fmt.Errorf("calibration_frame_count must be > 0, got %d", c.CalibrationFrameCount)
		}
	}
	return nil
}
