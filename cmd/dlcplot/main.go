// Command dlcplot draws one likelihood and trajectory figure per body part
// of a DeepLabCut tracking CSV and optionally reports a pixel scale.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PluPludevil/DLC-Plot/internal/config"
	"github.com/PluPludevil/DLC-Plot/internal/figure"
	"github.com/PluPludevil/DLC-Plot/internal/report"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dlcplot:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "dlcplot",
		Usage:     "plot DeepLabCut tracking data per body part",
		ArgsUsage: "[csv_path]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "csv", Usage: "tracking CSV (or pass it as the argument)"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "figure directory"},
			&cli.IntFlag{Name: "first-frame", Usage: "first frame shown"},
			&cli.IntFlag{Name: "last-frame", Usage: "last frame shown (default: end of file)"},
			&cli.Float64Flag{Name: "x-min", Usage: "trajectory x axis start"},
			&cli.Float64Flag{Name: "x-max", Usage: "trajectory x axis end"},
			&cli.Float64Flag{Name: "y-min", Usage: "trajectory y axis start (min > max inverts)"},
			&cli.Float64Flag{Name: "y-max", Usage: "trajectory y axis end"},
			&cli.IntFlag{Name: "dpi", Usage: "figure resolution"},
			&cli.StringSliceFlag{Name: "format", Usage: "output formats: png, svg, pdf"},
			&cli.StringFlag{Name: "renderer", Usage: "gonum or gnuplot"},
			&cli.BoolFlag{Name: "run-log", Usage: "write log.txt next to the figures"},
			&cli.StringFlag{Name: "label1", Usage: "first pixel scale reference label"},
			&cli.StringFlag{Name: "label2", Usage: "second pixel scale reference label"},
			&cli.Float64Flag{Name: "known-distance", Usage: "distance between the reference labels in mm"},
			&cli.IntFlag{Name: "calibration-frames", Usage: "frames used for the pixel scale"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	logger.Debug("configuration resolved", "csv", cfg.CSVPath, "output_dir", cfg.OutputDir,
		"renderer", cfg.Renderer, "formats", cfg.Formats)

	r, err := figure.New(cfg, logger)
	if err != nil {
		return err
	}

	res, err := report.Run(cfg, r, logger)
	if err != nil {
		return err
	}

	if res.Scale != nil {
		fmt.Fprintln(c.App.Writer, res.Scale.ScaleLine())
	}
	return nil
}

// resolveConfig layers the config file over the defaults, then flags given
// on the command line over both.
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("csv") {
		cfg.CSVPath = c.String("csv")
	}
	if c.Args().Present() {
		if c.IsSet("csv") {
			return cfg, errors.New("csv path given both as --csv and as an argument")
		}
		cfg.CSVPath = c.Args().First()
	}
	if c.NArg() > 1 {
		return cfg, fmt.Errorf("expected one csv path, got %d arguments", c.NArg())
	}

	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("first-frame") {
		cfg.FirstFrame = c.Int("first-frame")
	}
	if c.IsSet("last-frame") {
		last := c.Int("last-frame")
		cfg.LastFrame = &last
	}
	if c.IsSet("x-min") {
		cfg.XRangeMin = c.Float64("x-min")
	}
	if c.IsSet("x-max") {
		cfg.XRangeMax = c.Float64("x-max")
	}
	if c.IsSet("y-min") {
		cfg.YRangeMin = c.Float64("y-min")
	}
	if c.IsSet("y-max") {
		cfg.YRangeMax = c.Float64("y-max")
	}
	if c.IsSet("dpi") {
		cfg.DPI = c.Int("dpi")
	}
	if c.IsSet("format") {
		cfg.Formats = c.StringSlice("format")
	}
	if c.IsSet("renderer") {
		cfg.Renderer = c.String("renderer")
	}
	if c.IsSet("run-log") {
		cfg.RunLog = c.Bool("run-log")
	}
	if c.IsSet("label1") {
		cfg.Label1 = c.String("label1")
	}
	if c.IsSet("label2") {
		cfg.Label2 = c.String("label2")
	}
	if c.IsSet("known-distance") {
		cfg.KnownDistanceMM = c.Float64("known-distance")
	}
	if c.IsSet("calibration-frames") {
		cfg.CalibrationFrameCount = c.Int("calibration-frames")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
