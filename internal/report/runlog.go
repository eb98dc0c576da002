package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/PluPludevil/DLC-Plot/internal/config"
)

// RunLogName is the file written next to the figures.
const RunLogName = "log.txt"

// writeRunLog records the inputs and per-label results of a run in
// <output_dir>/log.txt and returns its path.
func writeRunLog(cfg config.Config, tableFrames int, res *Result) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(cfg.OutputDir, RunLogName)
	txt, err := os.Create(path)
	if err != nil {
		return path, err
	}

	w := bufio.NewWriter(txt)
	for _, line := range runLogLines(cfg, tableFrames, res, time.Now()) {
		if _, err := w.WriteString(line); err != nil {
			txt.Close()
			return path, err
		}
	}
	if err := w.Flush(); err != nil {
		txt.Close()
		return path, err
	}
	return path, txt.Close()
}

func runLogLines(cfg config.Config, tableFrames int, res *Result, now time.Time) []string {
	var logFile []string

	last := "end"
	if cfg.LastFrame != nil {
		last = fmt.Sprintf("%d", *cfg.LastFrame)
	}

	logFile = append(logFile, fmt.Sprintf("Run: %s\n", now.Format("2006-Jan-02 15:04:05")))
	logFile = append(logFile, fmt.Sprintf("Input: %s\n", cfg.CSVPath))
	logFile = append(logFile, fmt.Sprintf("Frames in file: %d\n", tableFrames))
	logFile = append(logFile, fmt.Sprintf("Frame window: %d to %s\n", cfg.FirstFrame, last))
	logFile = append(logFile, fmt.Sprintf("Trajectory x range: %v to %v\n", cfg.XRangeMin, cfg.XRangeMax))
	logFile = append(logFile, fmt.Sprintf("Trajectory y range: %v to %v\n", cfg.YRangeMin, cfg.YRangeMax))
	logFile = append(logFile, fmt.Sprintf("DPI: %d\n", cfg.DPI))

	for _, fig := range res.Figures {
		logFile = append(logFile, fmt.Sprintf("\nLabel %s\n", fig.Label))
		logFile = append(logFile, fmt.Sprintf("\tFrames: %d\n", fig.Frames))
		if math.IsNaN(fig.MeanLikelihood) {
			logFile = append(logFile, "\tMean likelihood: untracked\n")
		} else {
			logFile = append(logFile, fmt.Sprintf("\tMean likelihood: %.3f\n", fig.MeanLikelihood))
			logFile = append(logFile, fmt.Sprintf("\tBelow %.2f: %.1f%%\n", LowLikelihood, 100*fig.LowFraction))
		}
		logFile = append(logFile, fmt.Sprintf("\tFigure: %s\n", fig.Path))
	}

	if sc := res.Scale; sc != nil {
		logFile = append(logFile, "\nPixel scale\n")
		logFile = append(logFile, fmt.Sprintf("\tLabels: %s, %s\n", sc.Label1, sc.Label2))
		logFile = append(logFile, fmt.Sprintf("\tFrames: %d\n", sc.Frames))
		logFile = append(logFile, fmt.Sprintf("\tKnown distance: %v mm\n", sc.KnownMM))
		logFile = append(logFile, fmt.Sprintf("\tScale: %v mm/px\n", sc.MMPerPixel))
		if sc.Drift != nil {
			logFile = append(logFile, fmt.Sprintf("\tDrift: %.4f px/frame\n", sc.Drift.Slope))
		}
	}

	return logFile
}
