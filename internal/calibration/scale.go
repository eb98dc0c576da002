// Package calibration converts pixel distances to millimeters using two
// reference labels a known distance apart.
package calibration

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

var (
	// ErrDivisionByZero is returned when the reference labels never separate.
	ErrDivisionByZero = errors.New("division by zero: reference labels coincide in every calibration frame")
	// ErrCalibrationFrames is returned when the frame count does not fit the series.
	ErrCalibrationFrames = errors.New("calibration frame count out of range")
)

// Distances returns the per-frame pixel distance between a and b over the
// first frames samples.
func Distances(a, b *tracking.Series, frames int) ([]float64, error) {
	if frames < 1 || frames > a.Len() || frames > b.Len() {
		return nil, fmt.Errorf("%w: %d frames requested, %q has %d and %q has %d",
			ErrCalibrationFrames, frames, a.Label, a.Len(), b.Label, b.Len())
	}

	d := make([]float64, frames)
	for i := range d {
		d[i] = math.Hypot(b.X[i]-a.X[i], b.Y[i]-a.Y[i])
	}
	return d, nil
}

// ScaleFactor returns millimeters per pixel: knownMM divided by the largest
// pixel distance between a and b over the first frames samples.
// Frames where either label is untracked (NaN) are ignored.
func ScaleFactor(a, b *tracking.Series, frames int, knownMM float64) (float64, error) {
	d, err := Distances(a, b, frames)
	if err != nil {
		return 0, err
	}

	tracked := d[:0:0]
	for _, v := range d {
		if !math.IsNaN(v) {
			tracked = append(tracked, v)
		}
	}
	if len(tracked) == 0 {
		return 0, ErrDivisionByZero
	}

	maxPx := floats.Max(tracked)
	if maxPx == 0 {
		return 0, ErrDivisionByZero
	}
	return knownMM / maxPx, nil
}
