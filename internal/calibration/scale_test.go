package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PluPludevil/DLC-Plot/internal/tracking"
)

func series(label string, x, y []float64) *tracking.Series {
	s := &tracking.Series{Label: label, X: x, Y: y}
	for i := range x {
		s.Frames = append(s.Frames, i)
		s.Likelihood = append(s.Likelihood, 1)
	}
	return s
}

func TestScaleFactor(t *testing.T) {
	a := series("wrist", []float64{0, 3, 6}, []float64{0, 4, 8})
	b := series("elbow", []float64{0, 0, 0}, []float64{0, 0, 0})

	d, err := Distances(a, b, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, d)

	got, err := ScaleFactor(a, b, 3, 350)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, got, 1e-12)
}

func TestScaleFactor_UsesLeadingFramesOnly(t *testing.T) {
	a := series("a", []float64{0, 3, 6, 600}, []float64{0, 4, 8, 800})
	b := series("b", []float64{0, 0, 0, 0}, []float64{0, 0, 0, 0})

	got, err := ScaleFactor(a, b, 3, 350)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, got, 1e-12)
}

func TestScaleFactor_IdenticalSeries(t *testing.T) {
	a := series("a", []float64{1, 2, 3}, []float64{4, 5, 6})
	b := series("b", []float64{1, 2, 3}, []float64{4, 5, 6})

	got, err := ScaleFactor(a, b, 3, 350)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Zero(t, got)
	assert.False(t, math.IsInf(got, 0))
}

func TestScaleFactor_UntrackedFrames(t *testing.T) {
	nan := math.NaN()
	a := series("a", []float64{nan, 6}, []float64{nan, 8})
	b := series("b", []float64{0, 0}, []float64{0, 0})

	got, err := ScaleFactor(a, b, 2, 100)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-12)

	allNaN := series("a", []float64{nan, nan}, []float64{nan, nan})
	_, err = ScaleFactor(allNaN, b, 2, 100)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestDistances_FrameCount(t *testing.T) {
	a := series("a", []float64{0, 1}, []float64{0, 1})
	b := series("b", []float64{0, 1, 2}, []float64{0, 1, 2})

	for _, n := range []int{0, -1, 3} {
		_, err := Distances(a, b, n)
		assert.ErrorIs(t, err, ErrCalibrationFrames, "frames=%d", n)
	}

	_, err := Distances(a, b, 2)
	assert.NoError(t, err)
}
