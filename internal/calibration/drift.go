package calibration

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
)

// Drift is a straight-line fit of pixel distance against frame position:
// distance ≈ Offset + Slope*i.
type Drift struct {
	Slope  float64 // px per frame
	Offset float64 // px at the first calibration frame
}

// FitDrift fits a line to the calibration distances. A steady camera gives a
// slope near zero; a large slope means the subject moved toward or away from
// the camera during the window. NaN samples are dropped before fitting.
func FitDrift(distances []float64) (Drift, error) {
	var xs, ys []float64
	for i, d := range distances {
		if math.IsNaN(d) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, d)
	}
	switch len(ys) {
	case 0:
		return Drift{}, errors.New("no tracked calibration frames")
	case 1:
		return Drift{Offset: ys[0]}, nil
	}

	resFunc := func(dst, params []float64) {
		offset, slope := params[0], params[1]
		for i := range xs {
			dst[i] = ys[i] - (offset + slope*xs[i])
		}
	}

	nj := &lm.NumJac{Func: resFunc}

	problem := lm.LMProblem{
		Dim:        2,
		Size:       len(xs),
		Func:       resFunc,
		Jac:        nj.Jac,
		InitParams: []float64{ys[0], 0},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	result, err := lm.LM(problem, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err != nil {
		return Drift{}, fmt.Errorf("drift fit: %w", err)
	}

	return Drift{Offset: result.X[0], Slope: result.X[1]}, nil
}
