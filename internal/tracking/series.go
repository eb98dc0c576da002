package tracking

import "fmt"

// FrameRange is an inclusive frame window. A nil Last runs to the end of the table.
type FrameRange struct {
	First int
	Last  *int
}

// Series is one body part restricted to a frame window. Frames holds the
// original frame index of each sample.
type Series struct {
	Label      string
	Frames     []int
	X          []float64
	Y          []float64
	Likelihood []float64
}

// Len returns the number of samples in the series.
func (s *Series) Len() int { return len(s.Frames) }

// Extract copies one label out of the table. Bounds outside the table are
// clamped; a window that selects nothing yields an empty series.
func (t *Table) Extract(label string, r FrameRange) (*Series, error) {
	p, ok := t.parts[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	lo, hi := r.clamp(t.frames)
	s := &Series{Label: label}
	if hi < lo {
		return s, nil
	}

	n := hi - lo + 1
	s.Frames = make([]int, n)
	for i := range s.Frames {
		s.Frames[i] = lo + i
	}
	s.X = append(make([]float64, 0, n), p.x[lo:hi+1]...)
	s.Y = append(make([]float64, 0, n), p.y[lo:hi+1]...)
	s.Likelihood = append(make([]float64, 0, n), p.likelihood[lo:hi+1]...)
	return s, nil
}

// clamp returns the inclusive index bounds [lo, hi] inside a table of n
// frames. hi < lo means the window is empty.
func (r FrameRange) clamp(n int) (lo, hi int) {
	lo = r.First
	if lo < 0 {
		lo = 0
	}
	hi = n - 1
	if r.Last != nil && *r.Last < hi {
		hi = *r.Last
	}
	return lo, hi
}

// Displacement is the step from one sample to the next.
type Displacement struct {
	DX, DY float64
}

// Displacements returns one step per sample: element i points from sample i
// to sample i+1, and the last element is zero since the final frame has no
// successor. An empty series yields an empty slice.
func Displacements(s *Series) []Displacement {
	n := s.Len()
	d := make([]Displacement, n)
	for i := 0; i+1 < n; i++ {
		d[i] = Displacement{DX: s.X[i+1] - s.X[i], DY: s.Y[i+1] - s.Y[i]}
	}
	return d
}
