// Package tracking loads DeepLabCut keypoint tables and slices them per body part.
package tracking

import (
	"errors"
	"fmt"
)

// Placeholder is the level-0 header name DLC uses for the index column group.
// It names the header level itself and is never a body part.
const Placeholder = "bodyparts"

// Field names of the second header row.
const (
	FieldX          = "x"
	FieldY          = "y"
	FieldLikelihood = "likelihood"
)

var (
	// ErrDataLoad is matched by every loader failure.
	ErrDataLoad = errors.New("data load error")
	// ErrNoLabels is returned when a table holds no body parts.
	ErrNoLabels = errors.New("no labels found")
	// ErrUnknownLabel is returned by Extract for a label the table does not carry.
	ErrUnknownLabel = errors.New("unknown label")
)

// LoadError describes where reading a tracking file went wrong.
// Line is 1-based and zero when the failure is not tied to a line.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataLoad) match any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrDataLoad }

// part holds one body part's columns.
type part struct {
	x, y, likelihood []float64
}

// Table is the per-frame keypoint data of one tracking file. Row i is frame i.
// A Table is not modified after it is loaded.
type Table struct {
	labels []string
	parts  map[string]*part
	frames int
}

// NewTable builds a Table from per-label columns. Labels keep the given order;
// every column must have the same length.
func NewTable(labels []string, x, y, likelihood map[string][]float64) (*Table, error) {
	t := &Table{parts: make(map[string]*part, len(labels)), frames: -1}
	for _, l := range labels {
		if _, dup := t.parts[l]; dup {
			return nil, fmt.Errorf("duplicate label %q", l)
		}
		p := &part{x: x[l], y: y[l], likelihood: likelihood[l]}
		if len(p.x) != len(p.y) || len(p.x) != len(p.likelihood) {
			return nil, fmt.Errorf("label %q: column lengths differ (x=%d y=%d likelihood=%d)",
				l, len(p.x), len(p.y), len(p.likelihood))
		}
		if t.frames >= 0 && len(p.x) != t.frames {
			return nil, fmt.Errorf("label %q has %d frames, want %d", l, len(p.x), t.frames)
		}
		t.frames = len(p.x)
		t.parts[l] = p
		t.labels = append(t.labels, l)
	}
	if t.frames < 0 {
		t.frames = 0
	}
	return t, nil
}

// Frames returns the number of rows in the table.
func (t *Table) Frames() int { return t.frames }

// Has reports whether label is a body part of the table.
func (t *Table) Has(label string) bool {
	_, ok := t.parts[label]
	return ok
}

// Labels returns the body parts in first-seen column order, each once, with
// the placeholder group removed.
func (t *Table) Labels() ([]string, error) {
	seen := make(map[string]bool, len(t.labels))
	out := make([]string, 0, len(t.labels))
	for _, l := range t.labels {
		if l == Placeholder || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, ErrNoLabels
	}
	return out, nil
}
