package tracking

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads a DLC tracking CSV from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses a DLC tracking CSV. name is only used in error messages.
//
// The first line (scorer metadata) is skipped. The next two lines are the
// label and field header rows. The first column, the frame index under the
// placeholder group, is dropped: row position is the frame number.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	fail := func(line int, err error) (*Table, error) {
		return nil, &LoadError{Path: name, Line: line, Err: err}
	}

	// Skip first row (metadata)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return fail(0, errors.New("file is empty"))
		}
		return fail(1, err)
	}

	groups, err := cr.Read()
	if err != nil {
		return fail(2, headerErr(err, "label"))
	}
	fields, err := cr.Read()
	if err != nil {
		return fail(3, headerErr(err, "field"))
	}
	if len(groups) != len(fields) {
		return fail(3, fmt.Errorf("header rows differ in width (%d vs %d)", len(groups), len(fields)))
	}
	if len(groups) < 2 {
		return fail(2, errors.New("no data columns"))
	}

	cols, labels, err := mapColumns(groups[1:], fields[1:])
	if err != nil {
		return fail(3, err)
	}

	data := make([][]float64, len(cols))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already carries the line
			return fail(0, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(groups) {
			return fail(line, fmt.Errorf("row has %d columns, header has %d", len(rec), len(groups)))
		}
		for i, cell := range rec[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return fail(line, fmt.Errorf("column %d (%s/%s): %w", i+2, cols[i].label, cols[i].field, err))
			}
			data[i] = append(data[i], v)
		}
	}

	x := make(map[string][]float64, len(labels))
	y := make(map[string][]float64, len(labels))
	lk := make(map[string][]float64, len(labels))
	for i, c := range cols {
		switch c.field {
		case FieldX:
			x[c.label] = data[i]
		case FieldY:
			y[c.label] = data[i]
		case FieldLikelihood:
			lk[c.label] = data[i]
		}
	}
	t, err := NewTable(labels, x, y, lk)
	if err != nil {
		return fail(0, err)
	}
	return t, nil
}

type column struct {
	label string
	field string
}

// mapColumns pairs the two header rows and checks that every label carries
// exactly x, y and likelihood.
func mapColumns(groups, fields []string) ([]column, []string, error) {
	cols := make([]column, len(groups))
	seen := make(map[string]map[string]bool)
	var labels []string

	for i := range groups {
		label := strings.TrimSpace(groups[i])
		field := strings.TrimSpace(fields[i])
		if label == "" {
			return nil, nil, fmt.Errorf("column %d: empty label", i+2)
		}
		switch field {
		case FieldX, FieldY, FieldLikelihood:
		default:
			return nil, nil, fmt.Errorf("column %d: unexpected field %q for label %q", i+2, field, label)
		}
		if seen[label] == nil {
			seen[label] = make(map[string]bool, 3)
			labels = append(labels, label)
		}
		if seen[label][field] {
			return nil, nil, fmt.Errorf("column %d: duplicate field %q for label %q", i+2, field, label)
		}
		seen[label][field] = true
		cols[i] = column{label: label, field: field}
	}

	for _, l := range labels {
		if len(seen[l]) != 3 {
			return nil, nil, fmt.Errorf("label %q: want fields x, y, likelihood", l)
		}
	}
	return cols, labels, nil
}

// parseCell reads one numeric cell. Empty cells are untracked frames and load as NaN.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func headerErr(err error, row string) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("missing %s header row", row)
	}
	return err
}
