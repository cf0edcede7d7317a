package domain

import (
	"fmt"
	"time"
)

// Field is a time-stacked gridded physical quantity (brightness temperature,
// precipitable water, ...) co-registered cell-for-cell with a GeoGrid. Each
// frame is one acquisition, row-major Rows×Cols; Times and Frames are
// parallel and ordered by acquisition time.
type Field struct {
	Name   string
	Unit   string
	Rows   int
	Cols   int
	Times  []time.Time
	Frames [][]float64
}

// NewField creates an empty field with the given spatial shape.
func NewField(name, unit string, rows, cols int) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("field %q: invalid shape %dx%d", name, rows, cols)
	}
	return &Field{Name: name, Unit: unit, Rows: rows, Cols: cols}, nil
}

// AppendFrame adds one acquisition's samples. The frame must match the
// field's spatial shape exactly; there is no truncation or broadcasting.
func (f *Field) AppendFrame(t time.Time, vals []float64) error {
	if len(vals) != f.Rows*f.Cols {
		return fmt.Errorf("field %q: frame has %d cells, want %dx%d=%d: %w",
			f.Name, len(vals), f.Rows, f.Cols, f.Rows*f.Cols, ErrShapeMismatch)
	}
	f.Times = append(f.Times, t)
	f.Frames = append(f.Frames, vals)
	return nil
}

// Len returns the number of timestamps.
func (f *Field) Len() int { return len(f.Times) }

// At returns the sample at timestamp index t and cell ix. Callers must
// bounds-check first.
func (f *Field) At(t int, ix GridIndex) float64 {
	return f.Frames[t][ix.Row*f.Cols+ix.Col]
}
