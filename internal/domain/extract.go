package domain

import (
	"fmt"
)

// PointSeries is one output channel: the samples of a field at a fixed grid
// cell across all timestamps, tagged with the cell's compass direction
// relative to the center and its gap-filled coordinate.
type PointSeries struct {
	Direction string    `json:"direction"`
	Index     GridIndex `json:"index"`
	Coord     Geo       `json:"coord"`
	Values    []float64 `json:"values"`
}

// ExtractSeries gathers one time series per neighbor from the field. It is a
// pure gather: no interpolation in time or space, undefined samples propagate
// unchanged, and every series shares the field's timestamp ordering. The
// field must match the coordinate grid's spatial shape and every neighbor
// must be in bounds; either every series is produced or none is.
func ExtractSeries(f *Field, g *GeoGrid, neighbors []Neighbor) ([]PointSeries, error) {
	if f.Rows != g.Rows || f.Cols != g.Cols {
		return nil, fmt.Errorf("extract %q: field is %dx%d but coordinate grid is %dx%d: %w",
			f.Name, f.Rows, f.Cols, g.Rows, g.Cols, ErrShapeMismatch)
	}
	for _, n := range neighbors {
		if !g.Contains(n.Index) {
			return nil, fmt.Errorf("extract %q: %s neighbor %+v outside %dx%d grid: %w",
				f.Name, n.Direction, n.Index, g.Rows, g.Cols, ErrOutOfBounds)
		}
	}

	series := make([]PointSeries, len(neighbors))
	for i, n := range neighbors {
		vals := make([]float64, f.Len())
		for t := range f.Times {
			vals[t] = f.At(t, n.Index)
		}
		series[i] = PointSeries{
			Direction: n.Direction,
			Index:     n.Index,
			Coord:     g.At(n.Index),
			Values:    vals,
		}
	}
	return series, nil
}
