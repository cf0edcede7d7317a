package domain

import (
	"fmt"
	"math"
)

// FillGaps returns a copy of g with every undefined cell replaced by 1D
// linear interpolation down its column, in both the latitude and longitude
// planes. Interior NaN runs are interpolated between the nearest defined
// samples above and below; runs touching a column edge are extrapolated
// linearly from the two nearest defined samples on the defined side. A column
// with a single defined sample is filled with that constant.
//
// The input grid is not mutated. A column with no defined samples at all is a
// precondition violation and returns an error wrapping ErrUnfillableColumn
// rather than propagating NaN. The operation is idempotent: filling an
// already-complete grid changes nothing.
func FillGaps(g *GeoGrid) (*GeoGrid, error) {
	out := g.Clone()
	if err := fillColumns(out.Lat, out.Rows, out.Cols, "lat"); err != nil {
		return nil, err
	}
	if err := fillColumns(out.Lon, out.Rows, out.Cols, "lon"); err != nil {
		return nil, err
	}
	return out, nil
}

// fillColumns interpolates NaN runs down every column of a row-major plane.
func fillColumns(vals []float64, rows, cols int, plane string) error {
	defined := make([]int, 0, rows)
	for c := 0; c < cols; c++ {
		defined = defined[:0]
		for r := 0; r < rows; r++ {
			if !math.IsNaN(vals[r*cols+c]) {
				defined = append(defined, r)
			}
		}
		switch {
		case len(defined) == rows:
			continue
		case len(defined) == 0:
			return fmt.Errorf("fill gaps: %s column %d: %w", plane, c, ErrUnfillableColumn)
		}

		for r := 0; r < rows; r++ {
			if !math.IsNaN(vals[r*cols+c]) {
				continue
			}
			vals[r*cols+c] = interpAt(vals, cols, c, defined, r)
		}
	}
	return nil
}

// interpAt computes the linear fill value for row r of column c given the
// sorted defined row indices of that column.
func interpAt(vals []float64, cols, c int, defined []int, r int) float64 {
	at := func(row int) float64 { return vals[row*cols+c] }

	if len(defined) == 1 {
		return at(defined[0])
	}

	// lo is the last defined row before r, hi the first after.
	lo, hi := -1, -1
	for _, d := range defined {
		if d < r {
			lo = d
		} else {
			hi = d
			break
		}
	}

	switch {
	case lo == -1:
		// Leading edge: extrapolate from the first two defined samples.
		r0, r1 := defined[0], defined[1]
		return extrapolate(r0, at(r0), r1, at(r1), r)
	case hi == -1:
		// Trailing edge: extrapolate from the last two defined samples.
		r0, r1 := defined[len(defined)-2], defined[len(defined)-1]
		return extrapolate(r0, at(r0), r1, at(r1), r)
	default:
		t := float64(r-lo) / float64(hi-lo)
		return at(lo) + t*(at(hi)-at(lo))
	}
}

func extrapolate(x0 int, y0 float64, x1 int, y1 float64, x int) float64 {
	slope := (y1 - y0) / float64(x1-x0)
	return y0 + slope*float64(x-x0)
}
