package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NearestIndex returns the cell whose reference coordinates are closest to
// the target, minimizing the absolute difference independently on each axis:
// latRef is one column's worth of latitudes (indexed by row), lonRef one
// row's worth of longitudes (indexed by column). This is an axis-aligned
// approximation, not geodesic distance; it is adequate near a single
// reference location where iso-angle lines are nearly parallel to
// parallels/meridians. Ties resolve to the lowest index. NaN references are
// never selected.
func NearestIndex(latRef, lonRef []float64, target Geo) (GridIndex, error) {
	if len(latRef) == 0 || len(lonRef) == 0 {
		return GridIndex{}, fmt.Errorf("nearest index: empty reference vectors")
	}
	row, ok := nearest1D(latRef, target.Lat)
	if !ok {
		return GridIndex{}, fmt.Errorf("nearest index: latitude reference has no defined values")
	}
	col, ok := nearest1D(lonRef, target.Lon)
	if !ok {
		return GridIndex{}, fmt.Errorf("nearest index: longitude reference has no defined values")
	}
	return GridIndex{Row: row, Col: col}, nil
}

// nearest1D is an absolute-difference argmin that skips NaN entries.
// floats.MinIdx returns the first minimum, which gives the lowest-index
// tie-break for free.
func nearest1D(ref []float64, target float64) (int, bool) {
	diff := make([]float64, len(ref))
	allNaN := true
	for i, v := range ref {
		if math.IsNaN(v) {
			diff[i] = math.Inf(1)
			continue
		}
		diff[i] = math.Abs(v - target)
		allNaN = false
	}
	if allNaN {
		return 0, false
	}
	return floats.MinIdx(diff), true
}

// LocateNearest finds the grid cell nearest the target coordinate with a
// two-pass refinement. Pass 1 searches against the grid's edge slices
// (latitudes down column 0, longitudes across row 0) for an approximate
// index; pass 2 re-derives the reference vectors through that index and
// searches again, which corrects for the slight skew between iso-angle lines
// and parallels/meridians. The refined index is kept only when it is at least
// as close to the target as the first guess, so refinement never makes the
// result worse. One refinement pass is the adopted tolerance; the grid should
// be gap-filled first.
func LocateNearest(g *GeoGrid, target Geo) (GridIndex, error) {
	first, err := NearestIndex(g.LatColumn(0), g.LonRow(0), target)
	if err != nil {
		return GridIndex{}, fmt.Errorf("locate nearest (first pass): %w", err)
	}

	refined, err := NearestIndex(g.LatColumn(first.Col), g.LonRow(first.Row), target)
	if err != nil {
		return GridIndex{}, fmt.Errorf("locate nearest (refinement): %w", err)
	}

	if axisError(g, refined, target) > axisError(g, first, target) {
		return first, nil
	}
	return refined, nil
}

// axisError is the per-axis absolute coordinate error summed, the same metric
// the per-axis search minimizes. NaN cells compare as infinitely far.
func axisError(g *GeoGrid, ix GridIndex, target Geo) float64 {
	c := g.At(ix)
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return math.Inf(1)
	}
	return math.Abs(c.Lat-target.Lat) + math.Abs(c.Lon-target.Lon)
}
