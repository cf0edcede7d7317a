package domain

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for precondition failures in the numeric core.
var (
	// ErrShapeMismatch reports gridded inputs whose dimensions disagree.
	ErrShapeMismatch = errors.New("grid shape mismatch")
	// ErrOutOfBounds reports a grid index outside the grid dimensions.
	ErrOutOfBounds = errors.New("grid index out of bounds")
	// ErrUnfillableColumn reports a coordinate-grid column with no defined
	// values, which gap filling cannot repair.
	ErrUnfillableColumn = errors.New("column has no defined values")
)

// Geo is a WGS-84/GRS-80 geodetic coordinate pair in degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridIndex addresses one cell of a row-major grid.
type GridIndex struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ScanGrid holds the per-axis fixed-grid scan-angle vectors of one product,
// in radians. Y pairs with the row axis, X with the column axis.
type ScanGrid struct {
	X []float64
	Y []float64
}

// Rows returns the row count implied by the y vector.
func (s ScanGrid) Rows() int { return len(s.Y) }

// Cols returns the column count implied by the x vector.
func (s ScanGrid) Cols() int { return len(s.X) }

// Validate checks that both angle vectors are non-empty and free of
// non-finite values.
func (s ScanGrid) Validate() error {
	if len(s.X) == 0 || len(s.Y) == 0 {
		return errors.New("scan grid requires non-empty x and y angle vectors")
	}
	for i, v := range s.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scan grid x[%d] is not finite", i)
		}
	}
	for i, v := range s.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scan grid y[%d] is not finite", i)
		}
	}
	return nil
}

// ProjectionParams is the fixed-grid projection parameter bundle carried by
// an ABI product's goes_imager_projection variable. Heights and axes are in
// meters; the projection origin longitude is in degrees.
type ProjectionParams struct {
	LonOriginDeg      float64 `json:"longitude_of_projection_origin"`
	PerspectiveHeight float64 `json:"perspective_point_height"`
	SemiMajorAxis     float64 `json:"semi_major_axis"`
	SemiMinorAxis     float64 `json:"semi_minor_axis"`
}

// Validate rejects parameter bundles that cannot describe a geostationary
// view of an ellipsoid.
func (p ProjectionParams) Validate() error {
	if p.SemiMajorAxis <= 0 || p.SemiMinorAxis <= 0 {
		return errors.New("projection ellipsoid axes must be positive")
	}
	if p.SemiMinorAxis > p.SemiMajorAxis {
		return errors.New("projection semi-minor axis exceeds semi-major axis")
	}
	if p.PerspectiveHeight <= 0 {
		return errors.New("projection perspective point height must be positive")
	}
	if p.LonOriginDeg < -180 || p.LonOriginDeg > 180 {
		return fmt.Errorf("projection origin longitude %v out of [-180,180]", p.LonOriginDeg)
	}
	return nil
}

// GeoGrid holds parallel latitude and longitude planes for every scan-angle
// cell, row-major, in degrees. Cells whose scan ray misses the Earth are NaN
// until gap-filled.
type GeoGrid struct {
	Rows int
	Cols int
	Lat  []float64
	Lon  []float64
}

// NewGeoGrid allocates a rows×cols grid with every cell undefined.
func NewGeoGrid(rows, cols int) *GeoGrid {
	n := rows * cols
	g := &GeoGrid{
		Rows: rows,
		Cols: cols,
		Lat:  make([]float64, n),
		Lon:  make([]float64, n),
	}
	nan := math.NaN()
	for i := range g.Lat {
		g.Lat[i] = nan
		g.Lon[i] = nan
	}
	return g
}

// Contains reports whether ix addresses a cell inside the grid.
func (g *GeoGrid) Contains(ix GridIndex) bool {
	return ix.Row >= 0 && ix.Row < g.Rows && ix.Col >= 0 && ix.Col < g.Cols
}

// At returns the coordinate at ix. Callers must bounds-check first.
func (g *GeoGrid) At(ix GridIndex) Geo {
	i := ix.Row*g.Cols + ix.Col
	return Geo{Lat: g.Lat[i], Lon: g.Lon[i]}
}

// LatColumn copies the latitude values down one column.
func (g *GeoGrid) LatColumn(col int) []float64 {
	out := make([]float64, g.Rows)
	for r := 0; r < g.Rows; r++ {
		out[r] = g.Lat[r*g.Cols+col]
	}
	return out
}

// LonRow copies the longitude values across one row.
func (g *GeoGrid) LonRow(row int) []float64 {
	out := make([]float64, g.Cols)
	copy(out, g.Lon[row*g.Cols:(row+1)*g.Cols])
	return out
}

// UndefinedCells counts cells where either coordinate plane is NaN.
func (g *GeoGrid) UndefinedCells() int {
	n := 0
	for i := range g.Lat {
		if math.IsNaN(g.Lat[i]) || math.IsNaN(g.Lon[i]) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *GeoGrid) Clone() *GeoGrid {
	out := &GeoGrid{
		Rows: g.Rows,
		Cols: g.Cols,
		Lat:  make([]float64, len(g.Lat)),
		Lon:  make([]float64, len(g.Lon)),
	}
	copy(out.Lat, g.Lat)
	copy(out.Lon, g.Lon)
	return out
}

// Orientation records which way the grid's row and column axes point on the
// Earth, derived from a computed coordinate grid rather than assumed.
// NorthRowStep is the row-index delta that moves one cell northward (+1 or
// -1); EastColStep is the column-index delta that moves one cell eastward.
type Orientation struct {
	NorthRowStep int
	EastColStep  int
}

// DetectOrientation derives the compass orientation of a coordinate grid by
// comparing latitudes down the middle column and longitudes across the middle
// row. The grid must be gap-filled (or at least defined along those slices)
// and at least 2×2.
func DetectOrientation(g *GeoGrid) (Orientation, error) {
	if g.Rows < 2 || g.Cols < 2 {
		return Orientation{}, fmt.Errorf("orientation requires at least a 2x2 grid, got %dx%d", g.Rows, g.Cols)
	}

	col := g.Cols / 2
	latTop := g.Lat[0*g.Cols+col]
	latBottom := g.Lat[(g.Rows-1)*g.Cols+col]
	if math.IsNaN(latTop) || math.IsNaN(latBottom) || latTop == latBottom {
		return Orientation{}, fmt.Errorf("cannot detect row orientation from column %d", col)
	}

	row := g.Rows / 2
	lonLeft := g.Lon[row*g.Cols+0]
	lonRight := g.Lon[row*g.Cols+g.Cols-1]
	if math.IsNaN(lonLeft) || math.IsNaN(lonRight) || lonLeft == lonRight {
		return Orientation{}, fmt.Errorf("cannot detect column orientation from row %d", row)
	}

	o := Orientation{NorthRowStep: 1, EastColStep: 1}
	if latTop > latBottom {
		// Row 0 is the northern edge; moving north means decreasing row.
		o.NorthRowStep = -1
	}
	if lonLeft > lonRight {
		o.EastColStep = -1
	}
	return o, nil
}
