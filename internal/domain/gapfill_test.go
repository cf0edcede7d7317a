package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridFromPlanes builds a GeoGrid from explicit row-major planes.
func gridFromPlanes(t *testing.T, rows, cols int, lat, lon []float64) *GeoGrid {
	t.Helper()
	require.Len(t, lat, rows*cols)
	require.Len(t, lon, rows*cols)
	return &GeoGrid{Rows: rows, Cols: cols, Lat: lat, Lon: lon}
}

func TestFillGapsInteriorRun(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 5, 1,
		[]float64{40, nan, nan, 10, 0},
		[]float64{-100, -100, -100, -100, -100},
	)

	filled, err := FillGaps(g)
	require.NoError(t, err)

	// Linear between 40 at row 0 and 10 at row 3.
	assert.InDelta(t, 30.0, filled.Lat[1], 1e-12)
	assert.InDelta(t, 20.0, filled.Lat[2], 1e-12)
	assert.Equal(t, 0, filled.UndefinedCells())
}

func TestFillGapsEdgeExtrapolation(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 5, 1,
		[]float64{nan, 30, 20, nan, nan},
		[]float64{-100, -100, -100, -100, -100},
	)

	filled, err := FillGaps(g)
	require.NoError(t, err)

	// Column slope is -10 per row from the defined pair (30, 20).
	assert.InDelta(t, 40.0, filled.Lat[0], 1e-12)
	assert.InDelta(t, 10.0, filled.Lat[3], 1e-12)
	assert.InDelta(t, 0.0, filled.Lat[4], 1e-12)
}

func TestFillGapsSingleDefinedSample(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 3, 1,
		[]float64{nan, 25, nan},
		[]float64{-90, -90, -90},
	)

	filled, err := FillGaps(g)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 25, 25}, filled.Lat)
}

func TestFillGapsDoesNotMutateInput(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 3, 1,
		[]float64{40, nan, 20},
		[]float64{-100, nan, -98},
	)

	_, err := FillGaps(g)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g.Lat[1]), "input latitude plane was mutated")
	assert.True(t, math.IsNaN(g.Lon[1]), "input longitude plane was mutated")
}

func TestFillGapsIdempotent(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 4, 2,
		[]float64{40, 41, nan, nan, 20, 21, 10, nan},
		[]float64{-100, -99, -100, nan, nan, -99, -100, -99},
	)

	once, err := FillGaps(g)
	require.NoError(t, err)
	twice, err := FillGaps(once)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(once, twice))
	assert.Equal(t, 0, once.UndefinedCells())
}

func TestFillGapsUnfillableColumn(t *testing.T) {
	nan := math.NaN()
	g := gridFromPlanes(t, 3, 2,
		[]float64{40, nan, 30, nan, 20, nan},
		[]float64{-100, -99, -100, -99, -100, -99},
	)

	_, err := FillGaps(g)
	require.ErrorIs(t, err, ErrUnfillableColumn)
	assert.Contains(t, err.Error(), "column 1")
}

func TestFillGapsCompleteGridUnchanged(t *testing.T) {
	g := gridFromPlanes(t, 2, 2,
		[]float64{40, 40, 39, 39},
		[]float64{-100, -99, -100, -99},
	)

	filled, err := FillGaps(g)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(g, filled))
}
