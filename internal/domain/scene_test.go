package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticScanGrid forward-projects a small lat/lon lattice centered on the
// target so that cell (rows/2, cols/2) maps back to the target exactly.
func syntheticScanGrid(t *testing.T, target Geo, rows, cols int, spacingDeg float64) ScanGrid {
	t.Helper()
	scan := ScanGrid{X: make([]float64, cols), Y: make([]float64, rows)}

	for c := 0; c < cols; c++ {
		lon := target.Lon + float64(c-cols/2)*spacingDeg
		x, _, err := ProjectGeodetic(Geo{Lat: target.Lat, Lon: lon}, goesEast)
		require.NoError(t, err)
		scan.X[c] = x
	}
	for r := 0; r < rows; r++ {
		// Row 0 is the northern edge, matching ABI ordering.
		lat := target.Lat + float64(rows/2-r)*spacingDeg
		_, y, err := ProjectGeodetic(Geo{Lat: lat, Lon: target.Lon}, goesEast)
		require.NoError(t, err)
		scan.Y[r] = y
	}
	return scan
}

// TestSyntheticSceneCenterAndRing runs the full numeric chain on a 5x5
// synthetic scene: invert, gap-fill, locate, ring, extract.
func TestSyntheticSceneCenterAndRing(t *testing.T) {
	target := Geo{Lat: 29.7604, Lon: -95.3698}
	scan := syntheticScanGrid(t, target, 5, 5, 0.5)

	grid, err := InvertFixedGrid(scan, goesEast)
	require.NoError(t, err)

	filled, err := FillGaps(grid)
	require.NoError(t, err)
	assert.Equal(t, 0, filled.UndefinedCells())

	center, err := LocateNearest(filled, target)
	require.NoError(t, err)
	assert.Equal(t, GridIndex{Row: 2, Col: 2}, center)

	got := filled.At(center)
	assert.InDelta(t, target.Lat, got.Lat, 1e-6)
	assert.InDelta(t, target.Lon, got.Lon, 1e-6)

	o, err := DetectOrientation(filled)
	require.NoError(t, err)
	assert.Equal(t, Orientation{NorthRowStep: -1, EastColStep: 1}, o)

	ring, err := NeighborRing(filled.Rows, filled.Cols, center, 1, o)
	require.NoError(t, err)
	require.Len(t, ring, 8)
	for _, n := range ring {
		assert.True(t, filled.Contains(n.Index), "neighbor %s out of bounds", n.Direction)
		cheb := max(abs(n.Index.Row-2), abs(n.Index.Col-2))
		assert.Equal(t, 1, cheb, "neighbor %s not on the unit ring", n.Direction)
	}

	// Three acquisitions of a ramp field; every channel is a pure gather.
	f, err := NewField("TPW", "mm", 5, 5)
	require.NoError(t, err)
	base := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		vals := make([]float64, 25)
		for r := 0; r < 5; r++ {
			for c := 0; c < 5; c++ {
				vals[r*5+c] = float64(r*10 + c)
			}
		}
		require.NoError(t, f.AppendFrame(base.Add(time.Duration(i)*5*time.Minute), vals))
	}

	series, err := ExtractSeries(f, filled, ring)
	require.NoError(t, err)
	require.Len(t, series, 8)
	for _, s := range series {
		assert.Len(t, s.Values, 3)
	}
	// North of center on an ABI-oriented grid is row 1.
	assert.Equal(t, "N", series[0].Direction)
	assert.Equal(t, []float64{12, 12, 12}, series[0].Values)
}
