package pipeline

import (
	"fmt"
	"time"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
)

// geolocation is the per-window scene geometry, computed once from the first
// acquisition and reused for every frame: the gap-filled coordinate grid, the
// reference cell nearest the target, and its eight compass neighbors.
type geolocation struct {
	grid   *domain.GeoGrid
	center domain.GridIndex
	ring   []domain.Neighbor
}

// buildGeolocation inverts the scan geometry to lat/lon, fills limb gaps,
// and locates the target and its neighbor ring.
func (p *Pipeline) buildGeolocation(acq domain.Acquisition) (*geolocation, error) {
	start := time.Now()
	defer func() {
		p.metrics.GeolocationDuration.Observe(time.Since(start).Seconds())
	}()

	grid, err := domain.InvertFixedGrid(acq.Scan, acq.Projection)
	if err != nil {
		return nil, fmt.Errorf("invert fixed grid: %w", err)
	}

	offEarth := grid.UndefinedCells()
	p.metrics.OffEarthCells.Set(float64(offEarth))

	filled, err := domain.FillGaps(grid)
	if err != nil {
		return nil, fmt.Errorf("fill gaps: %w", err)
	}
	p.metrics.GapCellsFilled.Set(float64(offEarth - filled.UndefinedCells()))

	orient, err := domain.DetectOrientation(filled)
	if err != nil {
		return nil, fmt.Errorf("detect orientation: %w", err)
	}

	center, err := domain.LocateNearest(filled, p.job.Target)
	if err != nil {
		return nil, fmt.Errorf("locate target: %w", err)
	}

	ring, err := domain.NeighborRing(filled.Rows, filled.Cols, center, p.job.NeighborStep, orient)
	if err != nil {
		return nil, fmt.Errorf("neighbor ring: %w", err)
	}

	p.logger.Info("scene geolocated",
		"rows", filled.Rows,
		"cols", filled.Cols,
		"off_earth_cells", offEarth,
		"center_row", center.Row,
		"center_col", center.Col,
		"center_lat", filled.At(center).Lat,
		"center_lon", filled.At(center).Lon,
	)

	return &geolocation{grid: filled, center: center, ring: ring}, nil
}
