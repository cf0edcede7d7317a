package domain

import (
	"errors"
	"fmt"
	"math"
)

const degPerRad = 180.0 / math.Pi

// ErrNotVisible reports a geodetic coordinate on the far side of the Earth
// from the satellite, which has no fixed-grid scan angle.
var ErrNotVisible = errors.New("coordinate not visible from satellite")

// InvertFixedGrid converts a scan-angle grid to geodetic coordinates by
// intersecting each scan ray with the projection ellipsoid.
//
// Method: GOES-R Product Definition and Users' Guide §5.1.2.8, navigating
// fixed-grid coordinates to geodetic latitude/longitude. Per cell, a
// quadratic in the slant range r_s locates the ray/ellipsoid intersection;
// the satellite-frame point (s_x, s_y, s_z) then yields latitude through an
// arctangent scaled by the squared equatorial/polar radius ratio and
// longitude as an offset from the projection origin.
//
// Rays that miss the ellipsoid (negative discriminant) produce NaN in both
// planes; that is the expected outcome for off-Earth cells of a CONUS sector
// and never aborts the remaining cells.
func InvertFixedGrid(scan ScanGrid, p ProjectionParams) (*GeoGrid, error) {
	if err := scan.Validate(); err != nil {
		return nil, fmt.Errorf("invert fixed grid: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invert fixed grid: %w", err)
	}

	rows, cols := scan.Rows(), scan.Cols()
	g := NewGeoGrid(rows, cols)

	// H is the satellite's distance from the ellipsoid center.
	H := p.PerspectiveHeight + p.SemiMajorAxis
	lonOrigin := p.LonOriginDeg / degPerRad
	req2 := p.SemiMajorAxis * p.SemiMajorAxis
	rpol2 := p.SemiMinorAxis * p.SemiMinorAxis
	ratio := req2 / rpol2

	for r, y := range scan.Y {
		sinY, cosY := math.Sincos(y)
		for c, x := range scan.X {
			sinX, cosX := math.Sincos(x)

			a := sinX*sinX + cosX*cosX*(cosY*cosY+ratio*sinY*sinY)
			b := -2 * H * cosX * cosY
			cc := H*H - req2

			disc := b*b - 4*a*cc
			if disc < 0 {
				// Scan ray misses the Earth.
				continue
			}

			rs := (-b - math.Sqrt(disc)) / (2 * a)
			sx := rs * cosX * cosY
			sy := -rs * sinX
			sz := rs * cosX * sinY

			i := r*cols + c
			g.Lat[i] = math.Atan(ratio*sz/math.Hypot(H-sx, sy)) * degPerRad
			g.Lon[i] = (lonOrigin - math.Atan(sy/(H-sx))) * degPerRad
		}
	}
	return g, nil
}

// ProjectGeodetic is the forward transform: geodetic degrees to fixed-grid
// scan angles (x, y) in radians. It returns ErrNotVisible for coordinates
// the satellite cannot see. Used to build synthetic acquisitions and to
// round-trip-check the inversion.
func ProjectGeodetic(geo Geo, p ProjectionParams) (x, y float64, err error) {
	if err := p.Validate(); err != nil {
		return 0, 0, fmt.Errorf("project geodetic: %w", err)
	}
	if math.Abs(geo.Lat) > 90 || math.Abs(geo.Lon) > 180 {
		return 0, 0, fmt.Errorf("project geodetic: coordinate %+v out of range", geo)
	}

	H := p.PerspectiveHeight + p.SemiMajorAxis
	req2 := p.SemiMajorAxis * p.SemiMajorAxis
	rpol2 := p.SemiMinorAxis * p.SemiMinorAxis
	e2 := (req2 - rpol2) / req2

	latRad := geo.Lat / degPerRad
	dLon := (geo.Lon - p.LonOriginDeg) / degPerRad

	// Geocentric latitude and radius at the surface point.
	phiC := math.Atan(rpol2 / req2 * math.Tan(latRad))
	sinC, cosC := math.Sincos(phiC)
	rc := p.SemiMinorAxis / math.Sqrt(1-e2*cosC*cosC)

	sx := H - rc*cosC*math.Cos(dLon)
	sy := -rc * cosC * math.Sin(dLon)
	sz := rc * sinC

	// Visibility: the point must lie on the satellite-facing side.
	if H*(H-sx) < sy*sy+(req2/rpol2)*sz*sz {
		return 0, 0, fmt.Errorf("project geodetic %+v: %w", geo, ErrNotVisible)
	}

	y = math.Atan(sz / sx)
	x = math.Asin(-sy / math.Sqrt(sx*sx+sy*sy+sz*sz))
	return x, y, nil
}
