// Package domain implements the numeric core of the GOES point time-series
// pipeline: fixed-grid geolocation, gap filling, nearest-point lookup,
// compass-neighbor selection, and per-channel series extraction.
//
// # Fixed-Grid Geometry
//
// GOES ABI products address pixels by satellite scan angle rather than by
// latitude/longitude: an east-west angle x and a north-south angle y, both in
// radians from the sub-satellite point. The product carries one 1D coordinate
// vector per axis plus a projection parameter bundle (longitude of projection
// origin, perspective point height, ellipsoid semi-major/semi-minor axes).
// Converting a scan-angle pair to a geodetic coordinate is a closed-form
// intersection of the scan ray with the GRS80 ellipsoid; see [InvertFixedGrid].
//
// Scan rays near the edge of a CONUS sector can miss the Earth entirely. Those
// cells carry NaN in the resulting grid — an expected outcome, not an error —
// and are repaired afterwards by [FillGaps] so that every cell has a usable
// coordinate for nearest-point search.
//
// # Grid Addressing Contract
//
// All 2D data in this package is row-major with the row index paired to the
// y (north-south) scan-angle vector and the column index paired to the x
// (east-west) vector. Whether increasing row means increasing or decreasing
// latitude depends on the ordering of the product's y vector, so compass
// directions are never assumed: [DetectOrientation] derives the row-to-north
// and column-to-east sign from a computed coordinate grid, and the neighbor
// ring takes that orientation explicitly.
//
// ABI coordinate vectors order y north-to-south and x west-to-east, so on real
// products north is row-1 and east is col+1; the contract holds either way.
//
// # Channels
//
// The pipeline's output unit is a [ChannelSet]: eight parallel time series
// sampled at the eight compass neighbors of a reference cell, one per
// downstream audio channel, all sharing a single timestamp vector. Either all
// eight channels are produced consistently or the operation fails; there is
// no partial extraction.
package domain
