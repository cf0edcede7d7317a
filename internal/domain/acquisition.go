package domain

import (
	"fmt"
	"time"
)

// AcquisitionRef identifies one product file at the source before it has
// been fetched: the object key plus the scan start parsed from it.
type AcquisitionRef struct {
	Key       string
	ScanStart time.Time
}

// Acquisition is one decoded product file: a single timestamp's gridded
// samples plus the scan geometry and projection metadata needed to geolocate
// them. Values are row-major with undefined samples as NaN.
type Acquisition struct {
	Time       time.Time
	Scan       ScanGrid
	Projection ProjectionParams
	Variable   string
	Unit       string
	Values     []float64
}

// Validate checks the acquisition's internal shape invariant: the sample
// plane must match the scan grid's outer-product dimensions.
func (a Acquisition) Validate() error {
	if err := a.Scan.Validate(); err != nil {
		return fmt.Errorf("acquisition at %s: %w", a.Time.Format(time.RFC3339), err)
	}
	want := a.Scan.Rows() * a.Scan.Cols()
	if len(a.Values) != want {
		return fmt.Errorf("acquisition at %s: %d samples for %dx%d scan grid: %w",
			a.Time.Format(time.RFC3339), len(a.Values), a.Scan.Rows(), a.Scan.Cols(), ErrShapeMismatch)
	}
	return nil
}
