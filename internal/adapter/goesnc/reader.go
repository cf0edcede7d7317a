// Package goesnc decodes GOES ABI L2 NetCDF product files into domain
// acquisitions: the x/y scan-angle vectors, the fixed-grid projection
// parameter bundle, the scan time, and one gridded data variable with packed
// integers unscaled and fill values mapped to NaN.
package goesnc

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
)

// j2000 is the epoch of ABI time variables: seconds since 2000-01-01 12:00 UTC.
var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// Decoder adapts ReadAcquisition to the pipeline's decode stage.
type Decoder struct{}

func (Decoder) Decode(path, variable string) (domain.Acquisition, error) {
	return ReadAcquisition(path, variable)
}

// ReadAcquisition opens an ABI product file and decodes the named data
// variable together with its scan geometry and projection metadata.
func ReadAcquisition(path, variable string) (domain.Acquisition, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	x, err := readAngleVector(nc, "x")
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: %w", path, err)
	}
	y, err := readAngleVector(nc, "y")
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: %w", path, err)
	}

	proj, err := readProjection(nc)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: %w", path, err)
	}

	scanTime, err := readScanTime(nc)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: %w", path, err)
	}

	vr, err := nc.GetVariable(variable)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: variable %q: %w", path, variable, err)
	}
	vals, rows, cols, err := unpackPlane(vr)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: variable %q: %w", path, variable, err)
	}
	if rows != len(y) || cols != len(x) {
		return domain.Acquisition{}, fmt.Errorf("%s: variable %q is %dx%d but scan grid is %dx%d: %w",
			path, variable, rows, cols, len(y), len(x), domain.ErrShapeMismatch)
	}

	unit := ""
	if u, ok := attrString(vr.Attributes, "units"); ok {
		unit = u
	}

	acq := domain.Acquisition{
		Time:       scanTime,
		Scan:       domain.ScanGrid{X: x, Y: y},
		Projection: proj,
		Variable:   variable,
		Unit:       unit,
		Values:     vals,
	}
	if err := acq.Validate(); err != nil {
		return domain.Acquisition{}, fmt.Errorf("%s: %w", path, err)
	}
	return acq, nil
}

// readAngleVector decodes a 1D packed coordinate variable into radians.
func readAngleVector(nc api.Group, name string) ([]float64, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", name, err)
	}
	scale, offset := packing(vr.Attributes)
	vec, err := unpackVector(vr.Values, scale, offset)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", name, err)
	}
	return vec, nil
}

// readProjection extracts the fixed-grid parameter bundle from the
// goes_imager_projection container variable.
func readProjection(nc api.Group) (domain.ProjectionParams, error) {
	vr, err := nc.GetVariable("goes_imager_projection")
	if err != nil {
		return domain.ProjectionParams{}, fmt.Errorf("goes_imager_projection: %w", err)
	}

	var p domain.ProjectionParams
	fields := []struct {
		attr string
		dst  *float64
	}{
		{"longitude_of_projection_origin", &p.LonOriginDeg},
		{"perspective_point_height", &p.PerspectiveHeight},
		{"semi_major_axis", &p.SemiMajorAxis},
		{"semi_minor_axis", &p.SemiMinorAxis},
	}
	for _, f := range fields {
		v, ok := attrFloat(vr.Attributes, f.attr)
		if !ok {
			return domain.ProjectionParams{}, fmt.Errorf("goes_imager_projection missing %s", f.attr)
		}
		*f.dst = v
	}
	if err := p.Validate(); err != nil {
		return domain.ProjectionParams{}, fmt.Errorf("goes_imager_projection: %w", err)
	}
	return p, nil
}

// readScanTime decodes the scan midpoint from the t variable (seconds since
// the J2000 epoch).
func readScanTime(nc api.Group) (time.Time, error) {
	vr, err := nc.GetVariable("t")
	if err != nil {
		return time.Time{}, fmt.Errorf("scan time: %w", err)
	}

	var secs float64
	switch v := vr.Values.(type) {
	case float64:
		secs = v
	case float32:
		secs = float64(v)
	case []float64:
		if len(v) != 1 {
			return time.Time{}, fmt.Errorf("scan time: expected scalar, got %d values", len(v))
		}
		secs = v[0]
	default:
		return time.Time{}, fmt.Errorf("scan time: unexpected type %T", vr.Values)
	}
	return j2000FromSeconds(secs), nil
}

func j2000FromSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return j2000.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))).UTC()
}

// packing returns the scale_factor/add_offset pair for a packed variable,
// defaulting to identity when absent.
func packing(am api.AttributeMap) (scale, offset float64) {
	scale, offset = 1, 0
	if v, ok := attrFloat(am, "scale_factor"); ok {
		scale = v
	}
	if v, ok := attrFloat(am, "add_offset"); ok {
		offset = v
	}
	return scale, offset
}

// unpackVector converts a 1D variable to float64 applying packing.
func unpackVector(values any, scale, offset float64) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = s*scale + offset
		}
		return out, nil
	case []float32:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)*scale + offset
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)*scale + offset
		}
		return out, nil
	case []int16:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)*scale + offset
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected 1D type %T", values)
	}
}

// unpackPlane converts a 2D variable to a row-major float64 plane applying
// packing and mapping _FillValue cells to NaN.
func unpackPlane(vr *api.Variable) ([]float64, int, int, error) {
	scale, offset := packing(vr.Attributes)
	fill, hasFill := attrFloat(vr.Attributes, "_FillValue")
	nan := math.NaN()

	unpack := func(raw float64, isFill bool) float64 {
		if isFill {
			return nan
		}
		return raw*scale + offset
	}

	switch v := vr.Values.(type) {
	case [][]float64:
		return flatten(v, func(s float64) float64 {
			return unpack(s, hasFill && s == fill)
		})
	case [][]float32:
		return flatten(v, func(s float32) float64 {
			return unpack(float64(s), hasFill && float64(s) == fill)
		})
	case [][]int32:
		return flatten(v, func(s int32) float64 {
			return unpack(float64(s), hasFill && float64(s) == fill)
		})
	case [][]int16:
		return flatten(v, func(s int16) float64 {
			return unpack(float64(s), hasFill && float64(s) == fill)
		})
	default:
		return nil, 0, 0, fmt.Errorf("unexpected 2D type %T", vr.Values)
	}
}

// flatten lays a rectangular 2D slice out row-major, rejecting ragged rows.
func flatten[T any](rows [][]T, conv func(T) float64) ([]float64, int, int, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, 0, 0, fmt.Errorf("empty plane")
	}
	cols := len(rows[0])
	out := make([]float64, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, 0, 0, fmt.Errorf("ragged plane: row %d has %d cells, want %d", r, len(row), cols)
		}
		for _, s := range row {
			out = append(out, conv(s))
		}
	}
	return out, len(rows), cols, nil
}

// attrFloat reads a numeric attribute, tolerating the scalar and
// single-element slice encodings NetCDF writers produce.
func attrFloat(am api.AttributeMap, key string) (float64, bool) {
	if am == nil {
		return 0, false
	}
	v, ok := am.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int16:
		return float64(t), true
	case int8:
		return float64(t), true
	case []float64:
		if len(t) == 1 {
			return t[0], true
		}
	case []float32:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []int32:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []int16:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	}
	return 0, false
}

// attrString reads a string attribute.
func attrString(am api.AttributeMap, key string) (string, bool) {
	if am == nil {
		return "", false
	}
	v, ok := am.Get(key)
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}
