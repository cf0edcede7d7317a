package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
	"github.com/couchcryptid/goes-sonify-etl/internal/observability"
	"github.com/couchcryptid/goes-sonify-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goesEast = domain.ProjectionParams{
	LonOriginDeg:      -75.0,
	PerspectiveHeight: 35786023.0,
	SemiMajorAxis:     6378137.0,
	SemiMinorAxis:     6356752.31414,
}

var houston = domain.Geo{Lat: 29.7604, Lon: -95.3698}

// --- mocks ---

type mockSource struct {
	refs       []domain.AcquisitionRef
	listErr    error
	fetchFails int // fail this many Fetch calls before succeeding
	dir        string
	fetches    atomic.Int64
}

func (m *mockSource) List(_ context.Context, _ string, _, _ time.Time) ([]domain.AcquisitionRef, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.refs, nil
}

func (m *mockSource) Fetch(_ context.Context, ref domain.AcquisitionRef) (string, error) {
	if int(m.fetches.Add(1)) <= m.fetchFails {
		return "", errors.New("connection reset")
	}
	local := filepath.Join(m.dir, filepath.Base(ref.Key))
	if err := os.WriteFile(local, []byte("staged"), 0o600); err != nil {
		return "", err
	}
	return local, nil
}

type mockDecoder struct {
	acqs  []domain.Acquisition
	err   error
	index atomic.Int64
}

func (m *mockDecoder) Decode(_, _ string) (domain.Acquisition, error) {
	if m.err != nil {
		return domain.Acquisition{}, m.err
	}
	i := int(m.index.Add(1) - 1)
	return m.acqs[i], nil
}

type mockLoader struct {
	sets []domain.ChannelSet
	err  error
}

func (m *mockLoader) Load(_ context.Context, set domain.ChannelSet) error {
	if m.err != nil {
		return m.err
	}
	m.sets = append(m.sets, set)
	return nil
}

// --- fixtures ---

// syntheticScan forward-projects a lat/lon lattice centered on the target so
// cell (rows/2, cols/2) inverts back to the target exactly.
func syntheticScan(t *testing.T, rows, cols int) domain.ScanGrid {
	t.Helper()
	scan := domain.ScanGrid{X: make([]float64, cols), Y: make([]float64, rows)}
	for c := 0; c < cols; c++ {
		lon := houston.Lon + float64(c-cols/2)*0.5
		x, _, err := domain.ProjectGeodetic(domain.Geo{Lat: houston.Lat, Lon: lon}, goesEast)
		require.NoError(t, err)
		scan.X[c] = x
	}
	for r := 0; r < rows; r++ {
		lat := houston.Lat + float64(rows/2-r)*0.5
		_, y, err := domain.ProjectGeodetic(domain.Geo{Lat: lat, Lon: houston.Lon}, goesEast)
		require.NoError(t, err)
		scan.Y[r] = y
	}
	return scan
}

func rampValues(rows, cols int) []float64 {
	vals := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			vals[r*cols+c] = float64(r*10 + c)
		}
	}
	return vals
}

func syntheticAcq(t *testing.T, at time.Time, rows, cols int) domain.Acquisition {
	t.Helper()
	return domain.Acquisition{
		Time:       at,
		Scan:       syntheticScan(t, rows, cols),
		Projection: goesEast,
		Variable:   "TPW",
		Unit:       "mm",
		Values:     rampValues(rows, cols),
	}
}

func testJob() pipeline.Job {
	start := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	return pipeline.Job{
		Satellite:    "goes19",
		Product:      "ABI-L2-TPWC",
		Variable:     "TPW",
		Target:       houston,
		NeighborStep: 1,
		WindowStart:  start,
		WindowEnd:    start.Add(time.Hour),
	}
}

func testRefs(n int) []domain.AcquisitionRef {
	start := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	refs := make([]domain.AcquisitionRef, n)
	for i := range refs {
		at := start.Add(time.Duration(i) * 5 * time.Minute)
		refs[i] = domain.AcquisitionRef{
			Key:       fmt.Sprintf("ABI-L2-TPWC/2026/226/12/file_%02d.nc", i),
			ScanStart: at,
		}
	}
	return refs
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	refs := testRefs(3)
	src := &mockSource{refs: refs, dir: t.TempDir()}
	dec := &mockDecoder{}
	for _, ref := range refs {
		dec.acqs = append(dec.acqs, syntheticAcq(t, ref.ScanStart, 5, 5))
	}
	ldr := &mockLoader{}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, ldr.sets, 1)

	set := ldr.sets[0]
	assert.Equal(t, "goes19", set.Satellite)
	assert.Equal(t, domain.GridIndex{Row: 2, Col: 2}, set.Center)
	assert.InDelta(t, houston.Lat, set.CenterCoord.Lat, 1e-6)
	assert.InDelta(t, houston.Lon, set.CenterCoord.Lon, 1e-6)
	require.Len(t, set.Channels, domain.ChannelCount)
	require.Len(t, set.Times, 3)

	// North of center on an ABI-oriented grid is row 1.
	assert.Equal(t, "N", set.Channels[0].Direction)
	assert.Equal(t, []float64{12, 12, 12}, set.Channels[0].Values)

	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_EmptyWindow(t *testing.T) {
	src := &mockSource{dir: t.TempDir()}
	p := pipeline.New(src, &mockDecoder{}, &mockLoader{}, testJob(), slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ABI-L2-TPWC acquisitions")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ListError(t *testing.T) {
	src := &mockSource{listErr: errors.New("bucket unreachable"), dir: t.TempDir()}
	p := pipeline.New(src, &mockDecoder{}, &mockLoader{}, testJob(), slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list acquisitions")
}

func TestPipeline_Run_FetchRetriesThenSucceeds(t *testing.T) {
	refs := testRefs(1)
	src := &mockSource{refs: refs, fetchFails: 2, dir: t.TempDir()}
	dec := &mockDecoder{acqs: []domain.Acquisition{syntheticAcq(t, refs[0].ScanStart, 5, 5)}}
	ldr := &mockLoader{}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	require.NoError(t, p.Run(context.Background()))
	assert.Len(t, ldr.sets, 1)
	assert.Equal(t, int64(3), src.fetches.Load())
}

func TestPipeline_Run_DecodeErrorAborts(t *testing.T) {
	src := &mockSource{refs: testRefs(1), dir: t.TempDir()}
	dec := &mockDecoder{err: errors.New("not a NetCDF file")}
	ldr := &mockLoader{}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assert.Empty(t, ldr.sets)
}

func TestPipeline_Run_ShapeMismatchAborts(t *testing.T) {
	refs := testRefs(2)
	src := &mockSource{refs: refs, dir: t.TempDir()}
	dec := &mockDecoder{acqs: []domain.Acquisition{
		syntheticAcq(t, refs[0].ScanStart, 5, 5),
		syntheticAcq(t, refs[1].ScanStart, 7, 5),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
	assert.Empty(t, ldr.sets)
}

func TestPipeline_Run_LoaderErrorPropagates(t *testing.T) {
	refs := testRefs(1)
	src := &mockSource{refs: refs, dir: t.TempDir()}
	dec := &mockDecoder{acqs: []domain.Acquisition{syntheticAcq(t, refs[0].ScanStart, 5, 5)}}
	ldr := &mockLoader{err: errors.New("broker down")}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish channel set")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CancelledContext(t *testing.T) {
	refs := testRefs(1)
	src := &mockSource{refs: refs, fetchFails: 100, dir: t.TempDir()}
	dec := &mockDecoder{}
	ldr := &mockLoader{}

	p := pipeline.New(src, dec, ldr, testJob(), slog.Default(), newTestMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.sets)
}
