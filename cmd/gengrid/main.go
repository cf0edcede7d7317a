// Command gengrid generates a synthetic acquisition-series fixture plus the
// channel set the pipeline would extract from it. The scan grid is built by
// forward-projecting a lat/lon lattice centered on the target, so the fixture
// exercises the same geometry chain as real products and downstream consumers
// can test against a known-good channel set.
//
// Usage:
//
//	go run ./cmd/gengrid \
//	  -out data/mock/acquisitions_houston.json \
//	  -set-out data/mock/channel_set_houston.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
)

var goesEast = domain.ProjectionParams{
	LonOriginDeg:      -75.0,
	PerspectiveHeight: 35786023.0,
	SemiMajorAxis:     6378137.0,
	SemiMinorAxis:     6356752.31414,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 29.7604, "target latitude in degrees")
	lon := flag.Float64("lon", -95.3698, "target longitude in degrees")
	rows := flag.Int("rows", 5, "grid rows")
	cols := flag.Int("cols", 5, "grid columns")
	spacing := flag.Float64("spacing", 0.5, "lattice spacing in degrees")
	frames := flag.Int("frames", 3, "number of acquisitions")
	out := flag.String("out", "", "output path for the acquisition-series fixture")
	setOut := flag.String("set-out", "", "output path for the expected channel set")
	flag.Parse()

	if *out == "" || *setOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -set-out")
	}

	target := domain.Geo{Lat: *lat, Lon: *lon}
	scan, err := latticeScan(target, *rows, *cols, *spacing)
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	start := time.Date(2026, time.August, 14, 12, 0, 0, 0, time.UTC)
	acqs := make([]domain.Acquisition, *frames)
	for i := range acqs {
		acqs[i] = domain.Acquisition{
			Time:       start.Add(time.Duration(i) * 5 * time.Minute),
			Scan:       scan,
			Projection: goesEast,
			Variable:   "TPW",
			Unit:       "mm",
			Values:     frameValues(*rows, *cols, i),
		}
	}

	set, err := extract(acqs, target)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, acqs); err != nil {
		return err
	}
	if err := writeJSON(*setOut, set); err != nil {
		return err
	}

	log.Printf("%d acquisitions (%dx%d), channel set %s", len(acqs), *rows, *cols, set.ID)
	return nil
}

// latticeScan forward-projects a lat/lon lattice centered on the target.
// Row 0 is the northern edge, matching ABI ordering.
func latticeScan(target domain.Geo, rows, cols int, spacing float64) (domain.ScanGrid, error) {
	scan := domain.ScanGrid{X: make([]float64, cols), Y: make([]float64, rows)}
	for c := 0; c < cols; c++ {
		g := domain.Geo{Lat: target.Lat, Lon: target.Lon + float64(c-cols/2)*spacing}
		x, _, err := domain.ProjectGeodetic(g, goesEast)
		if err != nil {
			return domain.ScanGrid{}, fmt.Errorf("project column %d: %w", c, err)
		}
		scan.X[c] = x
	}
	for r := 0; r < rows; r++ {
		g := domain.Geo{Lat: target.Lat + float64(rows/2-r)*spacing, Lon: target.Lon}
		_, y, err := domain.ProjectGeodetic(g, goesEast)
		if err != nil {
			return domain.ScanGrid{}, fmt.Errorf("project row %d: %w", r, err)
		}
		scan.Y[r] = y
	}
	return scan, nil
}

// frameValues builds a smooth synthetic sample plane that drifts per frame so
// every channel in the fixture has a distinct, non-constant series.
func frameValues(rows, cols, frame int) []float64 {
	vals := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			phase := float64(frame) * 0.4
			vals[r*cols+c] = 30 + 5*math.Sin(float64(r)*0.7+phase) + 3*math.Cos(float64(c)*0.9-phase)
		}
	}
	return vals
}

// extract runs the geometry-and-gather chain the pipeline runs.
func extract(acqs []domain.Acquisition, target domain.Geo) (domain.ChannelSet, error) {
	first := acqs[0]

	grid, err := domain.InvertFixedGrid(first.Scan, first.Projection)
	if err != nil {
		return domain.ChannelSet{}, err
	}
	filled, err := domain.FillGaps(grid)
	if err != nil {
		return domain.ChannelSet{}, err
	}
	orient, err := domain.DetectOrientation(filled)
	if err != nil {
		return domain.ChannelSet{}, err
	}
	center, err := domain.LocateNearest(filled, target)
	if err != nil {
		return domain.ChannelSet{}, err
	}
	ring, err := domain.NeighborRing(filled.Rows, filled.Cols, center, 1, orient)
	if err != nil {
		return domain.ChannelSet{}, err
	}

	field, err := domain.NewField(first.Variable, first.Unit, filled.Rows, filled.Cols)
	if err != nil {
		return domain.ChannelSet{}, err
	}
	for _, acq := range acqs {
		if err := field.AppendFrame(acq.Time, acq.Values); err != nil {
			return domain.ChannelSet{}, err
		}
	}

	series, err := domain.ExtractSeries(field, filled, ring)
	if err != nil {
		return domain.ChannelSet{}, err
	}

	return domain.AssembleChannelSet("goes19", "ABI-L2-TPWC", first.Variable, first.Unit,
		target, center, filled.At(center), field.Times, series)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
