package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
	"github.com/couchcryptid/goes-sonify-etl/internal/observability"
)

// Source discovers product files for an acquisition window and stages them
// locally one at a time.
type Source interface {
	List(ctx context.Context, product string, start, end time.Time) ([]domain.AcquisitionRef, error)
	Fetch(ctx context.Context, ref domain.AcquisitionRef) (string, error)
}

// Decoder reads one staged product file into an acquisition.
type Decoder interface {
	Decode(path, variable string) (domain.Acquisition, error)
}

// Loader writes a finished channel set to the destination.
type Loader interface {
	Load(ctx context.Context, set domain.ChannelSet) error
}

// Job describes one acquisition window to process.
type Job struct {
	Satellite    string
	Product      string
	Variable     string
	Target       domain.Geo
	NeighborStep int
	WindowStart  time.Time
	WindowEnd    time.Time
}

// Pipeline orchestrates list → fetch → decode → geolocate → extract → load
// for one acquisition window. A run either publishes a complete channel set
// or fails; partial output is never produced.
type Pipeline struct {
	source  Source
	decoder Decoder
	loader  Loader
	job     Job
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(src Source, dec Decoder, ldr Loader, job Job, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  src,
		decoder: dec,
		loader:  ldr,
		job:     job,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a channel set has been published,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published a channel set yet")
	}
	return nil
}

// Run processes the job's window as a single batch and publishes the result.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"satellite", p.job.Satellite,
		"product", p.job.Product,
		"variable", p.job.Variable,
		"window_start", p.job.WindowStart,
		"window_end", p.job.WindowEnd,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	refs, err := p.source.List(ctx, p.job.Product, p.job.WindowStart, p.job.WindowEnd)
	if err != nil {
		return fmt.Errorf("list acquisitions: %w", err)
	}
	if len(refs) == 0 {
		return fmt.Errorf("no %s acquisitions between %s and %s",
			p.job.Product, p.job.WindowStart.Format(time.RFC3339), p.job.WindowEnd.Format(time.RFC3339))
	}
	p.logger.Info("window listed", "acquisitions", len(refs))

	var (
		scene *geolocation
		field *domain.Field
		unit  string
	)
	for _, ref := range refs {
		start := time.Now()

		acq, err := p.fetchAndDecode(ctx, ref)
		if err != nil {
			return err
		}

		if scene == nil {
			scene, err = p.buildGeolocation(acq)
			if err != nil {
				return fmt.Errorf("geolocate %s: %w", ref.Key, err)
			}
			field, err = domain.NewField(p.job.Variable, acq.Unit, acq.Scan.Rows(), acq.Scan.Cols())
			if err != nil {
				return fmt.Errorf("init field: %w", err)
			}
			unit = acq.Unit
		} else if acq.Scan.Rows() != scene.grid.Rows || acq.Scan.Cols() != scene.grid.Cols {
			return fmt.Errorf("acquisition %s is %dx%d, window started at %dx%d: %w",
				ref.Key, acq.Scan.Rows(), acq.Scan.Cols(), scene.grid.Rows, scene.grid.Cols,
				domain.ErrShapeMismatch)
		}

		if err := field.AppendFrame(acq.Time, acq.Values); err != nil {
			return fmt.Errorf("stack %s: %w", ref.Key, err)
		}

		p.metrics.AcquisitionsFetched.Inc()
		p.metrics.AcquisitionDuration.Observe(time.Since(start).Seconds())
	}

	series, err := domain.ExtractSeries(field, scene.grid, scene.ring)
	if err != nil {
		return fmt.Errorf("extract series: %w", err)
	}

	set, err := domain.AssembleChannelSet(
		p.job.Satellite, p.job.Product, p.job.Variable, unit,
		p.job.Target, scene.center, scene.grid.At(scene.center),
		field.Times, series,
	)
	if err != nil {
		return fmt.Errorf("assemble channel set: %w", err)
	}

	if err := p.loader.Load(ctx, set); err != nil {
		return fmt.Errorf("publish channel set %s: %w", set.ID, err)
	}

	p.metrics.ChannelSetsProduced.Inc()
	p.ready.Store(true)
	p.logger.Info("channel set published",
		"id", set.ID,
		"frames", field.Len(),
		"center_row", scene.center.Row,
		"center_col", scene.center.Col,
	)
	return nil
}

// fetchAndDecode stages one object with bounded retries and decodes it.
// The staged file is removed once decoded; decode failures are not retried.
func (p *Pipeline) fetchAndDecode(ctx context.Context, ref domain.AcquisitionRef) (domain.Acquisition, error) {
	local, err := p.fetchWithRetry(ctx, ref)
	if err != nil {
		return domain.Acquisition{}, err
	}
	defer func() {
		if err := os.Remove(local); err != nil {
			p.logger.Warn("remove staged file failed", "path", local, "error", err)
		}
	}()

	acq, err := p.decoder.Decode(local, p.job.Variable)
	if err != nil {
		p.metrics.DecodeErrors.Inc()
		return domain.Acquisition{}, fmt.Errorf("decode %s: %w", ref.Key, err)
	}
	if err := acq.Validate(); err != nil {
		p.metrics.DecodeErrors.Inc()
		return domain.Acquisition{}, fmt.Errorf("decode %s: %w", ref.Key, err)
	}
	return acq, nil
}

const maxFetchAttempts = 5

// fetchWithRetry downloads one object, retrying transient failures.
// Exponential backoff: start at 200ms, double each retry, cap at 5s.
func (p *Pipeline) fetchWithRetry(ctx context.Context, ref domain.AcquisitionRef) (string, error) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		local, err := p.source.Fetch(ctx, ref)
		if err == nil {
			return local, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch %s: %w", ref.Key, ctx.Err())
		}

		lastErr = err
		p.metrics.FetchErrors.Inc()
		p.logger.Warn("fetch failed, retrying",
			"key", ref.Key, "attempt", attempt, "backoff", backoff, "error", err)

		if !sleepWithContext(ctx, backoff) {
			return "", fmt.Errorf("fetch %s: %w", ref.Key, ctx.Err())
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return "", fmt.Errorf("fetch %s after %d attempts: %w", ref.Key, maxFetchAttempts, lastErr)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
