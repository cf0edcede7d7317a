package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// extraction pipeline.
type Metrics struct {
	AcquisitionsFetched prometheus.Counter
	FetchErrors         prometheus.Counter
	DecodeErrors        prometheus.Counter
	ChannelSetsProduced prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Geolocation metrics.
	OffEarthCells  prometheus.Gauge
	GapCellsFilled prometheus.Gauge

	// Stage timing.
	GeolocationDuration prometheus.Histogram
	AcquisitionDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AcquisitionsFetched,
		m.FetchErrors,
		m.DecodeErrors,
		m.ChannelSetsProduced,
		m.PipelineRunning,
		m.OffEarthCells,
		m.GapCellsFilled,
		m.GeolocationDuration,
		m.AcquisitionDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AcquisitionsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_sonify",
			Name:      "acquisitions_fetched_total",
			Help:      "Total product files fetched and decoded.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_sonify",
			Name:      "fetch_errors_total",
			Help:      "Total acquisition fetch failures, including retried ones.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_sonify",
			Name:      "decode_errors_total",
			Help:      "Total product files that failed NetCDF decoding.",
		}),
		ChannelSetsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_sonify",
			Name:      "channel_sets_produced_total",
			Help:      "Total eight-channel sets published to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_sonify",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		OffEarthCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_sonify",
			Name:      "off_earth_cells",
			Help:      "Cells of the current scan grid whose ray misses the Earth.",
		}),
		GapCellsFilled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_sonify",
			Name:      "gap_cells_filled",
			Help:      "Coordinate cells repaired by interpolation for the current grid.",
		}),
		GeolocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_sonify",
			Name:      "geolocation_duration_seconds",
			Help:      "Duration of the invert/fill/locate geolocation stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AcquisitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_sonify",
			Name:      "acquisition_duration_seconds",
			Help:      "Duration of one fetch-decode-stack cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
