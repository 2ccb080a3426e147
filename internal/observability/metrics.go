package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "srtm_peaks"

// Metrics holds the Prometheus counters, histograms, and gauges for a peak extraction run.
type Metrics struct {
	RegionsProcessed prometheus.Counter
	RegionsNoData    prometheus.Counter
	PeaksFound       prometheus.Counter
	PipelineRunning  prometheus.Gauge
	RegionDuration   prometheus.Histogram

	// SRTM tile metrics.
	TileCache            *prometheus.CounterVec // labels: result={hit,miss}
	TileDownloads        *prometheus.CounterVec // labels: outcome={success,missing,error}
	TileDownloadDuration prometheus.Histogram

	MarkersPublished prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg. A run uses its
// own registry so the same metrics can be served over HTTP and written to a
// textfile.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := NewMetricsForTesting()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so multiple
// tests can build their own set without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RegionsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_processed_total",
			Help:      "Total regions for which elevation data was requested.",
		}),
		RegionsNoData: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_no_data_total",
			Help:      "Regions without any covering SRTM tile.",
		}),
		PeaksFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peaks_found_total",
			Help:      "Total peak markers extracted.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while regions are being processed, 0 otherwise.",
		}),
		RegionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "region_duration_seconds",
			Help:      "Time to load and analyze one region.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		TileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_cache_total",
			Help:      "Decoded tile cache lookups by result.",
		}, []string{"result"}),
		TileDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_downloads_total",
			Help:      "SRTM archive downloads by outcome.",
		}, []string{"outcome"}),
		TileDownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tile_download_duration_seconds",
			Help:      "SRTM archive download duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MarkersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markers_published_total",
			Help:      "Peak markers written to the Kafka topic.",
		}),
	}
}

// Register adds the metrics to reg, reporting conflicts instead of panicking.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RegionsProcessed,
		m.RegionsNoData,
		m.PeaksFound,
		m.PipelineRunning,
		m.RegionDuration,
		m.TileCache,
		m.TileDownloads,
		m.TileDownloadDuration,
		m.MarkersPublished,
	}
}
