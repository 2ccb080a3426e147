package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
	"github.com/couchcryptid/srtm-peaks/internal/observability"
)

// Options tune a run.
type Options struct {
	// Correction is subtracted from every rectangle before querying elevation data.
	Correction domain.Correction

	// MaxPeaksPerRegion caps the peaks taken from each region; <= 0 means no limit.
	MaxPeaksPerRegion int
}

// RegionReport holds the diagnostics of one processed rectangle.
type RegionReport struct {
	Requested domain.Rectangle
	Queried   domain.Rectangle
	Stats     *domain.ElevationStats // nil when no data covered the region
	Peaks     int
	Duration  time.Duration
}

// Result is the outcome of a run: all markers in region order plus per-region diagnostics.
type Result struct {
	Markers []domain.PeakMarker
	Regions []RegionReport
}

// Pipeline runs the sequential load-and-extract loop over resolved rectangles.
type Pipeline struct {
	provider domain.ElevationProvider
	finder   domain.PeakFinder
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
	ready    atomic.Bool
	done     atomic.Int64
	total    atomic.Int64
}

// New creates a Pipeline with the given collaborators and observability.
func New(provider domain.ElevationProvider, finder domain.PeakFinder, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		provider: provider,
		finder:   finder,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once the pipeline has finished at least one region.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any region yet")
	}
	return nil
}

// Progress returns the number of finished regions and the size of the
// current run.
func (p *Pipeline) Progress() (done, total int) {
	return int(p.done.Load()), int(p.total.Load())
}

// Run processes rects strictly in order and aggregates their peaks.
//
// A region without elevation data contributes no peaks and does not stop the
// run. Any other provider or finder error aborts the run; the returned Result
// then holds what was aggregated before the failing region.
func (p *Pipeline) Run(ctx context.Context, rects []domain.Rectangle) (Result, error) {
	var res Result
	if len(rects) == 0 {
		return res, domain.ErrNoBoundsSpecified
	}

	p.done.Store(0)
	p.total.Store(int64(len(rects)))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	release := len(rects) == 1
	for i, rect := range rects {
		report, markers, err := p.processRegion(ctx, rect, release)
		if err != nil {
			return res, fmt.Errorf("region %d (%s): %w", i+1, rect, err)
		}
		res.Markers = append(res.Markers, markers...)
		res.Regions = append(res.Regions, report)
		p.done.Add(1)
		p.ready.Store(true)
	}
	return res, nil
}

func (p *Pipeline) processRegion(ctx context.Context, rect domain.Rectangle, release bool) (RegionReport, []domain.PeakMarker, error) {
	start := clock.Now()
	query := rect.Shift(-p.opts.Correction.DX, -p.opts.Correction.DY)
	report := RegionReport{Requested: rect, Queried: query}

	p.logger.Info("calculating elevation data for region", "bounds", query.String())
	p.metrics.RegionsProcessed.Inc()

	surface, err := p.provider.LoadSurfaceForArea(ctx, query)
	if err != nil && !errors.Is(err, domain.ErrRegionDataUnavailable) {
		return report, nil, fmt.Errorf("load elevation data: %w", err)
	}

	noData := surface == nil || err != nil

	var markers []domain.PeakMarker
	if !noData {
		markers, err = p.finder.FindPeaks(surface, p.opts.MaxPeaksPerRegion)
		if err != nil {
			return report, nil, fmt.Errorf("find peaks: %w", err)
		}
	}

	if release {
		if r, ok := p.provider.(domain.Releaser); ok {
			r.Release()
		}
	}

	report.Peaks = len(markers)
	report.Duration = clock.Since(start)
	p.metrics.PeaksFound.Add(float64(len(markers)))
	p.metrics.RegionDuration.Observe(report.Duration.Seconds())

	if noData {
		p.metrics.RegionsNoData.Inc()
		p.logger.Warn("no elevation data for region", "bounds", query.String(), "peaks", 0)
		return report, nil, nil
	}

	stats := surface.Statistics()
	report.Stats = &stats
	p.logger.Info("dem statistics",
		"points", stats.Points,
		"min", stats.Min,
		"max", stats.Max,
		"missing", stats.Missing,
		"has_missing_points", stats.Missing > 0,
		"peaks", len(markers),
		"duration", report.Duration,
	)
	return report, markers, nil
}
