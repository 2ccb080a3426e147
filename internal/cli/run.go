package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/srtm-peaks/internal/adapter/http"
	"github.com/couchcryptid/srtm-peaks/internal/adapter/file"
	"github.com/couchcryptid/srtm-peaks/internal/adapter/kafka"
	"github.com/couchcryptid/srtm-peaks/internal/adapter/srtm"
	"github.com/couchcryptid/srtm-peaks/internal/config"
	"github.com/couchcryptid/srtm-peaks/internal/observability"
	"github.com/couchcryptid/srtm-peaks/internal/peaks"
	"github.com/couchcryptid/srtm-peaks/internal/pipeline"
)

// tileCacheDir is the sub-directory of the SRTM directory holding archives.
const tileCacheDir = "cache"

func runPeaks(ctx context.Context, cmd *cobra.Command, state *runState, errOut io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, errOut)
	if err != nil {
		return err
	}

	rects, err := state.bounds.Rectangles()
	if err != nil {
		return err
	}
	markerWriter, err := file.WriterFor(cfg.Format)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); werr != nil {
				logger.Error("failed to write metrics file", "file", cfg.MetricsFile, "error", werr)
			}
		}()
	}

	storage, closeStorage, err := openStorage(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer closeStorage()

	p := pipeline.New(storage, peaks.NewFinder(cfg.MinSeparation), logger, metrics, pipeline.Options{
		Correction:        state.corr,
		MaxPeaksPerRegion: cfg.HowMany,
	})

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, reg, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	logger.Info("processing regions", "count", len(rects), "srtm_dir", cfg.SRTMDir)
	res, err := p.Run(ctx, rects)
	if err != nil {
		return err
	}

	logger.Info("saving peaks", "file", cfg.Output, "format", cfg.Format, "count", len(res.Markers))
	if err := file.WriteFile(cfg.Output, markerWriter, res.Markers); err != nil {
		return err
	}

	if len(cfg.KafkaBrokers) > 0 {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Source, logger, metrics)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		if err := w.Publish(ctx, res.Markers); err != nil {
			return err
		}
	}

	logger.Info("done", "regions", len(res.Regions), "peaks", len(res.Markers))
	return nil
}

// openStorage assembles the tile store chain and the mirror fetcher. The
// returned func closes any network stores.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*srtm.Storage, func(), error) {
	files, err := srtm.NewFileStore(filepath.Join(cfg.SRTMDir, tileCacheDir))
	if err != nil {
		return nil, nil, err
	}

	var store srtm.TileStore = files
	closeFn := func() {}
	if cfg.RedisURL != "" {
		rs, err := srtm.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		store = srtm.NewLayeredStore(files, rs)
		closeFn = func() {
			if err := rs.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}
		logger.Info("sharing tiles through redis", "ttl", cfg.RedisTTL)
	}

	var fetcher srtm.Fetcher
	if cfg.Offline {
		logger.Info("offline mode, using cached tiles only", "dir", files.Dir())
	} else {
		client, err := srtm.NewClient(cfg.Source, cfg.HTTPTimeout, logger, metrics)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		mirror := srtm.NewMirrorFetcher(client, cfg.SRTMDir, cfg.RegenerateIndex, logger)
		if cfg.RegenerateIndex {
			if _, err := mirror.Index(ctx); err != nil {
				closeFn()
				return nil, nil, fmt.Errorf("regenerate srtm index: %w", err)
			}
		}
		fetcher = mirror
	}

	return srtm.NewStorage(store, fetcher, cfg.CacheTiles, logger, metrics), closeFn, nil
}

func newIndexCommand(errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Regenerate the SRTM index file from the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, errOut)
			if err != nil {
				return err
			}
			client, err := srtm.NewClient(cfg.Source, cfg.HTTPTimeout, logger, observability.NewMetrics(prometheus.NewRegistry()))
			if err != nil {
				return err
			}
			ix, err := srtm.OpenIndex(cmd.Context(), cfg.SRTMDir, client, true, logger)
			if err != nil {
				return err
			}
			logger.Info("done", "tiles", len(ix.Tiles), "file", filepath.Join(cfg.SRTMDir, srtm.IndexFileName))
			return nil
		},
	}
}
