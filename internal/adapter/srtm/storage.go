// Package srtm loads SRTM3 elevation data from a public mirror, a local file
// cache or a shared Redis store.
package srtm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
	"github.com/couchcryptid/srtm-peaks/internal/observability"
)

// DefaultCacheTiles is the number of decoded tiles kept in memory.
const DefaultCacheTiles = 16

const (
	// maxGridCells caps the surface size of a single region (about 6x6 degrees).
	maxGridCells = 7200 * 7200

	// sampleEpsilon absorbs float error when snapping degrees to the sample lattice.
	sampleEpsilon = 1e-6
)

// ErrAreaTooLarge is returned for a region needing more than maxGridCells
// samples. It aborts the run like any other storage error.
var ErrAreaTooLarge = errors.New("area too large")

// Fetcher downloads the archive of a tile. It returns an error wrapping
// ErrTileNotFound when the mirror has no such tile.
type Fetcher interface {
	FetchTile(ctx context.Context, id TileID) ([]byte, error)
}

// Storage implements domain.ElevationProvider and domain.Releaser on top of
// a tile store, an optional fetcher and an in-memory LRU of decoded tiles.
type Storage struct {
	store   TileStore
	fetcher Fetcher // nil for offline use
	cache   *lruCache[TileID, *Tile]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStorage creates a Storage. A nil fetcher restricts it to stored tiles.
func NewStorage(store TileStore, fetcher Fetcher, cacheTiles int, logger *slog.Logger, metrics *observability.Metrics) *Storage {
	return &Storage{
		store:   store,
		fetcher: fetcher,
		cache:   newTileCache(cacheTiles),
		logger:  logger,
		metrics: metrics,
	}
}

// Release drops all decoded tiles held in memory.
func (s *Storage) Release() {
	s.cache.purge()
	s.logger.Debug("released srtm tile cache")
}

// LoadSurfaceForArea implements domain.ElevationProvider. It returns a nil
// surface when no tile covering the area exists.
func (s *Storage) LoadSurfaceForArea(ctx context.Context, area domain.Rectangle) (domain.Surface, error) {
	north := int(math.Floor(area.MaxLat()*SamplesPerDegree + sampleEpsilon))
	south := int(math.Ceil(area.MinLat()*SamplesPerDegree - sampleEpsilon))
	west := int(math.Ceil(area.MinLng()*SamplesPerDegree - sampleEpsilon))
	east := int(math.Floor(area.MaxLng()*SamplesPerDegree + sampleEpsilon))

	rows, cols := north-south+1, east-west+1
	if rows <= 0 || cols <= 0 {
		return nil, nil
	}
	if rows*cols > maxGridCells {
		return nil, fmt.Errorf("area %s needs %d samples, limit is %d (about 6x6 degrees): %w", area, rows*cols, maxGridCells, ErrAreaTooLarge)
	}

	grid := domain.NewGrid(rows, cols,
		float64(north)/SamplesPerDegree, float64(west)/SamplesPerDegree,
		1.0/SamplesPerDegree, 1.0/SamplesPerDegree)

	found := 0
	for tileLat := floorDiv(south, SamplesPerDegree); tileLat <= floorDiv(north, SamplesPerDegree); tileLat++ {
		for tileLng := floorDiv(west, SamplesPerDegree); tileLng <= floorDiv(east, SamplesPerDegree); tileLng++ {
			tile, err := s.tile(ctx, TileID{Lat: tileLat, Lng: tileLng})
			if err != nil {
				return nil, err
			}
			if tile == nil {
				continue
			}
			found++
			copyTile(grid, tile, north, south, west, east)
		}
	}

	if found == 0 {
		return nil, nil
	}
	return grid, nil
}

// copyTile writes the valid samples of tile that fall in the global sample
// window [south..north] x [west..east] into grid.
func copyTile(grid *domain.Grid, tile *Tile, north, south, west, east int) {
	baseLat := tile.ID.Lat * SamplesPerDegree
	baseLng := tile.ID.Lng * SamplesPerDegree

	for k := max(south, baseLat); k <= min(north, baseLat+SamplesPerDegree); k++ {
		tileRow := baseLat + SamplesPerDegree - k
		for j := max(west, baseLng); j <= min(east, baseLng+SamplesPerDegree); j++ {
			v := tile.Sample(tileRow, j-baseLng)
			if v == domain.VoidElevation {
				continue
			}
			grid.Set(north-k, j-west, v)
		}
	}
}

// tile returns a decoded tile, or nil when it does not exist anywhere.
func (s *Storage) tile(ctx context.Context, id TileID) (*Tile, error) {
	if t, ok := s.cache.get(id); ok {
		s.metrics.TileCache.WithLabelValues("hit").Inc()
		return t, nil
	}
	s.metrics.TileCache.WithLabelValues("miss").Inc()

	t, err := s.loadTile(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.put(id, t)
	return t, nil
}

func (s *Storage) loadTile(ctx context.Context, id TileID) (*Tile, error) {
	name := id.Name()

	data, ok, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if ok {
		t, err := DecodeArchive(id, data)
		if err == nil {
			return t, nil
		}
		s.logger.Warn("cached srtm tile is corrupt, downloading again", "tile", name, "error", err)
	}

	if s.fetcher == nil {
		return nil, nil
	}

	s.logger.Info("downloading srtm tile", "tile", name)
	data, err = s.fetcher.FetchTile(ctx, id)
	if errors.Is(err, ErrTileNotFound) {
		s.logger.Debug("srtm tile not available", "tile", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", name, err)
	}

	t, err := DecodeArchive(id, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, name, data); err != nil {
		return nil, err
	}
	return t, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
