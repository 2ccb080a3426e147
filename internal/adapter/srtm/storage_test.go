package srtm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
	"github.com/couchcryptid/srtm-peaks/internal/observability"
)

// --- mocks ---

type fakeFetcher struct {
	archives map[TileID][]byte
	err      error
	calls    int
}

func (f *fakeFetcher) FetchTile(_ context.Context, id TileID) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.archives[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id.Name(), ErrTileNotFound)
	}
	return data, nil
}

func mustRect(t *testing.T, minLat, minLng, maxLat, maxLng float64) domain.Rectangle {
	t.Helper()
	r, err := domain.Resolve(domain.Corners{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng})
	require.NoError(t, err)
	return r
}

func storedTile(t *testing.T, store TileStore, tile *Tile) {
	t.Helper()
	archive, err := ZipHGT(tile)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), tile.ID.Name(), archive))
}

func flatTile(id TileID, v int16) *Tile {
	tile := NewTile(id)
	for r := 0; r < TileSize; r++ {
		for c := 0; c < TileSize; c++ {
			tile.Set(r, c, v)
		}
	}
	return tile
}

// --- tests ---

func TestStorage_LoadSurfaceForArea(t *testing.T) {
	store := newMemStore()
	tile := flatTile(TileID{Lat: 50, Lng: 10}, 300)
	tile.Set(310, 320, 1234)
	storedTile(t, store, tile)

	s := NewStorage(store, nil, 4, discardLogger(), observability.NewMetricsForTesting())

	surface, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, 50.5, 10.25, 50.75, 10.5))
	require.NoError(t, err)
	require.NotNil(t, surface)

	assert.Equal(t, 301, surface.Rows())
	assert.Equal(t, 301, surface.Cols())

	v, ok := surface.Elevation(10, 20)
	require.True(t, ok)
	assert.Equal(t, int16(1234), v)

	lat, lng := surface.Position(10, 20)
	wantLat, wantLng := tile.Position(310, 320)
	assert.InDelta(t, wantLat, lat, 1e-9)
	assert.InDelta(t, wantLng, lng, 1e-9)

	assert.Equal(t, domain.ElevationStats{Points: 301 * 301, Min: 300, Max: 1234}, surface.Statistics())
}

func TestStorage_AreaAcrossTiles(t *testing.T) {
	store := newMemStore()
	storedTile(t, store, flatTile(TileID{Lat: 50, Lng: 10}, 100))

	s := NewStorage(store, nil, 4, discardLogger(), observability.NewMetricsForTesting())
	area := mustRect(t, 50.75, 10.25, 51.25, 10.5)

	surface, err := s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	require.NotNil(t, surface)

	stats := surface.Statistics()
	assert.Equal(t, 601*301, stats.Points)
	assert.Equal(t, 300*301, stats.Missing, "northern half has no tile")

	storedTile(t, store, flatTile(TileID{Lat: 51, Lng: 10}, 200))
	s.Release()

	surface, err = s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	stats = surface.Statistics()
	assert.Zero(t, stats.Missing)
	assert.Equal(t, int16(100), stats.Min)
	assert.Equal(t, int16(200), stats.Max)
}

func TestStorage_NoTiles(t *testing.T) {
	s := NewStorage(newMemStore(), nil, 4, discardLogger(), observability.NewMetricsForTesting())

	surface, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, 10, 10, 10.5, 10.5))
	require.NoError(t, err)
	assert.Nil(t, surface)
}

func TestStorage_SouthWestHemisphere(t *testing.T) {
	store := newMemStore()
	tile := flatTile(TileID{Lat: -1, Lng: -1}, 50)
	tile.Set(600, 600, 777) // (-0.5, -0.5)
	storedTile(t, store, tile)

	s := NewStorage(store, nil, 4, discardLogger(), observability.NewMetricsForTesting())
	surface, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, -0.75, -0.75, -0.25, -0.25))
	require.NoError(t, err)
	require.NotNil(t, surface)

	assert.Equal(t, int16(777), surface.Statistics().Max)
	v, ok := surface.Elevation(300, 300)
	require.True(t, ok)
	assert.Equal(t, int16(777), v)
}

func TestStorage_DownloadsAndStoresMissingTiles(t *testing.T) {
	archive, err := ZipHGT(flatTile(TileID{Lat: 50, Lng: 10}, 400))
	require.NoError(t, err)

	store := newMemStore()
	fetcher := &fakeFetcher{archives: map[TileID][]byte{{Lat: 50, Lng: 10}: archive}}
	metrics := observability.NewMetricsForTesting()
	s := NewStorage(store, fetcher, 4, discardLogger(), metrics)
	area := mustRect(t, 50.25, 10.25, 50.5, 10.5)

	surface, err := s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	require.NotNil(t, surface)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, archive, store.data["N50E010"])

	_, err = s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "decoded tile is served from memory")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TileCache.WithLabelValues("hit")), 0)

	s.Release()
	_, err = s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "released tiles are reloaded from the store")
	assert.Equal(t, 1, store.puts)
}

func TestStorage_MissingTileIsRemembered(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewStorage(newMemStore(), fetcher, 4, discardLogger(), observability.NewMetricsForTesting())
	area := mustRect(t, 10.25, 10.25, 10.5, 10.5)

	surface, err := s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	assert.Nil(t, surface)

	_, err = s.LoadSurfaceForArea(context.Background(), area)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestStorage_FetchErrorIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewStorage(newMemStore(), &fakeFetcher{err: boom}, 4, discardLogger(), observability.NewMetricsForTesting())

	_, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, 10.25, 10.25, 10.5, 10.5))
	assert.ErrorIs(t, err, boom)
}

func TestStorage_CorruptStoredTileIsDownloadedAgain(t *testing.T) {
	archive, err := ZipHGT(flatTile(TileID{Lat: 50, Lng: 10}, 400))
	require.NoError(t, err)

	store := newMemStore()
	store.data["N50E010"] = []byte("truncated")
	fetcher := &fakeFetcher{archives: map[TileID][]byte{{Lat: 50, Lng: 10}: archive}}
	s := NewStorage(store, fetcher, 4, discardLogger(), observability.NewMetricsForTesting())

	surface, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, 50.25, 10.25, 50.5, 10.5))
	require.NoError(t, err)
	require.NotNil(t, surface)
	assert.Equal(t, archive, store.data["N50E010"])
}

func TestStorage_AreaTooLarge(t *testing.T) {
	s := NewStorage(newMemStore(), nil, 4, discardLogger(), observability.NewMetricsForTesting())

	_, err := s.LoadSurfaceForArea(context.Background(), mustRect(t, 10, 10, 20, 20))
	assert.ErrorIs(t, err, ErrAreaTooLarge)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 0, floorDiv(0, 1200))
	assert.Equal(t, 0, floorDiv(1199, 1200))
	assert.Equal(t, 1, floorDiv(1200, 1200))
	assert.Equal(t, -1, floorDiv(-1, 1200))
	assert.Equal(t, -1, floorDiv(-1200, 1200))
	assert.Equal(t, -2, floorDiv(-1201, 1200))
}
