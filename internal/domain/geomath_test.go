package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKmToDegrees(t *testing.T) {
	t.Run("equator deltas are equal", func(t *testing.T) {
		latDelta, lngDelta, err := KmToDegrees(10, 0)
		require.NoError(t, err)
		assert.InDelta(t, latDelta, lngDelta, 1e-12)
	})

	t.Run("latitude delta follows the 6360 km sphere", func(t *testing.T) {
		latDelta, _, err := KmToDegrees(2, 45)
		require.NoError(t, err)
		// 1 km over a 2π*6360 km circumference.
		assert.InDelta(t, 360/(2*math.Pi*6360), latDelta, 1e-12)
	})

	t.Run("longitude delta doubles at 60 degrees", func(t *testing.T) {
		latDelta, lngDelta, err := KmToDegrees(5, 60)
		require.NoError(t, err)
		assert.InDelta(t, 2*latDelta, lngDelta, 1e-9)
	})

	t.Run("longitude delta grows with absolute latitude", func(t *testing.T) {
		prev := 0.0
		for _, lat := range []float64{0, 15, 30, 45, 60, 75, 85} {
			_, north, err := KmToDegrees(3, lat)
			require.NoError(t, err)
			_, south, err := KmToDegrees(3, -lat)
			require.NoError(t, err)

			assert.InDelta(t, north, south, 1e-12, "lat ±%v", lat)
			assert.Greater(t, north, prev, "lat %v", lat)
			prev = north
		}
	})

	tests := []struct {
		name string
		size float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name+" size", func(t *testing.T) {
			_, _, err := KmToDegrees(tt.size, 10)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestZoomGroundDistance(t *testing.T) {
	t.Run("table strictly decreases over the valid range", func(t *testing.T) {
		prev := math.MaxInt
		for z := 2; z <= MaxZoom; z++ {
			d, err := ZoomGroundDistance(z)
			require.NoError(t, err)
			assert.Less(t, d, prev, "zoom %d", z)
			prev = d
		}
	})

	tests := []struct {
		zoom    int
		want    int
		wantErr bool
	}{
		{zoom: -1, wantErr: true},
		{zoom: 0, wantErr: true},
		{zoom: 1, wantErr: true},
		{zoom: 2, want: 111000000},
		{zoom: 9, want: 867000},
		{zoom: 12, want: 108000},
		{zoom: 13, want: 54000},
		{zoom: 18, want: 1693},
		{zoom: 19, wantErr: true},
	}
	for _, tt := range tests {
		d, err := ZoomGroundDistance(tt.zoom)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, "zoom %d", tt.zoom)
			continue
		}
		require.NoError(t, err, "zoom %d", tt.zoom)
		assert.Equal(t, tt.want, d, "zoom %d", tt.zoom)
	}
}

func TestBoxSizeForZoom(t *testing.T) {
	size, err := BoxSizeForZoom(13)
	require.NoError(t, err)
	assert.InDelta(t, 16.2, size, 1e-9)

	size, err = BoxSizeForZoom(18)
	require.NoError(t, err)
	assert.InDelta(t, 0.5079, size, 1e-9)

	_, err = BoxSizeForZoom(19)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
