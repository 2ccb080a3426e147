package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCorners(t *testing.T) {
	t.Run("ordered corners", func(t *testing.T) {
		r, err := Resolve(Corners{MinLat: 10, MinLng: 20, MaxLat: 11, MaxLng: 21})
		require.NoError(t, err)
		assert.Equal(t, 20.0, r.MinLng())
		assert.Equal(t, 10.0, r.MinLat())
		assert.Equal(t, 21.0, r.MaxLng())
		assert.Equal(t, 11.0, r.MaxLat())
	})

	t.Run("swap invariance", func(t *testing.T) {
		want, err := Resolve(Corners{MinLat: 10, MinLng: 20, MaxLat: 11, MaxLng: 21})
		require.NoError(t, err)

		for _, c := range []Corners{
			{MinLat: 11, MinLng: 21, MaxLat: 10, MaxLng: 20},
			{MinLat: 11, MinLng: 20, MaxLat: 10, MaxLng: 21},
			{MinLat: 10, MinLng: 21, MaxLat: 11, MaxLng: 20},
		} {
			got, err := Resolve(c)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%+v", c)
		}
	})

	t.Run("edge values on the inclusive side", func(t *testing.T) {
		r, err := Resolve(Corners{MinLat: 89, MinLng: 179, MaxLat: 90, MaxLng: 180})
		require.NoError(t, err)
		assert.Equal(t, 90.0, r.MaxLat())
		assert.Equal(t, 180.0, r.MaxLng())
	})

	tests := []struct {
		name    string
		corners Corners
		wantErr error
	}{
		{"equal latitudes", Corners{MinLat: 10, MinLng: 20, MaxLat: 10, MaxLng: 21}, ErrDegenerateBounds},
		{"equal longitudes", Corners{MinLat: 10, MinLng: 20, MaxLat: 11, MaxLng: 20}, ErrDegenerateBounds},
		{"degenerate before range", Corners{MinLat: 95, MinLng: 20, MaxLat: 95, MaxLng: 21}, ErrDegenerateBounds},
		{"south pole excluded", Corners{MinLat: -90, MinLng: 20, MaxLat: -89, MaxLng: 21}, ErrCoordinateOutOfRange},
		{"latitude above 90", Corners{MinLat: 89, MinLng: 20, MaxLat: 90.5, MaxLng: 21}, ErrCoordinateOutOfRange},
		{"antimeridian west excluded", Corners{MinLat: 10, MinLng: -180, MaxLat: 11, MaxLng: -179}, ErrCoordinateOutOfRange},
		{"longitude above 180", Corners{MinLat: 10, MinLng: 179, MaxLat: 11, MaxLng: 181}, ErrCoordinateOutOfRange},
		{"swapped then out of range", Corners{MinLat: 10, MinLng: 200, MaxLat: 11, MaxLng: 20}, ErrCoordinateOutOfRange},
		{"NaN", Corners{MinLat: math.NaN(), MinLng: 20, MaxLat: 11, MaxLng: 21}, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.corners)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveCenterRadius(t *testing.T) {
	t.Run("center is preserved", func(t *testing.T) {
		r, err := Resolve(CenterRadius{Lat: 47.5, Lng: 11.2, SizeKm: 10})
		require.NoError(t, err)

		lat, lng := r.Center()
		assert.InDelta(t, 47.5, lat, 1e-9)
		assert.InDelta(t, 11.2, lng, 1e-9)
	})

	t.Run("deltas match the conversion", func(t *testing.T) {
		r, err := Resolve(CenterRadius{Lat: 60, Lng: 0, SizeKm: 4})
		require.NoError(t, err)

		latDelta, lngDelta, err := KmToDegrees(4, 60)
		require.NoError(t, err)
		assert.InDelta(t, latDelta, r.MaxLat()-r.MinLat(), 1e-9)
		assert.InDelta(t, lngDelta, r.MaxLng()-r.MinLng(), 1e-9)
	})

	t.Run("non-positive size", func(t *testing.T) {
		_, err := Resolve(CenterRadius{Lat: 10, Lng: 10, SizeKm: 0})
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = Resolve(CenterRadius{Lat: 10, Lng: 10, SizeKm: -3})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("box crossing the pole", func(t *testing.T) {
		_, err := Resolve(CenterRadius{Lat: 89.99, Lng: 10, SizeKm: 10})
		assert.ErrorIs(t, err, ErrCoordinateOutOfRange)
	})

	t.Run("box crossing the antimeridian", func(t *testing.T) {
		_, err := Resolve(CenterRadius{Lat: 0, Lng: 179.99, SizeKm: 10})
		assert.ErrorIs(t, err, ErrCoordinateOutOfRange)
	})
}

func TestResolveMapLink(t *testing.T) {
	r, err := Resolve(MapLink{URL: "https://www.openstreetmap.org/#map=18/50.07499/10.21574"})
	require.NoError(t, err)

	lat, lng := r.Center()
	assert.InDelta(t, 50.07499, lat, 1e-9)
	assert.InDelta(t, 10.21574, lng, 1e-9)

	_, err = Resolve(MapLink{URL: "https://www.openstreetmap.org/"})
	assert.ErrorIs(t, err, ErrInvalidMapLink)

	_, err = Resolve(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseBoundsArgs(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		params  []string
		want    BoundsSpec
		wantErr bool
	}{
		{
			name:   "corners are lat first",
			kind:   KindCorners,
			params: []string{"10", "20", "11", "21"},
			want:   Corners{MinLat: 10, MinLng: 20, MaxLat: 11, MaxLng: 21},
		},
		{
			name:   "center radius",
			kind:   KindCenterRadius,
			params: []string{"47.5", " 11.25", "3"},
			want:   CenterRadius{Lat: 47.5, Lng: 11.25, SizeKm: 3},
		},
		{
			name:   "map link",
			kind:   KindMapLink,
			params: []string{"https://www.openstreetmap.org/#map=13/50/10"},
			want:   MapLink{URL: "https://www.openstreetmap.org/#map=13/50/10"},
		},
		{name: "non-numeric", kind: KindCorners, params: []string{"10", "abc", "11", "21"}, wantErr: true},
		{name: "comma decimal", kind: KindCenterRadius, params: []string{"47,5", "11", "3"}, wantErr: true},
		{name: "hex float", kind: KindCorners, params: []string{"0x1p3", "10", "11", "0x1.8p3"}, wantErr: true},
		{name: "digit separator", kind: KindCorners, params: []string{"1_0", "10", "11", "12"}, wantErr: true},
		{name: "infinity", kind: KindCenterRadius, params: []string{"47", "11", "Inf"}, wantErr: true},
		{name: "wrong arity", kind: KindCenterRadius, params: []string{"1", "2"}, wantErr: true},
		{name: "unknown kind", kind: "bounds4", params: []string{"1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoundsArgs(tt.kind, tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecimal(t *testing.T) {
	for in, want := range map[string]float64{
		"10": 10, "-33.5": -33.5, "+1.": 1, ".25": 0.25, " 47.1 ": 47.1, "1e3": 1000, "-2.5E-1": -0.25,
	} {
		got, err := ParseDecimal(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}

	for _, in := range []string{"", "-", ".", "0x10", "0x1p3", "1_000", "NaN", "Inf", "-inf", "1,5", "1e", "e5", "١٢"} {
		_, err := ParseDecimal(in)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%q", in)
	}
}

func TestBoundsList(t *testing.T) {
	var l BoundsList

	_, err := l.Rectangles()
	assert.ErrorIs(t, err, ErrNoBoundsSpecified)

	first, err := l.Add(Corners{MinLat: 1, MinLng: 1, MaxLat: 2, MaxLng: 2})
	require.NoError(t, err)
	_, err = l.Add(Corners{MinLat: 1, MinLng: 1, MaxLat: 1, MaxLng: 2})
	require.ErrorIs(t, err, ErrDegenerateBounds)
	second, err := l.Add(CenterRadius{Lat: 5, Lng: 5, SizeKm: 1})
	require.NoError(t, err)

	rects, err := l.Rectangles()
	require.NoError(t, err)
	assert.Equal(t, []Rectangle{first, second}, rects)
	assert.Equal(t, 2, l.Len())
}

func TestRectangle(t *testing.T) {
	r, err := Resolve(Corners{MinLat: -1, MinLng: -1, MaxLat: 1, MaxLng: 1})
	require.NoError(t, err)

	shifted := r.Shift(-0.5, -0.5)
	assert.Equal(t, "-1.5,-1.5,0.5,0.5", shifted.String())
	assert.Equal(t, "-1,-1,1,1", r.String(), "shift must not modify the receiver")

	assert.Equal(t, orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}, r.Bound())
	assert.True(t, r.Contains(0, 0))
	assert.True(t, r.Contains(1, -1))
	assert.False(t, r.Contains(1.1, 0))
	assert.False(t, r.Contains(0, 1.1))
	assert.False(t, r.Contains(-1.0001, 0))

	// Latitude and longitude must not be swapped on the way to orb's [lng, lat] points.
	tall, err := Resolve(Corners{MinLat: 40, MinLng: 10, MaxLat: 50, MaxLng: 11})
	require.NoError(t, err)
	assert.True(t, tall.Contains(45, 10.5))
	assert.False(t, tall.Contains(10.5, 45))
}
