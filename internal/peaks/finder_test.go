package peaks

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

const step = 1.0 / 1200 // 3 arc seconds, about 92 m

// flatGrid returns a size x size grid at elevation base, anchored at (0.05, 10).
func flatGrid(size int, base int16) *domain.Grid {
	g := domain.NewGrid(size, size, 0.05, 10, step, step)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			g.Set(r, c, base)
		}
	}
	return g
}

func labels(markers []domain.PeakMarker) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = m.Label
	}
	return out
}

func TestFindPeaks_OrderedByElevation(t *testing.T) {
	g := flatGrid(30, 100)
	g.Set(20, 20, 400)
	g.Set(5, 5, 500)
	g.Set(12, 25, 450)

	got, err := NewFinder(DefaultMinSeparation).FindPeaks(g, 0)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"500", "450", "400"}, labels(got)); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	lat, lng := g.Position(5, 5)
	assert.InDelta(t, lat, got[0].Latitude, 1e-12)
	assert.InDelta(t, lng, got[0].Longitude, 1e-12)
	assert.Equal(t, int16(500), got[0].Elevation)
}

func TestFindPeaks_MaxCount(t *testing.T) {
	g := flatGrid(30, 100)
	g.Set(5, 5, 500)
	g.Set(20, 20, 400)

	got, err := NewFinder(DefaultMinSeparation).FindPeaks(g, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"500"}, labels(got))
}

func TestFindPeaks_SuppressesNearbyLowerPeak(t *testing.T) {
	g := flatGrid(30, 100)
	g.Set(5, 5, 500)
	g.Set(5, 8, 450) // about 280 m east

	got, err := NewFinder(DefaultMinSeparation).FindPeaks(g, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"500"}, labels(got))

	got, err = NewFinder(0).FindPeaks(g, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "450"}, labels(got))
}

func TestFindPeaks_SuppressedPeaksDoNotUseBudget(t *testing.T) {
	g := flatGrid(30, 100)
	g.Set(5, 5, 500)
	g.Set(5, 7, 480)
	g.Set(25, 25, 300)

	got, err := NewFinder(DefaultMinSeparation).FindPeaks(g, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "300"}, labels(got))
}

func TestFindPeaks_Plateau(t *testing.T) {
	g := flatGrid(20, 100)
	g.Set(10, 10, 300)
	g.Set(10, 11, 300)
	g.Set(11, 10, 300)

	got, err := NewFinder(0).FindPeaks(g, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	lat, lng := g.Position(10, 10)
	assert.InDelta(t, lat, got[0].Latitude, 1e-12)
	assert.InDelta(t, lng, got[0].Longitude, 1e-12)
}

func TestFindPeaks_ShelfBelowSummitIsNotAPeak(t *testing.T) {
	g := flatGrid(20, 100)
	for c := 5; c <= 12; c++ {
		g.Set(10, c, 200)
	}
	g.Set(10, 13, 300)

	got, err := NewFinder(0).FindPeaks(g, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"300"}, labels(got))
}

func TestFindPeaks_PlateauTouchingBorder(t *testing.T) {
	g := flatGrid(20, 100)
	for c := 0; c <= 4; c++ {
		g.Set(10, c, 200)
	}

	got, err := NewFinder(0).FindPeaks(g, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindPeaks_VoidsAndBorders(t *testing.T) {
	g := flatGrid(20, 100)
	g.Set(0, 0, 999)  // border, never reported
	g.Set(19, 7, 999) // border
	g.Set(10, 10, 250)
	g.Set(9, 9, domain.VoidElevation)
	g.Set(11, 11, domain.VoidElevation)

	got, err := NewFinder(0).FindPeaks(g, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"250"}, labels(got))
}

func TestFindPeaks_FlatSurface(t *testing.T) {
	g := domain.NewGrid(10, 10, 0, 0, step, step)

	got, err := NewFinder(DefaultMinSeparation).FindPeaks(g, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindPeaks_NilSurface(t *testing.T) {
	_, err := NewFinder(DefaultMinSeparation).FindPeaks(nil, 0)
	assert.Error(t, err)
}
