package domain

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Rectangle is an axis-aligned geographic bounding box in degrees.
//
// Values obtained from Resolve always satisfy minLng < maxLng, minLat < maxLat,
// minLat > -90, maxLat <= 90, minLng > -180 and maxLng <= 180. The fields are
// unexported so the resolver stays the only way to build a valid rectangle.
type Rectangle struct {
	minLng, minLat float64
	maxLng, maxLat float64
}

// MinLng returns the western edge.
func (r Rectangle) MinLng() float64 { return r.minLng }

// MinLat returns the southern edge.
func (r Rectangle) MinLat() float64 { return r.minLat }

// MaxLng returns the eastern edge.
func (r Rectangle) MaxLng() float64 { return r.maxLng }

// MaxLat returns the northern edge.
func (r Rectangle) MaxLat() float64 { return r.maxLat }

// Center returns the midpoint of the corners as (lat, lng).
func (r Rectangle) Center() (lat, lng float64) {
	return (r.minLat + r.maxLat) / 2, (r.minLng + r.maxLng) / 2
}

// Shift moves every coordinate by (dLng, dLat). The result is an elevation
// query region and is not re-validated.
func (r Rectangle) Shift(dLng, dLat float64) Rectangle {
	return Rectangle{
		minLng: r.minLng + dLng,
		minLat: r.minLat + dLat,
		maxLng: r.maxLng + dLng,
		maxLat: r.maxLat + dLat,
	}
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (r Rectangle) Contains(lat, lng float64) bool {
	return r.Bound().Contains(orb.Point{lng, lat})
}

// Bound converts the rectangle to an orb.Bound ([lng, lat] points).
func (r Rectangle) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.minLng, r.minLat},
		Max: orb.Point{r.maxLng, r.maxLat},
	}
}

// String formats the rectangle as "minLng,minLat,maxLng,maxLat" with a period
// as decimal separator.
func (r Rectangle) String() string {
	return fmt.Sprintf("%s,%s,%s,%s",
		formatDegrees(r.minLng), formatDegrees(r.minLat),
		formatDegrees(r.maxLng), formatDegrees(r.maxLat))
}

// Correction is a constant coordinate shift in degrees that compensates a
// known systematic offset in the elevation source.
type Correction struct {
	DX float64 // longitude
	DY float64 // latitude
}

// newRectangle validates sorted corners against the coordinate range.
func newRectangle(minLng, minLat, maxLng, maxLat float64) (Rectangle, error) {
	if minLat <= -90 || maxLat > 90 {
		return Rectangle{}, fmt.Errorf("latitude %s..%s: %w",
			formatDegrees(minLat), formatDegrees(maxLat), ErrCoordinateOutOfRange)
	}
	if minLng <= -180 || maxLng > 180 {
		return Rectangle{}, fmt.Errorf("longitude %s..%s: %w",
			formatDegrees(minLng), formatDegrees(maxLng), ErrCoordinateOutOfRange)
	}
	return Rectangle{minLng: minLng, minLat: minLat, maxLng: maxLng, maxLat: maxLat}, nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
