package domain

import (
	"fmt"
	"math"
)

const (
	// earthRadius is the mean radius used for km to degree conversion, in meters.
	earthRadius = 6_360_000

	earthCircumference = earthRadius * 2 * math.Pi

	// screenWidthCm is the physical screen width assumed when turning a zoom
	// level into a box size.
	screenWidthCm = 30.0

	minZoom = 2
)

// zoomGroundDistances maps a slippy map zoom level (index) to the ground
// distance in meters covered at that zoom. Levels 0 and 1 are unsupported.
var zoomGroundDistances = [...]int{
	0, 0, 111000000, 55000000, 28000000, 14000000, 7000000, 3000000, 2000000,
	867000, 433000, 217000, 108000, 54000, 27000, 14000, 6771, 3385, 1693,
}

// MaxZoom is the highest supported zoom level.
const MaxZoom = len(zoomGroundDistances) - 1

// KmToDegrees converts a box size to latitude and longitude deltas at the
// given latitude. The longitude delta grows toward the poles as meridians
// converge.
func KmToDegrees(sizeKm, atLatDeg float64) (latDelta, lngDelta float64, err error) {
	if !(sizeKm > 0) || math.IsInf(sizeKm, 0) {
		return 0, 0, fmt.Errorf("box size %v km must be a positive number: %w", sizeKm, ErrInvalidArgument)
	}
	latDelta = sizeKm / 2 * 1000 / earthCircumference * 360
	lngDelta = latDelta / math.Cos(atLatDeg*math.Pi/180.0)
	return latDelta, lngDelta, nil
}

// ZoomGroundDistance returns the ground distance in meters at a zoom level.
func ZoomGroundDistance(zoom int) (int, error) {
	if zoom < minZoom || zoom > MaxZoom {
		return 0, fmt.Errorf("zoom level %d out of range %d..%d: %w", zoom, minZoom, MaxZoom, ErrInvalidArgument)
	}
	return zoomGroundDistances[zoom], nil
}

// BoxSizeForZoom converts a zoom level to the box size in kilometers seen on
// a screenWidthCm wide screen.
func BoxSizeForZoom(zoom int) (float64, error) {
	d, err := ZoomGroundDistance(zoom)
	if err != nil {
		return 0, err
	}
	return float64(d) * screenWidthCm / 100 / 1000, nil
}
