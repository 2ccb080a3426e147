// Package domain models search regions and elevation data for peak extraction.
//
// # Bounds
//
// A search region reaches the tool in one of three encodings, all normalized
// into a [Rectangle] by [Resolve]:
//
//	Corners       two opposite corners, lat-first: "minLat,minLng,maxLat,maxLng".
//	              Reversed pairs are swapped; equal values on an axis are rejected.
//	CenterRadius  a center plus the box edge length in kilometers.
//	MapLink       a slippy map URL, e.g.
//	              https://www.openstreetmap.org/#map=13/50.07499/10.21574
//	              https://www.openstreetmap.org/?lat=50.07&lon=10.21&zoom=13
//	              https://www.openstreetmap.org/?bbox=10.1,50.0,10.3,50.1
//
// A non-empty URL fragment is authoritative; the query string is only read
// when the fragment is empty. The bbox parameter is longitude first.
//
// # Distance to degrees
//
// Box sizes are converted with a spherical earth of radius 6360 km. The
// latitude delta is constant; the longitude delta is divided by cos(lat) and
// grows toward the poles:
//
//	latDelta = sizeKm/2 * 1000 / (2π * 6360000) * 360
//	lngDelta = latDelta / cos(lat)
//
// Corners are placed at center ± delta/2.
//
// # Zoom levels
//
// Slippy map zoom levels 2..18 map to ground distances from a fixed table
// (111000 km at zoom 2 down to 1693 m at zoom 18). The box size for a zoom is
// the ground distance seen on a 30 cm wide screen:
//
//	sizeKm = groundDistance * 30 / 100 / 1000
//
// # Elevation
//
// [ElevationProvider] loads a [Surface] for a region; [PeakFinder] extracts
// [PeakMarker] values from it. SRTM voids are stored as [VoidElevation] and
// reported as missing points in [ElevationStats].
package domain
