package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// mapFragmentPattern matches the OpenStreetMap fragment form "map=zoom/lat/lng".
var mapFragmentPattern = regexp.MustCompile(`map=(\d+)/([-.\d]+)/([-.\d]+)`)

// ParseMapLink parses a slippy map URL into a CenterRadius or Corners spec.
//
// A non-empty fragment is authoritative: "#map=zoom/lat/lng" yields a box
// centered on the point and sized for the zoom level. Otherwise the query
// string must carry lat, lon and zoom, or a bbox of minLng,minLat,maxLng,maxLat.
func ParseMapLink(raw string) (BoundsSpec, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse map link %q: %w", raw, ErrInvalidMapLink)
	}

	if u.Fragment != "" {
		return parseMapFragment(raw, u.Fragment)
	}
	if u.RawQuery != "" {
		return parseMapQuery(raw, u.Query())
	}
	return nil, fmt.Errorf("map link %q has neither fragment nor query: %w", raw, ErrInvalidMapLink)
}

func parseMapFragment(raw, fragment string) (BoundsSpec, error) {
	m := mapFragmentPattern.FindStringSubmatch(fragment)
	if m == nil {
		return nil, fmt.Errorf("map link %q: fragment %q does not match map=zoom/lat/lng: %w", raw, fragment, ErrInvalidMapLink)
	}
	zoom, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("map link %q: zoom %q: %w", raw, m[1], ErrInvalidMapLink)
	}
	lat, err := ParseDecimal(m[2])
	if err != nil {
		return nil, fmt.Errorf("map link %q: latitude %q: %w", raw, m[2], ErrInvalidMapLink)
	}
	lng, err := ParseDecimal(m[3])
	if err != nil {
		return nil, fmt.Errorf("map link %q: longitude %q: %w", raw, m[3], ErrInvalidMapLink)
	}
	return centerForZoom(lat, lng, zoom)
}

func parseMapQuery(raw string, q url.Values) (BoundsSpec, error) {
	if q.Has("lat") && q.Has("lon") && q.Has("zoom") {
		zoom, err := strconv.Atoi(q.Get("zoom"))
		if err != nil {
			return nil, fmt.Errorf("map link %q: zoom %q: %w", raw, q.Get("zoom"), ErrInvalidMapLink)
		}
		lat, err := ParseDecimal(q.Get("lat"))
		if err != nil {
			return nil, fmt.Errorf("map link %q: lat %q: %w", raw, q.Get("lat"), ErrInvalidMapLink)
		}
		lng, err := ParseDecimal(q.Get("lon"))
		if err != nil {
			return nil, fmt.Errorf("map link %q: lon %q: %w", raw, q.Get("lon"), ErrInvalidMapLink)
		}
		return centerForZoom(lat, lng, zoom)
	}

	if q.Has("bbox") {
		parts := strings.Split(q.Get("bbox"), ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("map link %q: bbox needs 4 values, got %d: %w", raw, len(parts), ErrInvalidMapLink)
		}
		nums, err := parseFloats(parts)
		if err != nil {
			return nil, fmt.Errorf("map link %q: bbox: %w", raw, ErrInvalidMapLink)
		}
		// bbox is longitude first.
		return Corners{MinLng: nums[0], MinLat: nums[1], MaxLng: nums[2], MaxLat: nums[3]}, nil
	}

	return nil, fmt.Errorf("map link %q: query has neither lat/lon/zoom nor bbox: %w", raw, ErrInvalidMapLink)
}

func centerForZoom(lat, lng float64, zoom int) (BoundsSpec, error) {
	size, err := BoxSizeForZoom(zoom)
	if err != nil {
		return nil, err
	}
	return CenterRadius{Lat: lat, Lng: lng, SizeKm: size}, nil
}
