package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BoundsSpec is one of the three user input encodings of a search region:
// Corners, CenterRadius or MapLink.
type BoundsSpec interface {
	boundsSpec()
}

// Corners is a pair of opposite corners. The pairs may be reversed.
type Corners struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// CenterRadius is a center point plus the box edge length in kilometers.
type CenterRadius struct {
	Lat, Lng float64
	SizeKm   float64
}

// MapLink is a slippy map URL (OpenStreetMap style fragment or query form).
type MapLink struct {
	URL string
}

func (Corners) boundsSpec()      {}
func (CenterRadius) boundsSpec() {}
func (MapLink) boundsSpec()      {}

// Bounds option kinds, named after the command line options that carry them.
const (
	KindCorners      = "bounds1"
	KindCenterRadius = "bounds2"
	KindMapLink      = "bounds3"
)

// BoundsArity returns the number of parameters a bounds option kind takes,
// or 0 for an unknown kind.
func BoundsArity(kind string) int {
	switch kind {
	case KindCorners:
		return 4
	case KindCenterRadius:
		return 3
	case KindMapLink:
		return 1
	default:
		return 0
	}
}

// Resolve converts a bounds spec into a validated Rectangle.
func Resolve(spec BoundsSpec) (Rectangle, error) {
	switch s := spec.(type) {
	case Corners:
		return resolveCorners(s)
	case CenterRadius:
		return resolveCenterRadius(s)
	case MapLink:
		inner, err := ParseMapLink(s.URL)
		if err != nil {
			return Rectangle{}, err
		}
		return Resolve(inner)
	case nil:
		return Rectangle{}, fmt.Errorf("nil bounds: %w", ErrInvalidArgument)
	default:
		return Rectangle{}, fmt.Errorf("unsupported bounds %T: %w", spec, ErrInvalidArgument)
	}
}

func resolveCorners(c Corners) (Rectangle, error) {
	if !finite(c.MinLat, c.MinLng, c.MaxLat, c.MaxLng) {
		return Rectangle{}, fmt.Errorf("corner coordinates must be finite: %w", ErrInvalidArgument)
	}
	if c.MinLat == c.MaxLat {
		return Rectangle{}, fmt.Errorf("latitude %s on both corners: %w", formatDegrees(c.MinLat), ErrDegenerateBounds)
	}
	if c.MinLng == c.MaxLng {
		return Rectangle{}, fmt.Errorf("longitude %s on both corners: %w", formatDegrees(c.MinLng), ErrDegenerateBounds)
	}
	minLat, maxLat := c.MinLat, c.MaxLat
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	minLng, maxLng := c.MinLng, c.MaxLng
	if minLng > maxLng {
		minLng, maxLng = maxLng, minLng
	}
	return newRectangle(minLng, minLat, maxLng, maxLat)
}

func resolveCenterRadius(c CenterRadius) (Rectangle, error) {
	if !finite(c.Lat, c.Lng) {
		return Rectangle{}, fmt.Errorf("center coordinates must be finite: %w", ErrInvalidArgument)
	}
	latDelta, lngDelta, err := KmToDegrees(c.SizeKm, c.Lat)
	if err != nil {
		return Rectangle{}, err
	}
	return newRectangle(
		c.Lng-lngDelta/2, c.Lat-latDelta/2,
		c.Lng+lngDelta/2, c.Lat+latDelta/2,
	)
}

// ParseBoundsArgs converts the raw parameters of a bounds option into a spec.
// bounds1 takes minLat, minLng, maxLat, maxLng; bounds2 takes lat, lng,
// sizeKm; bounds3 takes a single URL.
func ParseBoundsArgs(kind string, params []string) (BoundsSpec, error) {
	arity := BoundsArity(kind)
	if arity == 0 {
		return nil, fmt.Errorf("unknown bounds option %q: %w", kind, ErrInvalidArgument)
	}
	if len(params) != arity {
		return nil, fmt.Errorf("%s takes %d parameters, got %d: %w", kind, arity, len(params), ErrInvalidArgument)
	}
	if kind == KindMapLink {
		return MapLink{URL: strings.TrimSpace(params[0])}, nil
	}

	nums, err := parseFloats(params)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", kind, err)
	}
	if kind == KindCorners {
		return Corners{MinLat: nums[0], MinLng: nums[1], MaxLat: nums[2], MaxLng: nums[3]}, nil
	}
	return CenterRadius{Lat: nums[0], Lng: nums[1], SizeKm: nums[2]}, nil
}

func parseFloats(params []string) ([]float64, error) {
	out := make([]float64, len(params))
	for i, p := range params {
		v, err := ParseDecimal(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// decimalPattern is the accepted number syntax: optional sign, digits with a
// period as decimal separator, optional exponent. Go literal forms such as
// hex floats, digit separators, Inf and NaN are rejected.
var decimalPattern = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// ParseDecimal parses a plain decimal number, ignoring surrounding spaces.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%q is not a number: %w", s, ErrInvalidArgument)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", s, ErrInvalidArgument)
	}
	return v, nil
}

// BoundsList accumulates resolved rectangles in order of appearance.
type BoundsList struct {
	rects []Rectangle
}

// Add resolves spec and appends the rectangle. A failed resolution leaves the
// list unchanged.
func (l *BoundsList) Add(spec BoundsSpec) (Rectangle, error) {
	r, err := Resolve(spec)
	if err != nil {
		return Rectangle{}, err
	}
	l.rects = append(l.rects, r)
	return r, nil
}

// Len returns the number of rectangles added so far.
func (l *BoundsList) Len() int { return len(l.rects) }

// Rectangles returns a copy of the accumulated rectangles, or
// ErrNoBoundsSpecified if none were added.
func (l *BoundsList) Rectangles() ([]Rectangle, error) {
	if len(l.rects) == 0 {
		return nil, ErrNoBoundsSpecified
	}
	out := make([]Rectangle, len(l.rects))
	copy(out, l.rects)
	return out, nil
}
