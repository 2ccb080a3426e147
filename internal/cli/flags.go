package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

// boundsValue is a repeatable pflag.Value for one bounds option kind. All
// kinds share one BoundsList, so rectangles keep their order of appearance
// across options.
type boundsValue struct {
	kind string
	list *domain.BoundsList
	raw  []string
}

func newBoundsValue(kind string, list *domain.BoundsList) *boundsValue {
	return &boundsValue{kind: kind, list: list}
}

func (b *boundsValue) Set(value string) error {
	params := splitParams(value, domain.BoundsArity(b.kind))
	spec, err := domain.ParseBoundsArgs(b.kind, params)
	if err != nil {
		return err
	}
	if _, err := b.list.Add(spec); err != nil {
		return err
	}
	b.raw = append(b.raw, value)
	return nil
}

func (b *boundsValue) String() string { return strings.Join(b.raw, " ") }

func (b *boundsValue) Type() string {
	switch b.kind {
	case domain.KindCorners:
		return "minLat,minLng,maxLat,maxLng"
	case domain.KindCenterRadius:
		return "lat,lng,sizeKm"
	default:
		return "url"
	}
}

// correctionValue parses "corrLng,corrLat".
type correctionValue struct {
	corr *domain.Correction
	set  bool
}

func (c *correctionValue) Set(value string) error {
	params := splitParams(value, 2)
	if len(params) != 2 {
		return fmt.Errorf("corrxy takes 2 parameters, got %d: %w", len(params), domain.ErrInvalidArgument)
	}
	dx, err := domain.ParseDecimal(params[0])
	if err != nil {
		return fmt.Errorf("corrxy longitude %q: %w", params[0], domain.ErrInvalidArgument)
	}
	dy, err := domain.ParseDecimal(params[1])
	if err != nil {
		return fmt.Errorf("corrxy latitude %q: %w", params[1], domain.ErrInvalidArgument)
	}
	*c.corr = domain.Correction{DX: dx, DY: dy}
	c.set = true
	return nil
}

func (c *correctionValue) String() string {
	if !c.set {
		return ""
	}
	return strconv.FormatFloat(c.corr.DX, 'f', -1, 64) + "," + strconv.FormatFloat(c.corr.DY, 'f', -1, 64)
}

func (c *correctionValue) Type() string { return "corrLng,corrLat" }

// splitParams splits a comma separated option value. Single-parameter
// options such as URLs are never split.
func splitParams(value string, arity int) []string {
	if arity == 1 {
		return []string{value}
	}
	return strings.Split(value, ",")
}
