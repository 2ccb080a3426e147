package domain

import "errors"

// Sentinel errors returned by bounds resolution and the extraction pipeline.
// Callers match them with errors.Is; the returned errors carry context via
// fmt.Errorf wrapping.
var (
	// ErrDegenerateBounds means min equals max on one axis.
	ErrDegenerateBounds = errors.New("degenerate bounds")

	// ErrCoordinateOutOfRange means a resolved rectangle leaves the ±90/±180 range.
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrInvalidArgument covers non-positive sizes, invalid zoom levels and
	// non-numeric parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidMapLink means a URL matches neither web map encoding.
	ErrInvalidMapLink = errors.New("invalid slippy map link")

	// ErrNoBoundsSpecified means no rectangle was resolved from the options.
	ErrNoBoundsSpecified = errors.New("no bounds specified")

	// ErrRegionDataUnavailable is the non-fatal per-region "no elevation data" condition.
	ErrRegionDataUnavailable = errors.New("region data unavailable")
)
