package domain

import "context"

// ElevationStats summarizes the samples of a loaded surface.
type ElevationStats struct {
	Points  int   // total grid cells
	Min     int16 // lowest valid sample, meters
	Max     int16 // highest valid sample, meters
	Missing int   // void cells
}

// Surface is a regular elevation grid covering a query region. Row 0 is the
// northern edge and column 0 the western edge.
type Surface interface {
	Statistics() ElevationStats
	Rows() int
	Cols() int

	// Elevation returns the sample at (row, col) and false for void or
	// out-of-grid cells.
	Elevation(row, col int) (int16, bool)

	// Position returns the coordinates of a cell center.
	Position(row, col int) (lat, lng float64)
}

// ElevationProvider loads elevation data for a query region.
type ElevationProvider interface {
	// LoadSurfaceForArea returns nil (or an error wrapping
	// ErrRegionDataUnavailable) when no data covers the area.
	LoadSurfaceForArea(ctx context.Context, area Rectangle) (Surface, error)
}

// Releaser is implemented by providers that hold cached data which can be
// dropped once no further regions will be queried.
type Releaser interface {
	Release()
}

// PeakFinder extracts peaks from a surface, most prominent first.
type PeakFinder interface {
	// FindPeaks returns at most maxCount markers; maxCount <= 0 means no limit.
	FindPeaks(s Surface, maxCount int) ([]PeakMarker, error)
}
