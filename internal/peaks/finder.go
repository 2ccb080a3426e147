// Package peaks extracts summit markers from an elevation surface.
package peaks

import (
	"errors"
	"slices"
	"strconv"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

const (
	// DefaultMinSeparation is the minimum distance in meters between two reported peaks.
	DefaultMinSeparation = 500.0

	earthRadiusMeters = 6371000.0
)

// Finder reports local maxima of a surface, highest first, dropping any peak
// that lies within MinSeparation of a higher one.
type Finder struct {
	MinSeparation float64
}

// NewFinder creates a Finder. A non-positive separation disables suppression.
func NewFinder(minSeparation float64) *Finder {
	return &Finder{MinSeparation: minSeparation}
}

type candidate struct {
	row, col  int
	elevation int16
	point     s2.Point
}

// FindPeaks implements domain.PeakFinder. maxCount <= 0 returns every peak.
func (f *Finder) FindPeaks(s domain.Surface, maxCount int) ([]domain.PeakMarker, error) {
	if s == nil {
		return nil, errors.New("find peaks: nil surface")
	}

	candidates := localMaxima(s)
	// Stable so equal elevations keep scan order.
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return int(b.elevation) - int(a.elevation)
	})

	var kept []candidate
	for _, c := range candidates {
		if maxCount > 0 && len(kept) >= maxCount {
			break
		}
		if f.tooClose(c, kept) {
			continue
		}
		kept = append(kept, c)
	}

	markers := make([]domain.PeakMarker, 0, len(kept))
	for _, c := range kept {
		lat, lng := s.Position(c.row, c.col)
		markers = append(markers, domain.PeakMarker{
			Label:     strconv.Itoa(int(c.elevation)),
			Longitude: lng,
			Latitude:  lat,
			Elevation: c.elevation,
		})
	}
	return markers, nil
}

func (f *Finder) tooClose(c candidate, kept []candidate) bool {
	if f.MinSeparation <= 0 {
		return false
	}
	limit := s1.Angle(f.MinSeparation / earthRadiusMeters)
	for _, k := range kept {
		if c.point.Distance(k.point) < limit {
			return true
		}
	}
	return false
}

// localMaxima scans the interior cells. A cell qualifies when no valid
// neighbor is higher. Cells of equal elevation form a plateau that qualifies
// only as a whole: no cell bordering it may be higher and none of its cells
// may lie on the surface border. A qualifying plateau is reported once, at
// its first cell in scan order.
func localMaxima(s domain.Surface) []candidate {
	rows, cols := s.Rows(), s.Cols()
	visited := make([]bool, rows*cols)
	var out []candidate
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			if visited[r*cols+c] {
				continue
			}
			v, ok := s.Elevation(r, c)
			if !ok || hasHigherNeighbor(s, r, c, v) {
				continue
			}
			if !isSummitPlateau(s, r, c, v, visited) {
				continue
			}
			lat, lng := s.Position(r, c)
			out = append(out, candidate{
				row: r, col: c,
				elevation: v,
				point:     s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng)),
			})
		}
	}
	return out
}

func hasHigherNeighbor(s domain.Surface, r, c int, v int16) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if n, ok := s.Elevation(r+dr, c+dc); ok && n > v {
				return true
			}
		}
	}
	return false
}

// isSummitPlateau flood-fills the plateau of elevation v containing (r, c),
// marking its cells visited.
func isSummitPlateau(s domain.Surface, r, c int, v int16, visited []bool) bool {
	rows, cols := s.Rows(), s.Cols()
	summit := true
	stack := []int{r*cols + c}
	visited[r*cols+c] = true

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pr, pc := idx/cols, idx%cols
		if pr == 0 || pc == 0 || pr == rows-1 || pc == cols-1 {
			summit = false
		}

		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nr, nc := pr+dr, pc+dc
				if (dr == 0 && dc == 0) || nr < 0 || nc < 0 || nr >= rows || nc >= cols {
					continue
				}
				n, ok := s.Elevation(nr, nc)
				if !ok {
					continue
				}
				if n > v {
					summit = false
					continue
				}
				if n == v && !visited[nr*cols+nc] {
					visited[nr*cols+nc] = true
					stack = append(stack, nr*cols+nc)
				}
			}
		}
	}
	return summit
}
