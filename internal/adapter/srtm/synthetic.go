package srtm

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Hill is a Gaussian bump used to build synthetic tiles.
type Hill struct {
	Lat, Lng float64
	Height   float64 // meters above the base elevation
	RadiusM  float64 // standard deviation in meters
}

// SynthesizeTile builds a tile at base elevation with the given hills added.
// It is used for offline runs and fixtures; no real terrain is involved.
func SynthesizeTile(id TileID, base int16, hills []Hill) *Tile {
	t := NewTile(id)
	for r := 0; r < TileSize; r++ {
		for c := 0; c < TileSize; c++ {
			lat, lng := t.Position(r, c)
			p := orb.Point{lng, lat}

			h := float64(base)
			for _, hill := range hills {
				if hill.RadiusM <= 0 {
					continue
				}
				d := geo.Distance(p, orb.Point{hill.Lng, hill.Lat})
				if d > 5*hill.RadiusM {
					continue
				}
				h += hill.Height * math.Exp(-(d*d)/(2*hill.RadiusM*hill.RadiusM))
			}
			t.Set(r, c, int16(math.Round(math.Max(math.MinInt16+1, math.Min(math.MaxInt16, h)))))
		}
	}
	return t
}
