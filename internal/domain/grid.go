package domain

import "math"

// VoidElevation marks a missing sample in SRTM data.
const VoidElevation int16 = math.MinInt16

// Grid is an in-memory Surface. Cell (0, 0) is centered on (North, West) and
// rows advance south by LatStep, columns east by LngStep.
type Grid struct {
	North, West      float64
	LatStep, LngStep float64

	rows, cols int
	data       []int16
}

// NewGrid allocates a rows x cols grid filled with VoidElevation.
func NewGrid(rows, cols int, north, west, latStep, lngStep float64) *Grid {
	data := make([]int16, rows*cols)
	for i := range data {
		data[i] = VoidElevation
	}
	return &Grid{
		North: north, West: west,
		LatStep: latStep, LngStep: lngStep,
		rows: rows, cols: cols,
		data: data,
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Set stores a sample. Out-of-grid writes are ignored.
func (g *Grid) Set(row, col int, v int16) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return
	}
	g.data[row*g.cols+col] = v
}

// Elevation implements Surface.
func (g *Grid) Elevation(row, col int) (int16, bool) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0, false
	}
	v := g.data[row*g.cols+col]
	if v == VoidElevation {
		return 0, false
	}
	return v, true
}

// Position implements Surface.
func (g *Grid) Position(row, col int) (lat, lng float64) {
	return g.North - float64(row)*g.LatStep, g.West + float64(col)*g.LngStep
}

// Statistics implements Surface.
func (g *Grid) Statistics() ElevationStats {
	st := ElevationStats{Points: len(g.data)}
	first := true
	for _, v := range g.data {
		if v == VoidElevation {
			st.Missing++
			continue
		}
		if first {
			st.Min, st.Max = v, v
			first = false
			continue
		}
		st.Min = min(st.Min, v)
		st.Max = max(st.Max, v)
	}
	return st
}
