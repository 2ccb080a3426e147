package domain

// PeakMarker is a named point marker written to the output file.
type PeakMarker struct {
	Label     string  `json:"label"`
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Elevation int16   `json:"elevation"` // meters
}
