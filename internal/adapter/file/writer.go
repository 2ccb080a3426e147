// Package file writes peak markers to KML or GeoJSON files.
package file

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

// Output formats accepted by WriterFor.
const (
	FormatKML     = "kml"
	FormatGeoJSON = "geojson"
)

const (
	kmlHeader = `<?xml version="1.0" encoding="utf-8"?> <kml xmlns="http://earth.google.com/kml/2.2" ><Document>`
	kmlFooter = `</Document></kml>`
)

// MarkerWriter serializes a complete marker document.
type MarkerWriter interface {
	WriteMarkers(w io.Writer, markers []domain.PeakMarker) error
}

// WriterFor returns the writer for an output format.
func WriterFor(format string) (MarkerWriter, error) {
	switch format {
	case FormatKML:
		return KMLWriter{}, nil
	case FormatGeoJSON:
		return GeoJSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q: %w", format, domain.ErrInvalidArgument)
	}
}

// KMLWriter writes one Placemark per marker.
type KMLWriter struct{}

func (KMLWriter) WriteMarkers(w io.Writer, markers []domain.PeakMarker) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, kmlHeader)
	for _, m := range markers {
		bw.WriteString("<Placemark><name>")
		if err := xml.EscapeText(bw, []byte(m.Label)); err != nil {
			return err
		}
		fmt.Fprintf(bw, "</name><Point><coordinates>%s,%s</coordinates></Point></Placemark>\n",
			formatCoord(m.Longitude), formatCoord(m.Latitude))
	}
	fmt.Fprintln(bw, kmlFooter)
	return bw.Flush()
}

// GeoJSONWriter writes a FeatureCollection of Point features.
type GeoJSONWriter struct{}

func (GeoJSONWriter) WriteMarkers(w io.Writer, markers []domain.PeakMarker) error {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Longitude, m.Latitude})
		f.Properties["name"] = m.Label
		f.Properties["elevation"] = m.Elevation
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// WriteFile writes markers to path, replacing any existing file.
func WriteFile(path string, mw MarkerWriter, markers []domain.PeakMarker) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := mw.WriteMarkers(f, markers); err != nil {
		f.Close()
		return fmt.Errorf("write markers: %w", err)
	}
	return f.Close()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
