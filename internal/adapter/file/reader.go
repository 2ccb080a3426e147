package file

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

type kmlDocument struct {
	XMLName    xml.Name       `xml:"kml"`
	Placemarks []kmlPlacemark `xml:"Document>Placemark"`
}

type kmlPlacemark struct {
	Name        string `xml:"name"`
	Coordinates string `xml:"Point>coordinates"`
}

// ReadKML parses a document written by KMLWriter. Elevation is recovered
// from numeric labels and left zero otherwise.
func ReadKML(r io.Reader) ([]domain.PeakMarker, error) {
	var doc kmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode kml: %w", err)
	}

	markers := make([]domain.PeakMarker, 0, len(doc.Placemarks))
	for i, pm := range doc.Placemarks {
		parts := strings.Split(strings.TrimSpace(pm.Coordinates), ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("placemark %d: malformed coordinates %q", i+1, pm.Coordinates)
		}
		lng, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("placemark %d: longitude: %w", i+1, err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("placemark %d: latitude: %w", i+1, err)
		}
		markers = append(markers, domain.PeakMarker{
			Label:     pm.Name,
			Longitude: lng,
			Latitude:  lat,
			Elevation: labelElevation(pm.Name),
		})
	}
	return markers, nil
}

// ReadGeoJSON parses a document written by GeoJSONWriter.
func ReadGeoJSON(r io.Reader) ([]domain.PeakMarker, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	markers := make([]domain.PeakMarker, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry is %s, want Point", i+1, f.Geometry.GeoJSONType())
		}
		name := f.Properties.MustString("name", "")
		elevation := f.Properties.MustFloat64("elevation", float64(labelElevation(name)))
		markers = append(markers, domain.PeakMarker{
			Label:     name,
			Longitude: p.Lon(),
			Latitude:  p.Lat(),
			Elevation: int16(elevation),
		})
	}
	return markers, nil
}

// ReadFile reads a marker file, choosing the format by extension.
func ReadFile(path string) ([]domain.PeakMarker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return ReadGeoJSON(f)
	case ".kml":
		return ReadKML(f)
	default:
		return nil, errors.New("unsupported marker file extension: " + filepath.Ext(path))
	}
}

func labelElevation(label string) int16 {
	v, err := strconv.Atoi(label)
	if err != nil || v < math.MinInt16 || v > math.MaxInt16 {
		return 0
	}
	return int16(v)
}
