package srtm

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

const (
	// TileSize is the number of samples per side of an SRTM3 tile. Adjacent
	// tiles share their edge rows and columns.
	TileSize = 1201

	// SamplesPerDegree is the sample spacing of SRTM3 (3 arc seconds).
	SamplesPerDegree = TileSize - 1

	hgtBytes = TileSize * TileSize * 2
)

// tileNamePattern matches names like "N50E010" with an optional ".hgt" or ".hgt.zip" suffix.
var tileNamePattern = regexp.MustCompile(`(?i)^([NS])(\d{2})([EW])(\d{3})(?:\.hgt(?:\.zip)?)?$`)

// TileID identifies a one-degree tile by its south-west corner.
type TileID struct {
	Lat int
	Lng int
}

// TileIDFor returns the tile containing the point.
func TileIDFor(lat, lng float64) TileID {
	return TileID{Lat: int(math.Floor(lat)), Lng: int(math.Floor(lng))}
}

// Name returns the SRTM file stem, e.g. "N50E010" or "S34W071".
func (t TileID) Name() string {
	ns, ew := 'N', 'E'
	lat, lng := t.Lat, t.Lng
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	if lng < 0 {
		ew, lng = 'W', -lng
	}
	return fmt.Sprintf("%c%02d%c%03d", ns, lat, ew, lng)
}

// ParseTileName parses a tile file name (case-insensitive, path and suffix allowed).
func ParseTileName(name string) (TileID, error) {
	m := tileNamePattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return TileID{}, fmt.Errorf("not an SRTM tile name: %q", name)
	}
	lat, _ := strconv.Atoi(m[2])
	lng, _ := strconv.Atoi(m[4])
	if strings.EqualFold(m[1], "S") {
		lat = -lat
	}
	if strings.EqualFold(m[3], "W") {
		lng = -lng
	}
	return TileID{Lat: lat, Lng: lng}, nil
}

// Tile holds the decoded samples of one SRTM3 tile. Row 0 is the northern
// edge (Lat+1) and column 0 the western edge (Lng).
type Tile struct {
	ID   TileID
	data []int16
}

// NewTile returns a tile with every sample set to domain.VoidElevation.
func NewTile(id TileID) *Tile {
	data := make([]int16, TileSize*TileSize)
	for i := range data {
		data[i] = domain.VoidElevation
	}
	return &Tile{ID: id, data: data}
}

// Sample returns the raw sample at (row, col).
func (t *Tile) Sample(row, col int) int16 {
	return t.data[row*TileSize+col]
}

// Set stores a raw sample at (row, col).
func (t *Tile) Set(row, col int, v int16) {
	t.data[row*TileSize+col] = v
}

// Position returns the coordinates of a sample.
func (t *Tile) Position(row, col int) (lat, lng float64) {
	return float64(t.ID.Lat+1) - float64(row)/SamplesPerDegree,
		float64(t.ID.Lng) + float64(col)/SamplesPerDegree
}

// DecodeHGT decodes raw big-endian HGT samples.
func DecodeHGT(id TileID, b []byte) (*Tile, error) {
	if len(b) != hgtBytes {
		return nil, fmt.Errorf("decode %s: got %d bytes, want %d", id.Name(), len(b), hgtBytes)
	}
	t := &Tile{ID: id, data: make([]int16, TileSize*TileSize)}
	for i := range t.data {
		t.data[i] = int16(binary.BigEndian.Uint16(b[i*2:]))
	}
	return t, nil
}

// EncodeHGT returns the raw big-endian HGT representation of a tile.
func EncodeHGT(t *Tile) []byte {
	b := make([]byte, hgtBytes)
	for i, v := range t.data {
		binary.BigEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

// DecodeArchive decodes a downloaded tile file. Zip archives must contain a
// single .hgt entry; anything else is treated as raw HGT.
func DecodeArchive(id TileID, b []byte) (*Tile, error) {
	if !isZip(b) {
		return DecodeHGT(id, b)
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", id.Name(), err)
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".hgt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		raw, err := io.ReadAll(io.LimitReader(rc, hgtBytes+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s in archive: %w", f.Name, err)
		}
		return DecodeHGT(id, raw)
	}
	return nil, fmt.Errorf("archive %s has no .hgt entry", id.Name())
}

// ZipHGT packs a tile as "<name>.hgt" inside a zip archive, the layout used
// by the public SRTM mirrors.
func ZipHGT(t *Tile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(t.ID.Name() + ".hgt")
	if err != nil {
		return nil, fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := w.Write(EncodeHGT(t)); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func isZip(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], []byte("PK\x03\x04"))
}
