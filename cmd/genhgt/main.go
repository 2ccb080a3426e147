// Command genhgt writes synthetic SRTM3 tiles into a tile cache directory so
// the peaks command can run offline against known terrain.
//
// Usage:
//
//	go run ./cmd/genhgt \
//	  -dir srtm/cache \
//	  -tile N47E011 \
//	  -base 800 \
//	  -hill 47.5,11.5,2000,1500 -hill 47.3,11.2,1200,1200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/couchcryptid/srtm-peaks/internal/adapter/srtm"
)

// hillList collects repeated -hill lat,lng,height,radiusM values.
type hillList []srtm.Hill

func (h *hillList) String() string { return fmt.Sprint(len(*h), " hills") }

func (h *hillList) Set(value string) error {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return fmt.Errorf("hill %q: want lat,lng,height,radiusM", value)
	}
	var nums [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("hill %q: %w", value, err)
		}
		nums[i] = v
	}
	*h = append(*h, srtm.Hill{Lat: nums[0], Lng: nums[1], Height: nums[2], RadiusM: nums[3]})
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "srtm/cache", "tile cache directory to write into")
	name := flag.String("tile", "", "tile name, e.g. N47E011")
	base := flag.Int("base", 500, "base elevation in meters")
	raw := flag.Bool("raw", false, "write an uncompressed .hgt instead of a .hgt.zip")
	var hills hillList
	flag.Var(&hills, "hill", "lat,lng,height,radiusM (repeatable)")
	flag.Parse()

	if *name == "" {
		flag.Usage()
		return fmt.Errorf("-tile is required")
	}
	id, err := srtm.ParseTileName(*name)
	if err != nil {
		return err
	}

	tile := srtm.SynthesizeTile(id, int16(*base), hills)
	data := srtm.EncodeHGT(tile)
	if !*raw {
		if data, err = srtm.ZipHGT(tile); err != nil {
			return err
		}
	}

	store, err := srtm.NewFileStore(*dir)
	if err != nil {
		return err
	}
	if err := store.Put(context.Background(), id.Name(), data); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d hills, %d bytes) to %s\n", id.Name(), len(hills), len(data), *dir)
	return nil
}
