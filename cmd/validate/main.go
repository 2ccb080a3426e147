// Command validate checks a peaks output file (KML or GeoJSON): every marker
// has a valid position and a label matching its elevation, markers lie inside
// the expected bounds, and no two markers are closer than the minimum
// separation.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -file peaks.kml \
//	  -bounds 47.1,11.1,47.9,11.9 \
//	  -min-separation 500
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/couchcryptid/srtm-peaks/internal/adapter/file"
	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

// boundsList collects repeated -bounds minLat,minLng,maxLat,maxLng values.
type boundsList struct {
	list domain.BoundsList
	raw  []string
}

func (b *boundsList) String() string { return strings.Join(b.raw, " ") }

func (b *boundsList) Set(value string) error {
	spec, err := domain.ParseBoundsArgs(domain.KindCorners, strings.Split(value, ","))
	if err != nil {
		return err
	}
	if _, err := b.list.Add(spec); err != nil {
		return err
	}
	b.raw = append(b.raw, value)
	return nil
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("file", "", "peaks file to validate (.kml, .geojson)")
	minSep := flag.Float64("min-separation", 0, "minimum distance in meters between markers, 0 skips the check")
	var bounds boundsList
	flag.Var(&bounds, "bounds", "minLat,minLng,maxLat,maxLng the markers must lie in (repeatable)")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*path, &bounds.list, *minSep); code != 0 {
		os.Exit(code)
	}
}

func run(path string, bounds *domain.BoundsList, minSep float64) int {
	fmt.Println("=== Peaks File Validation ===")
	fmt.Println()

	markers, err := file.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateMarkers(markers),
		validateContainment(markers, bounds),
		validateSeparation(markers, minSep),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Markers: %d in %s\n", len(markers), path)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Markers ──

func validateMarkers(markers []domain.PeakMarker) *phase {
	p := &phase{name: "Phase 1: Marker fields"}
	for i, m := range markers {
		if m.Latitude <= -90 || m.Latitude > 90 {
			p.errorf("marker %d: latitude %v out of range", i+1, m.Latitude)
		}
		if m.Longitude <= -180 || m.Longitude > 180 {
			p.errorf("marker %d: longitude %v out of range", i+1, m.Longitude)
		}
		if m.Elevation == domain.VoidElevation {
			p.errorf("marker %d: void elevation", i+1)
		}
		if want := strconv.Itoa(int(m.Elevation)); m.Label != want {
			p.errorf("marker %d: label %q, elevation %d", i+1, m.Label, m.Elevation)
		}
	}
	return p
}

// ── Phase 2: Containment ──

func validateContainment(markers []domain.PeakMarker, bounds *domain.BoundsList) *phase {
	p := &phase{name: "Phase 2: Markers inside bounds"}
	if bounds.Len() == 0 {
		return p
	}
	rects, err := bounds.Rectangles()
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for i, m := range markers {
		inside := false
		for _, r := range rects {
			if r.Contains(m.Latitude, m.Longitude) {
				inside = true
				break
			}
		}
		if !inside {
			p.errorf("marker %d (%s) at %v,%v lies outside every bound", i+1, m.Label, m.Latitude, m.Longitude)
		}
	}
	return p
}

// ── Phase 3: Separation ──

func validateSeparation(markers []domain.PeakMarker, minSep float64) *phase {
	p := &phase{name: "Phase 3: Minimum separation"}
	if minSep <= 0 {
		return p
	}
	for i := range markers {
		a := orb.Point{markers[i].Longitude, markers[i].Latitude}
		for j := i + 1; j < len(markers); j++ {
			b := orb.Point{markers[j].Longitude, markers[j].Latitude}
			if d := geo.Distance(a, b); d < minSep {
				p.errorf("markers %d and %d are %.0f m apart", i+1, j+1, d)
			}
		}
	}
	return p
}
