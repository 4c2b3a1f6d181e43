package ingest

import (
	"math"
	"sort"
	"strings"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

const (
	earthRadiusM = 6371000.0

	// dedupeGridCell is ~100m at Dutch latitudes; duplicate candidates are
	// only compared within a cell and its eight neighbours.
	dedupeGridCell = 0.001

	// duplicateDistanceM is the proximity threshold below which two
	// facilities with compatible names are considered the same location.
	duplicateDistanceM = 50.0
)

// Haversine returns the great-circle distance between two points in
// meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Asin(math.Sqrt(a))
}

type gridCell struct{ x, y int }

// Dedupe collapses near-duplicate facilities (within duplicateDistanceM and
// with matching or absent names) into a single record, merging fields from
// the discarded duplicates. Output preserves the relative order of the
// surviving records.
func Dedupe(facilities []model.Facility) []model.Facility {
	grid := map[gridCell][]int{}
	for i := range facilities {
		f := &facilities[i]
		if !f.HasCoordinates() {
			continue
		}
		c := gridCell{
			x: int(math.Round(*f.Latitude / dedupeGridCell)),
			y: int(math.Round(*f.Longitude / dedupeGridCell)),
		}
		grid[c] = append(grid[c], i)
	}

	// duplicate index -> canonical index
	dup := map[int]int{}

	for c, indices := range grid {
		nearby := map[int]struct{}{}
		for _, i := range indices {
			nearby[i] = struct{}{}
		}
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, i := range grid[gridCell{c.x + dx, c.y + dy}] {
					nearby[i] = struct{}{}
				}
			}
		}

		sorted := make([]int, 0, len(nearby))
		for i := range nearby {
			sorted = append(sorted, i)
		}
		sort.Ints(sorted)

		for a, i := range sorted {
			if _, gone := dup[i]; gone {
				continue
			}
			for _, j := range sorted[a+1:] {
				if _, gone := dup[j]; gone {
					continue
				}
				if !isDuplicate(&facilities[i], &facilities[j]) {
					continue
				}
				if score(&facilities[i]) >= score(&facilities[j]) {
					dup[j] = i
				} else {
					dup[i] = j
				}
			}
		}
	}

	out := make([]model.Facility, 0, len(facilities)-len(dup))
	for i := range facilities {
		if _, gone := dup[i]; gone {
			continue
		}
		merged := facilities[i]
		for j, canon := range dup {
			if canon == i {
				mergeInto(&merged, &facilities[j])
			}
		}
		out = append(out, merged)
	}
	return out
}

func isDuplicate(a, b *model.Facility) bool {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return false
	}
	d := Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	if d >= duplicateDistanceM {
		return false
	}
	n1 := strings.ToLower(strings.TrimSpace(a.Name))
	n2 := strings.ToLower(strings.TrimSpace(b.Name))
	if n1 == "" || n2 == "" || n1 == n2 {
		return true
	}
	return strings.Contains(n1, n2) || strings.Contains(n2, n1)
}

// score ranks how much usable data a record carries; the official RDW feed
// wins ties.
func score(f *model.Facility) int {
	s := 0
	if f.Name != "" {
		s++
	}
	if f.Capacity != nil && f.Capacity.Total > 0 {
		s++
	}
	if f.HasRealtime {
		s++
	}
	if f.Source == "rdw" {
		s++
	}
	return s
}

// mergeInto fills gaps in the canonical record from a discarded duplicate
// and records the duplicate's source.
func mergeInto(canonical, duplicate *model.Facility) {
	if canonical.Name == "" {
		canonical.Name = duplicate.Name
	}
	if canonical.Operator == "" {
		canonical.Operator = duplicate.Operator
	}
	if canonical.OpeningHours == "" {
		canonical.OpeningHours = duplicate.OpeningHours
	}
	if canonical.Address == "" {
		canonical.Address = duplicate.Address
	}
	if canonical.Municipality == "" {
		canonical.Municipality = duplicate.Municipality
	}

	if duplicate.Capacity != nil {
		if canonical.Capacity == nil {
			cp := *duplicate.Capacity
			canonical.Capacity = &cp
		} else {
			if canonical.Capacity.Total == 0 {
				canonical.Capacity.Total = duplicate.Capacity.Total
			}
			if canonical.Capacity.Disabled == 0 {
				canonical.Capacity.Disabled = duplicate.Capacity.Disabled
			}
			if canonical.Capacity.EVCharging == 0 {
				canonical.Capacity.EVCharging = duplicate.Capacity.EVCharging
			}
		}
	}

	if duplicate.HasRealtime && !canonical.HasRealtime {
		canonical.HasRealtime = true
		canonical.Available = duplicate.Available
		canonical.RealtimeURL = duplicate.RealtimeURL
	}

	seen := map[string]struct{}{}
	sources := make([]string, 0, len(canonical.Sources)+2)
	for _, s := range append(append([]string{canonical.Source}, canonical.Sources...), duplicate.Source) {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	canonical.Sources = sources
}
