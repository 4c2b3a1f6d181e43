// Package provinces defines the closed set of Dutch province identifiers,
// their approximate bounding boxes, and the endpoint serving the
// pre-gzipped per-province facility files.
package provinces

import (
	"strings"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

// Other is the catch-all bucket for facilities whose centroid falls outside
// every province bounding box.
const Other = "other"

// Bounds are approximate per-province boxes used for assignment during the
// split; overlap at the edges is resolved by first match in Names order.
var bounds = map[string]model.Bounds{
	"groningen":     {MinLat: 53.15, MaxLat: 53.55, MinLon: 6.20, MaxLon: 7.25},
	"friesland":     {MinLat: 52.85, MaxLat: 53.40, MinLon: 5.35, MaxLon: 6.30},
	"drenthe":       {MinLat: 52.65, MaxLat: 53.15, MinLon: 6.30, MaxLon: 7.05},
	"overijssel":    {MinLat: 52.20, MaxLat: 52.75, MinLon: 6.00, MaxLon: 7.00},
	"flevoland":     {MinLat: 52.35, MaxLat: 52.75, MinLon: 5.25, MaxLon: 5.80},
	"gelderland":    {MinLat: 51.75, MaxLat: 52.25, MinLon: 5.35, MaxLon: 6.70},
	"utrecht":       {MinLat: 51.95, MaxLat: 52.25, MinLon: 4.90, MaxLon: 5.45},
	"noord-holland": {MinLat: 52.25, MaxLat: 53.00, MinLon: 4.60, MaxLon: 5.25},
	"zuid-holland":  {MinLat: 51.75, MaxLat: 52.25, MinLon: 3.90, MaxLon: 4.90},
	"zeeland":       {MinLat: 51.28, MaxLat: 51.70, MinLon: 3.40, MaxLon: 4.25},
	"noord-brabant": {MinLat: 51.35, MaxLat: 51.85, MinLon: 4.50, MaxLon: 5.90},
	"limburg":       {MinLat: 50.75, MaxLat: 51.50, MinLon: 5.70, MaxLon: 6.25},
}

// Names returns the province identifiers in assignment order, without the
// catch-all.
func Names() []string {
	return []string{
		"groningen", "friesland", "drenthe", "overijssel", "flevoland",
		"gelderland", "utrecht", "noord-holland", "zuid-holland",
		"zeeland", "noord-brabant", "limburg",
	}
}

// Valid reports whether name is a known identifier or the catch-all. The
// whitelist is closed; anything else is rejected at the serving boundary.
func Valid(name string) bool {
	if name == Other {
		return true
	}
	_, ok := bounds[name]
	return ok
}

// BoundsOf returns the assignment box for a province.
func BoundsOf(name string) (model.Bounds, bool) {
	b, ok := bounds[name]
	return b, ok
}

// Assign maps a point to its province identifier, or Other when no box
// contains it.
func Assign(lat, lon float64) string {
	for _, name := range Names() {
		if bounds[name].Contains(lat, lon) {
			return name
		}
	}
	return Other
}

// Sanitize reduces a raw path segment to the characters a province
// identifier may contain. Traversal characters are stripped rather than
// rejected outright so that an attempt like "../../etc" collapses to an
// invalid (often empty) name and fails the whitelist check.
func Sanitize(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
