// Package ingest prepares the unified parking snapshot: it normalizes type
// names across sources, merges near-duplicate facilities, derives
// statistics, and splits the result into per-province files.
package ingest

import "github.com/robbertj85/parkeerplaatsen/internal/model"

// typeAliases maps the various source-specific type names onto the closed
// enumeration. Unknown names fall through to "other".
var typeAliases = map[string]model.FacilityType{
	"garage":        model.TypeGarage,
	"multi-storey":  model.TypeGarage,
	"underground":   model.TypeGarage,
	"surface":       model.TypeSurface,
	"surface_lot":   model.TypeSurface,
	"street_paid":   model.TypeStreetPaid,
	"street_side":   model.TypeStreetPaid,
	"lane":          model.TypeStreetPaid,
	"street_free":   model.TypeStreetFree,
	"p_and_r":       model.TypeParkAndRide,
	"park_and_ride": model.TypeParkAndRide,
	"disabled":      model.TypeDisabled,
	"ev_charging":   model.TypeEVCharging,
	"parking_space": model.TypeParkingSpace,
}

// NormalizeType maps a raw source type name to the canonical enumeration.
func NormalizeType(raw string) model.FacilityType {
	if t, ok := typeAliases[raw]; ok {
		return t
	}
	return model.TypeOther
}

// Normalize canonicalizes types in place across the whole collection.
func Normalize(facilities []model.Facility) {
	for i := range facilities {
		facilities[i].Type = NormalizeType(string(facilities[i].Type))
	}
}
