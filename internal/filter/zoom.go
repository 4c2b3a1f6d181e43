package filter

import "github.com/robbertj85/parkeerplaatsen/internal/model"

// DetailLayerMinZoom is the zoom level at which supplementary per-city
// layers become eligible to render.
const DetailLayerMinZoom = 14

// Marker radius bands by zoom, plus a fixed bonus for facility types that
// represent larger structures (garages, park-and-rides).
const (
	radiusFar     = 2
	radiusMid     = 4
	radiusNear    = 6
	radiusClosest = 8

	largeFacilityBonus = 3
)

// Radius maps zoom level and facility type to a base marker radius. Pure,
// no hysteresis: callers recompute on every zoom change.
func Radius(zoom float64, t model.FacilityType) float64 {
	var r float64
	switch {
	case zoom < 10:
		r = radiusFar
	case zoom < 12:
		r = radiusMid
	case zoom < DetailLayerMinZoom:
		r = radiusNear
	default:
		r = radiusClosest
	}
	switch t.OrOther() {
	case model.TypeGarage, model.TypeParkAndRide:
		r += largeFacilityBonus
	}
	return r
}

// DetailLayersVisible gates the supplementary per-city layers. Below the
// threshold they are suppressed even when already loaded.
func DetailLayersVisible(zoom float64) bool {
	return zoom >= DetailLayerMinZoom
}

// ZoomHint returns the user-facing hint shown while detail layers are
// suppressed, or "" once they are visible.
func ZoomHint(zoom float64) string {
	if DetailLayersVisible(zoom) {
		return ""
	}
	return "zoom in to see individual parking spaces"
}

// RadiusByType returns the marker radius for every known type at the given
// zoom, keyed by the type's wire name.
func RadiusByType(zoom float64) map[string]float64 {
	out := make(map[string]float64, len(model.AllTypes()))
	for _, t := range model.AllTypes() {
		out[string(t)] = Radius(zoom, t)
	}
	return out
}
