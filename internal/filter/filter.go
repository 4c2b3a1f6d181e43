// Package filter implements the facility filter pipeline: type and search
// selection followed by viewport windowing. Apply is a pure function of its
// inputs and preserves the relative order of the input collection.
package filter

import (
	"strings"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

// Apply reduces the facility collection by the per-type flags and search
// term, then windows the result to the viewport bounds. A nil viewport
// skips the windowing step entirely; the full filtered set is "visible".
func Apply(facilities []model.Facility, state model.FilterState, vp *model.Viewport) []model.Facility {
	out := make([]model.Facility, 0, len(facilities))
	search := strings.ToLower(strings.TrimSpace(state.Search))

	for i := range facilities {
		f := &facilities[i]
		if !state.Enabled(f.Type) {
			continue
		}
		if search != "" && !matchesSearch(f, search) {
			continue
		}
		if vp != nil {
			if !f.HasCoordinates() {
				continue
			}
			if !vp.Bounds.Contains(*f.Latitude, *f.Longitude) {
				continue
			}
		}
		out = append(out, *f)
	}
	return out
}

// matchesSearch is a case-insensitive unanchored substring match on name or
// municipality. A facility carrying neither field never matches a non-empty
// term; that is the contract, not an oversight.
func matchesSearch(f *model.Facility, loweredTerm string) bool {
	if strings.Contains(strings.ToLower(f.Name), loweredTerm) {
		return true
	}
	return strings.Contains(strings.ToLower(f.Municipality), loweredTerm)
}
