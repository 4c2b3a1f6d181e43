package ingest

import "github.com/robbertj85/parkeerplaatsen/internal/model"

// MunicipalityStats summarizes parking supply per municipality.
type MunicipalityStats struct {
	TotalFacilities int            `json:"total_facilities"`
	TotalCapacity   int            `json:"total_capacity"`
	ByType          map[string]int `json:"by_type"`
	WithRealtime    int            `json:"with_realtime"`
}

// ComputeMunicipalityStats aggregates facilities per municipality; records
// without a municipality land under "Unknown".
func ComputeMunicipalityStats(facilities []model.Facility) map[string]MunicipalityStats {
	out := map[string]MunicipalityStats{}
	for i := range facilities {
		f := &facilities[i]
		m := f.Municipality
		if m == "" {
			m = "Unknown"
		}
		s, ok := out[m]
		if !ok {
			s = MunicipalityStats{ByType: map[string]int{}}
		}
		s.TotalFacilities++
		if f.Capacity != nil {
			s.TotalCapacity += f.Capacity.Total
		}
		s.ByType[string(f.Type.OrOther())]++
		if f.HasRealtime {
			s.WithRealtime++
		}
		out[m] = s
	}
	return out
}
