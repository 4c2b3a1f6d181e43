// Package model defines core domain types shared across the service.
package model

import "encoding/json"

type FacilityType string

const (
	TypeGarage       FacilityType = "garage"
	TypeSurface      FacilityType = "surface"
	TypeStreetPaid   FacilityType = "street_paid"
	TypeStreetFree   FacilityType = "street_free"
	TypeParkAndRide  FacilityType = "p_and_r"
	TypeDisabled     FacilityType = "disabled"
	TypeEVCharging   FacilityType = "ev_charging"
	TypeParkingSpace FacilityType = "parking_space"
	TypeOther        FacilityType = "other"
)

// AllTypes returns the closed type enumeration in display order.
func AllTypes() []FacilityType {
	return []FacilityType{
		TypeGarage, TypeSurface, TypeStreetPaid, TypeStreetFree,
		TypeParkAndRide, TypeDisabled, TypeEVCharging, TypeParkingSpace,
		TypeOther,
	}
}

func (t FacilityType) Known() bool {
	switch t {
	case TypeGarage, TypeSurface, TypeStreetPaid, TypeStreetFree,
		TypeParkAndRide, TypeDisabled, TypeEVCharging, TypeParkingSpace,
		TypeOther:
		return true
	}
	return false
}

// OrOther maps an absent or unrecognized type to "other".
func (t FacilityType) OrOther() FacilityType {
	if t == "" || !t.Known() {
		return TypeOther
	}
	return t
}

type Capacity struct {
	Total      int `json:"total,omitempty"`
	Disabled   int `json:"disabled,omitempty"`
	EVCharging int `json:"ev_charging,omitempty"`
}

// Facility is one parking location record. Coordinates are pointers so a
// record without a position survives decoding and can still count toward
// aggregate statistics.
type Facility struct {
	ID        string          `json:"id"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
	Geometry  json.RawMessage `json:"geometry,omitempty"`

	Type FacilityType `json:"type,omitempty"`

	Name         string    `json:"name,omitempty"`
	Municipality string    `json:"municipality,omitempty"`
	Province     string    `json:"province,omitempty"`
	Address      string    `json:"address,omitempty"`
	Operator     string    `json:"operator,omitempty"`
	Website      string    `json:"website,omitempty"`
	OpeningHours string    `json:"opening_hours,omitempty"`
	Access       string    `json:"access,omitempty"`
	MaxHeight    float64   `json:"max_height,omitempty"`
	Capacity     *Capacity `json:"capacity,omitempty"`
	IsPaid       bool      `json:"is_paid,omitempty"`
	Fee          string    `json:"fee,omitempty"`

	Source      string   `json:"source,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	LastUpdated string   `json:"last_updated,omitempty"`
	RDWID       string   `json:"rdw_id,omitempty"`
	OSMID       string   `json:"osm_id,omitempty"`
	UUID        string   `json:"uuid,omitempty"`

	HasRealtime bool   `json:"has_realtime,omitempty"`
	Available   *int   `json:"available,omitempty"`
	RealtimeURL string `json:"realtime_url,omitempty"`
}

// HasCoordinates reports whether the facility carries a position inside the
// valid WGS84 ranges. Only such facilities are eligible for viewport
// windowing.
func (f *Facility) HasCoordinates() bool {
	if f.Latitude == nil || f.Longitude == nil {
		return false
	}
	lat, lon := *f.Latitude, *f.Longitude
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Bounds is a geographic bounding box. Containment is inclusive on all
// edges.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// Viewport is the visible bounding box plus zoom level, pushed by the map
// client on pan and zoom.
type Viewport struct {
	Bounds Bounds  `json:"bounds"`
	Zoom   float64 `json:"zoom"`
}

// FilterState holds per-type visibility flags plus a free-text search term.
// A nil Types map means every type is enabled; once a map is supplied,
// absent keys are disabled.
type FilterState struct {
	Types  map[FacilityType]bool `json:"types,omitempty"`
	Search string                `json:"search,omitempty"`
}

// NewFilterState returns a state with every type explicitly enabled.
func NewFilterState() FilterState {
	types := make(map[FacilityType]bool, len(AllTypes()))
	for _, t := range AllTypes() {
		types[t] = true
	}
	return FilterState{Types: types}
}

func (s FilterState) Enabled(t FacilityType) bool {
	if s.Types == nil {
		return true
	}
	return s.Types[t.OrOther()]
}

// AllEnabled reports whether no type restriction is in effect.
func (s FilterState) AllEnabled() bool {
	if s.Types == nil {
		return true
	}
	for _, t := range AllTypes() {
		if !s.Types[t] {
			return false
		}
	}
	return true
}

// Stats is the snapshot summary carried in the metadata envelope.
type Stats struct {
	Total        int            `json:"total"`
	ByType       map[string]int `json:"by_type"`
	BySource     map[string]int `json:"by_source"`
	WithRealtime int            `json:"with_realtime"`
}

type Metadata struct {
	Generated string `json:"generated,omitempty"`
	Stats     Stats  `json:"stats"`
}

// Snapshot is the primary data feed: a features array plus a metadata.stats
// summary. The collection is immutable once loaded.
type Snapshot struct {
	Metadata Metadata   `json:"metadata"`
	Features []Facility `json:"features"`
}
