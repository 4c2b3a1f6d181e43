package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

// defaultZoom is a whole-country view, used when a bbox arrives without a
// zoom parameter.
const defaultZoom = 7

// FacilityQuery is the parsed and validated form of a /facilities request.
type FacilityQuery struct {
	State    model.FilterState
	Viewport *model.Viewport
	Zoom     float64
}

// ParseFacilityQuery validates the query parameters. A missing bbox means
// no viewport windowing; a missing types parameter enables every type.
func ParseFacilityQuery(r *http.Request) (FacilityQuery, string, error) {
	var warn string

	q := FacilityQuery{
		State: model.FilterState{Search: strings.TrimSpace(r.URL.Query().Get("q"))},
		Zoom:  defaultZoom,
	}

	if rawZoom := strings.TrimSpace(r.URL.Query().Get("zoom")); rawZoom != "" {
		z, err := strconv.ParseFloat(rawZoom, 64)
		if err != nil || z < 0 || z > 22 {
			return FacilityQuery{}, warn, errors.New("invalid zoom: must be a number in [0,22]")
		}
		q.Zoom = z
	}

	if rawTypes := strings.TrimSpace(r.URL.Query().Get("types")); rawTypes != "" {
		types := map[model.FacilityType]bool{}
		for _, part := range strings.Split(rawTypes, ",") {
			t := model.FacilityType(strings.ToLower(strings.TrimSpace(part)))
			if t == "" {
				continue
			}
			if !t.Known() {
				warn = "ignoring unknown facility type in types parameter"
				continue
			}
			types[t] = true
		}
		q.State.Types = types
	}

	if rawBBox := strings.TrimSpace(r.URL.Query().Get("bbox")); rawBBox != "" {
		b, err := parseBBox(rawBBox)
		if err != nil {
			return FacilityQuery{}, warn, fmt.Errorf("invalid bbox: %w", err)
		}
		q.Viewport = &model.Viewport{Bounds: b, Zoom: q.Zoom}
	}

	return q, warn, nil
}

// parseBBox accepts "minLon,minLat,maxLon,maxLat" in WGS84 degrees.
func parseBBox(raw string) (model.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return model.Bounds{}, errors.New("expected 4 comma-separated values: minLon,minLat,maxLon,maxLat")
	}
	minLon, err := parseFloat(parts[0])
	if err != nil {
		return model.Bounds{}, fmt.Errorf("minLon: %w", err)
	}
	minLat, err := parseFloat(parts[1])
	if err != nil {
		return model.Bounds{}, fmt.Errorf("minLat: %w", err)
	}
	maxLon, err := parseFloat(parts[2])
	if err != nil {
		return model.Bounds{}, fmt.Errorf("maxLon: %w", err)
	}
	maxLat, err := parseFloat(parts[3])
	if err != nil {
		return model.Bounds{}, fmt.Errorf("maxLat: %w", err)
	}

	if !(minLon >= -180 && minLon <= 180 && maxLon >= -180 && maxLon <= 180) {
		return model.Bounds{}, errors.New("longitude must be in [-180,180]")
	}
	if !(minLat >= -90 && minLat <= 90 && maxLat >= -90 && maxLat <= 90) {
		return model.Bounds{}, errors.New("latitude must be in [-90,90]")
	}
	if maxLon <= minLon || maxLat <= minLat {
		return model.Bounds{}, errors.New("bounds must satisfy maxLon>minLon and maxLat>minLat")
	}

	return model.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}
