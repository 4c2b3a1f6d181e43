package api

import (
	"net/http/httptest"
	"testing"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

func parseQuery(t *testing.T, target string) (FacilityQuery, string, error) {
	t.Helper()
	return ParseFacilityQuery(httptest.NewRequest("GET", target, nil))
}

func TestParseFacilityQuery_Defaults(t *testing.T) {
	q, warn, err := parseQuery(t, "/facilities")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if warn != "" {
		t.Fatalf("unexpected warning %q", warn)
	}
	if q.Viewport != nil {
		t.Fatal("no bbox must mean no viewport")
	}
	if q.State.Types != nil || q.State.Search != "" {
		t.Fatalf("default state not all-enabled: %+v", q.State)
	}
	if q.Zoom != defaultZoom {
		t.Fatalf("zoom=%v want default %v", q.Zoom, defaultZoom)
	}
}

func TestParseFacilityQuery_BBoxAndZoom(t *testing.T) {
	q, _, err := parseQuery(t, "/facilities?bbox=4.6,52.2,5.1,52.5&zoom=13.5")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.Viewport == nil {
		t.Fatal("viewport missing")
	}
	want := model.Bounds{MinLat: 52.2, MinLon: 4.6, MaxLat: 52.5, MaxLon: 5.1}
	if q.Viewport.Bounds != want {
		t.Fatalf("bounds=%+v want %+v", q.Viewport.Bounds, want)
	}
	if q.Viewport.Zoom != 13.5 || q.Zoom != 13.5 {
		t.Fatalf("zoom=%v/%v want 13.5", q.Viewport.Zoom, q.Zoom)
	}
}

func TestParseFacilityQuery_Types(t *testing.T) {
	q, warn, err := parseQuery(t, "/facilities?types=garage,%20p_and_r")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if warn != "" {
		t.Fatalf("unexpected warning %q", warn)
	}
	if !q.State.Enabled(model.TypeGarage) || !q.State.Enabled(model.TypeParkAndRide) {
		t.Fatalf("requested types not enabled: %+v", q.State.Types)
	}
	if q.State.Enabled(model.TypeSurface) {
		t.Fatal("unrequested type must be disabled")
	}
}

func TestParseFacilityQuery_UnknownTypeWarnsAndIsIgnored(t *testing.T) {
	q, warn, err := parseQuery(t, "/facilities?types=garage,helipad")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if warn == "" {
		t.Fatal("expected warning")
	}
	if !q.State.Enabled(model.TypeGarage) {
		t.Fatal("known type must survive")
	}
	if q.State.Enabled("helipad") {
		t.Fatal("unknown type must not be enabled")
	}
}

func TestParseFacilityQuery_InvalidZoom(t *testing.T) {
	for _, target := range []string{
		"/facilities?zoom=-1",
		"/facilities?zoom=23",
		"/facilities?zoom=abc",
	} {
		if _, _, err := parseQuery(t, target); err == nil {
			t.Errorf("%s: expected error", target)
		}
	}
}

func TestParseBBox_Invalid(t *testing.T) {
	for _, raw := range []string{
		"4.6,52.2,5.1",          // too few values
		"4.6,52.2,5.1,52.5,9",   // too many
		"a,52.2,5.1,52.5",       // not a number
		"5.1,52.2,4.6,52.5",     // maxLon <= minLon
		"4.6,52.5,5.1,52.2",     // maxLat <= minLat
		"4.6,52.2,4.6,52.5",     // degenerate lon
		"-200,52.2,5.1,52.5",    // lon out of range
		"4.6,-95,5.1,52.5",      // lat out of range
	} {
		if _, err := parseBBox(raw); err == nil {
			t.Errorf("parseBBox(%q): expected error", raw)
		}
	}
}

func TestParseBBox_Valid(t *testing.T) {
	b, err := parseBBox(" 3.2 , 50.7 , 7.3 , 53.6 ")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := model.Bounds{MinLat: 50.7, MinLon: 3.2, MaxLat: 53.6, MaxLon: 7.3}
	if b != want {
		t.Fatalf("bounds=%+v want %+v", b, want)
	}
}
