package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robbertj85/parkeerplaatsen/internal/dataset"
	"github.com/robbertj85/parkeerplaatsen/internal/filter"
	"github.com/robbertj85/parkeerplaatsen/internal/layers"
)

const testSnapshot = `{
  "metadata": {"stats": {"total": 0, "by_type": {}, "by_source": {}, "with_realtime": 0}},
  "features": [
    {"id": "ams-garage", "name": "P1 Centrum", "municipality": "Amsterdam", "type": "garage",
     "latitude": 52.373, "longitude": 4.892, "source": "rdw", "has_realtime": true},
    {"id": "ams-street", "name": "Damrak", "municipality": "Amsterdam", "type": "street_paid",
     "latitude": 52.376, "longitude": 4.898, "source": "amsterdam"},
    {"id": "rtm-garage", "name": "Markthal", "municipality": "Rotterdam", "type": "garage",
     "latitude": 51.920, "longitude": 4.487, "source": "osm"},
    {"id": "floating", "name": "Zonder positie", "type": "surface", "source": "osm"}
  ]
}`

const testLayerDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Point","coordinates":[4.9,52.37]},
   "properties":{"straatnaam":"Damrak"}}
]}`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()

	snapPath := filepath.Join(dir, "snap.json")
	if err := os.WriteFile(snapPath, []byte(testSnapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	layerPath := filepath.Join(dir, "amsterdam.json")
	if err := os.WriteFile(layerPath, []byte(testLayerDoc), 0o644); err != nil {
		t.Fatalf("write layer: %v", err)
	}
	regPath := filepath.Join(dir, "cities.yaml")
	regDoc := "cities:\n" +
		"  - key: amsterdam\n" +
		"    name: Amsterdam\n" +
		"    source: " + layerPath + "\n" +
		"    anchor: { lat: 52.3676, lon: 4.9041, zoom: 15 }\n"
	if err := os.WriteFile(regPath, []byte(regDoc), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	data, err := dataset.Load(context.Background(), snapPath, nil)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	reg, err := layers.LoadRegistry(regPath)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	loader := layers.NewLoader(reg, layers.NewMemoryStore(), http.DefaultClient, zerolog.Nop(), 5*time.Second)

	return New(slog.New(slog.DiscardHandler), data, filter.NewMemo(64, time.Minute), loader)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h := newTestHandler(t)
	r := chi.NewRouter()
	r.Get("/facilities", h.Facilities)
	r.Get("/stats", h.Stats)
	r.Get("/stats/municipalities", h.MunicipalityStats)
	r.Get("/layers", h.LayerCatalog)
	r.Get("/layers/{city}", h.Layer)
	return r
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeFacilities(t *testing.T, rec *httptest.ResponseRecorder) facilitiesResponse {
	t.Helper()
	var resp facilitiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestFacilities_NoQueryReturnsEverything(t *testing.T) {
	rec := get(t, newTestRouter(t), "/facilities")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	resp := decodeFacilities(t, rec)
	if resp.Total != 4 || resp.Visible != 4 {
		t.Fatalf("total=%d visible=%d want 4/4", resp.Total, resp.Visible)
	}
}

func TestFacilities_ViewportWindow(t *testing.T) {
	// Amsterdam box: the Rotterdam garage and the record without a
	// position fall out
	rec := get(t, newTestRouter(t), "/facilities?bbox=4.8,52.3,5.0,52.4")
	resp := decodeFacilities(t, rec)
	if resp.Visible != 2 {
		t.Fatalf("visible=%d want 2", resp.Visible)
	}
	if resp.Total != 4 {
		t.Fatalf("total=%d want 4", resp.Total)
	}
	if resp.Features[0].ID != "ams-garage" || resp.Features[1].ID != "ams-street" {
		t.Fatalf("order: %s, %s", resp.Features[0].ID, resp.Features[1].ID)
	}
}

func TestFacilities_TypeAndSearchCompose(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/facilities?types=garage")
	if resp := decodeFacilities(t, rec); resp.Visible != 2 {
		t.Fatalf("garage visible=%d want 2", resp.Visible)
	}

	rec = get(t, router, "/facilities?types=garage&q=amsterdam")
	resp := decodeFacilities(t, rec)
	if resp.Visible != 1 || resp.Features[0].ID != "ams-garage" {
		t.Fatalf("garage+amsterdam=%+v", resp.Features)
	}
}

func TestFacilities_ZeroVisibleIsOK(t *testing.T) {
	rec := get(t, newTestRouter(t), "/facilities?q=maastricht")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rec.Code)
	}
	resp := decodeFacilities(t, rec)
	if resp.Visible != 0 || resp.Total != 4 {
		t.Fatalf("visible=%d total=%d want 0/4", resp.Visible, resp.Total)
	}
}

func TestFacilities_PresentationFollowsZoom(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/facilities?zoom=9")
	resp := decodeFacilities(t, rec)
	if resp.Presentation.DetailLayersVisible {
		t.Fatal("detail layers must be hidden at zoom 9")
	}
	if resp.Presentation.Hint == "" {
		t.Fatal("expected zoom hint below the detail threshold")
	}
	if resp.Presentation.RadiusByType["garage"] <= resp.Presentation.RadiusByType["surface"] {
		t.Fatalf("garage radius must exceed surface radius: %+v", resp.Presentation.RadiusByType)
	}

	rec = get(t, router, "/facilities?zoom=15")
	resp = decodeFacilities(t, rec)
	if !resp.Presentation.DetailLayersVisible {
		t.Fatal("detail layers must be visible at zoom 15")
	}
	if resp.Presentation.Hint != "" {
		t.Fatalf("no hint expected at zoom 15, got %q", resp.Presentation.Hint)
	}
}

func TestFacilities_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	for _, target := range []string{
		"/facilities?bbox=junk",
		"/facilities?zoom=99",
	} {
		if rec := get(t, router, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d want 400", target, rec.Code)
		}
	}
}

func TestStats(t *testing.T) {
	rec := get(t, newTestRouter(t), "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var stats struct {
		Total        int            `json:"total"`
		ByType       map[string]int `json:"by_type"`
		WithRealtime int            `json:"with_realtime"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 4 || stats.ByType["garage"] != 2 || stats.WithRealtime != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestMunicipalityStats(t *testing.T) {
	rec := get(t, newTestRouter(t), "/stats/municipalities")
	var stats map[string]struct {
		TotalFacilities int `json:"total_facilities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["Amsterdam"].TotalFacilities != 2 || stats["Unknown"].TotalFacilities != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestLayerCatalog_TracksLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/layers")
	var catalog struct {
		Cities []struct {
			Key   string `json:"key"`
			State string `json:"state"`
		} `json:"cities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(catalog.Cities) != 1 || catalog.Cities[0].State != "not_requested" {
		t.Fatalf("catalog=%+v", catalog)
	}

	if rec := get(t, router, "/layers/amsterdam"); rec.Code != http.StatusOK {
		t.Fatalf("layer status=%d", rec.Code)
	}

	rec = get(t, router, "/layers")
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if catalog.Cities[0].State != "loaded" {
		t.Fatalf("state=%q want loaded", catalog.Cities[0].State)
	}
}

func TestLayer_ServesDocumentWithAnchor(t *testing.T) {
	rec := get(t, newTestRouter(t), "/layers/amsterdam")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("Content-Type=%q", ct)
	}
	var anchor layers.Anchor
	if err := json.Unmarshal([]byte(rec.Header().Get("X-Anchor")), &anchor); err != nil {
		t.Fatalf("anchor header: %v", err)
	}
	if anchor.Zoom != 15 {
		t.Fatalf("anchor=%+v", anchor)
	}
}

func TestLayer_UnknownCity(t *testing.T) {
	if rec := get(t, newTestRouter(t), "/layers/atlantis"); rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	h := newTestHandler(t)
	ok, n := h.Readiness()
	if !ok || n != 4 {
		t.Fatalf("ready=%v n=%d", ok, n)
	}
}
