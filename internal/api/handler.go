// Package api implements the HTTP handlers for the facility, stats, layer
// and province endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robbertj85/parkeerplaatsen/internal/core/observability"
	"github.com/robbertj85/parkeerplaatsen/internal/dataset"
	"github.com/robbertj85/parkeerplaatsen/internal/filter"
	"github.com/robbertj85/parkeerplaatsen/internal/ingest"
	"github.com/robbertj85/parkeerplaatsen/internal/layers"
	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

type Handler struct {
	logger *slog.Logger
	data   *dataset.Handle
	memo   *filter.Memo
	layers *layers.Loader
}

func New(logger *slog.Logger, data *dataset.Handle, memo *filter.Memo, loader *layers.Loader) *Handler {
	return &Handler{logger: logger, data: data, memo: memo, layers: loader}
}

// Readiness satisfies health.ReadinessReporter.
func (h *Handler) Readiness() (bool, int) {
	return h.data.Ready(), len(h.data.Facilities())
}

type presentation struct {
	RadiusByType        map[string]float64 `json:"radius_by_type"`
	DetailLayersVisible bool               `json:"detail_layers_visible"`
	Hint                string             `json:"hint,omitempty"`
}

type facilitiesResponse struct {
	Total        int              `json:"total"`
	Visible      int              `json:"visible"`
	Features     []model.Facility `json:"features"`
	Presentation presentation     `json:"presentation"`
}

// Facilities runs the filter pipeline over the snapshot. The "0 of N
// visible" case is a valid response, not an error.
func (h *Handler) Facilities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

	q, warn, err := ParseFacilityQuery(r)
	if warn != "" {
		h.logger.Warn(warn)
	}
	if err != nil {
		http.Error(sw, err.Error(), http.StatusBadRequest)
		observability.ObserveHTTP(r.Method, "/facilities", sw.code, time.Since(start).Seconds())
		return
	}

	all := h.data.Facilities()

	var visible []model.Facility
	if q.State.AllEnabled() && q.State.Search == "" && q.Viewport != nil {
		// unfiltered windowing goes through the R-tree
		visible, err = h.data.Index().Window(q.Viewport.Bounds)
		if err != nil {
			h.logger.Error("viewport index query failed", "err", err)
			http.Error(sw, "internal error", http.StatusInternalServerError)
			observability.ObserveHTTP(r.Method, "/facilities", sw.code, time.Since(start).Seconds())
			return
		}
	} else {
		visible = h.memo.Apply(h.data.Version(), all, q.State, q.Viewport)
	}
	observability.ObserveVisibleFacilities(len(visible))

	resp := facilitiesResponse{
		Total:    len(all),
		Visible:  len(visible),
		Features: visible,
		Presentation: presentation{
			RadiusByType:        filter.RadiusByType(q.Zoom),
			DetailLayersVisible: filter.DetailLayersVisible(q.Zoom),
			Hint:                filter.ZoomHint(q.Zoom),
		},
	}
	writeJSON(sw, http.StatusOK, resp)
	observability.ObserveHTTP(r.Method, "/facilities", sw.code, time.Since(start).Seconds())
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, http.StatusOK, h.data.Stats())
	observability.ObserveHTTP(r.Method, "/stats", http.StatusOK, time.Since(start).Seconds())
}

func (h *Handler) MunicipalityStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, http.StatusOK, ingest.ComputeMunicipalityStats(h.data.Facilities()))
	observability.ObserveHTTP(r.Method, "/stats/municipalities", http.StatusOK, time.Since(start).Seconds())
}

type cityInfo struct {
	layers.City
	State string `json:"state"`
}

// LayerCatalog lists the registered cities with their fly-to anchors and
// current lifecycle state.
func (h *Handler) LayerCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cities := h.layers.Cities()
	out := make([]cityInfo, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityInfo{City: c, State: h.layers.StateOf(c.Key).String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": out})
	observability.ObserveHTTP(r.Method, "/layers", http.StatusOK, time.Since(start).Seconds())
}

// Layer serves a city's GeoJSON document, loading it on first request.
func (h *Handler) Layer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
	city := chi.URLParam(r, "city")

	doc, c, err := h.layers.Get(r.Context(), city)
	switch {
	case errors.Is(err, layers.ErrUnknownCity):
		http.Error(sw, "unknown city", http.StatusNotFound)
	case err != nil:
		http.Error(sw, "layer unavailable", http.StatusBadGateway)
	default:
		sw.Header().Set("Content-Type", "application/geo+json")
		sw.Header().Set("X-Anchor", anchorHeader(c.Anchor))
		_, _ = sw.Write(doc)
	}
	observability.ObserveHTTP(r.Method, "/layers/{city}", sw.code, time.Since(start).Seconds())
}

func anchorHeader(a layers.Anchor) string {
	b, _ := json.Marshal(a)
	return string(b)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
