package ingest

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/robbertj85/parkeerplaatsen/internal/dataset"
	"github.com/robbertj85/parkeerplaatsen/internal/model"
	"github.com/robbertj85/parkeerplaatsen/internal/provinces"
)

// SplitByProvince buckets facilities by the province bounding box that
// contains their centroid. Facilities outside every box, or without a
// usable position, land in the "other" bucket so nothing is dropped.
func SplitByProvince(facilities []model.Facility) map[string][]model.Facility {
	out := map[string][]model.Facility{}
	for i := range facilities {
		f := &facilities[i]
		lat, lon, ok := centroid(f)
		name := provinces.Other
		if ok {
			name = provinces.Assign(lat, lon)
		}
		out[name] = append(out[name], *f)
	}
	return out
}

// centroid prefers the point coordinates and falls back to the geometry
// centroid for polygon sources.
func centroid(f *model.Facility) (lat, lon float64, ok bool) {
	if f.HasCoordinates() {
		return *f.Latitude, *f.Longitude, true
	}
	if len(f.Geometry) == 0 {
		return 0, 0, false
	}
	geom, err := geojson.UnmarshalGeometry(f.Geometry)
	if err != nil {
		return 0, 0, false
	}
	var c orb.Point
	switch g := geom.Geometry().(type) {
	case orb.Point:
		c = g
	default:
		c, _ = planar.CentroidArea(g)
	}
	return c.Lat(), c.Lon(), true
}

// WriteProvinceFiles writes one pre-gzipped snapshot per bucket to dir,
// named <province>.json.gz, ready to be served verbatim with
// Content-Encoding: gzip.
func WriteProvinceFiles(dir string, buckets map[string][]model.Facility) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create province dir: %w", err)
	}
	generated := time.Now().UTC().Format(time.RFC3339)

	for name, feats := range buckets {
		snap := model.Snapshot{
			Metadata: model.Metadata{
				Generated: generated,
				Stats:     dataset.ComputeStats(feats),
			},
			Features: feats,
		}
		if err := writeGzipJSON(filepath.Join(dir, name+".json.gz"), snap); err != nil {
			return fmt.Errorf("province %s: %w", name, err)
		}
	}
	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)

	if err := enc.Encode(v); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("gzip close %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

