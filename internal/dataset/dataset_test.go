package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

const sampleSnapshot = `{
  "metadata": {"stats": {"total": 0, "by_type": {}, "by_source": {}, "with_realtime": 0}},
  "features": [
    {"id": "rdw-1", "latitude": 52.37, "longitude": 4.90, "type": "garage", "source": "rdw", "has_realtime": true},
    {"id": "osm-1", "latitude": 52.09, "longitude": 5.12, "source": "osm"},
    {"id": "osm-2", "source": "osm", "type": "weird"}
  ]
}`

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeTemp(t, "snap.json", []byte(sampleSnapshot))

	h, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(h.Facilities()); got != 3 {
		t.Fatalf("facilities=%d want 3", got)
	}
	if !h.Ready() {
		t.Fatal("handle should be ready")
	}

	// missing and unknown types default to other
	if h.Facilities()[1].Type != model.TypeOther {
		t.Fatalf("missing type not defaulted: %q", h.Facilities()[1].Type)
	}
	if h.Facilities()[2].Type != model.TypeOther {
		t.Fatalf("unknown type not defaulted: %q", h.Facilities()[2].Type)
	}

	// stats recomputed since the envelope carried none
	s := h.Stats()
	if s.Total != 3 || s.ByType["garage"] != 1 || s.ByType["other"] != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.BySource["osm"] != 2 || s.WithRealtime != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	// facilities without coordinates stay out of the index
	if h.Index().Size() != 2 {
		t.Fatalf("index size=%d want 2", h.Index().Size())
	}
}

func TestLoad_GzipDetection(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleSnapshot)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := writeTemp(t, "snap.json.gz", buf.Bytes())

	h, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h.Facilities()) != 3 {
		t.Fatalf("facilities=%d want 3", len(h.Facilities()))
	}
}

func TestLoad_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleSnapshot))
	}))
	defer srv.Close()

	h, err := Load(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h.Facilities()) != 3 {
		t.Fatalf("facilities=%d want 3", len(h.Facilities()))
	}
}

func TestLoad_URLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), srv.URL, srv.Client()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestEmpty_NotReady(t *testing.T) {
	h := Empty()
	if h.Ready() {
		t.Fatal("empty handle must not be ready")
	}
	if h.Stats().Total != 0 {
		t.Fatalf("stats total=%d want 0", h.Stats().Total)
	}
}
