package layers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistry_EmbeddedDefault(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	for _, key := range []string{"amsterdam", "rotterdam", "utrecht", "eindhoven", "elburg", "zwolle"} {
		c, ok := reg.Lookup(key)
		if !ok {
			t.Fatalf("missing default city %q", key)
		}
		if c.Anchor.Lat == 0 || c.Anchor.Lon == 0 || c.Anchor.Zoom == 0 {
			t.Fatalf("city %q has no anchor: %+v", key, c.Anchor)
		}
	}
}

func TestLoadRegistry_LookupIsCaseInsensitive(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Lookup("  Amsterdam "); !ok {
		t.Fatal("case-insensitive lookup failed")
	}
}

func TestLoadRegistry_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.yaml")
	doc := `cities:
  - key: teststad
    name: Teststad
    source: /tmp/teststad.json
    anchor: { lat: 52.0, lon: 5.0, zoom: 14 }
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Lookup("teststad"); !ok {
		t.Fatal("custom city missing")
	}
	if _, ok := reg.Lookup("amsterdam"); ok {
		t.Fatal("custom registry should replace the default")
	}
}

func TestLoadRegistry_RejectsMissingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.yaml")
	doc := `cities:
  - key: kaputt
    name: Kaputt
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestCities_SortedByKey(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cities := reg.Cities()
	for i := 1; i < len(cities); i++ {
		if cities[i-1].Key >= cities[i].Key {
			t.Fatalf("not sorted at %d: %s >= %s", i, cities[i-1].Key, cities[i].Key)
		}
	}
}
