// Package layers manages the supplementary per-city GeoJSON layers: a
// registry of known cities and a lazy loader that fetches each city's
// document at most once per session.
package layers

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var defaultRegistry []byte

// Anchor is the predefined map recentring target used when a city layer is
// enabled. Presentation metadata, not part of the data contract.
type Anchor struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Zoom float64 `yaml:"zoom" json:"zoom"`
}

type City struct {
	Key    string `yaml:"key" json:"key"`
	Name   string `yaml:"name" json:"name"`
	Source string `yaml:"source" json:"-"` // document path or URL
	Anchor Anchor `yaml:"anchor" json:"anchor"`
}

type Registry struct {
	cities map[string]City
}

type registryFile struct {
	Cities []City `yaml:"cities"`
}

// LoadRegistry reads a registry file, or the embedded default when path is
// empty.
func LoadRegistry(path string) (*Registry, error) {
	raw := defaultRegistry
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read city registry: %w", err)
		}
		raw = b
	}

	var rf registryFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse city registry: %w", err)
	}
	if len(rf.Cities) == 0 {
		return nil, fmt.Errorf("city registry has no cities")
	}

	cities := make(map[string]City, len(rf.Cities))
	for _, c := range rf.Cities {
		key := strings.ToLower(strings.TrimSpace(c.Key))
		if key == "" {
			return nil, fmt.Errorf("city registry entry %q missing key", c.Name)
		}
		if c.Source == "" {
			return nil, fmt.Errorf("city %q missing source", key)
		}
		c.Key = key
		cities[key] = c
	}
	return &Registry{cities: cities}, nil
}

// Lookup returns the city for a (case-insensitive) key.
func (r *Registry) Lookup(key string) (City, bool) {
	c, ok := r.cities[strings.ToLower(strings.TrimSpace(key))]
	return c, ok
}

// Cities returns all registered cities sorted by key.
func (r *Registry) Cities() []City {
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
