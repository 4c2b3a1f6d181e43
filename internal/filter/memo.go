package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

// Memo caches filter results keyed on the snapshot version, filter state
// and viewport. The snapshot is immutable for its lifetime, so a version
// string is enough to invalidate across reloads.
type Memo struct {
	lru *expirable.LRU[string, []model.Facility]
}

func NewMemo(size int, ttl time.Duration) *Memo {
	if size <= 0 {
		size = 128
	}
	return &Memo{lru: expirable.NewLRU[string, []model.Facility](size, nil, ttl)}
}

// Apply returns the memoized filter result, computing and caching it on
// first sight of the key.
func (m *Memo) Apply(version string, facilities []model.Facility, state model.FilterState, vp *model.Viewport) []model.Facility {
	k := memoKey(version, state, vp)
	if v, ok := m.lru.Get(k); ok {
		return v
	}
	out := Apply(facilities, state, vp)
	m.lru.Add(k, out)
	return out
}

func (m *Memo) Len() int { return m.lru.Len() }

func memoKey(version string, state model.FilterState, vp *model.Viewport) string {
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(state.Search)))
	b.WriteByte('|')
	if state.Types == nil {
		b.WriteString("all")
	} else {
		enabled := make([]string, 0, len(state.Types))
		for t, on := range state.Types {
			if on {
				enabled = append(enabled, string(t))
			}
		}
		sort.Strings(enabled)
		b.WriteString(strings.Join(enabled, ","))
	}
	b.WriteByte('|')
	if vp != nil {
		// zoom affects presentation only, not membership, so it stays out
		// of the key
		fmt.Fprintf(&b, "%.6f,%.6f,%.6f,%.6f",
			vp.Bounds.MinLat, vp.Bounds.MinLon, vp.Bounds.MaxLat, vp.Bounds.MaxLon)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
