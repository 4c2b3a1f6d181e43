// Package index provides an R-tree index over facility positions so the
// viewport windowing step does not have to scan the full snapshot when no
// type or search restriction is in effect.
package index

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	tolerance   = 0.0001
)

type item struct {
	pos  int // position in the source collection, preserves input order
	rect rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

// Index is an immutable R-tree over the facilities that carry valid
// coordinates. Facilities without coordinates are not indexed and therefore
// never survive a windowed query.
type Index struct {
	tree       *rtreego.Rtree
	facilities []model.Facility
}

// New builds the index. The slice is retained and must not be mutated,
// matching the immutable snapshot contract.
func New(facilities []model.Facility) (*Index, error) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for i := range facilities {
		f := &facilities[i]
		if !f.HasCoordinates() {
			continue
		}
		p := rtreego.Point{*f.Latitude, *f.Longitude}
		rect, err := rtreego.NewRect(p, []float64{tolerance, tolerance})
		if err != nil {
			return nil, fmt.Errorf("index facility %q: %w", f.ID, err)
		}
		tree.Insert(&item{pos: i, rect: rect})
	}
	return &Index{tree: tree, facilities: facilities}, nil
}

// Window returns the facilities inside the bounds, in the same relative
// order as the source collection.
func (ix *Index) Window(b model.Bounds) ([]model.Facility, error) {
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.MaxLon - b.MinLon
	if latSpan <= 0 || lonSpan <= 0 {
		return nil, fmt.Errorf("degenerate bounds: %+v", b)
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLat, b.MinLon}, []float64{latSpan, lonSpan})
	if err != nil {
		return nil, fmt.Errorf("window rect: %w", err)
	}

	results := ix.tree.SearchIntersect(rect)
	positions := make([]int, 0, len(results))
	for _, r := range results {
		it, ok := r.(*item)
		if !ok {
			continue
		}
		f := &ix.facilities[it.pos]
		// the indexed rects carry a small tolerance, so confirm the point
		// is actually inside the box
		if b.Contains(*f.Latitude, *f.Longitude) {
			positions = append(positions, it.pos)
		}
	}
	sort.Ints(positions)

	out := make([]model.Facility, 0, len(positions))
	for _, p := range positions {
		out = append(out, ix.facilities[p])
	}
	return out, nil
}

// Size returns the number of indexed facilities.
func (ix *Index) Size() int {
	if ix.tree == nil {
		return 0
	}
	return ix.tree.Size()
}
