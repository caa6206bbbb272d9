// Package geoindex answers exact nearest-point queries over a fixed set of
// identified points.
//
// Points are stored in an R-tree. A query first asks the tree for a nearest
// candidate, then re-checks every point whose box falls inside the square
// window of the candidate's distance, so the answer is exact under Euclidean
// distance and ties resolve to the lowest identifier.
package geoindex

import (
	"errors"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrEmptyIndex is returned by queries against an index with no points.
var ErrEmptyIndex = errors.New("geoindex: index is empty")

const (
	// point boxes are squares of side 2*tolerance around the point
	tolerance = 1e-9

	// below this size a scan is faster than walking the tree
	linearScanLimit = 32

	minChildren = 25
	maxChildren = 50
)

// Item is an indexed point.
type Item struct {
	ID  int64
	Pos orb.Point
}

// itemEntry wraps an item for R-tree storage
type itemEntry struct {
	item Item
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *itemEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// Index is a read-only nearest-point structure. It is safe for concurrent
// queries once built.
type Index struct {
	tree  *rtreego.Rtree
	items []Item
}

// Build creates an index over items. The slice is copied.
func Build(items []Item) *Index {
	ix := &Index{items: append([]Item(nil), items...)}
	if len(items) <= linearScanLimit {
		return ix
	}

	objs := make([]rtreego.Spatial, 0, len(items))
	for _, it := range items {
		bbox, err := pointRect(it.Pos, tolerance)
		if err != nil {
			continue
		}
		objs = append(objs, &itemEntry{item: it, bbox: bbox})
	}
	ix.tree = rtreego.NewTree(2, minChildren, maxChildren, objs...)
	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Nearest returns the item closest to p.
func (ix *Index) Nearest(p orb.Point) (Item, error) {
	if len(ix.items) == 0 {
		return Item{}, ErrEmptyIndex
	}
	if ix.tree == nil {
		it, _ := Linear(ix.items, p)
		return it, nil
	}

	candidate, ok := ix.tree.NearestNeighbor(rtreego.Point{p[0], p[1]}).(*itemEntry)
	if !ok {
		it, _ := Linear(ix.items, p)
		return it, nil
	}

	// Any point at least as close as the candidate has its box inside this window.
	radius := planar.Distance(p, candidate.item.Pos) + 2*tolerance
	window, err := pointRect(p, radius)
	if err != nil {
		it, _ := Linear(ix.items, p)
		return it, nil
	}

	best := candidate.item
	bestDist := planar.Distance(p, best.Pos)
	for _, obj := range ix.tree.SearchIntersect(window) {
		it := obj.(*itemEntry).item
		if closer(it, planar.Distance(p, it.Pos), best, bestDist) {
			best, bestDist = it, planar.Distance(p, it.Pos)
		}
	}
	return best, nil
}

// Linear scans items for the one closest to p. It reports false when items
// is empty.
func Linear(items []Item, p orb.Point) (Item, bool) {
	if len(items) == 0 {
		return Item{}, false
	}

	best := items[0]
	bestDist := planar.Distance(p, best.Pos)
	for _, it := range items[1:] {
		d := planar.Distance(p, it.Pos)
		if closer(it, d, best, bestDist) {
			best, bestDist = it, d
		}
	}
	return best, true
}

func closer(a Item, da float64, b Item, db float64) bool {
	if da != db {
		return da < db
	}
	return a.ID < b.ID
}

// pointRect returns the square of half-width r centred on p
func pointRect(p orb.Point, r float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{p[0] - r, p[1] - r},
		[]float64{2 * r, 2 * r},
	)
}
