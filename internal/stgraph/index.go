package stgraph

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// minRectLength keeps R-tree rectangles non-degenerate for point-like and
// line-like boundaries.
const minRectLength = 1e-6

// BoundaryIndex answers S-T window queries over a cycle's boundaries using an
// R-tree on their bounding boxes. Build it fully before querying; Insert must
// not run concurrently with queries.
type BoundaryIndex struct {
	tree       *rtreego.Rtree
	boundaries []*Boundary
	sMin, sMax float64
}

type indexedBoundary struct {
	boundary *Boundary
	seq      int
}

// Bounds implements rtreego.Spatial.
func (ib *indexedBoundary) Bounds() rtreego.Rect {
	box := ib.boundary.BoundingBox()
	return rectFor(box.Min.X, box.Max.X, box.Min.Y, box.Max.Y)
}

func rectFor(t0, t1, s0, s1 float64) rtreego.Rect {
	lengths := []float64{math.Max(t1-t0, minRectLength), math.Max(s1-s0, minRectLength)}
	rect, _ := rtreego.NewRect(rtreego.Point{t0, s0}, lengths)
	return rect
}

// NewBoundaryIndex indexes the given boundaries.
func NewBoundaryIndex(boundaries ...*Boundary) *BoundaryIndex {
	idx := &BoundaryIndex{
		tree: rtreego.NewTree(2, 25, 50),
		sMin: math.Inf(1),
		sMax: math.Inf(-1),
	}
	for _, b := range boundaries {
		idx.Insert(b)
	}
	return idx
}

// Insert adds a boundary to the index.
func (idx *BoundaryIndex) Insert(b *Boundary) {
	box := b.BoundingBox()
	idx.sMin = math.Min(idx.sMin, box.Min.Y)
	idx.sMax = math.Max(idx.sMax, box.Max.Y)
	idx.tree.Insert(&indexedBoundary{boundary: b, seq: len(idx.boundaries)})
	idx.boundaries = append(idx.boundaries, b)
}

// Len returns the number of indexed boundaries.
func (idx *BoundaryIndex) Len() int { return len(idx.boundaries) }

// Boundaries returns the indexed boundaries in insertion order.
func (idx *BoundaryIndex) Boundaries() []*Boundary {
	out := make([]*Boundary, len(idx.boundaries))
	copy(out, idx.boundaries)
	return out
}

// search returns candidates intersecting the window, in insertion order.
func (idx *BoundaryIndex) search(t0, t1, s0, s1 float64) []*Boundary {
	if len(idx.boundaries) == 0 {
		return nil
	}
	hits := idx.tree.SearchIntersect(rectFor(t0-minRectLength, t1+minRectLength, s0-minRectLength, s1+minRectLength))
	found := make([]*indexedBoundary, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.(*indexedBoundary))
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	out := make([]*Boundary, len(found))
	for i, f := range found {
		out[i] = f.boundary
	}
	return out
}

// ActiveAt returns the boundaries whose time scope covers t.
func (idx *BoundaryIndex) ActiveAt(t float64) []*Boundary {
	return idx.InWindow(t, t)
}

// InWindow returns the boundaries whose time scope intersects [t0, t1].
func (idx *BoundaryIndex) InWindow(t0, t1 float64) []*Boundary {
	if t1 < t0 {
		t0, t1 = t1, t0
	}
	var out []*Boundary
	for _, b := range idx.search(t0, t1, idx.sMin, idx.sMax) {
		tMin, tMax := b.TimeScope()
		if tMax >= t0 && tMin <= t1 {
			out = append(out, b)
		}
	}
	return out
}

// Containing returns the boundaries whose polygon contains p.
func (idx *BoundaryIndex) Containing(p STPoint) []*Boundary {
	var out []*Boundary
	for _, b := range idx.search(p.T, p.T, p.S, p.S) {
		if b.ContainsPoint(p) {
			out = append(out, b)
		}
	}
	return out
}
