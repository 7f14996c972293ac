// Package spatial provides a point index over node positions for nearest
// neighbor and range queries.
//
// # Overview
//
// [Index] stores (id, x, y) points in a 2-d tree from
// [gonum.org/v1/gonum/spatial/kdtree]. All comparisons use squared Euclidean
// distance, so radius and within-distance checks compare against the squared
// threshold and never take a square root on the query path.
//
// The index is a cache over positions owned by someone else (normally
// [github.com/matzehuels/atlas/pkg/engine.Engine]). Incremental [Index.Insert]
// appends to the tree without rebalancing; [Index.Remove] and replacing an
// existing id cannot be expressed on a k-d tree, so they mark the tree stale
// and the next query rebuilds it from the authoritative point set. After a
// bulk position change, prefer a single [Index.Rebuild].
//
// # Concurrency
//
// Queries may rebuild the tree, so an Index is not safe for concurrent use,
// including concurrent queries.
package spatial

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Point is an indexed node position.
type Point struct {
	ID   uint32
	X, Y float32
}

// Compare implements [kdtree.Comparable].
func (p Point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point)
	switch d {
	case 0:
		return float64(p.X) - float64(q.X)
	case 1:
		return float64(p.Y) - float64(q.Y)
	default:
		panic("spatial: illegal dimension")
	}
}

// Dims implements [kdtree.Comparable].
func (p Point) Dims() int { return 2 }

// Distance implements [kdtree.Comparable]. The result is the squared
// Euclidean distance.
func (p Point) Distance(c kdtree.Comparable) float64 {
	q := c.(Point)
	return sqDist(p, q)
}

func sqDist(p, q Point) float64 {
	dx := float64(p.X) - float64(q.X)
	dy := float64(p.Y) - float64(q.Y)
	return dx*dx + dy*dy
}

// points implements kdtree.Interface.
type points []Point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane orders points along a single dimension for median partitioning.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.points[i].X < p.points[j].X
	}
	return p.points[i].Y < p.points[j].Y
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// Index is a rebuildable point index keyed by id.
//
// The zero value is not usable; create one with [New].
type Index struct {
	tree  *kdtree.Tree
	byID  map[uint32]Point
	stale bool
}

// New returns an empty index.
func New() *Index {
	return NewWithCapacity(0)
}

// NewWithCapacity returns an empty index sized for n points.
func NewWithCapacity(n int) *Index {
	return &Index{
		tree: &kdtree.Tree{},
		byID: make(map[uint32]Point, n),
	}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.byID) }

// Stale reports whether the tree lags the point set and will be rebuilt by
// the next query.
func (ix *Index) Stale() bool { return ix.stale }

// Insert adds a point. Inserting an id that is already present replaces its
// position.
func (ix *Index) Insert(id uint32, x, y float32) {
	p := Point{ID: id, X: x, Y: y}
	if _, ok := ix.byID[id]; ok {
		ix.byID[id] = p
		ix.stale = true
		return
	}
	ix.byID[id] = p
	if !ix.stale {
		ix.tree.Insert(p, false)
	}
}

// Remove deletes the point with the given id and position. It returns false
// if no such point is indexed.
func (ix *Index) Remove(id uint32, x, y float32) bool {
	p, ok := ix.byID[id]
	if !ok || p.X != x || p.Y != y {
		return false
	}
	delete(ix.byID, id)
	ix.stale = true
	return true
}

// Rebuild replaces the contents of the index with pts and bulk-builds a
// balanced tree. Later entries win when ids repeat.
func (ix *Index) Rebuild(pts []Point) {
	clear(ix.byID)
	for _, p := range pts {
		ix.byID[p.ID] = p
	}
	ix.build()
}

// Clear removes every point.
func (ix *Index) Clear() {
	clear(ix.byID)
	ix.tree = &kdtree.Tree{}
	ix.stale = false
}

func (ix *Index) build() {
	ix.stale = false
	if len(ix.byID) == 0 {
		ix.tree = &kdtree.Tree{}
		return
	}
	pts := make(points, 0, len(ix.byID))
	for _, p := range ix.byID {
		pts = append(pts, p)
	}
	// Map iteration is random; sort so equal inputs build equal trees.
	slices.SortFunc(pts, func(a, b Point) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	ix.tree = kdtree.New(pts, false)
}

func (ix *Index) ensure() {
	if ix.stale {
		ix.build()
	}
}

// Nearest returns the id of the point closest to (x, y).
func (ix *Index) Nearest(x, y float32) (uint32, bool) {
	id, _, ok := ix.nearest(x, y)
	return id, ok
}

// NearestWithin returns the id of the point closest to (x, y) if its squared
// distance does not exceed maxDist².
func (ix *Index) NearestWithin(x, y, maxDist float32) (uint32, bool) {
	if maxDist < 0 {
		return 0, false
	}
	id, d, ok := ix.nearest(x, y)
	if !ok {
		return 0, false
	}
	limit := float64(maxDist) * float64(maxDist)
	if d > limit {
		return 0, false
	}
	return id, true
}

func (ix *Index) nearest(x, y float32) (uint32, float64, bool) {
	ix.ensure()
	if len(ix.byID) == 0 {
		return 0, math.Inf(1), false
	}
	c, d := ix.tree.Nearest(Point{X: x, Y: y})
	if c == nil {
		return 0, math.Inf(1), false
	}
	return c.(Point).ID, d, true
}

// InRadius returns the ids of all points within r of (x, y), in ascending id
// order.
func (ix *Index) InRadius(x, y, r float32) []uint32 {
	if r < 0 {
		return nil
	}
	q := Point{X: x, Y: y}
	limit := float64(r) * float64(r)
	return ix.collect(q, limit, func(p Point) bool {
		return sqDist(p, q) <= limit
	})
}

// InRect returns the ids of all points inside the closed rectangle
// [minX, maxX] × [minY, maxY], in ascending id order.
func (ix *Index) InRect(minX, minY, maxX, maxY float32) []uint32 {
	if minX > maxX || minY > maxY {
		return nil
	}
	// Search the circumscribed circle, then keep what falls in the box.
	cx := (float64(minX) + float64(maxX)) / 2
	cy := (float64(minY) + float64(maxY)) / 2
	q := Point{X: float32(cx), Y: float32(cy)}
	// The centre is rounded to float32, so measure to the corners from q
	// itself rather than from the exact centre.
	var limit float64
	for _, x := range [2]float32{minX, maxX} {
		for _, y := range [2]float32{minY, maxY} {
			limit = max(limit, sqDist(q, Point{X: x, Y: y}))
		}
	}
	return ix.collect(q, limit, func(p Point) bool {
		return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
	})
}

func (ix *Index) collect(q Point, limit float64, keep func(Point) bool) []uint32 {
	ix.ensure()
	if len(ix.byID) == 0 {
		return nil
	}
	keeper := kdtree.NewDistKeeper(limit)
	ix.tree.NearestSet(keeper, q)

	var ids []uint32
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(Point)
		if keep(p) {
			ids = append(ids, p.ID)
		}
	}
	slices.Sort(ids)
	return ids
}
