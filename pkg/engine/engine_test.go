package engine

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/atlas/pkg/layout"
)

func TestAddNodeIDs(t *testing.T) {
	e := New()
	for want := NodeID(0); want < 3; want++ {
		if got := e.AddNode(float32(want), 0); got != want {
			t.Errorf("AddNode() = %d, want %d", got, want)
		}
	}
	if e.NodeCount() != 3 || e.NodeBound() != 3 {
		t.Errorf("NodeCount, NodeBound = %d, %d, want 3, 3", e.NodeCount(), e.NodeBound())
	}
}

func TestAddNodesOddLength(t *testing.T) {
	e := New()
	if got := e.AddNodes([]float32{1, 2, 3, 4, 5}); got != 2 {
		t.Errorf("AddNodes = %d, want 2", got)
	}
	x, y, ok := e.NodePosition(1)
	if !ok || x != 3 || y != 4 {
		t.Errorf("NodePosition(1) = %v, %v, %v, want 3, 4, true", x, y, ok)
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	e := New()
	a := e.AddNode(0, 0)
	if _, ok := e.AddEdge(a, 42, 1); ok {
		t.Error("AddEdge to unknown node should fail")
	}
	if _, ok := e.AddEdge(42, a, 1); ok {
		t.Error("AddEdge from unknown node should fail")
	}
	if e.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", e.EdgeCount())
	}
	// A failed add does not consume an id.
	id, ok := e.AddEdge(a, a, 2)
	if !ok || id != 0 {
		t.Errorf("AddEdge = %d, %v, want 0, true", id, ok)
	}
}

func TestAddEdgesPairs(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 6))
	if got := e.AddEdges([]uint32{0, 1, 1, 2, 2, 9, 0}); got != 2 {
		t.Errorf("AddEdges = %d, want 2", got)
	}
	if got := e.Neighbors(0); !slices.Equal(got, []NodeID{1}) {
		t.Errorf("Neighbors(0) = %v, want [1]", got)
	}
	_, _, w, ok := e.Edge(1)
	if !ok || w != 1 {
		t.Errorf("Edge(1) weight = %v, %v, want 1, true", w, ok)
	}
}

func TestRemoveNode(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 8))
	e.AddEdges([]uint32{0, 1, 1, 2, 2, 1, 1, 1, 3, 0})

	if !e.RemoveNode(1) {
		t.Fatal("RemoveNode(1) = false, want true")
	}
	if e.RemoveNode(1) {
		t.Error("second RemoveNode(1) = true, want false")
	}
	if e.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", e.NodeCount())
	}
	if e.NodeBound() != 4 {
		t.Errorf("NodeBound = %d, want 4", e.NodeBound())
	}
	if e.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", e.EdgeCount())
	}
	if e.HasNode(1) {
		t.Error("HasNode(1) = true after removal")
	}
	if _, ok := e.IDAt(1); ok {
		t.Error("IDAt(1) should report a hole")
	}

	for _, c := range []CSR{e.EdgesCSR(), e.InverseEdgesCSR()} {
		for s := 0; s < c.NodeBound(); s++ {
			for _, t2 := range c.Row(s) {
				if s == 1 || t2 == 1 {
					t.Errorf("edge %d->%d still touches removed slot", s, t2)
				}
			}
		}
	}

	// New nodes never reuse the hole.
	if id := e.AddNode(0, 0); id != 4 {
		t.Errorf("AddNode after removal = %d, want 4", id)
	}
	if slot, _ := e.SlotOf(4); slot != 4 {
		t.Errorf("SlotOf(4) = %d, want 4", slot)
	}
}

func TestRemoveEdge(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 4))
	a, _ := e.AddEdge(0, 1, 1)
	b, _ := e.AddEdge(0, 1, 1)

	if !e.RemoveEdge(a) {
		t.Fatal("RemoveEdge = false, want true")
	}
	if e.RemoveEdge(a) {
		t.Error("second RemoveEdge = true, want false")
	}
	if _, _, _, ok := e.Edge(b); !ok {
		t.Error("parallel edge should survive")
	}
	if got := e.NodeDegrees(); !slices.Equal(got, []uint32{1, 0, 0, 1}) {
		t.Errorf("NodeDegrees = %v, want [1 0 0 1]", got)
	}
}

func TestClearIdempotent(t *testing.T) {
	e := New()
	e.AddNodes([]float32{1, 1, 2, 2})
	e.AddEdges([]uint32{0, 1})

	for i := 0; i < 2; i++ {
		e.Clear()
		if e.NodeCount() != 0 || e.NodeBound() != 0 || e.EdgeCount() != 0 {
			t.Errorf("after Clear: counts = %d, %d, %d, want zeros",
				e.NodeCount(), e.NodeBound(), e.EdgeCount())
		}
		if _, ok := e.FindNearestNode(0, 0); ok {
			t.Error("FindNearestNode after Clear should report none")
		}
	}
	if id := e.AddNode(0, 0); id != 0 {
		t.Errorf("first id after Clear = %d, want 0", id)
	}
	e.AddNode(1, 1)
	if id, _ := e.AddEdge(0, 1, 1); id != 0 {
		t.Errorf("first edge id after Clear = %d, want 0", id)
	}
}

func TestCSRWithHoles(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 8))
	e.AddEdges([]uint32{0, 2, 0, 3, 1, 3, 3, 0})
	e.RemoveNode(1)

	c := e.EdgesCSR()
	if want := []uint32{0, 2, 2, 2, 3}; !slices.Equal(c.Offsets, want) {
		t.Errorf("Offsets = %v, want %v", c.Offsets, want)
	}
	if want := []uint32{2, 3, 0}; !slices.Equal(c.Indices, want) {
		t.Errorf("Indices = %v, want %v", c.Indices, want)
	}

	inv := e.InverseEdgesCSR()
	if want := []uint32{0, 1, 1, 2, 3}; !slices.Equal(inv.Offsets, want) {
		t.Errorf("inverse Offsets = %v, want %v", inv.Offsets, want)
	}
	if want := []uint32{3, 0, 0}; !slices.Equal(inv.Indices, want) {
		t.Errorf("inverse Indices = %v, want %v", inv.Indices, want)
	}

	flat := c.Flat()
	if len(flat) != e.NodeBound()+1+e.EdgeCount() {
		t.Errorf("len(Flat) = %d, want %d", len(flat), e.NodeBound()+1+e.EdgeCount())
	}
	parsed, ok := ParseCSR(flat, e.NodeBound())
	if !ok || !slices.Equal(parsed.Pairs(), c.Pairs()) {
		t.Errorf("ParseCSR(Flat) = %v, %v, want %v", parsed, ok, c)
	}
}

func TestCSRRoundTrip(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 12))
	e.AddEdges([]uint32{0, 1, 0, 2, 1, 2, 2, 0, 3, 4, 4, 5, 5, 3, 2, 2, 0, 1})

	fresh := New()
	fresh.AddNodes(make([]float32, 2*e.NodeBound()))
	fresh.AddEdges(e.EdgesCSR().Pairs())

	if !slices.Equal(fresh.NodeDegrees(), e.NodeDegrees()) {
		t.Errorf("degrees = %v, want %v", fresh.NodeDegrees(), e.NodeDegrees())
	}
	if !slices.Equal(fresh.EdgesCSR().Pairs(), e.EdgesCSR().Pairs()) {
		t.Errorf("pairs = %v, want %v", fresh.EdgesCSR().Pairs(), e.EdgesCSR().Pairs())
	}
	if fresh.EdgeCount() != e.EdgeCount() {
		t.Errorf("EdgeCount = %d, want %d", fresh.EdgeCount(), e.EdgeCount())
	}
}

func TestParseCSRRejects(t *testing.T) {
	tests := []struct {
		name  string
		flat  []uint32
		bound int
	}{
		{"short", []uint32{0, 1}, 2},
		{"nonzero start", []uint32{1, 1}, 1},
		{"decreasing", []uint32{0, 2, 1, 0, 0}, 2},
		{"count mismatch", []uint32{0, 1, 2, 0}, 2},
	}
	for _, tt := range tests {
		if _, ok := ParseCSR(tt.flat, tt.bound); ok {
			t.Errorf("%s: ParseCSR = ok, want failure", tt.name)
		}
	}
}

func TestEdgeWeightsAligned(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 6))
	e.AddEdge(2, 0, 3)
	e.AddEdge(0, 1, 1.5)
	e.AddEdge(0, 2, 2)

	c := e.EdgesCSR()
	w := e.EdgeWeightsCSR()
	if want := []uint32{1, 2, 0}; !slices.Equal(c.Indices, want) {
		t.Errorf("Indices = %v, want %v", c.Indices, want)
	}
	if want := []float32{1.5, 2, 3}; !slices.Equal(w, want) {
		t.Errorf("weights = %v, want %v", w, want)
	}
}

func TestBoundsLiveOnly(t *testing.T) {
	e := New()
	if _, ok := e.Bounds(); ok {
		t.Error("Bounds on empty engine should report false")
	}
	e.AddNodes([]float32{-5, 2, 10, -3, 100, 100})
	e.RemoveNode(2)

	b, ok := e.Bounds()
	want := Bounds{MinX: -5, MinY: -3, MaxX: 10, MaxY: 2}
	if !ok || b != want {
		t.Errorf("Bounds = %+v, %v, want %+v", b, ok, want)
	}
	if b.Width() != 15 || b.Height() != 5 {
		t.Errorf("Width, Height = %v, %v, want 15, 5", b.Width(), b.Height())
	}
}

func TestNodeState(t *testing.T) {
	e := New()
	id := e.AddNode(0, 0)

	e.PinNode(id)
	e.SetNodeFlag(id, StateSelected|StateHovered, true)
	s := e.NodeState(id)
	if !s.Pinned() || !s.Selected() || !s.Hovered() || s.Hidden() {
		t.Errorf("NodeState = %08b", s)
	}
	e.UnpinNode(id)
	if e.IsNodePinned(id) {
		t.Error("IsNodePinned after UnpinNode = true")
	}
	if e.PinNode(99) {
		t.Error("PinNode(unknown) = true")
	}
}

func TestSetPositions(t *testing.T) {
	e := New()
	e.AddNodes(make([]float32, 8))
	e.RemoveNode(1)
	e.PinNode(2)
	e.RebuildSpatialIndex()

	s := layout.Sentinel
	moved := e.SetPositions([]float32{1, 1, 2, 2, 3, 3, s, s})
	if moved != 1 {
		t.Errorf("SetPositions = %d, want 1", moved)
	}
	if want := []float32{1, 0, 0, 0}; !slices.Equal(e.PositionsX(), want) {
		t.Errorf("PositionsX = %v, want %v", e.PositionsX(), want)
	}
	if !e.SpatialDirty() {
		t.Error("SetPositions should mark the spatial index dirty")
	}
}

func TestSpatialQueries(t *testing.T) {
	e := New()
	e.AddNodes([]float32{0, 0, 10, 0, 0, 10, 10, 10})
	e.RemoveNode(0)

	if !e.SpatialDirty() {
		t.Error("mutations should mark the index dirty")
	}
	e.RebuildSpatialIndex()
	if e.SpatialDirty() {
		t.Error("RebuildSpatialIndex should clear the dirty flag")
	}

	if id, ok := e.FindNearestNode(1, 1); !ok || id == 0 {
		t.Errorf("FindNearestNode(1, 1) = %d, %v, want a live node", id, ok)
	}
	if _, ok := e.FindNearestNodeWithin(1, 1, 5); ok {
		t.Error("FindNearestNodeWithin(5) should report none")
	}
	if got := e.FindNodesInRect(0, 0, 10, 10); !slices.Equal(got, []NodeID{1, 2, 3}) {
		t.Errorf("FindNodesInRect = %v, want [1 2 3]", got)
	}
	if got := e.FindNodesInRadius(10, 10, 10); !slices.Equal(got, []NodeID{1, 2, 3}) {
		t.Errorf("FindNodesInRadius = %v, want [1 2 3]", got)
	}

	// Queries after a position change see the new position.
	e.SetNodePosition(3, -50, -50)
	if id, _ := e.FindNearestNode(-40, -40); id != 3 {
		t.Errorf("FindNearestNode after move = %d, want 3", id)
	}
}

func TestSnapshot(t *testing.T) {
	e := New()
	e.AddNodes([]float32{1.5, -2, 300, 0.25})
	e.SetNodeVelocity(1, 4, 5)
	snap := e.Snapshot()

	e.SetNodePosition(0, 99, 99)
	if snap.X[0] != 1.5 {
		t.Errorf("snapshot X[0] = %v, want 1.5", snap.X[0])
	}
	if snap.Len() != 2 || snap.VY[1] != 5 || !snap.Live[1] {
		t.Errorf("snapshot = %+v", snap)
	}

	got := DecodeHalf(snap.HalfPositions())
	if want := []float32{1.5, -2, 300, 0.25}; !slices.Equal(got, want) {
		t.Errorf("DecodeHalf(HalfPositions) = %v, want %v", got, want)
	}

	sentinel := Snapshot{X: []float32{layout.Sentinel}, Y: []float32{0}}
	if v := DecodeHalf(sentinel.HalfPositions())[0]; !math.IsInf(float64(v), 1) {
		t.Errorf("sentinel encodes to %v, want +Inf", v)
	}
}
