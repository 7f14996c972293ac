package engine

import (
	"slices"

	"github.com/tidwall/btree"

	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/spatial"
)

// NodeID is a stable node identifier.
type NodeID uint32

// EdgeID is a stable edge identifier.
type EdgeID uint32

// NodeState packs per-node flags into one byte.
type NodeState uint8

// Node state flags.
const (
	StatePinned   NodeState = 1 << iota // excluded from simulation
	StateHidden                         // not drawn
	StateSelected                       // part of the current selection
	StateHovered                        // under the pointer
)

// Pinned reports whether the pinned flag is set.
func (s NodeState) Pinned() bool { return s&StatePinned != 0 }

// Hidden reports whether the hidden flag is set.
func (s NodeState) Hidden() bool { return s&StateHidden != 0 }

// Selected reports whether the selected flag is set.
func (s NodeState) Selected() bool { return s&StateSelected != 0 }

// Hovered reports whether the hovered flag is set.
func (s NodeState) Hovered() bool { return s&StateHovered != 0 }

// With returns s with flag set or cleared.
func (s NodeState) With(flag NodeState, on bool) NodeState {
	if on {
		return s | flag
	}
	return s &^ flag
}

// edgeRecord is one row of the edge table. Endpoints are stored as slots.
type edgeRecord struct {
	id       EdgeID
	src, dst int
	weight   float32
}

func edgeLess(a, b edgeRecord) bool { return a.id < b.id }

// Engine is a graph with stable ids and per-slot numeric buffers.
//
// The zero value is not usable; create engines with [New] or
// [NewWithCapacity].
type Engine struct {
	posX, posY []float32
	velX, velY []float32
	states     []NodeState
	live       []bool
	liveCount  int

	nodeSlot map[NodeID]int
	slotNode map[int]NodeID

	edges *btree.BTreeG[edgeRecord]
	out   [][]EdgeID // per slot, in insertion order
	in    [][]EdgeID

	nextNode NodeID
	nextEdge EdgeID

	index        *spatial.Index
	spatialDirty bool
}

// New returns an empty engine.
func New() *Engine {
	return NewWithCapacity(0)
}

// NewWithCapacity returns an empty engine with node buffers preallocated for
// n nodes.
func NewWithCapacity(n int) *Engine {
	e := &Engine{}
	e.reset(n)
	return e
}

func (e *Engine) reset(nodes int) {
	e.posX = make([]float32, 0, nodes)
	e.posY = make([]float32, 0, nodes)
	e.velX = make([]float32, 0, nodes)
	e.velY = make([]float32, 0, nodes)
	e.states = make([]NodeState, 0, nodes)
	e.live = make([]bool, 0, nodes)
	e.out = make([][]EdgeID, 0, nodes)
	e.in = make([][]EdgeID, 0, nodes)
	e.liveCount = 0
	e.nodeSlot = make(map[NodeID]int, nodes)
	e.slotNode = make(map[int]NodeID, nodes)
	e.edges = btree.NewBTreeG[edgeRecord](edgeLess)
	e.nextNode = 0
	e.nextEdge = 0
	e.index = spatial.NewWithCapacity(nodes)
	e.spatialDirty = false
}

// Clear removes every node and edge, empties the spatial index and resets
// the id counters so the next node and edge both get id 0.
func (e *Engine) Clear() {
	e.reset(0)
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode appends a node at (x, y) and returns its id.
func (e *Engine) AddNode(x, y float32) NodeID {
	id := e.nextNode
	e.nextNode++

	slot := len(e.posX)
	e.posX = append(e.posX, x)
	e.posY = append(e.posY, y)
	e.velX = append(e.velX, 0)
	e.velY = append(e.velY, 0)
	e.states = append(e.states, 0)
	e.live = append(e.live, true)
	e.out = append(e.out, nil)
	e.in = append(e.in, nil)
	e.liveCount++

	e.nodeSlot[id] = slot
	e.slotNode[slot] = id
	e.spatialDirty = true
	return id
}

// AddNodes adds one node per (x, y) pair of an interleaved
// [x0, y0, x1, y1, ...] slice and returns how many were added. A trailing
// unpaired value is ignored.
func (e *Engine) AddNodes(positions []float32) int {
	n := len(positions) / 2
	e.grow(n)
	for i := 0; i < n; i++ {
		e.AddNode(positions[2*i], positions[2*i+1])
	}
	return n
}

func (e *Engine) grow(n int) {
	if n <= 0 {
		return
	}
	e.posX = slices.Grow(e.posX, n)
	e.posY = slices.Grow(e.posY, n)
	e.velX = slices.Grow(e.velX, n)
	e.velY = slices.Grow(e.velY, n)
	e.states = slices.Grow(e.states, n)
	e.live = slices.Grow(e.live, n)
	e.out = slices.Grow(e.out, n)
	e.in = slices.Grow(e.in, n)
}

// RemoveNode deletes a node and every edge touching it in either direction.
// The node's slot is zeroed and left allocated. It returns false if id is
// unknown.
func (e *Engine) RemoveNode(id NodeID) bool {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return false
	}

	incident := make([]EdgeID, 0, len(e.out[slot])+len(e.in[slot]))
	incident = append(incident, e.out[slot]...)
	incident = append(incident, e.in[slot]...)
	for _, eid := range incident {
		e.RemoveEdge(eid) // self-loops appear twice; the second call is a no-op
	}

	e.posX[slot], e.posY[slot] = 0, 0
	e.velX[slot], e.velY[slot] = 0, 0
	e.states[slot] = 0
	e.live[slot] = false
	e.out[slot], e.in[slot] = nil, nil
	e.liveCount--

	delete(e.nodeSlot, id)
	delete(e.slotNode, slot)
	e.spatialDirty = true
	return true
}

// NodeCount returns the number of live nodes.
func (e *Engine) NodeCount() int { return e.liveCount }

// NodeBound returns the length of the slot arrays, one past the highest slot
// ever allocated since the last Clear.
func (e *Engine) NodeBound() int { return len(e.posX) }

// HasNode reports whether id refers to a live node.
func (e *Engine) HasNode(id NodeID) bool {
	_, ok := e.nodeSlot[id]
	return ok
}

// SlotOf returns the slot that holds id.
func (e *Engine) SlotOf(id NodeID) (int, bool) {
	slot, ok := e.nodeSlot[id]
	return slot, ok
}

// IDAt returns the id of the live node in slot.
func (e *Engine) IDAt(slot int) (NodeID, bool) {
	id, ok := e.slotNode[slot]
	return id, ok
}

// IsLive reports whether slot holds a live node.
func (e *Engine) IsLive(slot int) bool {
	return slot >= 0 && slot < len(e.live) && e.live[slot]
}

// NodeIDs returns the ids of all live nodes in slot order.
func (e *Engine) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, e.liveCount)
	for slot, ok := range e.live {
		if ok {
			ids = append(ids, e.slotNode[slot])
		}
	}
	return ids
}

// NodePosition returns the position of id.
func (e *Engine) NodePosition(id NodeID) (x, y float32, ok bool) {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return 0, 0, false
	}
	return e.posX[slot], e.posY[slot], true
}

// SetNodePosition moves id to (x, y). It returns false if id is unknown.
func (e *Engine) SetNodePosition(id NodeID, x, y float32) bool {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return false
	}
	e.posX[slot], e.posY[slot] = x, y
	e.spatialDirty = true
	return true
}

// NodeVelocity returns the velocity of id.
func (e *Engine) NodeVelocity(id NodeID) (vx, vy float32, ok bool) {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return 0, 0, false
	}
	return e.velX[slot], e.velY[slot], true
}

// SetNodeVelocity sets the velocity of id. It returns false if id is unknown.
func (e *Engine) SetNodeVelocity(id NodeID, vx, vy float32) bool {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return false
	}
	e.velX[slot], e.velY[slot] = vx, vy
	return true
}

// NodeState returns the state flags of id. Unknown ids report the zero state.
func (e *Engine) NodeState(id NodeID) NodeState {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return 0
	}
	return e.states[slot]
}

// SetNodeFlag sets or clears one or more state flags on id. It returns false
// if id is unknown.
func (e *Engine) SetNodeFlag(id NodeID, flag NodeState, on bool) bool {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return false
	}
	e.states[slot] = e.states[slot].With(flag, on)
	return true
}

// PinNode marks id as pinned.
func (e *Engine) PinNode(id NodeID) bool { return e.SetNodeFlag(id, StatePinned, true) }

// UnpinNode clears the pinned flag of id.
func (e *Engine) UnpinNode(id NodeID) bool { return e.SetNodeFlag(id, StatePinned, false) }

// IsNodePinned reports whether id is live and pinned.
func (e *Engine) IsNodePinned(id NodeID) bool { return e.NodeState(id).Pinned() }

// =============================================================================
// Buffers
// =============================================================================

// PositionsX returns the x channel, one entry per slot. The slice aliases the
// engine's buffer and is valid until the next mutation.
func (e *Engine) PositionsX() []float32 { return e.posX }

// PositionsY returns the y channel, one entry per slot.
func (e *Engine) PositionsY() []float32 { return e.posY }

// VelocitiesX returns the vx channel, one entry per slot.
func (e *Engine) VelocitiesX() []float32 { return e.velX }

// VelocitiesY returns the vy channel, one entry per slot.
func (e *Engine) VelocitiesY() []float32 { return e.velY }

// States returns the state byte of every slot.
func (e *Engine) States() []NodeState { return e.states }

// Positions returns a copy of all slot positions as [x0, y0, x1, y1, ...].
func (e *Engine) Positions() []float32 {
	out := make([]float32, 2*len(e.posX))
	for i := range e.posX {
		out[2*i] = e.posX[i]
		out[2*i+1] = e.posY[i]
	}
	return out
}

// SetPositions copies interleaved per-slot positions, typically the output of
// a layout, into the position buffers. Holes, pinned nodes and entries whose
// x or y is at or above the layout sentinel are skipped. It returns the
// number of nodes moved.
func (e *Engine) SetPositions(interleaved []float32) int {
	n := min(len(interleaved)/2, len(e.posX))
	moved := 0
	for slot := 0; slot < n; slot++ {
		if !e.live[slot] || e.states[slot].Pinned() {
			continue
		}
		x, y := interleaved[2*slot], interleaved[2*slot+1]
		if layout.IsSentinel(x) || layout.IsSentinel(y) {
			continue
		}
		e.posX[slot], e.posY[slot] = x, y
		moved++
	}
	if moved > 0 {
		e.spatialDirty = true
	}
	return moved
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float32
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float32 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float32 { return b.MaxY - b.MinY }

// Bounds returns the bounding box of all live nodes. It reports false for an
// engine with no live nodes.
func (e *Engine) Bounds() (Bounds, bool) {
	var b Bounds
	found := false
	for slot, ok := range e.live {
		if !ok {
			continue
		}
		x, y := e.posX[slot], e.posY[slot]
		if !found {
			b = Bounds{MinX: x, MinY: y, MaxX: x, MaxY: y}
			found = true
			continue
		}
		b.MinX = min(b.MinX, x)
		b.MinY = min(b.MinY, y)
		b.MaxX = max(b.MaxX, x)
		b.MaxY = max(b.MaxY, y)
	}
	return b, found
}
