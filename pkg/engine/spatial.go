package engine

import "github.com/matzehuels/atlas/pkg/spatial"

// SpatialDirty reports whether positions changed since the spatial index was
// last rebuilt.
func (e *Engine) SpatialDirty() bool { return e.spatialDirty }

// MarkSpatialDirty flags the spatial index for rebuild. Call it after writing
// positions through [Engine.PositionsX] or [Engine.PositionsY].
func (e *Engine) MarkSpatialDirty() { e.spatialDirty = true }

// RebuildSpatialIndex bulk-loads the index from the positions of all live
// nodes and clears the dirty flag.
func (e *Engine) RebuildSpatialIndex() {
	pts := make([]spatial.Point, 0, e.liveCount)
	for slot, ok := range e.live {
		if !ok {
			continue
		}
		pts = append(pts, spatial.Point{
			ID: uint32(e.slotNode[slot]),
			X:  e.posX[slot],
			Y:  e.posY[slot],
		})
	}
	e.index.Rebuild(pts)
	e.spatialDirty = false
}

func (e *Engine) ensureSpatial() {
	if e.spatialDirty {
		e.RebuildSpatialIndex()
	}
}

// FindNearestNode returns the live node closest to (x, y).
func (e *Engine) FindNearestNode(x, y float32) (NodeID, bool) {
	e.ensureSpatial()
	id, ok := e.index.Nearest(x, y)
	return NodeID(id), ok
}

// FindNearestNodeWithin returns the live node closest to (x, y) if it lies
// within maxDist.
func (e *Engine) FindNearestNodeWithin(x, y, maxDist float32) (NodeID, bool) {
	e.ensureSpatial()
	id, ok := e.index.NearestWithin(x, y, maxDist)
	return NodeID(id), ok
}

// FindNodesInRect returns the nodes inside the closed rectangle, in ascending
// id order.
func (e *Engine) FindNodesInRect(minX, minY, maxX, maxY float32) []NodeID {
	e.ensureSpatial()
	return toNodeIDs(e.index.InRect(minX, minY, maxX, maxY))
}

// FindNodesInRadius returns the nodes within r of (x, y), in ascending id
// order.
func (e *Engine) FindNodesInRadius(x, y, r float32) []NodeID {
	e.ensureSpatial()
	return toNodeIDs(e.index.InRadius(x, y, r))
}

func toNodeIDs(ids []uint32) []NodeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[i] = NodeID(id)
	}
	return out
}
