package engine

import "slices"

// AddEdge adds a directed edge from src to dst. It reports false, without
// consuming an id, if either endpoint is not a live node. Parallel edges and
// self-loops are allowed.
func (e *Engine) AddEdge(src, dst NodeID, weight float32) (EdgeID, bool) {
	s, ok := e.nodeSlot[src]
	if !ok {
		return 0, false
	}
	d, ok := e.nodeSlot[dst]
	if !ok {
		return 0, false
	}

	id := e.nextEdge
	e.nextEdge++
	e.edges.Set(edgeRecord{id: id, src: s, dst: d, weight: weight})
	e.out[s] = append(e.out[s], id)
	e.in[d] = append(e.in[d], id)
	return id, true
}

// AddEdges adds a weight-1 edge for each (src, dst) pair of a flat
// [src0, dst0, src1, dst1, ...] slice and returns how many were added. Pairs
// naming unknown nodes are skipped; a trailing unpaired value is ignored.
func (e *Engine) AddEdges(pairs []uint32) int {
	added := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, ok := e.AddEdge(NodeID(pairs[i]), NodeID(pairs[i+1]), 1); ok {
			added++
		}
	}
	return added
}

// RemoveEdge deletes an edge. It returns false if id is unknown.
func (e *Engine) RemoveEdge(id EdgeID) bool {
	rec, ok := e.edges.Delete(edgeRecord{id: id})
	if !ok {
		return false
	}
	e.out[rec.src] = deleteID(e.out[rec.src], id)
	e.in[rec.dst] = deleteID(e.in[rec.dst], id)
	return true
}

func deleteID(ids []EdgeID, id EdgeID) []EdgeID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// EdgeCount returns the number of edges.
func (e *Engine) EdgeCount() int { return e.edges.Len() }

// Edge returns the endpoints and weight of an edge.
func (e *Engine) Edge(id EdgeID) (src, dst NodeID, weight float32, ok bool) {
	rec, ok := e.edges.Get(edgeRecord{id: id})
	if !ok {
		return 0, 0, 0, false
	}
	return e.slotNode[rec.src], e.slotNode[rec.dst], rec.weight, true
}

// EdgeInfo describes one edge for iteration.
type EdgeInfo struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	Weight float32
}

// Edges calls fn for every edge in ascending id order until fn returns false.
func (e *Engine) Edges(fn func(EdgeInfo) bool) {
	e.edges.Scan(func(rec edgeRecord) bool {
		return fn(EdgeInfo{
			ID:     rec.id,
			Source: e.slotNode[rec.src],
			Target: e.slotNode[rec.dst],
			Weight: rec.weight,
		})
	})
}

// Neighbors returns the targets of id's outgoing edges in edge creation
// order. A target reached by parallel edges appears once per edge. Unknown
// ids return nil.
func (e *Engine) Neighbors(id NodeID) []NodeID {
	slot, ok := e.nodeSlot[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, 0, len(e.out[slot]))
	for _, eid := range e.out[slot] {
		rec, _ := e.edges.Get(edgeRecord{id: eid})
		out = append(out, e.slotNode[rec.dst])
	}
	return out
}

// OutDegree returns the number of edges leaving id.
func (e *Engine) OutDegree(id NodeID) int {
	if slot, ok := e.nodeSlot[id]; ok {
		return len(e.out[slot])
	}
	return 0
}

// InDegree returns the number of edges entering id.
func (e *Engine) InDegree(id NodeID) int {
	if slot, ok := e.nodeSlot[id]; ok {
		return len(e.in[slot])
	}
	return 0
}
