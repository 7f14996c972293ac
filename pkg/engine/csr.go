package engine

// CSR is a compressed sparse row adjacency over node slots.
//
// Offsets has one entry per slot plus one; row s spans
// Indices[Offsets[s]:Offsets[s+1]]. For [Engine.EdgesCSR] the indices are
// target slots, for [Engine.InverseEdgesCSR] they are source slots.
type CSR struct {
	Offsets []uint32
	Indices []uint32
}

// NodeBound returns the number of rows.
func (c CSR) NodeBound() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

// Row returns the indices of slot s.
func (c CSR) Row(s int) []uint32 {
	if s < 0 || s >= c.NodeBound() {
		return nil
	}
	return c.Indices[c.Offsets[s]:c.Offsets[s+1]]
}

// Flat returns the two-segment wire layout: offsets followed by indices.
func (c CSR) Flat() []uint32 {
	out := make([]uint32, 0, len(c.Offsets)+len(c.Indices))
	out = append(out, c.Offsets...)
	return append(out, c.Indices...)
}

// Pairs returns the rows as a flat [row0, index0, row0, index1, ...] pair
// list in CSR order.
func (c CSR) Pairs() []uint32 {
	out := make([]uint32, 0, 2*len(c.Indices))
	for s := 0; s < c.NodeBound(); s++ {
		for _, t := range c.Row(s) {
			out = append(out, uint32(s), t)
		}
	}
	return out
}

// ParseCSR splits a flat wire buffer for bound slots back into a CSR. It
// reports false if the buffer is shorter than bound+1, if the offsets are not
// monotone, or if the final offset disagrees with the number of indices.
// Index values are not range checked.
func ParseCSR(flat []uint32, bound int) (CSR, bool) {
	if bound < 0 || len(flat) < bound+1 {
		return CSR{}, false
	}
	offsets := flat[:bound+1]
	indices := flat[bound+1:]
	if offsets[0] != 0 {
		return CSR{}, false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return CSR{}, false
		}
	}
	if int(offsets[bound]) != len(indices) {
		return CSR{}, false
	}
	return CSR{Offsets: offsets, Indices: indices}, true
}

// EdgesCSR exports outgoing adjacency. Each row lists target slots in edge
// creation order. Holes are empty rows.
func (e *Engine) EdgesCSR() CSR {
	return e.buildCSR(e.out, func(r edgeRecord) int { return r.dst })
}

// InverseEdgesCSR exports incoming adjacency. Each row lists source slots in
// edge creation order.
func (e *Engine) InverseEdgesCSR() CSR {
	return e.buildCSR(e.in, func(r edgeRecord) int { return r.src })
}

func (e *Engine) buildCSR(lists [][]EdgeID, end func(edgeRecord) int) CSR {
	bound := len(e.posX)
	c := CSR{
		Offsets: make([]uint32, bound+1),
		Indices: make([]uint32, 0, e.edges.Len()),
	}
	for s := 0; s < bound; s++ {
		for _, id := range lists[s] {
			rec, _ := e.edges.Get(edgeRecord{id: id})
			c.Indices = append(c.Indices, uint32(end(rec)))
		}
		c.Offsets[s+1] = uint32(len(c.Indices))
	}
	return c
}

// EdgeWeightsCSR returns edge weights aligned with EdgesCSR().Indices.
func (e *Engine) EdgeWeightsCSR() []float32 {
	out := make([]float32, 0, e.edges.Len())
	for s := range e.out {
		for _, id := range e.out[s] {
			rec, _ := e.edges.Get(edgeRecord{id: id})
			out = append(out, rec.weight)
		}
	}
	return out
}

// NodeDegrees returns [out0, in0, out1, in1, ...] with one pair per slot.
func (e *Engine) NodeDegrees() []uint32 {
	out := make([]uint32, 2*len(e.posX))
	for s := range e.posX {
		out[2*s] = uint32(len(e.out[s]))
		out[2*s+1] = uint32(len(e.in[s]))
	}
	return out
}
