package hierarchy

import "slices"

// DropStats counts the input pairs that were discarded while parsing.
type DropStats struct {
	// OutOfBounds counts pairs with an endpoint >= the node bound.
	OutOfBounds int
	// SelfLoops counts pairs whose endpoints are equal.
	SelfLoops int
	// Odd is set when the flat array had odd length and was rejected whole.
	Odd bool
}

// Total returns the number of dropped pairs.
func (d DropStats) Total() int { return d.OutOfBounds + d.SelfLoops }

// Adjacency is a parent→children map over node slots.
type Adjacency struct {
	bound     int
	children  map[uint32][]uint32
	hasParent map[uint32]bool
	nodes     []uint32
}

// ParseEdges reads a flat [parent0, child0, parent1, child1, ...] array.
// Pairs with an endpoint outside [0, bound) and self-loops are dropped and
// counted. An odd-length array yields a nil adjacency. Children keep the
// order in which their edges appear.
func ParseEdges(bound int, flat []uint32) (*Adjacency, DropStats) {
	var stats DropStats
	if len(flat)%2 != 0 {
		stats.Odd = true
		return nil, stats
	}

	adj := &Adjacency{
		bound:     bound,
		children:  make(map[uint32][]uint32),
		hasParent: make(map[uint32]bool),
	}
	seen := make(map[uint32]bool)
	for i := 0; i < len(flat); i += 2 {
		p, c := flat[i], flat[i+1]
		if int64(p) >= int64(bound) || int64(c) >= int64(bound) {
			stats.OutOfBounds++
			continue
		}
		if p == c {
			stats.SelfLoops++
			continue
		}
		adj.children[p] = append(adj.children[p], c)
		adj.hasParent[c] = true
		for _, n := range [2]uint32{p, c} {
			if !seen[n] {
				seen[n] = true
				adj.nodes = append(adj.nodes, n)
			}
		}
	}
	slices.Sort(adj.nodes)
	return adj, stats
}

// Bound returns the node bound the adjacency was parsed with.
func (a *Adjacency) Bound() int {
	if a == nil {
		return 0
	}
	return a.bound
}

// Len returns the number of nodes touched by at least one kept edge.
func (a *Adjacency) Len() int {
	if a == nil {
		return 0
	}
	return len(a.nodes)
}

// Nodes returns the nodes touched by kept edges in ascending order.
func (a *Adjacency) Nodes() []uint32 {
	if a == nil {
		return nil
	}
	return a.nodes
}

// Children returns the children of n in edge order.
func (a *Adjacency) Children(n uint32) []uint32 {
	if a == nil {
		return nil
	}
	return a.children[n]
}

// HasParent reports whether some kept edge points at n.
func (a *Adjacency) HasParent(n uint32) bool {
	return a != nil && a.hasParent[n]
}

// DetectRoot picks a root for adj. A unique parentless node wins. With
// several, the one reaching the most descendants wins and ties go to the
// lowest id. When every node has a parent the lowest id is used. It reports
// false for an empty adjacency.
func DetectRoot(adj *Adjacency) (uint32, bool) {
	if adj.Len() == 0 {
		return 0, false
	}
	var roots []uint32
	for _, n := range adj.nodes {
		if !adj.hasParent[n] {
			roots = append(roots, n)
		}
	}
	switch len(roots) {
	case 0:
		return adj.nodes[0], true
	case 1:
		return roots[0], true
	}

	best, bestCount := roots[0], -1
	for _, r := range roots {
		if c := countDescendants(adj, r); c > bestCount {
			best, bestCount = r, c
		}
	}
	return best, true
}

func countDescendants(adj *Adjacency, n uint32) int {
	visited := map[uint32]bool{n: true}
	stack := []uint32{n}
	count := 0
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range adj.children[top] {
			if !visited[c] {
				visited[c] = true
				count++
				stack = append(stack, c)
			}
		}
	}
	return count
}
