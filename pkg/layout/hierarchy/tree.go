package hierarchy

// Node is one tree vertex. Indices refer to positions in [Tree.Nodes].
type Node struct {
	Slot     uint32
	Parent   int // -1 for the root
	Children []int
	Depth    int
	Number   int // position among the parent's children
}

// Tree is a rooted tree stored in depth-first pre-order: the root is at
// index 0 and every parent precedes its children.
type Tree struct {
	Nodes []Node
	index map[uint32]int
}

// Build walks adj depth-first from root. A node reached a second time is
// skipped, so the first path found wins and cycles are cut. Build returns
// nil if root is outside the adjacency's bound. A root with no kept edges
// yields a single-node tree.
func Build(adj *Adjacency, root uint32) *Tree {
	if int64(root) >= int64(adj.Bound()) {
		return nil
	}

	type frame struct {
		slot   uint32
		parent int
		depth  int
	}

	t := &Tree{index: make(map[uint32]int)}
	stack := []frame{{slot: root, parent: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := t.index[f.slot]; ok {
			continue
		}

		i := len(t.Nodes)
		t.index[f.slot] = i
		node := Node{Slot: f.slot, Parent: f.parent, Depth: f.depth}
		if f.parent >= 0 {
			p := &t.Nodes[f.parent]
			node.Number = len(p.Children)
			p.Children = append(p.Children, i)
		}
		t.Nodes = append(t.Nodes, node)

		kids := adj.Children(f.slot)
		for k := len(kids) - 1; k >= 0; k-- {
			if _, ok := t.index[kids[k]]; !ok {
				stack = append(stack, frame{slot: kids[k], parent: i, depth: f.depth + 1})
			}
		}
	}
	return t
}

// Len returns the number of tree nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Index returns the position of slot in Nodes.
func (t *Tree) Index(slot uint32) (int, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[slot]
	return i, ok
}

// PreOrder returns node indices with every parent before its children.
func (t *Tree) PreOrder() []int {
	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	return order
}

// PostOrder returns node indices with every child before its parent and
// siblings left to right.
func (t *Tree) PostOrder() []int {
	if t.Len() == 0 {
		return nil
	}
	order := make([]int, 0, len(t.Nodes))
	type frame struct{ node, next int }
	stack := []frame{{node: 0}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		kids := t.Nodes[f.node].Children
		if f.next < len(kids) {
			c := kids[f.next]
			f.next++
			stack = append(stack, frame{node: c})
			continue
		}
		order = append(order, f.node)
		stack = stack[:len(stack)-1]
	}
	return order
}

// MaxDepth returns the depth of the deepest node.
func (t *Tree) MaxDepth() int {
	d := 0
	for i := range t.Nodes {
		d = max(d, t.Nodes[i].Depth)
	}
	return d
}
