package tidytree

import "github.com/matzehuels/atlas/pkg/layout/hierarchy"

// walker holds the per-node working state of the Buchheim algorithm,
// indexed like tree.Nodes.
type walker struct {
	tree *hierarchy.Tree
	cfg  Config

	prelim   []float32
	mod      []float32
	shift    []float32
	change   []float32
	thread   []int
	ancestor []int
}

func newWalker(tree *hierarchy.Tree, cfg Config) *walker {
	n := tree.Len()
	w := &walker{
		tree:     tree,
		cfg:      cfg,
		prelim:   make([]float32, n),
		mod:      make([]float32, n),
		shift:    make([]float32, n),
		change:   make([]float32, n),
		thread:   make([]int, n),
		ancestor: make([]int, n),
	}
	for i := range w.thread {
		w.thread[i] = -1
		w.ancestor[i] = i
	}
	return w
}

func (w *walker) children(v int) []int { return w.tree.Nodes[v].Children }

func (w *walker) parent(v int) int { return w.tree.Nodes[v].Parent }

func (w *walker) leftSibling(v int) int {
	n := w.tree.Nodes[v]
	if n.Parent < 0 || n.Number == 0 {
		return -1
	}
	return w.tree.Nodes[n.Parent].Children[n.Number-1]
}

func (w *walker) leftmostSibling(v int) int {
	p := w.parent(v)
	if p < 0 {
		return v
	}
	return w.children(p)[0]
}

func (w *walker) nextLeft(v int) int {
	if c := w.children(v); len(c) > 0 {
		return c[0]
	}
	return w.thread[v]
}

func (w *walker) nextRight(v int) int {
	if c := w.children(v); len(c) > 0 {
		return c[len(c)-1]
	}
	return w.thread[v]
}

func (w *walker) distance(a, b int) float32 {
	if w.parent(a) == w.parent(b) {
		return w.cfg.SiblingSeparation
	}
	return w.cfg.SubtreeSeparation
}

// firstWalk assigns preliminary x values bottom-up. Each node's own subtree
// is finished before its parent positions it against its left sibling, so
// the sibling-relative step runs when the parent is visited.
func (w *walker) firstWalk() {
	for _, v := range w.tree.PostOrder() {
		kids := w.children(v)
		if len(kids) == 0 {
			continue // prelim 0 until the parent places it
		}
		defaultAncestor := kids[0]
		for i, c := range kids {
			if i > 0 {
				left := kids[i-1]
				own := w.prelim[c]
				w.prelim[c] = w.prelim[left] + w.distance(left, c)
				if len(w.children(c)) > 0 {
					w.mod[c] = w.prelim[c] - own
				}
			}
			defaultAncestor = w.apportion(c, defaultAncestor)
		}
		w.executeShifts(v)
		w.prelim[v] = (w.prelim[kids[0]] + w.prelim[kids[len(kids)-1]]) / 2
	}
}

// apportion pushes the subtree of v right until it clears every subtree to
// its left, walking the inner and outer contours of both sides in step.
func (w *walker) apportion(v, defaultAncestor int) int {
	left := w.leftSibling(v)
	if left < 0 {
		return defaultAncestor
	}

	vir, vor := v, v
	vil, vol := left, w.leftmostSibling(v)
	sir, sor := w.mod[vir], w.mod[vor]
	sil, sol := w.mod[vil], w.mod[vol]

	for w.nextRight(vil) >= 0 && w.nextLeft(vir) >= 0 {
		vil = w.nextRight(vil)
		vir = w.nextLeft(vir)
		vol = w.nextLeft(vol)
		vor = w.nextRight(vor)
		w.ancestor[vor] = v

		shift := (w.prelim[vil] + sil) - (w.prelim[vir] + sir) + w.distance(vil, vir)
		if shift > 0 {
			w.moveSubtree(w.ancestorOf(vil, v, defaultAncestor), v, shift)
			sir += shift
			sor += shift
		}
		sil += w.mod[vil]
		sir += w.mod[vir]
		sol += w.mod[vol]
		sor += w.mod[vor]
	}

	if w.nextRight(vil) >= 0 && w.nextRight(vor) < 0 {
		w.thread[vor] = w.nextRight(vil)
		w.mod[vor] += sil - sor
	}
	if w.nextLeft(vir) >= 0 && w.nextLeft(vol) < 0 {
		w.thread[vol] = w.nextLeft(vir)
		w.mod[vol] += sir - sol
		defaultAncestor = v
	}
	return defaultAncestor
}

func (w *walker) ancestorOf(vil, v, defaultAncestor int) int {
	if a := w.ancestor[vil]; w.parent(a) == w.parent(v) {
		return a
	}
	return defaultAncestor
}

// moveSubtree shifts wr right and records the change so the subtrees
// between wl and wr are spread evenly by executeShifts.
func (w *walker) moveSubtree(wl, wr int, shift float32) {
	subtrees := float32(w.tree.Nodes[wr].Number - w.tree.Nodes[wl].Number)
	if subtrees <= 0 {
		subtrees = 1
	}
	w.change[wr] -= shift / subtrees
	w.shift[wr] += shift
	w.change[wl] += shift / subtrees
	w.prelim[wr] += shift
	w.mod[wr] += shift
}

func (w *walker) executeShifts(v int) {
	var shift, change float32
	kids := w.children(v)
	for i := len(kids) - 1; i >= 0; i-- {
		c := kids[i]
		w.prelim[c] += shift
		w.mod[c] += shift
		change += w.change[c]
		shift += w.shift[c] + change
	}
}

// secondWalk returns final x values by adding each node's ancestors'
// modifiers to its preliminary x.
func (w *walker) secondWalk() []float32 {
	n := w.tree.Len()
	xs := make([]float32, n)
	acc := make([]float32, n)
	for _, v := range w.tree.PreOrder() {
		xs[v] = w.prelim[v] + acc[v]
		for _, c := range w.children(v) {
			acc[c] = acc[v] + w.mod[v]
		}
	}
	return xs
}
