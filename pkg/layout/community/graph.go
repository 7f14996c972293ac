package community

// neighbor is one weighted entry of an undirected adjacency list.
type neighbor struct {
	node   int
	weight float64
}

// graph is an undirected weighted multigraph. degree includes self-loop
// weight that is not listed in neighbors.
type graph struct {
	neighbors [][]neighbor
	degree    []float64
	total     float64
}

func (g *graph) len() int { return len(g.degree) }

// newGraph reads offsets/targets for bound rows. Rows that run past the
// targets are truncated and targets outside [0, bound) are skipped. A nil
// or short weights slice counts missing weights as 1.
func newGraph(offsets, targets []uint32, bound int, weights []float32) *graph {
	g := &graph{
		neighbors: make([][]neighbor, bound),
		degree:    make([]float64, bound),
	}
	if len(offsets) < bound+1 {
		return g
	}
	for src := 0; src < bound; src++ {
		start := int(offsets[src])
		end := min(int(offsets[src+1]), len(targets))
		for i := start; i < end; i++ {
			tgt := int(targets[i])
			if tgt >= bound {
				continue
			}
			w := 1.0
			if i < len(weights) {
				w = float64(weights[i])
			}
			g.neighbors[src] = append(g.neighbors[src], neighbor{tgt, w})
			g.neighbors[tgt] = append(g.neighbors[tgt], neighbor{src, w})
			g.degree[src] += w
			g.degree[tgt] += w
			g.total += w
		}
	}
	return g
}

// selfLoop returns the degree of n not accounted for by its neighbors,
// which is the self-loop weight folded in by earlier coarsening.
func (g *graph) selfLoop(n int) float64 {
	w := g.degree[n]
	for _, nb := range g.neighbors[n] {
		w -= nb.weight
	}
	return w
}

// coarsen collapses each community into one node. Weights between two
// communities are summed in both directions; weight inside a community,
// including self-loops of g, becomes self-loop degree. total and the sum
// of degrees are preserved.
func (g *graph) coarsen(community []int, count int) *graph {
	type pair struct{ a, b int }
	sums := make(map[pair]float64)
	var order []pair
	add := func(k pair, w float64) {
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += w
	}
	for src, ns := range g.neighbors {
		cs := community[src]
		for _, n := range ns {
			add(pair{cs, community[n.node]}, n.weight)
		}
		if w := g.selfLoop(src); w > 0 {
			add(pair{cs, cs}, w)
		}
	}

	out := &graph{
		neighbors: make([][]neighbor, count),
		degree:    make([]float64, count),
	}
	for _, k := range order {
		w := sums[k]
		if k.a != k.b {
			out.neighbors[k.a] = append(out.neighbors[k.a], neighbor{k.b, w})
		}
		out.degree[k.a] += w
		out.total += w / 2
	}
	return out
}
