package packing

import (
	"math"

	"github.com/matzehuels/atlas/pkg/layout/hierarchy"
)

// DefaultPackingEfficiency is the share of a parent's disc that randomly
// packed child circles fill.
const DefaultPackingEfficiency = 0.82

// enclosingRadii computes a radius per tree node, children first.
// base and pad give the leaf radius and padding of a node index.
func enclosingRadii(tree *hierarchy.Tree, efficiency float64, base, pad func(i int) float64) []float64 {
	radii := make([]float64, tree.Len())
	for _, i := range tree.PostOrder() {
		kids := tree.Nodes[i].Children
		if len(kids) == 0 {
			radii[i] = base(i)
			continue
		}
		area := 0.0
		for _, c := range kids {
			area += math.Pi * radii[c] * radii[c]
		}
		r := math.Sqrt(area / (math.Pi * efficiency))
		radii[i] = max(r, base(i)) + pad(i)
	}
	return radii
}

// parse reduces edges to a tree rooted at root, or at the detected root when
// root is nil. It returns nil when nothing survives.
func parse(bound int, edges []uint32, root *uint32) *hierarchy.Tree {
	adj, _ := hierarchy.ParseEdges(bound, edges)
	if adj.Len() == 0 {
		return nil
	}
	var r uint32
	if root != nil {
		r = *root
	} else {
		r, _ = hierarchy.DetectRoot(adj)
	}
	return hierarchy.Build(adj, r)
}
