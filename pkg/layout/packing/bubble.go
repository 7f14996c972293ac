package packing

import (
	"github.com/matzehuels/atlas/pkg/engine"
)

// Default bubble values.
const (
	DefaultBubbleBaseRadius = 10.0
	DefaultBubblePadding    = 5.0
)

// BubbleConfig controls [Bubble].
type BubbleConfig struct {
	BaseRadius        float32
	Padding           float32
	PackingEfficiency float32
}

// DefaultBubbleConfig returns the default configuration.
func DefaultBubbleConfig() BubbleConfig {
	return BubbleConfig{
		BaseRadius:        DefaultBubbleBaseRadius,
		Padding:           DefaultBubblePadding,
		PackingEfficiency: DefaultPackingEfficiency,
	}
}

// Validate replaces invalid values with defaults.
func (c *BubbleConfig) Validate() {
	if c.BaseRadius < 0 {
		c.BaseRadius = DefaultBubbleBaseRadius
	}
	if c.Padding < 0 {
		c.Padding = DefaultBubblePadding
	}
	if c.PackingEfficiency <= 0 || c.PackingEfficiency > 1 {
		c.PackingEfficiency = DefaultPackingEfficiency
	}
}

// Bubble returns [radius_0, ..., radius_{n-1}, depth_0, ..., depth_{n-1}]
// for n = bound slots. Leaves get BaseRadius; internal nodes enclose their
// children. Slots outside the tree, and every slot when edges cannot be
// used, keep BaseRadius and depth 0. It returns an empty slice for bound 0.
func Bubble(edges []uint32, bound int, root *uint32, cfg BubbleConfig) []float32 {
	if bound <= 0 {
		return []float32{}
	}
	cfg.Validate()
	out := make([]float32, 2*bound)
	for i := 0; i < bound; i++ {
		out[i] = cfg.BaseRadius
	}

	tree := parse(bound, edges, root)
	if tree.Len() == 0 {
		return out
	}
	base := func(int) float64 { return float64(cfg.BaseRadius) }
	pad := func(int) float64 { return float64(cfg.Padding) }
	radii := enclosingRadii(tree, float64(cfg.PackingEfficiency), base, pad)
	for i, n := range tree.Nodes {
		out[n.Slot] = float32(radii[i])
		out[bound+int(n.Slot)] = float32(n.Depth)
	}
	return out
}

// BubbleFromEngine runs [Bubble] over the engine's edges.
func BubbleFromEngine(e *engine.Engine, root *engine.NodeID, cfg BubbleConfig) []float32 {
	rs, ok := rootSlot(e, root)
	if !ok {
		return Bubble(nil, e.NodeBound(), nil, cfg)
	}
	return Bubble(e.EdgesCSR().Pairs(), e.NodeBound(), rs, cfg)
}

// SplitBubble separates a [Bubble] result into radii and depths.
func SplitBubble(data []float32) (radii, depths []float32) {
	n := len(data) / 2
	return data[:n], data[n : 2*n]
}
