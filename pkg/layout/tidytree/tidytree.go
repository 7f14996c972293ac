// Package tidytree computes Buchheim–Jünger–Leipert tidy tree layouts.
//
// # Overview
//
// [Compute] takes a flat list of parent→child pairs over node slots, reduces
// it to a tree with [hierarchy.Build] and places every reached node in
// linear time:
//
//  1. A post-order first walk gives each node a preliminary x relative to
//     its parent and merges neighbouring subtree contours, following threads
//     so each contour step is O(1) amortised.
//  2. A pre-order second walk sums the accumulated modifiers into final x.
//  3. The (x, depth) pairs are mapped to output coordinates, either a
//     top-down [Linear] layout or a [Radial] one with the root at the origin.
//
// Slots that are not in the tree (holes, disconnected nodes, nodes only
// reachable through dropped edges) get [layout.Sentinel] in both channels.
package tidytree

import (
	"math"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/layout/hierarchy"
)

// Mode selects the output coordinate system.
type Mode uint8

const (
	// Radial places depth d on a circle of radius (d+1)*LevelSeparation and
	// maps x to angle.
	Radial Mode = iota
	// Linear places depth d at y = d*LevelSeparation.
	Linear
)

func (m Mode) String() string {
	if m == Linear {
		return "linear"
	}
	return "radial"
}

// float32Epsilon is the gap between 1 and the next float32.
const float32Epsilon = 0x1p-23

// Default configuration values.
const (
	DefaultSiblingSeparation = 1.0
	DefaultSubtreeSeparation = 2.0
	DefaultLevelSeparation   = 80.0
)

// Config controls node spacing. Separations are in tree units before
// scaling; LevelSeparation is in output units.
type Config struct {
	SiblingSeparation float32
	SubtreeSeparation float32
	LevelSeparation   float32
	Mode              Mode
}

// DefaultConfig returns the default radial configuration.
func DefaultConfig() Config {
	return Config{
		SiblingSeparation: DefaultSiblingSeparation,
		SubtreeSeparation: DefaultSubtreeSeparation,
		LevelSeparation:   DefaultLevelSeparation,
		Mode:              Radial,
	}
}

// Validate replaces non-positive values with defaults.
func (c *Config) Validate() {
	if c.SiblingSeparation <= 0 {
		c.SiblingSeparation = DefaultSiblingSeparation
	}
	if c.SubtreeSeparation <= 0 {
		c.SubtreeSeparation = DefaultSubtreeSeparation
	}
	if c.LevelSeparation <= 0 {
		c.LevelSeparation = DefaultLevelSeparation
	}
}

// Result holds per-slot target positions.
type Result struct {
	X, Y    []float32
	Placed  int
	Dropped hierarchy.DropStats
}

// Interleaved returns positions as [x0, y0, x1, y1, ...].
func (r Result) Interleaved() []float32 {
	return layout.Interleave(r.X, r.Y)
}

func sentinelResult(bound int, dropped hierarchy.DropStats) Result {
	return Result{
		X:       layout.SentinelSlice(bound),
		Y:       layout.SentinelSlice(bound),
		Dropped: dropped,
	}
}

// Compute lays out the tree described by edges, a flat
// [parent0, child0, ...] array over slots in [0, bound). A nil root is
// detected with [hierarchy.DetectRoot].
//
// The result is all sentinel when bound is zero, edges is empty or of odd
// length, no edge survives filtering, or root is out of bounds.
func Compute(bound int, edges []uint32, root *uint32, cfg Config) Result {
	if bound <= 0 {
		return Result{X: []float32{}, Y: []float32{}}
	}
	if len(edges) == 0 {
		return sentinelResult(bound, hierarchy.DropStats{})
	}
	adj, dropped := hierarchy.ParseEdges(bound, edges)
	if adj.Len() == 0 {
		return sentinelResult(bound, dropped)
	}

	var r uint32
	if root != nil {
		r = *root
	} else {
		r, _ = hierarchy.DetectRoot(adj)
	}
	tree := hierarchy.Build(adj, r)
	if tree.Len() == 0 {
		return sentinelResult(bound, dropped)
	}

	cfg.Validate()
	w := newWalker(tree, cfg)
	w.firstWalk()
	xs := w.secondWalk()

	res := sentinelResult(bound, dropped)
	res.Placed = project(tree, xs, cfg, res.X, res.Y)
	return res
}

// FromEngine lays out the engine's own edges. root names an engine node; an
// unknown root yields an all-sentinel result.
func FromEngine(e *engine.Engine, root *engine.NodeID, cfg Config) Result {
	bound := e.NodeBound()
	var rs *uint32
	if root != nil {
		slot, ok := e.SlotOf(*root)
		if !ok {
			return sentinelResult(bound, hierarchy.DropStats{})
		}
		s := uint32(slot)
		rs = &s
	}
	return Compute(bound, e.EdgesCSR().Pairs(), rs, cfg)
}

// project writes final coordinates for every tree node and returns how many
// were placed.
func project(tree *hierarchy.Tree, xs []float32, cfg Config, outX, outY []float32) int {
	minX, maxX := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, x := range xs {
		minX = min(minX, x)
		maxX = max(maxX, x)
	}
	span := maxX - minX

	switch cfg.Mode {
	case Linear:
		offset := -(minX + span/2)
		for i, n := range tree.Nodes {
			outX[n.Slot] = (xs[i] + offset) * cfg.LevelSeparation
			outY[n.Slot] = float32(n.Depth) * cfg.LevelSeparation
		}
	default:
		divisor := span + cfg.SiblingSeparation
		if span <= 0 || divisor <= float32Epsilon {
			for _, n := range tree.Nodes {
				outX[n.Slot], outY[n.Slot] = 0, 0
			}
			return tree.Len()
		}
		scale := 2 * math.Pi / float64(divisor)
		for i, n := range tree.Nodes {
			angle := float64(xs[i]-minX) * scale
			radius := float64(n.Depth+1) * float64(cfg.LevelSeparation)
			outX[n.Slot] = float32(radius * math.Cos(angle))
			outY[n.Slot] = float32(radius * math.Sin(angle))
		}
		root := tree.Nodes[0].Slot
		outX[root], outY[root] = 0, 0
	}
	return tree.Len()
}
