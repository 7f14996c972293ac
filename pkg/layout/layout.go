// Package layout holds values shared by the layout algorithms in its
// subpackages.
//
// # Overview
//
// Every layout in atlas produces per-slot output sized to the engine's node
// bound, so holes left by removed nodes and nodes that a computation never
// reached still occupy an entry. Those entries carry [Sentinel] instead of a
// coordinate. Callers check [IsSentinel] before using a position.
//
// The algorithms themselves live in:
//
//   - [github.com/matzehuels/atlas/pkg/layout/tidytree]: Buchheim tidy tree (linear and radial)
//   - [github.com/matzehuels/atlas/pkg/layout/community]: multi-level Louvain plus community circles
//   - [github.com/matzehuels/atlas/pkg/layout/packing]: codebase circle packing and bubble metrics
//
// They share tree construction through
// [github.com/matzehuels/atlas/pkg/layout/hierarchy].
package layout

import "math"

// Sentinel marks a slot that has no position in a computed layout. It is the
// largest finite float32 (3.402823e38).
const Sentinel float32 = math.MaxFloat32

// IsSentinel reports whether v marks an absent position. Any value at or above
// [Sentinel] counts, so +Inf is treated as absent too.
func IsSentinel(v float32) bool {
	return v >= Sentinel
}

// SentinelSlice returns n values all set to [Sentinel].
func SentinelSlice(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = Sentinel
	}
	return out
}

// Interleave zips separate x and y channels into [x0, y0, x1, y1, ...].
// The shorter channel bounds the result.
func Interleave(xs, ys []float32) []float32 {
	n := min(len(xs), len(ys))
	out := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		out[2*i] = xs[i]
		out[2*i+1] = ys[i]
	}
	return out
}
