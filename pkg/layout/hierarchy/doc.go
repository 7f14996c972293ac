// Package hierarchy turns a flat list of parent→child edge pairs into a
// rooted tree.
//
// The tree layouts in [github.com/matzehuels/atlas/pkg/layout/tidytree] and
// [github.com/matzehuels/atlas/pkg/layout/packing] accept arbitrary directed
// graphs. This package does the shared cleanup: [ParseEdges] drops pairs
// that are out of range or self-loops, [DetectRoot] picks a root when the
// caller does not name one, and [Build] walks the graph depth-first from
// that root, keeping the first path to each node and silently discarding
// back edges and cross edges. The result is always a tree, even for cyclic
// input.
//
// All traversals use explicit stacks, so deep trees do not grow the
// goroutine stack.
package hierarchy
