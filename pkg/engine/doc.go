// Package engine provides the mutable graph store that every atlas layout
// reads from.
//
// # Overview
//
// An [Engine] holds directed, weighted edges between nodes with stable 32-bit
// ids. Ids increase monotonically and are never reused until [Engine.Clear],
// which resets both the node and edge counters to zero.
//
// Per-node numeric state lives in structure-of-arrays buffers indexed by an
// internal slot: position (x, y), velocity (vx, vy) and a packed [NodeState]
// byte. Slots are only ever appended. Removing a node zeroes its slot and
// leaves a hole, so [Engine.NodeBound] (the slot array length) can exceed
// [Engine.NodeCount] (the live node count). Everything that is sized per slot,
// such as buffer views, [CSR] offsets, degree arrays and layout outputs, is
// sized by the node bound.
//
// # Compressed Adjacency
//
// [Engine.EdgesCSR] and [Engine.InverseEdgesCSR] export the topology as
// offsets of length NodeBound()+1 followed by targets (or sources) of length
// EdgeCount(). Holes have zero out- and in-degree and so contribute
// zero-width offset ranges. [CSR.Flat] produces the two-segment wire layout
// consumed by the layout packages.
//
// # Spatial Queries
//
// The engine owns a [spatial.Index] over live node positions. Any position
// change marks it dirty; [Engine.SpatialDirty] exposes the flag and
// [Engine.RebuildSpatialIndex] rebuilds it. Queries such as
// [Engine.FindNearestNode] rebuild a dirty index before answering. Callers
// that write positions through the slices returned by [Engine.PositionsX] and
// [Engine.PositionsY] must call [Engine.MarkSpatialDirty] themselves.
//
// # Failure Semantics
//
// Lookups by unknown id return false or an empty result. Nothing in this
// package returns an error or panics on bad ids.
//
// # Concurrency
//
// Engine is not safe for concurrent use. Slices returned by the buffer views
// stay valid only until the next mutation.
package engine
