// Package community finds densely connected groups of nodes and lays them
// out as clusters.
//
// # Detection
//
// [Detect] runs multi-level Louvain modularity optimisation over a
// compressed adjacency ([engine.CSR]). Directed edges are treated as
// undirected: an edge A→B adds its weight to both endpoints, so A→B plus B→A
// is a single link of double weight. Each level alternates
//
//  1. local moving, where every node in turn joins the neighbouring
//     community with the largest strictly positive modularity gain, until an
//     iteration gains less than [Options.MinModularityGain] or
//     [Options.MaxIterations] is reached, and
//  2. aggregation, where each community collapses into a super-node whose
//     internal weight becomes a self-loop.
//
// After every level the partition is projected back onto the original nodes
// and scored against the original graph. The best-scoring partition with
// more than one community is returned, so tree-shaped graphs are not merged
// into a single blob. At most 20 levels run.
//
// Neighbouring communities are considered in first-seen order and only a
// strictly better gain replaces the current best, so results are
// deterministic for a given input.
//
// # Layout
//
// [Layout] places community centres around a circle, giving each an arc
// proportional to its size, and spreads members on a sunflower spiral
// around their centre.
package community
