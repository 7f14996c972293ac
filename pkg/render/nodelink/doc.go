// Package nodelink renders positioned graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] converts a graph document and one of its computed layouts into
// Graphviz DOT source in which every placed node carries a pinned position
// (pos="x,y!"). Rendering runs the neato engine, which keeps pinned nodes
// where they are and only routes edges, so the picture shows exactly the
// coordinates atlas computed. Nodes the layout did not place are left out,
// together with their edges.
//
// Community layouts color nodes by community.
//
// # Output Formats
//
//   - svg: in-process via [github.com/goccy/go-graphviz]
//   - png: in-process, same renderer
//   - dot: the DOT source itself
//
// Bubble layouts carry no coordinates and cannot be rendered.
package nodelink
