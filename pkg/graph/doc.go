// Package graph provides the JSON document formats atlas reads and writes.
//
// The engine in [github.com/matzehuels/atlas/pkg/engine] only knows numeric
// ids. Files, HTTP requests and cache entries use the string-keyed documents
// defined here instead, and this package converts between the two.
//
// # Core Types
//
//   - [Graph]: node-link input document with positions, categories and weights
//   - [Layout]: a computed layout, one entry per document node
//   - [Loaded]: an engine built from a [Graph] plus the key mapping
//
// # Graph Documents
//
//	{
//	  "nodes": [
//	    {"id": "repo", "category": "repository"},
//	    {"id": "src", "x": 10, "y": 4, "category": "directory", "pinned": true}
//	  ],
//	  "edges": [{"from": "repo", "to": "src", "weight": 2}]
//	}
//
// Node ids are optional; a node without one is keyed by its position in the
// node list. Edge weights default to 1. Edges that name an unknown node are
// rejected with an INVALID_INPUT error rather than silently dropped.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("repo.json")   // File → Graph
//	loaded, _ := graph.Load(g)                 // Graph → Engine
//	out := graph.FromEngine(e, loaded.Keys)    // Engine → Graph
//	data, _ := graph.MarshalGraph(g)           // Graph → canonical []byte
//
// # Layout Documents
//
// A [Layout] records which algorithm ran, with what root, and where each node
// ended up. Nodes a computation did not reach have null coordinates:
//
//	layout, _ := graph.ReadLayoutFile("layout.json")
//	for _, n := range layout.Nodes {
//	    if n.Placed() {
//	        fmt.Println(n.ID, *n.X, *n.Y)
//	    }
//	}
package graph
