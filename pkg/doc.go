// Package pkg provides the libraries behind atlas, a layout engine for large
// graphs.
//
// # Overview
//
// Atlas stores a graph in a mutable [engine] and computes node positions
// with one of several layout algorithms. The results feed spatial queries
// (nearest node, radius, rectangle) and Graphviz previews. The pkg directory
// is organized into three areas:
//
//  1. Core: [engine], [spatial] and the [layout] packages
//  2. Shell: [graph], [pipeline], [config], [cache], [render/nodelink]
//  3. Support: [errors], [observability], [httputil], [buildinfo]
//
// The core packages never log and never return errors for lookup misses.
// The shell packages load JSON documents, apply configuration, cache results
// and map failures to coded errors.
//
// # Architecture
//
// The typical data flow:
//
//	graph document (JSON)
//	         ↓
//	    [graph] package (validate, load into an engine)
//	         ↓
//	    [layout] packages (tidytree, community, packing)
//	         ↓
//	    [engine] (positions written back, spatial index rebuilt lazily)
//	         ↓
//	    layout document, queries, SVG/PNG/DOT preview
//
// [pipeline] runs these stages with caching and observability hooks; the CLI
// and the HTTP server are thin wrappers around it.
//
// # Quick Start
//
// Lay out a small tree directly on the engine:
//
//	e := engine.New()
//	root := e.AddNode(0, 0)
//	a, b := e.AddNode(0, 0), e.AddNode(0, 0)
//	e.AddEdge(root, a, 1)
//	e.AddEdge(root, b, 1)
//
//	res := tidytree.FromEngine(e, &root, tidytree.DefaultConfig())
//	e.SetPositions(res.Interleaved())
//
//	id, _ := e.FindNearestNode(0, 0) // root
//
// Or go through the pipeline with a graph document:
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	res, _ := pipeline.NewRunner(nil, nil, nil).Run(ctx, g, pipeline.Options{
//	    Algorithm: graph.AlgorithmCommunity,
//	})
//	hits, _ := res.InRadius(0, 0, 100)
//
// # Main Packages
//
// [engine] - Slot-based node store with stable ids, an ordered edge table,
// CSR export, node flags and float16 snapshots.
//
// [spatial] - k-d tree over node positions, rebuilt on demand.
//
// [layout/tidytree] - Tidy tree layout in linear and radial modes. Cycles
// and cross edges are dropped and counted.
//
// [layout/community] - Louvain community detection and a sunflower layout of
// the communities.
//
// [layout/packing] - Circle packing for codebases (repository, directory,
// file, symbol) and nested bubble radii.
//
// [graph] - JSON graph and layout documents.
//
// [pipeline] - Load, layout, cache and preview. Used by the CLI and server.
//
// [cache] - File, Redis and null caches keyed by content hash.
//
// [render/nodelink] - DOT generation and in-process Graphviz rendering.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Layout algorithms only
//	go test -run Example ./...  # Examples only
//
// [engine]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/engine
// [spatial]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/spatial
// [layout]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/layout
// [layout/tidytree]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/layout/tidytree
// [layout/community]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/layout/community
// [layout/packing]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/layout/packing
// [graph]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/buildinfo
package pkg
