package pipeline

import (
	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/layout/community"
	"github.com/matzehuels/atlas/pkg/layout/packing"
	"github.com/matzehuels/atlas/pkg/layout/tidytree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the selected algorithm over a loaded graph. It returns
// the layout document and, for positional algorithms, the interleaved
// per-slot positions. It neither caches nor touches engine positions.
func GenerateLayout(loaded *graph.Loaded, opts Options) (graph.Layout, []float32, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, nil, err
	}

	var root *engine.NodeID
	if opts.Root != "" && opts.Algorithm != graph.AlgorithmCommunity {
		id, err := loaded.Lookup(opts.Root)
		if err != nil {
			return graph.Layout{}, nil, err
		}
		root = &id
	}

	l := graph.NewLayout(opts.Algorithm, loaded.Keys)
	if root != nil {
		l.Root = opts.Root
	}
	l.Stats.Nodes = loaded.Engine.NodeCount()
	l.Stats.Edges = loaded.Engine.EdgeCount()

	cfg := opts.Config
	e := loaded.Engine

	switch opts.Algorithm {
	case graph.AlgorithmTree, graph.AlgorithmRadial:
		mode := tidytree.Radial
		if opts.Algorithm == graph.AlgorithmTree {
			mode = tidytree.Linear
		}
		res := tidytree.FromEngine(e, root, cfg.Tree.Layout(mode))
		pos := res.Interleaved()
		l.Stats.Placed = l.SetPositions(pos)
		l.Stats.DroppedEdges = res.Dropped.Total()
		return l, pos, nil

	case graph.AlgorithmCommunity:
		res, pos := community.LayoutFromEngine(e, cfg.Community.Options(), cfg.Community.Layout())
		l.Stats.Placed = l.SetPositions(pos)
		for i, c := range res.Assignments {
			if i >= len(l.Nodes) || c == community.Unassigned {
				continue
			}
			l.Nodes[i].Community = &c
		}
		q := res.Modularity
		l.CommunityCount = res.Count
		l.Modularity = &q
		l.Levels = res.Levels
		return l, pos, nil

	case graph.AlgorithmCodebase:
		pos := packing.CodebaseFromEngine(e, loaded.Categories, root, cfg.Codebase.Layout())
		l.Stats.Placed = l.SetPositions(pos)
		return l, pos, nil

	case graph.AlgorithmBubble:
		radii, depths := packing.SplitBubble(packing.BubbleFromEngine(e, root, cfg.Bubble.Layout()))
		for i := range l.Nodes {
			if i >= len(radii) {
				break
			}
			r, d := radii[i], int(depths[i])
			l.Nodes[i].Radius = &r
			l.Nodes[i].Depth = &d
			l.Stats.MaxDepth = max(l.Stats.MaxDepth, d)
		}
		return l, nil, nil
	}
	return l, nil, nil
}

// applyPositions writes layout positions into the engine. Pinned nodes keep
// their position, and the layout document is updated to report it.
func applyPositions(loaded *graph.Loaded, l *graph.Layout, pos []float32) {
	if len(pos) == 0 {
		return
	}
	e := loaded.Engine
	e.SetPositions(pos)
	for i := range l.Nodes {
		if !l.Nodes[i].Placed() {
			continue
		}
		id, ok := e.IDAt(i)
		if !ok || !e.IsNodePinned(id) {
			continue
		}
		x, y, _ := e.NodePosition(id)
		l.Nodes[i].X, l.Nodes[i].Y = &x, &y
		pos[2*i], pos[2*i+1] = x, y
	}
}
