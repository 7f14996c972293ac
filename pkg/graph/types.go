package graph

import (
	"strconv"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout/packing"
)

// =============================================================================
// Graph - Input Document
// =============================================================================

// Graph is the canonical serialization format for atlas input graphs.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one vertex of a [Graph].
type Node struct {
	ID       string         `json:"id,omitempty"`
	Label    string         `json:"label,omitempty"` // Display label (defaults to ID)
	X        float32        `json:"x,omitempty"`
	Y        float32        `json:"y,omitempty"`
	Category string         `json:"category,omitempty"` // repository, directory, file, symbol or other
	Pinned   bool           `json:"pinned,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed, optionally weighted edge between two node ids.
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Weight *float32 `json:"weight,omitempty"` // nil means 1
}

// EdgeWeight returns the edge weight, defaulting to 1.
func (e *Edge) EdgeWeight() float32 {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

// NodeCount returns the number of nodes in the document.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges in the document.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// key returns the id a node is addressed by.
func (g Graph) key(i int) string {
	if id := g.Nodes[i].ID; id != "" {
		return id
	}
	return strconv.Itoa(i)
}

// =============================================================================
// Conversion - Graph ↔ Engine
// =============================================================================

// Loaded is an engine populated from a [Graph].
type Loaded struct {
	Engine *engine.Engine

	// IDs maps document keys to engine ids.
	IDs map[string]engine.NodeID

	// Keys maps engine ids back to document keys. The engine is fresh, so
	// engine ids are dense and equal to slots.
	Keys []string

	// Categories holds the packing category of every slot.
	Categories []uint8
}

// Lookup returns the engine id for a document key. Unknown keys yield a
// NODE_NOT_FOUND error.
func (l *Loaded) Lookup(key string) (engine.NodeID, error) {
	id, ok := l.IDs[key]
	if !ok {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", key)
	}
	return id, nil
}

// Key returns the document key of an engine id, falling back to its decimal
// form.
func (l *Loaded) Key(id engine.NodeID) string {
	if int(id) < len(l.Keys) {
		return l.Keys[id]
	}
	return strconv.FormatUint(uint64(id), 10)
}

// Load validates g and builds an engine from it. Nodes are added in document
// order, so the i-th node gets engine id i. Pinned nodes are pinned in the
// engine. Duplicate keys, invalid coordinates and edges naming unknown nodes
// are INVALID_INPUT errors.
func Load(g Graph) (*Loaded, error) {
	e := engine.NewWithCapacity(len(g.Nodes))
	l := &Loaded{
		Engine:     e,
		IDs:        make(map[string]engine.NodeID, len(g.Nodes)),
		Keys:       make([]string, len(g.Nodes)),
		Categories: make([]uint8, len(g.Nodes)),
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		key := g.key(i)
		if err := errors.ValidateNodeKey(key); err != nil {
			return nil, err
		}
		if _, dup := l.IDs[key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", key)
		}
		if err := errors.ValidateCoordinate("x of "+key, float64(n.X)); err != nil {
			return nil, err
		}
		if err := errors.ValidateCoordinate("y of "+key, float64(n.Y)); err != nil {
			return nil, err
		}

		id := e.AddNode(n.X, n.Y)
		if n.Pinned {
			e.PinNode(id)
		}
		l.IDs[key] = id
		l.Keys[i] = key
		l.Categories[i] = uint8(categoryFor(n.Category))
	}

	for i, edge := range g.Edges {
		src, ok := l.IDs[edge.From]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown source %q", i, edge.From)
		}
		dst, ok := l.IDs[edge.To]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown target %q", i, edge.To)
		}
		w := edge.EdgeWeight()
		if err := errors.ValidateCoordinate("weight of edge "+strconv.Itoa(i), float64(w)); err != nil {
			return nil, err
		}
		e.AddEdge(src, dst, w)
	}
	return l, nil
}

func categoryFor(name string) packing.Category {
	if name == "" {
		return packing.Other
	}
	c, _ := packing.ParseCategory(name)
	return c
}

// FromEngine converts the live nodes and edges of e into a [Graph]. keys maps
// engine ids to document keys; ids beyond it use their decimal form. Node
// order follows slot order and edge order follows edge id.
func FromEngine(e *engine.Engine, keys []string) Graph {
	name := func(id engine.NodeID) string {
		if int(id) < len(keys) && keys[id] != "" {
			return keys[id]
		}
		return strconv.FormatUint(uint64(id), 10)
	}

	ids := e.NodeIDs()
	g := Graph{
		Nodes: make([]Node, 0, len(ids)),
		Edges: make([]Edge, 0, e.EdgeCount()),
	}
	for _, id := range ids {
		x, y, _ := e.NodePosition(id)
		g.Nodes = append(g.Nodes, Node{
			ID:     name(id),
			X:      x,
			Y:      y,
			Pinned: e.IsNodePinned(id),
		})
	}
	e.Edges(func(info engine.EdgeInfo) bool {
		edge := Edge{From: name(info.Source), To: name(info.Target)}
		if info.Weight != 1 {
			w := info.Weight
			edge.Weight = &w
		}
		g.Edges = append(g.Edges, edge)
		return true
	})
	return g
}
