package graph

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Layout algorithms.
const (
	AlgorithmTree      = "tree"
	AlgorithmRadial    = "radial"
	AlgorithmCommunity = "community"
	AlgorithmCodebase  = "codebase"
	AlgorithmBubble    = "bubble"
)

// Algorithms lists every layout algorithm in display order.
var Algorithms = []string{
	AlgorithmTree,
	AlgorithmRadial,
	AlgorithmCommunity,
	AlgorithmCodebase,
	AlgorithmBubble,
}

// ValidAlgorithm reports whether name is a known layout algorithm.
func ValidAlgorithm(name string) bool {
	for _, a := range Algorithms {
		if a == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Layout - Computed Layout Document
// =============================================================================

// Layout is the serialization format for a computed layout.
//
// Which per-node fields are populated depends on Algorithm:
//
//	tree, radial, codebase: X, Y
//	community:              X, Y, Community
//	bubble:                 Radius, Depth
type Layout struct {
	Algorithm string `json:"algorithm"`
	RunID     string `json:"run_id,omitempty"`
	GraphHash string `json:"graph_hash,omitempty"`
	Root      string `json:"root,omitempty"`
	NodeBound int    `json:"node_bound"`

	Nodes []LayoutNode `json:"nodes"`

	// Community-specific
	CommunityCount uint32   `json:"community_count,omitempty"`
	Modularity     *float64 `json:"modularity,omitempty"`
	Levels         int      `json:"levels,omitempty"`

	Stats Stats `json:"stats"`
}

// LayoutNode is the outcome of a layout for one document node.
type LayoutNode struct {
	ID        string   `json:"id"`
	X         *float32 `json:"x"` // nil when the layout did not place the node
	Y         *float32 `json:"y"`
	Community *uint32  `json:"community,omitempty"`
	Radius    *float32 `json:"radius,omitempty"`
	Depth     *int     `json:"depth,omitempty"`
}

// Placed reports whether the node received a position.
func (n LayoutNode) Placed() bool { return n.X != nil && n.Y != nil }

// Stats summarizes a layout run.
type Stats struct {
	Nodes          int   `json:"nodes"`
	Edges          int   `json:"edges"`
	Placed         int   `json:"placed"`
	DroppedEdges   int   `json:"dropped_edges,omitempty"`
	MaxDepth       int   `json:"max_depth,omitempty"`
	DurationMicros int64 `json:"duration_us"`
	CacheHit       bool  `json:"cache_hit,omitempty"`
}

// Positions returns the layout as interleaved per-slot positions, with
// [layout.Sentinel] for nodes without coordinates. Node i of the layout is
// slot i, matching [Load].
func (l Layout) Positions() []float32 {
	out := layout.SentinelSlice(2 * l.NodeBound)
	for i, n := range l.Nodes {
		if i >= l.NodeBound || !n.Placed() {
			continue
		}
		out[2*i], out[2*i+1] = *n.X, *n.Y
	}
	return out
}

// SetPositions fills X and Y of each node from interleaved per-slot
// positions. Sentinel entries leave the node unplaced. It returns the number
// of placed nodes.
func (l *Layout) SetPositions(interleaved []float32) int {
	placed := 0
	for i := range l.Nodes {
		l.Nodes[i].X, l.Nodes[i].Y = nil, nil
		if 2*i+1 >= len(interleaved) {
			continue
		}
		x, y := interleaved[2*i], interleaved[2*i+1]
		if layout.IsSentinel(x) || layout.IsSentinel(y) {
			continue
		}
		l.Nodes[i].X, l.Nodes[i].Y = &x, &y
		placed++
	}
	return placed
}

// NewLayout returns an empty layout with one unplaced node per key.
func NewLayout(algorithm string, keys []string) Layout {
	nodes := make([]LayoutNode, len(keys))
	for i, k := range keys {
		nodes[i].ID = k
	}
	return Layout{
		Algorithm: algorithm,
		NodeBound: len(keys),
		Nodes:     nodes,
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return data, nil
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that the
// algorithm is known and the node list fits the node bound.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if !ValidAlgorithm(l.Algorithm) {
		return Layout{}, errors.New(errors.ErrCodeInvalidAlgorithm, "unknown layout algorithm %q", l.Algorithm)
	}
	if len(l.Nodes) > l.NodeBound {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout has %d nodes but node bound %d", len(l.Nodes), l.NodeBound)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
