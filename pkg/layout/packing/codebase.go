package packing

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/layout/hierarchy"
)

// Category classifies a node of a code hierarchy.
type Category uint8

// Node categories. Values at or above Other are treated as Other.
const (
	Repository Category = iota
	Directory
	File
	Symbol
	Other
)

var categoryNames = map[Category]string{
	Repository: "repository",
	Directory:  "directory",
	File:       "file",
	Symbol:     "symbol",
	Other:      "other",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "other"
}

// ParseCategory maps a category name to its value. Unknown names map to
// Other and report false.
func ParseCategory(s string) (Category, bool) {
	for c, name := range categoryNames {
		if name == s {
			return c, true
		}
	}
	return Other, false
}

func categoryOf(categories []uint8, slot uint32) Category {
	if int(slot) >= len(categories) || categories[slot] > uint8(Other) {
		return Other
	}
	return Category(categories[slot])
}

// Default codebase layout values.
const (
	DefaultDirectoryPadding = 15.0
	DefaultFilePadding      = 8.0
	DefaultSymbolRadius     = 5.0
	DefaultFileRadius       = 12.0
	DefaultDirectoryRadius  = 25.0
	DefaultSpreadFactor     = 1.5

	relaxPasses = 3
	epsilon     = 0x1p-23
)

// CodebaseConfig controls [Codebase].
type CodebaseConfig struct {
	DirectoryPadding float32 // inside repository and directory circles
	FilePadding      float32 // inside every other circle
	SymbolRadius     float32 // leaf radius of symbols and other nodes
	FileRadius       float32
	DirectoryRadius  float32 // repositories use twice this
	SpreadFactor     float32 // multiplies every output coordinate
}

// DefaultCodebaseConfig returns the default configuration.
func DefaultCodebaseConfig() CodebaseConfig {
	return CodebaseConfig{
		DirectoryPadding: DefaultDirectoryPadding,
		FilePadding:      DefaultFilePadding,
		SymbolRadius:     DefaultSymbolRadius,
		FileRadius:       DefaultFileRadius,
		DirectoryRadius:  DefaultDirectoryRadius,
		SpreadFactor:     DefaultSpreadFactor,
	}
}

// Validate replaces negative radii and paddings and a non-positive spread
// factor with defaults.
func (c *CodebaseConfig) Validate() {
	if c.DirectoryPadding < 0 {
		c.DirectoryPadding = DefaultDirectoryPadding
	}
	if c.FilePadding < 0 {
		c.FilePadding = DefaultFilePadding
	}
	if c.SymbolRadius < 0 {
		c.SymbolRadius = DefaultSymbolRadius
	}
	if c.FileRadius < 0 {
		c.FileRadius = DefaultFileRadius
	}
	if c.DirectoryRadius < 0 {
		c.DirectoryRadius = DefaultDirectoryRadius
	}
	if c.SpreadFactor <= 0 {
		c.SpreadFactor = DefaultSpreadFactor
	}
}

// BaseRadius returns the minimum radius of a node of category c.
func (c CodebaseConfig) BaseRadius(cat Category) float64 {
	switch cat {
	case Repository:
		return 2 * float64(c.DirectoryRadius)
	case Directory:
		return float64(c.DirectoryRadius)
	case File:
		return float64(c.FileRadius)
	default:
		return float64(c.SymbolRadius)
	}
}

// Padding returns the inner padding of a node of category c.
func (c CodebaseConfig) Padding(cat Category) float64 {
	if cat == Repository || cat == Directory {
		return float64(c.DirectoryPadding)
	}
	return float64(c.FilePadding)
}

// Codebase lays out the containment tree given by edges, a flat
// [parent0, child0, ...] array over bound slots, and returns interleaved
// positions. categories holds one [Category] per slot; missing entries
// count as Other. A nil root is detected.
//
// It returns an empty slice for bound 0. Slots outside the tree, and every
// slot when edges is odd, empty after filtering, or root is out of bounds,
// are [layout.Sentinel].
func Codebase(edges []uint32, categories []uint8, bound int, root *uint32, cfg CodebaseConfig) []float32 {
	if bound <= 0 {
		return []float32{}
	}
	pos := layout.SentinelSlice(2 * bound)
	tree := parse(bound, edges, root)
	if tree.Len() == 0 {
		return pos
	}
	cfg.Validate()

	cats := make([]Category, tree.Len())
	for i, n := range tree.Nodes {
		cats[i] = categoryOf(categories, n.Slot)
	}
	radii := enclosingRadii(tree, DefaultPackingEfficiency,
		func(i int) float64 { return cfg.BaseRadius(cats[i]) },
		func(i int) float64 { return cfg.Padding(cats[i]) },
	)

	p := &packer{
		tree:  tree,
		radii: radii,
		xs:    make([]float64, tree.Len()),
		ys:    make([]float64, tree.Len()),
	}
	for _, i := range tree.PreOrder() {
		p.placeChildren(i, cfg.Padding(cats[i]))
	}

	spread := float64(cfg.SpreadFactor)
	for i, n := range tree.Nodes {
		pos[2*n.Slot] = float32(p.xs[i] * spread)
		pos[2*n.Slot+1] = float32(p.ys[i] * spread)
	}
	return pos
}

// CodebaseFromEngine runs [Codebase] over the engine's edges. categories
// is indexed by slot. An unknown root yields all sentinels.
func CodebaseFromEngine(e *engine.Engine, categories []uint8, root *engine.NodeID, cfg CodebaseConfig) []float32 {
	rs, ok := rootSlot(e, root)
	if !ok {
		return layout.SentinelSlice(2 * e.NodeBound())
	}
	return Codebase(e.EdgesCSR().Pairs(), categories, e.NodeBound(), rs, cfg)
}

func rootSlot(e *engine.Engine, root *engine.NodeID) (*uint32, bool) {
	if root == nil {
		return nil, true
	}
	slot, ok := e.SlotOf(*root)
	if !ok {
		return nil, false
	}
	s := uint32(slot)
	return &s, true
}

type packer struct {
	tree   *hierarchy.Tree
	radii  []float64
	xs, ys []float64
}

var goldenAngle = 2 * math.Pi * (1 - 1/math.Phi)

// placeChildren positions the children of v inside it. v's own position
// must already be final.
func (p *packer) placeChildren(v int, pad float64) {
	kids := p.tree.Nodes[v].Children
	if len(kids) == 0 {
		return
	}
	px, py, pr := p.xs[v], p.ys[v], p.radii[v]
	if len(kids) == 1 {
		p.xs[kids[0]], p.ys[kids[0]] = px, py
		return
	}

	avail := max(pr-pad, 0)
	order := slices.Clone(kids)
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(p.radii[b], p.radii[a])
	})

	n := len(order)
	for i, c := range order {
		var t float64
		if n <= 2 {
			t = float64(i+1) / float64(n+1)
		} else {
			t = (float64(i) + 0.5) / float64(n)
		}
		r := p.radii[c]
		dist := max(avail-r, 0) * math.Sqrt(t)
		if dist+r > pr-pad/2 && dist > epsilon {
			dist = max(pr-pad/2-r, 0)
		}
		angle := float64(i) * goldenAngle
		p.xs[c] = px + dist*math.Cos(angle)
		p.ys[c] = py + dist*math.Sin(angle)
	}

	p.relax(order, px, py, avail)
}

// relax pushes overlapping siblings apart along their centre line, half the
// overlap each, and pulls them back inside the parent.
func (p *packer) relax(order []int, px, py, avail float64) {
	for pass := 0; pass < relaxPasses; pass++ {
		for a := 0; a < len(order); a++ {
			i := order[a]
			for _, j := range order[a+1:] {
				dx, dy := p.xs[j]-p.xs[i], p.ys[j]-p.ys[i]
				d2 := dx*dx + dy*dy
				minD := p.radii[i] + p.radii[j]
				if d2 >= minD*minD || d2 <= epsilon {
					continue
				}
				d := math.Sqrt(d2)
				push := (minD - d) / 2
				nx, ny := dx/d, dy/d
				p.xs[i] -= nx * push
				p.ys[i] -= ny * push
				p.xs[j] += nx * push
				p.ys[j] += ny * push
				p.clamp(i, px, py, avail)
				p.clamp(j, px, py, avail)
			}
		}
	}
}

func (p *packer) clamp(i int, px, py, avail float64) {
	dx, dy := p.xs[i]-px, p.ys[i]-py
	d := math.Hypot(dx, dy)
	limit := max(avail-p.radii[i], 0)
	if d > limit && d > epsilon {
		s := limit / d
		p.xs[i] = px + dx*s
		p.ys[i] = py + dy*s
	}
}
