package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/observability"
	"github.com/matzehuels/atlas/pkg/render/nodelink"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// fork is a root with two leaves.
func fork() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{{From: "a", To: "b"}, {From: "a", To: "c"}},
	}
}

// twoTriangles is two dense clusters joined by one edge.
func twoTriangles() graph.Graph {
	g := graph.Graph{}
	for _, id := range []string{"a1", "a2", "a3", "b1", "b2", "b3"} {
		g.Nodes = append(g.Nodes, graph.Node{ID: id})
	}
	for _, e := range [][2]string{
		{"a1", "a2"}, {"a2", "a3"}, {"a3", "a1"},
		{"b1", "b2"}, {"b2", "b3"}, {"b3", "b1"},
		{"a1", "b1"},
	} {
		g.Edges = append(g.Edges, graph.Edge{From: e[0], To: e[1]})
	}
	return g
}

func nodeByID(t *testing.T, l graph.Layout, id string) graph.LayoutNode {
	t.Helper()
	for _, n := range l.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("layout has no node %q", id)
	return graph.LayoutNode{}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", opts.Algorithm, DefaultAlgorithm)
	}
	if opts.Config == nil || opts.Logger == nil {
		t.Error("Config and Logger should be defaulted")
	}

	// Idempotent: a second call keeps the first result.
	opts.Algorithm = "bogus"
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v, want nil", err)
	}

	bad := Options{Algorithm: "force"}
	err := bad.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
		t.Errorf("unknown algorithm error = %v, want INVALID_ALGORITHM", err)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		algorithm string
		wantRoot  string
		want      any
	}{
		{graph.AlgorithmTree, "r", cfg.Tree},
		{graph.AlgorithmRadial, "r", cfg.Tree},
		{graph.AlgorithmCommunity, "", cfg.Community},
		{graph.AlgorithmCodebase, "r", cfg.Codebase},
		{graph.AlgorithmBubble, "r", cfg.Bubble},
	}
	for _, tt := range tests {
		opts := Options{Algorithm: tt.algorithm, Root: "r", Config: &cfg}
		got := opts.LayoutKeyOpts()
		if got.Root != tt.wantRoot {
			t.Errorf("%s: Root = %q, want %q", tt.algorithm, got.Root, tt.wantRoot)
		}
		if got.Config != tt.want {
			t.Errorf("%s: Config = %#v, want %#v", tt.algorithm, got.Config, tt.want)
		}
	}

	keyer := cache.NewDefaultKeyer()
	tree := Options{Algorithm: graph.AlgorithmTree, Config: &cfg}
	radial := Options{Algorithm: graph.AlgorithmRadial, Config: &cfg}
	if keyer.LayoutKey("h", tree.LayoutKeyOpts()) == keyer.LayoutKey("h", radial.LayoutKeyOpts()) {
		t.Error("tree and radial layouts should not share a cache key")
	}
}

func TestRunTree(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmTree})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	l := res.Layout
	if l.Stats.Placed != 3 {
		t.Errorf("Placed = %d, want 3", l.Stats.Placed)
	}
	if l.RunID == "" || l.GraphHash == "" {
		t.Errorf("RunID = %q, GraphHash = %q, want both set", l.RunID, l.GraphHash)
	}
	a, b, c := nodeByID(t, l, "a"), nodeByID(t, l, "b"), nodeByID(t, l, "c")
	if *a.Y != 0 {
		t.Errorf("root y = %v, want 0", *a.Y)
	}
	if *b.Y <= *a.Y || *b.Y != *c.Y {
		t.Errorf("leaf y = %v, %v, want equal and below root %v", *b.Y, *c.Y, *a.Y)
	}
	if *b.X >= *c.X {
		t.Errorf("b.x = %v, c.x = %v, want b left of c", *b.X, *c.X)
	}

	// Positions were written into the engine.
	id, _ := res.Loaded.Lookup("c")
	x, y, _ := res.Loaded.Engine.NodePosition(id)
	if x != *c.X || y != *c.Y {
		t.Errorf("engine position of c = (%v, %v), want (%v, %v)", x, y, *c.X, *c.Y)
	}
}

func TestRunRoot(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmTree, Root: "b"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// b has no children, so only b is placed.
	if res.Layout.Stats.Placed != 1 || !nodeByID(t, res.Layout, "b").Placed() {
		t.Errorf("Placed = %d, want only b", res.Layout.Stats.Placed)
	}
	if res.Layout.Root != "b" {
		t.Errorf("Root = %q, want b", res.Layout.Root)
	}

	_, err = r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmTree, Root: "zzz"})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown root error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestRunCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Algorithm: graph.AlgorithmRadial}

	first, err := r.Run(ctx, fork(), opts)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Stats.CacheHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Run(ctx, fork(), opts)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if !second.Stats.CacheHit || !second.Layout.Stats.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Layout.RunID == first.Layout.RunID {
		t.Error("cached runs should get a fresh run id")
	}
	for i := range first.Positions {
		if first.Positions[i] != second.Positions[i] {
			t.Fatalf("Positions[%d] = %v, want %v", i, second.Positions[i], first.Positions[i])
		}
	}

	refreshed, err := r.Run(ctx, fork(), Options{Algorithm: graph.AlgorithmRadial, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Run() error = %v", err)
	}
	if refreshed.Stats.CacheHit {
		t.Error("refresh should skip the cache")
	}

	// Different config, different entry.
	cfg := config.Default()
	cfg.Tree.LevelSeparation = 200
	other, err := r.Run(ctx, fork(), Options{Algorithm: graph.AlgorithmRadial, Config: &cfg})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if other.Stats.CacheHit {
		t.Error("changed config should miss the cache")
	}
}

func TestRunCommunity(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), twoTriangles(), Options{Algorithm: graph.AlgorithmCommunity})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	l := res.Layout
	if l.CommunityCount != 2 {
		t.Errorf("CommunityCount = %d, want 2", l.CommunityCount)
	}
	if l.Modularity == nil || *l.Modularity <= 0 {
		t.Errorf("Modularity = %v, want > 0", l.Modularity)
	}
	if l.Stats.Placed != 6 {
		t.Errorf("Placed = %d, want 6", l.Stats.Placed)
	}
	a1, a3, b1 := nodeByID(t, l, "a1"), nodeByID(t, l, "a3"), nodeByID(t, l, "b1")
	if *a1.Community != *a3.Community || *a1.Community == *b1.Community {
		t.Errorf("communities a1=%d a3=%d b1=%d, want a1=a3!=b1", *a1.Community, *a3.Community, *b1.Community)
	}
}

func TestRunCodebase(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "repo", Category: "repository"},
			{ID: "src", Category: "directory"},
			{ID: "main.go", Category: "file"},
			{ID: "main", Category: "symbol"},
		},
		Edges: []graph.Edge{{From: "repo", To: "src"}, {From: "src", To: "main.go"}, {From: "main.go", To: "main"}},
	}
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), g, Options{Algorithm: graph.AlgorithmCodebase})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Layout.Stats.Placed != 4 {
		t.Errorf("Placed = %d, want 4", res.Layout.Stats.Placed)
	}
}

func TestRunBubble(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmBubble})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Positions != nil {
		t.Errorf("Positions = %v, want nil for bubble", res.Positions)
	}
	a, b := nodeByID(t, res.Layout, "a"), nodeByID(t, res.Layout, "b")
	if *a.Radius <= *b.Radius {
		t.Errorf("root radius %v should exceed leaf radius %v", *a.Radius, *b.Radius)
	}
	if *a.Depth != 0 || *b.Depth != 1 {
		t.Errorf("depths = %d, %d, want 0, 1", *a.Depth, *b.Depth)
	}
	if res.Layout.Stats.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", res.Layout.Stats.MaxDepth)
	}
	if a.Placed() {
		t.Error("bubble nodes should carry no coordinates")
	}
}

func TestRunPinned(t *testing.T) {
	g := fork()
	g.Nodes[0].X, g.Nodes[0].Y, g.Nodes[0].Pinned = 500, -500, true

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), g, Options{Algorithm: graph.AlgorithmTree})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	a := nodeByID(t, res.Layout, "a")
	if *a.X != 500 || *a.Y != -500 {
		t.Errorf("pinned node at (%v, %v), want (500, -500)", *a.X, *a.Y)
	}
	if res.Positions[0] != 500 || res.Positions[1] != -500 {
		t.Errorf("Positions[0:2] = %v, want [500 -500]", res.Positions[:2])
	}
}

func TestRunErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, fork(), Options{}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("canceled Run() error = %v, want context.Canceled", err)
	}

	dangling := fork()
	dangling.Edges = append(dangling.Edges, graph.Edge{From: "a", To: "nowhere"})
	if _, err := r.Run(context.Background(), dangling, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("dangling edge error = %v, want INVALID_INPUT", err)
	}
}

type recordingHooks struct {
	mu       sync.Mutex
	started  []string
	complete []int
}

func (h *recordingHooks) OnLayoutStart(_ context.Context, algorithm string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, algorithm)
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ string, placed int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete = append(h.complete, placed)
}

func TestRunHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, quietLogger())
	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmTree}); err != nil {
			t.Fatal(err)
		}
	}

	// The cached second run computes nothing.
	if len(hooks.started) != 1 || hooks.started[0] != graph.AlgorithmTree {
		t.Errorf("started = %v, want [tree]", hooks.started)
	}
	if len(hooks.complete) != 1 || hooks.complete[0] != 3 {
		t.Errorf("complete = %v, want [3]", hooks.complete)
	}
}

func TestQueries(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmTree})
	if err != nil {
		t.Fatal(err)
	}
	b := nodeByID(t, res.Layout, "b")

	hit, ok, err := res.Nearest(*b.X+0.5, *b.Y, 0)
	if err != nil || !ok || hit.ID != "b" {
		t.Errorf("Nearest = %v, %v, %v, want b", hit, ok, err)
	}
	if _, ok, _ := res.Nearest(*b.X+50, *b.Y+50, 1); ok {
		t.Error("Nearest within 1 should find nothing")
	}

	hits, err := res.InRadius(*b.X, *b.Y, 0.1)
	if err != nil || len(hits) != 1 || hits[0].ID != "b" {
		t.Errorf("InRadius = %v, %v, want [b]", hits, err)
	}

	leafY := *b.Y
	hits, err = res.InRect(-1e6, leafY-1, 1e6, leafY+1)
	if err != nil || len(hits) != 2 || hits[0].ID != "b" || hits[1].ID != "c" {
		t.Errorf("InRect = %v, %v, want [b c]", hits, err)
	}

	if _, err := res.InRadius(0, 0, -1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative radius error = %v, want INVALID_INPUT", err)
	}
	if _, err := res.InRect(1, 0, 0, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("inverted rect error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadDocumentPositions(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a", X: 0, Y: 0}, {ID: "b", X: 10, Y: 0}, {ID: "c", X: 0, Y: 10}},
		Edges: []graph.Edge{{From: "a", To: "b"}},
	}
	res, err := Load(g)
	if err != nil {
		t.Fatal(err)
	}

	hit, ok, err := res.Nearest(9, 1, 0)
	if err != nil || !ok || hit.ID != "b" || hit.X != 10 {
		t.Errorf("Nearest = %v, %v, %v, want b at x=10", hit, ok, err)
	}
	hits, err := res.InRect(-1, -1, 11, 1)
	if err != nil || len(hits) != 2 {
		t.Errorf("InRect = %v, %v, want [a b]", hits, err)
	}

	g.Edges = append(g.Edges, graph.Edge{From: "a", To: "zzz"})
	if _, err := Load(g); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load with dangling edge error = %v, want INVALID_INPUT", err)
	}
}

func TestPreview(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	res, err := r.Run(ctx, fork(), Options{Algorithm: graph.AlgorithmTree})
	if err != nil {
		t.Fatal(err)
	}
	dot, _, err := r.Preview(ctx, res, PreviewOptions{Format: nodelink.FormatDOT})
	if err != nil {
		t.Fatalf("Preview(dot) error = %v", err)
	}
	if !strings.Contains(string(dot), `"a" -> "b"`) || !strings.Contains(string(dot), "!\"") {
		t.Errorf("DOT missing pinned nodes or edges:\n%s", dot)
	}

	bubble, err := r.Run(ctx, fork(), Options{Algorithm: graph.AlgorithmBubble})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Preview(ctx, bubble, PreviewOptions{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bubble preview error = %v, want UNSUPPORTED", err)
	}
}

func TestHalfPositions(t *testing.T) {
	g := fork()
	g.Nodes = append(g.Nodes, graph.Node{ID: "d"})
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), g, Options{Algorithm: graph.AlgorithmTree, Root: "a"})
	if err != nil {
		t.Fatal(err)
	}

	data, err := res.HalfPositions()
	if err != nil {
		t.Fatalf("HalfPositions() error = %v", err)
	}
	if len(data) != 4*len(g.Nodes) {
		t.Fatalf("len = %d bytes, want %d", len(data), 4*len(g.Nodes))
	}
	got, err := DecodeHalfPositions(data)
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range res.Layout.Nodes[:3] {
		if d := math.Abs(float64(got[2*i] - *n.X)); d > 1e-3*math.Abs(float64(*n.X))+1e-3 {
			t.Errorf("x of %s = %v, want %v", n.ID, got[2*i], *n.X)
		}
		if d := math.Abs(float64(got[2*i+1] - *n.Y)); d > 1e-3*math.Abs(float64(*n.Y))+1e-3 {
			t.Errorf("y of %s = %v, want %v", n.ID, got[2*i+1], *n.Y)
		}
	}
	if !math.IsInf(float64(got[6]), 1) || !math.IsInf(float64(got[7]), 1) {
		t.Errorf("unplaced d = (%v, %v), want +Inf", got[6], got[7])
	}

	loaded, err := Load(graph.Graph{Nodes: []graph.Node{{ID: "a", X: 1.5, Y: -2}}})
	if err != nil {
		t.Fatal(err)
	}
	data, _ = loaded.HalfPositions()
	if got, _ := DecodeHalfPositions(data); len(got) != 2 || got[0] != 1.5 || got[1] != -2 {
		t.Errorf("document positions = %v, want [1.5 -2]", got)
	}

	bubble, err := r.Run(context.Background(), fork(), Options{Algorithm: graph.AlgorithmBubble})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bubble.HalfPositions(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bubble HalfPositions error = %v, want UNSUPPORTED", err)
	}
	if _, err := DecodeHalfPositions([]byte{1, 2, 3}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("DecodeHalfPositions(3 bytes) error = %v, want INVALID_FORMAT", err)
	}
}
