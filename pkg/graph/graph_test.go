package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout/packing"
)

func weight(w float32) *float32 { return &w }

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "repo", Category: "repository"},
			{ID: "src", X: 10, Y: 4, Category: "directory", Pinned: true},
			{ID: "main.go", Category: "file"},
			{Category: "symbol"}, // keyed "3"
		},
		Edges: []Edge{
			{From: "repo", To: "src"},
			{From: "src", To: "main.go", Weight: weight(2.5)},
			{From: "main.go", To: "3"},
		},
	}
}

func TestLoad(t *testing.T) {
	l, err := Load(sampleGraph())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := l.Engine

	if e.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", e.NodeCount())
	}
	if e.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", e.EdgeCount())
	}
	if got := l.Keys; strings.Join(got, ",") != "repo,src,main.go,3" {
		t.Errorf("Keys = %v, want [repo src main.go 3]", got)
	}

	src, err := l.Lookup("src")
	if err != nil || src != 1 {
		t.Fatalf("Lookup(src) = %d, %v, want 1, nil", src, err)
	}
	if !e.IsNodePinned(src) {
		t.Error("src should be pinned")
	}
	if x, y, _ := e.NodePosition(src); x != 10 || y != 4 {
		t.Errorf("src position = (%v, %v), want (10, 4)", x, y)
	}
	if _, _, w, _ := e.Edge(1); w != 2.5 {
		t.Errorf("edge 1 weight = %v, want 2.5", w)
	}

	want := []uint8{uint8(packing.Repository), uint8(packing.Directory), uint8(packing.File), uint8(packing.Symbol)}
	for i, c := range want {
		if l.Categories[i] != c {
			t.Errorf("Categories[%d] = %d, want %d", i, l.Categories[i], c)
		}
	}

	if _, err := l.Lookup("missing"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Lookup(missing) error = %v, want NODE_NOT_FOUND", err)
	}
	if got := l.Key(99); got != "99" {
		t.Errorf("Key(99) = %q, want \"99\"", got)
	}
}

func TestLoadUnknownCategory(t *testing.T) {
	l, err := Load(Graph{Nodes: []Node{{ID: "a", Category: "module"}, {ID: "b"}}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, c := range l.Categories {
		if packing.Category(c) != packing.Other {
			t.Errorf("Categories[%d] = %v, want other", i, packing.Category(c))
		}
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
	}{
		{
			name: "DuplicateID",
			g:    Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}},
		},
		{
			name: "ImplicitKeyCollision",
			g:    Graph{Nodes: []Node{{ID: "1"}, {}}},
		},
		{
			name: "DanglingSource",
			g:    Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "x", To: "a"}}},
		},
		{
			name: "DanglingTarget",
			g:    Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "a", To: "x"}}},
		},
		{
			name: "ControlCharacter",
			g:    Graph{Nodes: []Node{{ID: "a\tb"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.g)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestFromEngine(t *testing.T) {
	e := engine.New()
	a := e.AddNode(1, 2)
	b := e.AddNode(3, 4)
	c := e.AddNode(5, 6)
	e.AddEdge(a, b, 1)
	e.AddEdge(b, c, 0.5)
	e.PinNode(c)
	e.RemoveNode(a)

	g := FromEngine(e, []string{"a", "b"})

	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2", g.NodeCount())
	}
	if g.Nodes[0].ID != "b" || g.Nodes[1].ID != "2" {
		t.Errorf("node ids = %q, %q, want b, 2", g.Nodes[0].ID, g.Nodes[1].ID)
	}
	if !g.Nodes[1].Pinned {
		t.Error("node 2 should be pinned")
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if edge := g.Edges[0]; edge.From != "b" || edge.To != "2" || edge.EdgeWeight() != 0.5 {
		t.Errorf("edge = %+v, want b -> 2 weight 0.5", edge)
	}
}

func TestLoadFromEngineRoundTrip(t *testing.T) {
	in := sampleGraph()
	l, err := Load(in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := FromEngine(l.Engine, l.Keys)

	if len(out.Nodes) != len(in.Nodes) || len(out.Edges) != len(in.Edges) {
		t.Fatalf("round trip changed sizes: %d/%d nodes, %d/%d edges",
			len(out.Nodes), len(in.Nodes), len(out.Edges), len(in.Edges))
	}
	for i, edge := range out.Edges {
		if edge.From != in.Edges[i].From || edge.To != in.Edges[i].To {
			t.Errorf("edge %d = %s -> %s, want %s -> %s", i, edge.From, edge.To, in.Edges[i].From, in.Edges[i].To)
		}
		if edge.EdgeWeight() != in.Edges[i].EdgeWeight() {
			t.Errorf("edge %d weight = %v, want %v", i, edge.EdgeWeight(), in.Edges[i].EdgeWeight())
		}
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	g := sampleGraph()
	g.Nodes[0].Meta = map[string]any{"b": 1, "a": 2}

	first, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := MarshalGraph(g)
		if !bytes.Equal(first, again) {
			t.Fatal("MarshalGraph output is not deterministic")
		}
	}

	empty, _ := MarshalGraph(Graph{})
	if !bytes.Contains(empty, []byte(`"nodes": []`)) {
		t.Errorf("empty graph = %s, want explicit empty node list", empty)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode errors.Code
	}{
		{"Valid", `{"nodes":[{"id":"a"}],"edges":[]}`, false, ""},
		{"MalformedJSON", `{"nodes":[`, true, errors.ErrCodeInvalidFormat},
		{"UnknownField", `{"nodes":[],"links":[]}`, true, errors.ErrCodeInvalidFormat},
		{"WrongType", `{"nodes":[{"id":1}]}`, true, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadGraph error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tt.wantCode) {
				t.Errorf("ReadGraph error code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestGraphFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	if err := WriteGraphFile(sampleGraph(), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("read %d nodes, %d edges, want 4, 3", g.NodeCount(), g.EdgeCount())
	}

	_, err = ReadGraphFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadGraphFile(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad file error = %v, want INVALID_FORMAT", err)
	}
}
