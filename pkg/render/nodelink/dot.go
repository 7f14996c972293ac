package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatDOT = "dot"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatDOT}

// ValidFormat reports whether format is supported.
func ValidFormat(format string) bool {
	switch format {
	case FormatSVG, FormatPNG, FormatDOT:
		return true
	}
	return false
}

// Options configures diagram generation.
type Options struct {
	// Labels draws node labels. Large graphs read better without them.
	Labels bool

	// NodeSize is the node diameter in layout units. Default: 8
	NodeSize float64
}

const defaultNodeSize = 8

// palette colors communities; ids wrap around.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// ToDOT converts a graph and a layout of it into DOT source with pinned node
// positions. Layout node i must describe graph node i, as produced by the
// pipeline. Layouts without coordinates yield an UNSUPPORTED error.
func ToDOT(g graph.Graph, l graph.Layout, opts Options) (string, error) {
	if l.Algorithm == graph.AlgorithmBubble {
		return "", errors.New(errors.ErrCodeUnsupported, "bubble layouts have no positions to render")
	}
	if len(l.Nodes) != len(g.Nodes) {
		return "", errors.New(errors.ErrCodeInvalidInput, "layout has %d nodes, graph has %d", len(l.Nodes), len(g.Nodes))
	}
	size := opts.NodeSize
	if size <= 0 {
		size = defaultNodeSize
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n") // pos values are points
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fillcolor=%q, fixedsize=true, width=%s, fontsize=10];\n",
		palette[0], fmtFloat(size/72))
	buf.WriteString("  edge [arrowsize=0.4, color=\"#00000060\"];\n")
	buf.WriteString("\n")

	placed := make([]bool, len(g.Nodes))
	for i, n := range l.Nodes {
		if !n.Placed() {
			continue
		}
		placed[i] = true
		// Graphviz y grows upwards; layouts grow downwards.
		y := -float64(*n.Y)
		if y == 0 {
			y = 0 // no "-0"
		}
		attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(float64(*n.X)), fmtFloat(y))}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("label=%q", g.Nodes[i].DisplayLabel()))
		} else {
			attrs = append(attrs, "label=\"\"")
		}
		if n.Community != nil {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", palette[int(*n.Community)%len(palette)]))
		}
		if g.Nodes[i].Pinned {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	index := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		index[n.ID] = i
	}
	for _, e := range g.Edges {
		from, ok1 := index[e.From]
		to, ok2 := index[e.To]
		if !ok1 || !ok2 || !placed[from] || !placed[to] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render renders DOT source in the given format. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want svg, png or dot)", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
