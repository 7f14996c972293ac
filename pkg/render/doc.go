// Package render turns computed layouts into pictures.
//
// Layouts are plain coordinates; rendering is only a preview aid and never
// moves a node. The [nodelink] subpackage draws a node-link diagram with
// Graphviz, pinning every node at its computed position.
//
//	dot := nodelink.ToDOT(g, l, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// [nodelink]: github.com/matzehuels/atlas/pkg/render/nodelink
package render
