// Package render turns link-community dendrograms into pictures.
//
// The [nodelink] subpackage writes a dendrogram as a Graphviz DOT digraph
// and renders it to SVG in-process. This package converts that SVG to PDF or
// PNG with the external rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/ruliana/link-community/pkg/render/nodelink
package render
