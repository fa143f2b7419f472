// Package nodelink draws a dendrogram as a node-link diagram.
//
// # Usage
//
// Convert a dendrogram to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] picks the output by name ("dot", "svg", "pdf", "png"); PDF and PNG
// require librsvg (rsvg-convert).
//
// # Layout
//
// Every merge is a rounded box labeled with its level and every member an
// ellipse hanging from the merge that owns it. The root is drawn on top with
// a heavier outline (rankdir=TB), so reading downwards follows decreasing
// similarity.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
