package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ruliana/link-community/pkg/dendro"
	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/render"
)

// DefaultPrecision is the number of decimals shown for merge levels.
const DefaultPrecision = 2

// Options configures dendrogram rendering.
type Options struct {
	// Detailed adds the member count and depth to every merge label.
	Detailed bool
	// Precision is the number of decimals printed for levels. Zero means
	// DefaultPrecision; a negative value prints the shortest exact form.
	Precision int
}

func (o Options) formatLevel(level float64) string {
	switch {
	case o.Precision < 0:
		return strconv.FormatFloat(level, 'g', -1, 64)
	case o.Precision == 0:
		return strconv.FormatFloat(level, 'f', DefaultPrecision, 64)
	default:
		return strconv.FormatFloat(level, 'f', o.Precision, 64)
	}
}

// ToDOT converts a dendrogram to Graphviz DOT format.
//
// Merges become boxes labeled with their level, members become ellipses
// labeled with fmt.Sprint of the member. The root is at the top. An empty
// dendrogram yields a digraph with no nodes.
func ToDOT[T any](d *dendro.Dendro[T], opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if d != nil && !d.IsEmpty() {
		buf.WriteString("\n")
		w := &dotWriter[T]{buf: &buf, opts: opts}
		w.merge(d, 0)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter[T any] struct {
	buf     *bytes.Buffer
	opts    Options
	merges  int
	members int
}

// merge writes n and everything below it and returns the DOT id used for n.
func (w *dotWriter[T]) merge(n *dendro.Dendro[T], depth int) string {
	id := fmt.Sprintf("d%d", w.merges)
	w.merges++
	fmt.Fprintf(w.buf, "  %q [%s];\n", id, strings.Join(w.mergeAttrs(n, depth), ", "))

	for _, m := range n.Members {
		mid := fmt.Sprintf("m%d", w.members)
		w.members++
		fmt.Fprintf(w.buf, "  %q [shape=ellipse, style=filled, fillcolor=lightgrey, label=%q];\n", mid, fmt.Sprint(m))
		fmt.Fprintf(w.buf, "  %q -> %q;\n", id, mid)
	}
	for _, c := range n.Children {
		fmt.Fprintf(w.buf, "  %q -> %q;\n", id, w.merge(c, depth+1))
	}
	return id
}

func (w *dotWriter[T]) mergeAttrs(n *dendro.Dendro[T], depth int) []string {
	label := w.opts.formatLevel(n.Level)
	if w.opts.Detailed {
		label += fmt.Sprintf("\nmembers: %d\ndepth: %d", len(n.AllMembers()), depth)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if depth == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Render renders a DOT graph in the named format: "dot", "svg", "pdf" or
// "png". PDF and PNG go through [render.ToPDF] and [render.ToPNG].
func Render(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return RenderSVG(ctx, dot)
	case "pdf":
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	case "png":
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, scale)
	default:
		return nil, lcerr.New(lcerr.ErrCodeUnsupported, "unsupported format %q", format)
	}
}
