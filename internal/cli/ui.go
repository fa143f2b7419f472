package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ruliana/link-community/pkg/dendro"
	"github.com/ruliana/link-community/pkg/graph"
	"github.com/ruliana/link-community/pkg/pipeline"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the progress view title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim renders counts, paths and other secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleLevel renders merge levels and community counts.
	StyleLevel = lipgloss.NewStyle().Foreground(colorWhite)

	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed  = lipgloss.NewStyle().Foreground(colorRed)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	markOK     = "✓"
	markFailed = "✗"
	markWarn   = "!"
	markNote   = "›"
	markFile   = "→"
	sep        = " · "
)

// report writes the human summary of a command: what was clustered, cut or
// rendered, which files were written and whether the dendrogram came from the
// cache. Machine-readable output (--json, stdout artifacts) bypasses it.
type report struct {
	w io.Writer
}

func newReport(w io.Writer) *report { return &report{w: w} }

func (r *report) line(s string) { fmt.Fprintln(r.w, s) }

func (r *report) ok(format string, args ...any) {
	r.line(styleOK.Render(markOK) + " " + fmt.Sprintf(format, args...))
}

func (r *report) failed(format string, args ...any) {
	r.line(styleFailed.Render(markFailed) + " " + fmt.Sprintf(format, args...))
}

func (r *report) warn(format string, args ...any) {
	r.line(styleWarn.Render(markWarn) + " " + styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (r *report) note(format string, args ...any) {
	r.line(styleNote.Render(markNote) + " " + fmt.Sprintf(format, args...))
}

func (r *report) detail(format string, args ...any) {
	r.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (r *report) files(paths ...string) {
	for _, p := range paths {
		r.line("  " + StyleDim.Render(markFile) + " " + StyleLevel.Render(p))
	}
}

// source reports whether the dendrogram was read from the cache or clustered
// in this run.
func source(cached bool) string {
	if cached {
		return styleOK.Render("cached")
	}
	return styleNote.Render("clustered")
}

func counts(parts ...string) string {
	return StyleDim.Render(strings.Join(parts, sep))
}

// clustering summarizes one pipeline run: graph size, merges, and the number
// of communities at every requested cut level.
func (r *report) clustering(res *pipeline.Result, precision int, written []string) {
	r.ok("Clustered %d edges", res.Stats.EdgeCount)
	r.files(written...)
	r.line("  " + counts(
		fmt.Sprintf("%d nodes", res.Stats.NodeCount),
		fmt.Sprintf("%d edges", res.Stats.EdgeCount),
		fmt.Sprintf("%d merges", res.Stats.Merges),
	) + StyleDim.Render(sep) + source(res.CacheInfo.ClusterHit))
	for _, cut := range res.Cuts {
		r.cut(cut.Level, len(cut.Groups), precision)
	}
}

func (r *report) cut(level float64, communities, precision int) {
	r.line("  " + StyleDim.Render("level ") + StyleLevel.Render(formatLevel(level, precision)) +
		StyleDim.Render(": ") + StyleLevel.Render(fmt.Sprintf("%d communities", communities)))
}

// dendrogram summarizes a rendered tree by its leaf edges and depth.
func (r *report) dendrogram(tree *dendro.Dendro[graph.Edge[string]], cached bool) {
	edges := 0
	if !tree.IsEmpty() {
		edges = len(tree.AllMembers())
	}
	r.line("  " + counts(fmt.Sprintf("%d edges", edges), fmt.Sprintf("depth %d", tree.Depth())) +
		StyleDim.Render(sep) + source(cached))
}

// suggestCut points at the cut command for a freshly written dendrogram.
func (r *report) suggestCut(dendroPath string) {
	r.line("")
	r.line(StyleDim.Render("Cut:") + " " + styleCommand.Render(fmt.Sprintf("%s cut %s --level 0.5", appName, dendroPath)))
}
