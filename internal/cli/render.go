package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file (single format) or base path
	formats   string  // comma-separated output formats
	detailed  bool    // show member counts and depth in merge boxes
	precision int     // decimals printed for levels
	scale     float64 // PNG scale factor
	noCache   bool
}

// renderCommand creates the render command for drawing a dendrogram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [dendro.json]",
		Short: "Render a dendrogram to DOT, SVG, PNG or PDF",
		Long: `Render draws a dendrogram written by "cluster" as a tree: merges are
boxes labeled with their level and edges are the leaves. PNG and PDF need
rsvg-convert on the PATH.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if len(formats) == 0 {
				formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show member counts and depth in merges")
	cmd.Flags().IntVar(&opts.precision, "precision", 0, "decimals printed for levels (default 2, negative for exact)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, formats []string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	tree, err := lcio.ImportDendrogramJSON[graph.Edge[string]](input)
	if err != nil {
		return err
	}
	treeHash, err := pipeline.TreeHash(tree)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.Options{
		Formats:   formats,
		Detailed:  opts.detailed,
		Precision: opts.precision,
		Scale:     opts.scale,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %d format(s)", len(formats)))
	st := startStage(logger)
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, tree, treeHash, popts)
	if err != nil {
		spin.fail("Render failed")
		return err
	}
	spin.stop()
	st.done("rendered", "formats", len(formats), "cached", cached)

	rep := newReport(cmd.OutOrStdout())
	rep.ok("Rendered %s", input)
	for _, f := range formats {
		path := outputPath(opts.output, input, f, len(formats) == 1)
		if err := writeFile(path, artifacts[f]); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		rep.files(path)
	}
	rep.dendrogram(tree, cached)
	return nil
}

// outputPath returns where one format is written. A single format goes to
// output when it is given; otherwise the format is appended to the base path.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + format
}
