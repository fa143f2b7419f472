package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/pipeline"
	"github.com/ruliana/link-community/pkg/slink"
)

// Progress display modes for --progress.
const (
	progressNone = ""
	progressLog  = "log"
	progressTUI  = "tui"
)

// clusterOpts holds the command-line flags for the cluster command.
type clusterOpts struct {
	input     inputFlags
	output    string
	formats   string
	levels    []float64
	detailed  bool
	precision int
	scale     float64
	noCache   bool
	refresh   bool
	progress  string
	workers   int
}

// clusterCommand creates the cluster command.
func (c *CLI) clusterCommand() *cobra.Command {
	var opts clusterOpts

	cmd := &cobra.Command{
		Use:   "cluster [edges.csv]",
		Short: "Cluster the edges of a graph into a dendrogram",
		Long: `Cluster reads a CSV edge list, runs single-linkage clustering over its
edges and writes the dendrogram as <base>.dendro.json. Other artifacts
(dot, svg, png, pdf) are written next to it with --format, and every
--level writes the communities of that cut to <base>.cut-<level>.json.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvOpts, err := c.csvOptions(cmd, &opts.input)
			if err != nil {
				return err
			}
			switch opts.progress {
			case progressNone, progressLog, progressTUI:
			default:
				return fmt.Errorf("invalid --progress %q (must be 'log' or 'tui')", opts.progress)
			}
			return c.runCluster(cmd, args[0], csvOpts, opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatJSON, "output format(s): json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().Float64SliceVarP(&opts.levels, "level", "l", nil, "cut the dendrogram at these levels")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show member counts and depth in rendered merges")
	cmd.Flags().IntVar(&opts.precision, "precision", 0, "decimals printed for levels (default 2, negative for exact)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if the dendrogram is cached")
	cmd.Flags().StringVar(&opts.progress, "progress", progressNone, "show clustering progress: log, tui")
	cmd.Flags().Lookup("progress").NoOptDefVal = progressTUI
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "goroutines per distance row (default from config, 0 for all CPUs)")

	return cmd
}

// runCluster reads the edge list, runs the pipeline and writes its outputs.
func (c *CLI) runCluster(cmd *cobra.Command, input string, csvOpts lcio.CSVOptions, opts clusterOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	edges, err := runner.ReadFile(ctx, input, csvOpts)
	if err != nil {
		return err
	}

	formats := parseFormats(opts.formats)
	popts := pipeline.Options{
		Directed:  csvOpts.Directed,
		Weighted:  csvOpts.Weighted,
		Levels:    opts.levels,
		Formats:   formats,
		Detailed:  opts.detailed,
		Precision: opts.precision,
		Scale:     opts.scale,
		Refresh:   opts.refresh,
		Logger:    logger,
		Cluster:   c.Config.ClusterOptions(),
	}
	if cmd.Flags().Changed("workers") {
		popts.Cluster = append(popts.Cluster, slink.WithWorkers(opts.workers))
	}

	var res *pipeline.Result
	switch opts.progress {
	case progressTUI:
		err = runWithProgressView(ctx, "Clustering "+input, func(ctx context.Context, report func(slink.Progress)) error {
			popts.Progress = report
			var err error
			res, err = runner.Execute(ctx, edges, popts)
			return err
		})
	case progressLog:
		popts.Progress = logClusterProgress(logger)
		res, err = runner.Execute(ctx, edges, popts)
	default:
		spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Clustering %d edges", len(edges)))
		popts.Progress = spin.progress
		res, err = runner.Execute(ctx, edges, popts)
		if err != nil {
			spin.fail("Clustering failed")
		} else {
			spin.stop()
		}
	}
	if err != nil {
		return fmt.Errorf("cluster %s: %w", input, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(opts.output, input)
	var written []string
	for _, f := range formats {
		path := base + ".dendro." + f
		if err := writeFile(path, res.Artifacts[f]); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}
	for _, cut := range res.Cuts {
		path := fmt.Sprintf("%s.cut-%s.json", base, formatLevel(cut.Level, -1))
		if err := writeGroups(path, cut); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}

	rep := newReport(cmd.OutOrStdout())
	rep.clustering(res, opts.precision, written)
	if len(res.Cuts) == 0 && slices.Contains(formats, pipeline.FormatJSON) {
		rep.suggestCut(base + ".dendro.json")
	}
	return nil
}

func writeGroups(path string, cut pipeline.Cut) error {
	var buf bytes.Buffer
	if err := lcio.WriteGroupsJSON[graph.Edge[string]](&buf, cut.Level, cut.Groups); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
