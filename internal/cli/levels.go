package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/pipeline"
)

// levelsCommand creates the levels command, which prints the merge
// histogram of an edge list.
func (c *CLI) levelsCommand() *cobra.Command {
	var (
		input     inputFlags
		asJSON    bool
		precision int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "levels [edges.csv]",
		Short: "Show how many merges happen at each level",
		Long: `Levels clusters an edge list and prints, for each distinct level of the
dendrogram, how many merges happen there. Use it to choose where to cut.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvOpts, err := c.csvOptions(cmd, &input)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			edges, err := runner.ReadFile(ctx, args[0], csvOpts)
			if err != nil {
				return err
			}
			res, err := runner.Execute(ctx, edges, pipeline.Options{
				Directed: csvOpts.Directed,
				Weighted: csvOpts.Weighted,
				Logger:   loggerFromContext(ctx),
				Cluster:  c.Config.ClusterOptions(),
			})
			if err != nil {
				return fmt.Errorf("cluster %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return lcio.WriteLevelsJSON(out, res.Levels)
			}
			fmt.Fprintln(out, levelsTable(lcio.SortLevels(res.Levels), precision))
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the histogram as JSON")
	cmd.Flags().IntVar(&precision, "precision", 0, "decimals printed for levels (default 2, negative for exact)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}
