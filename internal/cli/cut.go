package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
)

// cutCommand creates the cut command, which splits a dendrogram written by
// cluster into communities.
func (c *CLI) cutCommand() *cobra.Command {
	var (
		level  float64
		output string
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "cut [dendro.json]",
		Short: "Split a dendrogram into communities at a level",
		Long: `Cut reads a dendrogram written by "cluster" and splits it at --level:
edges merged below the level share a community. Cutting above the root
yields one community; cutting at 0 or below yields one per edge.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lcerr.ValidateLevel(level); err != nil {
				return err
			}
			tree, err := lcio.ImportDendrogramJSON[graph.Edge[string]](args[0])
			if err != nil {
				return err
			}
			cut := tree.CutByLevel(level)
			groups := lcio.NewGroups(level, cut)
			loggerFromContext(cmd.Context()).Debug("cut dendrogram", "level", level, "groups", len(groups.Groups))

			out := cmd.OutOrStdout()
			switch {
			case output != "":
				var buf bytes.Buffer
				if err := lcio.WriteGroupsJSON(&buf, level, cut); err != nil {
					return err
				}
				if err := writeFile(output, buf.Bytes()); err != nil {
					return fmt.Errorf("write output %s: %w", output, err)
				}
				rep := newReport(out)
				rep.ok("Cut %s", args[0])
				rep.files(output)
				rep.cut(level, len(groups.Groups), -1)
			case asJSON:
				return lcio.WriteGroupsJSON(out, level, cut)
			default:
				fmt.Fprintln(out, groupsTable(groups, limit))
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&level, "level", "l", 0.5, "cut level")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the communities as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the communities as JSON")
	cmd.Flags().IntVar(&limit, "limit", 8, "members listed per community in the table (0 for all)")

	return cmd
}
