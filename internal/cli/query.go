package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
)

// similarityCommand creates the similarity command, which compares two edges
// of an edge list.
func (c *CLI) similarityCommand() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "similarity [edges.csv] [from1] [to1] [from2] [to2]",
		Short: "Print the similarity of two edges",
		Long: `Similarity prints the similarity of the edges from1-to1 and from2-to2 in
the graph read from edges.csv, between 0 and 1. Edges sharing no node score
0. Only the endpoints must exist in the graph.`,
		Args:              cobra.ExactArgs(5),
		ValidArgsFunction: c.completeNodes(&input, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.importGraph(cmd, args[0], &input)
			if err != nil {
				return err
			}
			kind := g.Kind()
			a := graph.NewEdge(kind, args[1], args[2], 0)
			b := graph.NewEdge(kind, args[3], args[4], 0)
			sim, err := g.SimilarityNodes(a, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(sim, 'g', -1, 64))
			return nil
		},
	}

	input.register(cmd)
	return cmd
}

// neighborsCommand creates the neighbors command, which lists the neighbors
// of a node.
func (c *CLI) neighborsCommand() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "neighbors [edges.csv] [node]",
		Short: "List the neighbors of a node",
		Long: `Neighbors prints the distinct neighbors of node, one per line, sorted.
Directed graphs list the targets of the node's outgoing edges.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodes(&input, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.importGraph(cmd, args[0], &input)
			if err != nil {
				return err
			}
			ns, err := g.NeighborNodes(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range ns {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}

	input.register(cmd)
	return cmd
}

func (c *CLI) importGraph(cmd *cobra.Command, path string, input *inputFlags) (*graph.Graph[string], error) {
	csvOpts, err := c.csvOptions(cmd, input)
	if err != nil {
		return nil, err
	}
	g, err := lcio.ImportGraph(path, csvOpts)
	if err != nil {
		return nil, err
	}
	loggerFromContext(cmd.Context()).Debug("loaded graph", "path", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}
