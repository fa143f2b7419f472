package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/infomap"
)

// treeCommand creates the tree command for Infomap .tree files.
func (c *CLI) treeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Work with Infomap .tree files",
	}

	cmd.AddCommand(c.treeNameCommand())
	cmd.AddCommand(c.treeCommunitiesCommand())

	return cmd
}

// treeNameCommand creates the "tree name" subcommand.
func (c *CLI) treeNameCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "name [file.tree] [names.txt]",
		Short: "Replace node indices with node names",
		Long: `Name rewrites a .tree file so that the quoted node index on each line
becomes the node name: line i of names.txt names node i.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeFiles("tree", "txt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			nf, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open names: %w", err)
			}
			defer nf.Close()
			names, err := infomap.ReadNames(nf)
			if err != nil {
				return fmt.Errorf("read names %s: %w", args[1], err)
			}

			tf, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open tree: %w", err)
			}
			defer tf.Close()

			if output == "" {
				w := bufio.NewWriter(cmd.OutOrStdout())
				if err := infomap.NameTree(tf, w, names); err != nil {
					return err
				}
				return w.Flush()
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			w := bufio.NewWriter(f)
			if err := infomap.NameTree(tf, w, names); err != nil {
				f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			rep := newReport(cmd.OutOrStdout())
			rep.ok("Named %d nodes", len(names))
			rep.files(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// treeCommunity is the JSON form of one .tree module.
type treeCommunity struct {
	ID    string `json:"community"`
	Size  int    `json:"size"`
	Nodes []int  `json:"nodes"`
}

// treeCommunitiesCommand creates the "tree communities" subcommand.
func (c *CLI) treeCommunitiesCommand() *cobra.Command {
	var (
		selected []string
		node     int
		asJSON   bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "communities [file.tree]",
		Short: "List the communities of a .tree file",
		Long: `Communities lists every module of a .tree file, at every depth, with the
nodes below it. --select keeps only the named modules; --node prints the
modules containing one node.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("tree"),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := infomap.ImportTree(args[0])
			if err != nil {
				return err
			}
			if len(selected) > 0 {
				tf = tf.Select(selected...)
			}

			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("node") {
				cs := tf.CommunitiesFor(node)
				if len(cs) == 0 {
					newReport(out).warn("node %d is in no community", node)
					return nil
				}
				fmt.Fprintln(out, strings.Join(cs, "\n"))
				return nil
			}

			var communities []treeCommunity
			tf.Each(func(c string, members []int) bool {
				communities = append(communities, treeCommunity{ID: c, Size: len(members), Nodes: members})
				return true
			})
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(communities)
			}

			t := newTable("Community", "Size", "Nodes")
			for _, tc := range communities {
				shown, more := tc.Nodes, ""
				if limit > 0 && len(shown) > limit {
					shown, more = shown[:limit], fmt.Sprintf(" … +%d", len(shown)-limit)
				}
				names := make([]string, len(shown))
				for i, n := range shown {
					names[i] = strconv.Itoa(n)
				}
				t.Row(tc.ID, strconv.Itoa(tc.Size), strings.Join(names, " ")+more)
			}
			fmt.Fprintln(out, t.Render())
			newReport(out).note("%d communities", tf.Len())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selected, "select", nil, "keep only these communities (e.g. 1,1:2)")
	cmd.Flags().IntVar(&node, "node", 0, "print the communities of this node index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the communities as JSON")
	cmd.Flags().IntVar(&limit, "limit", 12, "nodes listed per community in the table (0 for all)")
	return cmd
}
