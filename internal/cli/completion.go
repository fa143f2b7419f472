package cli

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	lcio "github.com/ruliana/link-community/pkg/io"
)

// shells maps each supported shell to its completion script generator.
var shells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command. Besides commands and
// flags, the scripts complete the files each command reads and, for
// similarity and neighbors, the node names of the edge list.
func (c *CLI) completionCommand() *cobra.Command {
	names := make([]string, 0, len(shells))
	for name := range shells {
		names = append(names, name)
	}
	slices.Sort(names)

	return &cobra.Command{
		Use:   "completion [" + strings.Join(names, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Completion prints a completion script for the given shell. Edge lists
(.csv), dendrograms (.dendro.json) and Infomap trees (.tree) are offered
where a command expects them.

  $ source <(linkcomm completion bash)
  $ linkcomm completion zsh > "${fpath[1]}/_linkcomm"
  $ linkcomm completion fish > ~/.config/fish/completions/linkcomm.fish
  PS> linkcomm completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             names,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shells[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeFiles completes positional argument i with files ending in
// exts[i] and nothing past the last one.
func completeFiles(exts ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= len(exts) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{exts[len(args)]}, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeNodes completes an edge list first, then node names read from it,
// up to maxArgs arguments in total.
func (c *CLI) completeNodes(input *inputFlags, maxArgs int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch {
		case len(args) == 0:
			return []string{"csv"}, cobra.ShellCompDirectiveFilterFileExt
		case len(args) >= maxArgs:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		csvOpts, err := c.csvOptions(cmd, input)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		g, err := lcio.ImportGraph(args[0], csvOpts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var nodes []string
		for _, n := range g.Nodes() {
			if strings.HasPrefix(n, toComplete) {
				nodes = append(nodes, n)
			}
		}
		slices.Sort(nodes)
		return nodes, cobra.ShellCompDirectiveNoFileComp
	}
}
