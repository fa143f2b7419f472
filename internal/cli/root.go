package cli

import (
	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, --verbose selects the log level, the
// configuration is loaded and the logger is attached to the command context,
// where loggerFromContext finds it.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "linkcomm finds overlapping communities by clustering edges",
		Long: `linkcomm groups the edges of a graph into link communities: edges are
clustered by the similarity of the neighborhoods they connect, and the
resulting dendrogram is cut at a level to obtain communities. A node
belongs to every community one of its edges belongs to.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+appName+".toml or the user config dir)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log clustering and cache details")

	// Register all subcommands
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.cutCommand())
	root.AddCommand(c.similarityCommand())
	root.AddCommand(c.neighborsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
