package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Atlas lays out large graphs for interactive exploration",
		Long: `Atlas computes node positions for large graphs (tidy trees, radial trees,
community clusters and circle-packed codebases) and answers spatial queries
against the result.

Graphs are JSON documents with "nodes" and "edges". Layouts are cached by
content hash, so repeating a run on an unchanged graph is instant.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/atlas/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.communitiesCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
