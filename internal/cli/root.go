package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/listtree/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The CLI's logger is attached to the command context before any subcommand
// runs, so commands retrieve it with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "listtree lays out ordered trees as lane diagrams",
		Long: `listtree lays out ordered trees as lane diagrams.

Trees are described by TOML edit scripts: a root label followed by insert,
delete, reparent, vertical and reorder operations. Every node gets its own
row; edges run down lanes so that no two edges cross.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the layout and artifact cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
