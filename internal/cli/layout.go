package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/listtree/pkg/pipeline"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// layoutCommand creates the layout command for computing layout snapshots.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [script.toml | -]",
		Short: "Compute the layout snapshot of an edit script",
		Long: `Compute the layout snapshot of an edit script.

The snapshot is JSON holding every node's row, lane and line segments. It is
the same document as 'render -f json' and can be rendered again later with
'render <file>.layout.json'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], output, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (default: <input>.layout.json, "-" for stdout)`)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute instead of reading the cache")

	return cmd
}

// runLayout computes the snapshot of input and writes it.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input, output string, refresh bool) error {
	runner, err := c.newRunner()
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{Refresh: refresh, Logger: loggerFromContext(ctx)}
	if input == stdinArg {
		if opts.Source, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		opts.ScriptPath = input
	}

	_, layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if output == stdinArg {
		return snapshot.Write(layout, cmd.OutOrStdout())
	}
	if output == "" {
		output = basePath("", input) + ".layout.json"
	}
	if err := snapshot.WriteFile(layout, output); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(layout.Nodes), layout.Rows, layout.Lanes, cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}
