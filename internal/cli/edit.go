package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/script"
)

const defaultScriptPath = "tree.toml"

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		output    string
		rootLabel string
		ascii     bool
	)

	cmd := &cobra.Command{
		Use:   "edit [script.toml]",
		Short: "Edit a tree interactively",
		Long: `Edit a tree interactively in the terminal.

The script is loaded if it exists, otherwise editing starts from a single
root node. Saving writes the tree back as an edit script of inserts.

Keys:
  ↑/↓ k/j        select the previous or next row
  K/J            move the selected node up or down one row
  H/L            move the selected node left or right among its siblings
  a              add a child below the selected node
  d              delete the selected node and its subtree
  s              save
  q              quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultScriptPath
			if len(args) == 1 {
				input = args[0]
			}
			if output == "" {
				output = input
			}
			return runEdit(cmd.Context(), cmd, input, output, rootLabel, ascii)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save destination (default: the input script)")
	cmd.Flags().StringVar(&rootLabel, "root", "root", "root label when starting a new tree")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw with ASCII characters")

	return cmd
}

func runEdit(ctx context.Context, cmd *cobra.Command, input, output, rootLabel string, ascii bool) error {
	logger := loggerFromContext(ctx)

	// Core debug logging would corrupt the alternate screen.
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	tree, err := loadTree(input, rootLabel, quiet)
	if err != nil {
		return err
	}
	engine := diagram.New(tree, diagram.WithLogger(quiet))
	defer engine.Close()

	m := newEditorModel(tree, engine, output, ascii)
	defer m.close()
	logger.Debug("starting editor", "script", input, "nodes", tree.Len())

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if fm, ok := final.(editorModel); ok {
		switch {
		case fm.dirty:
			printInfo("Unsaved changes discarded")
		case fm.saved:
			printSuccess("Saved %s", output)
			printDetail("%d nodes", tree.Len())
		}
	}
	return nil
}

// loadTree builds the tree of the script at path, or a new single-node tree
// if path does not exist.
func loadTree(path, rootLabel string, logger *log.Logger) (*listtree.Tree, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return listtree.New(rootLabel, listtree.WithLogger(logger)), nil
	}
	s, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Build(listtree.WithLogger(logger))
}
