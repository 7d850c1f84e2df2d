package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/listtree/pkg/pipeline"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// stdinArg selects standard input as the script source.
const stdinArg = "-"

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output     string  // output file, base path for several formats, or "-" for stdout
	formats    string  // comma-separated formats
	ascii      bool    // ASCII instead of box-drawing characters
	hideLabels bool    // omit labels in text output
	detailed   bool    // index details in DOT labels
	refresh    bool    // bypass the cache
	laneSep    float64 // DOT lane spacing in points
	rowSep     float64 // DOT row spacing in points
	scale      float64 // PNG scale factor
}

// options converts the flags into pipeline options.
func (f *renderFlags) options() (pipeline.Options, error) {
	formats := pipeline.ParseFormats(f.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Refresh:    f.refresh,
		Formats:    formats,
		ASCII:      f.ascii,
		HideLabels: f.hideLabels,
		Detailed:   f.detailed,
		LaneSep:    f.laneSep,
		RowSep:     f.rowSep,
		Scale:      f.scale,
	}, nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [script.toml | layout.json | -]",
		Short: "Render an edit script or saved layout",
		Long: `Render an edit script or a saved layout snapshot.

Input ending in .json is read as a layout snapshot (see 'layout'); anything
else is an edit script, with "-" reading the script from standard input.

A single textual format (text, json, dot) is written to standard output
unless --output is given. Other outputs are written next to the input, or
to --output. With several formats --output is a base path and each file
gets the format's extension.`,
		Example: `  listtree render tree.toml
  listtree render tree.toml -f svg,png -o out/tree
  listtree render tree.layout.json --ascii`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, args[0], opts, f.output)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file or base path ("-" for stdout)`)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): text (default), json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&f.ascii, "ascii", false, "draw text diagrams with ASCII characters")
	cmd.Flags().BoolVar(&f.hideLabels, "no-labels", false, "omit labels from text diagrams")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show vertical and child indices in DOT labels")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute instead of reading the cache")
	cmd.Flags().Float64Var(&f.laneSep, "lane-sep", pipeline.DefaultLaneSep, "horizontal lane spacing (points)")
	cmd.Flags().Float64Var(&f.rowSep, "row-sep", pipeline.DefaultRowSep, "vertical row spacing (points)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

// runRender renders input and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner()
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = logger

	var (
		artifacts map[string][]byte
		layout    snapshot.Layout
		cached    bool
	)

	if isLayoutFile(input) {
		layout, err = snapshot.ReadFile(input)
		if err != nil {
			return err
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, layout, opts)
		if err != nil {
			return fmt.Errorf("render %s: %w", input, err)
		}
	} else {
		if input == stdinArg {
			if opts.Source, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		} else {
			opts.ScriptPath = input
		}

		var spin *spinner
		if opts.NeedsGraphviz() {
			spin = newSpinner(ctx, "Rendering "+input+"...")
			spin.start()
		}
		result, err := runner.Execute(ctx, opts)
		if spin != nil {
			if err != nil {
				spin.stopWithError("Render failed")
			} else {
				spin.stop()
			}
		}
		if err != nil {
			return err
		}
		artifacts, layout = result.Artifacts, result.Layout
		cached = result.CacheInfo.LayoutHit
	}
	prog.step("pipeline")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	files, err := writeArtifacts(cmd.OutOrStdout(), artifacts, input, output)
	if err != nil {
		return err
	}
	prog.step("write")
	prog.done("Rendered", "input", input, "cached", cached)

	if len(files) > 0 {
		printSuccess("Render complete")
		for _, path := range files {
			printFile(path)
		}
		printStats(len(layout.Nodes), layout.Rows, layout.Lanes, cached)
	}
	return nil
}

// writeArtifacts writes each artifact to stdout or a file and returns the
// paths of the files written.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, input, output string) ([]string, error) {
	formats := orderedFormats(artifacts)

	if output == stdinArg || (output == "" && len(formats) == 1 && isTextual(formats[0])) {
		for _, format := range formats {
			if _, err := stdout.Write(artifacts[format]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var files []string
	for _, format := range formats {
		path := output
		if path == "" || len(formats) > 1 {
			path = basePath(output, input) + "." + pipeline.Extension(format)
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// orderedFormats returns the formats present in artifacts in canonical order.
func orderedFormats(artifacts map[string][]byte) []string {
	var formats []string
	for _, format := range pipeline.ValidFormats {
		if _, ok := artifacts[format]; ok {
			formats = append(formats, format)
		}
	}
	return formats
}

func isTextual(format string) bool {
	return format == pipeline.FormatText || format == pipeline.FormatJSON || format == pipeline.FormatDOT
}

func isLayoutFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input ("diagram" for
// stdin). If output ends in a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinArg {
			return "diagram"
		}
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if slices.ContainsFunc(pipeline.ValidFormats, func(f string) bool { return pipeline.Extension(f) == ext }) {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
