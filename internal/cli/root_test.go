package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/listtree/pkg/buildinfo"
)

const sampleScript = `root = "root"

[[ops]]
op = "insert"
node = "a"
parent = "root"

[[ops]]
op = "insert"
node = "b"
parent = "root"
`

// sampleText is the text rendering of sampleScript.
const sampleText = "●    root\n├─┐\n● │  a\n  │\n  ●  b\n"

// writeScript writes src to tree.toml in a fresh directory.
func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// isolateCache points the cache at a temporary directory.
func isolateCache(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// captureUI collects status output printed while fn runs.
func captureUI(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := uiOut
	uiOut = &buf
	defer func() { uiOut = old }()
	fn()
	return buf.String()
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "layout", "edit", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
	if root.PersistentFlags().Lookup("no-cache") == nil {
		t.Error("missing --no-cache flag")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "listtree version "+buildinfo.Version) {
		t.Errorf("--version output = %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "listtree") {
				t.Errorf("%s completion does not mention listtree", shell)
			}
		})
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
