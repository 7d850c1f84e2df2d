package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

func TestRenderToStdout(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default text", nil, sampleText},
		{"ascii", []string{"--ascii"}, "o    root\n+-+\no |  a\n  |\n  o  b\n"},
		{"no labels", []string{"--no-labels"}, "●\n├─┐\n● │\n  │\n  ●\n"},
		{"forced stdout", []string{"-o", "-"}, sampleText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"render", path}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output:\n%s\nwant:\n%s", out, tt.want)
			}
		})
	}
}

func TestRenderStdin(t *testing.T) {
	isolateCache(t)
	out, err := executeWithInput(t, sampleScript, "render", "-")
	if err != nil {
		t.Fatal(err)
	}
	if out != sampleText {
		t.Errorf("output:\n%s\nwant:\n%s", out, sampleText)
	}
}

func TestRenderScriptFormats(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript+"\n[render]\nformats = [\"dot\"]\n")

	out, err := execute(t, "render", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("[render] formats should select DOT, got:\n%s", out)
	}

	// Flags take precedence.
	out, err = execute(t, "render", path, "-f", "text")
	if err != nil {
		t.Fatal(err)
	}
	if out != sampleText {
		t.Errorf("-f text output:\n%s", out)
	}
}

func TestRenderFiles(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript)
	base := filepath.Join(t.TempDir(), "out", "diagram")

	status := captureUI(t, func() {
		out, err := execute(t, "render", path, "-f", "text,json,dot", "-o", base)
		if err != nil {
			t.Fatal(err)
		}
		if out != "" {
			t.Errorf("file output should not write to stdout, got %q", out)
		}
	})

	for _, ext := range []string{"txt", "json", "dot"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
		if !strings.Contains(status, base+"."+ext) {
			t.Errorf("status does not list %s.%s:\n%s", base, ext, status)
		}
	}

	data, err := os.ReadFile(base + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleText {
		t.Errorf("text file:\n%s", data)
	}

	l, err := snapshot.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 3 || l.Rows != 3 || l.Lanes != 2 {
		t.Errorf("layout = %d nodes, %d rows, %d lanes", len(l.Nodes), l.Rows, l.Lanes)
	}
}

func TestRenderNextToInput(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript)

	captureUI(t, func() {
		if _, err := execute(t, "render", path, "-f", "json,dot"); err != nil {
			t.Fatal(err)
		}
	})

	dir := filepath.Dir(path)
	for _, name := range []string{"tree.json", "tree.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRenderLayoutSnapshot(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript)
	layoutPath := filepath.Join(filepath.Dir(path), "tree.layout.json")

	captureUI(t, func() {
		if _, err := execute(t, "layout", path); err != nil {
			t.Fatal(err)
		}
	})

	out, err := execute(t, "render", layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if out != sampleText {
		t.Errorf("render of snapshot:\n%s\nwant:\n%s", out, sampleText)
	}
}

func TestRenderErrors(t *testing.T) {
	isolateCache(t)
	path := writeScript(t, sampleScript)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown format", []string{"render", path, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"missing script", []string{"render", filepath.Join(t.TempDir(), "nope.toml")}, errors.ErrCodeFileNotFound},
		{"missing snapshot", []string{"render", filepath.Join(t.TempDir(), "nope.json")}, errors.ErrCodeFileNotFound},
		{"negative scale", []string{"render", path, "--scale", "-1"}, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "tree.toml", "tree"},
		{"", "dir/tree.layout.json", "dir/tree"},
		{"", "-", "diagram"},
		{"out/tree.svg", "tree.toml", "out/tree"},
		{"out/tree.txt", "tree.toml", "out/tree"},
		{"out/tree", "tree.toml", "out/tree"},
		{"out/tree.v2", "tree.toml", "out/tree.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifactsSingleFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "custom.name")
	var stdout bytes.Buffer

	files, err := writeArtifacts(&stdout, map[string][]byte{"svg": []byte("<svg/>")}, "tree.toml", out)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(files, []string{out}) {
		t.Errorf("files = %v, want [%s]", files, out)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestOrderedFormats(t *testing.T) {
	artifacts := map[string][]byte{"svg": nil, "text": nil, "dot": nil}
	want := []string{"text", "dot", "svg"}
	if got := orderedFormats(artifacts); !slices.Equal(got, want) {
		t.Errorf("orderedFormats = %v, want %v", got, want)
	}
}
