package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

type insertion struct {
	parent     int // vertical index of the parent
	childIndex int
	label      string
	vi         int
}

func build(t *testing.T, root string, nodes ...insertion) snapshot.Layout {
	t.Helper()
	tree := listtree.New(root)
	for _, s := range nodes {
		if _, err := tree.Insert(tree.At(s.parent), s.childIndex, s.label, s.vi); err != nil {
			t.Fatalf("insert %s: %v", s.label, err)
		}
	}
	e := diagram.New(tree)
	t.Cleanup(e.Close)
	return snapshot.FromEngine(e, nil)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		nodes []insertion
		opts  Options
		want  string
	}{
		{
			name: "RootOnly",
			want: "●  r\n",
		},
		{
			name:  "Chain",
			nodes: []insertion{{0, 0, "a", 1}, {1, 0, "b", 2}},
			want: strings.Join([]string{
				"●  r",
				"│",
				"●  a",
				"│",
				"●  b",
			}, "\n") + "\n",
		},
		{
			name:  "Siblings",
			nodes: []insertion{{0, 0, "a", 1}, {0, 1, "b", 2}},
			want: strings.Join([]string{
				"●    r",
				"├─┐",
				"● │  a",
				"  │",
				"  ●  b",
			}, "\n") + "\n",
		},
		{
			name: "LongChainKeepsItsLane",
			nodes: []insertion{
				{0, 0, "a", 1}, {0, 1, "b", 2}, {0, 2, "c", 3}, {1, 0, "a1", 4},
			},
			want: strings.Join([]string{
				"●      r",
				"├─┬─┐",
				"● │ │  a",
				"│ │ │",
				"│ ● │  b",
				"│   │",
				"│   ●  c",
				"│",
				"●      a1",
			}, "\n") + "\n",
		},
		{
			name:  "ASCII",
			nodes: []insertion{{0, 0, "a", 1}, {0, 1, "b", 2}},
			opts:  Options{ASCII: true},
			want: strings.Join([]string{
				"o    r",
				"+-+",
				"o |  a",
				"  |",
				"  o  b",
			}, "\n") + "\n",
		},
		{
			name:  "HideLabels",
			nodes: []insertion{{0, 0, "a", 1}, {0, 1, "b", 2}},
			opts:  Options{HideLabels: true},
			want: strings.Join([]string{
				"●",
				"├─┐",
				"● │",
				"  │",
				"  ●",
			}, "\n") + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := build(t, "r", tt.nodes...)
			if got := Render(l, tt.opts); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	l := build(t, "r", insertion{0, 0, "a", 1}, insertion{0, 1, "b", 2})
	lines := Lines(l, Options{})
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		wantRow := -1
		if i%2 == 0 {
			wantRow = i / 2
		}
		if line.Row != wantRow {
			t.Errorf("line %d: Row = %d, want %d", i, line.Row, wantRow)
		}
		if n := len([]rune(line.Diagram)); n != 3 {
			t.Errorf("line %d: diagram width %d, want 3", i, n)
		}
	}
	if lines[4].Label != "b" || lines[3].Label != "" {
		t.Errorf("labels = %q, %q", lines[4].Label, lines[3].Label)
	}
}

func TestRenderEmptyLayout(t *testing.T) {
	if got := Render(snapshot.Layout{}, Options{}); got != "" {
		t.Errorf("Render(empty) = %q", got)
	}
}

func TestWrite(t *testing.T) {
	l := build(t, "r", insertion{0, 0, "a", 1})
	var buf bytes.Buffer
	if err := Write(&buf, l, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != Render(l, Options{}) {
		t.Errorf("Write and Render disagree: %q", buf.String())
	}
}
