package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

func sample(t *testing.T) snapshot.Layout {
	t.Helper()
	tree := listtree.New("root")
	if _, err := tree.Root().Insert(0, "a", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Root().Insert(1, "b", 2); err != nil {
		t.Fatal(err)
	}
	e := diagram.New(tree)
	t.Cleanup(e.Close)
	return snapshot.FromEngine(e, nil)
}

func TestToDOT(t *testing.T) {
	got := ToDOT(sample(t), Options{})

	for _, want := range []string{
		`"n0" [label="root", pos="0,0!"];`,
		`"n1" [label="a", pos="0,-36!"];`,
		`"n2" [label="b", pos="36,-72!"];`,
		`"n2_0" [shape=point, width=0.04, pos="36,-36!"];`,
		`"n1" -> "n0";`,
		`"n2" -> "n2_0";`,
		`"n2_0" -> "n0";`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DOT missing %s\n%s", want, got)
		}
	}
	if n := strings.Count(got, "->"); n != 3 {
		t.Errorf("got %d edges, want 3", n)
	}
	if !strings.HasPrefix(got, "digraph G {\n") || !strings.HasSuffix(got, "}\n") {
		t.Errorf("malformed DOT:\n%s", got)
	}
}

func TestToDOTOptions(t *testing.T) {
	got := ToDOT(sample(t), Options{LaneSep: 10, RowSep: 20, Detailed: true})

	if !strings.Contains(got, `pos="10,-40!"`) {
		t.Errorf("custom spacing not applied:\n%s", got)
	}
	if !strings.Contains(got, `label="b\nvi: 2, ci: 1"`) {
		t.Errorf("detailed label missing:\n%s", got)
	}
}

func TestToDOTQuotesLabels(t *testing.T) {
	l := sample(t)
	l.Nodes[1].Label = `say "hi"`
	got := ToDOT(l, Options{})
	if !strings.Contains(got, `label="say \"hi\""`) {
		t.Errorf("label not escaped:\n%s", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="80pt" height="60pt" viewBox="0.00 0.00 80.00 60.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 80.00 60.00" width="80" height="60"><g/></svg>`
	if string(got) != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be returned unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sample(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(">root<")) {
		t.Errorf("unexpected SVG:\n%s", svg)
	}
}
