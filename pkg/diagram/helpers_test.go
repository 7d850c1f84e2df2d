package diagram

import (
	"slices"

	"github.com/matzehuels/listtree/pkg/listtree"
)

type fataler interface {
	Fatalf(format string, args ...any)
}

// checkLayout verifies chain lengths, rows and lanes independently of
// Engine.Validate: it walks the tree depth first and predicts every lane
// from the lanes already seen in each row.
func checkLayout(t fataler, e *Engine) {
	tree := e.Tree()
	last := make([]int, tree.Len()+1)
	for i := range last {
		last[i] = -1
	}

	stack := []*listtree.Node{tree.Root()}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := e.Branch(node)
		if b == nil {
			t.Fatalf("no branch for node %v", node.Data())
			return
		}
		if b.Node() != node {
			t.Fatalf("branch for %v reports node %v", node.Data(), b.Node().Data())
		}

		parentVI := 0
		if node.Parent() != nil {
			parentVI = node.Parent().VerticalIndex()
		}
		want := node.VerticalIndex() - parentVI
		if got := b.Connectors().Len(); got != want {
			t.Fatalf("node %v: %d connectors, want %d", node.Data(), got, want)
		}

		var direct []Segment
		for _, c := range b.Connectors().All() {
			if s, ok := c.Segment(); ok {
				direct = append(direct, s)
			}
		}
		if got := b.Segments(); !slices.Equal(got, direct) {
			t.Fatalf("node %v: projected segments %v, connectors give %v", node.Data(), got, direct)
		}

		y := parentVI + 1
		for range want {
			var c *Connector
			for _, x := range b.Connectors().All() {
				if x.Row() == y {
					c = x
				}
			}
			if c == nil {
				t.Fatalf("node %v: no connector in row %d", node.Data(), y)
				return
			}
			x := max(last[y]+1, last[y-1])
			last[y] = x
			if c.Lane() != x {
				t.Fatalf("node %v: connector in row %d has lane %d, want %d", node.Data(), y, c.Lane(), x)
			}
			y++
		}

		children := nodeChildren(node)
		for _, c := range slices.Backward(children) {
			stack = append(stack, c)
		}
	}

	if err := e.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// checkNeighbors compares Left and Right of every connector with a brute
// force scan of its row.
func checkNeighbors(t fataler, e *Engine) {
	rows := map[int][]*Connector{}
	for c := range e.Connectors() {
		rows[c.Row()] = append(rows[c.Row()], c)
	}
	for _, row := range rows {
		for i, c := range row {
			var left, right *Connector
			if i > 0 {
				left = row[i-1]
			}
			if i+1 < len(row) {
				right = row[i+1]
			}
			if got := c.Left(); got != left {
				t.Fatalf("Left of connector at %s is %v, want %v", c.Position(), pos(got), pos(left))
			}
			if got := c.Right(); got != right {
				t.Fatalf("Right of connector at %s is %v, want %v", c.Position(), pos(got), pos(right))
			}
		}
	}
}

// checkMatchesFresh compares the incremental layout with one built from
// scratch for the same tree.
func checkMatchesFresh(t fataler, e *Engine) {
	fresh := New(e.Tree())
	defer fresh.Close()
	for _, n := range e.Tree().NodesByVerticalIndex().All() {
		got, want := e.Branch(n), fresh.Branch(n)
		if got.Connectors().Len() != want.Connectors().Len() {
			t.Fatalf("node %v: %d connectors, fresh layout has %d", n.Data(), got.Connectors().Len(), want.Connectors().Len())
		}
		for i, c := range got.Connectors().All() {
			if c.Position() != want.Connectors().At(i).Position() {
				t.Fatalf("node %v connector %d at %s, fresh layout has %s",
					n.Data(), i, c.Position(), want.Connectors().At(i).Position())
			}
		}
		if got.Head().Position() != want.Head().Position() {
			t.Fatalf("node %v at %s, fresh layout has %s", n.Data(), got.Head().Position(), want.Head().Position())
		}
	}
}

func nodeChildren(n *listtree.Node) []*listtree.Node {
	var out []*listtree.Node
	for _, c := range n.Children().All() {
		out = append(out, c)
	}
	return out
}

func pos(c *Connector) string {
	if c == nil {
		return "<nil>"
	}
	return c.Position().String()
}
