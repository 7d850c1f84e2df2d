package diagram

import (
	"slices"
	"testing"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/observe"
)

func insert(t *testing.T, parent *listtree.Node, childIndex int, data any, vi int) *listtree.Node {
	t.Helper()
	n, err := parent.Insert(childIndex, data, vi)
	if err != nil {
		t.Fatalf("Insert(%v, %d, %v, %d): %v", parent.Data(), childIndex, data, vi, err)
	}
	return n
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func check(t *testing.T, e *Engine) {
	t.Helper()
	checkLayout(t, e)
	checkNeighbors(t, e)
	checkMatchesFresh(t, e)
}

func TestNewEmptyTree(t *testing.T) {
	tree := listtree.New("0")
	e := New(tree)
	defer e.Close()

	if e.Branches().Len() != 1 {
		t.Fatalf("Branches().Len() = %d, want 1", e.Branches().Len())
	}
	root := e.Root()
	if root.Node() != tree.Root() || root.Parent() != nil {
		t.Error("root branch does not mirror the root node")
	}
	if root.Connectors().Len() != 0 || root.Row() != 0 || root.Lane() != 0 {
		t.Errorf("root: connectors=%d row=%d lane=%d", root.Connectors().Len(), root.Row(), root.Lane())
	}
	if _, ok := root.Head().Segment(); ok {
		t.Error("root head has a segment")
	}
	check(t, e)
}

func TestInsertAndDeleteNodes(t *testing.T) {
	tree := listtree.New("0")
	e := New(tree)
	defer e.Close()
	root := tree.Root()

	child0 := insert(t, root, 0, "1", 1)
	check(t, e)
	child1 := insert(t, root, 1, "2", 2)
	check(t, e)
	child2 := insert(t, root, 2, "3", 1)
	check(t, e)
	insert(t, child1, 0, "4", 4)
	check(t, e)
	insert(t, child1, 0, "5", 4)
	check(t, e)
	child5 := insert(t, child1, 1, "6", 5)
	check(t, e)

	must(t, child2.SetChildIndex(0))
	check(t, e)
	must(t, child1.SetChildIndex(1))
	check(t, e)
	must(t, child0.SetVerticalIndex(1))
	check(t, e)
	must(t, child1.UpdateParent(child2, 0))
	check(t, e)
	must(t, child5.Delete())
	check(t, e)
	must(t, child1.Delete())
	check(t, e)

	child6 := insert(t, root, 1, "7", 3)
	check(t, e)
	must(t, child6.UpdateParent(child0, 0))
	check(t, e)
}

func TestPrebuiltTree(t *testing.T) {
	tree := listtree.New("r")
	a := insert(t, tree.Root(), 0, "a", 1)
	b := insert(t, tree.Root(), 1, "b", 2)
	insert(t, a, 0, "a1", 3)
	insert(t, b, 0, "b1", 4)
	insert(t, a, 1, "a2", 5)

	e := New(tree)
	defer e.Close()
	check(t, e)

	// a's chain is one connector, b's two, a2's four.
	want := map[any]int{"a": 1, "b": 2, "a1": 2, "b1": 2, "a2": 4}
	for _, n := range tree.NodesByVerticalIndex().All() {
		if w, ok := want[n.Data()]; ok && e.Branch(n).Connectors().Len() != w {
			t.Errorf("%v: %d connectors, want %d", n.Data(), e.Branch(n).Connectors().Len(), w)
		}
	}
}

func TestConnectorsAreOrderedBottomUp(t *testing.T) {
	tree := listtree.New("r")
	a := insert(t, tree.Root(), 0, "a", 1)
	insert(t, tree.Root(), 1, "b", 2)
	insert(t, tree.Root(), 2, "c", 3)
	e := New(tree)
	defer e.Close()

	c := e.Branch(tree.At(3))
	conns := c.Connectors()
	if conns.At(0) != c.Head() || !conns.At(0).IsBranch() || conns.At(0).Branch() != c {
		t.Fatal("connector 0 is not the branch head")
	}
	for i, x := range conns.All() {
		if x.Row() != 3-i {
			t.Errorf("connector %d in row %d, want %d", i, x.Row(), 3-i)
		}
		if x.Owner() != c {
			t.Errorf("connector %d owned by another branch", i)
		}
		if i > 0 && x.IsBranch() {
			t.Errorf("connector %d claims to head a branch", i)
		}
	}
	if top := conns.At(conns.Len() - 1); top.Parent() != e.Root().Head() {
		t.Error("top connector does not hang from the root")
	}

	segs := c.Segments()
	if len(segs) != 3 {
		t.Fatalf("Segments() returned %d, want 3", len(segs))
	}
	if segs[0].Start != c.Head().Position() || segs[2].End != e.Root().Head().Position() {
		t.Errorf("segments = %v", segs)
	}
	_ = a
}

func TestConnectorViewsFollowChain(t *testing.T) {
	tree := listtree.New("root")
	insert(t, tree.Root(), 0, "a", 1)
	b := insert(t, tree.Root(), 1, "b", 2)
	e := New(tree)
	defer e.Close()

	br := e.Branch(b)
	views := br.ConnectorViews()
	if views != br.ConnectorViews() {
		t.Fatal("ConnectorViews should return the same projection")
	}
	assertViews := func(want int) {
		t.Helper()
		if views.Len() != want {
			t.Fatalf("%d views, want %d", views.Len(), want)
		}
		for i, v := range views.All() {
			if v.Connector() != br.Connectors().At(i) {
				t.Errorf("view %d does not show connector %d", i, i)
			}
		}
		seg, ok := views.At(0).Segment()
		if head, _ := br.Head().Segment(); !ok || seg != head {
			t.Errorf("head view segment = %v, want %v", seg, head)
		}
	}

	assertViews(2)
	must(t, b.SetVerticalIndex(1))
	assertViews(1)
	must(t, b.SetVerticalIndex(2))
	assertViews(2)
	check(t, e)

	must(t, b.Delete())
	if n := br.connectors.Subscribers(); n != 0 {
		t.Errorf("deleted branch still has %d chain subscribers", n)
	}
}

func TestVerticalUp(t *testing.T) {
	tree := listtree.New("0")
	insert(t, tree.Root(), 0, "1", 1)
	child1 := insert(t, tree.Root(), 0, "2", 2)
	e := New(tree)
	defer e.Close()

	b := e.Branch(child1)
	must(t, b.Execute(DecrementVerticalIndex))

	if b.CanExecute(DecrementVerticalIndex) {
		t.Error("DecrementVerticalIndex still enabled")
	}
	if !b.CanExecute(IncrementVerticalIndex) {
		t.Error("IncrementVerticalIndex disabled")
	}
	if child1.VerticalIndex() != 1 || b.Row() != 1 {
		t.Errorf("vertical index %d row %d, want 1 1", child1.VerticalIndex(), b.Row())
	}
	check(t, e)
}

func TestVerticalDown(t *testing.T) {
	tree := listtree.New("0")
	child0 := insert(t, tree.Root(), 0, "1", 1)
	insert(t, tree.Root(), 0, "2", 2)
	e := New(tree)
	defer e.Close()

	b := e.Branch(child0)
	must(t, b.Execute(IncrementVerticalIndex))

	if !b.CanExecute(DecrementVerticalIndex) {
		t.Error("DecrementVerticalIndex disabled")
	}
	if b.CanExecute(IncrementVerticalIndex) {
		t.Error("IncrementVerticalIndex still enabled")
	}
	if child0.VerticalIndex() != 2 || b.Row() != 2 {
		t.Errorf("vertical index %d row %d, want 2 2", child0.VerticalIndex(), b.Row())
	}
	check(t, e)
}

func TestDeleteCommand(t *testing.T) {
	tree := listtree.New("0")
	child0 := insert(t, tree.Root(), 0, "1", 1)
	child1 := insert(t, tree.Root(), 0, "2", 2)
	child2 := insert(t, child1, 0, "3", 3)
	child3 := insert(t, child1, 0, "4", 4)
	e := New(tree)
	defer e.Close()

	b := e.Branch(child1)
	must(t, b.Execute(Delete))

	if child0.NumChildren() != 0 {
		t.Errorf("child0 has %d children", child0.NumChildren())
	}
	if slices.Contains(branches(e), b) || b.Attached() {
		t.Error("deleted branch still listed")
	}
	for _, x := range branches(e) {
		if x.Parent() == b {
			t.Errorf("branch of %v still hangs from the deleted branch", x.Node().Data())
		}
	}
	for _, n := range []*listtree.Node{child1, child2, child3} {
		if e.Branch(n) != nil {
			t.Errorf("deleted node %v still has a branch", n.Data())
		}
		if n.ChildSubscribers() != 0 || n.PropertySubscribers() != 0 {
			t.Errorf("deleted node %v still has subscribers", n.Data())
		}
	}
	check(t, e)
}

func TestHorizontalLeft(t *testing.T) {
	tree := listtree.New("0")
	child0 := insert(t, tree.Root(), 0, "1", 1)
	child1 := insert(t, tree.Root(), 1, "2", 2)
	e := New(tree)
	defer e.Close()

	b := e.Branch(child1)
	must(t, b.Execute(DecrementChildIndex))

	if child1.ChildIndex() != 0 || b.ChildIndex() != 0 {
		t.Errorf("child index = %d", child1.ChildIndex())
	}
	if b.CanExecute(DecrementChildIndex) || !b.CanExecute(IncrementChildIndex) {
		t.Error("wrong horizontal command enablement")
	}
	if child0.ChildIndex() != 1 {
		t.Errorf("sibling child index = %d, want 1", child0.ChildIndex())
	}
	check(t, e)
}

func TestHorizontalRight(t *testing.T) {
	tree := listtree.New("0")
	child0 := insert(t, tree.Root(), 0, "1", 1)
	child1 := insert(t, tree.Root(), 1, "2", 2)
	e := New(tree)
	defer e.Close()

	b := e.Branch(child0)
	must(t, b.Execute(IncrementChildIndex))

	if child0.ChildIndex() != 1 || b.ChildIndex() != 1 {
		t.Errorf("child index = %d", child0.ChildIndex())
	}
	if b.CanExecute(IncrementChildIndex) || !b.CanExecute(DecrementChildIndex) {
		t.Error("wrong horizontal command enablement")
	}
	if child1.ChildIndex() != 0 {
		t.Errorf("sibling child index = %d, want 0", child1.ChildIndex())
	}
	check(t, e)
}

func TestRootCommandsDisabled(t *testing.T) {
	tree := listtree.New("0")
	insert(t, tree.Root(), 0, "1", 1)
	e := New(tree)
	defer e.Close()

	for _, cmd := range Commands {
		if e.Root().CanExecute(cmd) {
			t.Errorf("%s enabled on root", cmd)
		}
		err := e.Root().Execute(cmd)
		if !errors.Is(err, errors.ErrCodeCommandDisabled) {
			t.Errorf("%s on root: err = %v, want COMMAND_DISABLED", cmd, err)
		}
	}
	if tree.Len() != 2 {
		t.Errorf("tree changed: Len() = %d", tree.Len())
	}
}

func TestIncrementVerticalIndexBlockedByChild(t *testing.T) {
	tree := listtree.New("0")
	a := insert(t, tree.Root(), 0, "a", 1)
	insert(t, a, 0, "a1", 2)
	insert(t, tree.Root(), 1, "b", 3)
	e := New(tree)
	defer e.Close()

	if e.Branch(a).CanExecute(IncrementVerticalIndex) {
		t.Error("IncrementVerticalIndex enabled although a child is directly below")
	}
	if !e.Branch(a).CanExecute(Delete) {
		t.Error("Delete disabled on non-root")
	}
}

func TestReparentRebuildsSubscriptions(t *testing.T) {
	tree := listtree.New("0")
	a := insert(t, tree.Root(), 0, "a", 1)
	b := insert(t, tree.Root(), 1, "b", 2)
	b1 := insert(t, b, 0, "b1", 3)
	e := New(tree)
	defer e.Close()

	old := e.Branch(b)
	must(t, b.UpdateParent(a, 0))

	if e.Branch(b) == old || old.Attached() {
		t.Error("reparented node kept its old branch")
	}
	for _, n := range []*listtree.Node{b, b1} {
		if n.ChildSubscribers() != 1 || n.PropertySubscribers() != 1 {
			t.Errorf("%v: %d child and %d property subscribers, want 1 and 1",
				n.Data(), n.ChildSubscribers(), n.PropertySubscribers())
		}
	}
	if e.Branch(b).Parent() != e.Branch(a) {
		t.Error("new branch hangs from the wrong parent")
	}
	check(t, e)
}

func TestCloseCancelsSubscriptions(t *testing.T) {
	tree := listtree.New("0")
	a := insert(t, tree.Root(), 0, "a", 1)
	e := New(tree)
	e.Close()
	e.Close()

	for _, n := range []*listtree.Node{tree.Root(), a} {
		if n.ChildSubscribers() != 0 || n.PropertySubscribers() != 0 {
			t.Errorf("%v still has subscribers after Close", n.Data())
		}
	}
	before := e.Branches().Len()
	insert(t, tree.Root(), 1, "b", 2)
	if e.Branches().Len() != before {
		t.Error("closed engine still follows the tree")
	}
}

func TestBranchesNotifications(t *testing.T) {
	tree := listtree.New("0")
	e := New(tree)
	defer e.Close()

	var actions []observe.Action
	e.Branches().Subscribe(func(c observe.Change[*Branch]) { actions = append(actions, c.Action) })

	a := insert(t, tree.Root(), 0, "a", 1)
	must(t, a.Delete())

	if want := []observe.Action{observe.Add, observe.Remove}; !slices.Equal(actions, want) {
		t.Errorf("actions = %v, want %v", actions, want)
	}
}

func TestConnectorNotificationsAfterLayout(t *testing.T) {
	tree := listtree.New("0")
	a := insert(t, tree.Root(), 0, "a", 1)
	b := insert(t, tree.Root(), 1, "b", 2)
	e := New(tree)
	defer e.Close()

	head := e.Branch(b).Head()
	var rows []int
	head.OnPropertyChanged(func(c ConnectorChange) {
		if c.Property == PropertyRow {
			// Delivered once the layout is consistent again.
			if err := e.Validate(); err != nil {
				t.Errorf("notification during inconsistent layout: %v", err)
			}
			rows = append(rows, c.Connector.Row())
		}
	})

	must(t, b.SetVerticalIndex(1))
	if !slices.Equal(rows, []int{1}) {
		t.Errorf("row notifications = %v, want [1]", rows)
	}
	_ = a
}

func TestMutationFromLayoutHandlerFails(t *testing.T) {
	tree := listtree.New("0")
	e := New(tree)
	defer e.Close()

	var inner error
	e.Branches().Subscribe(func(c observe.Change[*Branch]) {
		if c.Action == observe.Add {
			_, inner = tree.Insert(tree.Root(), 0, "nested", 1)
		}
	})
	insert(t, tree.Root(), 0, "a", 1)

	if !errors.Is(inner, errors.ErrCodeReentrantMutation) {
		t.Errorf("err = %v, want REENTRANT_MUTATION", inner)
	}
	check(t, e)
}

func TestLanesPackAcrossShallowSubtrees(t *testing.T) {
	// r
	// ├─ a       row 1
	// │  └─ a1   row 4 (chain through rows 2..4)
	// ├─ b       row 2
	// └─ c       row 3
	tree := listtree.New("r")
	a := insert(t, tree.Root(), 0, "a", 1)
	insert(t, tree.Root(), 1, "b", 2)
	insert(t, tree.Root(), 2, "c", 3)
	a1 := insert(t, a, 0, "a1", 4)
	e := New(tree)
	defer e.Close()
	check(t, e)

	lanes := map[any]int{}
	for _, n := range tree.NodesByVerticalIndex().All() {
		lanes[n.Data()] = e.Branch(n).Lane()
	}
	want := map[any]int{"r": 0, "a": 0, "b": 1, "c": 2, "a1": 0}
	for k, v := range want {
		if lanes[k] != v {
			t.Errorf("lane of %v = %d, want %d", k, lanes[k], v)
		}
	}

	// Moving a1 up to row 2 shortens its chain and frees lanes.
	must(t, a1.SetVerticalIndex(2))
	check(t, e)
}

func TestStats(t *testing.T) {
	tree := listtree.New("0")
	e := New(tree)
	defer e.Close()
	before := e.Stats()

	insert(t, tree.Root(), 0, "a", 1)

	after := e.Stats()
	if after.Drains <= before.Drains || after.Processed <= before.Processed {
		t.Errorf("stats did not advance: %+v -> %+v", before, after)
	}
}

func TestExtent(t *testing.T) {
	tree := listtree.New("0")
	insert(t, tree.Root(), 0, "a", 1)
	insert(t, tree.Root(), 1, "b", 2)
	e := New(tree)
	defer e.Close()

	rows, lanes := e.Extent()
	if rows != 3 || lanes != 2 {
		t.Errorf("Extent() = %d, %d, want 3, 2", rows, lanes)
	}
}

func branches(e *Engine) []*Branch {
	var out []*Branch
	for _, b := range e.Branches().All() {
		out = append(out, b)
	}
	return out
}
