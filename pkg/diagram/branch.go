package diagram

import (
	"fmt"
	"weak"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/observe"
)

// Command is an editing action offered by a branch.
type Command int

const (
	DecrementVerticalIndex Command = iota
	IncrementVerticalIndex
	DecrementChildIndex
	IncrementChildIndex
	Delete
)

// Commands lists every command in declaration order.
var Commands = []Command{
	DecrementVerticalIndex,
	IncrementVerticalIndex,
	DecrementChildIndex,
	IncrementChildIndex,
	Delete,
}

// String returns the command name.
func (c Command) String() string {
	switch c {
	case DecrementVerticalIndex:
		return "decrement-vertical-index"
	case IncrementVerticalIndex:
		return "increment-vertical-index"
	case DecrementChildIndex:
		return "decrement-child-index"
	case IncrementChildIndex:
		return "increment-child-index"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Branch is the diagram counterpart of one tree node. Its head connector
// sits in the node's row; its chain of connectors climbs to the parent
// branch.
type Branch struct {
	engine     *Engine
	node       *listtree.Node
	parent     *Branch
	head       *Connector
	connectors observe.List[*Connector]
	views      *observe.Projection[Connector, ConnectorView]
	subs       []*observe.Subscription
}

func newBranch(e *Engine, node *listtree.Node, parent *Branch) *Branch {
	b := &Branch{engine: e, node: node, parent: parent}
	b.head = newConnector(b, true)
	b.connectors.SetDispatcher(&e.notify)
	if parent != nil {
		b.connectors.Append(b.head)
	}
	return b
}

// Node returns the tree node the branch represents.
func (b *Branch) Node() *listtree.Node { return b.node }

// Parent returns the parent node's branch, or nil for the root.
func (b *Branch) Parent() *Branch { return b.parent }

// Head returns the connector in the node's own row.
func (b *Branch) Head() *Connector { return b.head }

// Row returns the head's row. After every update it equals the node's
// vertical index.
func (b *Branch) Row() int { return b.head.row }

// Lane returns the head's lane.
func (b *Branch) Lane() int { return b.head.lane }

// ChildIndex returns the node's position among its siblings.
func (b *Branch) ChildIndex() int { return b.node.ChildIndex() }

// Connectors returns the branch's chain ordered bottom-up: index 0 is the
// head, the last entry is directly below the parent branch. The root
// branch has no connectors.
func (b *Branch) Connectors() observe.Sequence[*Connector] {
	return b.connectors.ReadOnly()
}

// ConnectorViews returns the chain projected for drawing, in the order of
// Connectors. The projection is created on first use, follows the chain as
// of the last completed tree mutation and stops following it once the
// branch is torn down.
func (b *Branch) ConnectorViews() observe.Sequence[ConnectorView] {
	if b.views == nil {
		b.views = observe.Project(b.Connectors(), newConnectorView)
	}
	return b.views
}

// Segments returns the line of every connector in the chain, bottom-up.
func (b *Branch) Segments() []Segment {
	views := b.ConnectorViews()
	segs := make([]Segment, 0, views.Len())
	for _, v := range views.All() {
		if s, ok := v.Segment(); ok {
			segs = append(segs, s)
		}
	}
	return segs
}

// ConnectorView is the drawing side of a connector. It holds the connector
// weakly and reads its position on every call.
type ConnectorView struct {
	c weak.Pointer[Connector]
}

func newConnectorView(c *Connector) ConnectorView {
	return ConnectorView{c: weak.Make(c)}
}

// Connector returns the viewed connector, or nil once it has been
// collected.
func (v ConnectorView) Connector() *Connector { return v.c.Value() }

// Segment returns the connector's current line. ok is false when the
// connector has no parent or is gone.
func (v ConnectorView) Segment() (Segment, bool) {
	c := v.c.Value()
	if c == nil {
		return Segment{}, false
	}
	return c.Segment()
}

// Attached reports whether the branch is still part of the layout.
func (b *Branch) Attached() bool { return b.head.attached }

// CanExecute reports whether cmd is currently enabled.
func (b *Branch) CanExecute(cmd Command) bool {
	n := b.node
	if !b.Attached() || !n.Attached() || n.Parent() == nil {
		return false
	}
	switch cmd {
	case DecrementVerticalIndex:
		return n.Parent().VerticalIndex() < n.VerticalIndex()-1
	case IncrementVerticalIndex:
		if n.NumChildren() == 0 {
			return n.VerticalIndex()+1 < n.Tree().Len()
		}
		lowest := n.Child(0).VerticalIndex()
		for _, c := range n.Children().All() {
			lowest = min(lowest, c.VerticalIndex())
		}
		return n.VerticalIndex()+1 < lowest
	case DecrementChildIndex:
		return n.ChildIndex() > 0
	case IncrementChildIndex:
		return n.ChildIndex()+1 < n.Parent().NumChildren()
	case Delete:
		return true
	default:
		return false
	}
}

// Execute runs cmd against the tree. A disabled command fails with
// COMMAND_DISABLED and leaves the tree unchanged.
func (b *Branch) Execute(cmd Command) error {
	if !b.CanExecute(cmd) {
		return errors.New(errors.ErrCodeCommandDisabled, "%s is not available for node %d", cmd, b.node.ID())
	}
	n := b.node
	switch cmd {
	case DecrementVerticalIndex:
		return n.SetVerticalIndex(n.VerticalIndex() - 1)
	case IncrementVerticalIndex:
		return n.SetVerticalIndex(n.VerticalIndex() + 1)
	case DecrementChildIndex:
		return n.SetChildIndex(n.ChildIndex() - 1)
	case IncrementChildIndex:
		return n.SetChildIndex(n.ChildIndex() + 1)
	case Delete:
		return n.Delete()
	}
	return errors.New(errors.ErrCodeUnsupported, "unknown command %s", cmd)
}

// addParentConnector inserts a connector between the head and its parent.
func (b *Branch) addParentConnector() {
	h := b.head
	parent := h.parent
	idx := h.ChildIndex()

	c := newConnector(b, false)
	parent.children[idx] = c
	c.setParent(parent)
	c.children = []*Connector{h}
	h.setParent(c)

	b.connectors.Insert(1, c)
}

// removeParentConnector removes the connector directly above the head. It
// reports false when the head already hangs from the parent branch.
func (b *Branch) removeParentConnector() bool {
	h := b.head
	p := h.parent
	if p == nil || p.head {
		return false
	}
	gp := p.parent
	gp.children[p.ChildIndex()] = h
	h.setParent(gp)
	p.detach()

	b.connectors.RemoveAt(1)
	return true
}

// top returns the highest connector of the chain, or the head when the
// branch has no intermediate connectors.
func (b *Branch) top() *Connector {
	if b.connectors.Len() == 0 {
		return b.head
	}
	return b.connectors.At(b.connectors.Len() - 1)
}
