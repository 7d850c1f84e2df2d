package listtree

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/observability"
	"github.com/matzehuels/listtree/pkg/observe"
)

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for debug output. A nil logger selects
// the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tree is an ordered tree with a vertical ordering of all its nodes.
//
// The zero value is not usable; create trees with [New].
type Tree struct {
	root     *Node
	order    observe.List[*Node]
	mutated  observe.Notifier[string]
	queue    observe.Queue
	mutating bool
	nextID   NodeID
	logger   *log.Logger
}

// New creates a tree holding a single root node with the given payload.
func New(rootData any, opts ...Option) *Tree {
	t := &Tree{logger: log.Default()}
	for _, opt := range opts {
		opt(t)
	}
	t.order.SetDispatcher(&t.queue)
	t.mutated.SetDispatcher(&t.queue)
	t.root = t.newNode(nil, rootData, 0)
	t.order.Append(t.root)
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return t.order.Len() }

// NodesByVerticalIndex returns all nodes in vertical order. Position i
// holds the node whose vertical index is i.
func (t *Tree) NodesByVerticalIndex() observe.Sequence[*Node] {
	return t.order.ReadOnly()
}

// OnMutated registers fn to run after every successful mutating call, once
// all notifications of that call have been delivered. fn receives the
// operation name: "insert", "delete", "reparent", "vertical" or "reorder".
func (t *Tree) OnMutated(fn func(op string)) *observe.Subscription {
	return t.mutated.Subscribe(fn)
}

// At returns the node with vertical index vi.
func (t *Tree) At(vi int) *Node { return t.order.At(vi) }

// Find returns the first node in vertical order for which match returns
// true, or nil.
func (t *Tree) Find(match func(*Node) bool) *Node {
	for _, n := range t.order.All() {
		if match(n) {
			return n
		}
	}
	return nil
}

// Insert creates a node with the given payload as child number childIndex
// of parent, at vertical index verticalIndex. Nodes at or after
// verticalIndex move down by one.
//
// verticalIndex must be greater than the parent's and at most Len();
// childIndex must be in [0, parent's child count].
func (t *Tree) Insert(parent *Node, childIndex int, data any, verticalIndex int) (*Node, error) {
	var node *Node
	err := t.mutate("insert", func() error {
		if err := t.checkAttached(parent, "insert under"); err != nil {
			return err
		}
		if verticalIndex > t.order.Len() {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"vertical index %d exceeds node count %d", verticalIndex, t.order.Len())
		}
		if verticalIndex <= parent.vi {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"vertical index %d must be greater than the parent's (%d)", verticalIndex, parent.vi)
		}
		if childIndex < 0 || childIndex > parent.children.Len() {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"child index %d out of range [0, %d]", childIndex, parent.children.Len())
		}

		node = t.newNode(parent, data, verticalIndex)
		t.order.Insert(verticalIndex, node)
		parent.children.Insert(childIndex, node)
		t.renumber(verticalIndex+1, t.order.Len()-1)

		t.logger.Debug("inserted node", "node", node.id, "parent", parent.id,
			"child_index", childIndex, "vertical_index", verticalIndex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Delete removes node and all of its descendants. The removed nodes are
// detached; nodes after them move up to close the gap. The root cannot be
// deleted.
func (t *Tree) Delete(node *Node) error {
	return t.mutate("delete", func() error {
		if err := t.checkAttached(node, "delete"); err != nil {
			return err
		}
		if node == t.root {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrRoot, "cannot delete the root")
		}
		childIndex := node.parent.indexOf(node)
		if childIndex < 0 {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d cannot be found in its parent's children", node.id)
		}

		subtree := node.Subtree()
		indices := make([]int, len(subtree))
		for i, n := range subtree {
			indices[i] = n.vi
		}
		slices.Sort(indices)

		node.parent.children.RemoveAt(childIndex)
		for _, vi := range slices.Backward(indices) {
			t.order.RemoveAt(vi)
		}
		t.renumber(node.vi, t.order.Len()-1)

		for _, n := range subtree {
			n.tree = nil
		}
		node.parent = nil

		t.logger.Debug("deleted node", "node", node.id, "removed", len(subtree))
		return nil
	})
}

// UpdateParent moves node, with its descendants, to child number
// childIndex of newParent. Vertical indices do not change, so newParent
// must come before node in vertical order and must not be node or one of
// its descendants. The root cannot be moved.
//
// When newParent is the current parent the call is equivalent to
// UpdateChildIndex.
func (t *Tree) UpdateParent(node, newParent *Node, childIndex int) error {
	return t.mutate("reparent", func() error {
		if err := t.checkAttached(node, "reparent"); err != nil {
			return err
		}
		if err := t.checkAttached(newParent, "reparent under"); err != nil {
			return err
		}
		if node == t.root {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrRoot, "cannot move the root")
		}
		if newParent == node || newParent.IsDescendantOf(node) {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrCycle,
				"cannot move node %d under node %d", node.id, newParent.id)
		}
		if newParent.vi > node.vi {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrLaterParent,
				"cannot move node %d (vertical index %d) under node %d (vertical index %d)",
				node.id, node.vi, newParent.id, newParent.vi)
		}
		if newParent == node.parent {
			return t.moveChild(node, childIndex)
		}
		if childIndex < 0 || childIndex > newParent.children.Len() {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"child index %d out of range [0, %d]", childIndex, newParent.children.Len())
		}
		oldIndex := node.parent.indexOf(node)
		if oldIndex < 0 {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d cannot be found in its parent's children", node.id)
		}

		oldParent := node.parent
		oldParent.children.RemoveAt(oldIndex)
		newParent.children.Insert(childIndex, node)
		node.parent = newParent

		t.logger.Debug("reparented node", "node", node.id, "from", oldParent.id,
			"to", newParent.id, "child_index", childIndex)
		return nil
	})
}

// UpdateVerticalIndex moves node to vertical index vi. The nodes between
// the old and new positions shift by one. vi must stay after the node's
// parent and before all of its children, and below Len(). Setting the
// current index is a no-op.
func (t *Tree) UpdateVerticalIndex(node *Node, vi int) error {
	return t.mutate("vertical", func() error {
		if err := t.checkAttached(node, "set vertical index of"); err != nil {
			return err
		}
		old := node.vi
		if old == vi {
			return nil
		}
		if node == t.root {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrRoot, "cannot change the root's vertical index")
		}
		if vi <= node.parent.vi {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"vertical index %d must be greater than the parent's (%d)", vi, node.parent.vi)
		}
		if vi >= t.order.Len() {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
				"vertical index %d must be less than the node count (%d)", vi, t.order.Len())
		}
		for _, child := range node.children.All() {
			if vi >= child.vi {
				return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
					"vertical index %d must be less than that of child %d (%d)", vi, child.id, child.vi)
			}
		}

		t.order.Move(old, vi)
		t.renumber(min(old, vi), max(old, vi))

		t.logger.Debug("moved node vertically", "node", node.id, "from", old, "to", vi)
		return nil
	})
}

// UpdateChildIndex moves node to position childIndex among its siblings.
// Setting the current index is a no-op.
func (t *Tree) UpdateChildIndex(node *Node, childIndex int) error {
	return t.mutate("reorder", func() error {
		if err := t.checkAttached(node, "set child index of"); err != nil {
			return err
		}
		if node == t.root {
			return errors.Wrap(errors.ErrCodeInvalidArgument, ErrRoot, "cannot change the root's child index")
		}
		return t.moveChild(node, childIndex)
	})
}

func (t *Tree) moveChild(node *Node, childIndex int) error {
	parent := node.parent
	old := parent.indexOf(node)
	if old < 0 {
		return errors.New(errors.ErrCodeInvariantViolation,
			"node %d cannot be found in its parent's children", node.id)
	}
	if old == childIndex {
		return nil
	}
	if childIndex < 0 || childIndex >= parent.children.Len() {
		return errors.Wrap(errors.ErrCodeInvalidArgument, ErrOutOfRange,
			"child index %d out of range [0, %d)", childIndex, parent.children.Len())
	}
	parent.children.Move(old, childIndex)
	t.logger.Debug("reordered node", "node", node.id, "from", old, "to", childIndex)
	return nil
}

// mutate runs apply as one mutation and then delivers the notifications it
// queued. Mutations may not nest.
func (t *Tree) mutate(op string, apply func() error) error {
	if t.mutating || t.queue.Flushing() {
		return errors.New(errors.ErrCodeReentrantMutation,
			"%s called while the tree is delivering notifications", op)
	}
	start := time.Now()
	err := func() error {
		t.mutating = true
		defer func() { t.mutating = false }()
		return apply()
	}()
	if err != nil {
		t.queue.Discard()
	} else {
		t.mutated.Notify(op)
		t.queue.Flush()
	}
	observability.Tree().OnMutation(op, t.order.Len(), time.Since(start), err)
	return err
}

func (t *Tree) newNode(parent *Node, data any, vi int) *Node {
	n := &Node{id: t.nextID, tree: t, parent: parent, data: data, vi: vi}
	t.nextID++
	n.children.SetDispatcher(&t.queue)
	n.props.SetDispatcher(&t.queue)
	return n
}

// renumber makes the vertical index of every node in [lo, hi] match its
// position in the ordering.
func (t *Tree) renumber(lo, hi int) {
	for i := lo; i <= hi; i++ {
		t.order.At(i).setVerticalIndex(i)
	}
}

func (t *Tree) checkAttached(n *Node, action string) error {
	if n == nil {
		return errors.Wrap(errors.ErrCodeInvalidArgument, ErrNilNode, "cannot %s node", action)
	}
	if n.tree != t {
		return detached(n, action)
	}
	return nil
}

func detached(n *Node, action string) error {
	return errors.Wrap(errors.ErrCodeInvalidArgument, ErrDetached, "cannot %s node %d", action, n.id)
}
