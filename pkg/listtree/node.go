package listtree

import (
	"github.com/matzehuels/listtree/pkg/observe"
)

// NodeID identifies a node within its tree. IDs are assigned in creation
// order starting at 0 for the root and are never reused.
type NodeID uint64

// Property names a node property reported through [Node.OnPropertyChanged].
type Property string

// PropertyVerticalIndex is reported when a node's vertical index changes.
const PropertyVerticalIndex Property = "VerticalIndex"

// PropertyChange describes a change of one node property.
type PropertyChange struct {
	Node     *Node
	Property Property
	Old, New int
}

// Node is a tree node. Nodes are created by [Tree.Insert] and owned by
// their tree; a deleted node is detached and rejects every mutation.
type Node struct {
	id       NodeID
	tree     *Tree
	parent   *Node
	data     any
	children observe.List[*Node]
	vi       int
	props    observe.Notifier[PropertyChange]
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Tree returns the owning tree, or nil once the node is detached.
func (n *Node) Tree() *Tree { return n.tree }

// Attached reports whether the node still belongs to a tree.
func (n *Node) Attached() bool { return n.tree != nil }

// Parent returns the parent node, or nil for the root and detached
// subtree tops.
func (n *Node) Parent() *Node { return n.parent }

// Data returns the payload the node was created with.
func (n *Node) Data() any { return n.data }

// Children returns the node's ordered children.
func (n *Node) Children() observe.Sequence[*Node] { return n.children.ReadOnly() }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return n.children.Len() }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.children.At(i) }

// VerticalIndex returns the node's position in the vertical ordering.
func (n *Node) VerticalIndex() int { return n.vi }

// SetVerticalIndex moves the node in the vertical ordering.
// It is equivalent to n.Tree().UpdateVerticalIndex(n, vi).
func (n *Node) SetVerticalIndex(vi int) error {
	if n.tree == nil {
		return detached(n, "set vertical index")
	}
	return n.tree.UpdateVerticalIndex(n, vi)
}

// ChildIndex returns the node's position among its parent's children.
// The root and detached subtree tops report 0.
func (n *Node) ChildIndex() int {
	if n.parent == nil {
		return 0
	}
	return n.parent.indexOf(n)
}

// SetChildIndex moves the node among its siblings.
// It is equivalent to n.Tree().UpdateChildIndex(n, i).
func (n *Node) SetChildIndex(i int) error {
	if n.tree == nil {
		return detached(n, "set child index")
	}
	return n.tree.UpdateChildIndex(n, i)
}

// Insert creates a child of n. See [Tree.Insert].
func (n *Node) Insert(childIndex int, data any, verticalIndex int) (*Node, error) {
	if n.tree == nil {
		return nil, detached(n, "insert under")
	}
	return n.tree.Insert(n, childIndex, data, verticalIndex)
}

// Delete removes n and its descendants. See [Tree.Delete].
func (n *Node) Delete() error {
	if n.tree == nil {
		return detached(n, "delete")
	}
	return n.tree.Delete(n)
}

// UpdateParent moves n under a new parent. See [Tree.UpdateParent].
func (n *Node) UpdateParent(newParent *Node, childIndex int) error {
	if n.tree == nil {
		return detached(n, "reparent")
	}
	return n.tree.UpdateParent(n, newParent, childIndex)
}

// OnPropertyChanged registers fn for property changes of n.
func (n *Node) OnPropertyChanged(fn func(PropertyChange)) *observe.Subscription {
	return n.props.Subscribe(fn)
}

// PropertySubscribers returns the number of active property subscriptions.
func (n *Node) PropertySubscribers() int { return n.props.Len() }

// ChildSubscribers returns the number of active child list subscriptions.
func (n *Node) ChildSubscribers() int { return n.children.Subscribers() }

// IsDescendantOf reports whether ancestor is a strict ancestor of n.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Subtree returns n followed by its descendants in breadth-first order.
func (n *Node) Subtree() []*Node {
	nodes := []*Node{n}
	for i := 0; i < len(nodes); i++ {
		nodes = append(nodes, nodes[i].children.Items()...)
	}
	return nodes
}

func (n *Node) indexOf(child *Node) int {
	return observe.IndexOf(n.children.ReadOnly(), child)
}

func (n *Node) setVerticalIndex(vi int) {
	if n.vi == vi {
		return
	}
	old := n.vi
	n.vi = vi
	n.props.Notify(PropertyChange{Node: n, Property: PropertyVerticalIndex, Old: old, New: vi})
}
