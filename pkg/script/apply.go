package script

import (
	"fmt"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
)

// Build creates a tree with the script's root label and applies every op.
func (s *Script) Build(opts ...listtree.Option) (*listtree.Tree, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t := listtree.New(s.Root, opts...)
	if err := s.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply runs the ops against t in order, looking nodes up by label (the
// string payload of t's nodes). It stops at the first failing op; the ops
// before it stay applied.
func (s *Script) Apply(t *listtree.Tree) error {
	labels := Labels(t)
	for i, op := range s.Ops {
		if err := apply(t, labels, op); err != nil {
			return opError(i, op, err)
		}
	}
	return nil
}

// Labels indexes the attached nodes of t by their string payload.
func Labels(t *listtree.Tree) map[string]*listtree.Node {
	labels := make(map[string]*listtree.Node, t.Len())
	for _, n := range t.NodesByVerticalIndex().All() {
		if label, ok := n.Data().(string); ok {
			labels[label] = n
		}
	}
	return labels
}

func apply(t *listtree.Tree, labels map[string]*listtree.Node, op Op) error {
	lookup := func(label string) (*listtree.Node, error) {
		n, ok := labels[label]
		if !ok || !n.Attached() {
			return nil, errors.New(errors.ErrCodeNotFound, "no node labelled %q", label)
		}
		return n, nil
	}

	if op.Kind == OpInsert {
		if n, ok := labels[op.Node]; ok && n.Attached() {
			return errors.New(errors.ErrCodeInvalidArgument, "label %q already used", op.Node)
		}
		parent, err := lookup(op.Parent)
		if err != nil {
			return err
		}
		ci := parent.NumChildren()
		if op.ChildIndex != nil {
			ci = *op.ChildIndex
		}
		vi := belowSubtree(parent)
		if op.VerticalIndex != nil {
			vi = *op.VerticalIndex
		}
		n, err := t.Insert(parent, ci, op.Node, vi)
		if err != nil {
			return err
		}
		labels[op.Node] = n
		return nil
	}

	node, err := lookup(op.Node)
	if err != nil {
		return err
	}
	switch op.Kind {
	case OpDelete:
		return t.Delete(node)
	case OpReparent:
		parent, err := lookup(op.Parent)
		if err != nil {
			return err
		}
		ci := parent.NumChildren()
		if parent == node.Parent() {
			ci--
		}
		if op.ChildIndex != nil {
			ci = *op.ChildIndex
		}
		return t.UpdateParent(node, parent, ci)
	case OpVertical:
		return t.UpdateVerticalIndex(node, *op.VerticalIndex)
	case OpReorder:
		return t.UpdateChildIndex(node, *op.ChildIndex)
	}
	return fmt.Errorf("unknown op %q", op.Kind)
}

// belowSubtree returns the vertical index directly after the last node of
// n's subtree.
func belowSubtree(n *listtree.Node) int {
	last := n.VerticalIndex()
	for _, d := range n.Subtree() {
		last = max(last, d.VerticalIndex())
	}
	return last + 1
}
