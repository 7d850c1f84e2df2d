package snapshot

import (
	"fmt"
	"slices"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
)

// Layout is a serialized diagram.
type Layout struct {
	Rows  int    `json:"rows"`
	Lanes int    `json:"lanes"`
	Nodes []Node `json:"nodes"`
}

// Node is one tree node and the line that connects it to its parent.
type Node struct {
	ID            listtree.NodeID   `json:"id"`
	Label         string            `json:"label"`
	Parent        *listtree.NodeID  `json:"parent,omitempty"`
	VerticalIndex int               `json:"vertical_index"`
	ChildIndex    int               `json:"child_index"`
	Row           int               `json:"row"`
	Lane          int               `json:"lane"`
	Segments      []diagram.Segment `json:"segments,omitempty"`
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// Position returns the cell of the node's branch head.
func (n *Node) Position() diagram.Point {
	return diagram.Point{Lane: n.Lane, Row: n.Row}
}

// LabelFunc names a node in a snapshot.
type LabelFunc func(*listtree.Node) string

// DefaultLabel formats the node payload with fmt.Sprint.
func DefaultLabel(n *listtree.Node) string {
	return fmt.Sprint(n.Data())
}

// FromEngine captures the current layout of e. A nil label selects
// DefaultLabel.
func FromEngine(e *diagram.Engine, label LabelFunc) Layout {
	if label == nil {
		label = DefaultLabel
	}
	rows, lanes := e.Extent()
	l := Layout{Rows: rows, Lanes: lanes}
	for _, n := range e.Tree().NodesByVerticalIndex().All() {
		b := e.Branch(n)
		out := Node{
			ID:            n.ID(),
			Label:         label(n),
			VerticalIndex: n.VerticalIndex(),
			ChildIndex:    n.ChildIndex(),
			Row:           b.Row(),
			Lane:          b.Lane(),
		}
		if segs := b.Segments(); len(segs) > 0 {
			out.Segments = segs
		}
		if p := n.Parent(); p != nil {
			id := p.ID()
			out.Parent = &id
		}
		l.Nodes = append(l.Nodes, out)
	}
	return l
}

// Validate checks the structural consistency of a decoded layout: nodes
// in vertical order, a single root first, and parents listed before their
// children.
func (l *Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "layout has no nodes")
	}
	seen := make(map[listtree.NodeID]int, len(l.Nodes))
	for i, n := range l.Nodes {
		if n.VerticalIndex != i {
			return errors.New(errors.ErrCodeInvalidFormat,
				"node %d: vertical index %d at position %d", n.ID, n.VerticalIndex, i)
		}
		if _, dup := seen[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate node id %d", n.ID)
		}
		switch {
		case i == 0 && !n.IsRoot():
			return errors.New(errors.ErrCodeInvalidFormat, "first node %d has a parent", n.ID)
		case i > 0 && n.IsRoot():
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has no parent", n.ID)
		case i > 0:
			if _, ok := seen[*n.Parent]; !ok {
				return errors.New(errors.ErrCodeInvalidFormat,
					"node %d: parent %d not listed above it", n.ID, *n.Parent)
			}
		}
		seen[n.ID] = i
	}
	return nil
}

// ToTree rebuilds the tree described by l, with node labels as payloads.
// Node IDs of the new tree are assigned afresh.
func ToTree(l Layout, opts ...listtree.Option) (*listtree.Tree, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	t := listtree.New(l.Nodes[0].Label, opts...)
	built := map[listtree.NodeID]*listtree.Node{l.Nodes[0].ID: t.Root()}
	// Final child indices of the children inserted so far, per parent.
	placed := map[listtree.NodeID][]int{}

	for _, n := range l.Nodes[1:] {
		siblings := placed[*n.Parent]
		pos, _ := slices.BinarySearch(siblings, n.ChildIndex)
		node, err := t.Insert(built[*n.Parent], pos, n.Label, n.VerticalIndex)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		placed[*n.Parent] = slices.Insert(siblings, pos, n.ChildIndex)
		built[n.ID] = node
	}
	return t, nil
}
