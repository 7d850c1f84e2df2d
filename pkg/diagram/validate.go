package diagram

import (
	"github.com/matzehuels/listtree/pkg/errors"
)

// Validate checks the layout against the tree:
//
//   - there is exactly one attached branch per tree node;
//   - every non-root branch has vi(node) - vi(parent) connectors and the
//     root branch has none;
//   - every connector's row equals its depth, so each branch's row equals
//     its node's vertical index;
//   - lanes are packed: each connector's lane is one more than that of its
//     left neighbor, or its parent's lane if that is larger.
//
// It returns an INVARIANT_VIOLATION error describing the first failure.
func (e *Engine) Validate() error {
	tree := e.tree
	if e.branches.Len() != tree.Len() || len(e.byNode) != tree.Len() {
		return errors.New(errors.ErrCodeInvariantViolation,
			"%d branches for %d nodes", e.branches.Len(), tree.Len())
	}
	if e.root.connectors.Len() != 0 {
		return errors.New(errors.ErrCodeInvariantViolation, "root branch has connectors")
	}

	for _, n := range tree.NodesByVerticalIndex().All() {
		b := e.byNode[n]
		if b == nil || !b.Attached() {
			return errors.New(errors.ErrCodeInvariantViolation, "node %d has no branch", n.ID())
		}
		if b.Row() != n.VerticalIndex() {
			return errors.New(errors.ErrCodeInvariantViolation,
				"branch of node %d is in row %d, want %d", n.ID(), b.Row(), n.VerticalIndex())
		}
		if n.Parent() == nil {
			continue
		}
		want := n.VerticalIndex() - n.Parent().VerticalIndex()
		if got := b.connectors.Len(); got != want {
			return errors.New(errors.ErrCodeInvariantViolation,
				"branch of node %d has %d connectors, want %d", n.ID(), got, want)
		}
		if b.top().parent != e.byNode[n.Parent()].head {
			return errors.New(errors.ErrCodeInvariantViolation,
				"chain of node %d does not hang from its parent's branch", n.ID())
		}
		if b.top().ChildIndex() != n.ChildIndex() {
			return errors.New(errors.ErrCodeInvariantViolation,
				"chain of node %d is at position %d, want %d", n.ID(), b.top().ChildIndex(), n.ChildIndex())
		}
	}

	// Depth-first, left to right: the last lane seen at each row is the left
	// neighbor of the next connector in that row.
	last := map[int]int{}
	for c := range e.Connectors() {
		depth, parentLane := 0, 0
		if c.parent != nil {
			depth = c.parent.row + 1
			parentLane = c.parent.lane
		}
		if c.row != depth {
			return errors.New(errors.ErrCodeInvariantViolation,
				"connector at %s has depth %d", c.Position(), depth)
		}
		want := parentLane
		if l, ok := last[c.row]; ok {
			want = max(l+1, parentLane)
		}
		if c.lane != want {
			return errors.New(errors.ErrCodeInvariantViolation,
				"connector in row %d has lane %d, want %d", c.row, c.lane, want)
		}
		last[c.row] = c.lane
	}
	return nil
}
