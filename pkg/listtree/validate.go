package listtree

import (
	"github.com/matzehuels/listtree/pkg/errors"
)

// Validate checks the tree's structural invariants:
//
//   - the node at position i of the vertical ordering has vertical index i;
//   - the root is at position 0 and has no parent;
//   - every other node comes after its parent and is listed exactly once in
//     its parent's children;
//   - every node reachable from the root is in the vertical ordering.
//
// It returns an INVARIANT_VIOLATION error describing the first failure.
// A failure indicates a bug in this package, not a caller error.
func (t *Tree) Validate() error {
	if t.order.Len() == 0 || t.order.At(0) != t.root {
		return errors.New(errors.ErrCodeInvariantViolation, "root is not first in vertical order")
	}
	if t.root.parent != nil {
		return errors.New(errors.ErrCodeInvariantViolation, "root has a parent")
	}

	seen := make(map[*Node]bool, t.order.Len())
	for i, n := range t.order.All() {
		if n.vi != i {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d at position %d has vertical index %d", n.id, i, n.vi)
		}
		if n.tree != t {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d at position %d is detached", n.id, i)
		}
		if seen[n] {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d appears twice in vertical order", n.id)
		}
		seen[n] = true
		if n == t.root {
			continue
		}
		if n.parent == nil {
			return errors.New(errors.ErrCodeInvariantViolation, "node %d has no parent", n.id)
		}
		if n.parent.vi >= n.vi {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d (vertical index %d) does not come after its parent %d (vertical index %d)",
				n.id, n.vi, n.parent.id, n.parent.vi)
		}
		count := 0
		for _, c := range n.parent.children.All() {
			if c == n {
				count++
			}
		}
		if count != 1 {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d listed %d times in its parent's children", n.id, count)
		}
	}

	reachable := t.root.Subtree()
	if len(reachable) != t.order.Len() {
		return errors.New(errors.ErrCodeInvariantViolation,
			"%d nodes reachable from the root, %d in vertical order", len(reachable), t.order.Len())
	}
	for _, n := range reachable {
		if !seen[n] {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d reachable from the root is not in vertical order", n.id)
		}
		for _, c := range n.children.All() {
			if c.parent != n {
				return errors.New(errors.ErrCodeInvariantViolation,
					"child %d of node %d points to a different parent", c.id, n.id)
			}
		}
	}
	return nil
}
