// Package listtree implements an ordered tree whose nodes are also arranged
// in a single vertical list.
//
// # Overview
//
// Every node has a parent (except the root), an ordered list of children, and
// a vertical index: its position in the list of all nodes. The vertical
// ordering is always a linear extension of ancestry:
//
//   - the root has vertical index 0;
//   - every node comes after its parent and before all of its descendants;
//   - the vertical indices are exactly 0..N-1.
//
// Siblings and cousins may interleave freely in the vertical order. This is
// what allows a list view to show a tree in an arbitrary order while a side
// diagram draws the parent links.
//
// # Mutations
//
// A [Tree] is changed only through five operations: [Tree.Insert],
// [Tree.Delete], [Tree.UpdateParent], [Tree.UpdateVerticalIndex], and
// [Tree.UpdateChildIndex]. Each validates its arguments first and either
// fails without touching the tree or applies the whole change.
//
// # Notifications
//
// Structural changes are reported on [Node.Children] and
// [Tree.NodesByVerticalIndex]; vertical index changes are reported per node
// through [Node.OnPropertyChanged]. Notifications are delivered after the
// mutation completes, in emission order, so handlers always see a tree that
// satisfies every invariant. Mutating the tree from a handler fails with a
// REENTRANT_MUTATION error.
//
// A Tree is not safe for concurrent use.
package listtree
