// Package diagram lays out a [listtree.Tree] as a side diagram of branch
// lines and keeps the layout up to date as the tree changes.
//
// # Model
//
// Every tree node gets a [Branch]. A branch is headed by a [Connector] in
// the node's row (its vertical index). Between a node and its parent there
// are vi(node) - vi(parent) rows to bridge, so the branch owns a chain of
// that many connectors, one per row, ending at the parent branch's head.
// Together the connectors form a tree in which a connector's depth is its
// row.
//
// Each connector is placed in a lane (a sub-column of the diagram):
//
//	row(c)  = row(parent(c)) + 1, and 0 for the root
//	lane(c) = max(lane(left(c)) + 1, lane(parent(c)))
//
// where left(c) is the nearest connector to the left in the same row, or
// lane -1 when there is none. Children never sit left of their parent, and
// lines in the same row never share a lane.
//
// # Incremental updates
//
// The [Engine] subscribes to the tree. Structural changes add, remove or
// move whole connector subtrees; vertical index changes grow or shrink
// chains. Each change queues the connectors whose neighbors changed, and
// the queue is drained to a fixpoint before the tree call that caused it
// returns. Only queued connectors and those whose inputs changed as a
// result are recomputed.
//
// The engine's own notifications (on [Engine.Branches], [Branch.Connectors]
// and connector properties) are held back until the tree has delivered
// every notification of the mutating call, so engine subscribers always
// see a layout that matches the tree.
//
// # Commands
//
// Branches expose the editing commands of a list-tree view (move up/down,
// move left/right among siblings, delete) through [Branch.CanExecute] and
// [Branch.Execute].
package diagram
