package diagram

import (
	"iter"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/observability"
	"github.com/matzehuels/listtree/pkg/observe"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output. A nil logger selects
// the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Stats counts the work done by an Engine since it was created.
type Stats struct {
	Drains    int // queue drains
	Processed int // queue entries recomputed
	Changed   int // row or lane assignments that changed
}

// Engine mirrors a tree as a diagram and keeps it up to date as the tree
// changes. See the package documentation for the layout rules.
type Engine struct {
	tree     *listtree.Tree
	root     *Branch
	branches observe.List[*Branch]
	byNode   map[*listtree.Node]*Branch
	queue    []*Connector
	notify   observe.Queue
	settled  *observe.Subscription
	stats    Stats
	closed   bool
	logger   *log.Logger
}

// New builds the layout of tree and subscribes to its changes.
func New(tree *listtree.Tree, opts ...Option) *Engine {
	e := &Engine{
		tree:   tree,
		byNode: make(map[*listtree.Node]*Branch),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.branches.SetDispatcher(&e.notify)

	e.root = newBranch(e, tree.Root(), nil)
	e.register(e.root)
	e.invalidate(e.root.head)
	for i, child := range tree.Root().Children().All() {
		e.addNode(i, child, e.root)
	}
	e.drain()
	e.notify.Flush()
	e.settled = tree.OnMutated(func(string) { e.notify.Flush() })

	e.logger.Debug("built diagram", "branches", e.branches.Len())
	return e
}

// Tree returns the tree the engine follows.
func (e *Engine) Tree() *listtree.Tree { return e.tree }

// Root returns the root node's branch.
func (e *Engine) Root() *Branch { return e.root }

// Branches returns every branch in creation order.
func (e *Engine) Branches() observe.Sequence[*Branch] { return e.branches.ReadOnly() }

// Branch returns the branch for node, or nil.
func (e *Engine) Branch(node *listtree.Node) *Branch { return e.byNode[node] }

// Stats returns the work counters.
func (e *Engine) Stats() Stats { return e.stats }

// Connectors iterates over every connector in depth-first order, parents
// before children and children left to right.
func (e *Engine) Connectors() iter.Seq[*Connector] {
	return func(yield func(*Connector) bool) {
		for _, c := range e.root.head.subtree() {
			if !yield(c) {
				return
			}
		}
	}
}

// Extent returns the number of rows and lanes the diagram occupies.
func (e *Engine) Extent() (rows, lanes int) {
	for c := range e.Connectors() {
		rows = max(rows, c.row+1)
		lanes = max(lanes, c.lane+1)
	}
	return rows, lanes
}

// Close cancels every tree subscription. The layout stays readable but no
// longer follows the tree.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.settled.Cancel()
	for _, b := range e.branches.All() {
		b.unsubscribe()
	}
	e.logger.Debug("closed diagram", "branches", e.branches.Len())
}

func (e *Engine) register(b *Branch) {
	e.branches.Append(b)
	e.byNode[b.node] = b
	b.subs = append(b.subs, b.node.Children().Subscribe(func(c observe.Change[*listtree.Node]) {
		e.onChildrenChanged(b, c)
	}))
	if b.parent != nil {
		b.subs = append(b.subs, b.node.OnPropertyChanged(func(pc listtree.PropertyChange) {
			if pc.Property == listtree.PropertyVerticalIndex {
				e.onVerticalIndexChanged(b)
			}
		}))
	}
}

func (b *Branch) unsubscribe() {
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
	if b.views != nil {
		b.views.Close()
	}
}

func (e *Engine) onChildrenChanged(b *Branch, c observe.Change[*listtree.Node]) {
	switch c.Action {
	case observe.Add:
		for i, child := range c.NewItems {
			e.addNode(c.NewIndex+i, child, b)
		}
	case observe.Remove:
		for range c.OldItems {
			e.removeNode(c.OldIndex, b)
		}
	case observe.Move:
		e.moveNode(c.OldIndex, c.NewIndex, b)
	default:
		panic(errors.New(errors.ErrCodeInvariantViolation,
			"unexpected %s on children of node %d", c.Action, b.node.ID()))
	}
	e.drain()
}

func (e *Engine) onVerticalIndexChanged(b *Branch) {
	vi := b.node.VerticalIndex()
	e.fixChain(b, vi-b.parent.node.VerticalIndex())
	for _, child := range b.node.Children().All() {
		cb := e.byNode[child]
		if cb == nil {
			panic(errors.New(errors.ErrCodeInvariantViolation,
				"node %d has no branch", child.ID()))
		}
		e.fixChain(cb, child.VerticalIndex()-vi)
	}
	e.drain()
}

// addNode builds branches for node and its descendants, breadth first, and
// hangs node's chain at position index under parent.
func (e *Engine) addNode(index int, node *listtree.Node, parent *Branch) {
	type pending struct {
		index  int
		node   *listtree.Node
		parent *Branch
	}
	var top *Branch
	queue := []pending{{index, node, parent}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		b := newBranch(e, p.node, p.parent)
		if top == nil {
			top = b
		}
		p.parent.head.children = slices.Insert(p.parent.head.children, p.index, b.head)
		b.head.setParent(p.parent.head)
		e.register(b)
		e.resizeChain(b, p.node.VerticalIndex()-p.parent.node.VerticalIndex())

		for i, child := range p.node.Children().All() {
			queue = append(queue, pending{i, child, b})
		}
	}
	e.invalidateInserted(top.top())
	e.logger.Debug("added branch", "node", node.ID(), "parent", parent.node.ID(), "index", index)
}

// removeNode tears down the chain at position index under parent and every
// branch below it, children before parents.
func (e *Engine) removeNode(index int, parent *Branch) {
	top := parent.head.children[index]
	e.invalidateRemoved(top)

	parent.head.children = slices.Delete(parent.head.children, index, index+1)
	for _, c := range slices.Backward(top.subtree()) {
		if b := c.Branch(); b != nil {
			b.unsubscribe()
			e.branches.RemoveAt(observe.IndexOf(e.branches.ReadOnly(), b))
			delete(e.byNode, b.node)
		}
		c.detach()
	}
	e.logger.Debug("removed branch", "parent", parent.node.ID(), "index", index)
}

// moveNode relocates the chain at oldIndex under parent to newIndex.
func (e *Engine) moveNode(oldIndex, newIndex int, parent *Branch) {
	children := parent.head.children
	moved := children[oldIndex]
	e.invalidateRemoved(moved)
	children = slices.Delete(children, oldIndex, oldIndex+1)
	parent.head.children = slices.Insert(children, newIndex, moved)
	e.invalidateInserted(moved)
}

// fixChain resizes b's chain to want connectors and invalidates the
// connectors whose neighbors changed. Non-positive counts are ignored.
func (e *Engine) fixChain(b *Branch, want int) {
	if want <= 0 || b.connectors.Len() == want {
		return
	}
	e.invalidateRemoved(b.top())
	e.resizeChain(b, want)
	e.invalidateInserted(b.top())
}

func (e *Engine) resizeChain(b *Branch, want int) {
	if want <= 0 {
		return
	}
	for b.connectors.Len() > want {
		if !b.removeParentConnector() {
			break
		}
	}
	for b.connectors.Len() < want {
		b.addParentConnector()
	}
}

// invalidateRemoved queues the right-hand neighbors of a subtree that is
// about to leave its position.
func (e *Engine) invalidateRemoved(top *Connector) {
	for _, c := range top.subtree() {
		e.invalidate(c.Right())
	}
}

// invalidateInserted queues a subtree that has just taken a new position,
// together with its right-hand neighbors.
func (e *Engine) invalidateInserted(top *Connector) {
	for _, c := range top.subtree() {
		e.invalidate(c)
		e.invalidate(c.Right())
	}
}

func (e *Engine) invalidate(c *Connector) {
	if c != nil {
		e.queue = append(e.queue, c)
	}
}

func (e *Engine) drain() {
	start := time.Now()
	processed, changed := 0, 0
	for len(e.queue) > 0 {
		c := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		if !c.attached {
			continue
		}
		processed++

		lane := 0
		if left := c.Left(); left != nil {
			lane = left.lane + 1
		}
		if c.parent != nil && lane < c.parent.lane {
			lane = c.parent.lane
		}
		if c.lane != lane {
			c.setLane(lane)
			changed++
			e.invalidate(c.Right())
			e.invalidate(c.leftmostChild())
		}

		row := 0
		if c.parent != nil {
			row = c.parent.row + 1
		}
		if c.row != row {
			c.setRow(row)
			changed++
			for _, child := range c.children {
				e.invalidate(child)
			}
		}
	}
	e.queue = nil

	e.stats.Drains++
	e.stats.Processed += processed
	e.stats.Changed += changed
	observability.Layout().OnDrain(processed, changed, time.Since(start))
	if processed > 0 {
		e.logger.Debug("drained layout queue", "processed", processed, "changed", changed)
	}
}
