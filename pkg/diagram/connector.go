package diagram

import (
	"fmt"
	"slices"

	"github.com/matzehuels/listtree/pkg/observe"
)

// Point is a cell of the diagram grid.
type Point struct {
	Lane int `json:"lane"`
	Row  int `json:"row"`
}

// String returns "(lane,row)".
func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Lane, p.Row) }

// Segment is the line drawn for one connector: from the connector's own
// cell up to its parent's cell.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// ConnectorProperty names a connector property reported through
// [Connector.OnPropertyChanged].
type ConnectorProperty string

const (
	PropertyRow    ConnectorProperty = "Row"
	PropertyLane   ConnectorProperty = "Lane"
	PropertyParent ConnectorProperty = "Parent"
)

// ConnectorChange describes a change of one connector property.
type ConnectorChange struct {
	Connector *Connector
	Property  ConnectorProperty
}

// Connector is a unit-height piece of the diagram. The connectors form a
// tree whose depth equals the diagram row: every branch is headed by a
// connector, and a chain of intermediate connectors links a branch to its
// parent branch, one per row in between.
type Connector struct {
	owner    *Branch
	head     bool
	parent   *Connector
	children []*Connector
	row      int
	lane     int
	attached bool
	props    observe.Notifier[ConnectorChange]
}

func newConnector(owner *Branch, head bool) *Connector {
	c := &Connector{owner: owner, head: head, attached: true}
	c.props.SetDispatcher(&owner.engine.notify)
	return c
}

// Row returns the diagram row. It equals the connector's depth.
func (c *Connector) Row() int { return c.row }

// Lane returns the sub-column within the diagram.
func (c *Connector) Lane() int { return c.lane }

// Position returns the connector's cell.
func (c *Connector) Position() Point { return Point{Lane: c.lane, Row: c.row} }

// Parent returns the connector above, or nil for the root branch head and
// removed connectors.
func (c *Connector) Parent() *Connector { return c.parent }

// Children returns a copy of the connectors directly below.
func (c *Connector) Children() []*Connector { return slices.Clone(c.children) }

// NumChildren returns the number of connectors directly below.
func (c *Connector) NumChildren() int { return len(c.children) }

// Branch returns the branch this connector heads, or nil for intermediate
// connectors.
func (c *Connector) Branch() *Branch {
	if c.head {
		return c.owner
	}
	return nil
}

// IsBranch reports whether the connector heads a branch.
func (c *Connector) IsBranch() bool { return c.head }

// Owner returns the branch whose chain the connector belongs to.
func (c *Connector) Owner() *Branch { return c.owner }

// Attached reports whether the connector is still part of the layout.
func (c *Connector) Attached() bool { return c.attached }

// ChildIndex returns the connector's position among its parent's children,
// or 0 when it has no parent.
func (c *Connector) ChildIndex() int {
	if c.parent == nil {
		return 0
	}
	return slices.Index(c.parent.children, c)
}

// Segment returns the line from the connector to its parent. ok is false
// for connectors without a parent.
func (c *Connector) Segment() (seg Segment, ok bool) {
	if c.parent == nil {
		return Segment{}, false
	}
	return Segment{Start: c.Position(), End: c.parent.Position()}, true
}

// Left returns the nearest connector to the left in the same row, or nil.
func (c *Connector) Left() *Connector { return c.lateral(-1) }

// Right returns the nearest connector to the right in the same row, or nil.
func (c *Connector) Right() *Connector { return c.lateral(1) }

// OnPropertyChanged registers fn for Row, Lane and Parent changes.
func (c *Connector) OnPropertyChanged(fn func(ConnectorChange)) *observe.Subscription {
	return c.props.Subscribe(fn)
}

func (c *Connector) leftmostChild() *Connector {
	if len(c.children) == 0 {
		return nil
	}
	return c.children[0]
}

func (c *Connector) setRow(row int) {
	if c.row == row {
		return
	}
	c.row = row
	c.props.Notify(ConnectorChange{Connector: c, Property: PropertyRow})
}

func (c *Connector) setLane(lane int) {
	if c.lane == lane {
		return
	}
	c.lane = lane
	c.props.Notify(ConnectorChange{Connector: c, Property: PropertyLane})
}

func (c *Connector) setParent(p *Connector) {
	if c.parent == p {
		return
	}
	c.parent = p
	c.props.Notify(ConnectorChange{Connector: c, Property: PropertyParent})
}

func (c *Connector) detach() {
	c.setParent(nil)
	c.children = nil
	c.attached = false
}

// subtree returns c and everything below it, depth first.
func (c *Connector) subtree() []*Connector {
	out := []*Connector{}
	stack := []*Connector{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for _, child := range slices.Backward(n.children) {
			stack = append(stack, child)
		}
	}
	return out
}

// lateralFrame is one level of the neighbor search. level is the depth of
// node's children relative to the connector being searched from.
type lateralFrame struct {
	level     int
	node      *Connector
	index     int
	descended bool
}

// lateral finds the nearest connector at the same depth in direction dir
// (-1 left, +1 right). It first tries the adjacent sibling, then climbs
// toward the root one level at a time and, at each level, descends into
// the subtrees on the dir side back down to the starting depth. Subtrees
// too shallow to reach that depth are skipped.
func (c *Connector) lateral(dir int) *Connector {
	if c.parent == nil {
		return nil
	}
	next := c.ChildIndex() + dir
	if next >= 0 && next < len(c.parent.children) {
		return c.parent.children[next]
	}

	stack := []lateralFrame{{level: 0, node: c.parent, index: next}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		switch {
		case top.index >= 0 && top.index < len(top.node.children):
			child := top.node.children[top.index]
			if top.level == 0 {
				return child
			}
			top.index += dir
			level := top.level + 1
			if n := len(child.children); n > 0 {
				first := 0
				if dir < 0 {
					first = n - 1
				}
				stack = append(stack, lateralFrame{level: level, node: child, index: first, descended: true})
			}
		case !top.descended && top.node.parent != nil:
			top.level--
			top.index = top.node.ChildIndex() + dir
			top.node = top.node.parent
		default:
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}
