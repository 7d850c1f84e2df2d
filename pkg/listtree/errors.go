package listtree

import "errors"

var (
	// ErrNilNode is returned when a nil node is passed to a tree operation.
	ErrNilNode = errors.New("node is nil")

	// ErrDetached is returned when a node was deleted or belongs to another
	// tree. Detached nodes cannot be mutated or used as parents.
	ErrDetached = errors.New("node is not attached to this tree")

	// ErrRoot is returned by operations that are not defined for the root:
	// deleting it, moving it, or changing its index.
	ErrRoot = errors.New("operation not permitted on the root")

	// ErrCycle is returned by [Tree.UpdateParent] when the new parent is the
	// node itself or one of its descendants.
	ErrCycle = errors.New("new parent is the node or one of its descendants")

	// ErrLaterParent is returned by [Tree.UpdateParent] when the new parent
	// comes after the node in vertical order.
	ErrLaterParent = errors.New("new parent has a greater vertical index")

	// ErrOutOfRange is returned when a vertical or child index is outside the
	// range the operation accepts.
	ErrOutOfRange = errors.New("index out of range")
)
