package listtree_test

import (
	"fmt"

	"github.com/matzehuels/listtree/pkg/listtree"
)

func Example() {
	tree := listtree.New("project")
	design, _ := tree.Root().Insert(0, "design", 1)
	build, _ := tree.Root().Insert(1, "build", 2)
	_, _ = design.Insert(0, "sketch", 3)

	// Show the sketch right below design; build moves down.
	sketch := tree.At(3)
	_ = sketch.SetVerticalIndex(2)

	for _, n := range tree.NodesByVerticalIndex().All() {
		fmt.Println(n.VerticalIndex(), n.Data())
	}
	fmt.Println("build is now at", build.VerticalIndex())
	// Output:
	// 0 project
	// 1 design
	// 2 sketch
	// 3 build
	// build is now at 3
}

func ExampleTree_UpdateParent() {
	tree := listtree.New("root")
	a, _ := tree.Root().Insert(0, "a", 1)
	b, _ := tree.Root().Insert(1, "b", 2)

	// b may move under a because a comes first.
	fmt.Println(b.UpdateParent(a, 0) == nil)

	// a may not move under b: that would make a its own ancestor.
	err := a.UpdateParent(b, 0)
	fmt.Println(err)
	// Output:
	// true
	// INVALID_ARGUMENT: cannot move node 1 under node 2: new parent is the node or one of its descendants
}
