package diagram_test

import (
	"fmt"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/listtree"
)

func Example() {
	tree := listtree.New("root")
	a, _ := tree.Root().Insert(0, "a", 1)
	_, _ = tree.Root().Insert(1, "b", 2)
	_, _ = a.Insert(0, "a1", 3)

	layout := diagram.New(tree)
	defer layout.Close()

	for _, n := range tree.NodesByVerticalIndex().All() {
		b := layout.Branch(n)
		fmt.Printf("%-4v row=%d lane=%d connectors=%d\n", n.Data(), b.Row(), b.Lane(), b.Connectors().Len())
	}
	// Output:
	// root row=0 lane=0 connectors=0
	// a    row=1 lane=0 connectors=1
	// b    row=2 lane=1 connectors=2
	// a1   row=3 lane=0 connectors=2
}

func ExampleBranch_Execute() {
	tree := listtree.New("root")
	a, _ := tree.Root().Insert(0, "a", 1)
	b, _ := tree.Root().Insert(1, "b", 2)

	layout := diagram.New(tree)
	defer layout.Close()

	branch := layout.Branch(b)
	fmt.Println(branch.CanExecute(diagram.DecrementVerticalIndex))
	_ = branch.Execute(diagram.DecrementVerticalIndex)
	fmt.Println(b.VerticalIndex(), a.VerticalIndex(), branch.Row())

	err := branch.Execute(diagram.DecrementVerticalIndex)
	fmt.Println(err)
	// Output:
	// true
	// 1 2 1
	// COMMAND_DISABLED: decrement-vertical-index is not available for node 2
}
