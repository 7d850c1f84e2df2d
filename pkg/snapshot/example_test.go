package snapshot_test

import (
	"fmt"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

func ExampleFromEngine() {
	tree := listtree.New("root")
	_, _ = tree.Root().Insert(0, "a", 1)
	_, _ = tree.Root().Insert(1, "b", 2)
	e := diagram.New(tree)
	defer e.Close()

	l := snapshot.FromEngine(e, nil)
	fmt.Printf("%d rows, %d lanes\n", l.Rows, l.Lanes)
	for _, n := range l.Nodes {
		fmt.Println(n.Label, n.Position(), n.Segments)
	}
	// Output:
	// 3 rows, 2 lanes
	// root (0,0) []
	// a (0,1) [{(0,1) (0,0)}]
	// b (1,2) [{(1,2) (1,1)} {(1,1) (0,0)}]
}
