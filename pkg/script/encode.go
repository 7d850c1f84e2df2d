package script

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/listtree/pkg/listtree"
)

// FromTree captures t as a script of inserts, one per non-root node in
// vertical order. Building the result reproduces t's shape. Node labels
// are formatted with fmt.Sprint.
func FromTree(t *listtree.Tree) *Script {
	root := t.Root()
	s := &Script{Root: fmt.Sprint(root.Data())}
	placed := map[*listtree.Node][]int{}

	for _, n := range t.NodesByVerticalIndex().All() {
		if n == root {
			continue
		}
		parent := n.Parent()
		siblings := placed[parent]
		final := n.ChildIndex()
		pos, _ := slices.BinarySearch(siblings, final)
		placed[parent] = slices.Insert(siblings, pos, final)

		s.Ops = append(s.Ops, Op{
			Kind:          OpInsert,
			Node:          fmt.Sprint(n.Data()),
			Parent:        fmt.Sprint(parent.Data()),
			ChildIndex:    Int(pos),
			VerticalIndex: Int(n.VerticalIndex()),
		})
	}
	return s
}

// Encode writes s as TOML.
func (s *Script) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	return nil
}

// WriteFile writes s to path as TOML.
func (s *Script) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
