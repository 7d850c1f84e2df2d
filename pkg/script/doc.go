// Package script reads and writes edit scripts: TOML files that build a
// list tree from a root label and a sequence of tree operations.
//
// # Format
//
//	root = "root"
//
//	[render]
//	formats = ["text", "svg"]
//
//	[[ops]]
//	op = "insert"        # insert | delete | reparent | vertical | reorder
//	node = "a"
//	parent = "root"
//	child_index = 0      # optional: append as last child
//	vertical_index = 1   # optional: directly below the parent's subtree
//
//	[[ops]]
//	op = "vertical"
//	node = "a"
//	vertical_index = 2
//
// Nodes are named by label. Every inserted label must be new, and every
// other reference must name the root or an earlier insert. Operations are
// applied in order and the first failure stops the script; errors name the
// 1-based operation number.
//
// # Usage
//
//	s, err := script.Load("tree.toml")
//	tree, err := s.Build()
//
// [FromTree] goes the other way and captures an existing tree as a script
// of inserts, which is how the interactive editor saves its work.
package script
