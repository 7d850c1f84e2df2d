// Package snapshot provides the serialized form of a computed diagram.
//
// A [Layout] is a plain, JSON-friendly copy of a [diagram.Engine]'s state
// at one point in time. It is the boundary format between the live layout
// and everything downstream of it: the text and DOT renderers, the JSON
// output of the CLI, the viewer server and the artifact cache.
//
// # Format
//
// Nodes are listed in vertical order, so Nodes[i] is the node in row i:
//
//	{
//	  "rows": 3,
//	  "lanes": 2,
//	  "nodes": [
//	    {"id": 0, "label": "root", "vertical_index": 0, "child_index": 0, "row": 0, "lane": 0},
//	    {"id": 1, "label": "a", "parent": 0, "vertical_index": 1, ...,
//	     "segments": [{"start": {"lane": 0, "row": 1}, "end": {"lane": 0, "row": 0}}]}
//	  ]
//	}
//
// Segments run bottom-up from the node's own cell to the row below its
// parent; the root has none.
//
// Common operations:
//
//	l := snapshot.FromEngine(engine, nil)      // Engine → Layout
//	data, _ := snapshot.Marshal(l)             // Layout → []byte
//	l, _ = snapshot.ReadFile("layout.json")    // File → Layout
//	tree, _ := snapshot.ToTree(l)              // Layout → Tree
package snapshot
