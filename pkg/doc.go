// Package pkg provides the core libraries for listtree lane diagrams.
//
// # Overview
//
// listtree draws an ordered tree so that every node has its own row and
// every edge runs down its own lane. The pkg directory is organized into
// three areas:
//
//  1. Model: [listtree] (tree with a vertical ordering), [diagram]
//     (incremental layout engine), [observe] (change-notifying sequences and
//     live projections)
//  2. Formats: [script] (TOML edit scripts), [snapshot] (JSON layouts),
//     [render/text] and [render/dot]
//  3. Infrastructure: [pipeline] (script → layout → render), [cache],
//     [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Edit script (TOML)
//	         ↓
//	    [script] package (parse, validate, apply operations)
//	         ↓
//	    [listtree] package (tree + vertical ordering)
//	         ↓
//	    [diagram] package (branches, connector chains, rows and lanes)
//	         ↓
//	    [snapshot] package (serializable layout)
//	         ↓
//	    text / JSON / DOT / SVG / PNG / PDF output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/listtree/pkg/diagram"
//	    "github.com/matzehuels/listtree/pkg/listtree"
//	    "github.com/matzehuels/listtree/pkg/render/text"
//	    "github.com/matzehuels/listtree/pkg/snapshot"
//	)
//
//	t := listtree.New("root")
//	a, _ := t.Insert(t.Root(), 0, "a", 1)
//	t.Insert(a, 0, "a1", 2)
//	t.Insert(t.Root(), 1, "b", 3)
//
//	e := diagram.New(t)
//	defer e.Close()
//	fmt.Print(text.Render(snapshot.FromEngine(e, nil), text.Options{}))
//
// The engine follows every later tree mutation, so the layout stays current
// without being rebuilt.
//
// # Main Packages
//
// [listtree] - Ordered tree whose nodes also carry a vertical index. Every
// mutation is validated before it is applied and notifies subscribers once
// the tree is consistent again.
//
// [diagram] - Layout engine mirroring a tree into branches and connectors.
// Rows and lanes are recomputed incrementally through an invalidation
// queue. Branches expose the five editing commands.
//
// [observe] - Observable lists, notifiers, deferred dispatch queues and
// [observe.Project], a live mapped view with a weak per-item cache.
//
// [script] - TOML edit scripts: insert, delete, reparent, vertical and
// reorder operations addressed by node label.
//
// [snapshot] - JSON layout documents with per-node rows, lanes and segments.
//
// [pipeline] - Script → layout → render orchestration with caching, used by
// the CLI and the HTTP viewer.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -short ./pkg/...             # Skip Graphviz rendering
//	go test -run Example ./pkg/...       # Examples only
//
// [listtree]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/listtree
// [diagram]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/diagram
// [observe]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/observe
// [observe.Project]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/observe#Project
// [script]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/script
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/snapshot
// [render/text]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/render/text
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/listtree/pkg/buildinfo
package pkg
