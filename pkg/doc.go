// Package pkg provides the libraries behind objectgraph.
//
// # Overview
//
// objectgraph walks everything reachable from a root value in breadth-first
// order, visiting each distinct object exactly once even when the graph has
// cycles or shared references. The pkg directory is organized as:
//
//  1. [objectgraph] - The traversal engine (identity registry, frontier
//     queue, descent policy, field filter, visitor)
//  2. [report] - Recording a traversal as nodes and edges, with JSON, DOT
//     and SVG output
//  3. [source] - Decoding JSON and TOML documents into traversable values
//  4. [cache] - File, Redis and null report caches
//  5. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
//	JSON/TOML document
//	         ↓
//	    [source] package (decode into plain Go values)
//	         ↓
//	    [objectgraph] package (breadth-first traversal)
//	         ↓
//	    [report] package (record nodes and edges)
//	         ↓
//	    table/JSON/DOT/SVG output
//
// # Quick Start
//
// Traverse any Go value with a callback:
//
//	import "github.com/bramp/objectgraph/pkg/objectgraph"
//
//	stats, err := objectgraph.Traverse(root, objectgraph.VisitorFunc(
//	    func(obj any, declared reflect.Type) bool {
//	        fmt.Println(declared, obj)
//	        return false // keep going
//	    }), objectgraph.Options{})
//
// Record a traversal and render it:
//
//	r, err := report.Build(root, objectgraph.Options{}, 1000)
//	dot := report.ToDOT(r, report.DOTOptions{})
//	svg, err := report.RenderSVG(ctx, dot)
//
// [objectgraph]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/objectgraph
// [report]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/report
// [source]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/source
// [cache]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/cache
// [errors]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/bramp/objectgraph/pkg/buildinfo
package pkg
