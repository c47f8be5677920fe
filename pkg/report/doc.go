// Package report records traversals and serializes them.
//
// A [Recorder] is an [objectgraph.EdgeVisitor] that captures every visited
// object and every reference between objects into a [Report]. Reports are
// the wire format shared by the CLI, the HTTP API and the cache.
//
// # Report Format
//
// Reports use a node-link JSON format. Nodes are indexed in visit order, so
// node 0 is always the root:
//
//	{
//	  "id": "0b8e...",
//	  "root": "*main.Config",
//	  "nodes": [{"index": 0, "depth": 0, "type": "*main.Config", "declared": "*main.Config", "kind": "composite"}],
//	  "edges": [{"from": 0, "to": 1, "label": "Name"}]
//	}
//
// # Rendering
//
// [ToDOT] converts a report to Graphviz DOT and [RenderSVG] renders DOT
// through go-graphviz:
//
//	dot := report.ToDOT(r, report.DOTOptions{Detailed: true})
//	svg, err := report.RenderSVG(ctx, dot)
package report
