package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/bramp/objectgraph/pkg/objectgraph"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Detailed adds declared type, kind and depth to node labels.
	Detailed bool
}

// ToDOT converts a report to Graphviz DOT format.
// Primitive nodes are drawn as ellipses, all others as boxes.
func ToDOT(r *Report, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.Index, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges {
		if e.Label != "" {
			fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n Node, detailed bool) string {
	label := n.Type
	if n.Value != "" {
		label += " = " + n.Value
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\ndeclared: %s\nkind: %s\ndepth: %d", label, n.Declared, n.Kind, n.Depth)
}

func nodeAttrs(n Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}
	if n.Kind == objectgraph.KindPrimitive.String() {
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	}
	if n.Index == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
