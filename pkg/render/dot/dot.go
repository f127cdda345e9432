// Package dot renders the process graph as a Graphviz node-link diagram:
// one cluster per procedure, one box per item, one arrow per successor
// reference. It is the quick-look companion to the swimlane document in
// [github.com/laneflow/laneflow/pkg/render/drawio].
package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/laneflow/laneflow/pkg/process"
)

// ToDOT converts a process graph to Graphviz DOT format. The resulting
// string can be rendered with [RenderSVG] or [RenderPNG].
//
// Shared items (more than one stakeholder) are drawn filled to match
// their highlighted appearance in the swimlane document.
func ToDOT(g *process.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i, p := range g.Procedures() {
		if p.ItemCount() == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", p.Label())
		buf.WriteString("    style=rounded;\n")
		buf.WriteString("    color=\"#6c8ebf\";\n")

		for _, it := range p.Items() {
			attrs := []string{fmt.Sprintf("label=%q", fmtLabel(it))}
			if it.Shared() {
				attrs = append(attrs, "fillcolor=\"#fff2cc\"")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", it.ID, strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, p := range g.Procedures() {
		for _, it := range p.Items() {
			for _, target := range it.Next {
				if _, ok := g.Item(target); !ok {
					continue
				}
				fmt.Fprintf(&buf, "  %q -> %q;\n", it.ID, target)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(it *process.Item) string {
	label := strings.TrimSpace(it.Label())
	return label + "\n" + strings.Join(it.Stakeholders, ", ")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	gv := graphviz.New()
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
