// Package render turns laid-out diagrams into output formats.
//
// Diagrams become Graphviz DOT with compass ports carrying the computed
// attachment sides, which [RenderSVG] and [RenderPNG] then rasterize via
// go-graphviz. [ToJSON] emits the diagram itself for frontend consumption.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/odex-dev/odex/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes metadata (entity set, property counts) in node
	// labels. When false, only the display label is shown.
	Detailed bool

	// RankDir sets the Graphviz layout direction; defaults to "TB".
	RankDir string
}

// ToDOT converts a laid-out diagram to Graphviz DOT. Each edge carries its
// computed attachment sides as compass ports, so the rendering honors the
// connection-point layout instead of letting Graphviz pick attachment
// locations.
func ToDOT(d diagram.Result, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("\n")

	sides := map[string]diagram.Side{}
	for _, n := range d.Nodes {
		for _, cp := range n.ConnectionPoints {
			sides[cp.ID] = cp.Side
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if side, ok := sides[e.SourceConnectionPointID]; ok {
			attrs = append(attrs, fmt.Sprintf("tailport=%s", compass(side)))
		}
		if side, ok := sides[e.TargetConnectionPointID]; ok {
			attrs = append(attrs, fmt.Sprintf("headport=%s", compass(side)))
		}

		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// compass maps an attachment side to its Graphviz compass point.
func compass(s diagram.Side) string {
	switch s {
	case diagram.SideTop:
		return "n"
	case diagram.SideBottom:
		return "s"
	case diagram.SideLeft:
		return "w"
	default:
		return "e"
	}
}

func nodeLabel(n diagram.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || len(n.Meta) == 0 {
		return label
	}

	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

// ToJSON serializes a diagram for frontend consumption.
func ToJSON(d diagram.Result) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize diagram: %w", err)
	}
	return data, nil
}
