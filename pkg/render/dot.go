package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/navgraph/pkg/graph"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// Options configures navigation graph rendering.
type Options struct {
	// Detailed adds screen handles and depths to node labels.
	Detailed bool

	// Highlight fills the listed screens, typically the visible path.
	Highlight []screen.ID
}

// ToDOT converts a node store to Graphviz DOT format.
// The output is deterministic: nodes are sorted by ID and edges grouped by
// origin, forward link first.
func ToDOT(s *screen.Store, opts Options) string {
	g := graph.FromStore(s)

	var buf bytes.Buffer
	buf.WriteString("digraph navigation {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtNodeAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtNodeAttrs(n graph.Node, opts Options) []string {
	label := n.ID
	if opts.Detailed {
		label = fmt.Sprintf("%s\nhandle: %d\ndepth: %d", n.ID, n.Handle, n.Depth)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsRoot() {
		attrs = append(attrs, "penwidth=2")
	}
	if slices.Contains(opts.Highlight, screen.ID(n.ID)) {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

func fmtEdgeAttrs(e graph.Edge) []string {
	switch {
	case e.IsContainment():
		return []string{fmt.Sprintf("label=\"slot %d\"", *e.Slot), "style=dashed", "arrowhead=odiamond"}
	case e.Transition == screen.KindModal.String():
		label := "modal"
		if e.Animated {
			label = "modal (animated)"
		}
		return []string{fmt.Sprintf("label=%q", label), "style=bold"}
	default:
		return []string{fmt.Sprintf("label=%q", e.Transition)}
	}
}
