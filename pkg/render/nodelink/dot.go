package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Process draws the workflow as dashed grey edges between blocks.
	Process bool
	// Detailed appends node type and class to labels.
	Detailed bool
	// SVG makes Serialize render through Graphviz instead of writing DOT.
	SVG bool
}

// fill colors per block style, matching the pyXDSM palette.
var fills = map[string]string{
	"optimization": "#cce6cc",
	"doe":          "#cce6cc",
	"mda":          "#ffdab3",
	"function":     "#cce0ff",
	"analysis":     "#cce0ff",
	"metamodel":    "#ffffcc",
}

const outsideID = "@outside"

// Writer collects a diagram and serializes it as a Graphviz graph.
type Writer struct {
	opts     Options
	nodes    []diagram.Node
	edges    []diagram.Edge
	workflow []diagram.Step
}

// New returns a node-link writer.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// AddNode implements diagram.Writer.
func (w *Writer) AddNode(n diagram.Node) error {
	w.nodes = append(w.nodes, n)
	return nil
}

// AddEdge implements diagram.Writer.
func (w *Writer) AddEdge(e diagram.Edge) error {
	w.edges = append(w.edges, e)
	return nil
}

// AddWorkflowStep implements diagram.Writer.
func (w *Writer) AddWorkflowStep(s diagram.Step) error {
	w.workflow = append(w.workflow, s)
	return nil
}

// Serialize implements diagram.Writer.
func (w *Writer) Serialize(out io.Writer) error {
	dot := w.DOT()
	if !w.opts.SVG {
		_, err := io.WriteString(out, dot)
		return err
	}
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		return err
	}
	_, err = out.Write(svg)
	return err
}

// DOT returns the collected diagram in Graphviz DOT format. Blocks are laid
// out top to bottom in diagonal order; inputs and outputs attach to a
// shared point node for everything outside the model.
func (w *Writer) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph XDSM {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range w.nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, w.opts.Detailed)), ", "))
	}
	if w.hasExternal() {
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.1];\n", outsideID)
	}

	buf.WriteString("\n")
	for _, e := range w.edges {
		from, to := e.From, e.To
		switch e.Kind {
		case diagram.EdgeInput:
			from = outsideID
		case diagram.EdgeOutput:
			to = outsideID
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from, to, e.Label.String())
	}

	if w.opts.Process {
		buf.WriteString("\n")
		for _, loop := range diagram.Loops(w.workflow) {
			chain := loop.Chain()
			for i := 1; i < len(chain); i++ {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey, constraint=false];\n", chain[i-1], chain[i])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (w *Writer) hasExternal() bool {
	for _, e := range w.edges {
		if e.Kind != diagram.EdgeData {
			return true
		}
	}
	return false
}

func fmtLabel(n diagram.Node, detailed bool) string {
	label := n.Label.String()
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{"type: " + n.Type}
	if n.Class != "" {
		parts = append(parts, "class: "+n.Class)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n diagram.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := fills[strings.ToLower(n.Style)]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Stacked {
		attrs = append(attrs, "peripheries=2")
	}
	if n.Type == diagram.TypeDriver || n.Type == diagram.TypeSolver {
		attrs = append(attrs, "shape=octagon")
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element with a zero-origin viewBox and
// matching pixel size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
