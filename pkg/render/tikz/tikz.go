package tikz

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/format"
)

// Block styles used for edges and I/O blocks.
const (
	StyleDataInter = "DataInter"
	StyleDataIO    = "DataIO"
	StyleDataLine  = "DataLine"
)

// DefaultStylesFile is the style file included by the document.
const DefaultStylesFile = "diagram_styles"

//go:embed diagram_styles.tex
var defaultStyles []byte

// DefaultStyles returns the bundled definitions for every block and line
// style the writer references. Save it as DefaultStylesFile + ".tex" next
// to the document.
func DefaultStyles() []byte {
	return append([]byte(nil), defaultStyles...)
}

// Options configures the TikZ writer.
type Options struct {
	Legend      bool   // add a row listing the block styles in use
	Arrows      bool   // draw arrow heads on process lines
	StylesFile  string // DefaultStylesFile if empty
	Standalone  bool   // wrap the picture in a complete document
	LegendTitle string // "Legend" if empty
}

// Writer collects a diagram and serializes it as TikZ.
type Writer struct {
	opts     Options
	nodes    []diagram.Node
	edges    []diagram.Edge
	workflow []diagram.Step
	index    map[string]int
}

// New returns a TikZ writer.
func New(opts Options) *Writer {
	if opts.StylesFile == "" {
		opts.StylesFile = DefaultStylesFile
	}
	if opts.LegendTitle == "" {
		opts.LegendTitle = "Legend"
	}
	return &Writer{opts: opts, index: make(map[string]int)}
}

// AddNode implements diagram.Writer.
func (w *Writer) AddNode(n diagram.Node) error {
	if _, dup := w.index[n.ID]; dup {
		return fmt.Errorf("duplicate node %q", n.ID)
	}
	w.index[n.ID] = len(w.nodes)
	w.nodes = append(w.nodes, n)
	return nil
}

// AddEdge implements diagram.Writer. Endpoints must be added first.
func (w *Writer) AddEdge(e diagram.Edge) error {
	for _, id := range []string{e.From, e.To} {
		if id == "" {
			continue
		}
		if _, ok := w.index[id]; !ok {
			return fmt.Errorf("edge references unknown node %q", id)
		}
	}
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
	var buf bytes.Buffer
	if w.opts.Standalone {
		buf.WriteString(preamble)
	}
	fmt.Fprintf(&buf, "\\input{%s}\n", w.opts.StylesFile)
	if w.opts.Standalone {
		buf.WriteString("\n\\begin{document}\n")
	}
	buf.WriteString("\\begin{tikzpicture}\n\n")
	buf.WriteString("\\matrix[MatrixSetup]{\n")
	buf.WriteString(w.grid())
	if w.opts.Legend {
		buf.WriteString(w.legend())
	}
	buf.WriteString("};\n\n")

	if chains := w.chains(); chains != "" {
		buf.WriteString("% XDSM process chains\n")
		buf.WriteString(chains)
		buf.WriteString("\n")
	}

	buf.WriteString("\\begin{pgfonlayer}{data}\n\\path\n")
	buf.WriteString(w.paths())
	buf.WriteString("\\end{pgfonlayer}\n\n")
	buf.WriteString("\\end{tikzpicture}\n")
	if w.opts.Standalone {
		buf.WriteString("\\end{document}\n")
	}
	_, err := out.Write(buf.Bytes())
	return err
}

const preamble = `\documentclass{article}
\usepackage{geometry}
\usepackage{amsfonts}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{tikz}

`

// =============================================================================
// Matrix
// =============================================================================

// layout maps nodes to matrix cells.
type layout struct {
	rows, cols  int
	rowOff      int // 1 if there is an input row
	colOff      int // 1 if there is a left output column
	rightCol    int
	hasRightCol bool
}

func (w *Writer) layout() layout {
	l := layout{}
	for _, e := range w.edges {
		switch {
		case e.Kind == diagram.EdgeInput:
			l.rowOff = 1
		case e.Kind == diagram.EdgeOutput && e.Side == diagram.SideRight:
			l.hasRightCol = true
		case e.Kind == diagram.EdgeOutput:
			l.colOff = 1
		}
	}
	n := len(w.nodes)
	l.rows = n + l.rowOff
	l.cols = n + l.colOff
	if l.hasRightCol {
		l.rightCol = l.cols
		l.cols++
	}
	return l
}

func (w *Writer) grid() string {
	l := w.layout()
	cells := make([][]string, l.rows)
	for i := range cells {
		cells[i] = make([]string, l.cols)
	}

	for i, n := range w.nodes {
		cells[i+l.rowOff][i+l.colOff] = nodeStr(styleOf(n.Style, n.Stacked), n.ID, nodeLabel(n))
	}
	for _, e := range w.edges {
		label := mathLabel(e.Label)
		switch e.Kind {
		case diagram.EdgeData:
			r, c := w.index[e.From]+l.rowOff, w.index[e.To]+l.colOff
			cells[r][c] = nodeStr(styleOf(StyleDataInter, e.Stacked), dataName(e), label)
		case diagram.EdgeInput:
			c := w.index[e.To] + l.colOff
			cells[0][c] = nodeStr(styleOf(StyleDataIO, e.Stacked), ioName(e), label)
		case diagram.EdgeOutput:
			r := w.index[e.From] + l.rowOff
			c := 0
			if e.Side == diagram.SideRight {
				c = l.rightCol
			}
			cells[r][c] = nodeStr(styleOf(StyleDataIO, e.Stacked), ioName(e), label)
		}
	}

	var b strings.Builder
	for i, row := range cells {
		fmt.Fprintf(&b, "%%Row %d\n", i)
		b.WriteString(strings.Join(row, "&\n"))
		b.WriteString(`\\` + "\n")
	}
	return b.String()
}

func (w *Writer) legend() string {
	var styles []string
	seen := make(map[string]bool)
	for _, n := range w.nodes {
		if n.Style != "" && !seen[n.Style] {
			seen[n.Style] = true
			styles = append(styles, n.Style)
		}
	}
	sort.Strings(styles)

	var b strings.Builder
	fmt.Fprintf(&b, "%%Row legend\n\\node (legend_title) {\\LARGE \\textbf{%s}};\\\\\n", w.opts.LegendTitle)
	parts := make([]string, len(styles))
	for i, s := range styles {
		parts[i] = nodeStr(s, fmt.Sprintf("style%d", i), s)
	}
	b.WriteString(strings.Join(parts, "  &\n"))
	b.WriteString(`\\` + "\n")
	return b.String()
}

func nodeStr(style, name, label string) string {
	return fmt.Sprintf(`\node [%s] (%s) {%s};`, style, name, label)
}

func styleOf(style string, stacked bool) string {
	if stacked {
		return style + ",stack"
	}
	return style
}

func dataName(e diagram.Edge) string {
	return e.From + "-" + e.To
}

func ioName(e diagram.Edge) string {
	switch {
	case e.Kind == diagram.EdgeInput:
		return "input_" + e.To
	case e.Side == diagram.SideRight:
		return "right_output_" + e.From
	}
	return "left_output_" + e.From
}

// =============================================================================
// Labels
// =============================================================================

// nodeLabel renders each line as text inside math mode, with the class
// name in italics on its own line.
func nodeLabel(n diagram.Node) string {
	lines := append(format.Lines(nil), n.Label...)
	if n.Class != "" {
		lines = append(lines, `\textit{`+strings.ReplaceAll(n.Class, "_", `\_`)+`}`)
	}
	text := make(format.Lines, len(lines))
	for i, l := range lines {
		text[i] = `\text{` + l + `}`
	}
	return mathLabel(text)
}

func mathLabel(lines format.Lines) string {
	switch len(lines) {
	case 0:
		return "{}"
	case 1:
		if lines[0] == "" {
			return "{}"
		}
		return "$" + lines[0] + "$"
	}
	return `$\begin{array}{c}` + strings.Join(lines, ` \\ `) + `\end{array}$`
}

// =============================================================================
// Edges and process chains
// =============================================================================

func (w *Writer) paths() string {
	var h, v []string
	edge := func(from, to string) string {
		return fmt.Sprintf("(%s) edge [%s] (%s)", from, StyleDataLine, to)
	}
	for _, e := range w.edges {
		switch e.Kind {
		case diagram.EdgeData:
			h = append(h, edge(e.From, dataName(e)))
			v = append(v, edge(dataName(e), e.To))
		case diagram.EdgeInput:
			v = append(v, edge(ioName(e), e.To))
		case diagram.EdgeOutput:
			h = append(h, edge(e.From, ioName(e)))
		}
	}
	return "% Horizontal edges\n" + strings.Join(h, "\n") + "\n% Vertical edges\n" + strings.Join(v, "\n") + ";\n"
}

func (w *Writer) chains() string {
	join := "ProcessHV"
	if w.opts.Arrows {
		join = "ProcessHVA"
	}
	var b strings.Builder
	for _, loop := range diagram.Loops(w.workflow) {
		chain := loop.Chain()
		b.WriteString("{ [start chain=process]\n \\begin{pgfonlayer}{process} \n")
		for i, id := range chain {
			if i == 0 {
				fmt.Fprintf(&b, "\\chainin (%s);\n", id)
				continue
			}
			fmt.Fprintf(&b, "\\chainin (%s) [join=by %s];\n", id, join)
		}
		b.WriteString("\\end{pgfonlayer}\n}\n")
	}
	return b.String()
}
