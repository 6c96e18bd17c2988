// Package xdsmjs writes XDSM diagrams for the XDSMjs browser viewer, as JSON
// data or as an HTML page that loads the viewer and embeds the data.
package xdsmjs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
)

// Outside is the id of the virtual node external inputs come from and
// outputs go to.
const Outside = "_U_"

const multiSuffix = "_multi"

// Data is the XDSMjs document.
type Data struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Workflow []any  `json:"workflow"`
}

// Node is an XDSMjs block.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Edge is an XDSMjs connection.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Name string `json:"name"`
}

// Options configures the writer.
type Options struct {
	// HTML wraps the data in a viewer page instead of writing bare JSON.
	HTML bool
	Page PageOptions
	// Logger receives warnings. Discarded if nil.
	Logger *log.Logger
}

// Writer collects a diagram and serializes it for XDSMjs.
type Writer struct {
	opts Options
	data Data
	ids  map[string]bool
}

// New returns an XDSMjs writer.
func New(opts Options) *Writer {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Writer{
		opts: opts,
		data: Data{Nodes: []Node{}, Edges: []Edge{}, Workflow: []any{}},
		ids:  make(map[string]bool),
	}
}

// FormatID drops underscores, which XDSMjs does not accept in ids. The
// virtual outside node keeps its name.
func FormatID(id string) string {
	if id == Outside {
		return id
	}
	return strings.ReplaceAll(id, "_", "")
}

// AddNode implements diagram.Writer.
func (w *Writer) AddNode(n diagram.Node) error {
	id := FormatID(n.ID)
	if w.ids[id] {
		return fmt.Errorf("node id %q collides after formatting", id)
	}
	w.ids[id] = true

	typ := n.Style
	if n.Stacked {
		typ += multiSuffix
	}
	name := n.Label.Join(" ")
	if n.Class != "" {
		name += "-" + n.Class
	}
	w.data.Nodes = append(w.data.Nodes, Node{ID: id, Type: typ, Name: name})
	return nil
}

// AddEdge implements diagram.Writer. Right side outputs are drawn on the
// left, the only side XDSMjs supports.
func (w *Writer) AddEdge(e diagram.Edge) error {
	from, to := FormatID(e.From), FormatID(e.To)
	switch e.Kind {
	case diagram.EdgeInput:
		from = Outside
	case diagram.EdgeOutput:
		if e.Side == diagram.SideRight {
			w.opts.Logger.Warn("right side outputs are not supported, drawing on the left", "node", e.From)
		}
		to = Outside
	}
	w.data.Edges = append(w.data.Edges, Edge{From: from, To: to, Name: e.Label.Join(", ")})
	return nil
}

// AddWorkflowStep implements diagram.Writer.
func (w *Writer) AddWorkflowStep(s diagram.Step) error {
	w.data.Workflow = append(w.data.Workflow, encodeStep(s)...)
	return nil
}

// encodeStep flattens a loop into its head followed by a nested list of its
// body, the process notation XDSMjs reads.
func encodeStep(s diagram.Step) []any {
	head := []any{FormatID(s.ID)}
	if !s.Loop {
		return head
	}
	body := []any{}
	for _, b := range s.Body {
		body = append(body, encodeStep(b)...)
	}
	return append(head, body)
}

// Data returns the collected document.
func (w *Writer) Data() Data {
	return w.data
}

// Serialize implements diagram.Writer.
func (w *Writer) Serialize(out io.Writer) error {
	if w.opts.HTML {
		return WritePage(out, w.data, w.opts.Page)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(w.data)
}
