package diagram

import (
	"sort"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/format"
)

// Side is the side of the matrix an output is drawn on.
type Side string

// Output sides.
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide validates an output side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideLeft, SideRight:
		return Side(s), nil
	}
	return "", errors.InvalidConfig("invalid output side %q (must be left or right)", s)
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideRight {
		return SideLeft
	}
	return SideRight
}

// EdgeKind classifies edges.
type EdgeKind string

// Edge kinds.
const (
	EdgeData   EdgeKind = "data"   // between two nodes
	EdgeInput  EdgeKind = "input"  // from outside into To
	EdgeOutput EdgeKind = "output" // from From to outside
)

// Node types that are not component types.
const (
	TypeDriver = "driver"
	TypeSolver = "solver"
	TypeGroup  = "group"
)

// Node is a block on the diagonal.
type Node struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`  // semantic type, a component type or one of the Type constants
	Style   string       `json:"style"` // writer style the type maps to
	Label   format.Lines `json:"label"`
	Class   string       `json:"class,omitempty"`
	Stacked bool         `json:"stacked,omitempty"`
	Index   int          `json:"index"`
	Number  string       `json:"number,omitempty"`
}

// Edge is a data connection, an input or an output.
type Edge struct {
	From    string       `json:"from,omitempty"`
	To      string       `json:"to,omitempty"`
	Kind    EdgeKind     `json:"kind"`
	Label   format.Lines `json:"label"`
	Side    Side         `json:"side,omitempty"`
	Stacked bool         `json:"stacked,omitempty"`
}

// Owner returns the node an input or output belongs to.
func (e Edge) Owner() string {
	if e.Kind == EdgeInput {
		return e.To
	}
	return e.From
}

// Document is a complete diagram.
type Document struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Workflow []Step `json:"workflow,omitempty"`
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// HasNode reports whether id is on the diagonal.
func (d *Document) HasNode(id string) bool {
	_, ok := d.Node(id)
	return ok
}

// AddNode appends n and sets its diagonal index.
func (d *Document) AddNode(n Node) {
	n.Index = len(d.Nodes)
	d.Nodes = append(d.Nodes, n)
}

// AddEdge appends e, merging its label into an existing edge with the same
// endpoints, kind and side.
func (d *Document) AddEdge(e Edge) {
	for i := range d.Edges {
		x := &d.Edges[i]
		if x.From == e.From && x.To == e.To && x.Kind == e.Kind && x.Side == e.Side {
			x.Label = x.Label.Merge(e.Label)
			x.Stacked = x.Stacked || e.Stacked
			return
		}
	}
	d.Edges = append(d.Edges, e)
}

// Styles returns the distinct node styles in use, sorted.
func (d *Document) Styles() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range d.Nodes {
		if n.Style != "" && !seen[n.Style] {
			seen[n.Style] = true
			out = append(out, n.Style)
		}
	}
	sort.Strings(out)
	return out
}
