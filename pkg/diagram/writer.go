package diagram

import "io"

// Writer serializes a diagram to a concrete format.
type Writer interface {
	AddNode(n Node) error
	AddEdge(e Edge) error
	// AddWorkflowStep adds one top-level workflow step, loops included.
	AddWorkflowStep(s Step) error
	Serialize(w io.Writer) error
}

// Replay feeds doc into w in document order: nodes, edges, then workflow.
func Replay(doc *Document, w Writer) error {
	for _, n := range doc.Nodes {
		if err := w.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges {
		if err := w.AddEdge(e); err != nil {
			return err
		}
	}
	for _, s := range doc.Workflow {
		if err := w.AddWorkflowStep(s); err != nil {
			return err
		}
	}
	return nil
}
