// Package diagram defines the abstract XDSM document handed to writers.
//
// A [Document] is an ordered list of diagonal [Node]s, an ordered list of
// [Edge]s and a workflow. Edges are either data connections between two
// nodes, external inputs into a node, or outputs leaving a node on the left
// or right side of the matrix.
//
// # Workflow
//
// The workflow is a recursive [Step]: a leaf naming one node, or a loop with
// a head node and a body. A loop is closed: its process chain starts and ends
// with the head, see [Step.Chain]. [Nest] rewrites a workflow to wrap the
// members of a solver into its loop and returns a new workflow.
//
// # Numbering
//
// [Number] walks the workflow and assigns process numbers. A leaf takes the
// next number. A loop head takes the next number, its body is numbered, and
// the head takes another number when the loop closes, so each closed loop
// widens the numbering of every node after it by one.
//
// # Writers
//
// A [Writer] receives the document through [Replay], one node, edge and
// workflow step at a time, and serializes it to a concrete format.
package diagram
