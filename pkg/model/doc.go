// Package model flattens a nested subsystem tree into diagram nodes.
//
// # Overview
//
// An XDSM shows components on its diagonal in execution order. [Flatten]
// walks the [viewer.System] tree depth-first and emits one [Node] per
// component. Groups are descended into, or shown as a single opaque node when
// recursion is off.
//
// # Solvers
//
// With IncludeSolver set, every group whose solvers differ from the
// baseline [Solvers] gets a synthetic solver node emitted just before its
// contents. Its [SolverGroup] lists every node produced while descending into
// the group, so the builder can draw the solver loop around them.
//
// # Name Collisions
//
// Nodes are labelled by their relative (leaf) name. When two components share
// a leaf name, both are relabelled with their dotted path. The arena keeps
// earlier nodes addressable by index so they can be rewritten in place.
//
// # Independent Components
//
// Components of type "indep" only feed values into the model. With
// IncludeIndeps unset they are moved to [Result.Filtered] and the builder
// reconnects their outputs as external inputs.
//
// [viewer.System]: github.com/matzehuels/xdsmgen/pkg/viewer.System
package model
