// Package xdsm builds XDSM diagram documents from viewer data.
//
// [Build] runs a fixed sequence of phases over a shared [diagram.Document]:
//
//  1. Driver: the driver node, design variable edges, optimal-value outputs
//     and initial-value inputs, response edges.
//  2. Nodes: flattened components and groups in emission order, plus every
//     solver whose solvers differ from the baseline.
//  3. Internal edges: one data edge per aggregated (source, target) pair.
//  4. Source reconciliation: with independent components hidden, their
//     connections become initial-value inputs on the targets.
//  5. Solvers: solver-to-member loop edges and the nested workflow.
//  6. External I/O: inputs from outside the model subtree and outputs
//     leaving it.
//  7. Labels: process numbers, inline or on their own line.
//
// Writer-specific tables (block styles, character substitutions,
// superscript syntax) come from a [Profile] passed in [Config]. Defaults are
// copied on each call, so concurrent builds never share mutable state.
//
// Variable names stay raw until a label is emitted. Substitution runs once
// per label, after the role superscript is attached; initial values use a
// placeholder marker that the last substitution resolves.
package xdsm
