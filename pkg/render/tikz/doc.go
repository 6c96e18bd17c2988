// Package tikz writes XDSM diagrams as TikZ matrices in a standalone LaTeX
// document.
//
// # Layout
//
// Diagram nodes sit on the diagonal of a TikZ matrix in document order. A
// data edge from node i to node j becomes an off-diagonal block at row i,
// column j, joined to both nodes by a horizontal and a vertical data line.
// External inputs get an extra top row, outputs an extra left or right
// column, depending on their side.
//
// # Styles
//
// Block styles (Function, MDA, Optimization, DataInter, ...) are defined in
// a separate styles file that the document includes with \input.
// [Writer.Serialize] only references style names. [DefaultStyles] returns
// a definition for every name the built-in profiles use.
//
// # Compiling
//
// The output compiles with pdflatex when the styles file sits next to the
// document or on the TeX path. See [render.CompileTeX].
//
// [render.CompileTeX]: github.com/matzehuels/xdsmgen/pkg/render.CompileTeX
package tikz
