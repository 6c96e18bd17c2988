// Package render converts serialized diagrams into viewable documents.
//
// Writers live in subpackages:
//
//   - [tikz]: pyXDSM-style TikZ matrices for LaTeX
//   - [xdsmjs]: JSON data and HTML pages for the XDSMjs viewer
//   - [nodelink]: Graphviz node-link graphs
//
// This package holds the external tool wrappers shared by them. [CompileTeX]
// runs pdflatex on a TikZ document and [ToPNG] rasterizes SVG with
// rsvg-convert.
//
//	var tex bytes.Buffer
//	w := tikz.New(tikz.Options{Standalone: true})
//	diagram.Replay(doc, w)
//	w.Serialize(&tex)
//	pdf, err := render.CompileTeX(ctx, tex.Bytes(), render.TeXOptions{})
//
// [tikz]: github.com/matzehuels/xdsmgen/pkg/render/tikz
// [xdsmjs]: github.com/matzehuels/xdsmgen/pkg/render/xdsmjs
// [nodelink]: github.com/matzehuels/xdsmgen/pkg/render/nodelink
package render
