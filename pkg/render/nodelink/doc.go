// Package nodelink renders XDSM diagrams as node-link graphs with Graphviz.
//
// Diagonal blocks become boxes, data edges become labeled arrows, and
// external inputs and outputs attach to a single point node standing in for
// everything outside the model. With [Options.Process] set, each workflow
// loop is traced with dashed grey edges.
//
//	w := nodelink.New(nodelink.Options{Process: true})
//	diagram.Replay(doc, w)
//	svg, err := nodelink.RenderSVG(ctx, w.DOT())
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz]. The
// pipeline rasterizes that SVG for png output.
package nodelink
