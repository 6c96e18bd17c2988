// Package pkg provides the core libraries for xdsmgen.
//
// # Overview
//
// xdsmgen turns the viewer data of a multidisciplinary optimization model
// (a tree of groups and components, the connections between their
// variables, the driver, design variables and responses) into an Extended
// Design Structure Matrix diagram. Blocks sit on the diagonal in process
// order, data flows through the off-diagonal cells, and solver loops are
// drawn as nested process chains.
//
// # Architecture
//
//	viewer data JSON
//	       ↓
//	  [viewer], [io]          decode and validate
//	       ↓
//	  [model]                 flatten the tree into diagram nodes
//	  [conns]                 prune and aggregate connections per node pair
//	       ↓
//	  [xdsm]                  assemble a [diagram] document for one writer profile
//	       ↓
//	  [render/tikz]           TikZ for LaTeX (pdf through pdflatex)
//	  [render/xdsmjs]         XDSMjs JSON and HTML
//	  [render/nodelink]       Graphviz DOT and SVG
//
// [pipeline] runs these stages with caching and is shared by the CLI and the
// API server.
//
// # Quick Start
//
//	data, _ := io.ImportJSON("sellar.json")
//	doc, err := xdsm.Build(data, xdsm.Config{
//	    Recurse:         true,
//	    AddProcessConns: true,
//	    Numbered:        true,
//	    Profile:         xdsm.PyXDSM(),
//	})
//	if err != nil {
//	    return err
//	}
//	w := tikz.New(tikz.Options{Standalone: true})
//	diagram.Replay(doc, w)
//	w.Serialize(os.Stdout)
//
// # Main Packages
//
// [names] - Dotted variable paths, illegal-character escaping and the
// substitution tables each writer uses for display names.
//
// [format] - Variable list layout under a character budget, superscripts
// and process numbering labels.
//
// [errors] - Coded errors shared by every package and mapped to exit codes
// and HTTP statuses by the outer layers.
//
// [cache] - Artifact caching: file, Redis and MongoDB backends behind one
// interface.
//
// [observability] - Hooks for build, render, cache and HTTP events.
//
// [viewer]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/viewer
// [io]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/io
// [model]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/model
// [conns]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/conns
// [xdsm]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/xdsm
// [diagram]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/diagram
// [render/tikz]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/render/tikz
// [render/xdsmjs]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/render/xdsmjs
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/pipeline
// [names]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/names
// [format]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/format
// [errors]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/errors
// [cache]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/xdsmgen/pkg/observability
package pkg
