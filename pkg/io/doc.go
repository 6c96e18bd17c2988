// Package io provides JSON import and export for viewer data files.
//
// # Overview
//
// Viewer data files describe a model tree, its connections, driver, design
// variables and responses (see [viewer.Data]). This package reads and writes
// them so the CLI and tests can work with files on disk:
//
//	d, err := io.ImportJSON("sellar.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Import
//
// [ReadJSON] decodes from any io.Reader and checks the structural
// requirements the builder relies on: a tree must be present and every node
// of it must have a name. Connections with a missing endpoint are kept, since
// the builder skips them individually with a warning.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON. Design variables and
// responses keep their order, so a file can be imported, edited and written
// back without reordering diagram edges.
//
// [viewer.Data]: github.com/matzehuels/xdsmgen/pkg/viewer.Data
package io
