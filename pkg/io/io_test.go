package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

const minimal = `{
  "tree": {"name": "root", "children": [
    {"name": "G1", "subsystem_type": "group", "children": [{"name": "c1", "subsystem_type": "component"}]}
  ]},
  "connections_list": [{"src": "G1.c1.y", "tgt": ""}],
  "design_vars": {"b.x": {}, "a.x": {}}
}`

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(minimal))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got := d.Tree.Children[0].Children[0].Name; got != "c1" {
		t.Errorf("nested child = %q, want c1", got)
	}
	if len(d.Connections) != 1 {
		t.Errorf("connections = %d, want 1 (malformed entries are kept)", len(d.Connections))
	}
	if got := d.DesignVars.Paths(); got[0] != "b.x" || got[1] != "a.x" {
		t.Errorf("design vars = %v, want document order", got)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"tree": `},
		{"no tree", `{"connections_list": []}`},
		{"unnamed child", `{"tree": {"name": "root", "children": [{"name": ""}]}}`},
		{"unnamed grandchild", `{"tree": {"name": "root", "children": [{"name": "g", "children": [{}]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ReadJSON() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(minimal))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	var a, b bytes.Buffer
	if err := WriteJSON(d, &a); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(back, &b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("round trip changed data:\n%s\n---\n%s", a.String(), b.String())
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteJSONEmptyVariables(t *testing.T) {
	d := &viewer.Data{Tree: &viewer.System{Name: "root"}}
	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "design_vars") {
		t.Errorf("empty design vars should be omitted:\n%s", buf.String())
	}
}
