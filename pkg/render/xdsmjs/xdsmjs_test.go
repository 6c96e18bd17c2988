package xdsmjs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/format"
)

func doc() *diagram.Document {
	d := &diagram.Document{}
	d.AddNode(diagram.Node{ID: "opt", Style: "optimization", Label: format.Lines{"Optimizer"}})
	d.AddNode(diagram.Node{ID: "cycle_solver", Style: "mda", Label: format.Lines{"NL-Newton", "LN-Direct"}})
	d.AddNode(diagram.Node{ID: "d_1", Style: "analysis", Label: format.Lines{"d1"}, Class: "SellarDis1"})
	d.AddNode(diagram.Node{ID: "obj", Style: "function", Label: format.Lines{"obj"}, Stacked: true})
	d.AddEdge(diagram.Edge{From: "opt", To: "d_1", Kind: diagram.EdgeData, Label: format.Lines{"x", "z"}})
	d.AddEdge(diagram.Edge{To: "d_1", Kind: diagram.EdgeInput, Label: format.Lines{"y^(0)"}})
	d.AddEdge(diagram.Edge{From: "obj", Kind: diagram.EdgeOutput, Side: diagram.SideLeft, Label: format.Lines{"f^*"}})
	d.Workflow = []diagram.Step{
		diagram.Loop("opt", diagram.Loop("cycle_solver", diagram.Leaf("d_1")), diagram.Leaf("obj")),
	}
	return d
}

func serialize(t *testing.T, d *diagram.Document, opts Options) string {
	t.Helper()
	w := New(opts)
	require.NoError(t, diagram.Replay(d, w))
	var buf bytes.Buffer
	require.NoError(t, w.Serialize(&buf))
	return buf.String()
}

func TestSerialize_JSON(t *testing.T) {
	got := serialize(t, doc(), Options{})
	want := `{
		"nodes": [
			{"id": "opt", "type": "optimization", "name": "Optimizer"},
			{"id": "cyclesolver", "type": "mda", "name": "NL-Newton LN-Direct"},
			{"id": "d1", "type": "analysis", "name": "d1-SellarDis1"},
			{"id": "obj", "type": "function_multi", "name": "obj"}
		],
		"edges": [
			{"from": "opt", "to": "d1", "name": "x, z"},
			{"from": "_U_", "to": "d1", "name": "y^(0)"},
			{"from": "obj", "to": "_U_", "name": "f^*"}
		],
		"workflow": ["opt", ["cyclesolver", ["d1"], "obj"]]
	}`
	assert.JSONEq(t, want, got)
}

func TestSerialize_Empty(t *testing.T) {
	got := serialize(t, &diagram.Document{}, Options{})
	assert.JSONEq(t, `{"nodes": [], "edges": [], "workflow": []}`, got)
}

func TestAddEdge_RightSideWarns(t *testing.T) {
	var logs bytes.Buffer
	w := New(Options{Logger: log.New(&logs)})
	require.NoError(t, w.AddNode(diagram.Node{ID: "a"}))
	require.NoError(t, w.AddEdge(diagram.Edge{From: "a", Kind: diagram.EdgeOutput, Side: diagram.SideRight}))

	assert.Equal(t, Edge{From: "a", To: Outside}, w.Data().Edges[0])
	assert.Contains(t, logs.String(), "right side outputs")
}

func TestAddNode_Collision(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.AddNode(diagram.Node{ID: "a_b"}))
	assert.Error(t, w.AddNode(diagram.Node{ID: "ab"}))
}

func TestFormatID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"d1", "d1"},
		{"cycle_d_1", "cycled1"},
		{Outside, Outside},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatID(tt.in))
	}
}

func TestSerialize_HTML(t *testing.T) {
	got := serialize(t, doc(), Options{HTML: true, Page: PageOptions{Title: "Sellar"}})

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, "<title>Sellar</title>")
	assert.Contains(t, got, `src="`+DefaultScriptURL+`"`)
	assert.Contains(t, got, `class="xdsm2" data-mdo="`)
	assert.Contains(t, got, "createXdsm()")
	// attribute values are escaped
	assert.NotContains(t, got, `data-mdo="{"nodes"`)
	assert.Contains(t, got, "&#34;nodes&#34;")
}

func TestSerialize_HTMLEmbeddable(t *testing.T) {
	got := serialize(t, doc(), Options{HTML: true, Page: PageOptions{Embeddable: true, ScriptURL: "xdsm.js"}})

	assert.NotContains(t, got, "<html")
	assert.Contains(t, got, `src="xdsm.js"`)
}

func TestSerialize_HTMLDataFile(t *testing.T) {
	got := serialize(t, doc(), Options{HTML: true, Page: PageOptions{DataFile: "sellar.json"}})

	assert.Contains(t, got, `data-mdo-file="sellar.json"`)
	assert.NotContains(t, got, "data-mdo=")
}
