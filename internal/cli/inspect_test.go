package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/model"
)

func readSellar(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/sellar.json")
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestInspect(t *testing.T) {
	ctx := withLogger(context.Background(), log.New(&bytes.Buffer{}))
	raw := readSellar(t)

	tests := []struct {
		name      string
		opts      inspectOpts
		wantNodes []string
		boundary  bool
	}{
		{
			name:      "whole model",
			opts:      inspectOpts{recurse: true},
			wantNodes: []string{"px", "d1", "d2", "obj_cmp", "con1"},
		},
		{
			name:      "model path",
			opts:      inspectOpts{modelPath: "cycle", recurse: true},
			wantNodes: []string{"d1", "d2"},
			boundary:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := inspect(ctx, raw, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Problems) != 0 {
				t.Errorf("unexpected schema problems: %v", res.Problems)
			}

			var names []string
			for _, n := range res.Nodes {
				if n.Kind != model.KindSolver {
					names = append(names, n.Name)
				}
			}
			if strings.Join(names, " ") != strings.Join(tt.wantNodes, " ") {
				t.Errorf("nodes = %v, want %v", names, tt.wantNodes)
			}
			if res.Internal == 0 {
				t.Error("expected aggregated node pairs")
			}
			if tt.boundary && (res.Inputs == 0 || res.Outputs == 0) {
				t.Errorf("inputs=%d outputs=%d, want both above zero", res.Inputs, res.Outputs)
			}
		})
	}
}

func TestInspectReportsSchemaProblems(t *testing.T) {
	ctx := withLogger(context.Background(), log.New(&bytes.Buffer{}))
	raw := []byte(`{"tree": {"name": "root", "subsystem_type": "group", "children": [
		{"name": "c1", "subsystem_type": "box"}
	]}}`)

	res, err := inspect(ctx, raw, inspectOpts{recurse: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Problems) == 0 {
		t.Fatal("expected a schema problem for subsystem_type")
	}
	if len(res.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(res.Nodes))
	}
}

func TestInspectErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := inspect(ctx, []byte(`{"tree":`), inspectOpts{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("truncated JSON: err = %v, want INVALID_INPUT", err)
	}
	if _, err := inspect(ctx, readSellar(t), inspectOpts{modelPath: "nope"}); !errors.Is(err, errors.ErrCodePathNotFound) {
		t.Errorf("missing path: err = %v, want PATH_NOT_FOUND", err)
	}
}

func TestNodeTable(t *testing.T) {
	nodes := []model.Node{
		{ID: "cycle.d1", Name: "d1", Kind: model.KindComponent, ComponentType: "explicit", Class: "SellarDis1"},
		{ID: "cycle@solver", Name: "cycle", Kind: model.KindSolver, IsParallel: true, Solver: &model.SolverGroup{Members: []string{"cycle.d1", "cycle.d2"}}},
	}
	out := nodeTable(nodes)
	for _, want := range []string{"cycle.d1", "explicit (SellarDis1)", "yes", "Members"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
