package conns

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

func conn(src, tgt string) viewer.Connection {
	return viewer.Connection{Src: src, Tgt: tgt}
}

var sellarConns = []viewer.Connection{
	conn("_auto_ivc.v0", "cycle.d1.x"),
	conn("_auto_ivc.v0", "obj_cmp.x"),
	conn("px.x", "cycle.d1.x"),
	conn("cycle.d1.y1", "cycle.d2.y1"),
	conn("cycle.d2.y2", "cycle.d1.y2"),
	conn("cycle.d1.y1", "obj_cmp.y1"),
	conn("cycle.d2.y2", "obj_cmp.y2"),
}

func TestAggregateDuplicates(t *testing.T) {
	b, err := Aggregate([]viewer.Connection{conn("a.x", "b.y"), conn("a.x", "b.y")}, Options{Recurse: true})
	require.NoError(t, err)

	assert.Equal(t, []Pair{{Src: "a", Tgt: "b", Vars: []string{"x"}}}, b.Pairs())
}

func TestAggregateNamers(t *testing.T) {
	in := []viewer.Connection{conn("a.x", "b.y"), conn("_auto_ivc.v3", "b.z")}

	tests := []struct {
		namer Namer
		want  []Pair
	}{
		{NamerSource, []Pair{{"a", "b", []string{"x"}}, {"@auto@ivc", "b", []string{"v3"}}}},
		{NamerTarget, []Pair{{"a", "b", []string{"y"}}, {"@auto@ivc", "b", []string{"z"}}}},
		{NamerMixed, []Pair{{"a", "b", []string{"x"}}, {"@auto@ivc", "b", []string{"z"}}}},
		{NamerBoth, []Pair{{"a", "b", []string{"x-y"}}, {"@auto@ivc", "b", []string{"v3-z"}}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.namer), func(t *testing.T) {
			b, err := Aggregate(in, Options{Recurse: true, Namer: tt.namer})
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Pairs())
		})
	}
}

func TestAggregateInvariants(t *testing.T) {
	for _, recurse := range []bool{true, false} {
		b, err := Aggregate(sellarConns, Options{Recurse: recurse})
		require.NoError(t, err)
		for _, p := range b.Pairs() {
			assert.NotEqual(t, p.Src, p.Tgt)
			seen := make(map[string]bool)
			for _, v := range p.Vars {
				assert.False(t, seen[v], "duplicate %q in %s->%s", v, p.Src, p.Tgt)
				seen[v] = true
			}
		}
	}
}

func TestAggregateNoRecurse(t *testing.T) {
	b, err := Aggregate(sellarConns, Options{Recurse: false})
	require.NoError(t, err)

	assert.Equal(t, []string{"@auto@ivc", "px", "cycle"}, b.Sources())
	assert.Equal(t, []string{"cycle", "obj@cmp"}, b.Targets("@auto@ivc"))
	assert.Equal(t, []string{"y1", "y2"}, b.Vars("cycle", "obj@cmp"))
	assert.False(t, b.Has("obj@cmp"))
}

func TestAggregateSkipsMalformed(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	b, err := Aggregate([]viewer.Connection{conn("", "b.y"), conn("novar", "b.y"), conn("a.x", "b.y")}, Options{Recurse: true, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Contains(t, buf.String(), "skipping connection")
}

func TestAggregateInvalidNamer(t *testing.T) {
	_, err := Aggregate(nil, Options{Namer: "middle"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestParseNamer(t *testing.T) {
	for in, want := range map[string]Namer{"source": NamerSource, "src": NamerSource, "TARGET": NamerTarget, "mixed": NamerMixed, "both": NamerBoth} {
		got, err := ParseNamer(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPrune(t *testing.T) {
	in := []viewer.Connection{
		conn("sub.a.x", "sub.b.y"),
		conn("top.c.z", "sub.a.z"),
		conn("sub.b.w", "top.c.w"),
		conn("top.c.q", "top.d.q"),
	}

	s := Prune(in, "sub")
	assert.Equal(t, []viewer.Connection{conn("a.x", "b.y")}, s.Internal)
	assert.Equal(t, []viewer.Connection{conn("top.c.z", "a.z")}, s.Inputs)
	assert.Equal(t, []viewer.Connection{conn("b.w", "top.c.w")}, s.Outputs)

	all := Prune(in, "")
	assert.Equal(t, in, all.Internal)
	assert.Empty(t, all.Inputs)
	assert.Empty(t, all.Outputs)
}

func TestPruneMatchesWholeSegments(t *testing.T) {
	s := Prune([]viewer.Connection{conn("subway.a.x", "sub.b.y")}, "sub")
	assert.Empty(t, s.Internal)
	assert.Equal(t, []viewer.Connection{conn("subway.a.x", "b.y")}, s.Inputs)
}

func TestCollect(t *testing.T) {
	dvs := []string{"px.x", "_auto_ivc.v0", "cycle.d1.z"}

	refs, err := Collect(dvs, sellarConns, "", Options{Recurse: true, Namer: NamerMixed})
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, Ref{Path: "px", Var: "x", Targets: []string{"cycle@d1"}}, refs[0])
	assert.Equal(t, Ref{Path: "@auto@ivc", Var: "x", Targets: []string{"cycle@d1", "obj@cmp"}}, refs[1])
	assert.Equal(t, Ref{Path: "cycle@d1", Var: "z"}, refs[2])

	srcRefs, err := Collect(dvs, sellarConns, "", Options{Recurse: true, Namer: NamerSource})
	require.NoError(t, err)
	assert.Equal(t, "v0", srcRefs[1].Var)
}

func TestCollectModelPath(t *testing.T) {
	dvs := []string{"px.x", "_auto_ivc.v0", "cycle.d1.z"}

	refs, err := Collect(dvs, sellarConns, "cycle", Options{Recurse: true, Namer: NamerMixed})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, Ref{Path: "@auto@ivc", Var: "x", Targets: []string{"d1"}}, refs[0])
	assert.Equal(t, Ref{Path: "d1", Var: "z"}, refs[1])
}

func TestGroupRefs(t *testing.T) {
	groups := GroupRefs([]Ref{{Path: "a", Var: "x"}, {Path: "b", Var: "y"}, {Path: "a", Var: "z"}, {Path: "a", Var: "x"}})
	assert.Equal(t, []Group{{"a", []string{"x", "z"}}, {"b", []string{"y"}}}, groups)
}
