package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

func TestBlock(t *testing.T) {
	names := []string{"x", "z", "y1", "y2", "long_variable_name"}

	tests := []struct {
		name string
		opts BlockOptions
		want Lines
	}{
		{"vertical", BlockOptions{Stacking: StackVertical}, Lines{"x", "z", "y1", "y2", "long_variable_name"}},
		{"vertical truncated", BlockOptions{Stacking: StackVertical, MaxLines: 2}, Lines{"x", "z, ..."}},
		{"vertical limit not reached", BlockOptions{Stacking: StackVertical, MaxLines: 5}, Lines{"x", "z", "y1", "y2", "long_variable_name"}},
		{"horizontal", BlockOptions{Stacking: StackHorizontal}, Lines{"x, z, y1, y2, long_variable_name"}},
		{"max chars", BlockOptions{Stacking: StackMaxChars, Width: 10}, Lines{"x, z, y1", "y2", "long_variable_name"}},
		{"max chars default width", BlockOptions{Stacking: StackMaxChars}, Lines{"x, z, y1, y2", "long_variable_name"}},
		{"cut chars", BlockOptions{Stacking: StackCutChars, Width: 10}, Lines{"x, z, y1, ..."}},
		{"empty", BlockOptions{Stacking: StackEmpty}, Lines{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Block(names, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockInvalidStacking(t *testing.T) {
	_, err := Block([]string{"x"}, BlockOptions{Stacking: "diagonal"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
	assert.Contains(t, err.Error(), "max_chars, vertical, horizontal, cut_chars, empty")
}

func TestBlockSingleNameRoundTrip(t *testing.T) {
	for _, st := range []Stacking{StackHorizontal, StackMaxChars, StackCutChars} {
		got, err := Block([]string{"a_very_long_name_beyond_the_width"}, BlockOptions{Stacking: st, Width: 5})
		require.NoError(t, err)
		assert.Equal(t, Lines{"a_very_long_name_beyond_the_width"}, got, "stacking %s", st)
	}
}

func TestBlockEmptyAlwaysEmpty(t *testing.T) {
	for _, n := range []int{0, 1, 10, 500} {
		names := make([]string, n)
		for i := range names {
			names[i] = strings.Repeat("v", i%7+1)
		}
		got, err := Block(names, BlockOptions{Stacking: StackEmpty})
		require.NoError(t, err)
		assert.Equal(t, "", got.String())
		assert.True(t, got.IsEmpty())
	}
}

func TestBlockMaxCharsWidth(t *testing.T) {
	names := []string{"alpha", "b", "gamma_delta", "e", "zeta", "an_overly_long_name", "x", "y", "z"}
	for width := 1; width <= 30; width++ {
		lines, err := Block(names, BlockOptions{Stacking: StackMaxChars, Width: width})
		require.NoError(t, err)
		for _, line := range lines {
			if len(line) > width {
				assert.NotContains(t, line, ", ", "width %d: line %q exceeds width and is not a single name", width, line)
			}
		}
		assert.Equal(t, strings.Join(names, ", "), strings.Join(lines, ", "), "width %d loses names", width)
	}
}

func TestParseStacking(t *testing.T) {
	st, err := ParseStacking("MAX_CHARS")
	require.NoError(t, err)
	assert.Equal(t, StackMaxChars, st)

	_, err = ParseStacking("zigzag")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
}

func TestSubs(t *testing.T) {
	tex := Subs{{"_", `\_`}, {"(", "_{"}, {")", "}"}, {"@", `\_`}, {PendingMarker, "(0)"}}

	assert.Equal(t, `x\_1`, tex.Apply("x_1"))
	assert.Equal(t, "x_{2}", tex.Apply("x(2)"))
	assert.Equal(t, "x^{(0)}", tex.Apply("x^{"+PendingMarker+"}"))
	assert.Equal(t, []string{"a", `b\_c`}, tex.ApplyAll([]string{"a", "b_c"}))
	assert.Equal(t, "same", Subs(nil).Apply("same"))
}

func TestNotation(t *testing.T) {
	sups := DefaultSuperscripts()

	assert.Equal(t, "x^{*}", TeXNotation.Var("x", RoleOptimal, sups))
	assert.Equal(t, "x^(0)", PlainNotation.Var("x", RoleInitial, sups))
	assert.Equal(t, "y^{t}", TeXNotation.Var("y", RoleTarget, sups))
	assert.Equal(t, "y^c", PlainNotation.Var("y", RoleConsistency, sups))
	assert.Equal(t, "x", TeXNotation.Var("x", Role("unknown"), sups))
	assert.Equal(t, []string{"a^{*}", "b^{*}"}, TeXNotation.Vars([]string{"a", "b"}, RoleOptimal, sups))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, Lines{"3: d1"}, Number(Lines{"d1"}, "3", AlignHorizontal))
	assert.Equal(t, Lines{"3: ", "d1", "cls"}, Number(Lines{"d1", "cls"}, "3", AlignVertical))
	assert.Equal(t, Lines{"d1"}, Number(Lines{"d1"}, "", AlignHorizontal))
	assert.Equal(t, Lines{"0: "}, Number(nil, "0", AlignHorizontal))
}

func TestLoopNumber(t *testing.T) {
	assert.Equal(t, `2, 5 $ \rightarrow $ 3`, LoopNumber(2, 5, 0, `$ \rightarrow $`))
	assert.Equal(t, "1, 4 → 2", LoopNumber(0, 3, 1, "→"))
}

func TestSolverLabel(t *testing.T) {
	solvers := []string{"NL: Newton", "LN: Direct"}
	assert.Equal(t, Lines{"NL: Newton", "LN: Direct"}, SolverLabel(solvers, StackVertical))
	assert.Equal(t, Lines{"NL: Newton LN: Direct"}, SolverLabel(solvers, StackMaxChars))
	assert.Equal(t, Lines{"NL: Newton LN: Direct"}, SolverLabel(solvers, StackEmpty))
	assert.True(t, SolverLabel(nil, StackHorizontal).IsEmpty())
}

func TestLinesMerge(t *testing.T) {
	assert.Equal(t, Lines{"x", "y", "z"}, Lines{"x", "y"}.Merge(Lines{"y", "z"}))
}

func TestShortClass(t *testing.T) {
	assert.Equal(t, "SellarDis1", ShortClass("sellar.disciplines:SellarDis1"))
	assert.Equal(t, "Plain", ShortClass("Plain"))
}

func TestParseAlignment(t *testing.T) {
	a, err := ParseAlignment("Vertical")
	require.NoError(t, err)
	assert.Equal(t, AlignVertical, a)
	_, err = ParseAlignment("diagonal")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
}
