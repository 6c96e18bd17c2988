package format_test

import (
	"fmt"

	"github.com/matzehuels/xdsmgen/pkg/format"
)

func ExampleBlock() {
	// Pack five variables into lines of at most 12 characters
	names := []string{"x", "z1", "z2", "y1", "y2"}
	lines, _ := format.Block(names, format.BlockOptions{Stacking: format.StackMaxChars, Width: 12})
	for _, l := range lines {
		fmt.Println(l)
	}
	// Output:
	// x, z1, z2
	// y1, y2
}

func ExampleBlock_cutChars() {
	// Cut the block at the first overflow
	names := []string{"x", "z1", "z2", "y1", "y2"}
	lines, _ := format.Block(names, format.BlockOptions{Stacking: format.StackCutChars, Width: 12})
	fmt.Println(lines)
	// Output:
	// x, z1, z2, ...
}

func ExampleNotation_Var() {
	sups := format.DefaultSuperscripts()
	fmt.Println(format.TeXNotation.Var("x", format.RoleOptimal, sups))
	fmt.Println(format.PlainNotation.Var("x", format.RoleInitial, sups))
	// Output:
	// x^{*}
	// x^(0)
}
