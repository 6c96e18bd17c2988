package format

import (
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

// Stacking controls how a list of names is laid out inside a block.
type Stacking string

// Stacking modes.
const (
	StackMaxChars   Stacking = "max_chars"
	StackVertical   Stacking = "vertical"
	StackHorizontal Stacking = "horizontal"
	StackCutChars   Stacking = "cut_chars"
	StackEmpty      Stacking = "empty"
)

// Stackings lists the valid stacking modes.
var Stackings = []Stacking{StackMaxChars, StackVertical, StackHorizontal, StackCutChars, StackEmpty}

// DefaultWidth is the default character budget of a block line.
const DefaultWidth = 25

// Ellipsis marks truncated blocks.
const Ellipsis = ", ..."

const sep = ", "

// ParseStacking validates a stacking mode name. Matching is case-insensitive.
func ParseStacking(s string) (Stacking, error) {
	st := Stacking(strings.ToLower(s))
	for _, valid := range Stackings {
		if st == valid {
			return st, nil
		}
	}
	return "", errors.InvalidConfig("invalid block stacking %q (must be one of: %s)", s, stackingList())
}

func stackingList() string {
	names := make([]string, len(Stackings))
	for i, s := range Stackings {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// BlockOptions configures [Block].
type BlockOptions struct {
	Stacking Stacking
	Width    int // character budget for max_chars and cut_chars; DefaultWidth if zero
	MaxLines int // line limit for vertical stacking; unlimited if zero
}

// Block lays out names according to opts.
//
// A block with fewer than two names is returned as is for the width-based
// modes. Widths count the ", " separators, so with max_chars no line exceeds
// the width unless a single name is wider on its own.
func Block(names []string, opts BlockOptions) (Lines, error) {
	switch opts.Stacking {
	case StackVertical:
		if opts.MaxLines <= 0 || opts.MaxLines >= len(names) {
			return Lines(append([]string(nil), names...)), nil
		}
		out := Lines(append([]string(nil), names[:opts.MaxLines]...))
		out[len(out)-1] += Ellipsis
		return out, nil

	case StackHorizontal:
		if len(names) == 0 {
			return Lines{}, nil
		}
		return Lines{strings.Join(names, sep)}, nil

	case StackMaxChars, StackCutChars:
		if len(names) < 2 {
			return Lines(append([]string(nil), names...)), nil
		}
		width := opts.Width
		if width <= 0 {
			width = DefaultWidth
		}
		return pack(names, width, opts.Stacking == StackCutChars), nil

	case StackEmpty:
		return Lines{}, nil
	}
	return nil, errors.InvalidConfig("invalid block stacking %q (must be one of: %s)", opts.Stacking, stackingList())
}

// pack fills lines greedily. With cut set, the first overflow ends the block.
func pack(names []string, width int, cut bool) Lines {
	var lines Lines
	line := ""
	for _, name := range names {
		if line == "" {
			line = name
			continue
		}
		if len(line)+len(sep)+len(name) <= width {
			line += sep + name
			continue
		}
		if cut {
			return append(lines, line+Ellipsis)
		}
		lines = append(lines, line)
		line = name
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// SolverLabel lays out the names of the solvers of a group. Vertical
// stacking puts each solver on its own line, every other mode joins them
// with spaces.
func SolverLabel(solvers []string, stacking Stacking) Lines {
	if len(solvers) == 0 {
		return Lines{}
	}
	if stacking == StackVertical {
		return Lines(append([]string(nil), solvers...))
	}
	return Lines{strings.Join(solvers, " ")}
}
