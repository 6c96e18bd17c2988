// Package format lays out the text shown inside diagram blocks.
//
// # Blocks
//
// An edge between two diagram nodes usually carries several variable names.
// [Block] arranges them according to a [Stacking] mode:
//
//   - [StackVertical]: one name per line, optionally truncated to a line limit
//   - [StackHorizontal]: one comma-separated line
//   - [StackMaxChars]: names packed greedily into lines of a character budget
//   - [StackCutChars]: like max_chars, but stops at the first overflow
//   - [StackEmpty]: no text at all, for very large diagrams
//
// # Substitutions
//
// Markup languages reserve different characters, so every writer carries an
// ordered list of [Sub] pairs applied to names before they are displayed.
// Order matters: a later pair must not rewrite text produced by an earlier one
// unless that is intended.
//
// # Superscripts
//
// Variables are annotated with their role (optimal, initial, target value) by
// a superscript marker from a [Superscripts] table. The [RoleInitialPending]
// marker is a placeholder that survives substitution and is resolved to the
// initial-value marker by the last substitution pair.
package format

import (
	"fmt"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

// Lines is a block of text, one entry per line.
type Lines []string

// Join joins the lines with sep.
func (l Lines) Join(sep string) string {
	return strings.Join(l, sep)
}

// String joins the lines with newlines.
func (l Lines) String() string {
	return l.Join("\n")
}

// IsEmpty reports whether the block shows no text.
func (l Lines) IsEmpty() bool {
	for _, s := range l {
		if s != "" {
			return false
		}
	}
	return true
}

// Merge appends the lines of other that are not already present.
func (l Lines) Merge(other Lines) Lines {
	out := append(Lines(nil), l...)
	for _, s := range other {
		if !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func contains(lines []string, s string) bool {
	for _, x := range lines {
		if x == s {
			return true
		}
	}
	return false
}

// =============================================================================
// Substitutions
// =============================================================================

// Sub replaces Old with New.
type Sub struct {
	Old string `json:"old" toml:"old" yaml:"old"`
	New string `json:"new" toml:"new" yaml:"new"`
}

// Subs is an ordered substitution list.
type Subs []Sub

// Apply runs every substitution over name in order.
func (s Subs) Apply(name string) string {
	for _, sub := range s {
		name = strings.ReplaceAll(name, sub.Old, sub.New)
	}
	return name
}

// ApplyAll applies the substitutions to every name.
func (s Subs) ApplyAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = s.Apply(n)
	}
	return out
}

// =============================================================================
// Superscripts
// =============================================================================

// Role is the role of a variable in the process.
type Role string

// Variable roles.
const (
	RoleOptimal        Role = "optimal"
	RoleInitial        Role = "initial"
	RoleTarget         Role = "target"
	RoleConsistency    Role = "consistency"
	RoleInitialPending Role = "initial0"
)

// PendingMarker is the placeholder written for [RoleInitialPending].
const PendingMarker = "#INIT#"

// Superscripts maps roles to their display markers.
type Superscripts map[Role]string

// DefaultSuperscripts returns a fresh copy of the default marker table.
func DefaultSuperscripts() Superscripts {
	return Superscripts{
		RoleOptimal:        "*",
		RoleInitial:        "(0)",
		RoleTarget:         "t",
		RoleConsistency:    "c",
		RoleInitialPending: PendingMarker,
	}
}

// Notation is the superscript syntax of a markup language.
type Notation struct {
	Open  string
	Close string
}

// Superscript notations.
var (
	TeXNotation   = Notation{Open: "^{", Close: "}"}
	PlainNotation = Notation{Open: "^"}
)

// Var annotates name with the marker for role.
// Unknown roles leave the name unchanged.
func (n Notation) Var(name string, role Role, sups Superscripts) string {
	sup, ok := sups[role]
	if !ok {
		return name
	}
	return name + n.Open + sup + n.Close
}

// Vars annotates every name with the marker for role.
func (n Notation) Vars(names []string, role Role, sups Superscripts) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = n.Var(name, role, sups)
	}
	return out
}

// =============================================================================
// Numbering
// =============================================================================

// Alignment places a process number relative to a label.
type Alignment string

// Number alignments.
const (
	AlignHorizontal Alignment = "horizontal"
	AlignVertical   Alignment = "vertical"
)

// ParseAlignment validates a number alignment name.
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(s)); a {
	case AlignHorizontal, AlignVertical:
		return a, nil
	}
	return "", errors.InvalidConfig("invalid number alignment %q (must be horizontal or vertical)", s)
}

// Number adds a process number to a label. A horizontal alignment prefixes
// the first line, a vertical one puts the number on its own line above.
// An empty number leaves the label unchanged.
func Number(label Lines, number string, align Alignment) Lines {
	if number == "" {
		return label
	}
	prefix := number + ": "
	if len(label) == 0 {
		return Lines{prefix}
	}
	if align == AlignVertical {
		return append(Lines{prefix}, label...)
	}
	out := append(Lines(nil), label...)
	out[0] = prefix + out[0]
	return out
}

// LoopNumber formats the process number of a loop head that starts at first,
// closes at last and continues at first+1. All numbers are shifted by start.
func LoopNumber(first, last, start int, arrow string) string {
	return fmt.Sprintf("%d, %d %s %d", first+start, last+start, arrow, first+start+1)
}

// ShortClass drops the module path from a class name like "pkg.mod:Cls".
func ShortClass(class string) string {
	if i := strings.LastIndex(class, ":"); i >= 0 {
		return class[i+1:]
	}
	return class
}
