// Package names resolves dotted variable paths into diagram identifiers.
//
// A variable path such as "cycle.d1.y1" names variable "y1" owned by component
// "d1" inside group "cycle". [Convert] splits such paths, and [ReplaceIllegal]
// turns names into identifiers that are safe to embed in TeX and HTML markup.
package names

import (
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

// Sep separates path segments.
const Sep = "."

// Placeholder replaces illegal identifier characters.
const Placeholder = "@"

// AutoSource is the name of the synthetic component that owns otherwise
// unconnected inputs.
const AutoSource = "_auto_ivc"

// AutoSourceID is the escaped identifier of [AutoSource].
var AutoSourceID = ReplaceIllegal(AutoSource)

// illegal characters may not appear in identifiers.
var illegal = strings.NewReplacer(
	".", Placeholder,
	" ", Placeholder,
	"-", Placeholder,
	"_", Placeholder,
	":", Placeholder,
)

// ReplaceIllegal replaces every illegal identifier character with [Placeholder].
func ReplaceIllegal(name string) string {
	return illegal.Replace(name)
}

// Substituter rewrites variable names for display.
type Substituter interface {
	Apply(name string) string
}

// Name is a resolved variable path.
type Name struct {
	Component string // owning component (unescaped)
	Variable  string // variable name, substituted for display
	AbsName   string // escaped absolute path of the variable
	Path      string // escaped path of the owning diagram node
}

// Convert resolves an absolute dotted variable path.
//
// With recurse set the owning node is the full component path. Otherwise it
// is the top-level subsystem, collapsing group contents into one node. subs
// may be nil.
func Convert(abs string, recurse bool, subs Substituter) (Name, error) {
	abs = strings.ReplaceAll(abs, Placeholder, Sep)
	parts := strings.Split(abs, Sep)

	var n Name
	if recurse {
		if len(parts) < 2 {
			return Name{}, errors.InvalidName("%q has no component part", abs)
		}
		n.Component = parts[len(parts)-2]
		n.Path = strings.Join(parts[:len(parts)-1], Sep)
	} else {
		n.Component = parts[0]
		n.Path = parts[0]
	}

	n.Variable = parts[len(parts)-1]
	if subs != nil {
		n.Variable = subs.Apply(n.Variable)
	}
	n.AbsName = ReplaceIllegal(abs)
	n.Path = ReplaceIllegal(n.Path)
	return n, nil
}

// RelPath strips root and the following separator from the front of full.
// Paths outside root are returned unchanged.
func RelPath(full, root string) string {
	if root == "" {
		return full
	}
	if rest, ok := strings.CutPrefix(full, root+Sep); ok {
		return rest
	}
	return full
}

// Inside reports whether full lies below root. Every path is inside the
// empty root.
func Inside(full, root string) bool {
	return root == "" || strings.HasPrefix(full, root+Sep)
}

// Join joins non-empty path segments with [Sep].
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, Sep)
}
