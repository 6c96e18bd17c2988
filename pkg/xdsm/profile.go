package xdsm

import (
	"github.com/matzehuels/xdsmgen/pkg/format"
)

// Profile holds the per-writer tables the builder reads: block styles,
// character substitutions and superscript syntax.
type Profile struct {
	Name         string
	Styles       map[string]string // node type to block style
	DefaultStyle string            // style for unmapped component types
	DriverStyle  string            // style for unmapped driver types
	Subs         format.Subs
	Notation     format.Notation
	LoopArrow    string

	// NumberLabels prefixes node labels with their process number.
	// Writers that number blocks themselves leave it unset.
	NumberLabels bool
	// Equations reports whether the writer can typeset equation labels.
	Equations bool
}

// Style returns the block style for a node type.
func (p Profile) Style(typ string) string {
	if s, ok := p.Styles[typ]; ok {
		return s
	}
	return p.DefaultStyle
}

// Profile names.
const (
	ProfilePyXDSM       = "pyxdsm"
	ProfilePyXDSMLegacy = "pyxdsm 1.0"
	ProfileXDSMjs       = "xdsmjs"
	ProfileGraphviz     = "graphviz"
)

var texSubs = format.Subs{
	{Old: "_", New: `\_`},
	{Old: "(", New: "_{"},
	{Old: ")", New: "}"},
	{Old: "@", New: `\_`},
	{Old: format.PendingMarker, New: "(0)"},
}

var htmlSubs = format.Subs{
	{Old: " ", New: "-"},
	{Old: ":", New: ""},
	{Old: "_", New: `\_`},
	{Old: "@", New: "_"},
	{Old: format.PendingMarker, New: "(0)"},
}

// PyXDSM renders TikZ block diagrams with the current color scheme.
func PyXDSM() Profile {
	return Profile{
		Name: ProfilePyXDSM,
		Styles: map[string]string{
			"indep":          "Function",
			"explicit":       "Function",
			"implicit":       "ImplicitFunction",
			"exec":           "Function",
			"metamodel":      "Metamodel",
			"group":          "Group",
			"implicit_group": "ImplicitGroup",
			"optimization":   "Optimization",
			"doe":            "DOE",
			"solver":         "MDA",
		},
		DefaultStyle: "Function",
		DriverStyle:  "Optimization",
		Subs:         append(format.Subs(nil), texSubs...),
		Notation:     format.TeXNotation,
		LoopArrow:    `$ \rightarrow $`,
		NumberLabels: true,
		Equations:    true,
	}
}

// PyXDSMLegacy is [PyXDSM] with the 1.0 color scheme.
func PyXDSMLegacy() Profile {
	p := PyXDSM()
	p.Name = ProfilePyXDSMLegacy
	p.Styles = map[string]string{
		"indep":          "Function",
		"explicit":       "Function",
		"implicit":       "ImplicitAnalysis",
		"exec":           "Function",
		"metamodel":      "Metamodel",
		"group":          "Function",
		"implicit_group": "ImplicitAnalysis",
		"optimization":   "Optimization",
		"doe":            "DOE",
		"solver":         "MDA",
	}
	return p
}

// XDSMjs renders the interactive web diagram.
func XDSMjs() Profile {
	return Profile{
		Name: ProfileXDSMjs,
		Styles: map[string]string{
			"indep":          "function",
			"explicit":       "function",
			"implicit":       "analysis",
			"exec":           "function",
			"metamodel":      "metamodel",
			"group":          "function",
			"implicit_group": "analysis",
			"optimization":   "optimization",
			"doe":            "doe",
			"solver":         "mda",
		},
		DefaultStyle: "function",
		DriverStyle:  "optimization",
		Subs:         append(format.Subs(nil), htmlSubs...),
		Notation:     format.PlainNotation,
		LoopArrow:    "→",
	}
}

// Graphviz renders plain-text node-link diagrams.
func Graphviz() Profile {
	p := XDSMjs()
	p.Name = ProfileGraphviz
	p.Subs = format.Subs{
		{Old: "@", New: "_"},
		{Old: format.PendingMarker, New: "(0)"},
	}
	p.NumberLabels = true
	return p
}

// LookupProfile returns the built-in profile with the given name.
func LookupProfile(name string) (Profile, bool) {
	switch name {
	case ProfilePyXDSM:
		return PyXDSM(), true
	case ProfilePyXDSMLegacy:
		return PyXDSMLegacy(), true
	case ProfileXDSMjs:
		return XDSMjs(), true
	case ProfileGraphviz:
		return Graphviz(), true
	}
	return Profile{}, false
}
