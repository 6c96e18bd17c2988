package xdsm

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/xdsmgen/pkg/conns"
	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/format"
	"github.com/matzehuels/xdsmgen/pkg/model"
)

// Config controls how a diagram is built. The zero value is usable: empty
// fields take the defaults listed on each field, booleans are off.
type Config struct {
	ModelPath              string // subtree to draw; whole model if empty
	Recurse                bool   // descend into groups
	IncludeSolver          bool   // draw non-default solvers and their loops
	IncludeExternalOutputs bool   // draw outputs leaving the subtree
	IncludeIndeps          bool   // draw independent and auto-generated source components
	ShowParallel           bool   // stack parallel nodes and their edges
	AddProcessConns        bool   // compute the workflow
	Numbered               bool   // number node labels by process step
	ShowEquations          bool   // label components with their equations

	Stacking        format.Stacking  // max_chars
	BoxWidth        int              // format.DefaultWidth
	BoxLines        int              // unlimited
	NumberAlignment format.Alignment // horizontal
	StartIndex      int
	OutputSide      OutputSide  // left
	ClassNames      ClassNames  // none
	Namer           conns.Namer // mixed

	Profile      Profile             // PyXDSM
	Solvers      model.Solvers       // model.DefaultSolvers
	Superscripts format.Superscripts // format.DefaultSuperscripts
	Equations    EquationFormatter   // TeXEquations
	Logger       *log.Logger         // discard
}

// normalize fills defaults and validates every enumerated option.
func (c Config) normalize() (Config, error) {
	var err error
	if c.Stacking == "" {
		c.Stacking = format.StackMaxChars
	}
	if c.Stacking, err = format.ParseStacking(string(c.Stacking)); err != nil {
		return c, err
	}
	if c.BoxWidth <= 0 {
		c.BoxWidth = format.DefaultWidth
	}
	if c.NumberAlignment == "" {
		c.NumberAlignment = format.AlignHorizontal
	}
	if c.NumberAlignment, err = format.ParseAlignment(string(c.NumberAlignment)); err != nil {
		return c, err
	}
	if c.Namer == "" {
		c.Namer = conns.NamerMixed
	}
	if c.Namer, err = conns.ParseNamer(string(c.Namer)); err != nil {
		return c, err
	}
	if err := c.OutputSide.Validate(); err != nil {
		return c, err
	}
	if c.ClassNames, err = ParseClassNames(string(c.ClassNames)); err != nil {
		return c, err
	}
	if c.Profile.Name == "" {
		c.Profile = PyXDSM()
	}
	if c.Solvers == (model.Solvers{}) {
		c.Solvers = model.DefaultSolvers
	}
	if c.Superscripts == nil {
		c.Superscripts = format.DefaultSuperscripts()
	}
	if c.Equations == nil {
		c.Equations = TeXEquations{}
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.ShowEquations && !c.Profile.Equations {
		return c, errors.Unsupported("equations are not supported by the %s writer, use tex or pdf output", c.Profile.Name)
	}
	return c, nil
}

// =============================================================================
// Class names
// =============================================================================

// ClassNames selects how component class names are shown.
type ClassNames string

// Class name modes.
const (
	ClassNamesNone  ClassNames = ""
	ClassNamesFull  ClassNames = "full"
	ClassNamesShort ClassNames = "short"
)

// ParseClassNames accepts "", "false", "none", "true", "full" and "short".
func ParseClassNames(s string) (ClassNames, error) {
	switch strings.ToLower(s) {
	case "", "false", "none":
		return ClassNamesNone, nil
	case "true", "full":
		return ClassNamesFull, nil
	case "short":
		return ClassNamesShort, nil
	}
	return "", errors.InvalidConfig("invalid class name mode %q (must be true, false or short)", s)
}

// Apply formats a class name for display. It returns "" when class names
// are off.
func (c ClassNames) Apply(class string) string {
	switch c {
	case ClassNamesFull:
		return class
	case ClassNamesShort:
		return format.ShortClass(class)
	}
	return ""
}

func (c *ClassNames) set(v any) error {
	var err error
	switch t := v.(type) {
	case nil:
		*c = ClassNamesNone
	case bool:
		*c = ClassNamesNone
		if t {
			*c = ClassNamesFull
		}
	case string:
		*c, err = ParseClassNames(t)
	default:
		err = errors.InvalidConfig("class names should be a boolean or \"short\", got %T", v)
	}
	return err
}

// UnmarshalJSON accepts true, false or "short".
func (c *ClassNames) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return c.set(v)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *ClassNames) UnmarshalTOML(v any) error {
	return c.set(v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ClassNames) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return c.set(v)
}

// =============================================================================
// Output side
// =============================================================================

// Output side keys.
const (
	SideKeyDefault = "default"
)

// OutputSide places optimal-value outputs. It is either one side for every
// node or a table keyed by driver type ("optimization", "doe") with a
// "default" entry for components.
type OutputSide struct {
	Side   diagram.Side
	ByType map[string]diagram.Side
}

// SideFor returns the side for key, falling back to the "default" entry and
// then to the left side.
func (o OutputSide) SideFor(key string) diagram.Side {
	if s, ok := o.ByType[key]; ok {
		return s
	}
	if s, ok := o.ByType[SideKeyDefault]; ok {
		return s
	}
	if o.Side != "" {
		return o.Side
	}
	return diagram.SideLeft
}

// Validate checks that every configured side is left or right.
func (o OutputSide) Validate() error {
	if o.Side != "" {
		if _, err := diagram.ParseSide(string(o.Side)); err != nil {
			return err
		}
	}
	for k, s := range o.ByType {
		if _, err := diagram.ParseSide(string(s)); err != nil {
			return errors.InvalidConfig("output side for %q: %s", k, errors.UserMessage(err))
		}
	}
	return nil
}

func (o *OutputSide) set(v any) error {
	switch t := v.(type) {
	case nil:
		*o = OutputSide{}
	case string:
		*o = OutputSide{Side: diagram.Side(t)}
	case map[string]any:
		by := make(map[string]diagram.Side, len(t))
		for k, s := range t {
			str, ok := s.(string)
			if !ok {
				return errors.InvalidConfig("output side for %q should be a string, got %T", k, s)
			}
			by[k] = diagram.Side(str)
		}
		*o = OutputSide{ByType: by}
	default:
		return errors.InvalidConfig("output side should be a string or a table, got %T", v)
	}
	return o.Validate()
}

func (o OutputSide) value() any {
	if o.ByType == nil {
		return string(o.Side)
	}
	m := make(map[string]string, len(o.ByType))
	for k, s := range o.ByType {
		m[k] = string(s)
	}
	return m
}

// String implements fmt.Stringer.
func (o OutputSide) String() string {
	if o.ByType == nil {
		return string(o.SideFor(SideKeyDefault))
	}
	keys := make([]string, 0, len(o.ByType))
	for k := range o.ByType {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, o.ByType[k])
	}
	return strings.Join(parts, ",")
}

// ParseOutputSide parses "left", "right" or a "key=side,..." list.
func ParseOutputSide(s string) (OutputSide, error) {
	var o OutputSide
	if !strings.Contains(s, "=") {
		err := o.set(s)
		return o, err
	}
	m := make(map[string]any)
	for _, part := range strings.Split(s, ",") {
		k, v, _ := strings.Cut(part, "=")
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	err := o.set(m)
	return o, err
}

// MarshalJSON implements json.Marshaler.
func (o OutputSide) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OutputSide) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return o.set(v)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (o *OutputSide) UnmarshalTOML(v any) error {
	return o.set(v)
}

// MarshalYAML implements yaml.Marshaler.
func (o OutputSide) MarshalYAML() (any, error) {
	return o.value(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OutputSide) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return o.set(s)
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		return o.set(m)
	}
	return errors.InvalidConfig("output side should be a string or a mapping")
}

// =============================================================================
// Equations
// =============================================================================

// EquationFormatter converts a component expression into label markup.
type EquationFormatter interface {
	Format(expr string) (string, error)
}

// TeXEquations wraps expressions in inline math. Indexed names like x[1]
// become subscripts.
type TeXEquations struct{}

var eqReplacer = strings.NewReplacer("$$", "$", "[", "_", "]", "")

// Format implements EquationFormatter.
func (TeXEquations) Format(expr string) (string, error) {
	expr = strings.TrimSpace(eqReplacer.Replace(expr))
	if expr == "" {
		return "", fmt.Errorf("empty expression")
	}
	expr = strings.Trim(expr, "$")
	return "$" + expr + "$", nil
}
