// Package pipeline runs the complete viewer data → diagram → artifact
// pipeline shared by the CLI and the API server.
//
// # Stages
//
//  1. Decode: viewer data JSON is parsed and validated.
//  2. Build: [xdsm.Build] produces one diagram document per writer profile
//     the requested formats need.
//  3. Render: each format's writer serializes the document; pdf runs the
//     TeX output through pdflatex, svg runs DOT through Graphviz and png
//     converts that SVG with rsvg-convert.
//
// Artifacts are cached by a hash of the input bytes and the normalized
// options, so identical requests never rebuild.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"html", "tex"}, ModelPath: "cycle"}
//	result, err := runner.Execute(ctx, raw, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/cache"
	"github.com/matzehuels/xdsmgen/pkg/conns"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/format"
	"github.com/matzehuels/xdsmgen/pkg/xdsm"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is used when no format is requested.
	DefaultFormat = FormatHTML

	// DefaultBoxStacking is the edge label layout.
	DefaultBoxStacking = string(format.StackMaxChars)

	// DefaultBoxWidth is the label width budget in characters.
	DefaultBoxWidth = format.DefaultWidth

	// DefaultNumberAlignment places process numbers before the label.
	DefaultNumberAlignment = string(format.AlignHorizontal)

	// DefaultConnectionNamer labels sentinel-fed edges by their target.
	DefaultConnectionNamer = string(conns.NamerMixed)

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = cache.DefaultTTL
)

// Format constants for output formats.
const (
	FormatTeX  = "tex"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatHTML = "html"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// FormatWriters maps each output format to the writer that produces it.
var FormatWriters = map[string]string{
	FormatTeX:  xdsm.ProfilePyXDSM,
	FormatPDF:  xdsm.ProfilePyXDSM,
	FormatJSON: xdsm.ProfileXDSMjs,
	FormatHTML: xdsm.ProfileXDSMjs,
	FormatDOT:  xdsm.ProfileGraphviz,
	FormatSVG:  xdsm.ProfileGraphviz,
	FormatPNG:  xdsm.ProfileGraphviz,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatTeX:  "application/x-tex",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatHTML: "text/html; charset=utf-8",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
}

// FormatNames lists the formats in display order.
var FormatNames = []string{FormatHTML, FormatJSON, FormatTeX, FormatPDF, FormatDOT, FormatSVG, FormatPNG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options is the full configuration surface. It decodes from JSON (API
// requests), TOML and YAML (config files).
//
// Options whose default is on are pointers; nil means default.
type Options struct {
	// Output
	Formats []string `json:"formats,omitempty" toml:"formats" yaml:"formats,omitempty"`
	Writer  string   `json:"writer,omitempty" toml:"writer" yaml:"writer,omitempty"` // override the format's writer, e.g. "pyxdsm 1.0"

	// Build options
	ModelPath              string          `json:"model_path,omitempty" toml:"model_path" yaml:"model_path,omitempty"`
	Recurse                *bool           `json:"recurse,omitempty" toml:"recurse" yaml:"recurse,omitempty"`
	IncludeSolver          bool            `json:"include_solver,omitempty" toml:"include_solver" yaml:"include_solver,omitempty"`
	IncludeExternalOutputs *bool           `json:"include_external_outputs,omitempty" toml:"include_external_outputs" yaml:"include_external_outputs,omitempty"`
	IncludeIndeps          *bool           `json:"include_indepvarcomps,omitempty" toml:"include_indepvarcomps" yaml:"include_indepvarcomps,omitempty"`
	ShowParallel           *bool           `json:"show_parallel,omitempty" toml:"show_parallel" yaml:"show_parallel,omitempty"`
	AddProcessConns        *bool           `json:"add_process_conns,omitempty" toml:"add_process_conns" yaml:"add_process_conns,omitempty"`
	NumberedComponents     *bool           `json:"numbered_components,omitempty" toml:"numbered_components" yaml:"numbered_components,omitempty"`
	NumberAlignment        string          `json:"number_alignment,omitempty" toml:"number_alignment" yaml:"number_alignment,omitempty"`
	StartIndex             int             `json:"start_index,omitempty" toml:"start_index" yaml:"start_index,omitempty"`
	BoxStacking            string          `json:"box_stacking,omitempty" toml:"box_stacking" yaml:"box_stacking,omitempty"`
	BoxWidth               int             `json:"box_width,omitempty" toml:"box_width" yaml:"box_width,omitempty"`
	BoxLines               int             `json:"box_lines,omitempty" toml:"box_lines" yaml:"box_lines,omitempty"`
	OutputSide             xdsm.OutputSide `json:"output_side" toml:"output_side" yaml:"output_side"`
	ShowClassNames         xdsm.ClassNames `json:"show_class_names,omitempty" toml:"show_class_names" yaml:"show_class_names,omitempty"`
	ShowEquations          bool            `json:"show_equations,omitempty" toml:"show_equations" yaml:"show_equations,omitempty"`
	ConnectionNamer        string          `json:"connection_namer,omitempty" toml:"connection_namer" yaml:"connection_namer,omitempty"`

	// Render options
	ShowLegend    bool   `json:"show_legend,omitempty" toml:"show_legend" yaml:"show_legend,omitempty"`
	ProcessArrows bool   `json:"process_arrows,omitempty" toml:"process_arrows" yaml:"process_arrows,omitempty"`
	StylesFile    string `json:"styles_file,omitempty" toml:"styles_file" yaml:"styles_file,omitempty"`
	Title         string `json:"title,omitempty" toml:"title" yaml:"title,omitempty"`
	ScriptURL     string `json:"xdsmjs_url,omitempty" toml:"xdsmjs_url" yaml:"xdsmjs_url,omitempty"`

	// Runtime options (not serialized)
	Refresh bool        `json:"-" toml:"-" yaml:"-"`
	Logger  *log.Logger `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Bool returns a pointer to v, for the defaulted-on options.
func Bool(v bool) *bool {
	return &v
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// DataHash is the content hash of the input.
	DataHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics. Node and edge counts are
// zero when every artifact came from the cache.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per format.
type CacheInfo struct {
	Hits      map[string]bool
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is known.
func ValidateFormat(f string) error {
	if _, ok := FormatWriters[f]; !ok {
		return errors.InvalidConfig("invalid format: %q (must be one of: %s)", f, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every option.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetBuildDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.ModelPath != "" {
		if err := errors.ValidateModelPath(o.ModelPath); err != nil {
			return err
		}
	}
	if _, err := format.ParseStacking(o.BoxStacking); err != nil {
		return err
	}
	if _, err := format.ParseAlignment(o.NumberAlignment); err != nil {
		return err
	}
	if _, err := conns.ParseNamer(o.ConnectionNamer); err != nil {
		return err
	}
	if err := o.OutputSide.Validate(); err != nil {
		return err
	}
	if o.BoxWidth < 0 || o.BoxLines < 0 {
		return errors.InvalidConfig("box_width and box_lines must not be negative")
	}
	o.validated = true
	return nil
}

// SetBuildDefaults sets default values for diagram building.
func (o *Options) SetBuildDefaults() {
	if o.Recurse == nil {
		o.Recurse = Bool(true)
	}
	if o.IncludeExternalOutputs == nil {
		o.IncludeExternalOutputs = Bool(true)
	}
	if o.IncludeIndeps == nil {
		o.IncludeIndeps = Bool(true)
	}
	if o.ShowParallel == nil {
		o.ShowParallel = Bool(true)
	}
	if o.AddProcessConns == nil {
		o.AddProcessConns = Bool(true)
	}
	if o.NumberedComponents == nil {
		o.NumberedComponents = Bool(true)
	}
	if o.BoxStacking == "" {
		o.BoxStacking = DefaultBoxStacking
	}
	if o.BoxWidth == 0 {
		o.BoxWidth = DefaultBoxWidth
	}
	if o.NumberAlignment == "" {
		o.NumberAlignment = DefaultNumberAlignment
	}
	if o.ConnectionNamer == "" {
		o.ConnectionNamer = DefaultConnectionNamer
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// BuildConfig returns the builder configuration for the given writer
// profile. Options must be validated.
func (o *Options) BuildConfig(p xdsm.Profile) xdsm.Config {
	return xdsm.Config{
		ModelPath:              o.ModelPath,
		Recurse:                boolOr(o.Recurse, true),
		IncludeSolver:          o.IncludeSolver,
		IncludeExternalOutputs: boolOr(o.IncludeExternalOutputs, true),
		IncludeIndeps:          boolOr(o.IncludeIndeps, true),
		ShowParallel:           boolOr(o.ShowParallel, true),
		AddProcessConns:        boolOr(o.AddProcessConns, true),
		Numbered:               boolOr(o.NumberedComponents, true),
		ShowEquations:          o.ShowEquations,
		Stacking:               format.Stacking(o.BoxStacking),
		BoxWidth:               o.BoxWidth,
		BoxLines:               o.BoxLines,
		NumberAlignment:        format.Alignment(o.NumberAlignment),
		StartIndex:             o.StartIndex,
		OutputSide:             o.OutputSide,
		ClassNames:             o.ShowClassNames,
		Namer:                  conns.Namer(o.ConnectionNamer),
		Profile:                p,
		Logger:                 o.Logger,
	}
}

// WriterFor returns the writer name used for format.
func (o *Options) WriterFor(f string) string {
	if o.Writer != "" {
		return o.Writer
	}
	return FormatWriters[f]
}

// ArtifactKeyOpts returns cache key options for one format. Only options
// that change the output take part.
func (o *Options) ArtifactKeyOpts(f string) cache.ArtifactKeyOpts {
	keyed := *o
	keyed.Formats = nil
	keyed.Writer = o.WriterFor(f)
	return cache.ArtifactKeyOpts{Format: f, Options: keyed}
}
