package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	xio "github.com/matzehuels/xdsmgen/pkg/io"
	"github.com/matzehuels/xdsmgen/pkg/pipeline"
	"github.com/matzehuels/xdsmgen/pkg/xdsm"
)

// renderFlags holds the render command's flags. Option flags only override
// the config file when they are set on the command line.
type renderFlags struct {
	output  string
	formats string
	config  string
	pick    bool
	noCache bool
	refresh bool
	build   bool

	writer          string
	modelPath       string
	recurse         bool
	includeSolver   bool
	externalOutputs bool
	indeps          bool
	parallel        bool
	processConns    bool
	numbered        bool
	alignment       string
	startIndex      int
	stacking        string
	boxWidth        int
	boxLines        int
	outputSide      string
	classNames      string
	equations       bool
	namer           string

	legend    bool
	arrows    bool
	styles    string
	title     string
	xdsmjsURL string
}

func (c *CLI) renderCommand() *cobra.Command {
	flags := renderFlags{build: true}

	cmd := &cobra.Command{
		Use:   "render <viewer-data.json>",
		Short: "Render an XDSM diagram from viewer data",
		Long: `Render an XDSM diagram from a model's viewer data.

Formats:
  html   interactive XDSMjs page (default)
  json   XDSMjs data
  tex    standalone TikZ document
  pdf    tex compiled with pdflatex
  dot    Graphviz source
  svg    Graphviz drawing
  png    svg rasterized with rsvg-convert`,
		Example: `  xdsmgen render sellar.json
  xdsmgen render sellar.json -f tex,pdf --model-path cycle --include-solver
  xdsmgen render sellar.json --pick -o diagrams/sellar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd.Flags(), &flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &flags, opts)
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// register defines the render flags on fs.
func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): html (default), json, tex, pdf, dot, svg, png (comma-separated)")
	fs.StringVar(&f.config, "config", "", "config file (.toml, .yaml or .json)")
	fs.BoolVar(&f.pick, "pick", false, "choose the model path interactively")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	fs.BoolVar(&f.refresh, "refresh", false, "re-render even when cached")
	fs.BoolVar(&f.build, "build", f.build, "compile pdf output with pdflatex (tex only if false)")

	fs.StringVar(&f.writer, "writer", "", "writer for every format: "+strings.Join(pipeline.NewRegistry().Names(), ", "))
	fs.StringVar(&f.modelPath, "model-path", "", "dotted path of the subsystem to draw")
	fs.BoolVar(&f.recurse, "recurse", true, "descend into groups")
	fs.BoolVar(&f.includeSolver, "include-solver", false, "draw non-default solvers and their loops")
	fs.BoolVar(&f.externalOutputs, "include-external-outputs", true, "draw outputs leaving the model path")
	fs.BoolVar(&f.indeps, "include-indepvarcomps", true, "draw independent variable components")
	fs.BoolVar(&f.parallel, "show-parallel", true, "stack parallel groups")
	fs.BoolVar(&f.processConns, "add-process-conns", true, "draw the process workflow")
	fs.BoolVar(&f.numbered, "numbered-components", true, "number components by process step")
	fs.StringVar(&f.alignment, "number-alignment", pipeline.DefaultNumberAlignment, "process number placement: horizontal, vertical")
	fs.IntVar(&f.startIndex, "start-index", 0, "first process step number")
	fs.StringVar(&f.stacking, "box-stacking", pipeline.DefaultBoxStacking, "variable list layout: max_chars, vertical, horizontal, cut_chars, empty")
	fs.IntVar(&f.boxWidth, "box-width", pipeline.DefaultBoxWidth, "label width in characters")
	fs.IntVar(&f.boxLines, "box-lines", 0, "maximum label lines (0 for no limit)")
	fs.StringVar(&f.outputSide, "output-side", "left", "side for optimal outputs: left, right, or type=side,... (optimization, doe, default)")
	fs.StringVar(&f.classNames, "class-names", "false", "show component class names: true, false, short")
	fs.BoolVar(&f.equations, "equations", false, "show component equations (tex and pdf only)")
	fs.StringVar(&f.namer, "connection-namer", pipeline.DefaultConnectionNamer, "variable naming: src, tgt, mixed, both")

	fs.BoolVar(&f.legend, "legend", false, "add a legend of block styles (tex and pdf)")
	fs.BoolVar(&f.arrows, "process-arrows", false, "draw arrow heads on process lines (tex and pdf)")
	fs.StringVar(&f.styles, "styles", "", "TikZ styles file to include instead of the bundled one")
	fs.StringVar(&f.title, "title", "", "HTML page title")
	fs.StringVar(&f.xdsmjsURL, "xdsmjs-url", "", "XDSMjs script URL for HTML output")
}

// renderOptions loads the config file and applies the flags set on the
// command line over it.
func (c *CLI) renderOptions(fs *pflag.FlagSet, flags *renderFlags) (pipeline.Options, error) {
	opts, path, err := loadConfig(flags.config, c.Logger)
	if err != nil {
		return opts, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "file", path)
	}

	if flags.formats != "" {
		formats, err := pipeline.ParseFormats(flags.formats)
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}

	set := fs.Changed
	if set("writer") {
		opts.Writer = flags.writer
	}
	if set("model-path") {
		opts.ModelPath = flags.modelPath
	}
	if set("recurse") {
		opts.Recurse = pipeline.Bool(flags.recurse)
	}
	if set("include-solver") {
		opts.IncludeSolver = flags.includeSolver
	}
	if set("include-external-outputs") {
		opts.IncludeExternalOutputs = pipeline.Bool(flags.externalOutputs)
	}
	if set("include-indepvarcomps") {
		opts.IncludeIndeps = pipeline.Bool(flags.indeps)
	}
	if set("show-parallel") {
		opts.ShowParallel = pipeline.Bool(flags.parallel)
	}
	if set("add-process-conns") {
		opts.AddProcessConns = pipeline.Bool(flags.processConns)
	}
	if set("numbered-components") {
		opts.NumberedComponents = pipeline.Bool(flags.numbered)
	}
	if set("number-alignment") {
		opts.NumberAlignment = flags.alignment
	}
	if set("start-index") {
		opts.StartIndex = flags.startIndex
	}
	if set("box-stacking") {
		opts.BoxStacking = flags.stacking
	}
	if set("box-width") {
		opts.BoxWidth = flags.boxWidth
	}
	if set("box-lines") {
		opts.BoxLines = flags.boxLines
	}
	if set("output-side") {
		side, err := xdsm.ParseOutputSide(flags.outputSide)
		if err != nil {
			return opts, err
		}
		opts.OutputSide = side
	}
	if set("class-names") {
		cn, err := xdsm.ParseClassNames(flags.classNames)
		if err != nil {
			return opts, err
		}
		opts.ShowClassNames = cn
	}
	if set("equations") {
		opts.ShowEquations = flags.equations
	}
	if set("connection-namer") {
		opts.ConnectionNamer = flags.namer
	}
	if set("legend") {
		opts.ShowLegend = flags.legend
	}
	if set("process-arrows") {
		opts.ProcessArrows = flags.arrows
	}
	if set("styles") {
		opts.StylesFile = flags.styles
	}
	if set("title") {
		opts.Title = flags.title
	}
	if set("xdsmjs-url") {
		opts.ScriptURL = flags.xdsmjsURL
	}
	opts.Refresh = flags.refresh

	if !flags.build {
		opts.Formats = withoutPDF(opts.Formats, c.Logger.Warn)
	}
	return opts, nil
}

// withoutPDF replaces pdf by tex.
func withoutPDF(formats []string, warn func(msg any, kv ...any)) []string {
	if !slices.Contains(formats, pipeline.FormatPDF) {
		return formats
	}
	warn("pdf needs --build, writing tex instead")
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f == pipeline.FormatPDF {
			f = pipeline.FormatTeX
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func (c *CLI) runRender(ctx context.Context, input string, flags *renderFlags, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	if flags.pick {
		data, err := xio.ReadJSON(bytes.NewReader(raw))
		if err != nil {
			return err
		}
		path, ok, err := pickModelPath(data.Tree.GroupPaths())
		if err != nil {
			return err
		}
		if !ok {
			return context.Canceled
		}
		opts.ModelPath = path
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	var spin *Spinner
	if slices.ContainsFunc(opts.Formats, usesExternalTool) {
		spin = newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", "))
		spin.Start()
	}
	result, err := runner.Execute(ctx, raw, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if flags.output == "-" {
		if len(opts.Formats) != 1 {
			return fmt.Errorf("writing to stdout needs exactly one format, got %d", len(opts.Formats))
		}
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(flags.output, input, opts.Formats)
	for _, f := range opts.Formats {
		if err := writeFile(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
		printFile(paths[f], result.CacheInfo.Hits[f])
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	prog.done(fmt.Sprintf("Rendered %s", filepath.Base(input)))
	return nil
}

// usesExternalTool reports whether rendering f takes long enough to show a
// spinner.
func usesExternalTool(f string) bool {
	return f == pipeline.FormatPDF || f == pipeline.FormatSVG || f == pipeline.FormatPNG
}

// outputPaths maps each format to its output file. A single format goes to
// output as given; several formats share output (minus a known extension)
// as base name. Without output the input name is the base.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a format extension from output, or the extension of
// input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
