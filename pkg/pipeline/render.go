package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/observability"
	"github.com/matzehuels/xdsmgen/pkg/render"
	"github.com/matzehuels/xdsmgen/pkg/render/tikz"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
	"github.com/matzehuels/xdsmgen/pkg/xdsm"
)

// pngScale renders png at twice the SVG size.
const pngScale = 2.0

func buildDocument(data *viewer.Data, p xdsm.Profile, opts *Options) (*diagram.Document, error) {
	return xdsm.Build(data, opts.BuildConfig(p))
}

// RenderDocument serializes doc in one output format using a writer made by
// factory. Documents for pdf are compiled with pdflatex; png is rasterized
// from the Graphviz SVG.
func RenderDocument(ctx context.Context, doc *diagram.Document, format string, factory WriterFactory, opts *Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	out, err := renderDocument(ctx, doc, format, factory, opts)

	hooks.OnRenderComplete(ctx, format, len(out), time.Since(start), err)
	return out, err
}

func renderDocument(ctx context.Context, doc *diagram.Document, format string, factory WriterFactory, opts *Options) ([]byte, error) {
	if factory == nil {
		return nil, errors.InvalidConfig("no writer for format %q", format)
	}
	w := factory(format, opts)
	if w == nil {
		return nil, errors.InvalidConfig("writer for format %q returned no writer", format)
	}
	if err := diagram.Replay(doc, w); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := w.Serialize(&buf); err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return render.ToPNG(ctx, buf.Bytes(), pngScale)
	case FormatPDF:
	default:
		return buf.Bytes(), nil
	}

	texOpts := render.TeXOptions{
		StylesFile: opts.StylesFile,
		StylesName: stylesName(opts.StylesFile),
	}
	if opts.StylesFile == "" {
		texOpts.Styles = tikz.DefaultStyles()
	}
	return render.CompileTeX(ctx, buf.Bytes(), texOpts)
}

// stylesName is the name a TeX document uses to \input the styles file.
func stylesName(path string) string {
	if path == "" {
		return tikz.DefaultStylesFile
	}
	return strings.TrimSuffix(filepath.Base(path), ".tex")
}
