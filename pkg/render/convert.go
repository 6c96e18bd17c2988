package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.Unsupported("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

// TeXOptions configures [CompileTeX].
type TeXOptions struct {
	// Compiler is the LaTeX binary, pdflatex if empty.
	Compiler string
	// StylesFile is copied next to the document as StylesName.tex so that
	// \input finds it. Styles is written instead when StylesFile is empty.
	// With neither, the styles are left to the TeX path.
	StylesFile string
	Styles     []byte
	StylesName string // diagram_styles if empty
}

// CompileTeX compiles a standalone LaTeX document to PDF in a scratch
// directory and returns the PDF bytes.
func CompileTeX(ctx context.Context, tex []byte, opts TeXOptions) ([]byte, error) {
	if opts.Compiler == "" {
		opts.Compiler = "pdflatex"
	}
	if opts.StylesName == "" {
		opts.StylesName = "diagram_styles"
	}
	if _, err := exec.LookPath(opts.Compiler); err != nil {
		return nil, errors.Unsupported("pdf export requires %s. Install a TeX distribution such as TeX Live", opts.Compiler)
	}

	dir, err := os.MkdirTemp("", "xdsmgen-tex-*")
	if err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}
	defer os.RemoveAll(dir)

	styles := opts.Styles
	if opts.StylesFile != "" {
		if styles, err = os.ReadFile(opts.StylesFile); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read styles file")
		}
	}
	if styles != nil {
		if err := os.WriteFile(filepath.Join(dir, opts.StylesName+".tex"), styles, 0o644); err != nil {
			return nil, fmt.Errorf("write styles file: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "diagram.tex"), tex, 0o644); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	cmd := exec.CommandContext(ctx, opts.Compiler, "-interaction=nonstopmode", "-halt-on-error", "diagram.tex")
	cmd.Dir = dir
	var log bytes.Buffer
	cmd.Stdout = &log
	cmd.Stderr = &log
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", opts.Compiler, err, lastLines(log.String(), 20))
	}
	return os.ReadFile(filepath.Join(dir, "diagram.pdf"))
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
