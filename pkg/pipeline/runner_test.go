package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/cache"
	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/observability"
)

func loadSellar(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/sellar.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	r := newFileRunner(t)
	raw := loadSellar(t)
	opts := Options{Formats: []string{FormatJSON, FormatHTML, FormatTeX, FormatDOT}}

	res, err := r.Execute(context.Background(), raw, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("Execute() produced %d artifacts, want 4", len(res.Artifacts))
	}
	if res.CacheInfo.RenderHit {
		t.Error("first run should not be a cache hit")
	}
	if res.Stats.NodeCount == 0 || res.Stats.EdgeCount == 0 {
		t.Errorf("Stats not filled: %+v", res.Stats)
	}

	var data struct {
		Nodes    []map[string]string `json:"nodes"`
		Edges    []map[string]string `json:"edges"`
		Workflow []any               `json:"workflow"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &data); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(data.Nodes) == 0 || len(data.Edges) == 0 || len(data.Workflow) == 0 {
		t.Errorf("json artifact incomplete: %s", res.Artifacts[FormatJSON])
	}

	if html := string(res.Artifacts[FormatHTML]); !strings.Contains(html, "data-mdo") {
		t.Error("html artifact should embed the diagram data")
	}
	tex := string(res.Artifacts[FormatTeX])
	for _, want := range []string{`\documentclass{article}`, `\input{diagram_styles}`, `\matrix[MatrixSetup]{`} {
		if !strings.Contains(tex, want) {
			t.Errorf("tex artifact missing %q", want)
		}
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.HasPrefix(dot, "digraph XDSM {") {
		t.Errorf("dot artifact should start with digraph, got %.40q", dot)
	}
}

func TestExecuteCaching(t *testing.T) {
	r := newFileRunner(t)
	raw := loadSellar(t)
	ctx := context.Background()

	first, err := r.Execute(ctx, raw, Options{Formats: []string{FormatTeX}})
	if err != nil {
		t.Fatal(err)
	}

	second, err := r.Execute(ctx, raw, Options{Formats: []string{FormatTeX, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.Hits[FormatTeX] {
		t.Error("tex should come from the cache on the second run")
	}
	if second.CacheInfo.Hits[FormatJSON] {
		t.Error("json was never rendered and cannot be a hit")
	}
	if second.CacheInfo.RenderHit {
		t.Error("RenderHit should be false when any format missed")
	}
	if !bytes.Equal(first.Artifacts[FormatTeX], second.Artifacts[FormatTeX]) {
		t.Error("cached tex differs from the rendered one")
	}

	third, err := r.Execute(ctx, raw, Options{Formats: []string{FormatTeX}, BoxWidth: 5})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.Hits[FormatTeX] {
		t.Error("changed options must not hit the cache")
	}

	refreshed, err := r.Execute(ctx, raw, Options{Formats: []string{FormatTeX}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.Hits[FormatTeX] {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	raw := loadSellar(t)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  []byte
		opts Options
		code errors.Code
	}{
		{"invalid json", []byte("{"), Options{}, errors.ErrCodeInvalidInput},
		{"unknown format", raw, Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidConfig},
		{"unknown writer", raw, Options{Writer: "mermaid"}, errors.ErrCodeInvalidConfig},
		{"missing path", raw, Options{ModelPath: "nope"}, errors.ErrCodePathNotFound},
		{"equations in html", raw, Options{ShowEquations: true}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.raw, tt.opts)
			if err == nil {
				t.Fatal("Execute() should fail")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestExecuteEquationsInTeX(t *testing.T) {
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	res, err := r.Execute(context.Background(), loadSellar(t), Options{Formats: []string{FormatTeX}, ShowEquations: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatTeX]), "con1 = 3.16 - y1") {
		t.Error("tex artifact should show the component equation")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	builds  []string
	renders []string
}

func (h *recordingHooks) OnBuildStart(_ context.Context, profile, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds = append(h.builds, profile)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, format)
}

func TestExecuteBuildsOncePerProfile(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	_, err := r.Execute(context.Background(), loadSellar(t), Options{Formats: []string{FormatJSON, FormatHTML, FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hooks.builds) != 2 {
		t.Errorf("built %v, want one build each for xdsmjs and graphviz", hooks.builds)
	}
	if len(hooks.renders) != 3 {
		t.Errorf("rendered %v, want 3 formats", hooks.renders)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"pyxdsm", "pyxdsm 1.0", "xdsmjs", "graphviz"} {
		f, p, err := reg.Lookup(name, nil)
		if err != nil {
			t.Errorf("Lookup(%q) error: %v", name, err)
			continue
		}
		if f == nil || p.Name != name {
			t.Errorf("Lookup(%q) = profile %q", name, p.Name)
		}
	}

	if _, _, err := reg.Lookup("mermaid", nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Lookup(unknown) error = %v, want INVALID_CONFIG", err)
	}
}

func TestRegistryCustomWriter(t *testing.T) {
	reg := NewRegistry()
	reg.Register("custom", func(string, *Options) diagram.Writer { return nil }, nil)

	var buf bytes.Buffer
	_, p, err := reg.Lookup("custom", log.New(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "custom" {
		t.Errorf("profile name = %q, want custom", p.Name)
	}
	if p.DriverStyle != "Optimization" {
		t.Errorf("custom writers should use pyxdsm styles, got driver style %q", p.DriverStyle)
	}
	if !strings.Contains(buf.String(), "no profile") {
		t.Errorf("missing warning, log: %q", buf.String())
	}

	names := reg.Names()
	if len(names) != 5 || names[0] != "custom" {
		t.Errorf("Names() = %v", names)
	}
}

func TestRenderRejectsMissingWriter(t *testing.T) {
	reg := NewRegistry()
	reg.Register("empty", func(string, *Options) diagram.Writer { return nil }, nil)
	reg.Register("nofactory", nil, nil)

	if _, _, err := reg.Lookup("nofactory", nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Lookup(nil factory) error = %v, want INVALID_CONFIG", err)
	}

	f, _, err := reg.Lookup("empty", nil)
	if err != nil {
		t.Fatal(err)
	}
	doc := &diagram.Document{}
	ctx := context.Background()
	if _, err := RenderDocument(ctx, doc, FormatTeX, f, &Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("nil writer: error = %v, want INVALID_CONFIG", err)
	}
	if _, err := RenderDocument(ctx, doc, FormatTeX, nil, &Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("nil factory: error = %v, want INVALID_CONFIG", err)
	}
}

func TestStylesName(t *testing.T) {
	tests := map[string]string{
		"":                          "diagram_styles",
		"my_styles.tex":             "my_styles",
		"/home/me/tex/xdsm.tex":     "xdsm",
		"relative/dir/plain_styles": "plain_styles",
	}
	for in, want := range tests {
		if got := stylesName(in); got != want {
			t.Errorf("stylesName(%q) = %q, want %q", in, got, want)
		}
	}
}
