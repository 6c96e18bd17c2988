package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/cache"
	"github.com/matzehuels/xdsmgen/pkg/diagram"
	xio "github.com/matzehuels/xdsmgen/pkg/io"
	"github.com/matzehuels/xdsmgen/pkg/observability"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
	"github.com/matzehuels/xdsmgen/pkg/xdsm"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner serves concurrent requests with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Registry *Registry
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: NewRegistry(),
	}
}

// Execute decodes raw viewer data and renders every requested format,
// reusing cached artifacts where possible.
func (r *Runner) Execute(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		DataHash:  cache.Hash(raw),
		CacheInfo: CacheInfo{Hits: make(map[string]bool)},
	}

	var missing []string
	for _, f := range opts.Formats {
		if data, ok := r.cached(ctx, result.DataHash, f, &opts); ok {
			result.Artifacts[f] = data
			result.CacheInfo.Hits[f] = true
			continue
		}
		missing = append(missing, f)
	}
	result.CacheInfo.RenderHit = len(missing) == 0
	if len(missing) == 0 {
		r.Logger.Debug("all artifacts cached", "formats", opts.Formats)
		return result, nil
	}

	data, err := xio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	docs := make(map[string]*diagram.Document)
	for _, f := range missing {
		factory, profile, err := r.Registry.Lookup(opts.WriterFor(f), opts.Logger)
		if err != nil {
			return nil, err
		}

		doc, ok := docs[profile.Name]
		if !ok {
			start := time.Now()
			doc, err = r.Build(ctx, data, profile, &opts)
			if err != nil {
				return nil, err
			}
			docs[profile.Name] = doc
			result.Stats.BuildTime += time.Since(start)
			result.Stats.NodeCount = len(doc.Nodes)
			result.Stats.EdgeCount = len(doc.Edges)
		}

		start := time.Now()
		out, err := RenderDocument(ctx, doc, f, factory, &opts)
		result.Stats.RenderTime += time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		result.Artifacts[f] = out
		r.store(ctx, result.DataHash, f, &opts, out)
	}

	r.Logger.Info("rendered diagram",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"formats", opts.Formats,
		"duration", result.Stats.BuildTime+result.Stats.RenderTime)
	return result, nil
}

// Build builds the diagram document for one writer profile.
func (r *Runner) Build(ctx context.Context, data *viewer.Data, profile xdsm.Profile, opts *Options) (*diagram.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, profile.Name, opts.ModelPath)
	start := time.Now()

	doc, err := buildDocument(data, profile, opts)

	nodes, edges := 0, 0
	if doc != nil {
		nodes, edges = len(doc.Nodes), len(doc.Edges)
	}
	hooks.OnBuildComplete(ctx, profile.Name, nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("built document", "profile", profile.Name, "nodes", nodes, "edges", edges)
	return doc, nil
}

func (r *Runner) cached(ctx context.Context, dataHash, f string, opts *Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	key := r.Keyer.ArtifactKey(dataHash, opts.ArtifactKeyOpts(f))
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "format", f, "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")
	return nil, false
}

func (r *Runner) store(ctx context.Context, dataHash, f string, opts *Options, data []byte) {
	key := r.Keyer.ArtifactKey(dataHash, opts.ArtifactKeyOpts(f))
	err := cache.RetryWithBackoff(ctx, 3, 100*time.Millisecond, func() error {
		return r.Cache.Set(ctx, key, data, DefaultTTL)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "format", f, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
