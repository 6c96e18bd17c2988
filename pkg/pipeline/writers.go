package pipeline

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/render/nodelink"
	"github.com/matzehuels/xdsmgen/pkg/render/tikz"
	"github.com/matzehuels/xdsmgen/pkg/render/xdsmjs"
	"github.com/matzehuels/xdsmgen/pkg/xdsm"
)

// WriterFactory creates a fresh writer for one output format.
type WriterFactory func(format string, opts *Options) diagram.Writer

type writerEntry struct {
	factory WriterFactory
	profile *xdsm.Profile
}

// Registry maps writer names to factories and the profile their documents
// are built with. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]writerEntry
}

// NewRegistry returns a registry holding the built-in writers.
func NewRegistry() *Registry {
	r := &Registry{writers: make(map[string]writerEntry)}
	pyxdsm, legacy, js, gv := xdsm.PyXDSM(), xdsm.PyXDSMLegacy(), xdsm.XDSMjs(), xdsm.Graphviz()
	r.Register(xdsm.ProfilePyXDSM, newTikZ, &pyxdsm)
	r.Register(xdsm.ProfilePyXDSMLegacy, newTikZ, &legacy)
	r.Register(xdsm.ProfileXDSMjs, newXDSMjs, &js)
	r.Register(xdsm.ProfileGraphviz, newNodelink, &gv)
	return r
}

// Register adds or replaces a writer. A nil profile means the writer reads
// pyxdsm-style documents.
func (r *Registry) Register(name string, f WriterFactory, profile *xdsm.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[name] = writerEntry{factory: f, profile: profile}
}

// Lookup returns the factory and build profile for a writer name.
func (r *Registry) Lookup(name string, logger *log.Logger) (WriterFactory, xdsm.Profile, error) {
	r.mu.RLock()
	e, ok := r.writers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, xdsm.Profile{}, errors.InvalidConfig("unknown writer %q (must be one of: %v)", name, r.Names())
	}
	if e.factory == nil {
		return nil, xdsm.Profile{}, errors.InvalidConfig("writer %q has no factory", name)
	}
	if e.profile == nil {
		if logger != nil {
			logger.Warn("writer has no profile, using pyxdsm tables", "writer", name)
		}
		p := xdsm.PyXDSM()
		p.Name = name
		return e.factory, p, nil
	}
	return e.factory, *e.profile, nil
}

// Names lists the registered writers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.writers))
	for n := range r.writers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newTikZ(format string, opts *Options) diagram.Writer {
	return tikz.New(tikz.Options{
		Legend:     opts.ShowLegend,
		Arrows:     opts.ProcessArrows,
		StylesFile: stylesName(opts.StylesFile),
		Standalone: true,
	})
}

func newXDSMjs(format string, opts *Options) diagram.Writer {
	return xdsmjs.New(xdsmjs.Options{
		HTML: format == FormatHTML,
		Page: xdsmjs.PageOptions{
			Title:     opts.Title,
			ScriptURL: opts.ScriptURL,
		},
		Logger: opts.Logger,
	})
}

func newNodelink(format string, opts *Options) diagram.Writer {
	return nodelink.New(nodelink.Options{
		Process: boolOr(opts.AddProcessConns, true),
		SVG:     format == FormatSVG || format == FormatPNG,
	})
}
