// Package conns aggregates point-to-point data connections into diagram edges.
//
// Raw connections join two absolute variable paths. [Prune] classifies them
// against a model subtree, [Aggregate] resolves both endpoints to diagram
// nodes and groups variable names per (source, target) pair in a [Bucket],
// and [Collect] resolves the design variables and responses of a driver.
package conns

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/names"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// Namer selects which endpoint names a connection.
type Namer string

// Connection naming policies.
const (
	NamerSource Namer = "src"
	NamerTarget Namer = "tgt"
	NamerMixed  Namer = "mixed" // target name for auto-generated sources, otherwise source
	NamerBoth   Namer = "both"  // "src-tgt"
)

// Namers lists the valid policies.
var Namers = []Namer{NamerSource, NamerTarget, NamerMixed, NamerBoth}

// ParseNamer validates a policy name. "source" and "target" are accepted as
// aliases.
func ParseNamer(s string) (Namer, error) {
	switch strings.ToLower(s) {
	case "src", "source":
		return NamerSource, nil
	case "tgt", "target":
		return NamerTarget, nil
	case "mixed":
		return NamerMixed, nil
	case "both":
		return NamerBoth, nil
	}
	return "", errors.InvalidConfig("invalid connection namer %q (must be one of: src, tgt, mixed, both)", s)
}

// Options configures aggregation.
type Options struct {
	Recurse bool
	Namer   Namer
	Logger  *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Split is the result of [Prune].
type Split struct {
	Internal []viewer.Connection // both endpoints inside
	Inputs   []viewer.Connection // only the target inside
	Outputs  []viewer.Connection // only the source inside
}

// Prune classifies conns against the subtree at modelPath. Endpoints inside
// the subtree are made relative to it. Connections with neither endpoint
// inside are dropped. An empty modelPath keeps every connection internal.
func Prune(conns []viewer.Connection, modelPath string) Split {
	if modelPath == "" {
		return Split{Internal: append([]viewer.Connection(nil), conns...)}
	}
	var s Split
	for _, c := range conns {
		srcIn, tgtIn := names.Inside(c.Src, modelPath), names.Inside(c.Tgt, modelPath)
		rel := viewer.Connection{
			Src: names.RelPath(c.Src, modelPath),
			Tgt: names.RelPath(c.Tgt, modelPath),
		}
		switch {
		case srcIn && tgtIn:
			s.Internal = append(s.Internal, rel)
		case srcIn:
			s.Outputs = append(s.Outputs, rel)
		case tgtIn:
			s.Inputs = append(s.Inputs, rel)
		}
	}
	return s
}

// Aggregate resolves conns and groups their variable names by node pair.
// Connections within one node are dropped. Malformed connections are logged
// and skipped.
func Aggregate(conns []viewer.Connection, opts Options) (*Bucket, error) {
	namer := opts.Namer
	if namer == "" {
		namer = NamerMixed
	}
	if _, err := ParseNamer(string(namer)); err != nil {
		return nil, err
	}
	logger := opts.logger()

	b := NewBucket()
	for _, c := range conns {
		if !c.Valid() {
			logger.Warn("skipping connection with missing endpoint", "src", c.Src, "tgt", c.Tgt)
			continue
		}
		src, err := names.Convert(c.Src, opts.Recurse, nil)
		if err != nil {
			logger.Warn("skipping connection", "src", c.Src, "tgt", c.Tgt, "err", err)
			continue
		}
		tgt, err := names.Convert(c.Tgt, opts.Recurse, nil)
		if err != nil {
			logger.Warn("skipping connection", "src", c.Src, "tgt", c.Tgt, "err", err)
			continue
		}
		if src.Path == "" || tgt.Path == "" {
			logger.Warn("skipping connection without owning node", "src", c.Src, "tgt", c.Tgt)
			continue
		}
		if src.Path == tgt.Path {
			continue
		}
		b.Add(src.Path, tgt.Path, varName(namer, src, tgt))
	}
	return b, nil
}

func varName(namer Namer, src, tgt names.Name) string {
	switch namer {
	case NamerTarget:
		return tgt.Variable
	case NamerBoth:
		return src.Variable + "-" + tgt.Variable
	case NamerMixed:
		if src.Path == names.AutoSourceID {
			return tgt.Variable
		}
	}
	return src.Variable
}

// =============================================================================
// Design variables and responses
// =============================================================================

// Ref is a driver variable resolved to its owning diagram node.
type Ref struct {
	Path    string   // escaped id of the owning node
	Var     string   // display name chosen by the namer
	Targets []string // escaped ids of the nodes the variable feeds
}

// Group is an ordered list of variables owned by one node.
type Group struct {
	Path string
	Vars []string
}

// Collect resolves driver variables against the subtree at modelPath.
//
// Variables outside the subtree are skipped, except those owned by the
// auto-generated source, which belongs to every subtree. Targets are taken
// from conns, which must hold absolute paths. With the target and mixed
// namers the name of the first connected target is used where the policy
// asks for it; unconnected variables keep their own name.
func Collect(vars []string, conns []viewer.Connection, modelPath string, opts Options) ([]Ref, error) {
	namer := opts.Namer
	if namer == "" {
		namer = NamerSource
	}
	if _, err := ParseNamer(string(namer)); err != nil {
		return nil, err
	}

	targets := make(map[string][]names.Name)
	for _, c := range conns {
		if !c.Valid() || !names.Inside(c.Tgt, modelPath) {
			continue
		}
		tgt, err := names.Convert(names.RelPath(c.Tgt, modelPath), opts.Recurse, nil)
		if err != nil {
			continue
		}
		targets[c.Src] = append(targets[c.Src], tgt)
	}

	refs := make([]Ref, 0, len(vars))
	for _, v := range vars {
		rel := v
		if !isAutoSource(v) {
			if !names.Inside(v, modelPath) {
				continue
			}
			rel = names.RelPath(v, modelPath)
		}
		src, err := names.Convert(rel, opts.Recurse, nil)
		if err != nil {
			return nil, err
		}

		ref := Ref{Path: src.Path, Var: src.Variable}
		tgts := targets[v]
		for _, t := range tgts {
			ref.Targets = appendUnique(ref.Targets, t.Path)
		}
		if len(tgts) > 0 {
			switch namer {
			case NamerTarget:
				ref.Var = tgts[0].Variable
			case NamerBoth:
				ref.Var = src.Variable + "-" + tgts[0].Variable
			case NamerMixed:
				if src.Path == names.AutoSourceID {
					ref.Var = tgts[0].Variable
				}
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// GroupRefs groups refs by owning node in first-seen order, dropping
// repeated names.
func GroupRefs(refs []Ref) []Group {
	var out []Group
	idx := make(map[string]int)
	for _, r := range refs {
		i, ok := idx[r.Path]
		if !ok {
			i = len(out)
			idx[r.Path] = i
			out = append(out, Group{Path: r.Path})
		}
		out[i].Vars = appendUnique(out[i].Vars, r.Var)
	}
	return out
}

func isAutoSource(path string) bool {
	return strings.HasPrefix(path, names.AutoSource+names.Sep)
}
