package model

import (
	"strconv"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/names"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// Kind classifies diagram nodes.
type Kind string

// Node kinds.
const (
	KindComponent  Kind = "component"
	KindGroup      Kind = "group"
	KindSolver     Kind = "solver"
	KindAutoSource Kind = "autoSource"
)

// TypeSolver is the component type of synthetic solver nodes.
const TypeSolver = "solver"

// RootSolverID is the id of the solver node of the flatten root.
const RootSolverID = "root@solver"

// solverSuffix is appended to a group name to form its solver node name.
const solverSuffix = "@solver"

// Solvers holds a pair of solver names.
type Solvers struct {
	Linear    string `json:"linear" toml:"linear" yaml:"linear"`
	Nonlinear string `json:"nonlinear" toml:"nonlinear" yaml:"nonlinear"`
}

// DefaultSolvers are the solvers of a system that has none assigned.
var DefaultSolvers = Solvers{Linear: "LN: RUNONCE", Nonlinear: "NL: RUNONCE"}

// SolverGroup is the loop a non-default solver runs over its members.
type SolverGroup struct {
	NodeID    string
	Members   []string
	Solvers   Solvers
	IsDefault bool
}

// Names returns the non-default solver names, nonlinear first.
func (g *SolverGroup) Names(defaults Solvers) []string {
	var out []string
	if g.Solvers.Nonlinear != defaults.Nonlinear {
		out = append(out, g.Solvers.Nonlinear)
	}
	if g.Solvers.Linear != defaults.Linear {
		out = append(out, g.Solvers.Linear)
	}
	return out
}

// Node is a flattened diagram node.
type Node struct {
	ID            string // escaped absolute name, unique within a result
	Name          string // display name, the dotted path after a collision
	RelName       string // leaf name in the tree
	Path          string // dotted path of the parent system
	Kind          Kind
	ComponentType string
	Class         string
	IsParallel    bool
	Expressions   []string
	Solver        *SolverGroup // set for KindSolver
}

// Options configures [Flatten].
type Options struct {
	ModelPath     string  // dotted subtree root; empty for the whole tree
	Recurse       bool    // descend into groups
	IncludeSolver bool    // emit solver nodes for non-default solvers
	IncludeIndeps bool    // keep "indep" components in the node list
	Defaults      Solvers // baseline solvers; DefaultSolvers if zero
}

// Result is the output of [Flatten].
type Result struct {
	Nodes    []Node // diagram nodes in emission order
	Filtered []Node // "indep" components removed from Nodes
	Root     *viewer.System
	defaults Solvers
}

// AddRootSolver prepends the solver node of the flatten root, with every
// node as a member. Its id is RootSolverID unless a node already uses it.
func (r *Result) AddRootSolver() {
	used := make(map[string]bool, len(r.Nodes)+len(r.Filtered))
	members := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		members[i] = n.ID
		used[n.ID] = true
	}
	for _, n := range r.Filtered {
		used[n.ID] = true
	}
	id := freeID(RootSolverID, func(id string) bool { return used[id] })
	group := newSolverGroup(id, r.Root, r.defaults)
	group.Members = members
	top := Node{
		ID:            id,
		Name:          RootSolverID,
		RelName:       r.Root.Name,
		Kind:          KindSolver,
		ComponentType: TypeSolver,
		Solver:        group,
	}
	r.Nodes = append([]Node{top}, r.Nodes...)
}

// Find returns the node with the given id.
func (r *Result) Find(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// IsFiltered reports whether id belongs to a filtered-out node.
func (r *Result) IsFiltered(id string) bool {
	for _, n := range r.Filtered {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Solvers returns the solver nodes in emission order.
func (r *Result) Solvers() []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.Kind == KindSolver {
			out = append(out, n)
		}
	}
	return out
}

// Subtree returns the system at the dotted path below root.
func Subtree(root *viewer.System, path string) (*viewer.System, error) {
	if path == "" {
		return root, nil
	}
	cur := root
	for _, seg := range strings.Split(path, names.Sep) {
		next := cur.Child(seg)
		if next == nil {
			return nil, errors.PathNotFound(path)
		}
		cur = next
	}
	return cur, nil
}

// Flatten walks tree and returns its diagram nodes.
func Flatten(tree *viewer.System, opts Options) (*Result, error) {
	if tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model tree is empty")
	}
	if opts.Defaults == (Solvers{}) {
		opts.Defaults = DefaultSolvers
	}

	root, err := Subtree(tree, opts.ModelPath)
	if err != nil {
		return nil, err
	}

	f := &flattener{
		opts:     opts,
		byRel:    make(map[string][]int),
		byID:     make(map[string]string),
		reserved: make(map[string]bool),
	}
	f.reserve(root, "")
	f.walk(root, "")
	if f.err != nil {
		return nil, f.err
	}

	res := &Result{Root: root, defaults: opts.Defaults}
	for _, n := range f.nodes {
		if !opts.IncludeIndeps && n.ComponentType == viewer.ComponentIndep {
			res.Filtered = append(res.Filtered, n)
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}

	return res, nil
}

// flattener is the arena the walk appends to. byRel indexes components
// by leaf name for collision rewrites. byID maps emitted ids to the dotted
// path that produced them; reserved holds the escaped id of every system in
// the tree so synthetic solver ids can avoid them.
type flattener struct {
	opts     Options
	nodes    []Node
	byRel    map[string][]int
	byID     map[string]string
	reserved map[string]bool
	err      error
}

func (f *flattener) reserve(sys *viewer.System, path string) {
	for _, ch := range sys.Children {
		abs := names.Join(path, ch.Name)
		f.reserved[names.ReplaceIllegal(abs)] = true
		f.reserve(ch, abs)
	}
}

// claim records id as used by abs. Two paths escaping to the same id
// cannot be told apart by their connections either, so that is an error.
func (f *flattener) claim(id, abs string) bool {
	if prev, ok := f.byID[id]; ok {
		if f.err == nil {
			f.err = errors.InvalidName("%q and %q both map to node id %q", prev, abs, id)
		}
		return false
	}
	f.byID[id] = abs
	return true
}

// solverID picks an unused id for the solver node of the group at abs.
func (f *flattener) solverID(abs string) string {
	id := freeID(names.ReplaceIllegal(abs+solverSuffix), func(id string) bool {
		_, ok := f.byID[id]
		return ok || f.reserved[id]
	})
	f.byID[id] = abs + solverSuffix
	return id
}

// freeID returns base, or base with the first numeric suffix not taken.
func freeID(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		id := base + "@" + strconv.Itoa(i)
		if !taken(id) {
			return id
		}
	}
}

// walk emits the children of sys and returns the ids it produced.
func (f *flattener) walk(sys *viewer.System, path string) []string {
	var emitted []string
	for _, ch := range sys.Children {
		if f.err != nil {
			return emitted
		}
		abs := names.Join(path, ch.Name)
		id := names.ReplaceIllegal(abs)

		if !ch.IsGroup() {
			if !f.claim(id, abs) {
				continue
			}
			f.addComponent(ch, path, abs, id)
			emitted = append(emitted, id)
			continue
		}

		solverIdx := -1
		if f.opts.IncludeSolver && solversOf(ch) != f.opts.Defaults {
			name := id + solverSuffix
			sid := f.solverID(abs)
			solverIdx = len(f.nodes)
			f.nodes = append(f.nodes, Node{
				ID:            sid,
				Name:          name,
				RelName:       ch.Name,
				Path:          path,
				Kind:          KindSolver,
				ComponentType: TypeSolver,
				Solver:        newSolverGroup(sid, ch, f.opts.Defaults),
			})
			emitted = append(emitted, sid)
		}

		var inner []string
		if f.opts.Recurse {
			inner = f.walk(ch, abs)
		} else if f.claim(id, abs) {
			f.nodes = append(f.nodes, Node{
				ID:            id,
				Name:          ch.Name,
				RelName:       ch.Name,
				Path:          path,
				Kind:          KindGroup,
				ComponentType: ch.ComponentType,
				Class:         ch.Class,
				IsParallel:    ch.IsParallel,
				Expressions:   ch.Expressions,
			})
			inner = []string{id}
		}

		if solverIdx >= 0 {
			f.nodes[solverIdx].Solver.Members = inner
		}
		emitted = append(emitted, inner...)
	}
	return emitted
}

// addComponent appends a component, relabelling earlier components with the
// same leaf name to their dotted paths.
func (f *flattener) addComponent(ch *viewer.System, path, abs, id string) {
	name := ch.Name
	if prev := f.byRel[ch.Name]; len(prev) > 0 {
		name = abs
		for _, i := range prev {
			n := &f.nodes[i]
			n.Name = names.Join(n.Path, n.RelName)
		}
	}
	f.byRel[ch.Name] = append(f.byRel[ch.Name], len(f.nodes))
	f.nodes = append(f.nodes, Node{
		ID:            id,
		Name:          name,
		RelName:       ch.Name,
		Path:          path,
		Kind:          KindComponent,
		ComponentType: ch.ComponentType,
		Class:         ch.Class,
		IsParallel:    ch.IsParallel,
		Expressions:   ch.Expressions,
	})
}

func solversOf(sys *viewer.System) Solvers {
	return Solvers{Linear: sys.LinearSolver, Nonlinear: sys.NonlinearSolver}
}

func newSolverGroup(id string, sys *viewer.System, defaults Solvers) *SolverGroup {
	s := solversOf(sys)
	return &SolverGroup{
		NodeID:    id,
		Solvers:   s,
		IsDefault: s == defaults,
	}
}
