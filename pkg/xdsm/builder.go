package xdsm

import (
	"strconv"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/conns"
	"github.com/matzehuels/xdsmgen/pkg/diagram"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/format"
	"github.com/matzehuels/xdsmgen/pkg/model"
	"github.com/matzehuels/xdsmgen/pkg/names"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// AutoSourceClass is the class shown on the auto-generated source node.
const AutoSourceClass = "IndepVarComp"

// Build assembles the XDSM document of data.
func Build(data *viewer.Data, cfg Config) (*diagram.Document, error) {
	if data == nil || data.Tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "viewer data has no model tree")
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	b := &builder{
		cfg:      cfg,
		data:     data,
		doc:      &diagram.Document{},
		parallel: make(map[string]bool),
	}
	if err := b.prepare(); err != nil {
		return nil, err
	}

	b.addDriver()
	b.addNodes()
	b.addInternalEdges()
	b.reconcileSources()
	b.addSolvers()
	b.addExternal()
	b.finalize()

	cfg.Logger.Debug("built diagram",
		"nodes", len(b.doc.Nodes),
		"edges", len(b.doc.Edges),
		"solvers", len(b.solvers))
	return b.doc, nil
}

// builder carries the state shared by the build phases. Phases run in the
// order of Build: later phases read nodes and buckets set up by earlier ones.
type builder struct {
	cfg  Config
	data *viewer.Data
	doc  *diagram.Document

	flat     *model.Result
	internal *conns.Bucket
	inputs   *conns.Bucket
	outputs  *conns.Bucket
	dvs      []conns.Group
	resps    []conns.Group

	driverID   string
	driverType string
	autoSource bool // auto-generated source drawn as a node
	parallel   map[string]bool
	solvers    []model.Node
}

// prepare flattens the tree and aggregates every connection set.
func (b *builder) prepare() error {
	cfg := b.cfg
	flat, err := model.Flatten(b.data.Tree, model.Options{
		ModelPath:     cfg.ModelPath,
		Recurse:       cfg.Recurse,
		IncludeSolver: cfg.IncludeSolver,
		IncludeIndeps: cfg.IncludeIndeps,
		Defaults:      cfg.Solvers,
	})
	if err != nil {
		return err
	}
	if cfg.ModelPath != "" && b.data.Driver == nil {
		return errors.InvalidConfig("model path %q requires data with a driver", cfg.ModelPath)
	}
	if cfg.IncludeSolver {
		flat.AddRootSolver()
	}
	b.flat = flat
	for _, n := range flat.Nodes {
		b.parallel[n.ID] = n.IsParallel
	}

	opts := conns.Options{Recurse: cfg.Recurse, Namer: cfg.Namer, Logger: cfg.Logger}
	split := conns.Prune(b.data.Connections, cfg.ModelPath)
	if b.internal, err = conns.Aggregate(split.Internal, opts); err != nil {
		return err
	}
	if b.inputs, err = conns.Aggregate(split.Inputs, opts); err != nil {
		return err
	}
	if b.outputs, err = conns.Aggregate(split.Outputs, opts); err != nil {
		return err
	}
	b.autoSource = cfg.IncludeIndeps && b.internal.Has(names.AutoSourceID)

	if d := b.data.Driver; d != nil {
		b.driverID = names.ReplaceIllegal(d.Name)
		b.driverType = strings.ToLower(d.Type)
		if b.driverType == "" {
			b.driverType = viewer.DriverOptimization
		}
		dvs, err := conns.Collect(b.data.DesignVars.Paths(), b.data.Connections, cfg.ModelPath, opts)
		if err != nil {
			return err
		}
		resps, err := conns.Collect(b.data.Responses.Paths(), b.data.Connections, cfg.ModelPath,
			conns.Options{Recurse: cfg.Recurse, Namer: conns.NamerSource, Logger: cfg.Logger})
		if err != nil {
			return err
		}
		b.dvs = conns.GroupRefs(b.reroute(dvs))
		b.resps = conns.GroupRefs(b.reroute(resps))
	}
	return nil
}

// drawn reports whether id ends up on the diagonal.
func (b *builder) drawn(id string) bool {
	if id == "" {
		return false
	}
	if id == b.driverID || (id == names.AutoSourceID && b.autoSource) {
		return true
	}
	n, ok := b.flat.Find(id)
	if !ok {
		return false
	}
	return n.Kind != model.KindSolver || len(n.Solver.Names(b.cfg.Solvers)) > 0
}

// reroute moves driver variables owned by nodes that are not drawn onto the
// nodes they feed.
func (b *builder) reroute(refs []conns.Ref) []conns.Ref {
	out := make([]conns.Ref, 0, len(refs))
	for _, r := range refs {
		if b.drawn(r.Path) {
			out = append(out, r)
			continue
		}
		moved := false
		for _, t := range r.Targets {
			if b.drawn(t) {
				out = append(out, conns.Ref{Path: t, Var: r.Var})
				moved = true
			}
		}
		if !moved {
			b.cfg.Logger.Warn("driver variable has no node to attach to", "node", r.Path, "var", r.Var)
		}
	}
	return out
}

// =============================================================================
// Labels
// =============================================================================

// sup annotates a raw name with a role. The initial-value marker is written
// as the pending marker so substitution cannot touch it.
func (b *builder) sup(name string, role format.Role) string {
	if role == "" {
		return name
	}
	if role == format.RoleInitial {
		role = format.RoleInitialPending
	}
	return b.cfg.Profile.Notation.Var(name, role, b.cfg.Superscripts)
}

// block annotates, substitutes and lays out a list of raw names.
func (b *builder) block(vars []string, role format.Role) format.Lines {
	shown := make([]string, len(vars))
	for i, v := range vars {
		shown[i] = b.cfg.Profile.Subs.Apply(b.sup(v, role))
	}
	// stacking was validated by normalize
	lines, _ := format.Block(shown, format.BlockOptions{
		Stacking: b.cfg.Stacking,
		Width:    b.cfg.BoxWidth,
		MaxLines: b.cfg.BoxLines,
	})
	return lines
}

func (b *builder) text(s string) format.Lines {
	return format.Lines{b.cfg.Profile.Subs.Apply(s)}
}

func (b *builder) stacked(ids ...string) bool {
	if !b.cfg.ShowParallel {
		return false
	}
	for _, id := range ids {
		if b.parallel[id] {
			return true
		}
	}
	return false
}

// =============================================================================
// Phases
// =============================================================================

// addDriver draws the driver with its design variable and response edges.
func (b *builder) addDriver() {
	d := b.data.Driver
	if d == nil {
		return
	}
	p := b.cfg.Profile
	style, ok := p.Styles[b.driverType]
	if !ok {
		style = p.DriverStyle
	}
	b.doc.AddNode(diagram.Node{ID: b.driverID, Type: b.driverType, Style: style, Label: b.text(d.Name)})

	compSide := b.cfg.OutputSide.SideFor(SideKeyDefault)
	driverSide := b.cfg.OutputSide.SideFor(b.driverType)

	for _, g := range b.dvs {
		opt := b.block(g.Vars, format.RoleOptimal)
		b.doc.AddEdge(diagram.Edge{From: b.driverID, To: g.Path, Kind: diagram.EdgeData, Label: b.block(g.Vars, "")})
		b.doc.AddEdge(diagram.Edge{From: g.Path, Kind: diagram.EdgeOutput, Side: compSide, Label: opt})
		b.doc.AddEdge(diagram.Edge{From: b.driverID, Kind: diagram.EdgeOutput, Side: driverSide, Label: opt})
		b.doc.AddEdge(diagram.Edge{To: b.driverID, Kind: diagram.EdgeInput, Label: b.block(g.Vars, format.RoleInitial)})
	}
	for _, g := range b.resps {
		b.doc.AddEdge(diagram.Edge{From: g.Path, To: b.driverID, Kind: diagram.EdgeData, Label: b.block(g.Vars, "")})
		b.doc.AddEdge(diagram.Edge{From: g.Path, Kind: diagram.EdgeOutput, Side: compSide, Label: b.block(g.Vars, format.RoleOptimal)})
	}
}

// addNodes draws the flattened nodes in emission order.
func (b *builder) addNodes() {
	p := b.cfg.Profile
	if b.autoSource {
		b.doc.AddNode(diagram.Node{
			ID:    names.AutoSourceID,
			Type:  viewer.ComponentIndep,
			Style: p.Style(viewer.ComponentIndep),
			Label: b.text(names.AutoSourceID),
			Class: b.cfg.ClassNames.Apply(AutoSourceClass),
		})
	}

	for _, n := range b.flat.Nodes {
		if n.Kind == model.KindSolver {
			solvers := n.Solver.Names(b.cfg.Solvers)
			if len(solvers) == 0 {
				continue
			}
			b.solvers = append(b.solvers, n)
			b.doc.AddNode(diagram.Node{
				ID:    n.ID,
				Type:  diagram.TypeSolver,
				Style: p.Style(diagram.TypeSolver),
				Label: format.SolverLabel(p.Subs.ApplyAll(solvers), b.cfg.Stacking),
			})
			continue
		}

		typ := n.ComponentType
		if n.Kind == model.KindGroup {
			typ = diagram.TypeGroup
		}
		b.doc.AddNode(diagram.Node{
			ID:      n.ID,
			Type:    typ,
			Style:   p.Style(typ),
			Label:   b.nodeLabel(n),
			Class:   b.cfg.ClassNames.Apply(n.Class),
			Stacked: b.stacked(n.ID),
		})
	}
}

func (b *builder) nodeLabel(n model.Node) format.Lines {
	if !b.cfg.ShowEquations || len(n.Expressions) == 0 {
		return b.text(n.Name)
	}
	eqs := make([]string, 0, len(n.Expressions))
	for _, expr := range n.Expressions {
		eq, err := b.cfg.Equations.Format(expr)
		if err != nil {
			b.cfg.Logger.Warn("could not format equation", "node", n.ID, "expr", expr, "err", err)
			return b.text(n.Name)
		}
		eqs = append(eqs, eq)
	}
	return format.Lines{strings.Join(eqs, ", ")}
}

// addInternalEdges draws one edge per aggregated node pair.
func (b *builder) addInternalEdges() {
	for _, pair := range b.internal.Pairs() {
		if b.hidden(pair.Src) {
			continue
		}
		if !b.drawn(pair.Src) || !b.drawn(pair.Tgt) {
			b.cfg.Logger.Warn("connection ignored", "src", pair.Src, "tgt", pair.Tgt, "vars", pair.Vars)
			continue
		}
		b.doc.AddEdge(diagram.Edge{
			From:    pair.Src,
			To:      pair.Tgt,
			Kind:    diagram.EdgeData,
			Label:   b.block(pair.Vars, ""),
			Stacked: b.stacked(pair.Src, pair.Tgt),
		})
	}
}

// hidden reports whether src is a source component left off the diagram.
func (b *builder) hidden(src string) bool {
	if b.cfg.IncludeIndeps {
		return false
	}
	return src == names.AutoSourceID || b.flat.IsFiltered(src)
}

// reconcileSources turns connections from hidden source components into
// initial-value inputs on their targets.
func (b *builder) reconcileSources() {
	for _, src := range b.internal.Sources() {
		if !b.hidden(src) {
			continue
		}
		for _, tgt := range b.internal.Targets(src) {
			for _, v := range b.internal.Vars(src, tgt) {
				b.inputs.Add(src, tgt, b.sup(v, format.RoleInitial))
			}
		}
		b.internal.Remove(src)
	}
}

// addSolvers draws the loop edges of every drawn solver and builds the
// workflow.
func (b *builder) addSolvers() {
	for _, s := range b.solvers {
		members := make(map[string]bool, len(s.Solver.Members))
		for _, m := range s.Solver.Members {
			members[m] = true
		}
		for _, pair := range b.internal.Pairs() {
			if !members[pair.Src] || !members[pair.Tgt] || !b.drawn(pair.Src) || !b.drawn(pair.Tgt) {
				continue
			}
			b.doc.AddEdge(diagram.Edge{From: s.ID, To: pair.Tgt, Kind: diagram.EdgeData, Label: b.block(pair.Vars, format.RoleTarget)})
			b.doc.AddEdge(diagram.Edge{From: pair.Src, To: s.ID, Kind: diagram.EdgeData, Label: b.block(pair.Vars, "")})
		}
	}

	if !b.cfg.AddProcessConns {
		return
	}
	var ids []string
	for _, n := range b.doc.Nodes {
		if n.ID != b.driverID {
			ids = append(ids, n.ID)
		}
	}
	wf := diagram.Sequence(ids...)
	if b.data.Driver != nil {
		wf = []diagram.Step{diagram.Loop(b.driverID, wf...)}
	}
	for _, s := range b.solvers {
		wf = diagram.Nest(wf, s.ID, s.Solver.Members)
	}
	b.doc.Workflow = wf
}

// addExternal draws inputs from outside the subtree and outputs leaving it.
func (b *builder) addExternal() {
	for _, p := range b.inputs.ByTarget() {
		if !b.drawn(p.Tgt) {
			b.cfg.Logger.Warn("external input ignored", "tgt", p.Tgt, "vars", p.Vars)
			continue
		}
		b.doc.AddEdge(diagram.Edge{To: p.Tgt, Kind: diagram.EdgeInput, Label: b.block(p.Vars, ""), Stacked: b.stacked(p.Tgt)})
	}

	if !b.cfg.IncludeExternalOutputs {
		return
	}
	side := b.cfg.OutputSide.SideFor(SideKeyDefault).Opposite()
	for _, p := range b.outputs.BySource() {
		if !b.drawn(p.Src) {
			b.cfg.Logger.Warn("external output ignored", "src", p.Src, "vars", p.Vars)
			continue
		}
		b.doc.AddEdge(diagram.Edge{From: p.Src, Kind: diagram.EdgeOutput, Side: side, Label: b.block(p.Vars, ""), Stacked: b.stacked(p.Src)})
	}
}

// finalize numbers the node labels.
func (b *builder) finalize() {
	if !b.cfg.Numbered {
		return
	}
	nums := diagram.Number(b.doc.Workflow)
	start := b.cfg.StartIndex
	for i := range b.doc.Nodes {
		n := &b.doc.Nodes[i]
		num, ok := nums[n.ID]
		switch {
		case !ok:
			n.Number = strconv.Itoa(n.Index + start)
		case num.Loop:
			n.Number = format.LoopNumber(num.First, num.Last, start, b.cfg.Profile.LoopArrow)
		default:
			n.Number = strconv.Itoa(num.First + start)
		}
		if b.cfg.Profile.NumberLabels {
			n.Label = format.Number(n.Label, n.Number, b.cfg.NumberAlignment)
		}
	}
}
