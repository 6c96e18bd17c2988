package conns

// Pair is one aggregated (source, target) edge.
type Pair struct {
	Src  string
	Tgt  string
	Vars []string
}

// Bucket groups variable names by source and target node, keeping the
// first-seen order of sources, targets and names. Names are unique per pair.
type Bucket struct {
	srcs []string
	rows map[string]*row
}

type row struct {
	tgts []string
	vars map[string][]string
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{rows: make(map[string]*row)}
}

// Add appends v to the (src, tgt) pair. It reports false if the pair already
// holds v.
func (b *Bucket) Add(src, tgt, v string) bool {
	r, ok := b.rows[src]
	if !ok {
		r = &row{vars: make(map[string][]string)}
		b.rows[src] = r
		b.srcs = append(b.srcs, src)
	}
	vars, ok := r.vars[tgt]
	if !ok {
		r.tgts = append(r.tgts, tgt)
	}
	for _, x := range vars {
		if x == v {
			return false
		}
	}
	r.vars[tgt] = append(vars, v)
	return true
}

// Sources returns the source nodes in first-seen order.
func (b *Bucket) Sources() []string {
	return append([]string(nil), b.srcs...)
}

// Targets returns the targets of src in first-seen order.
func (b *Bucket) Targets(src string) []string {
	r, ok := b.rows[src]
	if !ok {
		return nil
	}
	return append([]string(nil), r.tgts...)
}

// Vars returns the variable names of the (src, tgt) pair.
func (b *Bucket) Vars(src, tgt string) []string {
	r, ok := b.rows[src]
	if !ok {
		return nil
	}
	return append([]string(nil), r.vars[tgt]...)
}

// Has reports whether src has any outgoing pair.
func (b *Bucket) Has(src string) bool {
	_, ok := b.rows[src]
	return ok
}

// Remove drops src and all of its pairs.
func (b *Bucket) Remove(src string) {
	if _, ok := b.rows[src]; !ok {
		return
	}
	delete(b.rows, src)
	for i, s := range b.srcs {
		if s == src {
			b.srcs = append(b.srcs[:i], b.srcs[i+1:]...)
			break
		}
	}
}

// Pairs returns every pair, grouped by source.
func (b *Bucket) Pairs() []Pair {
	var out []Pair
	for _, src := range b.srcs {
		r := b.rows[src]
		for _, tgt := range r.tgts {
			out = append(out, Pair{Src: src, Tgt: tgt, Vars: append([]string(nil), r.vars[tgt]...)})
		}
	}
	return out
}

// Len returns the number of pairs.
func (b *Bucket) Len() int {
	n := 0
	for _, r := range b.rows {
		n += len(r.tgts)
	}
	return n
}

// ByTarget merges the pairs of every source per target, in first-seen
// target order.
func (b *Bucket) ByTarget() []Pair {
	var out []Pair
	idx := make(map[string]int)
	for _, p := range b.Pairs() {
		i, ok := idx[p.Tgt]
		if !ok {
			idx[p.Tgt] = len(out)
			out = append(out, Pair{Tgt: p.Tgt})
			i = len(out) - 1
		}
		out[i].Vars = appendUnique(out[i].Vars, p.Vars...)
	}
	return out
}

// BySource merges the pairs of every target per source, in first-seen
// source order.
func (b *Bucket) BySource() []Pair {
	out := make([]Pair, 0, len(b.srcs))
	for _, src := range b.srcs {
		p := Pair{Src: src}
		r := b.rows[src]
		for _, tgt := range r.tgts {
			p.Vars = appendUnique(p.Vars, r.vars[tgt]...)
		}
		out = append(out, p)
	}
	return out
}

func appendUnique(dst []string, vs ...string) []string {
	for _, v := range vs {
		dup := false
		for _, x := range dst {
			if x == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
