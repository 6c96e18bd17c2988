package diagram

// Step is a workflow item: a leaf naming one node, or a loop whose head
// node iterates over Body.
type Step struct {
	ID   string `json:"id"`
	Loop bool   `json:"loop,omitempty"`
	Body []Step `json:"body,omitempty"`
}

// Leaf returns a step that runs node id once.
func Leaf(id string) Step {
	return Step{ID: id}
}

// Loop returns a loop headed by id over body.
func Loop(id string, body ...Step) Step {
	return Step{ID: id, Loop: true, Body: body}
}

// Chain returns the process chain of s. A loop starts and ends with its head.
func (s Step) Chain() []string {
	if !s.Loop {
		return []string{s.ID}
	}
	chain := []string{s.ID}
	for _, b := range s.Body {
		chain = append(chain, b.ID)
	}
	return append(chain, s.ID)
}

// Loops returns every loop in wf, outer loops first.
func Loops(wf []Step) []Step {
	var out []Step
	for _, s := range wf {
		if s.Loop {
			out = append(out, s)
			out = append(out, Loops(s.Body)...)
		}
	}
	return out
}

// Sequence returns a flat workflow of leaves.
func Sequence(ids ...string) []Step {
	out := make([]Step, len(ids))
	for i, id := range ids {
		out[i] = Leaf(id)
	}
	return out
}

// Nest returns a copy of wf where the step for head becomes a loop over the
// steps following it at the same level whose ids are in members. Steps that
// are not members keep their place. wf is unchanged if head is absent.
func Nest(wf []Step, head string, members []string) []Step {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	out, _ := nest(wf, head, set)
	return out
}

func nest(wf []Step, head string, members map[string]bool) ([]Step, bool) {
	out := make([]Step, 0, len(wf))
	for i, s := range wf {
		if s.ID == head {
			loop := Step{ID: head, Body: append([]Step(nil), s.Body...), Loop: true}
			var rest []Step
			for _, next := range wf[i+1:] {
				if members[next.ID] {
					loop.Body = append(loop.Body, next)
				} else {
					rest = append(rest, next)
				}
			}
			out = append(out, loop)
			return append(out, rest...), true
		}
		if s.Loop {
			body, found := nest(s.Body, head, members)
			if found {
				out = append(out, Step{ID: s.ID, Body: body, Loop: true})
				return append(out, wf[i+1:]...), true
			}
		}
		out = append(out, s)
	}
	return out, false
}

// Numbering is the process number of a node.
type Numbering struct {
	First int
	Last  int // closing number of a loop head
	Loop  bool
}

// Number assigns process numbers by walking wf in order.
func Number(wf []Step) map[string]Numbering {
	nums := make(map[string]Numbering)
	counter := 0
	var walk func([]Step)
	walk = func(steps []Step) {
		for _, s := range steps {
			if !s.Loop {
				nums[s.ID] = Numbering{First: counter}
				counter++
				continue
			}
			first := counter
			counter++
			walk(s.Body)
			nums[s.ID] = Numbering{First: first, Last: counter, Loop: true}
			counter++
		}
	}
	walk(wf)
	return nums
}
