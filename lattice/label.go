package lattice

// Chain is an ordered sequence of sanitizer nodes already applied to a
// flow from a source. The empty chain denotes an unsanitized path
// (spec.md §3's Label invariants).
type Chain []Node

// equal reports whether two chains are the same ordered sequence.
func (c Chain) equal(other Chain) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

func (c Chain) clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

func (c Chain) contains(n Node) bool {
	for _, s := range c {
		if s == n {
			return true
		}
	}
	return false
}

// sourcePair is one (source_node, flows) entry of a Label. flows holds
// pairwise-distinct Chains (spec.md §3).
type sourcePair struct {
	Source Node
	Flows  []Chain
}

// Label represents one pattern's taint at a single program point: a
// set of (source_node, flows) pairs, no two pairs sharing a source
// (spec.md §3).
type Label struct {
	pairs []*sourcePair
}

// EmptyLabel is the zero taint value — no sources.
func EmptyLabel() Label {
	return Label{}
}

// SingleSource builds a Label with a single source and a single,
// unsanitized flow: the shape Name() produces for a freshly-read
// source identifier and for_uninitialised_variable's synthetic entry.
func SingleSource(source Node) Label {
	return Label{pairs: []*sourcePair{{Source: source, Flows: []Chain{{}}}}}
}

// Pairs returns the (source, flows) pairs in insertion order. Callers
// must not mutate the returned Chains.
func (l Label) Pairs() []struct {
	Source Node
	Flows  []Chain
} {
	out := make([]struct {
		Source Node
		Flows  []Chain
	}, len(l.pairs))
	for i, p := range l.pairs {
		out[i] = struct {
			Source Node
			Flows  []Chain
		}{Source: p.Source, Flows: p.Flows}
	}
	return out
}

// IsEmpty reports whether this Label carries no sources.
func (l Label) IsEmpty() bool {
	return len(l.pairs) == 0
}

func (l Label) find(source Node) *sourcePair {
	for _, p := range l.pairs {
		if p.Source == source {
			return p
		}
	}
	return nil
}

// Clone deep-copies a Label so that branch forks never alias flows.
func (l Label) Clone() Label {
	if len(l.pairs) == 0 {
		return Label{}
	}
	out := Label{pairs: make([]*sourcePair, len(l.pairs))}
	for i, p := range l.pairs {
		flows := make([]Chain, len(p.Flows))
		for j, c := range p.Flows {
			flows[j] = c.clone()
		}
		out.pairs[i] = &sourcePair{Source: p.Source, Flows: flows}
	}
	return out
}

// Combine is the union of pairs: entries sharing a source merge by
// concatenating flow-lists and deduplicating (spec.md §3's combine).
func Combine(l1, l2 Label) Label {
	out := l1.Clone()
	for _, p2 := range l2.pairs {
		existing := out.find(p2.Source)
		if existing == nil {
			flows := make([]Chain, len(p2.Flows))
			for i, c := range p2.Flows {
				flows[i] = c.clone()
			}
			out.pairs = append(out.pairs, &sourcePair{Source: p2.Source, Flows: flows})
			continue
		}
		for _, c := range p2.Flows {
			if !containsChain(existing.Flows, c) {
				existing.Flows = append(existing.Flows, c.clone())
			}
		}
	}
	return out
}

func containsChain(chains []Chain, c Chain) bool {
	for _, existing := range chains {
		if existing.equal(c) {
			return true
		}
	}
	return false
}

// Sanitise appends sanitizer node s to every chain of every pair that
// does not already contain s; a chain already containing s is left
// unchanged (spec.md §3's sanitise — idempotent per sanitizer).
func (l Label) Sanitise(s Node) Label {
	if l.IsEmpty() {
		return l
	}
	out := l.Clone()
	for _, p := range out.pairs {
		for i, c := range p.Flows {
			if c.contains(s) {
				continue
			}
			next := make(Chain, len(c)+1)
			copy(next, c)
			next[len(c)] = s
			p.Flows[i] = next
		}
	}
	return out
}

// FixLineno rewrites every source whose line is UninitialisedLine to
// ln (spec.md §3's fix_lineno). Two pairs that collide on the same
// source after rewriting are merged (union of flows), preserving the
// Label invariant that no two pairs share a source.
func (l Label) FixLineno(ln int) Label {
	if l.IsEmpty() {
		return l
	}
	hasSentinel := false
	for _, p := range l.pairs {
		if p.Source.Line == UninitialisedLine {
			hasSentinel = true
			break
		}
	}
	if !hasSentinel {
		return l
	}

	out := Label{}
	for _, p := range l.pairs {
		newSource := p.Source.FixLineno(ln)
		if existing := out.find(newSource); existing != nil {
			for _, c := range p.Flows {
				if !containsChain(existing.Flows, c) {
					existing.Flows = append(existing.Flows, c.clone())
				}
			}
			continue
		}
		flows := make([]Chain, len(p.Flows))
		for i, c := range p.Flows {
			flows[i] = c.clone()
		}
		out.pairs = append(out.pairs, &sourcePair{Source: newSource, Flows: flows})
	}
	return out
}

// Equal reports structural equality: same set of (source, flows) pairs,
// flow order within a pair and pair order both irrelevant.
func (l Label) Equal(other Label) bool {
	if len(l.pairs) != len(other.pairs) {
		return false
	}
	for _, p := range l.pairs {
		op := other.find(p.Source)
		if op == nil || len(op.Flows) != len(p.Flows) {
			return false
		}
		for _, c := range p.Flows {
			if !containsChain(op.Flows, c) {
				return false
			}
		}
	}
	return true
}
