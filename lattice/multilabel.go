package lattice

import "github.com/flowlattice/flowlattice/policy"

// MultiLabel is a mapping vuln_name -> Label, holding only the vuln
// names for which the point carries at least one source (spec.md §3).
type MultiLabel struct {
	labels map[string]Label
}

// EmptyMultiLabel is the zero MultiLabel — no vulns carry taint.
func EmptyMultiLabel() MultiLabel {
	return MultiLabel{labels: make(map[string]Label)}
}

// ConstructMultiLabel builds a MultiLabel from a pattern list and a set
// of raw Labels (spec.md §3's "Construction from (patterns, labels)"):
// for each pattern x label pair, keep only pairs whose source is
// declared a source of that pattern, intersect each flow with the
// pattern's sanitizers, and install the result under the pattern's
// vuln name — combining when more than one label filters into the
// same vuln.
func ConstructMultiLabel(patterns []*policy.Pattern, labels []Label) MultiLabel {
	ml := EmptyMultiLabel()
	for _, pat := range patterns {
		for _, l := range labels {
			filtered := filterForPattern(l, pat)
			if filtered.IsEmpty() {
				continue
			}
			if existing, ok := ml.labels[pat.VulnName]; ok {
				ml.labels[pat.VulnName] = Combine(existing, filtered)
			} else {
				ml.labels[pat.VulnName] = filtered
			}
		}
	}
	return ml
}

func filterForPattern(l Label, pat *policy.Pattern) Label {
	out := Label{}
	for _, p := range l.pairs {
		if !pat.HasSource(p.Source.Name) {
			continue
		}
		var flows []Chain
		for _, c := range p.Flows {
			var restricted Chain
			for _, s := range c {
				if pat.HasSanitizer(s.Name) {
					restricted = append(restricted, s)
				}
			}
			if !containsChain(flows, restricted) {
				flows = append(flows, restricted)
			}
		}
		out.pairs = append(out.pairs, &sourcePair{Source: p.Source, Flows: flows})
	}
	return out
}

// ForUninitialisedVariable builds a MultiLabel treating node as a
// source under every vuln name in pol, each with one unsanitized flow
// (spec.md §3's for_uninitialised_variable factory).
func ForUninitialisedVariable(pol *policy.Policy, node Node) MultiLabel {
	ml := EmptyMultiLabel()
	for _, name := range pol.AllVulnNames() {
		ml.labels[name] = SingleSource(node)
	}
	return ml
}

// Get returns the Label stored under vuln, and whether it is present.
func (ml MultiLabel) Get(vuln string) (Label, bool) {
	l, ok := ml.labels[vuln]
	return l, ok
}

// GetOrEmpty returns the Label under vuln, or EmptyLabel if absent.
func (ml MultiLabel) GetOrEmpty(vuln string) Label {
	return ml.labels[vuln]
}

// VulnNames returns the vuln names this MultiLabel carries a Label for.
// Order is unspecified; callers needing determinism should sort.
func (ml MultiLabel) VulnNames() []string {
	out := make([]string, 0, len(ml.labels))
	for name := range ml.labels {
		out = append(out, name)
	}
	return out
}

// IsEmpty reports whether this MultiLabel carries no vulns at all.
func (ml MultiLabel) IsEmpty() bool {
	return len(ml.labels) == 0
}

// Clone deep-copies a MultiLabel.
func (ml MultiLabel) Clone() MultiLabel {
	out := EmptyMultiLabel()
	for vuln, l := range ml.labels {
		out.labels[vuln] = l.Clone()
	}
	return out
}

// Combine is per-vuln Label.combine; entries present in only one side
// pass through unchanged (spec.md §3).
func (ml MultiLabel) Combine(other MultiLabel) MultiLabel {
	out := ml.Clone()
	for vuln, l := range other.labels {
		if existing, ok := out.labels[vuln]; ok {
			out.labels[vuln] = Combine(existing, l)
		} else {
			out.labels[vuln] = l.Clone()
		}
	}
	return out
}

// Sanitise applies Label.Sanitise(node) only under vulns whose pattern
// lists node.Name as a sanitizer (spec.md §3).
func (ml MultiLabel) Sanitise(pol *policy.Policy, node Node) MultiLabel {
	applicable := pol.VulnsBySanitizer(node.Name)
	if len(applicable) == 0 {
		return ml
	}
	applySet := make(map[string]struct{}, len(applicable))
	for _, name := range applicable {
		applySet[name] = struct{}{}
	}
	out := ml.Clone()
	for vuln, l := range out.labels {
		if _, ok := applySet[vuln]; ok {
			out.labels[vuln] = l.Sanitise(node)
		}
	}
	return out
}

// FixLineno applies Label.FixLineno(ln) to every entry.
func (ml MultiLabel) FixLineno(ln int) MultiLabel {
	out := ml.Clone()
	for vuln, l := range out.labels {
		out.labels[vuln] = l.FixLineno(ln)
	}
	return out
}

// Equal reports label_map equality: same vuln names, each mapped to
// structurally equal Labels.
func (ml MultiLabel) Equal(other MultiLabel) bool {
	if len(ml.labels) != len(other.labels) {
		return false
	}
	for vuln, l := range ml.labels {
		ol, ok := other.labels[vuln]
		if !ok || !l.Equal(ol) {
			return false
		}
	}
	return true
}

// IllegalFlowsMultiLabel is Policy.illegal_flows_multilabel (spec.md
// §4.1): a copy of ml with every vuln whose pattern does not declare
// node.Name as a sink removed. It lives here, not on Policy, so policy
// need not import lattice.
func IllegalFlowsMultiLabel(pol *policy.Policy, ml MultiLabel, node Node) MultiLabel {
	out := EmptyMultiLabel()
	for _, name := range pol.VulnsBySink(node.Name) {
		if l, ok := ml.labels[name]; ok {
			out.labels[name] = l.Clone()
		}
	}
	return out
}

// ImplicitPatternsMultiLabel is Policy.implicit_patterns_multilabel
// (spec.md §4.1): a copy of ml restricted to patterns with implicit=true.
func ImplicitPatternsMultiLabel(pol *policy.Policy, ml MultiLabel) MultiLabel {
	out := EmptyMultiLabel()
	implicit := pol.ImplicitVulns()
	for vuln, l := range ml.labels {
		if _, ok := implicit[vuln]; ok {
			out.labels[vuln] = l.Clone()
		}
	}
	return out
}
