package lattice

import "github.com/flowlattice/flowlattice/policy"

// observation is one (Label, sink_node) entry of a vuln's list.
type observation struct {
	Label Label
	Sink  Node
}

// Vulnerabilities is a mapping vuln_name -> list of (Label, sink_node)
// observations, each unique within its list (spec.md §3).
type Vulnerabilities struct {
	byVuln map[string][]observation
	order  []string
}

// NewVulnerabilities returns an empty Vulnerabilities accumulator.
func NewVulnerabilities() *Vulnerabilities {
	return &Vulnerabilities{byVuln: make(map[string][]observation)}
}

// AddVulnerability is spec.md §4.5's add_vulnerability(policy, ml,
// sink_node): restrict ml to vulns whose pattern declares sink.Name as
// a sink, then append each (Label, sink) pair to that vuln's
// observation list unless already present by structural equality.
func (v *Vulnerabilities) AddVulnerability(pol *policy.Policy, ml MultiLabel, sink Node) {
	restricted := IllegalFlowsMultiLabel(pol, ml, sink)
	for _, vuln := range restricted.VulnNames() {
		label, _ := restricted.Get(vuln)
		v.add(vuln, label, sink)
	}
}

func (v *Vulnerabilities) add(vuln string, label Label, sink Node) {
	existing := v.byVuln[vuln]
	for _, obs := range existing {
		if obs.Sink == sink && obs.Label.Equal(label) {
			return
		}
	}
	if len(existing) == 0 {
		v.order = append(v.order, vuln)
	}
	v.byVuln[vuln] = append(existing, observation{Label: label, Sink: sink})
}

// VulnNames returns the vuln names with at least one observation, in
// the order each vuln name was first observed.
func (v *Vulnerabilities) VulnNames() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Observations returns the (Label, sink) list for vuln, in the order
// they were first recorded.
func (v *Vulnerabilities) Observations(vuln string) []struct {
	Label Label
	Sink  Node
} {
	raw := v.byVuln[vuln]
	out := make([]struct {
		Label Label
		Sink  Node
	}, len(raw))
	for i, obs := range raw {
		out[i] = struct {
			Label Label
			Sink  Node
		}{Label: obs.Label, Sink: obs.Sink}
	}
	return out
}

// Clone deep-copies a Vulnerabilities accumulator, the way a branch
// fork needs to (spec.md §4.4's If/While/Match forking).
func (v *Vulnerabilities) Clone() *Vulnerabilities {
	out := NewVulnerabilities()
	out.order = append(out.order, v.order...)
	for vuln, obs := range v.byVuln {
		cloned := make([]observation, len(obs))
		for i, o := range obs {
			cloned[i] = observation{Label: o.Label.Clone(), Sink: o.Sink}
		}
		out.byVuln[vuln] = cloned
	}
	return out
}

// CombineVulnerabilities merges b's observations into a fresh Vulnerabilities built
// from a, preserving a's vuln order and appending any vuln names only
// b has, then de-duplicating by (Label, sink) as AddVulnerability does.
// Used to fold a branch fork's findings back into the surviving state
// at conciliation (spec.md §4.4).
func CombineVulnerabilities(a, b *Vulnerabilities) *Vulnerabilities {
	out := a.Clone()
	for _, vuln := range b.order {
		for _, obs := range b.byVuln[vuln] {
			out.add(vuln, obs.Label, obs.Sink)
		}
	}
	return out
}
