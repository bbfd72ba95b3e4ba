package policy

// Policy is an ordered collection of Patterns with indexed queries by
// source, sanitizer and sink name (spec.md §3, §4.1).
type Policy struct {
	patterns []*Pattern

	bySource    map[string][]*Pattern
	bySanitizer map[string][]*Pattern
	bySink      map[string][]*Pattern
}

// New builds a Policy from an ordered list of Patterns, building the
// source/sanitizer/sink indices once up front.
func New(patterns []*Pattern) *Policy {
	p := &Policy{
		patterns:    patterns,
		bySource:    make(map[string][]*Pattern),
		bySanitizer: make(map[string][]*Pattern),
		bySink:      make(map[string][]*Pattern),
	}
	for _, pat := range patterns {
		for name := range pat.Sources {
			p.bySource[name] = append(p.bySource[name], pat)
		}
		for name := range pat.Sanitizers {
			p.bySanitizer[name] = append(p.bySanitizer[name], pat)
		}
		for name := range pat.Sinks {
			p.bySink[name] = append(p.bySink[name], pat)
		}
	}
	return p
}

// Patterns returns the ordered list of patterns backing this policy.
func (p *Policy) Patterns() []*Pattern {
	return p.patterns
}

// PatternsBySource returns every pattern that declares name as a source.
func (p *Policy) PatternsBySource(name string) []*Pattern {
	return p.bySource[name]
}

// PatternsBySanitizer returns every pattern that declares name as a sanitizer.
func (p *Policy) PatternsBySanitizer(name string) []*Pattern {
	return p.bySanitizer[name]
}

// PatternsBySink returns every pattern that declares name as a sink.
func (p *Policy) PatternsBySink(name string) []*Pattern {
	return p.bySink[name]
}

// VulnsBySource returns the vulnerability names of patterns sourcing name.
func (p *Policy) VulnsBySource(name string) []string {
	return vulnNames(p.bySource[name])
}

// VulnsBySanitizer returns the vulnerability names of patterns sanitizing on name.
func (p *Policy) VulnsBySanitizer(name string) []string {
	return vulnNames(p.bySanitizer[name])
}

// VulnsBySink returns the vulnerability names of patterns sinking on name.
func (p *Policy) VulnsBySink(name string) []string {
	return vulnNames(p.bySink[name])
}

// NonSinkVulns returns the vulnerability names of every pattern that does
// NOT declare name as a sink — the complement of VulnsBySink(name).
func (p *Policy) NonSinkVulns(name string) map[string]struct{} {
	sinkVulns := make(map[string]struct{})
	for _, pat := range p.bySink[name] {
		sinkVulns[pat.VulnName] = struct{}{}
	}
	result := make(map[string]struct{})
	for _, pat := range p.patterns {
		if _, isSink := sinkVulns[pat.VulnName]; !isSink {
			result[pat.VulnName] = struct{}{}
		}
	}
	return result
}

// NonImplicitVulns returns the vulnerability names of patterns that do not
// track implicit flows.
func (p *Policy) NonImplicitVulns() map[string]struct{} {
	result := make(map[string]struct{})
	for _, pat := range p.patterns {
		if !pat.Implicit {
			result[pat.VulnName] = struct{}{}
		}
	}
	return result
}

// ImplicitVulns returns the vulnerability names of patterns that do track
// implicit flows.
func (p *Policy) ImplicitVulns() map[string]struct{} {
	result := make(map[string]struct{})
	for _, pat := range p.patterns {
		if pat.Implicit {
			result[pat.VulnName] = struct{}{}
		}
	}
	return result
}

// ImplicitPatterns returns the patterns that track implicit flows.
func (p *Policy) ImplicitPatterns() []*Pattern {
	var result []*Pattern
	for _, pat := range p.patterns {
		if pat.Implicit {
			result = append(result, pat)
		}
	}
	return result
}

// AllVulnNames returns every vulnerability name in the policy, in order.
func (p *Policy) AllVulnNames() []string {
	return vulnNames(p.patterns)
}

// PatternByVulnName looks up a single pattern by its unique vuln name.
func (p *Policy) PatternByVulnName(name string) (*Pattern, bool) {
	for _, pat := range p.patterns {
		if pat.VulnName == name {
			return pat, true
		}
	}
	return nil, false
}

func vulnNames(patterns []*Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, pat := range patterns {
		out = append(out, pat.VulnName)
	}
	return out
}
