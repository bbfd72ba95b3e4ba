// Package policy implements the vulnerability Pattern and Policy types
// (spec.md §3, §4.1): an ordered collection of Patterns with indexed
// queries by source/sanitizer/sink, plus a local+remote loading layer.
package policy

import (
	"encoding/json"
	"fmt"
)

// Pattern is an immutable vulnerability descriptor: a vulnerability name
// paired with the sets of identifier names that act as sources,
// sanitizers and sinks for it, and whether implicit (control-dependence)
// flows are tracked for it.
type Pattern struct {
	VulnName   string
	Sources    map[string]struct{}
	Sanitizers map[string]struct{}
	Sinks      map[string]struct{}
	Implicit   bool
}

// NewPattern builds a Pattern from plain string slices.
func NewPattern(vulnName string, sources, sanitizers, sinks []string, implicit bool) *Pattern {
	return &Pattern{
		VulnName:   vulnName,
		Sources:    toSet(sources),
		Sanitizers: toSet(sanitizers),
		Sinks:      toSet(sinks),
		Implicit:   implicit,
	}
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// HasSource reports whether name is declared as a source of this pattern.
func (p *Pattern) HasSource(name string) bool {
	_, ok := p.Sources[name]
	return ok
}

// HasSanitizer reports whether name is declared as a sanitizer of this pattern.
func (p *Pattern) HasSanitizer(name string) bool {
	_, ok := p.Sanitizers[name]
	return ok
}

// HasSink reports whether name is declared as a sink of this pattern.
func (p *Pattern) HasSink(name string) bool {
	_, ok := p.Sinks[name]
	return ok
}

// patternJSON mirrors the external policy-file shape from spec.md §6.
//
//nolint:tagliatelle // external schema is snake_case by spec
type patternJSON struct {
	Vulnerability string   `json:"vulnerability"`
	Sources       []string `json:"sources"`
	Sanitizers    []string `json:"sanitizers"`
	Sinks         []string `json:"sinks"`
	Implicit      string   `json:"implicit"`
}

// UnmarshalJSON decodes a Pattern from the spec.md §6 policy entry shape.
// implicit is true iff the literal string "yes" (spec.md §6).
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var raw patternJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Vulnerability == "" {
		return &MalformedPolicyError{Reason: "missing required key \"vulnerability\""}
	}
	if raw.Sinks == nil {
		return &MalformedPolicyError{Reason: fmt.Sprintf("pattern %q missing required key \"sinks\"", raw.Vulnerability)}
	}
	p.VulnName = raw.Vulnerability
	p.Sources = toSet(raw.Sources)
	p.Sanitizers = toSet(raw.Sanitizers)
	p.Sinks = toSet(raw.Sinks)
	p.Implicit = raw.Implicit == "yes"
	return nil
}

// MarshalJSON encodes a Pattern back to the spec.md §6 shape.
func (p *Pattern) MarshalJSON() ([]byte, error) {
	implicit := "no"
	if p.Implicit {
		implicit = "yes"
	}
	return json.Marshal(patternJSON{
		Vulnerability: p.VulnName,
		Sources:       fromSet(p.Sources),
		Sanitizers:    fromSet(p.Sanitizers),
		Sinks:         fromSet(p.Sinks),
		Implicit:      implicit,
	})
}

func fromSet(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	return out
}

// MalformedPolicyError is returned when a policy document is missing a
// required key (spec.md §7: "malformed policy: fatal").
type MalformedPolicyError struct {
	Reason string
}

func (e *MalformedPolicyError) Error() string {
	return fmt.Sprintf("malformed policy: %s", e.Reason)
}
