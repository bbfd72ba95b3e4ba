// Package report renders a lattice.Vulnerabilities accumulator into
// the JSON vulnerability records external consumers read.
package report

import (
	"fmt"

	"github.com/flowlattice/flowlattice/lattice"
)

// Location is a (name, line) pair as it appears in "source" and
// "sink" fields.
type Location struct {
	Name string
	Line int
}

// Finding is one flattened (source_pair, sink) observation: the unit
// the output schema numbers with "<base_name>_<index>".
type Finding struct {
	VulnName         string
	Index            int
	Source           Location
	Sink             Location
	UnsanitizedFlows bool
	SanitizedFlows   [][]Location
}

// ID is the "<base_name>_<index>" identifier used in the JSON record.
func (f Finding) ID() string {
	return fmt.Sprintf("%s_%d", f.VulnName, f.Index)
}

// Build flattens a Vulnerabilities accumulator into Findings: every
// (source_pair, sink) pair of every observation of every vuln name
// becomes its own Finding, numbered with a 1-based counter per vuln
// name in insertion order (spec.md §6).
func Build(vulns *lattice.Vulnerabilities) []Finding {
	var out []Finding
	for _, vuln := range vulns.VulnNames() {
		index := 1
		for _, obs := range vulns.Observations(vuln) {
			for _, pair := range obs.Label.Pairs() {
				out = append(out, Finding{
					VulnName:         vuln,
					Index:            index,
					Source:           Location{Name: pair.Source.Name, Line: pair.Source.Line},
					Sink:             Location{Name: obs.Sink.Name, Line: obs.Sink.Line},
					UnsanitizedFlows: hasUnsanitizedFlow(pair.Flows),
					SanitizedFlows:   sanitizedFlows(pair.Flows),
				})
				index++
			}
		}
	}
	return out
}

func hasUnsanitizedFlow(flows []lattice.Chain) bool {
	for _, flow := range flows {
		if len(flow) == 0 {
			return true
		}
	}
	return false
}

func sanitizedFlows(flows []lattice.Chain) [][]Location {
	out := make([][]Location, 0, len(flows))
	for _, flow := range flows {
		if len(flow) == 0 {
			continue
		}
		locs := make([]Location, len(flow))
		for i, n := range flow {
			locs[i] = Location{Name: n.Name, Line: n.Line}
		}
		out = append(out, locs)
	}
	return out
}
