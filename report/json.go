package report

import (
	"encoding/json"
	"io"
)

// record is the exact wire shape of one vulnerability record
// (spec.md §6): source/sink are 2-element [name, line] tuples, not
// objects, so it carries its own MarshalJSON.
type record struct {
	Vulnerability    string     `json:"vulnerability"`
	Source           tuple      `json:"source"`
	Sink             tuple      `json:"sink"`
	UnsanitizedFlows string     `json:"unsanitized_flows"` //nolint:tagliatelle
	SanitizedFlows   [][]tuple  `json:"sanitized_flows"`   //nolint:tagliatelle
}

// tuple renders a Location as the two-element JSON array [name, line]
// the schema requires, rather than a {"name":...,"line":...} object.
type tuple Location

func (t tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{t.Name, t.Line})
}

func toRecord(f Finding) record {
	flows := make([][]tuple, len(f.SanitizedFlows))
	for i, flow := range f.SanitizedFlows {
		row := make([]tuple, len(flow))
		for j, loc := range flow {
			row[j] = tuple(loc)
		}
		flows[i] = row
	}
	unsanitized := "no"
	if f.UnsanitizedFlows {
		unsanitized = "yes"
	}
	return record{
		Vulnerability:    f.ID(),
		Source:           tuple(f.Source),
		Sink:             tuple(f.Sink),
		UnsanitizedFlows: unsanitized,
		SanitizedFlows:   flows,
	}
}

// WriteJSON writes findings as the JSON array of vulnerability records
// spec.md §6 defines, in the order given.
func WriteJSON(w io.Writer, findings []Finding) error {
	records := make([]record, len(findings))
	for i, f := range findings {
		records[i] = toRecord(f)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// MarshalJSON renders findings as the same JSON array WriteJSON
// writes, for callers that want the bytes rather than a stream.
func MarshalJSON(findings []Finding) ([]byte, error) {
	records := make([]record, len(findings))
	for i, f := range findings {
		records[i] = toRecord(f)
	}
	return json.MarshalIndent(records, "", "  ")
}
