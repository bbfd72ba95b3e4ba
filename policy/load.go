package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a policy document from disk. JSON is the normative format
// (spec.md §6); a YAML twin is accepted too, for the same reason the
// teacher's rule bundles ship as YAML-friendly manifests.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied CLI input
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}

	patterns, err := decode(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	return New(patterns), nil
}

// LoadBytes decodes a policy document already in memory, guessing the
// format from content (YAML policies never start with '[').
func LoadBytes(data []byte) (*Policy, error) {
	ext := ""
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		ext = ".yaml"
	}
	patterns, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	return New(patterns), nil
}

func decode(data []byte, ext string) ([]*Pattern, error) {
	switch ext {
	case ".yaml", ".yml":
		var raw []map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &MalformedPolicyError{Reason: err.Error()}
		}
		// Round-trip through JSON so YAML documents reuse the exact
		// same validation as the normative JSON decoder.
		jsonBytes, err := json.Marshal(raw)
		if err != nil {
			return nil, &MalformedPolicyError{Reason: err.Error()}
		}
		return decodeJSON(jsonBytes)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]*Pattern, error) {
	var patterns []*Pattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, &MalformedPolicyError{Reason: err.Error()}
	}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if seen[p.VulnName] {
			return nil, &MalformedPolicyError{Reason: fmt.Sprintf("duplicate vulnerability name %q", p.VulnName)}
		}
		seen[p.VulnName] = true
	}
	return patterns, nil
}
