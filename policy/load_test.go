package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	contents := `[{"vulnerability":"sqli","sources":["input"],"sanitizers":["escape"],"sinks":["execute"],"implicit":"no"}]`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	pol, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pol.Patterns(), 1)
	assert.Equal(t, "sqli", pol.Patterns()[0].VulnName)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	contents := `
- vulnerability: xss
  sources:
    - input
  sanitizers:
    - escape_html
  sinks:
    - render
  implicit: "yes"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	pol, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pol.Patterns(), 1)
	assert.Equal(t, "xss", pol.Patterns()[0].VulnName)
	assert.True(t, pol.Patterns()[0].Implicit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/policy.json")
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not valid json`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var malformed *MalformedPolicyError
	assert.ErrorAs(t, err, &malformed)
}

func TestLoad_DuplicateVulnName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	contents := `[
		{"vulnerability":"sqli","sources":["a"],"sinks":["b"]},
		{"vulnerability":"sqli","sources":["c"],"sinks":["d"]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var malformed *MalformedPolicyError
	assert.ErrorAs(t, err, &malformed)
}

func TestLoadBytes_GuessesJSON(t *testing.T) {
	pol, err := LoadBytes([]byte(`[{"vulnerability":"sqli","sources":["input"],"sinks":["execute"]}]`))
	require.NoError(t, err)
	require.Len(t, pol.Patterns(), 1)
}

func TestLoadBytes_GuessesYAML(t *testing.T) {
	contents := "- vulnerability: sqli\n  sources: [input]\n  sinks: [execute]\n"
	pol, err := LoadBytes([]byte(contents))
	require.NoError(t, err)
	require.Len(t, pol.Patterns(), 1)
	assert.Equal(t, "sqli", pol.Patterns()[0].VulnName)
}
