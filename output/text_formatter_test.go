package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatter_Format_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatterWithWriter(&buf, NewDefaultOptions(), nil)

	err := f.Format(nil, BuildSummary(nil, 0))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No tainted flows found.")
}

func TestTextFormatter_Format_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatterWithWriter(&buf, NewDefaultOptions(), nil)
	findings := sampleFindings()

	err := f.Format(findings, BuildSummary(findings, 1))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sqli_1")
	assert.Contains(t, out, "unsanitized")
	assert.Contains(t, out, "sqli_2")
	assert.Contains(t, out, "sanitized")
	assert.Contains(t, out, "user_input")
	assert.Contains(t, out, "execute")
	assert.Contains(t, out, "2 findings across 1 vulnerability patterns")
}

func TestTextFormatter_Format_Statistics(t *testing.T) {
	var buf bytes.Buffer
	opts := NewDefaultOptions()
	opts.Verbosity = VerbosityVerbose
	f := NewTextFormatterWithWriter(&buf, opts, nil)
	findings := sampleFindings()

	err := f.Format(findings, BuildSummary(findings, 1))
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "Findings by vulnerability:"))
}

func TestBuildSummary(t *testing.T) {
	findings := sampleFindings()
	summary := BuildSummary(findings, 3)

	assert.Equal(t, 2, summary.TotalFindings)
	assert.Equal(t, 3, summary.RulesExecuted)
	assert.Equal(t, 2, summary.ByDetectionType["sqli"])
}
