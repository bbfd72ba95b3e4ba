package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/flowlattice/flowlattice/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFindings() []report.Finding {
	return []report.Finding{
		{
			VulnName:         "sqli",
			Index:            1,
			Source:           report.Location{Name: "user_input", Line: 3},
			Sink:             report.Location{Name: "execute", Line: 10},
			UnsanitizedFlows: true,
		},
		{
			VulnName: "sqli",
			Index:    2,
			Source:   report.Location{Name: "user_input", Line: 3},
			Sink:     report.Location{Name: "execute", Line: 14},
			SanitizedFlows: [][]report.Location{
				{{Name: "escape", Line: 12}},
			},
		},
	}
}

func TestCSVFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	f := NewCSVFormatterWithWriter(&buf, NewDefaultOptions())

	err := f.Format(sampleFindings())
	require.NoError(t, err)

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 findings

	assert.Equal(t, CSVHeaders(), rows[0])
	assert.Equal(t, "sqli_1", rows[1][0])
	assert.Equal(t, "true", rows[1][7])
	assert.Equal(t, "sqli_2", rows[2][0])
	assert.Equal(t, "false", rows[2][7])
	assert.Equal(t, "escape", rows[2][8])
}

func TestCSVFormatter_Format_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := NewCSVFormatterWithWriter(&buf, nil)

	err := f.Format(nil)
	require.NoError(t, err)

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, CSVHeaders(), rows[0])
}
