package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/flowlattice/flowlattice/report"
)

// CSVFormatter formats findings as CSV.
type CSVFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewCSVFormatter creates a CSV formatter.
func NewCSVFormatter(opts *OutputOptions) *CSVFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &CSVFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewCSVFormatterWithWriter creates a formatter with custom writer (for testing).
func NewCSVFormatterWithWriter(w io.Writer, opts *OutputOptions) *CSVFormatter {
	cf := NewCSVFormatter(opts)
	cf.writer = w
	return cf
}

// CSVHeaders returns the CSV column headers.
func CSVHeaders() []string {
	return []string{
		"id",
		"vuln_name",
		"index",
		"source",
		"source_line",
		"sink",
		"sink_line",
		"unsanitized",
		"sanitized_via",
	}
}

// Format outputs all findings as CSV.
func (f *CSVFormatter) Format(findings []report.Finding) error {
	w := csv.NewWriter(f.writer)
	defer w.Flush()

	if err := w.Write(CSVHeaders()); err != nil {
		return err
	}

	for _, fd := range findings {
		if err := w.Write(f.buildRow(fd)); err != nil {
			return err
		}
	}

	return w.Error()
}

func (f *CSVFormatter) buildRow(fd report.Finding) []string {
	return []string{
		fd.ID(),
		fd.VulnName,
		strconv.Itoa(fd.Index),
		fd.Source.Name,
		strconv.Itoa(fd.Source.Line),
		fd.Sink.Name,
		strconv.Itoa(fd.Sink.Line),
		strconv.FormatBool(fd.UnsanitizedFlows),
		f.sanitizedFlowsCell(fd.SanitizedFlows),
	}
}

func (f *CSVFormatter) sanitizedFlowsCell(flows [][]report.Location) string {
	chains := make([]string, 0, len(flows))
	for _, chain := range flows {
		names := make([]string, 0, len(chain))
		for _, loc := range chain {
			names = append(names, loc.Name)
		}
		chains = append(chains, strings.Join(names, "->"))
	}
	return strings.Join(chains, "|")
}
