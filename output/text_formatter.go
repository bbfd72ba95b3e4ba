package output

import (
	"fmt"
	"io"
	"os"

	"github.com/flowlattice/flowlattice/report"
)

// TextFormatter formats findings as human-readable text.
type TextFormatter struct {
	writer  io.Writer
	options *OutputOptions
	logger  *Logger
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts *OutputOptions, logger *Logger) *TextFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &TextFormatter{
		writer:  os.Stdout,
		options: opts,
		logger:  logger,
	}
}

// NewTextFormatterWithWriter creates a formatter with custom writer (for testing).
func NewTextFormatterWithWriter(w io.Writer, opts *OutputOptions, logger *Logger) *TextFormatter {
	tf := NewTextFormatter(opts, logger)
	tf.writer = w
	return tf
}

// Format outputs all findings as formatted text.
func (f *TextFormatter) Format(findings []report.Finding, summary *Summary) error {
	if len(findings) == 0 {
		f.writeNoFindings()
		return nil
	}

	f.writeHeader()
	f.writeResults(findings)
	f.writeSummary(summary)

	if f.options.ShouldShowStatistics() {
		f.writeStatistics(summary)
	}

	return nil
}

func (f *TextFormatter) writeHeader() {
	fmt.Fprintln(f.writer, "Flowlattice Taint Analysis")
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeNoFindings() {
	fmt.Fprintln(f.writer, "Flowlattice Taint Analysis")
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "No tainted flows found.")
}

func (f *TextFormatter) writeResults(findings []report.Finding) {
	fmt.Fprintln(f.writer, "Results:")
	fmt.Fprintln(f.writer)

	grouped := f.groupByVulnName(findings)
	for _, vuln := range vulnNamesInOrder(findings) {
		f.writeVulnGroup(vuln, grouped[vuln])
	}
}

func (f *TextFormatter) groupByVulnName(findings []report.Finding) map[string][]report.Finding {
	grouped := make(map[string][]report.Finding)
	for _, fd := range findings {
		grouped[fd.VulnName] = append(grouped[fd.VulnName], fd)
	}
	return grouped
}

func vulnNamesInOrder(findings []report.Finding) []string {
	var order []string
	seen := make(map[string]bool)
	for _, fd := range findings {
		if !seen[fd.VulnName] {
			seen[fd.VulnName] = true
			order = append(order, fd.VulnName)
		}
	}
	return order
}

func (f *TextFormatter) writeVulnGroup(vuln string, findings []report.Finding) {
	fmt.Fprintf(f.writer, "%s (%d):\n", vuln, len(findings))
	fmt.Fprintln(f.writer)

	for _, fd := range findings {
		f.writeFinding(fd)
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeFinding(fd report.Finding) {
	fmt.Fprintf(f.writer, "  [%s] %s\n", fd.ID(), f.sanitationBadge(fd))
	fmt.Fprintf(f.writer, "    Source: %s (line %d)\n", fd.Source.Name, fd.Source.Line)
	fmt.Fprintf(f.writer, "    Sink:   %s (line %d)\n", fd.Sink.Name, fd.Sink.Line)

	if len(fd.SanitizedFlows) > 0 {
		f.writeSanitizedFlows(fd.SanitizedFlows)
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) sanitationBadge(fd report.Finding) string {
	if fd.UnsanitizedFlows {
		return "unsanitized"
	}
	return "sanitized"
}

func (f *TextFormatter) writeSanitizedFlows(flows [][]report.Location) {
	fmt.Fprintln(f.writer, "    Sanitized via:")
	for _, chain := range flows {
		if len(chain) == 0 {
			fmt.Fprintln(f.writer, "      (direct)")
			continue
		}
		for i, loc := range chain {
			if i == 0 {
				fmt.Fprintf(f.writer, "      %s (line %d)", loc.Name, loc.Line)
			} else {
				fmt.Fprintf(f.writer, " -> %s (line %d)", loc.Name, loc.Line)
			}
		}
		fmt.Fprintln(f.writer)
	}
}

func (f *TextFormatter) writeSummary(summary *Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d findings across %d vulnerability patterns\n",
		summary.TotalFindings, summary.RulesExecuted)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeStatistics(summary *Summary) {
	fmt.Fprintln(f.writer, "Findings by vulnerability:")
	for vuln, count := range summary.ByDetectionType {
		fmt.Fprintf(f.writer, "  %s: %d\n", vuln, count)
	}
	fmt.Fprintln(f.writer)
}

// Summary holds aggregated statistics.
type Summary struct {
	TotalFindings   int
	RulesExecuted   int
	ByDetectionType map[string]int
	FilesScanned    int
	Duration        string
}

// BuildSummary creates a summary from a set of findings.
func BuildSummary(findings []report.Finding, rulesExecuted int) *Summary {
	summary := &Summary{
		TotalFindings:   len(findings),
		RulesExecuted:   rulesExecuted,
		ByDetectionType: make(map[string]int),
	}

	for _, fd := range findings {
		summary.ByDetectionType[fd.VulnName]++
	}

	return summary
}
