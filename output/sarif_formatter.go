package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/flowlattice/flowlattice/report"
)

// SARIFFormatter formats findings as SARIF 2.1.0.
type SARIFFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewSARIFFormatter creates a SARIF formatter.
func NewSARIFFormatter(opts *OutputOptions) *SARIFFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &SARIFFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewSARIFFormatterWithWriter creates a formatter with custom writer (for testing).
func NewSARIFFormatterWithWriter(w io.Writer, opts *OutputOptions) *SARIFFormatter {
	sf := NewSARIFFormatter(opts)
	sf.writer = w
	return sf
}

// Format outputs all findings as SARIF.
func (f *SARIFFormatter) Format(findings []report.Finding, scanInfo ScanInfo) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("Flowlattice", "https://github.com/flowlattice/flowlattice")

	f.buildRules(findings, run)
	for _, fd := range findings {
		f.buildResult(fd, run, scanInfo.Target)
	}

	doc.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func (f *SARIFFormatter) buildRules(findings []report.Finding, run *sarif.Run) {
	seen := make(map[string]bool)

	for _, fd := range findings {
		if seen[fd.VulnName] {
			continue
		}
		seen[fd.VulnName] = true

		level := "warning"
		if fd.UnsanitizedFlows {
			level = "error"
		}

		run.AddRule(fd.VulnName).
			WithDescription(fmt.Sprintf("Tainted data reaches a %s sink", fd.VulnName)).
			WithName(fd.VulnName).
			WithHelpURI("https://github.com/flowlattice/flowlattice").
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level))
	}
}

func (f *SARIFFormatter) buildResult(fd report.Finding, run *sarif.Run, target string) {
	message := fmt.Sprintf("%q flows from %s (line %d) to %s (line %d)",
		fd.VulnName, fd.Source.Name, fd.Source.Line, fd.Sink.Name, fd.Sink.Line)
	if !fd.UnsanitizedFlows {
		message += " (all flows pass through a sanitizer)"
	}

	result := run.CreateResultForRule(fd.VulnName).
		WithMessage(sarif.NewTextMessage(message))

	result.AddLocation(
		sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(target)).
				WithRegion(sarif.NewRegion().WithStartLine(fd.Sink.Line)),
		),
	)

	f.addCodeFlow(fd, result, target)
}

func (f *SARIFFormatter) addCodeFlow(fd report.Finding, result *sarif.Result, target string) {
	sourceLocation := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(target)).
				WithRegion(sarif.NewRegion().WithStartLine(fd.Source.Line)),
		).
		WithMessage(sarif.NewTextMessage("Taint source: " + fd.Source.Name))

	sinkLocation := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(target)).
				WithRegion(sarif.NewRegion().WithStartLine(fd.Sink.Line)),
		).
		WithMessage(sarif.NewTextMessage("Taint sink: " + fd.Sink.Name))

	threadFlow := sarif.NewThreadFlow().
		WithLocations([]*sarif.ThreadFlowLocation{
			sarif.NewThreadFlowLocation().WithLocation(sourceLocation),
			sarif.NewThreadFlowLocation().WithLocation(sinkLocation),
		})

	flowMsg := fmt.Sprintf("Taint flow from line %d to line %d", fd.Source.Line, fd.Sink.Line)
	codeFlow := sarif.NewCodeFlow().
		WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
		WithMessage(sarif.NewTextMessage(flowMsg))

	result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
}
