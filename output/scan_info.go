package output

import "time"

// ScanInfo contains metadata about an analysis run, used by formatters
// that embed run-level context alongside their findings (SARIF).
type ScanInfo struct {
	Target        string
	Version       string
	Duration      time.Duration
	RulesExecuted int
	Errors        []string
}
