package output

import "github.com/flowlattice/flowlattice/report"

// ExitCode represents the exit code for the CLI.
type ExitCode int

const (
	// ExitCodeSuccess indicates successful execution with no findings, or
	// findings present but --fail-on-finding was not requested.
	ExitCodeSuccess ExitCode = 0

	// ExitCodeFindings indicates findings were reported and --fail-on-finding
	// was requested.
	ExitCodeFindings ExitCode = 1

	// ExitCodeError indicates configuration or execution error.
	ExitCodeError ExitCode = 2
)

// DetermineExitCode calculates the appropriate exit code based on findings,
// whether the caller asked to fail the run on any finding, and whether
// errors occurred during execution.
//
// Exit code precedence:
// 1. ExitCodeError (2) - if hadErrors is true.
// 2. ExitCodeFindings (1) - if failOnFinding is true and len(findings) > 0.
// 3. ExitCodeSuccess (0) - otherwise.
func DetermineExitCode(findings []report.Finding, failOnFinding bool, hadErrors bool) ExitCode {
	if hadErrors {
		return ExitCodeError
	}
	if failOnFinding && len(findings) > 0 {
		return ExitCodeFindings
	}
	return ExitCodeSuccess
}
