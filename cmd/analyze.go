package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flowlattice/flowlattice/analytics"
	"github.com/flowlattice/flowlattice/frontend/pyast"
	"github.com/flowlattice/flowlattice/lattice"
	"github.com/flowlattice/flowlattice/output"
	"github.com/flowlattice/flowlattice/policy"
	"github.com/flowlattice/flowlattice/report"
	"github.com/flowlattice/flowlattice/visitor"
	"github.com/spf13/cobra"
)

var (
	policyPath    string
	bundleSpecs   []string
	refreshRules  bool
	projectPath   string
	outputFormat  string
	outputFile    string
	failOnFinding bool
	skipPatterns  []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run taint analysis over a project",
	Long: `Analyze walks a project for source files, parses each into the engine's
AST, runs the abstract-interpretation taint engine against a policy, and
reports any tainted flow that reaches a declared sink.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&policyPath, "policy", "", "Path to a local policy file (JSON or YAML)")
	analyzeCmd.Flags().StringSliceVar(&bundleSpecs, "bundle", nil, "Remote policy bundle spec(s) (category/bundle)")
	analyzeCmd.Flags().BoolVar(&refreshRules, "refresh-bundles", false, "Bypass the bundle cache and refetch")
	analyzeCmd.Flags().StringVar(&projectPath, "project", ".", "Project directory to analyze")
	analyzeCmd.Flags().StringVar(&outputFormat, "output", "json", "Output format: json, text, sarif, csv")
	analyzeCmd.Flags().StringVar(&outputFile, "output-file", "", "Write output to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&failOnFinding, "fail-on-finding", false, "Exit 1 if any finding is reported")
	analyzeCmd.Flags().StringSliceVar(&skipPatterns, "skip", nil, "Glob patterns of files to skip")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	verbosity := output.VerbosityDefault
	if verboseFlag {
		verbosity = output.VerbosityVerbose
	}
	logger := output.NewLogger(verbosity)

	analytics.ReportEvent(analytics.AnalyzeStarted)

	pol, err := loadPolicy(logger)
	if err != nil {
		analytics.ReportEvent(analytics.AnalyzeFailed)
		return fmt.Errorf("loading policy: %w", err)
	}

	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		analytics.ReportEvent(analytics.AnalyzeFailed)
		return fmt.Errorf("resolving project path: %w", err)
	}

	files, err := discoverPythonFiles(absProject, skipPatterns)
	if err != nil {
		analytics.ReportEvent(analytics.AnalyzeFailed)
		return fmt.Errorf("discovering source files: %w", err)
	}
	logger.Progress("analyzing %d file(s) under %s", len(files), absProject)

	merged := lattice.NewVulnerabilities()
	var iterErrors []string
	for _, path := range files {
		vulns, err := analyzeFile(pol, path)
		if err != nil {
			iterErrors = append(iterErrors, fmt.Sprintf("%s: %v", path, err))
			logger.Warning("skipping %s: %v", path, err)
			continue
		}
		merged = lattice.CombineVulnerabilities(merged, vulns)
	}

	findings := report.Build(merged)
	logger.Statistic("%d finding(s) across %d file(s)", len(findings), len(files))

	if err := writeFindings(findings, absProject, start, len(pol.Patterns()), iterErrors); err != nil {
		analytics.ReportEvent(analytics.AnalyzeFailed)
		return fmt.Errorf("writing output: %w", err)
	}

	analytics.ReportEventWithProperties(analytics.AnalyzeCompleted, map[string]interface{}{
		"findings":       len(findings),
		"files_analyzed": len(files),
	})

	hadErrors := len(iterErrors) > 0
	exitCode := output.DetermineExitCode(findings, failOnFinding, hadErrors)
	if exitCode != output.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}

func loadPolicy(logger *output.Logger) (*policy.Policy, error) {
	local := policy.New(nil)
	if policyPath != "" {
		pol, err := policy.Load(policyPath)
		if err != nil {
			return nil, err
		}
		local = pol
	}

	if len(bundleSpecs) == 0 {
		if policyPath == "" {
			return nil, fmt.Errorf("no policy provided: pass --policy or --bundle")
		}
		return local, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	downloader, err := policy.NewDownloader(&policy.DownloadConfig{
		BaseURL:       "https://bundles.flowlattice.dev",
		CacheDir:      filepath.Join(homeDir, ".flowlattice", "bundles"),
		CacheTTL:      24 * time.Hour,
		HTTPTimeout:   10 * time.Second,
		RetryAttempts: 3,
	})
	if err != nil {
		return nil, err
	}

	if refreshRules {
		for _, spec := range bundleSpecs {
			bundleSpec, err := policy.ParseBundleSpec(spec)
			if err != nil {
				return nil, err
			}
			if err := downloader.RefreshCache(bundleSpec.Category, bundleSpec.Bundle); err != nil {
				logger.Warning("refreshing bundle %s: %v", spec, err)
			}
		}
	}

	return policy.Resolve(local, downloader, bundleSpecs)
}

func analyzeFile(pol *policy.Policy, path string) (*lattice.Vulnerabilities, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	program, err := pyast.Parse(source)
	if err != nil {
		return nil, err
	}
	v := visitor.New(pol)
	return v.Run(program)
}

func discoverPythonFiles(root string, skip []string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil {
			for _, pattern := range skip {
				if matched, _ := filepath.Match(pattern, rel); matched {
					return nil
				}
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func writeFindings(findings []report.Finding, target string, start time.Time, rulesExecuted int, errs []string) error {
	w := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeFormat(f, findings, target, start, rulesExecuted, errs)
	}
	return writeFormat(w, findings, target, start, rulesExecuted, errs)
}

func writeFormat(w *os.File, findings []report.Finding, target string, start time.Time, rulesExecuted int, errs []string) error {
	opts := output.NewDefaultOptions()
	opts.ProjectRoot = target

	switch output.OutputFormat(outputFormat) {
	case output.FormatJSON:
		return report.WriteJSON(w, findings)
	case output.FormatText:
		summary := output.BuildSummary(findings, rulesExecuted)
		return output.NewTextFormatterWithWriter(w, opts, nil).Format(findings, summary)
	case output.FormatSARIF:
		info := output.ScanInfo{
			Target:        target,
			Version:       Version,
			Duration:      time.Since(start),
			RulesExecuted: rulesExecuted,
			Errors:        errs,
		}
		return output.NewSARIFFormatterWithWriter(w, opts).Format(findings, info)
	case output.FormatCSV:
		return output.NewCSVFormatterWithWriter(w, opts).Format(findings)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
