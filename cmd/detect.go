package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/TheAuditorTool/auditor-core/analytics"
	"github.com/TheAuditorTool/auditor-core/dsl"
	"github.com/TheAuditorTool/auditor-core/errs"
	"github.com/TheAuditorTool/auditor-core/output"
	"github.com/TheAuditorTool/auditor-core/rules"
	"github.com/TheAuditorTool/auditor-core/schema"
	"github.com/TheAuditorTool/auditor-core/storage"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect-patterns [path]",
	Short: "Run the rule engine and emit consolidated findings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDetectPatterns,
}

func init() {
	detectCmd.Flags().String("format", "text", "output format: text, json, csv, sarif")
	detectCmd.Flags().String("fail-on", "", "comma-separated severities that cause a non-zero exit")
	detectCmd.Flags().String("correlations", "", "directory of correlation rule YAML files")
	rootCmd.AddCommand(detectCmd)
}

func runDetectPatterns(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	format, _ := cmd.Flags().GetString("format")
	failOnRaw, _ := cmd.Flags().GetString("fail-on")
	correlationsDir, _ := cmd.Flags().GetString("correlations")

	failOn := output.ParseFailOn(failOnRaw)
	if err := output.ValidateSeverities(failOn); err != nil {
		return err
	}

	logger := output.NewLogger(output.VerbosityDefault)
	if verboseFlag {
		logger = output.NewLogger(output.VerbosityVerbose)
	}

	analytics.ReportEvent(analytics.StageStarted)
	stop := logger.StartTiming("detect-patterns")
	detections, hadErrors, err := detectPatterns(cmd.Context(), root, format, correlationsDir, failOn, logger)
	duration := logger.GetTiming("detect-patterns")
	stop()

	report := &errs.Report{}
	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "detect-patterns", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}

	analytics.ReportEventWithProperties(analytics.StageCompleted, map[string]interface{}{
		"stage":      "detect-patterns",
		"duration":   duration.String(),
		"detections": len(detections),
	})

	exitCode := output.DetermineExitCode(detections, failOn, hadErrors)
	switch exitCode {
	case output.ExitCodeError:
		return fmt.Errorf("detect-patterns: completed with errors")
	case output.ExitCodeFindings:
		return fmt.Errorf("detect-patterns: %d finding(s) at or above fail-on threshold", len(detections))
	default:
		return nil
	}
}

// detectPatterns runs every ScopeDatabase rule against repo_index.db,
// merges in any taint_findings.json left by a prior taint-analyze run, and
// writes that merged set to .pf/raw/findings.json. It then enriches the set
// with source snippets, appends any --correlations composite findings, and
// renders the result in the requested format on stdout.
func detectPatterns(ctx context.Context, root, format, correlationsDir string, failOn []string, logger *output.Logger) ([]*dsl.EnrichedDetection, bool, error) {
	reg := schema.NewRegistry()

	dbPath := filepath.Join(pfRoot(root), "repo_index.db")
	db, err := storage.Open(dbPath, reg)
	if err != nil {
		return nil, true, fmt.Errorf("detect-patterns: open repo_index.db: %w", err)
	}
	defer db.Close()

	registry := rules.NewRegistry()
	registry.Register(rules.PatternFindingRule(reg))
	registry.Register(rules.MissingAPIAuthRule(reg))
	registry.Register(rules.HardcodedJWTSecretRule(reg))
	registry.Register(rules.HardcodedSecretRule(reg))
	registry.Register(rules.PythonGlobalMutableStateRule(reg, rules.PythonGlobalsConfig{ExcludeUnderscorePrefixed: true}))

	logger.Progress("running database-scoped rules")
	findings := registry.RunDatabase(ctx, db)

	taintFindings, err := readFindings(root, "taint_findings")
	if err != nil {
		return nil, true, fmt.Errorf("detect-patterns: %w", err)
	}
	if len(taintFindings) > 0 {
		logger.Progress("merging %d taint-analyze finding(s)", len(taintFindings))
		findings = append(findings, taintFindings...)
	}

	if err := writeFindings(root, "findings", findings); err != nil {
		return nil, true, fmt.Errorf("detect-patterns: %w", err)
	}

	opts := output.NewDefaultOptions()
	opts.ProjectRoot = root
	opts.FailOn = failOn
	opts.Format = output.OutputFormat(format)

	enricher := output.NewEnricher(opts)
	detections, err := enricher.EnrichAll(findings)
	if err != nil {
		return nil, true, fmt.Errorf("detect-patterns: enrich: %w", err)
	}

	if correlationsDir != "" {
		correlationRules, err := rules.LoadCorrelationRules(correlationsDir)
		if err != nil {
			return nil, true, fmt.Errorf("detect-patterns: load correlations: %w", err)
		}
		if len(correlationRules) > 0 {
			correlated := rules.Correlate(correlationRules, findings)
			logger.Progress("correlation produced %d combined finding(s)", len(correlated))
			for _, c := range correlated {
				detections = append(detections, c.ToEnrichedDetection())
			}
		}
	}

	summary := output.BuildSummary(detections, len(registry.Rules()))
	scanInfo := output.ScanInfo{Target: root, RulesExecuted: len(registry.Rules())}

	switch opts.Format {
	case output.FormatJSON:
		err = output.NewJSONFormatter(opts).Format(detections, summary, scanInfo)
	case output.FormatCSV:
		err = output.NewCSVFormatter(opts).Format(detections)
	case output.FormatSARIF:
		err = output.NewSARIFFormatter(opts).Format(detections, scanInfo)
	default:
		err = output.NewTextFormatter(opts, logger).Format(detections, summary)
	}
	if err != nil {
		return detections, true, fmt.Errorf("detect-patterns: format output: %w", err)
	}

	return detections, false, nil
}
