package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/TheAuditorTool/auditor-core/analytics"
	"github.com/TheAuditorTool/auditor-core/errs"
	"github.com/TheAuditorTool/auditor-core/output"
	"github.com/TheAuditorTool/auditor-core/rules"
	"github.com/TheAuditorTool/auditor-core/schema"
	"github.com/TheAuditorTool/auditor-core/storage"
	"github.com/TheAuditorTool/auditor-core/taint"
	"github.com/spf13/cobra"
)

var taintCmd = &cobra.Command{
	Use:   "taint-analyze [path]",
	Short: "Run interprocedural taint analysis over the call graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaintAnalyze,
}

func init() {
	rootCmd.AddCommand(taintCmd)
}

func runTaintAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	logger := output.NewLogger(output.VerbosityDefault)
	if verboseFlag {
		logger = output.NewLogger(output.VerbosityVerbose)
	}

	analytics.ReportEvent(analytics.StageStarted)
	stop := logger.StartTiming("taint-analyze")
	findings, warning, err := taintAnalyze(cmd.Context(), root, logger)
	stop()

	report := &errs.Report{}
	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "taint-analyze", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}
	if warning != nil {
		report.AddRule("taint-analyze", warning)
	}

	if writeErr := writeFindings(root, "taint_findings", findings); writeErr != nil {
		report.Fatal = &errs.FatalError{Stage: "taint-analyze", Err: writeErr}
		return exitFromReport(report)
	}

	logger.Statistic("taint analysis found %d detections", len(findings))
	analytics.ReportEventWithProperties(analytics.StageCompleted, map[string]interface{}{
		"stage":      "taint-analyze",
		"duration":   logger.GetTiming("taint-analyze").String(),
		"detections": len(findings),
	})

	return exitFromReport(report)
}

// taintAnalyze builds the function-level call graph from repo_index.db,
// runs the Engine's fixed-point interprocedural pass against it with the
// cache at .pf/.cache/cfg_analysis_cache.db, and converts every confirmed source-to-sink
// flow into a rules.Finding. A PartialResultsWarning from a budget
// exhaustion is surfaced to the caller rather than treated as fatal, since
// the findings gathered up to that point are still valid.
func taintAnalyze(ctx context.Context, root string, logger *output.Logger) ([]rules.Finding, error, error) {
	reg := schema.NewRegistry()

	repoPath := filepath.Join(pfRoot(root), "repo_index.db")
	db, err := storage.Open(repoPath, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("taint-analyze: open repo_index.db: %w", err)
	}
	defer db.Close()

	logger.Progress("building call graph for taint analysis")
	cg, err := taint.BuildCallGraph(ctx, db, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("taint-analyze: %w", err)
	}

	cachePath := filepath.Join(pfRoot(root), ".cache", "cfg_analysis_cache.db")
	cache, err := taint.OpenCache(cachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("taint-analyze: open cache: %w", err)
	}
	defer cache.Close()

	engine := taint.NewEngine(cg, cache)
	logger.Progress("running fixed-point taint propagation over %d functions", len(cg.Functions))

	var warning error
	if runErr := engine.Run(ctx); runErr != nil {
		if pw, ok := runErr.(*taint.PartialResultsWarning); ok {
			warning = pw
		} else {
			return nil, nil, fmt.Errorf("taint-analyze: %w", runErr)
		}
	}

	return engine.Findings(), warning, nil
}
