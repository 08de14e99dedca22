package cmd

import (
	"fmt"
	"os"

	"github.com/TheAuditorTool/auditor-core/analytics"
	"github.com/TheAuditorTool/auditor-core/errs"
	"github.com/TheAuditorTool/auditor-core/output"
	"github.com/spf13/cobra"
)

var fullCmd = &cobra.Command{
	Use:   "full [path]",
	Short: "Run index, build-graph, taint-analyze, and detect-patterns in sequence",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFull,
}

func init() {
	fullCmd.Flags().Bool("offline", false, "skip any stage that would reach the network (sets THEAUDITOR_OFFLINE)")
	fullCmd.Flags().Bool("strict", true,"treat any 100% extraction/storage loss as fatal during index")
	fullCmd.Flags().String("format", "text", "output format for the final detect-patterns stage")
	fullCmd.Flags().String("fail-on", "", "comma-separated severities that cause a non-zero exit")
	fullCmd.Flags().String("correlations", "", "directory of correlation rule YAML files")
	rootCmd.AddCommand(fullCmd)
}

func runFull(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	offline, _ := cmd.Flags().GetBool("offline")
	strict, _ := cmd.Flags().GetBool("strict")
	format, _ := cmd.Flags().GetString("format")
	failOnRaw, _ := cmd.Flags().GetString("fail-on")
	correlationsDir, _ := cmd.Flags().GetString("correlations")

	if offline {
		os.Setenv("THEAUDITOR_OFFLINE", "1")
	}

	failOn := output.ParseFailOn(failOnRaw)
	if err := output.ValidateSeverities(failOn); err != nil {
		return err
	}

	logger := output.NewLogger(output.VerbosityDefault)
	if verboseFlag {
		logger = output.NewLogger(output.VerbosityVerbose)
	}

	ctx := cmd.Context()
	report := &errs.Report{}

	analytics.ReportEvent(analytics.StageStarted)

	logger.Progress("stage 1/4: index")
	if _, err := index(ctx, root, strict, logger); err != nil {
		report.Fatal = &errs.FatalError{Stage: "full:index", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}

	logger.Progress("stage 2/4: build-graph")
	if err := buildGraph(ctx, root, logger); err != nil {
		report.Fatal = &errs.FatalError{Stage: "full:build-graph", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}

	logger.Progress("stage 3/4: taint-analyze")
	taintFindings, warning, err := taintAnalyze(ctx, root, logger)
	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "full:taint-analyze", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}
	if warning != nil {
		report.AddRule("taint-analyze", warning)
	}
	if err := writeFindings(root, "taint_findings", taintFindings); err != nil {
		report.Fatal = &errs.FatalError{Stage: "full:taint-analyze", Err: err}
		return exitFromReport(report)
	}

	logger.Progress("stage 4/4: detect-patterns")
	detections, hadErrors, err := detectPatterns(ctx, root, format, correlationsDir, failOn, logger)
	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "full:detect-patterns", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}

	analytics.ReportEventWithProperties(analytics.StageCompleted, map[string]interface{}{
		"stage":      "full",
		"detections": len(detections),
	})

	exitCode := output.DetermineExitCode(detections, failOn, hadErrors)
	switch exitCode {
	case output.ExitCodeError:
		return fmt.Errorf("full: completed with errors")
	case output.ExitCodeFindings:
		return fmt.Errorf("full: %d finding(s) at or above fail-on threshold", len(detections))
	default:
		return nil
	}
}
