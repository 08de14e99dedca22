package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/TheAuditorTool/auditor-core/analytics"
	"github.com/TheAuditorTool/auditor-core/errs"
	"github.com/TheAuditorTool/auditor-core/extract"
	"github.com/TheAuditorTool/auditor-core/fidelity"
	"github.com/TheAuditorTool/auditor-core/output"
	"github.com/TheAuditorTool/auditor-core/schema"
	"github.com/TheAuditorTool/auditor-core/storage"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Extract source files into .pf/repo_index.db",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().Bool("strict", true,"treat any 100% extraction/storage loss as fatal")
	rootCmd.AddCommand(indexCmd)
}

// pfRoot resolves the .pf state directory for a project root.
func pfRoot(projectRoot string) string {
	return filepath.Join(projectRoot, ".pf")
}

// isSourceFile mirrors extract.languageFor's supported set; it's
// reimplemented here rather than exported from extract because file
// discovery is an orchestration concern, not an extractor one.
func isSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx":
		return true
	default:
		return false
	}
}

// discoverFiles walks root and returns every first-class-language source
// file under it, skipping the state directory and common dependency
// vendor trees, grounded on graph/utils.go's getFiles walk.
func discoverFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".pf", ".git", "node_modules", "venv", ".venv", "__pycache__", "vendor":
				return filepath.SkipDir
			}
			return nil
		}
		if isSourceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	strict, _ := cmd.Flags().GetBool("strict")

	logger := output.NewLogger(output.VerbosityDefault)
	if verboseFlag {
		logger = output.NewLogger(output.VerbosityVerbose)
	}

	analytics.ReportEvent(analytics.StageStarted)
	stop := logger.StartTiming("index")
	report, err := index(cmd.Context(), root, strict, logger)
	stop()

	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "index", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}

	analytics.ReportEventWithProperties(analytics.StageCompleted, map[string]interface{}{
		"stage":    "index",
		"duration": logger.GetTiming("index").String(),
	})
	return exitFromReport(report)
}

// index is the testable core of the index stage: open repo_index.db,
// discover files, run extraction through a bounded worker pool, and
// reconcile each file's extraction manifest against its storage receipt.
func index(ctx context.Context, root string, strict bool, logger *output.Logger) (*errs.Report, error) {
	report := &errs.Report{}

	dbPath := filepath.Join(pfRoot(root), "repo_index.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return report, fmt.Errorf("index: create .pf dir: %w", err)
	}

	reg := schema.NewRegistry()
	db, err := storage.Open(dbPath, reg)
	if err != nil {
		return report, err
	}
	defer db.Close()

	files, err := discoverFiles(root)
	if err != nil {
		return report, err
	}
	logger.Progress("discovered %d source files under %s", len(files), root)

	writer := storage.NewWriter(db, reg)
	dispatcher := extract.NewDispatcher()

	var mu sync.Mutex
	manifests := make(map[string]extract.Manifest, len(files))

	maxWorkers := runtime.NumCPU()
	if maxWorkers > 8 {
		maxWorkers = 8
	}

	receipts, err := writer.RunExtraction(ctx, files, maxWorkers, func(ctx context.Context, path string) (extract.Batches, error) {
		content, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		batches, manifest, derr := dispatcher.Dispatch(ctx, extract.FileInfo{Path: path}, content)
		mu.Lock()
		manifests[path] = manifest
		mu.Unlock()
		if derr != nil {
			return batches, derr
		}
		return batches, nil
	})
	if err != nil {
		return report, err
	}

	for _, r := range receipts {
		if r.Err != nil {
			report.AddFile(r.Path, r.Err)
			continue
		}
		manifest := manifests[r.Path]
		result := fidelity.Reconcile(manifest.Counts, r.Receipt, r.Path, strict)
		if result.Fatal != nil {
			return report, result.Fatal
		}
		if result.HasErrors() || result.HasWarnings() {
			report.AddFile(r.Path, fmt.Errorf("fidelity: %s", summarizeFidelity(result)))
		}
	}

	if err := writer.AuditPathSeparators(ctx); err != nil {
		return report, err
	}

	logger.Statistic("indexed %d files (%d warnings)", len(files), len(report.Files))
	return report, nil
}

func summarizeFidelity(r fidelity.Result) string {
	var parts []string
	for _, t := range r.Tables {
		if t.Status == fidelity.StatusOK {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s manifest=%d receipt=%d status=%s", t.Table, t.Manifest, t.Receipt, t.Status))
	}
	return strings.Join(parts, "; ")
}

// exitFromReport translates an errs.Report into cobra's error-returning
// contract: nil lets cobra exit 0, an error makes Execute() exit non-zero.
// main.go turns the returned error into the exit code: 2 for a
// *errs.FatalError, 1 for any other error.
func exitFromReport(report *errs.Report) error {
	switch report.ExitCode() {
	case errs.ExitFatal:
		return report.Fatal
	case errs.ExitWarnings:
		return fmt.Errorf("completed with %d file warning(s), %d rule warning(s)", len(report.Files), len(report.Rules))
	default:
		return nil
	}
}
