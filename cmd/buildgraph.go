package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/TheAuditorTool/auditor-core/analytics"
	"github.com/TheAuditorTool/auditor-core/errs"
	"github.com/TheAuditorTool/auditor-core/graphdb"
	"github.com/TheAuditorTool/auditor-core/output"
	"github.com/TheAuditorTool/auditor-core/schema"
	"github.com/TheAuditorTool/auditor-core/storage"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var buildGraphCmd = &cobra.Command{
	Use:   "build-graph [path]",
	Short: "Build the typed code graph (.pf/graphs.db) from repo_index.db",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuildGraph,
}

func init() {
	rootCmd.AddCommand(buildGraphCmd)
}

func runBuildGraph(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	logger := output.NewLogger(output.VerbosityDefault)
	if verboseFlag {
		logger = output.NewLogger(output.VerbosityVerbose)
	}

	analytics.ReportEvent(analytics.StageStarted)
	stop := logger.StartTiming("build-graph")
	err := buildGraph(cmd.Context(), root, logger)
	stop()

	report := &errs.Report{}
	if err != nil {
		report.Fatal = &errs.FatalError{Stage: "build-graph", Err: err}
		analytics.ReportEvent(analytics.StageFailed)
		return exitFromReport(report)
	}
	analytics.ReportEventWithProperties(analytics.StageCompleted, map[string]interface{}{
		"stage":    "build-graph",
		"duration": logger.GetTiming("build-graph").String(),
	})
	return exitFromReport(report)
}

// buildGraph reads the relational model from repo_index.db, runs every
// edge-building strategy, and persists the result into graphs.db. Readers
// only start once the index stage's writer has drained, so this never
// shares a connection with storage.Writer.
func buildGraph(ctx context.Context, root string, logger *output.Logger) error {
	reg := schema.NewRegistry()

	repoPath := filepath.Join(pfRoot(root), "repo_index.db")
	repoDB, err := storage.Open(repoPath, reg)
	if err != nil {
		return fmt.Errorf("build-graph: open repo_index.db: %w", err)
	}
	defer repoDB.Close()

	// graphs.db has its own nodes/edges schema created by Finish, not the
	// relational repo_index.db schema, so it's opened as a plain
	// connection rather than through storage.Open's registry-driven path.
	graphPath := filepath.Join(pfRoot(root), "graphs.db")
	graphDB, err := sql.Open("sqlite", graphPath)
	if err != nil {
		return fmt.Errorf("build-graph: open graphs.db: %w", err)
	}
	defer graphDB.Close()
	if _, err := graphDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("build-graph: enable WAL on graphs.db: %w", err)
	}

	builder := graphdb.NewBuilder(repoDB)
	logger.Progress("building call graph, data-flow, and import edges")
	if err := builder.Build(ctx); err != nil {
		return fmt.Errorf("build-graph: %w", err)
	}

	if err := builder.Finish(ctx, graphDB); err != nil {
		return fmt.Errorf("build-graph: %w", err)
	}

	logger.Statistic("graph written to %s", graphPath)
	return nil
}
