package taint

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TheAuditorTool/auditor-core/graph"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
	"github.com/TheAuditorTool/auditor-core/schema"
)

// languageForFile reports the language analyzeOne should dispatch on,
// mirroring fileindex.languageGrammar's extension set.
func languageForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	default:
		return ""
	}
}

// functionSpan is one symbols row of kind "function"/"method", with enough
// range information to attribute a call site to its enclosing function
// without re-parsing the file: the next function's start line (or the end
// of file) bounds it from below.
type functionSpan struct {
	fqn       string
	file      string
	startLine int
	endLine   int // exclusive upper bound; 0 means "to end of file"
}

// BuildCallGraph assembles a function-granularity core.CallGraph from
// already-extracted repo_index.db records: a "symbols" row of kind
// "function" or "method" becomes a Functions entry, and a
// "function_call_args" row is attributed to the tightest enclosing
// function span in the same file by line range. This is the SQL-backed
// analogue of graph/callgraph/builder.BuildCallGraph, which walks a
// freshly parsed AST directly; here the AST has already been discarded
// after extraction; spec.md §4.G's interprocedural pass needs a
// caller->callee graph but must not re-parse source to get one.
func BuildCallGraph(ctx context.Context, db *sql.DB, reg *schema.Registry) (*core.CallGraph, error) {
	spans, err := loadFunctionSpans(ctx, db, reg)
	if err != nil {
		return nil, err
	}

	cg := core.NewCallGraph()
	byFile := make(map[string][]*functionSpan)
	for i := range spans {
		s := spans[i]
		byFile[s.file] = append(byFile[s.file], s)
		cg.Functions[s.fqn] = &graph.Node{
			ID:         s.fqn,
			Name:       s.fqn,
			File:       s.file,
			Type:       "function",
			LineNumber: uint32(s.startLine),
			Language:   languageForFile(s.file),
		}
	}
	for file := range byFile {
		list := byFile[file]
		sort.Slice(list, func(i, j int) bool { return list[i].startLine < list[j].startLine })
		for i, s := range list {
			if i+1 < len(list) {
				s.endLine = list[i+1].startLine
			}
		}
	}

	query, err := reg.BuildQuery(
		"function_call_args",
		[]string{"file", "line", "callee_function"},
		"", "file, line",
	)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("taint: query function_call_args: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var file, callee string
		var line int
		if err := rows.Scan(&file, &line, &callee); err != nil {
			return nil, err
		}
		caller := enclosingFunction(byFile[file], line)
		if caller == "" {
			continue
		}
		cg.AddEdge(caller, callee)
		cg.AddCallSite(caller, core.CallSite{
			Target:    callee,
			TargetFQN: callee,
			Location:  core.Location{File: file, Line: line},
		})
	}
	return cg, rows.Err()
}

// enclosingFunction returns the FQN of the span in list (sorted by
// startLine, as populated by BuildCallGraph) whose range contains line, or
// "" if none does (a call at module/top level, outside any function).
func enclosingFunction(list []*functionSpan, line int) string {
	var best *functionSpan
	for _, s := range list {
		if s.startLine > line {
			break
		}
		if s.endLine != 0 && line >= s.endLine {
			continue
		}
		best = s
	}
	if best == nil {
		return ""
	}
	return best.fqn
}

func loadFunctionSpans(ctx context.Context, db *sql.DB, reg *schema.Registry) ([]*functionSpan, error) {
	query, err := reg.BuildQuery(
		"symbols",
		[]string{"path", "name", "kind", "line"},
		"kind = 'function' OR kind = 'method'",
		"path, line",
	)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("taint: query symbols: %w", err)
	}
	defer rows.Close()

	var spans []*functionSpan
	for rows.Next() {
		var path, name, kind string
		var line int
		if err := rows.Scan(&path, &name, &kind, &line); err != nil {
			return nil, err
		}
		spans = append(spans, &functionSpan{
			fqn:       path + "::" + name,
			file:      path,
			startLine: line,
		})
	}
	return spans, rows.Err()
}
