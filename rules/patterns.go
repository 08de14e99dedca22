package rules

import (
	"database/sql"
	"fmt"

	"github.com/TheAuditorTool/auditor-core/graph"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/patterns"
	"github.com/TheAuditorTool/auditor-core/schema"
)

// buildFileLevelCallGraph builds a coarse core.CallGraph from
// function_call_args, grouping call sites by the file that issues them
// rather than by enclosing function. Rules must not re-parse files
// (spec.md §4.H), so there is no AST available here to attribute a call
// site to its precise enclosing function the way the taint analyzer's
// callgraph.Builder does from already-extracted statements; file-level
// granularity is enough to drive patterns.PatternRegistry's
// dangerous-function and source-to-sink reachability checks.
func buildFileLevelCallGraph(db *sql.DB, reg *schema.Registry) (*core.CallGraph, error) {
	query, err := reg.BuildQuery(
		"function_call_args",
		[]string{"file", "line", "callee_function"},
		"", "file, line",
	)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cg := core.NewCallGraph()
	for rows.Next() {
		var file, callee string
		var line int
		if err := rows.Scan(&file, &line, &callee); err != nil {
			return nil, err
		}
		if _, ok := cg.Functions[file]; !ok {
			cg.Functions[file] = &graph.Node{Name: file, File: file}
		}
		cg.AddCallSite(file, core.CallSite{
			Target:    callee,
			TargetFQN: callee,
			Location:  core.Location{File: file, Line: line},
		})
		cg.AddEdge(file, callee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cg, nil
}

// PatternFindingRule wraps patterns.PatternRegistry as a ScopeDatabase
// Rule, running the default dangerous-function and source-sink patterns
// against a file-level call graph built from the indexed model.
func PatternFindingRule(reg *schema.Registry) Rule {
	return &BaseRule{
		RuleName:  "pattern-registry",
		RuleCat:   "security",
		RuleScope: ScopeDatabase,
		AnalyzeFunc: func(ctx *Context) ([]Finding, error) {
			cg, err := buildFileLevelCallGraph(ctx.DB, reg)
			if err != nil {
				return nil, err
			}

			registry := patterns.NewPatternRegistry()
			registry.LoadDefaultPatterns()

			// PatternTypeMissingSanitizer is deliberately excluded: its
			// intra-procedural branch re-reads and re-parses the source
			// file on demand, which spec.md §4.H forbids for rules. That
			// confirmed-taint-flow check belongs to the taint analyzer
			// pipeline stage (taint.Engine), which already owns file
			// parsing for exactly this purpose.
			var findings []Finding
			for _, pt := range []patterns.PatternType{patterns.PatternTypeDangerousFunction, patterns.PatternTypeSourceSink} {
				for _, p := range registry.GetPatternsByType(pt) {
					match := registry.MatchPattern(p, cg)
					if match == nil || !match.Matched {
						continue
					}
					findings = append(findings, Finding{
						RuleName:   p.ID,
						FilePath:   match.SinkFQN,
						Severity:   Severity(p.Severity),
						Confidence: ConfidenceMedium,
						Category:   string(p.Type),
						Message:    fmt.Sprintf("%s: %s", p.Name, p.Description),
						CWE:        p.CWE,
					})
				}
			}
			return findings, nil
		},
	}
}
