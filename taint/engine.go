package taint

import (
	"context"
	"fmt"
	"time"

	"github.com/TheAuditorTool/auditor-core/graph/callgraph/analysis/taint"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/builder"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/extraction"
)

const (
	maxSCCIterations  = 32
	defaultWallBudget = 120 * time.Second
	defaultFuncBudget = 2 * time.Second
)

// PartialResultsWarning is returned (never silently swallowed) when a
// budget is exceeded before analysis finished every function.
type PartialResultsWarning struct {
	Analyzed int
	Total    int
	Reason   string
}

func (w *PartialResultsWarning) Error() string {
	return fmt.Sprintf("taint: partial results (%d/%d functions): %s", w.Analyzed, w.Total, w.Reason)
}

// Engine runs interprocedural taint propagation over a call graph whose
// Functions/Edges/CallSites have already been populated by the graph
// builder pass, refining each function's summary bottom-up across
// strongly connected components so recursive call chains converge to a
// fixed point instead of infinitely re-expanding.
type Engine struct {
	CallGraph   *core.CallGraph
	Cache       *Cache
	Sources     []string
	Sinks       []string
	Sanitizers  []string
	WallBudget  time.Duration
	FuncBudget  time.Duration
}

// NewEngine returns an Engine with spec.md §4.G's default budgets and
// source/sink/sanitizer tables layered on top of the intra-procedural
// analyzer's built-in stdlib tables.
func NewEngine(cg *core.CallGraph, cache *Cache) *Engine {
	return &Engine{
		CallGraph:  cg,
		Cache:      cache,
		Sources:    DefaultSources,
		Sinks:      DefaultSinks,
		Sanitizers: DefaultSanitizers,
		WallBudget: defaultWallBudget,
		FuncBudget: defaultFuncBudget,
	}
}

// Run performs the intra-procedural pass (if CallGraph.Summaries is empty
// for a function) followed by a bottom-up SCC fixed-point pass that
// propagates TaintedReturn through callers: once a callee's summary shows
// a tainted return, every caller treats that call as a taint source on
// its next iteration. Missing summaries are treated as identity (the
// callee neither taints nor sanitizes); missing CFGs fall back to the
// flat statement list already used by the intra-procedural pass.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.WallBudget)
	defer cancel()

	sccs := TopologicalSCCs(e.CallGraph)

	analyzed := 0
	total := len(e.CallGraph.Functions)

	for _, scc := range sccs {
		select {
		case <-ctx.Done():
			return &PartialResultsWarning{Analyzed: analyzed, Total: total, Reason: "wall-clock budget exceeded"}
		default:
		}

		changed := true
		for iter := 0; changed && iter < maxSCCIterations; iter++ {
			changed = false
			for _, fqn := range scc {
				fnChanged, err := e.analyzeOne(ctx, fqn)
				if err != nil {
					return err
				}
				if fnChanged {
					changed = true
				}
			}
		}
		analyzed += len(scc)
	}

	return nil
}

// analyzeOne re-runs the intra-procedural analyzer for fqn with sources
// augmented by any callee whose summary currently shows a tainted return,
// and reports whether the resulting summary differs from what was stored
// before (i.e. whether the fixed point hasn't settled yet).
func (e *Engine) analyzeOne(ctx context.Context, fqn string) (changed bool, err error) {
	funcCtx, cancel := context.WithTimeout(ctx, e.FuncBudget)
	defer cancel()

	node, ok := e.CallGraph.Functions[fqn]
	if !ok {
		return false, nil // external/unresolved function: identity, never re-analyzed
	}

	sourceCode, err := builder.ReadFileBytes(node.File)
	if err != nil {
		return false, nil
	}

	var statements []*core.Statement
	switch node.Language {
	case "javascript", "typescript":
		tree, err := extraction.ParseJSFile(sourceCode, node.Language)
		if err != nil {
			return false, nil
		}
		defer tree.Close()

		functionNode := builder.FindJSFunctionAtLine(tree.RootNode(), node.LineNumber)
		if functionNode == nil {
			return false, nil
		}

		statements, err = extraction.ExtractStatementsJS(sourceCode, functionNode)
		if err != nil {
			return false, nil
		}

	default:
		tree, err := extraction.ParsePythonFile(sourceCode)
		if err != nil {
			return false, nil
		}
		defer tree.Close()

		functionNode := builder.FindFunctionAtLine(tree.RootNode(), node.LineNumber)
		if functionNode == nil {
			return false, nil
		}

		statements, err = extraction.ExtractStatements(node.File, sourceCode, functionNode)
		if err != nil {
			return false, nil
		}
	}

	select {
	case <-funcCtx.Done():
		return false, &PartialResultsWarning{Reason: "per-function budget exceeded for " + fqn}
	default:
	}

	sources := e.sourcesFor(fqn)
	defUse := core.BuildDefUseChains(statements)
	next := taint.AnalyzeIntraProceduralTaint(fqn, statements, defUse, sources, e.Sinks, e.Sanitizers)

	prev := e.CallGraph.Summaries[fqn]
	e.CallGraph.Summaries[fqn] = next

	return !summariesEqual(prev, next), nil
}

// sourcesFor returns Sources augmented with the FQN of every callee of fqn
// whose current summary shows a tainted return value, so the next
// analyzeOne pass treats calls to that callee as a fresh taint source.
func (e *Engine) sourcesFor(fqn string) []string {
	callees := e.CallGraph.Edges[fqn]
	if len(callees) == 0 {
		return e.Sources
	}
	extended := make([]string, len(e.Sources), len(e.Sources)+len(callees))
	copy(extended, e.Sources)
	for _, callee := range callees {
		if summary, ok := e.CallGraph.Summaries[callee]; ok && summary.TaintedReturn {
			extended = append(extended, callee)
		}
	}
	return extended
}

func summariesEqual(a, b *core.TaintSummary) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.GetTaintedVarCount() != b.GetTaintedVarCount() {
		return false
	}
	if a.GetDetectionCount() != b.GetDetectionCount() {
		return false
	}
	return a.TaintedReturn == b.TaintedReturn
}
