// Package callgraph provides static call graph analysis for Python code.
//
// This package is organized into several sub-packages for better modularity:
//
// # Core Types
//
// The core package contains fundamental data structures:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
//
//	cg := core.NewCallGraph()
//	cg.AddEdge("main.foo", "main.bar")
//
// # Registry
//
// The registry package manages module, builtin, and stdlib registries:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/registry"
//
//	moduleRegistry, err := registry.BuildModuleRegistry("/path/to/project")
//	builtins := registry.NewBuiltinRegistry()
//
// # Resolution
//
// The resolution package handles import, type, and call resolution:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/resolution"
//
//	engine := resolution.NewTypeInferenceEngine(moduleRegistry)
//	scope := engine.GetScope(functionFQN)
//
// # Extraction
//
// The extraction package extracts code elements from AST:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/extraction"
//
//	statements, err := extraction.ExtractStatements(filePath, sourceCode, functionNode)
//
// # Patterns
//
// The patterns package detects security and framework patterns:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/patterns"
//
//	registry := patterns.NewPatternRegistry()
//	registry.LoadDefaultPatterns()
//	match := registry.MatchPattern(pattern, callGraph)
//
// # Analysis
//
// The analysis package provides taint analysis:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/analysis/taint"
//
//	summary := taint.AnalyzeIntraProceduralTaint(funcFQN, statements, ...)
//
// # CFG
//
// The cfg package provides control flow graph types and dominator analysis;
// it has no statement-to-CFG builder, so callers add blocks and edges:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/cfg"
//
//	controlFlow := cfg.NewControlFlowGraph(funcFQN)
//
// # Builder
//
// The builder package orchestrates call graph construction:
//
//	import "github.com/TheAuditorTool/auditor-core/graph/callgraph/builder"
//
//	callGraph, moduleRegistry, err := builder.BuildCallGraphFromPath(codeGraph, "/path/to/project", logger)
//
// # Quick Start
//
// To build a call graph for a Python project:
//
//	import (
//	    "github.com/TheAuditorTool/auditor-core/graph"
//	    "github.com/TheAuditorTool/auditor-core/graph/callgraph"
//	)
//
//	// Parse project
//	codeGraph := graph.Initialize(projectPath)
//
//	// Build call graph with all features
//	callGraph, moduleRegistry, patternRegistry, err := callgraph.InitializeCallGraph(codeGraph, projectPath, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Analyze for security patterns
//	matches := callgraph.AnalyzePatterns(callGraph, patternRegistry)
package callgraph
