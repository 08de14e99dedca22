package graph

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// buildGraphFromAST walks a parsed tree-sitter tree and populates graph with
// Node/Edge entries, dispatching on node.Type() per language. currentContext
// tracks the innermost enclosing function/class so nested definitions get
// qualified names and methods can be told apart from free functions.
func buildGraphFromAST(node *sitter.Node, sourceCode []byte, graph *CodeGraph, currentContext *Node, file string) {
	if node == nil {
		return
	}

	language := "python"
	if isJSOrTSFile(file) {
		language = "javascript"
	}

	nextContext := currentContext

	switch node.Type() {
	case "function_definition", "function_declaration", "method_definition", "arrow_function":
		nextContext = parsePythonFunctionDefinition(node, sourceCode, graph, file, currentContext)
	case "class_definition", "class_declaration":
		nextContext = parsePythonClassDefinition(node, sourceCode, graph, file)
	case "call", "call_expression":
		parsePythonCall(node, sourceCode, graph, currentContext, file)
	case "return_statement":
		parseReturnStatement(node, sourceCode, graph, file)
	case "break_statement":
		parseBreakStatement(node, sourceCode, graph, file)
	case "continue_statement":
		parseContinueStatement(node, sourceCode, graph, file)
	case "assert_statement":
		parseAssertStatement(node, sourceCode, graph, file)
	case "yield", "yield_expression":
		parsePythonYieldExpression(node, sourceCode, graph, file)
	case "assignment", "expression_statement":
		if node.Type() == "assignment" {
			parsePythonAssignment(node, sourceCode, graph, file, currentContext)
		}
	case "if_statement":
		parseIfStatement(node, sourceCode, graph, file, language)
	case "while_statement":
		parseWhileStatement(node, sourceCode, graph, file, language)
	case "for_statement":
		parseForStatement(node, sourceCode, graph, file, language)
	case "for_in_statement", "for_in_clause":
		parseForInStatement(node, sourceCode, graph, file, language)
	case "try_statement":
		parseTryStatement(node, sourceCode, graph, file, language)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		buildGraphFromAST(node.NamedChild(i), sourceCode, graph, nextContext, file)
	}
}
