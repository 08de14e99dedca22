package graph

import (
	"fmt"

	"github.com/TheAuditorTool/auditor-core/model"
	sitter "github.com/smacker/go-tree-sitter"
)

// parseReturnStatement parses a Python return statement into a graph node.
func parseReturnStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string) {
	parsePythonReturnStatement(node, sourceCode, graph, file)
}

// parseBreakStatement parses a Python break statement into a graph node.
func parseBreakStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string) {
	parsePythonBreakStatement(node, sourceCode, graph, file)
}

// parseContinueStatement parses a Python continue statement into a graph node.
func parseContinueStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string) {
	parsePythonContinueStatement(node, sourceCode, graph, file)
}

// parseAssertStatement parses a Python assert statement into a graph node.
func parseAssertStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string) {
	parsePythonAssertStatement(node, sourceCode, graph, file)
}

// parseIfStatement parses if statements. Shared shape across Python and JS/TS grammars:
// child(1) is the condition, child(2) the consequence, child(4) the alternative when present.
func parseIfStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string, language string) {
	ifNode := model.IfStmt{}
	conditionNode := node.Child(1)
	if conditionNode != nil {
		ifNode.Condition = &model.Expr{Node: *conditionNode, NodeString: conditionNode.Content(sourceCode)}
	}
	thenNode := node.Child(2)
	if thenNode != nil {
		ifNode.Then = model.Stmt{NodeString: thenNode.Content(sourceCode)}
	}
	elseNode := node.Child(4)
	if elseNode != nil {
		ifNode.Else = model.Stmt{NodeString: elseNode.Content(sourceCode)}
	}

	methodID := fmt.Sprintf("ifstmt_%d_%d_%s", node.StartPoint().Row+1, node.StartPoint().Column+1, file)
	ifStmtNode := &Node{
		ID:             GenerateSha256(methodID),
		Type:           "IfStmt",
		Name:           "IfStmt",
		IsExternal:     true,
		SourceLocation: &SourceLocation{File: file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		LineNumber:     node.StartPoint().Row + 1,
		File:           file,
		Language:       language,
		IfStmt:         &ifNode,
	}
	graph.AddNode(ifStmtNode)
}

// parseWhileStatement parses while statements.
func parseWhileStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string, language string) {
	whileNode := model.WhileStmt{}
	conditionNode := node.Child(1)
	if conditionNode != nil {
		whileNode.Condition = &model.Expr{Node: *conditionNode, NodeString: conditionNode.Content(sourceCode)}
	}
	methodID := fmt.Sprintf("while_stmt_%d_%d_%s", node.StartPoint().Row+1, node.StartPoint().Column+1, file)
	whileStmtNode := &Node{
		ID:             GenerateSha256(methodID),
		Type:           "WhileStmt",
		Name:           "WhileStmt",
		IsExternal:     true,
		SourceLocation: &SourceLocation{File: file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		LineNumber:     node.StartPoint().Row + 1,
		File:           file,
		Language:       language,
		WhileStmt:      &whileNode,
	}
	graph.AddNode(whileStmtNode)
}

// parseForStatement parses for statements (JS/TS "for (init; cond; incr)" shape; Python's
// "for target in iter" loop is modeled separately since it has no C-style clauses).
func parseForStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string, language string) {
	forNode := model.ForStmt{}
	initNode := node.ChildByFieldName("init")
	if initNode != nil {
		forNode.Init = &model.Expr{Node: *initNode, NodeString: initNode.Content(sourceCode)}
	}
	conditionNode := node.ChildByFieldName("condition")
	if conditionNode != nil {
		forNode.Condition = &model.Expr{Node: *conditionNode, NodeString: conditionNode.Content(sourceCode)}
	}
	incrementNode := node.ChildByFieldName("increment")
	if incrementNode != nil {
		forNode.Increment = &model.Expr{Node: *incrementNode, NodeString: incrementNode.Content(sourceCode)}
	}

	methodID := fmt.Sprintf("for_stmt_%d_%d_%s", node.StartPoint().Row+1, node.StartPoint().Column+1, file)
	forStmtNode := &Node{
		ID:             GenerateSha256(methodID),
		Type:           "ForStmt",
		Name:           "ForStmt",
		IsExternal:     true,
		SourceLocation: &SourceLocation{File: file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		LineNumber:     node.StartPoint().Row + 1,
		File:           file,
		Language:       language,
		ForStmt:        &forNode,
	}
	graph.AddNode(forStmtNode)
}

// parseForInStatement parses Python's "for target in iter:" and JS/TS's "for (x of/in y)".
func parseForInStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string, language string) {
	forNode := model.ForStmt{}
	leftNode := node.ChildByFieldName("left")
	rightNode := node.ChildByFieldName("right")
	if leftNode != nil {
		forNode.Init = &model.Expr{Node: *leftNode, NodeString: leftNode.Content(sourceCode)}
	}
	if rightNode != nil {
		forNode.Condition = &model.Expr{Node: *rightNode, NodeString: rightNode.Content(sourceCode)}
	}

	methodID := fmt.Sprintf("forin_stmt_%d_%d_%s", node.StartPoint().Row+1, node.StartPoint().Column+1, file)
	forStmtNode := &Node{
		ID:             GenerateSha256(methodID),
		Type:           "ForInStmt",
		Name:           "ForInStmt",
		IsExternal:     true,
		SourceLocation: &SourceLocation{File: file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		LineNumber:     node.StartPoint().Row + 1,
		File:           file,
		Language:       language,
		ForStmt:        &forNode,
	}
	graph.AddNode(forStmtNode)
}

// parseTryStatement parses try/except/finally (Python) and try/catch/finally (JS/TS) blocks.
func parseTryStatement(node *sitter.Node, sourceCode []byte, graph *CodeGraph, file string, language string) {
	methodID := fmt.Sprintf("try_stmt_%d_%d_%s", node.StartPoint().Row+1, node.StartPoint().Column+1, file)
	tryStmtNode := &Node{
		ID:             GenerateSha256(methodID),
		Type:           "TryStmt",
		Name:           "TryStmt",
		IsExternal:     true,
		SourceLocation: &SourceLocation{File: file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		LineNumber:     node.StartPoint().Row + 1,
		File:           file,
		Language:       language,
	}
	graph.AddNode(tryStmtNode)
}
