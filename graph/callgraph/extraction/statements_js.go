package extraction

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
)

// ParseJSFile parses a JavaScript or TypeScript source file with the
// grammar matching lang ("javascript" or "typescript"), mirroring
// ParsePythonFile's parser setup for the JS/TS side of the taint engine.
func ParseJSFile(sourceCode []byte, lang string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	switch lang {
	case "typescript":
		parser.SetLanguage(typescript.GetLanguage())
	default:
		parser.SetLanguage(javascript.GetLanguage())
	}

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JS/TS code: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	return tree, nil
}

// ExtractStatementsJS extracts statements from a JS/TS function body,
// the JS/TS counterpart to ExtractStatements. It covers the shapes the
// taint tables actually need: variable declarations (source assignment:
// const x = req.body), member-expression assignment (sink write:
// el.innerHTML = x), bare calls (res.send(x)), and return statements.
// Control-flow statements are skipped for the same path-sensitivity
// reason ExtractStatements skips them.
func ExtractStatementsJS(sourceCode []byte, functionNode *sitter.Node) ([]*core.Statement, error) {
	if functionNode == nil {
		return nil, fmt.Errorf("function node is nil")
	}

	bodyNode := functionNode.ChildByFieldName("body")
	if bodyNode == nil {
		return []*core.Statement{}, nil
	}

	// An arrow function with an implicit return (`x => x.foo()`) has a
	// non-block expression body; treat the whole thing as a single
	// return statement.
	if bodyNode.Type() != "statement_block" {
		stmt := &core.Statement{
			Type:       core.StatementTypeReturn,
			CallTarget: string(bodyNode.Content(sourceCode)),
			Uses:       extractJSIdentifiers(bodyNode, sourceCode),
			LineNumber: uint32(bodyNode.StartPoint().Row + 1),
		}
		return []*core.Statement{stmt}, nil
	}

	var statements []*core.Statement
	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		stmtNode := bodyNode.Child(i)
		if stmtNode == nil {
			continue
		}

		actualNode := stmtNode
		if stmtNode.Type() == "expression_statement" {
			if first := stmtNode.NamedChild(0); first != nil {
				actualNode = first
			}
		}

		var stmt *core.Statement
		switch actualNode.Type() {
		case "lexical_declaration", "variable_declaration":
			statements = append(statements, extractJSDeclarations(actualNode, sourceCode)...)
			continue

		case "assignment_expression":
			stmt = extractJSAssignment(actualNode, sourceCode)

		case "call_expression":
			stmt = extractJSCall(actualNode, sourceCode)

		case "return_statement":
			stmt = extractJSReturn(actualNode, sourceCode)

		case "if_statement", "while_statement", "for_statement", "for_in_statement", "try_statement", "switch_statement":
			continue

		default:
			continue
		}

		if stmt != nil {
			stmt.LineNumber = uint32(stmtNode.StartPoint().Row + 1)
			statements = append(statements, stmt)
		}
	}

	return statements, nil
}

// extractJSDeclarations handles `const x = ..., y = ...` and `var x = ...`,
// one core.Statement per declarator that has an initializer.
func extractJSDeclarations(node *sitter.Node, sourceCode []byte) []*core.Statement {
	var out []*core.Statement
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		stmt := &core.Statement{
			Type:       core.StatementTypeAssignment,
			Def:        string(nameNode.Content(sourceCode)),
			CallTarget: string(valueNode.Content(sourceCode)),
			Uses:       extractJSIdentifiers(valueNode, sourceCode),
			LineNumber: uint32(decl.StartPoint().Row + 1),
		}
		out = append(out, stmt)
	}
	return out
}

// extractJSAssignment handles `x = ...` and, critically, `obj.prop = ...`:
// a property write is modeled as a call-shaped statement whose CallTarget
// is the full qualified LHS text (e.g. "el.innerHTML"), so the generic
// sink-matching logic in AnalyzeIntraProceduralTaint catches it without
// any analyzer change.
func extractJSAssignment(node *sitter.Node, sourceCode []byte) *core.Statement {
	leftNode := node.ChildByFieldName("left")
	rightNode := node.ChildByFieldName("right")
	if leftNode == nil || rightNode == nil {
		return nil
	}

	uses := extractJSIdentifiers(rightNode, sourceCode)

	if leftNode.Type() == "identifier" {
		return &core.Statement{
			Type:       core.StatementTypeAssignment,
			Def:        string(leftNode.Content(sourceCode)),
			CallTarget: string(rightNode.Content(sourceCode)),
			Uses:       uses,
		}
	}

	// member_expression or subscript LHS: no local def, but the
	// qualified write target must be visible to sink matching.
	return &core.Statement{
		Type:       core.StatementTypeCall,
		CallTarget: string(leftNode.Content(sourceCode)),
		Uses:       append(uses, extractJSIdentifiers(leftNode, sourceCode)...),
	}
}

// extractJSCall handles a bare call statement, e.g. res.send(value).
// Unlike the Python extractor's extractCallTarget (which keeps only the
// rightmost attribute name), the CallTarget here is the full qualified
// callee text so dotted sink patterns like "res.send" match directly.
func extractJSCall(node *sitter.Node, sourceCode []byte) *core.Statement {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}

	stmt := &core.Statement{
		Type:       core.StatementTypeCall,
		CallTarget: string(fnNode.Content(sourceCode)),
		Uses:       extractJSIdentifiers(fnNode, sourceCode),
	}

	if argsNode := node.ChildByFieldName("arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			arg := argsNode.NamedChild(i)
			stmt.CallArgs = append(stmt.CallArgs, string(arg.Content(sourceCode)))
			stmt.Uses = append(stmt.Uses, extractJSIdentifiers(arg, sourceCode)...)
		}
	}

	return stmt
}

func extractJSReturn(node *sitter.Node, sourceCode []byte) *core.Statement {
	stmt := &core.Statement{Type: core.StatementTypeReturn}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		stmt.CallTarget = string(child.Content(sourceCode))
		stmt.Uses = append(stmt.Uses, extractJSIdentifiers(child, sourceCode)...)
	}
	return stmt
}

// extractJSIdentifiers recursively collects identifier names out of an
// expression subtree, skipping the property side of member expressions so
// "req.body" contributes only "req" (the binding that actually carries a
// def-use chain), and deduplicating.
func extractJSIdentifiers(node *sitter.Node, sourceCode []byte) []string {
	if node == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "identifier" {
			name := string(n.Content(sourceCode))
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
			return
		}
		if n.Type() == "member_expression" {
			if obj := n.ChildByFieldName("object"); obj != nil {
				visit(obj)
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}

	visit(node)
	return out
}
