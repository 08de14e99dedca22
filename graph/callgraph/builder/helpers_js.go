package builder

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// jsFunctionTypes are the node kinds that can anchor a JS/TS function at a
// known line: a plain declaration, a class method, or a const-bound
// arrow/function expression (the declarator itself is what carries the
// start line in that case, not the function node).
var jsFunctionTypes = map[string]bool{
	"function_declaration": true,
	"method_definition":    true,
	"function_expression":  true,
	"arrow_function":       true,
}

// FindJSFunctionAtLine mirrors FindFunctionAtLine for JS/TS grammars, which
// use a different set of function node types than Python's single
// function_definition.
func FindJSFunctionAtLine(root *sitter.Node, lineNumber uint32) *sitter.Node {
	if root == nil {
		return nil
	}
	return findJSFunctionAtLine(root, lineNumber)
}

func findJSFunctionAtLine(node *sitter.Node, lineNumber uint32) *sitter.Node {
	if jsFunctionTypes[node.Type()] && node.StartPoint().Row+1 == lineNumber {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findJSFunctionAtLine(node.NamedChild(i), lineNumber); found != nil {
			return found
		}
	}
	return nil
}
