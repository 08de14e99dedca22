package builder

import (
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// ReadFileBytes reads an entire file into memory, used by every build
// pass that needs the raw source alongside its parsed AST.
func ReadFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FindFunctionAtLine returns the function_definition node whose start line
// exactly equals lineNumber, searching the whole subtree so nested
// function/method definitions are found regardless of depth. Returns nil
// if root is nil or no function starts at that line.
func FindFunctionAtLine(root *sitter.Node, lineNumber uint32) *sitter.Node {
	if root == nil {
		return nil
	}
	return findFunctionAtLine(root, lineNumber)
}

func findFunctionAtLine(node *sitter.Node, lineNumber uint32) *sitter.Node {
	if node.Type() == "function_definition" && node.StartPoint().Row+1 == lineNumber {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findFunctionAtLine(node.NamedChild(i), lineNumber); found != nil {
			return found
		}
	}
	return nil
}
