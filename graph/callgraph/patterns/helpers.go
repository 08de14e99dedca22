package patterns

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/TheAuditorTool/auditor-core/graph/callgraph/builder"
)

// readFileBytes reads a source file for on-demand intra-procedural taint
// analysis. Delegates to the shared implementation in builder so the file
// I/O error wrapping stays consistent across the call graph packages.
func readFileBytes(path string) ([]byte, error) {
	return builder.ReadFileBytes(path)
}

// findFunctionAtLine locates the function_definition node starting at
// lineNumber (1-indexed), searching depth-first through root's children.
func findFunctionAtLine(root *sitter.Node, lineNumber uint32) *sitter.Node {
	return builder.FindFunctionAtLine(root, lineNumber)
}
