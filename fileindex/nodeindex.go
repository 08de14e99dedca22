package fileindex

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeKind is the tagged-enum replacement for dynamic dispatch over
// tree-sitter node type strings. Extractors index and query by NodeKind
// instead of re-walking the tree and switching on node.Type() themselves.
type NodeKind string

const (
	KindFunctionDef   NodeKind = "function_def"
	KindClassDef      NodeKind = "class_def"
	KindCall          NodeKind = "call"
	KindAssignment    NodeKind = "assignment"
	KindImport        NodeKind = "import"
	KindReturn        NodeKind = "return"
	KindIf            NodeKind = "if"
	KindWhile         NodeKind = "while"
	KindFor           NodeKind = "for"
	KindTry           NodeKind = "try"
	KindDecorator     NodeKind = "decorator"
	KindStringLiteral NodeKind = "string_literal"
	KindOther         NodeKind = "other"
)

// nodeTypeToKind maps raw tree-sitter node type strings (spanning the
// Python and JS/TS grammars) onto the tagged NodeKind enum. Types not
// listed fall through to KindOther rather than being dropped, so
// FindNodes(KindOther) still gives callers a full AST-node inventory if
// they need it.
var nodeTypeToKind = map[string]NodeKind{
	"function_definition":  KindFunctionDef,
	"function_declaration": KindFunctionDef,
	"method_definition":    KindFunctionDef,
	"arrow_function":       KindFunctionDef,
	"class_definition":     KindClassDef,
	"class_declaration":    KindClassDef,
	"call":                 KindCall,
	"call_expression":      KindCall,
	"assignment":           KindAssignment,
	"variable_declarator":  KindAssignment,
	"import_statement":     KindImport,
	"import_from_statement": KindImport,
	"return_statement":     KindReturn,
	"if_statement":         KindIf,
	"while_statement":      KindWhile,
	"for_statement":        KindFor,
	"for_in_statement":     KindFor,
	"for_in_clause":        KindFor,
	"try_statement":        KindTry,
	"decorator":            KindDecorator,
	"string":               KindStringLiteral,
	"template_string":      KindStringLiteral,
}

// classify returns the NodeKind for a raw tree-sitter node type.
func classify(nodeType string) NodeKind {
	if k, ok := nodeTypeToKind[nodeType]; ok {
		return k
	}
	return KindOther
}

// NodeIndex is the per-file, single-walk AST cache keyed by NodeKind.
// Built once in NewFileContext; FindNodes is an O(1) map lookup against it.
type NodeIndex struct {
	byKind map[NodeKind][]*sitter.Node
}

func buildNodeIndex(root *sitter.Node) *NodeIndex {
	idx := &NodeIndex{byKind: make(map[NodeKind][]*sitter.Node)}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		kind := classify(n.Type())
		idx.byKind[kind] = append(idx.byKind[kind], n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return idx
}

// Find returns every indexed node of the given kind, or nil if none.
func (idx *NodeIndex) Find(kind NodeKind) []*sitter.Node {
	return idx.byKind[kind]
}
