// Package fileindex builds the per-file FileContext + NodeIndex that
// extractors query instead of re-walking the AST: one pre-order traversal
// buckets every node by NodeKind, and function ranges and import aliases
// are then read from that index, so downstream extractors pay for exactly
// one walk per file no matter how many tables they populate from it.
package fileindex

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// FunctionRange is an ordered (name, start_line, end_line, scope) tuple
// describing one function/method definition's lexical extent.
type FunctionRange struct {
	Name      string
	StartLine int
	EndLine   int
	Scope     string
}

// Symbol is the minimal shape ResolveSymbol returns: enough for an
// extractor or the taint analyzer to decide what a bare name refers to.
type Symbol struct {
	Name       string
	Kind       string // function | class | variable | import
	Line       int
	ImportFrom string // non-empty when Kind == "import": the module path
}

// FileContext is constructed once per file and handed to every
// topic-specific extractor for that file.
type FileContext struct {
	Path     string // forward-slash relative path
	Language string // "python" | "javascript" | "typescript"
	Content  []byte
	Tree     *sitter.Tree
	Index    *NodeIndex

	functionRanges []FunctionRange
	// importAliases maps a local name to the module path it was imported
	// from, honored by ResolveSymbol ahead of falling back to plain scope.
	importAliases map[string]string
	// scopeStack is not populated by NewFileContext; enclosingScope derives
	// function nesting from functionRanges instead.
	scopeStack []scopeFrame
}

type scopeFrame struct {
	name      string
	startLine int
	endLine   int
}

// languageGrammar resolves a *sitter.Language for the three first-class
// languages this engine indexes.
func languageGrammar(lang string) *sitter.Language {
	switch lang {
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	default:
		return nil
	}
}

// NewFileContext parses content and builds the NodeIndex/function ranges in
// a single pass. Parse failure returns an error; the caller (extract
// package's dispatcher) treats this as a hard per-file failure per
// spec.md §4.C, never a partially populated context.
func NewFileContext(ctx context.Context, path, language string, content []byte) (*FileContext, error) {
	grammar := languageGrammar(language)
	if grammar == nil {
		return nil, fmt.Errorf("fileindex: unsupported language %q for %s", language, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("fileindex: parse %s: %w", path, err)
	}

	fc := &FileContext{
		Path:          path,
		Language:      language,
		Content:       content,
		Tree:          tree,
		importAliases: make(map[string]string),
	}
	fc.Index = buildNodeIndex(tree.RootNode())
	fc.collectFunctionRanges()
	fc.collectImportAliases()
	return fc, nil
}

// FindNodes is the O(1) lookup extractors must use instead of re-walking
// the AST (spec.md §4.B's single-most-important performance contract).
func (fc *FileContext) FindNodes(kind NodeKind) []*sitter.Node {
	return fc.Index.Find(kind)
}

func (fc *FileContext) collectFunctionRanges() {
	for _, n := range fc.Index.Find(KindFunctionDef) {
		name := fc.functionName(n)
		start := int(n.StartPoint().Row) + 1
		end := int(n.EndPoint().Row) + 1
		scope := fc.enclosingScope(start)
		fc.functionRanges = append(fc.functionRanges, FunctionRange{
			Name: name, StartLine: start, EndLine: end, Scope: scope,
		})
	}
	sort.Slice(fc.functionRanges, func(i, j int) bool {
		return fc.functionRanges[i].StartLine < fc.functionRanges[j].StartLine
	})
}

func (fc *FileContext) functionName(n *sitter.Node) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Content(fc.Content)
	}
	return "<anonymous>"
}

// enclosingScope returns the name of the innermost already-collected
// function range containing startLine, or "" for module scope.
func (fc *FileContext) enclosingScope(startLine int) string {
	best := ""
	bestSpan := -1
	for _, r := range fc.functionRanges {
		if r.StartLine <= startLine && startLine <= r.EndLine {
			span := r.EndLine - r.StartLine
			if bestSpan == -1 || span < bestSpan {
				best = r.Name
				bestSpan = span
			}
		}
	}
	return best
}

func (fc *FileContext) collectImportAliases() {
	for _, n := range fc.Index.Find(KindImport) {
		text := n.Content(fc.Content)
		switch fc.Language {
		case "python":
			collectPythonImportAliases(text, fc.importAliases)
		default:
			collectJSImportAliases(text, fc.importAliases)
		}
	}
}

func collectPythonImportAliases(stmt string, out map[string]string) {
	stmt = strings.TrimSpace(stmt)
	switch {
	case strings.HasPrefix(stmt, "from "):
		rest := strings.TrimPrefix(stmt, "from ")
		parts := strings.SplitN(rest, " import ", 2)
		if len(parts) != 2 {
			return
		}
		module := strings.TrimSpace(parts[0])
		for _, item := range strings.Split(parts[1], ",") {
			item = strings.TrimSpace(item)
			name, alias := splitAsAlias(item)
			if alias != "" {
				out[alias] = module + "." + name
			} else if name != "" {
				out[name] = module + "." + name
			}
		}
	case strings.HasPrefix(stmt, "import "):
		rest := strings.TrimPrefix(stmt, "import ")
		for _, item := range strings.Split(rest, ",") {
			item = strings.TrimSpace(item)
			name, alias := splitAsAlias(item)
			if alias != "" {
				out[alias] = name
			} else if name != "" {
				out[name] = name
			}
		}
	}
}

func collectJSImportAliases(stmt string, out map[string]string) {
	stmt = strings.TrimSpace(stmt)
	fromIdx := strings.LastIndex(stmt, "from ")
	if fromIdx == -1 {
		return
	}
	module := strings.Trim(strings.TrimSpace(stmt[fromIdx+len("from "):]), `'";`)
	head := strings.TrimSpace(stmt[:fromIdx])
	head = strings.TrimPrefix(head, "import ")
	head = strings.Trim(head, "{} ")
	for _, item := range strings.Split(head, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, alias := splitAsAlias(item)
		if alias != "" {
			out[alias] = module + "." + name
		} else {
			out[name] = module + "." + name
		}
	}
}

// splitAsAlias handles both Python's "name as alias" and the pre-split
// JS equivalent "name as alias" after brace-trimming.
func splitAsAlias(item string) (name, alias string) {
	if idx := strings.Index(item, " as "); idx != -1 {
		return strings.TrimSpace(item[:idx]), strings.TrimSpace(item[idx+4:])
	}
	return item, ""
}

// ResolveSymbol honors import aliases first, then lexical scope: a name
// imported into this file resolves to its module-qualified origin even if
// a same-named local variable exists in an outer scope, matching
// spec.md §4.B's "honors imports and lexical scope" contract.
func (fc *FileContext) ResolveSymbol(name string, atLine int) *Symbol {
	if origin, ok := fc.importAliases[name]; ok {
		return &Symbol{Name: name, Kind: "import", Line: 0, ImportFrom: origin}
	}
	scope := fc.enclosingScope(atLine)
	for _, r := range fc.functionRanges {
		if r.Name == name {
			return &Symbol{Name: name, Kind: "function", Line: r.StartLine}
		}
	}
	if scope != "" {
		return &Symbol{Name: name, Kind: "variable", Line: atLine}
	}
	return nil
}

// FunctionRanges returns the ordered function extents computed for this
// file.
func (fc *FileContext) FunctionRanges() []FunctionRange {
	return fc.functionRanges
}

// Close releases the underlying tree-sitter tree.
func (fc *FileContext) Close() {
	if fc.Tree != nil {
		fc.Tree.Close()
	}
}
