package graph

import "github.com/TheAuditorTool/auditor-core/model"

// SourceLocation stores the file location of a code snippet for lazy loading.
type SourceLocation struct {
	File      string
	StartByte uint32
	EndByte   uint32
}

// Node represents a node in the code graph with various properties
// describing code elements like classes, methods, variables, etc.
type Node struct {
	ID                   string
	Type                 string
	Name                 string
	CodeSnippet          string // DEPRECATED: Will be removed, use GetCodeSnippet() instead
	SourceLocation       *SourceLocation
	LineNumber           uint32
	OutgoingEdges        []*Edge
	IsExternal           bool
	Modifier             string
	ReturnType           string
	MethodArgumentsType  []string
	MethodArgumentsValue []string
	PackageName          string
	ImportPackage        []string
	SuperClass           string
	Interface            []string
	DataType             string
	Scope                string
	VariableValue        string
	hasAccess            bool
	File                 string
	Language             string // "python" or "javascript"/"typescript"
	ThrowsExceptions     []string
	Annotation           []string
	BinaryExpr           *model.BinaryExpr
	ClassInstanceExpr    *model.ClassInstanceExpr
	IfStmt               *model.IfStmt
	WhileStmt            *model.WhileStmt
	ForStmt              *model.ForStmt
	BreakStmt            *model.BreakStmt
	ContinueStmt         *model.ContinueStmt
	YieldStmt            *model.YieldStmt
	AssertStmt           *model.AssertStmt
	ReturnStmt           *model.ReturnStmt
}

// GetCodeSnippet returns the code snippet for this node.
// If SourceLocation is set, it reads from the file (lazy loading).
// Otherwise, it returns the deprecated CodeSnippet field for backward compatibility.
func (n *Node) GetCodeSnippet() string {
	// If we have a source location, read from file (lazy load)
	if n.SourceLocation != nil {
		content, err := readFile(n.SourceLocation.File)
		if err != nil {
			// Fallback to CodeSnippet if file read fails
			return n.CodeSnippet
		}
		// Extract the specific range
		if n.SourceLocation.EndByte <= uint32(len(content)) {
			return string(content[n.SourceLocation.StartByte:n.SourceLocation.EndByte])
		}
	}
	// Fallback to deprecated CodeSnippet field
	return n.CodeSnippet
}

// Edge represents a directed edge between two nodes in the code graph.
type Edge struct {
	From *Node
	To   *Node
}

// CodeGraph represents the entire code graph with nodes and edges.
type CodeGraph struct {
	Nodes map[string]*Node
	Edges []*Edge
}

// NewCodeGraph creates an empty CodeGraph ready for AddNode/AddEdge.
func NewCodeGraph() *CodeGraph {
	return &CodeGraph{Nodes: make(map[string]*Node)}
}

// AddNode inserts a node into the graph, keyed by its ID. Re-adding the same
// ID overwrites the previous node, matching the merge semantics Initialize
// relies on when folding worker-local graphs into the aggregate one.
func (g *CodeGraph) AddNode(node *Node) {
	if node == nil {
		return
	}
	g.Nodes[node.ID] = node
}

// AddEdge records a directed edge and mirrors it onto From's OutgoingEdges so
// callers that only hold a Node can still walk its successors.
func (g *CodeGraph) AddEdge(from, to *Node) {
	if from == nil || to == nil {
		return
	}
	edge := &Edge{From: from, To: to}
	g.Edges = append(g.Edges, edge)
	from.OutgoingEdges = append(from.OutgoingEdges, edge)
}
