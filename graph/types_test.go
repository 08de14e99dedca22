package graph

import "testing"

func TestNodeLanguageTagging(t *testing.T) {
	pyNode := &Node{ID: "a", Type: "function_definition", File: "app.py", Language: "python"}
	jsNode := &Node{ID: "b", Type: "function_declaration", File: "app.ts", Language: "javascript"}

	if pyNode.Language != "python" {
		t.Errorf("expected python, got %s", pyNode.Language)
	}
	if jsNode.Language != "javascript" {
		t.Errorf("expected javascript, got %s", jsNode.Language)
	}
}

func TestGetCodeSnippetFallsBackWithoutSourceLocation(t *testing.T) {
	node := &Node{ID: "a", CodeSnippet: "def f(): pass"}
	if got := node.GetCodeSnippet(); got != "def f(): pass" {
		t.Errorf("expected fallback snippet, got %q", got)
	}
}

func TestCodeGraphAddNodeAndEdge(t *testing.T) {
	g := NewCodeGraph()
	n1 := &Node{ID: "n1"}
	n2 := &Node{ID: "n2"}
	g.AddNode(n1)
	g.AddNode(n2)
	g.AddEdge(n1, n2)

	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if g.Edges[0].From != n1 || g.Edges[0].To != n2 {
		t.Errorf("edge endpoints mismatch")
	}
}
