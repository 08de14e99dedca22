package model

import sitter "github.com/smacker/go-tree-sitter"

// Location describes a source position, mirroring the Top/BaseTop interface's
// GetLocation contract.
type Location struct {
	File string
	Line int
}

// Expr wraps a raw tree-sitter node alongside its textual content so callers
// that only need the source text don't have to keep the parse tree alive.
type Expr struct {
	Node       sitter.Node
	NodeString string
}

// Stmt is the generic statement shape used where only source text matters.
type Stmt struct {
	NodeString string
}

// IfStmt models an if/elif/else chain.
type IfStmt struct {
	Condition *Expr
	Then      Stmt
	Else      Stmt
}

// WhileStmt models a while loop.
type WhileStmt struct {
	Condition *Expr
}

// ForStmt models a C-style for loop (init; condition; increment) as well as
// Python's "for target in iter" / JS's "for (x of y)" shape, which reuses
// Init for the loop target and Condition for the iterable.
type ForStmt struct {
	Init      *Expr
	Condition *Expr
	Increment *Expr
}

// BreakStmt models a break statement. Python and JS/TS break statements carry
// no label-or-condition payload worth modeling beyond their presence.
type BreakStmt struct{}

// ContinueStmt models a continue statement.
type ContinueStmt struct{}

// AssertStmt models an assert statement with an optional message.
type AssertStmt struct {
	Expr    *Expr
	Message *Expr
}

// YieldStmt models a yield expression.
type YieldStmt struct {
	Value *Expr
}

// ReturnStmt models a return statement with an optional result expression.
type ReturnStmt struct {
	Result *Expr
}

// BinaryExpr models a binary operator expression (e.g. "a + b", "x == y").
type BinaryExpr struct {
	Left     *Expr
	Operator string
	Right    *Expr
}

// ClassInstanceExpr models an object/class instantiation expression
// (Python's "Foo(...)", JS/TS's "new Foo(...)").
type ClassInstanceExpr struct {
	ClassName string
	Arguments []string
}
