package rules

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/TheAuditorTool/auditor-core/schema"
)

// CallMatch is one function_call_args row whose callee matched a pattern.
type CallMatch struct {
	File          string
	Line          int
	Callee        string
	ArgumentIndex int
	ArgumentExpr  string
}

// matchesPattern mirrors dsl.CallMatcherExecutor.matchesPattern, adapted to
// a free function since rules/matchers.go has no IR struct to hang it off
// of — it matches SQL rows, not an in-memory core.CallGraph.
func matchesPattern(target, pattern string, wildcard bool) bool {
	if !wildcard {
		return target == pattern
	}
	if pattern == "*" {
		return true
	}
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		return strings.Contains(target, strings.Trim(pattern, "*"))
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(target, strings.TrimPrefix(pattern, "*"))
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(target, strings.TrimSuffix(pattern, "*"))
	}
	return target == pattern
}

// MatchCalls queries function_call_args for every row whose callee_function
// matches one of patterns, through schema.BuildQuery so the column list
// can never drift from the live table shape.
func MatchCalls(db *sql.DB, reg *schema.Registry, patterns []string, wildcard bool) ([]CallMatch, error) {
	query, err := reg.BuildQuery(
		"function_call_args",
		[]string{"file", "line", "callee_function", "argument_index", "argument_expr"},
		"", "file, line",
	)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []CallMatch
	for rows.Next() {
		var m CallMatch
		if err := rows.Scan(&m.File, &m.Line, &m.Callee, &m.ArgumentIndex, &m.ArgumentExpr); err != nil {
			return nil, err
		}
		for _, pattern := range patterns {
			if matchesPattern(m.Callee, pattern, wildcard) {
				matches = append(matches, m)
				break
			}
		}
	}
	return matches, rows.Err()
}

// VariableMatch is one function_call_args row whose argument_expr is a bare
// variable reference matching a pattern (no call/literal syntax).
type VariableMatch struct {
	File          string
	Line          int
	Callee        string
	ArgumentIndex int
	Variable      string
}

// isBareIdentifier reports whether expr looks like a plain variable
// reference rather than a call, literal, or attribute chain argument.
func isBareIdentifier(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	if strings.ContainsAny(expr, "(){}[]\"'") {
		return false
	}
	if _, err := strconv.ParseFloat(expr, 64); err == nil {
		return false
	}
	return true
}

// MatchVariables finds call arguments whose expression is a bare variable
// matching pattern, the database-backed counterpart of
// dsl.VariableMatcherExecutor.
func MatchVariables(db *sql.DB, reg *schema.Registry, pattern string, wildcard bool) ([]VariableMatch, error) {
	query, err := reg.BuildQuery(
		"function_call_args",
		[]string{"file", "line", "callee_function", "argument_index", "argument_expr"},
		"", "file, line",
	)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []VariableMatch
	for rows.Next() {
		var file, callee, expr string
		var line, argIdx int
		if err := rows.Scan(&file, &line, &callee, &argIdx, &expr); err != nil {
			return nil, err
		}
		if !isBareIdentifier(expr) {
			continue
		}
		if matchesPattern(expr, pattern, wildcard) {
			matches = append(matches, VariableMatch{
				File: file, Line: line, Callee: callee, ArgumentIndex: argIdx, Variable: expr,
			})
		}
	}
	return matches, rows.Err()
}
