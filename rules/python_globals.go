package rules

import (
	"strconv"
	"strings"

	"github.com/TheAuditorTool/auditor-core/schema"
)

var globalMutableLiterals = []string{"{}", "[]", "dict(", "list(", "set("}
var globalImmutableOK = []string{"logging.getLogger"}

// PythonGlobalsConfig carries the knobs original_source's
// python_globals_analyze.py hardcodes inline, surfaced here as explicit
// fields so callers can override them instead of editing the rule.
type PythonGlobalsConfig struct {
	// ExcludeUnderscorePrefixed skips module-level names starting with
	// "_", mirroring the teacher's var_lower.startswith("_") guard: a
	// leading underscore is the Python convention for "module-private",
	// which correlates strongly with intentional internal state rather
	// than an accidental shared mutable default.
	ExcludeUnderscorePrefixed bool
}

type globalCandidate struct {
	file string
	line int
	name string
	expr string
}

// PythonGlobalMutableStateRule flags module-level names bound to a
// mutable literal ({}, [], dict(), list(), set()) that are later written
// to from inside a function, grounded on
// original_source/theauditor/rules/python/python_globals_analyze.py's
// GlobalAnalyzer.analyze: shared mutable module state written from
// multiple call paths is a classic source of cross-request state leakage
// once a WSGI worker is reused across requests.
func PythonGlobalMutableStateRule(reg *schema.Registry, cfg PythonGlobalsConfig) Rule {
	return &BaseRule{
		RuleName:  "python-global-mutable-state",
		RuleCat:   "concurrency",
		RuleScope: ScopeDatabase,
		AnalyzeFunc: func(ctx *Context) ([]Finding, error) {
			candidates, err := loadGlobalCandidates(ctx, reg)
			if err != nil {
				return nil, err
			}

			var findings []Finding
			for _, c := range candidates {
				nameLower := strings.ToLower(c.name)
				if nameLower == "" {
					continue
				}
				if cfg.ExcludeUnderscorePrefixed && strings.HasPrefix(nameLower, "_") {
					continue
				}
				if nameLower == strings.ToUpper(nameLower) {
					continue // SCREAMING_CASE constants aren't treated as mutable state
				}
				if containsAny(c.expr, globalImmutableOK) {
					continue
				}

				usageCount, err := countNestedUsage(ctx, reg, c.file, c.name)
				if err != nil {
					return nil, err
				}
				if usageCount == 0 {
					continue
				}

				findings = append(findings, Finding{
					RuleName:   "python-global-mutable-state",
					FilePath:   c.file,
					Line:       c.line,
					Severity:   SeverityHigh,
					Confidence: ConfidenceMedium,
					Category:   "concurrency",
					Message:    "global mutable state is modified inside functions",
					Details: map[string]string{
						"variable": c.name,
						"writes":   strconv.Itoa(usageCount),
					},
				})
			}
			return findings, nil
		},
	}
}

func loadGlobalCandidates(ctx *Context, reg *schema.Registry) ([]globalCandidate, error) {
	query, err := reg.BuildQuery(
		"assignments",
		[]string{"file", "line", "target_var", "source_expr"},
		"source_expr IS NOT NULL",
		"file, line",
	)
	if err != nil {
		return nil, err
	}
	rows, err := ctx.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []globalCandidate
	for rows.Next() {
		var file, name, expr string
		var line int
		if err := rows.Scan(&file, &line, &name, &expr); err != nil {
			return nil, err
		}
		if expr == "" || !containsAny(expr, globalMutableLiterals) {
			continue
		}
		out = append(out, globalCandidate{file: file, line: line, name: name, expr: expr})
	}
	return out, rows.Err()
}

// countNestedUsage counts variable_usage rows for name in file recorded at
// a non-zero scope level, i.e. a reference from inside a function rather
// than at module scope.
func countNestedUsage(ctx *Context, reg *schema.Registry, file, name string) (int, error) {
	query, err := reg.BuildQuery(
		"variable_usage",
		[]string{"file", "name", "scope_level"},
		"file = ? AND name = ?",
		"",
	)
	if err != nil {
		return 0, err
	}
	rows, err := ctx.DB.Query(query, file, name)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var f, n, scopeLevel string
		if err := rows.Scan(&f, &n, &scopeLevel); err != nil {
			return 0, err
		}
		if scopeLevel != "" && scopeLevel != "0" {
			count++
		}
	}
	return count, rows.Err()
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

