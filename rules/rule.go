// Package rules implements the rule engine: declarative, file- or
// database-scoped units that turn an indexed repository into Finding
// records. It generalizes the teacher's dsl.RuleLoader/CallMatcherIR
// machinery (kept, re-targeted at schema-backed call sites instead of an
// in-memory core.CallGraph) and graph/callgraph/patterns.PatternRegistry
// (kept as the in-process source->sink->sanitizer backend a database-scoped
// rule can call into).
package rules

import (
	"database/sql"
	"fmt"

	"github.com/TheAuditorTool/auditor-core/fileindex"
)

// Scope selects how a Rule is invoked.
type Scope string

const (
	// ScopeFile invokes a rule once per matching file, with that file's
	// parsed FileContext.
	ScopeFile Scope = "file"
	// ScopeDatabase invokes a rule once per run, against the indexed model.
	ScopeDatabase Scope = "database"
)

// Severity mirrors spec.md §4.H's closed Finding.Severity set.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Confidence mirrors spec.md §4.H's closed Finding.Confidence set.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Finding is the stable record a Rule returns, matching spec.md §4.H's
// field list exactly.
type Finding struct {
	RuleName   string
	FilePath   string
	Line       int
	Column     int
	Severity   Severity
	Confidence Confidence
	Category   string
	Message    string
	CWE        string
	Snippet    string
	Details    map[string]string
}

// Context is what a Rule.Analyze call receives. Exactly one of File/DB is
// populated, matching the rule's declared Scope.
type Context struct {
	// File is populated for ScopeFile rules: the parsed context of the one
	// matching file this invocation covers.
	File *fileindex.FileContext

	// DB is populated for ScopeDatabase rules: a read-only handle against
	// repo_index.db. Rules must build queries through schema.BuildQuery
	// rather than hand-writing column lists, so a schema change can't
	// silently desync a rule's SQL from the live table shape.
	DB *sql.DB
}

// Rule is a declarative analysis unit. It must not re-parse files nor shell
// out to external tools (spec.md §4.H); all the data it needs is either on
// the FileContext or reachable through the database handle.
type Rule interface {
	Name() string
	Category() string
	// TargetExtensions restricts ScopeFile rules to matching file
	// extensions (e.g. ".py"); empty means all first-class languages.
	TargetExtensions() []string
	// ExcludePatterns skips files whose path contains any of these
	// substrings (e.g. "/tests/", "/vendor/").
	ExcludePatterns() []string
	Scope() Scope
	Analyze(ctx *Context) ([]Finding, error)
}

// BaseRule provides the declarative metadata fields most concrete rules
// share, so a rule definition only has to implement Analyze.
type BaseRule struct {
	RuleName    string
	RuleCat     string
	Extensions  []string
	Excludes    []string
	RuleScope   Scope
	AnalyzeFunc func(ctx *Context) ([]Finding, error)
}

func (b *BaseRule) Name() string               { return b.RuleName }
func (b *BaseRule) Category() string           { return b.RuleCat }
func (b *BaseRule) TargetExtensions() []string { return b.Extensions }
func (b *BaseRule) ExcludePatterns() []string  { return b.Excludes }
func (b *BaseRule) Scope() Scope               { return b.RuleScope }

func (b *BaseRule) Analyze(ctx *Context) ([]Finding, error) {
	if b.AnalyzeFunc == nil {
		return nil, fmt.Errorf("rules: rule %q has no analyze function", b.RuleName)
	}
	return b.AnalyzeFunc(ctx)
}
