package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/TheAuditorTool/auditor-core/fileindex"
	"golang.org/x/sync/errgroup"
)

// Registry holds every registered Rule and runs them over an indexed
// repository, isolating a panicking or erroring rule to an empty result for
// that rule rather than aborting the run (spec.md §7).
type Registry struct {
	rules []Rule
}

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns every registered rule, in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// maxWorkers bounds per-stage parallelism per spec.md §5.
func maxWorkers() int {
	if n := runtime.NumCPU(); n < 8 {
		return n
	}
	return 8
}

// matchesRule reports whether path should be analyzed by rule, honoring
// TargetExtensions (empty = all) and ExcludePatterns (substring match).
func matchesRule(rule Rule, path string) bool {
	for _, pat := range rule.ExcludePatterns() {
		if pat != "" && strings.Contains(path, pat) {
			return false
		}
	}
	exts := rule.TargetExtensions()
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// runRule invokes rule.Analyze, converting a panic into an error so one
// misbehaving rule never takes down the run; the rule's findings for this
// invocation are empty and the failure is logged (spec.md §7's per-rule
// recoverable failure).
func runRule(rule Rule, ctx *Context) (findings []Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rules: rule %q panicked: %v", rule.Name(), rec)
			findings = nil
		}
	}()
	return rule.Analyze(ctx)
}

// RunFile runs every ScopeFile rule matching fc's path against fc,
// bounded by maxWorkers() concurrent rules.
func (r *Registry) RunFile(ctx context.Context, fc *fileindex.FileContext) []Finding {
	var matched []Rule
	for _, rule := range r.rules {
		if rule.Scope() == ScopeFile && matchesRule(rule, fc.Path) {
			matched = append(matched, rule)
		}
	}

	results := make([][]Finding, len(matched))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers())
	for i, rule := range matched {
		i, rule := i, rule
		g.Go(func() error {
			findings, err := runRule(rule, &Context{File: fc})
			if err != nil {
				log.Printf("rules: %s on %s: %v", rule.Name(), fc.Path, err)
				return nil
			}
			results[i] = findings
			return nil
		})
	}
	_ = g.Wait()

	var all []Finding
	for _, f := range results {
		all = append(all, f...)
	}
	return all
}

// RunFiles runs RunFile across every FileContext, bounded by maxWorkers()
// concurrent files (each file's own rule set is itself bounded, so total
// goroutine fan-out stays proportional rather than quadratic).
func (r *Registry) RunFiles(ctx context.Context, files []*fileindex.FileContext) []Finding {
	results := make([][]Finding, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers())
	for i, fc := range files {
		i, fc := i, fc
		g.Go(func() error {
			results[i] = r.RunFile(ctx, fc)
			return nil
		})
	}
	_ = g.Wait()

	var all []Finding
	for _, f := range results {
		all = append(all, f...)
	}
	return all
}

// RunDatabase runs every ScopeDatabase rule once against db, isolating
// panics/errors per rule.
func (r *Registry) RunDatabase(ctx context.Context, db *sql.DB) []Finding {
	var all []Finding
	for _, rule := range r.rules {
		if rule.Scope() != ScopeDatabase {
			continue
		}
		findings, err := runRule(rule, &Context{DB: db})
		if err != nil {
			log.Printf("rules: %s: %v", rule.Name(), err)
			continue
		}
		all = append(all, findings...)
	}
	return all
}
