package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// CorrelationFact is one entry in a CorrelationRule's co_occurring_facts
// list: a tool name plus a pattern matched against a Finding's RuleName or
// Message.
type CorrelationFact struct {
	Tool    string `yaml:"tool"`
	Pattern string `yaml:"pattern"`

	compiled *regexp.Regexp
}

// CorrelationRule groups Findings that share a repo_index location and each
// match one of co_occurring_facts into a single higher-confidence composite
// Finding.
type CorrelationRule struct {
	RuleName    string            `yaml:"name"`
	Description string            `yaml:"description"`
	Confidence  float64           `yaml:"confidence"`
	Facts       []CorrelationFact `yaml:"co_occurring_facts"`
}

type correlationFile struct {
	Rules []CorrelationRule `yaml:"rules"`

	// single-rule file shape: the fields of CorrelationRule inlined at the
	// document root, used when a file describes exactly one rule.
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Confidence  float64           `yaml:"confidence"`
	Facts       []CorrelationFact `yaml:"co_occurring_facts"`
}

// LoadCorrelationRules reads every *.yml/*.yaml file in dir and returns the
// correlation rules they describe. A file that fails to parse or names an
// invalid rule is skipped with a logged warning rather than aborting the
// load, matching the loader's tolerance for partial rule sets.
func LoadCorrelationRules(dir string) ([]CorrelationRule, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rules: read correlation dir %q: %w", dir, err)
	}

	var rules []CorrelationRule
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		parsed, err := loadCorrelationFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rules: skipping correlation rules in %s: %v\n", path, err)
			continue
		}
		rules = append(rules, parsed...)
	}
	return rules, nil
}

func loadCorrelationFile(path string) ([]CorrelationRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc correlationFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var raw []CorrelationRule
	switch {
	case len(doc.Rules) > 0:
		raw = doc.Rules
	case doc.Name != "" && len(doc.Facts) > 0:
		raw = []CorrelationRule{{
			RuleName:    doc.Name,
			Description: doc.Description,
			Confidence:  doc.Confidence,
			Facts:       doc.Facts,
		}}
	default:
		return nil, fmt.Errorf("must contain a 'rules' list or a single rule with 'name' and 'co_occurring_facts'")
	}

	var rules []CorrelationRule
	for _, r := range raw {
		if err := r.validate(); err != nil {
			fmt.Fprintf(os.Stderr, "rules: skipping invalid correlation rule %q: %v\n", r.RuleName, err)
			continue
		}
		r.compile()
		rules = append(rules, r)
	}
	return rules, nil
}

func (r *CorrelationRule) validate() error {
	if r.RuleName == "" {
		return fmt.Errorf("rule has no name")
	}
	if len(r.Facts) < 2 {
		return fmt.Errorf("rule %q must have at least 2 co-occurring facts", r.RuleName)
	}
	for i, f := range r.Facts {
		if f.Tool == "" || f.Pattern == "" {
			return fmt.Errorf("rule %q: fact %d must have 'tool' and 'pattern'", r.RuleName, i)
		}
	}
	if r.Confidence == 0 {
		r.Confidence = 0.8
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("rule %q: confidence %v out of range [0,1]", r.RuleName, r.Confidence)
	}
	return nil
}

// compile pre-compiles each fact's pattern as a case-insensitive regex; a
// pattern that isn't valid regex syntax (e.g. contains bare brackets from a
// glob) is kept as a literal substring match instead.
func (r *CorrelationRule) compile() {
	for i := range r.Facts {
		f := &r.Facts[i]
		if re, err := regexp.Compile("(?i)" + f.Pattern); err == nil {
			f.compiled = re
		}
	}
}

// matchesFact reports whether finding corresponds to rule's tool at
// factIndex.
func (f CorrelationFact) matches(finding Finding) bool {
	if finding.Category != f.Tool && finding.RuleName != f.Tool {
		return false
	}
	if f.compiled != nil {
		return f.compiled.MatchString(finding.RuleName) || f.compiled.MatchString(finding.Message)
	}
	return strings.Contains(finding.RuleName, f.Pattern) || strings.Contains(finding.Message, f.Pattern)
}

// CorrelatedFinding is the composite result of a CorrelationRule matching a
// group of co-located Findings.
type CorrelatedFinding struct {
	RuleName    string
	Description string
	Confidence  float64
	FilePath    string
	Line        int
	Members     []Finding
}

// Correlate groups findings by file and line and reports, for every rule
// whose facts are all satisfied by some finding at that location, one
// CorrelatedFinding naming the contributing members.
func Correlate(rules []CorrelationRule, findings []Finding) []CorrelatedFinding {
	byLocation := make(map[string][]Finding)
	var order []string
	for _, f := range findings {
		key := fmt.Sprintf("%s:%d", f.FilePath, f.Line)
		if _, ok := byLocation[key]; !ok {
			order = append(order, key)
		}
		byLocation[key] = append(byLocation[key], f)
	}

	var out []CorrelatedFinding
	for _, key := range order {
		group := byLocation[key]
		for _, rule := range rules {
			if members, ok := rule.matchesAll(group); ok {
				out = append(out, CorrelatedFinding{
					RuleName:    rule.RuleName,
					Description: rule.Description,
					Confidence:  rule.Confidence,
					FilePath:    members[0].FilePath,
					Line:        members[0].Line,
					Members:     members,
				})
			}
		}
	}
	return out
}

// matchesAll reports whether every fact in r has at least one matching
// finding within group, returning the matched finding for each fact in
// order.
func (r CorrelationRule) matchesAll(group []Finding) ([]Finding, bool) {
	members := make([]Finding, 0, len(r.Facts))
	for _, fact := range r.Facts {
		matched := false
		for _, finding := range group {
			if fact.matches(finding) {
				members = append(members, finding)
				matched = true
				break
			}
		}
		if !matched {
			return nil, false
		}
	}
	return members, true
}
