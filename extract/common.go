package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/TheAuditorTool/auditor-core/fileindex"
)

var sqlKeywordRE = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\s`)

var sqlCommandRE = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|UPDATE|DELETE)`)

// secretPatternRE matches common hardcoded-credential literal shapes;
// entropy scoring below narrows false positives on short strings.
var secretPatternRE = regexp.MustCompile(`(?i)(secret|password|api[_-]?key|token)\s*[:=]\s*["']([^"']{8,})["']`)

var envVarRE = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`os\.environ(?:\.get)?\(\s*["']([A-Za-z0-9_]+)["']`),
	"javascript": regexp.MustCompile(`process\.env\.([A-Za-z0-9_]+)`),
	"typescript": regexp.MustCompile(`process\.env\.([A-Za-z0-9_]+)`),
}

// extractSQLStrings finds string/template-literal nodes whose content looks
// like a SQL statement. Shared across Python (string/f-string) and JS/TS
// (string/template_string) since the detection is purely textual.
func extractSQLStrings(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindStringLiteral) {
		text := n.Content(fc.Content)
		unquoted := strings.Trim(text, "\"'`")
		if !sqlKeywordRE.MatchString(unquoted) {
			continue
		}
		line := int(n.StartPoint().Row) + 1
		queryID := len(out["sql_queries"]) + 1
		out.add("sql_queries", Record{
			"id":         queryID,
			"file":       fc.Path,
			"line":       line,
			"query_text": unquoted,
			"command":    strings.ToUpper(sqlCommandRE.FindString(unquoted)),
		})
		for _, table := range referencedTables(unquoted) {
			out.add("sql_query_tables", Record{
				"query_id":   queryID,
				"table_name": table,
			})
		}
	}
}

var fromTableRE = regexp.MustCompile(`(?i)\bFROM\s+([A-Za-z_][A-Za-z0-9_]*)`)
var intoTableRE = regexp.MustCompile(`(?i)\bINTO\s+([A-Za-z_][A-Za-z0-9_]*)`)
var updateTableRE = regexp.MustCompile(`(?i)\bUPDATE\s+([A-Za-z_][A-Za-z0-9_]*)`)

func referencedTables(query string) []string {
	var tables []string
	seen := make(map[string]bool)
	add := func(m [][]string) {
		for _, g := range m {
			if len(g) > 1 && !seen[g[1]] {
				seen[g[1]] = true
				tables = append(tables, g[1])
			}
		}
	}
	add(fromTableRE.FindAllStringSubmatch(query, -1))
	add(intoTableRE.FindAllStringSubmatch(query, -1))
	add(updateTableRE.FindAllStringSubmatch(query, -1))
	return tables
}

// extractSecrets scans string literals for hardcoded-credential shapes,
// filtering low-entropy matches (repetitive placeholders like "xxxxxxxx"):
// a value whose Shannon entropy is below 2.5 bits per character is skipped.
func extractSecrets(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindStringLiteral) {
		text := n.Content(fc.Content)
		m := secretPatternRE.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := m[2]
		if shannonEntropy(value) < 2.5 {
			continue
		}
		out.add("extraction_errors", Record{
			"file":       fc.Path,
			"phase":      "secret_scan",
			"message":    "possible hardcoded secret: " + m[1],
			"created_at": 0,
		})
	}
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	for _, r := range s {
		counts[r]++
	}
	var entropy float64
	n := float64(len(s))
	for _, c := range counts {
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// extractEnvVarUsage finds os.environ/process.env accesses.
func extractEnvVarUsage(fc *fileindex.FileContext, out Batches) {
	re, ok := envVarRE[fc.Language]
	if !ok {
		return
	}
	lines := strings.Split(string(fc.Content), "\n")
	for i, line := range lines {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			out.add("env_var_usage", Record{
				"file":   fc.Path,
				"line":   i + 1,
				"name":   m[1],
				"access": "read",
			})
		}
	}
}
