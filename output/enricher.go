package output

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/TheAuditorTool/auditor-core/dsl"
	"github.com/TheAuditorTool/auditor-core/rules"
)

// Enricher adds file-context metadata (code snippets, relative paths,
// reference URLs) to rule-engine Findings on their way to an
// EnrichedDetection. Unlike the teacher's FQN-resolving enricher, a Finding
// already carries its file path and line directly from repo_index.db, so
// there's no callgraph lookup stage here - just snippet extraction and
// cosmetic normalization.
type Enricher struct {
	options   *OutputOptions
	fileCache map[string][]string // cache file contents across findings
}

// NewEnricher creates an enricher with the given options.
func NewEnricher(opts *OutputOptions) *Enricher {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &Enricher{
		options:   opts,
		fileCache: make(map[string][]string),
	}
}

// EnrichFinding converts a Finding into an EnrichedDetection, filling in a
// source snippet from disk when the finding didn't already carry one.
func (e *Enricher) EnrichFinding(f rules.Finding) (*dsl.EnrichedDetection, error) {
	enriched := rules.ToEnrichedDetection(f)

	if e.options.ProjectRoot != "" && enriched.Location.FilePath != "" {
		if rel, err := filepath.Rel(e.options.ProjectRoot, enriched.Location.FilePath); err == nil {
			enriched.Location.RelPath = rel
		}
	}

	if len(enriched.Snippet.Lines) == 0 {
		snippet, err := e.extractSnippet(enriched.Location)
		if err == nil {
			enriched.Snippet = snippet
		}
	}

	enriched.Rule.Severity = normalizeSeverity(enriched.Rule.Severity)
	enriched.Rule.References = e.buildReferenceURLs(enriched.Rule.CWE)

	return enriched, nil
}

// EnrichAll enriches a batch of Findings, skipping any that fail to enrich
// rather than aborting the batch.
func (e *Enricher) EnrichAll(findings []rules.Finding) ([]*dsl.EnrichedDetection, error) {
	enriched := make([]*dsl.EnrichedDetection, 0, len(findings))
	for _, f := range findings {
		ed, err := e.EnrichFinding(f)
		if err != nil {
			continue
		}
		enriched = append(enriched, ed)
	}
	return enriched, nil
}

// extractSnippet reads code context around the finding.
func (e *Enricher) extractSnippet(loc dsl.LocationInfo) (dsl.CodeSnippet, error) {
	snippet := dsl.CodeSnippet{HighlightLine: loc.Line}

	if loc.FilePath == "" {
		return snippet, nil
	}

	lines, err := e.readFileLines(loc.FilePath)
	if err != nil {
		return snippet, err
	}

	contextLines := e.options.ContextLines
	if contextLines == 0 {
		contextLines = 3
	}

	startLine := loc.Line - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := loc.Line + contextLines
	if endLine > len(lines) {
		endLine = len(lines)
	}

	snippet.StartLine = startLine
	for i := startLine; i <= endLine; i++ {
		if i > 0 && i <= len(lines) {
			snippet.Lines = append(snippet.Lines, dsl.SnippetLine{
				Number:      i,
				Content:     lines[i-1],
				IsHighlight: i == loc.Line,
			})
		}
	}

	return snippet, nil
}

// readFileLines reads and caches file contents.
func (e *Enricher) readFileLines(filePath string) ([]string, error) {
	if lines, ok := e.fileCache[filePath]; ok {
		return lines, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	e.fileCache[filePath] = lines
	return lines, nil
}

// normalizeSeverity ensures severity is lowercase and valid.
func normalizeSeverity(sev string) string {
	s := strings.ToLower(strings.TrimSpace(sev))
	switch s {
	case "critical", "high", "medium", "low", "info":
		return s
	default:
		return "medium"
	}
}

// buildReferenceURLs creates documentation links from CWE identifiers.
func (e *Enricher) buildReferenceURLs(cwes []string) []string {
	var refs []string
	for _, cwe := range cwes {
		num := strings.TrimPrefix(strings.ToUpper(cwe), "CWE-")
		if num != "" {
			refs = append(refs, "https://cwe.mitre.org/data/definitions/"+num+".html")
		}
	}
	return refs
}
