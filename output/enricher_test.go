package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TheAuditorTool/auditor-core/dsl"
	"github.com/TheAuditorTool/auditor-core/rules"
)

func TestNewEnricher(t *testing.T) {
	tests := []struct {
		name string
		opts *OutputOptions
	}{
		{"nil options uses defaults", nil},
		{"custom options preserved", &OutputOptions{Verbosity: VerbosityDebug}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnricher(tt.opts)
			if e == nil {
				t.Fatal("expected non-nil enricher")
			}
			if e.fileCache == nil {
				t.Error("expected initialized fileCache")
			}
		})
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CRITICAL", "critical"},
		{"High", "high"},
		{"  medium  ", "medium"},
		{"low", "low"},
		{"info", "info"},
		{"unknown", "medium"},
		{"", "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeSeverity(tt.input)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractSnippet(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.py")
	content := `line 1
line 2
line 3
line 4
line 5
line 6
line 7`
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEnricher(&OutputOptions{ContextLines: 2})

	tests := []struct {
		name          string
		line          int
		expectedStart int
		expectedCount int
	}{
		{"middle line", 4, 2, 5},
		{"first line", 1, 1, 3},
		{"last line", 7, 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := dsl.LocationInfo{FilePath: testFile, Line: tt.line}
			snippet, err := e.extractSnippet(loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snippet.StartLine != tt.expectedStart {
				t.Errorf("StartLine: got %d, want %d", snippet.StartLine, tt.expectedStart)
			}
			if len(snippet.Lines) != tt.expectedCount {
				t.Errorf("line count: got %d, want %d", len(snippet.Lines), tt.expectedCount)
			}
			if snippet.HighlightLine != tt.line {
				t.Errorf("HighlightLine: got %d, want %d", snippet.HighlightLine, tt.line)
			}
		})
	}
}

func TestExtractSnippetMissingFile(t *testing.T) {
	e := NewEnricher(nil)
	loc := dsl.LocationInfo{FilePath: "/nonexistent/file.py", Line: 10}
	_, err := e.extractSnippet(loc)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractSnippetEmptyPath(t *testing.T) {
	e := NewEnricher(nil)
	loc := dsl.LocationInfo{FilePath: "", Line: 10}
	snippet, err := e.extractSnippet(loc)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(snippet.Lines) != 0 {
		t.Errorf("expected empty snippet for empty path")
	}
}

func TestBuildReferenceURLs(t *testing.T) {
	e := NewEnricher(nil)

	tests := []struct {
		name     string
		cwes     []string
		expected []string
	}{
		{
			"single CWE",
			[]string{"CWE-78"},
			[]string{"https://cwe.mitre.org/data/definitions/78.html"},
		},
		{
			"multiple CWEs",
			[]string{"CWE-78", "CWE-79"},
			[]string{
				"https://cwe.mitre.org/data/definitions/78.html",
				"https://cwe.mitre.org/data/definitions/79.html",
			},
		},
		{
			"empty CWEs",
			nil,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.buildReferenceURLs(tt.cwes)
			if len(got) != len(tt.expected) {
				t.Errorf("got %d refs, want %d", len(got), len(tt.expected))
			}
			for i, ref := range got {
				if ref != tt.expected[i] {
					t.Errorf("ref[%d]: got %q, want %q", i, ref, tt.expected[i])
				}
			}
		})
	}
}

func TestEnrichedDetectionConfidenceLevel(t *testing.T) {
	tests := []struct {
		confidence float64
		expected   string
	}{
		{0.9, "high"},
		{0.8, "high"},
		{0.7, "medium"},
		{0.5, "medium"},
		{0.3, "low"},
		{0.0, "low"},
	}

	for _, tt := range tests {
		ed := &dsl.EnrichedDetection{
			Detection: dsl.DataflowDetection{Confidence: tt.confidence},
		}
		got := ed.ConfidenceLevel()
		if got != tt.expected {
			t.Errorf("confidence %v: got %q, want %q", tt.confidence, got, tt.expected)
		}
	}
}

func TestEnrichedDetectionBadge(t *testing.T) {
	tests := []struct {
		detType  dsl.DetectionType
		expected string
	}{
		{dsl.DetectionTypePattern, "[Pattern]"},
		{dsl.DetectionTypeTaintLocal, "[Taint-Local]"},
		{dsl.DetectionTypeTaintGlobal, "[Taint-Global]"},
		{"unknown", "[Unknown]"},
	}

	for _, tt := range tests {
		ed := &dsl.EnrichedDetection{DetectionType: tt.detType}
		got := ed.DetectionBadge()
		if got != tt.expected {
			t.Errorf("type %v: got %q, want %q", tt.detType, got, tt.expected)
		}
	}
}

func TestFileCache(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "cached.py")
	if err := os.WriteFile(testFile, []byte("line1\nline2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEnricher(nil)

	lines1, err := e.readFileLines(testFile)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}

	lines2, err := e.readFileLines(testFile)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}

	if &lines1[0] != &lines2[0] {
		t.Error("expected cached result")
	}
}

func TestShouldShowStatistics(t *testing.T) {
	tests := []struct {
		name      string
		verbosity VerbosityLevel
		expected  bool
	}{
		{"default does not show stats", VerbosityDefault, false},
		{"verbose shows stats", VerbosityVerbose, true},
		{"debug shows stats", VerbosityDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &OutputOptions{Verbosity: tt.verbosity}
			got := opts.ShouldShowStatistics()
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShouldShowDebug(t *testing.T) {
	tests := []struct {
		name      string
		verbosity VerbosityLevel
		expected  bool
	}{
		{"default does not show debug", VerbosityDefault, false},
		{"verbose does not show debug", VerbosityVerbose, false},
		{"debug shows debug", VerbosityDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &OutputOptions{Verbosity: tt.verbosity}
			got := opts.ShouldShowDebug()
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEnrichFinding(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.py")
	content := `def dangerous():
    user_input = input()
    exec(user_input)
`
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &OutputOptions{
		ProjectRoot:  tmpDir,
		ContextLines: 1,
	}
	e := NewEnricher(opts)

	finding := rules.Finding{
		RuleName:   "code-injection",
		FilePath:   testFile,
		Line:       3,
		Severity:   rules.SeverityCritical,
		Confidence: rules.ConfidenceHigh,
		Category:   "security",
		Message:    "Dangerous code execution",
		CWE:        "CWE-94",
	}

	enriched, err := e.EnrichFinding(finding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if enriched.Rule.ID != "code-injection" {
		t.Errorf("rule ID: got %v, want %v", enriched.Rule.ID, "code-injection")
	}
	if enriched.Rule.Severity != "critical" {
		t.Errorf("severity: got %v, want %v", enriched.Rule.Severity, "critical")
	}
	if len(enriched.Rule.CWE) != 1 || enriched.Rule.CWE[0] != "CWE-94" {
		t.Errorf("CWE: got %v, want [CWE-94]", enriched.Rule.CWE)
	}
	if enriched.Location.RelPath != "test.py" {
		t.Errorf("rel path: got %v, want test.py", enriched.Location.RelPath)
	}
	if len(enriched.Snippet.Lines) == 0 {
		t.Error("expected snippet to be populated from disk")
	}
	if len(enriched.Rule.References) != 1 {
		t.Errorf("expected 1 reference URL, got %d", len(enriched.Rule.References))
	}

	confidence := enriched.ConfidenceLevel()
	if confidence != "high" {
		t.Errorf("confidence level: got %v, want high", confidence)
	}
}

func TestEnrichAll(t *testing.T) {
	e := NewEnricher(nil)

	findings := []rules.Finding{
		{RuleName: "rule1", FilePath: "a.py", Line: 10, Severity: rules.SeverityHigh, Confidence: rules.ConfidenceHigh},
		{RuleName: "rule2", FilePath: "b.py", Line: 20, Severity: rules.SeverityLow, Confidence: rules.ConfidenceLow},
	}

	enriched, err := e.EnrichAll(findings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enriched) != 2 {
		t.Fatalf("expected 2 enriched detections, got %d", len(enriched))
	}
	if enriched[0].Rule.ID != "rule1" {
		t.Errorf("first detection rule: got %v, want rule1", enriched[0].Rule.ID)
	}
	if enriched[1].Rule.ID != "rule2" {
		t.Errorf("second detection rule: got %v, want rule2", enriched[1].Rule.ID)
	}
}
