package rules

import (
	"strconv"

	"github.com/TheAuditorTool/auditor-core/dsl"
)

// confidenceScore maps the rule engine's discrete Confidence onto the
// [0,1] scale dsl.EnrichedDetection.ConfidenceLevel buckets against.
func confidenceScore(c Confidence) float64 {
	switch c {
	case ConfidenceHigh:
		return 0.9
	case ConfidenceMedium:
		return 0.6
	default:
		return 0.3
	}
}

// ToEnrichedDetection adapts a rule-engine Finding into the
// dsl.EnrichedDetection shape every output formatter consumes, so
// rules.Registry results can be reported through the same json/sarif/text
// writers as dsl.RuleLoader detections.
func ToEnrichedDetection(f Finding) *dsl.EnrichedDetection {
	var cwe []string
	if f.CWE != "" {
		cwe = []string{f.CWE}
	}

	snippet := dsl.CodeSnippet{StartLine: f.Line, HighlightLine: f.Line}
	if f.Snippet != "" {
		snippet.Lines = []dsl.SnippetLine{{Number: f.Line, Content: f.Snippet, IsHighlight: true}}
	}

	return &dsl.EnrichedDetection{
		Detection: dsl.DataflowDetection{
			SinkLine:   f.Line,
			SinkCall:   f.RuleName,
			Confidence: confidenceScore(f.Confidence),
		},
		Location: dsl.LocationInfo{
			FilePath: f.FilePath,
			RelPath:  f.FilePath,
			Line:     f.Line,
			Column:   f.Column,
		},
		Snippet: snippet,
		Rule: dsl.RuleMetadata{
			ID:          f.RuleName,
			Name:        f.RuleName,
			Severity:    string(f.Severity),
			Description: f.Message,
			CWE:         cwe,
		},
		DetectionType: dsl.DetectionTypePattern,
	}
}

// ToEnrichedDetections converts a batch of Findings, preserving order.
func ToEnrichedDetections(findings []Finding) []*dsl.EnrichedDetection {
	out := make([]*dsl.EnrichedDetection, len(findings))
	for i, f := range findings {
		out[i] = ToEnrichedDetection(f)
	}
	return out
}

// correlatedRuleID builds a stable synthetic rule ID for a CorrelatedFinding,
// since correlation groups don't carry one of their own.
func correlatedRuleID(c CorrelatedFinding) string {
	return "correlation:" + c.RuleName + ":" + strconv.Itoa(c.Line)
}

// ToEnrichedDetection adapts a CorrelatedFinding into the same output shape,
// carrying its member findings' rule names into the description.
func (c CorrelatedFinding) ToEnrichedDetection() *dsl.EnrichedDetection {
	desc := c.Description
	for _, m := range c.Members {
		desc += " | " + m.RuleName
	}

	return &dsl.EnrichedDetection{
		Detection: dsl.DataflowDetection{
			SinkLine:   c.Line,
			SinkCall:   c.RuleName,
			Confidence: c.Confidence,
		},
		Location: dsl.LocationInfo{
			FilePath: c.FilePath,
			RelPath:  c.FilePath,
			Line:     c.Line,
		},
		Rule: dsl.RuleMetadata{
			ID:          correlatedRuleID(c),
			Name:        c.RuleName,
			Severity:    "high",
			Description: desc,
		},
		DetectionType: dsl.DetectionTypePattern,
	}
}
