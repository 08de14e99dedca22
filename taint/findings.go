package taint

import (
	"fmt"

	"github.com/TheAuditorTool/auditor-core/graph/callgraph/core"
	"github.com/TheAuditorTool/auditor-core/rules"
)

// Findings walks every function summary the Engine produced and converts
// each confirmed source-to-sink TaintInfo into a rules.Finding, so the
// interprocedural pass reports through the same Finding shape as the
// pattern and database rules instead of a taint-specific record type.
func (e *Engine) Findings() []rules.Finding {
	var out []rules.Finding
	for fqn, summary := range e.CallGraph.Summaries {
		if summary == nil {
			continue
		}
		node := e.CallGraph.Functions[fqn]
		file := ""
		if node != nil {
			file = node.File
		}
		for _, d := range summary.Detections {
			if isFrameworkSafeSink(d.SinkCall) {
				continue
			}
			out = append(out, detectionToFinding(file, fqn, d))
		}
	}
	return out
}

func detectionToFinding(file, fqn string, d *core.TaintInfo) rules.Finding {
	confidence := rules.ConfidenceLow
	switch {
	case d.IsHighConfidence():
		confidence = rules.ConfidenceHigh
	case d.IsMediumConfidence():
		confidence = rules.ConfidenceMedium
	}

	severity := rules.SeverityMedium
	if d.IsHighConfidence() {
		severity = rules.SeverityHigh
	}

	message := fmt.Sprintf("tainted value from %s (line %d) reaches %s at line %d",
		d.SourceVar, d.SourceLine, d.SinkCall, d.SinkLine)

	details := map[string]string{
		"function":   fqn,
		"source_var": d.SourceVar,
		"sink_var":   d.SinkVar,
	}
	if len(d.PropagationPath) > 0 {
		path := ""
		for i, step := range d.PropagationPath {
			if i > 0 {
				path += " -> "
			}
			path += step
		}
		details["propagation_path"] = path
	}

	return rules.Finding{
		RuleName:   "taint-flow",
		FilePath:   file,
		Line:       int(d.SinkLine),
		Severity:   severity,
		Confidence: confidence,
		Category:   "taint",
		Message:    message,
		Details:    details,
	}
}
