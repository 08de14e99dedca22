package core

// TaintInfo records a single taint fact: where the value originated, where
// it flowed, and how confident the analyzer is that the flow is real.
type TaintInfo struct {
	SourceLine      uint32
	SourceVar       string
	SinkLine        uint32
	SinkVar         string
	SinkCall        string
	PropagationPath []string
	Confidence      float64
	Sanitized       bool
}

// IsTainted reports whether info still represents a live taint: positive
// confidence and not neutralized by a sanitizer on the path.
func (t *TaintInfo) IsTainted() bool {
	return t.Confidence > 0 && !t.Sanitized
}

// IsHighConfidence reports confidence >= 0.8.
func (t *TaintInfo) IsHighConfidence() bool {
	return t.Confidence >= 0.8
}

// IsMediumConfidence reports confidence in [0.5, 0.8).
func (t *TaintInfo) IsMediumConfidence() bool {
	return t.Confidence >= 0.5 && t.Confidence < 0.8
}

// IsLowConfidence reports confidence in (0, 0.5).
func (t *TaintInfo) IsLowConfidence() bool {
	return t.Confidence > 0 && t.Confidence < 0.5
}

// TaintSummary is the per-function result of taint analysis: every local
// variable's taint history, the confirmed source-to-sink detections, which
// parameters carry taint in, and whether the return value carries taint
// out. Function summaries are cached so interprocedural analysis never
// re-walks a function body twice for the same call graph.
type TaintSummary struct {
	FunctionFQN     string
	TaintedVars     map[string][]*TaintInfo
	Detections      []*TaintInfo
	TaintedParams   []string
	TaintedReturn   bool
	ReturnTaintInfo *TaintInfo
	AnalysisError   bool
	ErrorMessage    string
}

// NewTaintSummary returns an empty summary for the function identified by
// fqn (e.g. "module.Class.method").
func NewTaintSummary(fqn string) *TaintSummary {
	return &TaintSummary{
		FunctionFQN:   fqn,
		TaintedVars:   make(map[string][]*TaintInfo),
		Detections:    make([]*TaintInfo, 0),
		TaintedParams: make([]string, 0),
	}
}

// AddTaintedVar records that taint info flows into variable name. Empty
// names and nil info are ignored so callers don't need to guard every call
// site.
func (s *TaintSummary) AddTaintedVar(name string, info *TaintInfo) {
	if name == "" || info == nil {
		return
	}
	s.TaintedVars[name] = append(s.TaintedVars[name], info)
}

// GetTaintInfo returns every taint fact recorded for name, or nil if none.
func (s *TaintSummary) GetTaintInfo(name string) []*TaintInfo {
	infos, ok := s.TaintedVars[name]
	if !ok {
		return nil
	}
	return infos
}

// IsTainted reports whether any recorded path for name is still tainted.
func (s *TaintSummary) IsTainted(name string) bool {
	for _, info := range s.TaintedVars[name] {
		if info.IsTainted() {
			return true
		}
	}
	return false
}

// AddDetection records a confirmed source-to-sink flow. nil is ignored.
func (s *TaintSummary) AddDetection(info *TaintInfo) {
	if info == nil {
		return
	}
	s.Detections = append(s.Detections, info)
}

// HasDetections reports whether any source-to-sink flow was confirmed.
func (s *TaintSummary) HasDetections() bool {
	return len(s.Detections) > 0
}

// GetHighConfidenceDetections returns detections with IsHighConfidence true,
// in original order.
func (s *TaintSummary) GetHighConfidenceDetections() []*TaintInfo {
	var out []*TaintInfo
	for _, d := range s.Detections {
		if d.IsHighConfidence() {
			out = append(out, d)
		}
	}
	return out
}

// GetMediumConfidenceDetections mirrors GetHighConfidenceDetections for the
// medium confidence band.
func (s *TaintSummary) GetMediumConfidenceDetections() []*TaintInfo {
	var out []*TaintInfo
	for _, d := range s.Detections {
		if d.IsMediumConfidence() {
			out = append(out, d)
		}
	}
	return out
}

// GetLowConfidenceDetections mirrors GetHighConfidenceDetections for the low
// confidence band.
func (s *TaintSummary) GetLowConfidenceDetections() []*TaintInfo {
	var out []*TaintInfo
	for _, d := range s.Detections {
		if d.IsLowConfidence() {
			out = append(out, d)
		}
	}
	return out
}

// MarkTaintedParam records that param carries taint in from the caller.
// Duplicate and empty names are ignored.
func (s *TaintSummary) MarkTaintedParam(param string) {
	if param == "" || s.IsParamTainted(param) {
		return
	}
	s.TaintedParams = append(s.TaintedParams, param)
}

// IsParamTainted reports whether param was marked via MarkTaintedParam.
func (s *TaintSummary) IsParamTainted(param string) bool {
	for _, p := range s.TaintedParams {
		if p == param {
			return true
		}
	}
	return false
}

// MarkReturnTainted records that the function's return value carries info's
// taint out to its callers.
func (s *TaintSummary) MarkReturnTainted(info *TaintInfo) {
	s.TaintedReturn = true
	s.ReturnTaintInfo = info
}

// SetError marks the summary as incomplete due to an analysis failure
// (parse error, recursion budget exhausted, unsupported construct).
func (s *TaintSummary) SetError(msg string) {
	s.AnalysisError = true
	s.ErrorMessage = msg
}

// IsComplete reports whether analysis finished without error.
func (s *TaintSummary) IsComplete() bool {
	return !s.AnalysisError
}

// GetTaintedVarCount returns the number of distinct variables with at least
// one live (non-sanitized) taint path.
func (s *TaintSummary) GetTaintedVarCount() int {
	count := 0
	for name := range s.TaintedVars {
		if s.IsTainted(name) {
			count++
		}
	}
	return count
}

// GetDetectionCount returns the number of confirmed source-to-sink flows.
func (s *TaintSummary) GetDetectionCount() int {
	return len(s.Detections)
}
