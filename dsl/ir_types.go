package dsl

// IRType discriminates the matcher/logic node kinds a loaded rule's JSON IR
// can contain.
type IRType string

const (
	IRTypeCallMatcher     IRType = "call_matcher"
	IRTypeVariableMatcher IRType = "variable_matcher"
	IRTypeDataflow        IRType = "dataflow"
	IRTypeLogicAnd        IRType = "logic_and"
	IRTypeLogicOr         IRType = "logic_or"
	IRTypeLogicNot        IRType = "logic_not"
)

// MatcherIR is implemented by every node the rule loader can dispatch on.
type MatcherIR interface {
	GetType() IRType
}

// ArgumentConstraint restricts an argument value, by position or keyword,
// to an exact value, a wildcard pattern, or a set of alternatives.
type ArgumentConstraint struct {
	Value    interface{} `json:"value"`
	Wildcard bool        `json:"wildcard"`
}

// CallMatcherIR matches call sites whose target matches Patterns (exact or
// wildcard per Wildcard), optionally constrained by positional/keyword
// argument values.
type CallMatcherIR struct {
	Type           string                        `json:"type"`
	Patterns       []string                      `json:"patterns"`
	Wildcard       bool                          `json:"wildcard"`
	MatchMode      string                        `json:"match_mode"` // "any" | "all"
	PositionalArgs map[string]ArgumentConstraint `json:"positional_args,omitempty"`
	KeywordArgs    map[string]ArgumentConstraint  `json:"keyword_args,omitempty"`
}

// GetType implements MatcherIR.
func (m *CallMatcherIR) GetType() IRType { return IRTypeCallMatcher }

// VariableMatcherIR matches call-site arguments whose variable name
// matches Pattern.
type VariableMatcherIR struct {
	Type     string `json:"type"`
	Pattern  string `json:"pattern"`
	Wildcard bool   `json:"wildcard"`
}

// GetType implements MatcherIR.
func (m *VariableMatcherIR) GetType() IRType { return IRTypeVariableMatcher }

// PropagationIR describes one taint-propagating construct (assignment,
// return, parameter binding) a dataflow rule should treat as a relay
// rather than a source or sink.
type PropagationIR struct {
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DataflowIR describes a source-to-sink taint rule: Sources and Sinks are
// call matchers, Sanitizers break the flow, Scope selects intra- ("local")
// vs inter-procedural ("global") analysis.
type DataflowIR struct {
	Type        string          `json:"type"`
	Sources     []CallMatcherIR `json:"sources"`
	Sinks       []CallMatcherIR `json:"sinks"`
	Sanitizers  []CallMatcherIR `json:"sanitizers"`
	Propagation []PropagationIR `json:"propagation,omitempty"`
	Scope       string          `json:"scope"` // "local" | "global"
}

// GetType implements MatcherIR.
func (m *DataflowIR) GetType() IRType { return IRTypeDataflow }

// LogicIR combines nested matchers under and/or/not.
type LogicIR struct {
	Type     string        `json:"type"`
	Operands []interface{} `json:"operands,omitempty"`
}

// GetType implements MatcherIR.
func (m *LogicIR) GetType() IRType { return IRType(m.Type) }

// RuleIR is one rule as loaded from a Python DSL script's JSON output:
// Matcher carries the untyped IR tree (dispatched by loader.ExecuteRule),
// Rule carries the rule's display metadata.
type RuleIR struct {
	Rule    RuleMetadata `json:"rule"`
	Matcher interface{}  `json:"matcher"`
}

// DataflowDetection is the uniform result shape every IR executor
// (call_matcher, variable_matcher, dataflow) produces, so RuleLoader.ExecuteRule
// can return one slice type regardless of which matcher kind ran.
type DataflowDetection struct {
	FunctionFQN string
	SourceLine  int
	SinkLine    int
	TaintedVar  string
	SinkCall    string
	Confidence  float64
	Sanitized   bool
	Scope       string
}
