package taint

// FrameworkSafeSinks lists sink-shaped calls that match DefaultSinks but
// are not exploitable in practice because the framework already encodes
// their output: a JSON response helper serializes its argument rather
// than writing it into HTML or a shell, so a value reaching one of these
// is not the same risk as reaching innerHTML or os.system. This is
// configuration, not analyzer logic, and is consulted by Findings before
// a detection is converted into a rules.Finding; editing this map never
// touches graph/callgraph/analysis/taint/analyzer.go.
var FrameworkSafeSinks = map[string]bool{
	"flask.jsonify":            true,
	"jsonify":                  true,
	"django.http.JsonResponse": true,
	"JsonResponse":             true,
	"res.json":                 true,
}

// isFrameworkSafeSink reports whether sinkCall names a framework-safe
// sink, matching the bare call name and any dotted suffix the same way
// AnalyzeIntraProceduralTaint's own pattern matching does.
func isFrameworkSafeSink(sinkCall string) bool {
	if FrameworkSafeSinks[sinkCall] {
		return true
	}
	for safe := range FrameworkSafeSinks {
		if len(sinkCall) > len(safe) && sinkCall[len(sinkCall)-len(safe)-1:] == "."+safe {
			return true
		}
	}
	return false
}
