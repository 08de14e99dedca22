package taint

// DefaultSources/DefaultSinks/DefaultSanitizers seed AnalyzeIntraProceduralTaint
// beyond its built-in stdlib tables, extended with the JS/TS equivalents
// spec.md §4.G names. The Python stdlib entries are covered natively by
// graph/callgraph/analysis/taint's hardcoded tables; these lists carry the
// framework- and JS/TS-level patterns the rule engine's pattern matchers
// also consult when scanning extracted records that never go through
// statement-level AST analysis (e.g. api_endpoints, sql_queries rows).
var DefaultSources = []string{
	"request.GET", "request.POST", "request.args", "request.form", "request.json",
	"flask.request", "input", "sys.argv", "os.environ",
	"process.env", "req.body", "req.query", "req.params", "req.cookies",
	"window.location", "document.location", "document.cookie",
}

var DefaultSinks = []string{
	"cursor.execute", "connection.execute", "session.execute", "db.execute",
	"eval", "exec", "subprocess.call", "subprocess.run", "os.system",
	"res.send", "res.write", "innerHTML", "document.write",
	"child_process.exec", "child_process.spawn",
	"os.path.join", "open", "fs.readFile", "fs.readFileSync", "send_file",
}

var DefaultSanitizers = []string{
	"html.escape", "markupsafe.escape", "bleach.clean",
	"shlex.quote", "urllib.parse.quote",
	"DOMPurify.sanitize", "validator.escape", "encodeURIComponent",
	"safe_join", "os.path.realpath", "path.resolve",
}
