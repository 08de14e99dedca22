package extract

import (
	"strings"

	"github.com/TheAuditorTool/auditor-core/fileindex"
	sitter "github.com/smacker/go-tree-sitter"
)

var flaskMethods = map[string]bool{"get": true, "post": true, "put": true, "delete": true, "patch": true}
var fastapiDecorators = map[string]string{
	"app.get": "GET", "app.post": "POST", "app.put": "PUT", "app.delete": "DELETE", "app.patch": "PATCH",
	"router.get": "GET", "router.post": "POST", "router.put": "PUT", "router.delete": "DELETE", "router.patch": "PATCH",
}

// extractPython is the Python dispatcher: routes, ORM models, decorators,
// SQL/secret/env-var scans, and symbol table entries. Grounded on
// graph/parser_python.go's decorator extraction and
// graph/callgraph/resolution/orm.go's ORM call-pattern recognition.
func extractPython(fc *fileindex.FileContext) Batches {
	out := make(Batches)

	extractPythonSymbols(fc, out)
	extractPythonRoutes(fc, out)
	extractPythonORMModels(fc, out)
	extractPythonJWT(fc, out)
	extractSQLStrings(fc, out)
	extractSecrets(fc, out)
	extractEnvVarUsage(fc, out)

	return out
}

func extractPythonSymbols(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindFunctionDef) {
		name := fieldText(n, "name", fc.Content)
		if name == "" {
			continue
		}
		out.add("symbols", Record{
			"path": fc.Path,
			"name": name,
			"kind": "function",
			"line": int(n.StartPoint().Row) + 1,
		})
	}
	for _, n := range fc.FindNodes(fileindex.KindClassDef) {
		name := fieldText(n, "name", fc.Content)
		if name == "" {
			continue
		}
		out.add("symbols", Record{
			"path": fc.Path,
			"name": name,
			"kind": "class",
			"line": int(n.StartPoint().Row) + 1,
		})
	}
}

// authDecoratorName strips a decorator node down to its bare head, the same
// way a route decorator's head is read, so sibling decorators on the same
// decorated_definition can be compared against a keyword list.
func authDecoratorName(n *sitter.Node, content []byte) string {
	text := strings.TrimPrefix(strings.TrimSpace(n.Content(content)), "@")
	if idx := strings.Index(text, "("); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractPythonRoutes recognizes Flask (@app.route("/x", methods=["POST"]))
// and FastAPI (@app.get("/x")) decorator shapes, per spec.md §4.C's route
// extractor requirement and original_source's rules/frameworks/flask_analyzer.py.
// Every decorator stacked on the same decorated_definition as the route
// decorator is recorded as a control on that endpoint, grounded on
// graph/parser_python.go's extractDecorators/hasDecorator pattern of
// collecting a decorated_definition's direct decorator children together.
func extractPythonRoutes(fc *fileindex.FileContext, out Batches) {
	groups := make(map[*sitter.Node][]*sitter.Node)
	var order []*sitter.Node
	for _, n := range fc.FindNodes(fileindex.KindDecorator) {
		parent := n.Parent()
		if parent == nil || parent.Type() != "decorated_definition" {
			continue
		}
		if _, seen := groups[parent]; !seen {
			order = append(order, parent)
		}
		groups[parent] = append(groups[parent], n)
	}

	for _, parent := range order {
		decorators := groups[parent]
		var routeNode *sitter.Node
		var head, args string
		for _, n := range decorators {
			text := n.Content(fc.Content)
			callText := strings.TrimPrefix(strings.TrimSpace(text), "@")
			idx := strings.Index(callText, "(")
			if idx == -1 {
				continue
			}
			h := callText[:idx]
			a := callText[idx+1 : max(idx+1, strings.LastIndex(callText, ")"))]
			if _, ok := fastapiDecorators[h]; ok {
				routeNode, head, args = n, h, a
				break
			}
			if strings.HasSuffix(h, ".route") {
				routeNode, head, args = n, h, a
				break
			}
		}
		if routeNode == nil {
			continue
		}

		var controls []string
		for _, n := range decorators {
			if n == routeNode {
				continue
			}
			if name := authDecoratorName(n, fc.Content); name != "" {
				controls = append(controls, name)
			}
		}

		line := int(routeNode.StartPoint().Row) + 1

		addEndpoint := func(method string) {
			endpointID := len(out["api_endpoints"]) + 1
			out.add("api_endpoints", Record{
				"id": endpointID, "file": fc.Path, "line": line,
				"method": method, "pattern": firstStringArg(args),
			})
			for _, control := range controls {
				out.add("api_endpoint_controls", Record{
					"endpoint_id": endpointID, "control_name": control,
				})
			}
		}

		if method, ok := fastapiDecorators[head]; ok {
			addEndpoint(method)
			continue
		}
		if strings.HasSuffix(head, ".route") {
			for _, method := range routeMethods(args) {
				addEndpoint(method)
			}
			continue
		}
		_ = flaskMethods
	}
}

func routeMethods(args string) []string {
	if idx := strings.Index(args, "methods"); idx != -1 {
		rest := args[idx:]
		start := strings.Index(rest, "[")
		end := strings.Index(rest, "]")
		if start != -1 && end != -1 && end > start {
			var methods []string
			for _, m := range strings.Split(rest[start+1:end], ",") {
				m = strings.Trim(strings.TrimSpace(m), `"'`)
				if m != "" {
					methods = append(methods, strings.ToUpper(m))
				}
			}
			return methods
		}
	}
	return []string{"GET"}
}

func firstStringArg(args string) string {
	args = strings.TrimSpace(args)
	if len(args) == 0 {
		return ""
	}
	quote := args[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	end := strings.IndexByte(args[1:], quote)
	if end == -1 {
		return ""
	}
	return args[1 : end+1]
}

// extractPythonORMModels recognizes SQLAlchemy (class Foo(Base): ... /
// db.Column(...)) and Django (class Foo(models.Model): field = models.X())
// model declarations.
func extractPythonORMModels(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindClassDef) {
		superclasses := superclassNames(n, fc.Content)
		kind := ""
		for _, sc := range superclasses {
			switch {
			case strings.Contains(sc, "Base"):
				kind = "sqlalchemy"
			case strings.Contains(sc, "models.Model"), sc == "Model":
				kind = "django"
			}
		}
		if kind == "" {
			continue
		}
		name := fieldText(n, "name", fc.Content)
		modelID := len(out["python_orm_models"]) + 1
		out.add("python_orm_models", Record{
			"id": modelID, "file": fc.Path, "line": int(n.StartPoint().Row) + 1,
			"class_name": name, "orm_kind": kind,
		})

		body := n.ChildByFieldName("body")
		if body == nil {
			continue
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			stmt := body.NamedChild(i)
			if stmt.Type() != "expression_statement" {
				continue
			}
			assign := stmt.NamedChild(0)
			if assign == nil || assign.Type() != "assignment" {
				continue
			}
			left := assign.ChildByFieldName("left")
			right := assign.ChildByFieldName("right")
			if left == nil || right == nil {
				continue
			}
			fieldType := callHead(right, fc.Content)
			if fieldType == "" {
				continue
			}
			out.add("python_orm_fields", Record{
				"model_id": modelID, "field_name": left.Content(fc.Content),
				"field_type": fieldType,
			})
			if fieldType == "relationship" || fieldType == "ForeignKey" {
				out.add("orm_relationships", Record{
					"model_id":     modelID,
					"target_model": firstStringArg(right.Content(fc.Content)),
				})
			}
		}
	}
}

func superclassNames(classNode *sitter.Node, content []byte) []string {
	superclasses := classNode.ChildByFieldName("superclasses")
	if superclasses == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(superclasses.NamedChildCount()); i++ {
		names = append(names, superclasses.NamedChild(i).Content(content))
	}
	return names
}

func callHead(n *sitter.Node, content []byte) string {
	if n.Type() != "call" {
		return ""
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	text := fn.Content(content)
	if idx := strings.LastIndex(text, "."); idx != -1 {
		return text[idx+1:]
	}
	return text
}

// extractPythonJWT recognizes jwt.encode/decode calls, flagging a
// hardcoded secret argument per spec.md §8 scenario 4.
func extractPythonJWT(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindCall) {
		fn := n.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		callName := fn.Content(fc.Content)
		var kind string
		switch {
		case strings.HasSuffix(callName, "jwt.encode"):
			kind = "encode"
		case strings.HasSuffix(callName, "jwt.decode"):
			kind = "decode"
		default:
			continue
		}

		args := n.ChildByFieldName("arguments")
		secretSource := "var"
		allowsNone := false
		algorithms := ""
		if args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				arg := args.NamedChild(i)
				text := arg.Content(fc.Content)
				if arg.Type() == "string" {
					if i == 1 {
						secretSource = "hardcoded"
					}
					if strings.Contains(text, "none") || strings.Contains(text, "None") {
						allowsNone = true
					}
					if algorithms == "" && i >= 2 {
						algorithms = strings.Trim(text, `"'`)
					}
				}
				if strings.Contains(text, "os.environ") || strings.Contains(text, "getenv") {
					secretSource = "env"
				}
			}
		}
		out.add("jwt_patterns", Record{
			"file": fc.Path, "line": int(n.StartPoint().Row) + 1,
			"type": kind, "secret_source": secretSource,
			"algorithms": algorithms, "allows_none": boolToInt(allowsNone),
			"has_confusion": boolToInt(false),
		})
	}
}

func fieldText(n *sitter.Node, field string, content []byte) string {
	if f := n.ChildByFieldName(field); f != nil {
		return f.Content(content)
	}
	return ""
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
