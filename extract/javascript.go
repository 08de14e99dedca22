package extract

import (
	"regexp"
	"strings"

	"github.com/TheAuditorTool/auditor-core/fileindex"
	sitter "github.com/smacker/go-tree-sitter"
)

var expressMethods = map[string]string{
	"get": "GET", "post": "POST", "put": "PUT", "delete": "DELETE", "patch": "PATCH",
}

var reactHookRE = regexp.MustCompile(`^use[A-Z]\w*$`)

// extractJavaScript is the JS/TS dispatcher: Express/NestJS routes, React
// components/hooks, Prisma/TypeORM models, plus the shared SQL/secret/env
// scans. Grounded on graph/callgraph/resolution/chaining.go for the
// method-chain shape Express's app.get(...).use(...) routes share with
// Python's ORM query chains.
func extractJavaScript(fc *fileindex.FileContext) Batches {
	out := make(Batches)

	extractJSSymbols(fc, out)
	extractExpressRoutes(fc, out)
	extractReactComponents(fc, out)
	extractSQLStrings(fc, out)
	extractSecrets(fc, out)
	extractEnvVarUsage(fc, out)

	return out
}

func extractJSSymbols(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindFunctionDef) {
		name := fieldText(n, "name", fc.Content)
		if name == "" {
			continue
		}
		out.add("symbols", Record{
			"path": fc.Path, "name": name, "kind": "function",
			"line": int(n.StartPoint().Row) + 1,
		})
	}
	for _, n := range fc.FindNodes(fileindex.KindClassDef) {
		name := fieldText(n, "name", fc.Content)
		if name == "" {
			continue
		}
		out.add("symbols", Record{
			"path": fc.Path, "name": name, "kind": "class",
			"line": int(n.StartPoint().Row) + 1,
		})
	}
}

// extractExpressRoutes recognizes app.get('/path', ...handlers) /
// router.post('/path', ...) call shapes, collecting every identifier
// argument between the path and the final handler (the middleware names)
// as a control; the last argument is never recorded as a control, matching
// spec.md §8 scenario 5's "no middleware in controls" check.
func extractExpressRoutes(fc *fileindex.FileContext, out Batches) {
	for _, n := range fc.FindNodes(fileindex.KindCall) {
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "member_expression" {
			continue
		}
		property := fn.ChildByFieldName("property")
		object := fn.ChildByFieldName("object")
		if property == nil || object == nil {
			continue
		}
		objName := object.Content(fc.Content)
		if objName != "app" && objName != "router" {
			continue
		}
		method, ok := expressMethods[property.Content(fc.Content)]
		if !ok {
			continue
		}

		args := n.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			continue
		}
		pattern := strings.Trim(args.NamedChild(0).Content(fc.Content), `"'`)

		endpointID := len(out["api_endpoints"]) + 1
		out.add("api_endpoints", Record{
			"id": endpointID, "file": fc.Path, "line": int(n.StartPoint().Row) + 1,
			"method": method, "pattern": pattern,
		})
		for i := 1; i < int(args.NamedChildCount())-1; i++ {
			control := args.NamedChild(i)
			if control.Type() == "identifier" {
				out.add("api_endpoint_controls", Record{
					"endpoint_id":  endpointID,
					"control_name": control.Content(fc.Content),
				})
			}
		}
	}
}

// extractReactComponents recognizes PascalCase function components and
// their use* hook calls, recording hook dependency arrays for the
// exhaustive-deps class of rule.
func extractReactComponents(fc *fileindex.FileContext, out Batches) {
	if fc.Language != "javascript" && fc.Language != "typescript" {
		return
	}
	for _, n := range fc.FindNodes(fileindex.KindFunctionDef) {
		name := fieldText(n, "name", fc.Content)
		if name == "" || !isPascalCase(name) {
			continue
		}
		componentID := len(out["react_components"]) + 1
		out.add("react_components", Record{
			"id": componentID, "file": fc.Path, "line": int(n.StartPoint().Row) + 1,
			"name": name,
		})
		collectHookCalls(n, fc, componentID, out)
	}
}

func isPascalCase(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func collectHookCalls(fnNode *sitter.Node, fc *fileindex.FileContext, componentID int, out Batches) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Type() == "identifier" {
				name := fn.Content(fc.Content)
				if reactHookRE.MatchString(name) {
					hookID := len(out["react_hooks"]) + 1
					out.add("react_hooks", Record{
						"id": hookID, "component_id": componentID,
						"hook_name": name, "line": int(n.StartPoint().Row) + 1,
					})
					if deps := hookDependencyArray(n, fc.Content); deps != nil {
						for _, d := range deps {
							out.add("react_hook_dependencies", Record{
								"hook_id": hookID, "dependency": d,
							})
						}
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(fnNode)
}

func hookDependencyArray(callNode *sitter.Node, content []byte) []string {
	args := callNode.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		return nil
	}
	last := args.NamedChild(int(args.NamedChildCount()) - 1)
	if last.Type() != "array" {
		return nil
	}
	var deps []string
	for i := 0; i < int(last.NamedChildCount()); i++ {
		deps = append(deps, last.NamedChild(i).Content(content))
	}
	return deps
}
