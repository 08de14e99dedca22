package graphdb

import (
	"context"
	"database/sql"
)

// buildSymbolNodes creates one node per symbol row, the base population
// call_graph/assignment/etc. edges attach to.
func (b *Builder) buildSymbolNodes(ctx context.Context) error {
	rows, err := b.repoDB.QueryContext(ctx, "SELECT path, name, kind, line, scope FROM symbols")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var path, name, kind string
		var line int
		var scope sql.NullString
		if err := rows.Scan(&path, &name, &kind, &line, &scope); err != nil {
			return err
		}
		id := NodeID(path, scope.String, name)
		b.AddNode(Node{ID: id, Kind: kind, File: path, Line: line})
	}
	return rows.Err()
}

// buildCallGraphEdges implements the call_graph strategy: one edge per
// function_call_args row, from the calling scope's node to the callee
// symbol's node.
func (b *Builder) buildCallGraphEdges(ctx context.Context) error {
	rows, err := b.repoDB.QueryContext(ctx, "SELECT file, line, callee_function, callee_file_path FROM function_call_args")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var file, callee string
		var line int
		var calleeFile sql.NullString
		if err := rows.Scan(&file, &line, &callee, &calleeFile); err != nil {
			return err
		}
		targetFile := file
		if calleeFile.Valid && calleeFile.String != "" {
			targetFile = calleeFile.String
		}
		source := NodeID(file, "", "call@"+itoa(line))
		target := NodeID(targetFile, "", callee)
		b.AddNode(Node{ID: source, Kind: "callsite", File: file, Line: line})
		b.AddEdge(Edge{SourceID: source, TargetID: target, Type: EdgeCall, GraphType: "call_graph"})
	}
	return rows.Err()
}

// buildAssignmentEdges implements the assignment strategy: target_var <-
// source_expr, plus one data_flow edge (with mirror) per
// assignment_sources row.
func (b *Builder) buildAssignmentEdges(ctx context.Context) error {
	rows, err := b.repoDB.QueryContext(ctx, "SELECT id, file, line, target_var, source_expr FROM assignments")
	if err != nil {
		return err
	}
	defer rows.Close()

	type assignment struct {
		id                 int
		file, target, src  string
		line               int
	}
	var assignments []assignment
	for rows.Next() {
		var a assignment
		if err := rows.Scan(&a.id, &a.file, &a.line, &a.target, &a.src); err != nil {
			return err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, a := range assignments {
		targetNode := NodeID(a.file, "", a.target)
		sourceNode := NodeID(a.file, "", a.src)
		b.AddNode(Node{ID: targetNode, Kind: "variable", File: a.file, Line: a.line})
		b.AddNode(Node{ID: sourceNode, Kind: "expr", File: a.file, Line: a.line})
		b.AddEdge(Edge{SourceID: sourceNode, TargetID: targetNode, Type: EdgeAssignment, GraphType: "data_flow"})
		b.AddDataFlowEdge(sourceNode, targetNode, nil)

		srcRows, err := b.repoDB.QueryContext(ctx, "SELECT source_var FROM assignment_sources WHERE assignment_id = ?", a.id)
		if err != nil {
			return err
		}
		for srcRows.Next() {
			var sv string
			if err := srcRows.Scan(&sv); err != nil {
				srcRows.Close()
				return err
			}
			svNode := NodeID(a.file, "", sv)
			b.AddNode(Node{ID: svNode, Kind: "variable", File: a.file, Line: a.line})
			b.AddDataFlowEdge(svNode, targetNode, nil)
		}
		srcRows.Close()
	}
	return nil
}

// buildParameterBindingEdges implements the parameter_binding strategy:
// call-site argument expression -> callee parameter position.
func (b *Builder) buildParameterBindingEdges(ctx context.Context) error {
	rows, err := b.repoDB.QueryContext(ctx, "SELECT file, line, callee_function, argument_index, argument_expr, callee_file_path FROM function_call_args")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var file, callee, argExpr string
		var line, argIndex int
		var calleeFile sql.NullString
		if err := rows.Scan(&file, &line, &callee, &argIndex, &argExpr, &calleeFile); err != nil {
			return err
		}
		targetFile := file
		if calleeFile.Valid && calleeFile.String != "" {
			targetFile = calleeFile.String
		}
		argNode := NodeID(file, "", argExpr)
		paramNode := NodeID(targetFile, callee, "param"+itoa(argIndex))
		b.AddNode(Node{ID: argNode, Kind: "expr", File: file, Line: line})
		b.AddNode(Node{ID: paramNode, Kind: "parameter", File: targetFile, Line: 0})
		b.AddEdge(Edge{SourceID: argNode, TargetID: paramNode, Type: EdgeParameterBinding, GraphType: "data_flow"})
		b.AddDataFlowEdge(argNode, paramNode, nil)
	}
	return rows.Err()
}

// buildReturnFlowEdges implements the return_flow strategy. repo_index.db
// does not record which caller-side variable a call's result was bound
// to (that needs joining against assignments.source_expr), so this wires
// the direct function_return_sources -> function symbol edge the taint
// analyzer traverses; call-site binding is resolved by
// buildParameterBindingEdges and buildAssignmentEdges instead.
func (b *Builder) buildReturnFlowEdges(ctx context.Context) error {
	rows, err := b.repoDB.QueryContext(ctx, "SELECT file, function_name, return_var FROM function_return_sources")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var file, fn, retVar string
		if err := rows.Scan(&file, &fn, &retVar); err != nil {
			return err
		}
		retNode := NodeID(file, fn, retVar)
		fnNode := NodeID(file, "", fn)
		b.AddNode(Node{ID: retNode, Kind: "variable", File: file, Line: 0})
		b.AddNode(Node{ID: fnNode, Kind: "function", File: file, Line: 0})
		b.AddEdge(Edge{SourceID: retNode, TargetID: fnNode, Type: EdgeReturnFlow, GraphType: "data_flow"})
		b.AddDataFlowEdge(retNode, fnNode, nil)
	}
	return rows.Err()
}

// buildImportGraphEdges implements the import_graph strategy: for every
// "import" ref, resolve the import target against known file paths using
// PathMatches and wire an import_graph edge to the best candidate.
func (b *Builder) buildImportGraphEdges(ctx context.Context) error {
	var allFiles []string
	fileRows, err := b.repoDB.QueryContext(ctx, "SELECT path FROM files")
	if err != nil {
		return err
	}
	for fileRows.Next() {
		var p string
		if err := fileRows.Scan(&p); err != nil {
			fileRows.Close()
			return err
		}
		allFiles = append(allFiles, p)
	}
	fileRows.Close()
	if err := fileRows.Err(); err != nil {
		return err
	}

	rows, err := b.repoDB.QueryContext(ctx, "SELECT src_path, value, line FROM refs WHERE kind = 'import'")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var srcPath, value string
		var line int
		if err := rows.Scan(&srcPath, &value, &line); err != nil {
			return err
		}
		target := ResolveCandidates(value, allFiles)
		if target == "" {
			continue
		}
		srcNode := NodeID(srcPath, "", "import@"+itoa(line))
		targetNode := NodeID(target, "", "<module>")
		b.AddNode(Node{ID: srcNode, Kind: "import", File: srcPath, Line: line})
		b.AddNode(Node{ID: targetNode, Kind: "module", File: target, Line: 0})
		b.AddEdge(Edge{SourceID: srcNode, TargetID: targetNode, Type: EdgeImport, GraphType: "import_graph"})
	}
	return rows.Err()
}
