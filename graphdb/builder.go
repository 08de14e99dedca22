// Package graphdb builds the typed code graph (graphs.db) from the
// relational model in repo_index.db: one node per file::scope::identifier
// triple, edges per spec.md §4.F's five strategies, with a mandatory
// mirror edge for every data_flow edge. Adapted from
// graph/callgraph/core.CallGraph's forward+reverse map idea, generalized
// from in-memory maps to persisted rows.
package graphdb

import (
	"context"
	"database/sql"
	"fmt"
)

// Builder accumulates nodes and edges in memory before a single bulk
// Finish() write, so the bidirectionality invariant can be checked before
// anything touches disk.
type Builder struct {
	repoDB *sql.DB

	nodes map[string]Node
	edges []Edge
}

// NewBuilder wraps an already-open, already-written repo_index.db
// connection. Readers only start after the storage writer has drained and
// committed, per spec.md §4.E's concurrency contract.
func NewBuilder(repoDB *sql.DB) *Builder {
	return &Builder{repoDB: repoDB, nodes: make(map[string]Node)}
}

// AddNode registers a node, overwriting any prior node with the same ID
// (later metadata wins, matching CodeGraph.AddNode's merge semantics).
func (b *Builder) AddNode(n Node) {
	b.nodes[n.ID] = n
}

// AddEdge registers a plain (non-data-flow) edge.
func (b *Builder) AddEdge(e Edge) {
	b.edges = append(b.edges, e)
}

// AddDataFlowEdge registers a data_flow edge and its mandatory mirror in
// one call, so no strategy can forget the reverse half of spec.md §4.F's
// bidirectionality invariant.
func (b *Builder) AddDataFlowEdge(source, target string, metadata map[string]any) {
	b.edges = append(b.edges,
		Edge{SourceID: source, TargetID: target, Type: EdgeDataFlow, GraphType: "data_flow", Metadata: metadata},
		Edge{SourceID: target, TargetID: source, Type: EdgeDataFlow.Reverse(), GraphType: "data_flow", Metadata: metadata},
	)
}

// Build runs every edge-building strategy against repoDB and returns the
// accumulated (unverified) nodes/edges. Callers must call Finish before
// persisting.
func (b *Builder) Build(ctx context.Context) error {
	if err := b.buildSymbolNodes(ctx); err != nil {
		return err
	}
	if err := b.buildCallGraphEdges(ctx); err != nil {
		return err
	}
	if err := b.buildAssignmentEdges(ctx); err != nil {
		return err
	}
	if err := b.buildParameterBindingEdges(ctx); err != nil {
		return err
	}
	if err := b.buildReturnFlowEdges(ctx); err != nil {
		return err
	}
	if err := b.buildImportGraphEdges(ctx); err != nil {
		return err
	}
	return nil
}

// checkBidirectionality enforces spec.md §3.2/§4.F's ratio invariant:
// |forward data_flow| / |reverse data_flow| must be in [0.95, 1.05].
func (b *Builder) checkBidirectionality() error {
	var forward, reverse int
	for _, e := range b.edges {
		if e.GraphType != "data_flow" {
			continue
		}
		if e.Type.IsReverse() {
			reverse++
		} else {
			forward++
		}
	}
	if forward == 0 && reverse == 0 {
		return nil
	}
	if reverse == 0 {
		return &ErrUnbalancedReverseEdges{Forward: forward, Reverse: reverse}
	}
	ratio := float64(forward) / float64(reverse)
	if ratio < 0.95 || ratio > 1.05 {
		return &ErrUnbalancedReverseEdges{Forward: forward, Reverse: reverse}
	}
	return nil
}

// Finish validates invariants and persists nodes/edges into graphDB's
// `nodes`/`edges` tables, creating them if absent. Refuses to write (per
// spec.md §4.F) if the reverse-edge ratio invariant is violated.
func (b *Builder) Finish(ctx context.Context, graphDB *sql.DB) error {
	if err := b.checkBidirectionality(); err != nil {
		return err
	}

	for _, stmt := range createGraphTablesSQL {
		if _, err := graphDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("graphdb: create tables: %w", err)
		}
	}

	tx, err := graphDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graphdb: begin tx: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO nodes (id, kind, file, line, metadata) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, n := range b.nodes {
		meta, _ := n.MetadataJSON()
		if _, err := nodeStmt.ExecContext(ctx, n.ID, n.Kind, n.File, n.Line, string(meta)); err != nil {
			nodeStmt.Close()
			tx.Rollback()
			return fmt.Errorf("graphdb: insert node %s: %w", n.ID, err)
		}
	}
	nodeStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx, "INSERT INTO edges (source_id, target_id, type, graph_type, metadata) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, e := range b.edges {
		if _, ok := b.nodes[e.SourceID]; !ok {
			continue
		}
		if _, ok := b.nodes[e.TargetID]; !ok {
			continue
		}
		meta, _ := e.MetadataJSON()
		if _, err := edgeStmt.ExecContext(ctx, e.SourceID, e.TargetID, string(e.Type), e.GraphType, string(meta)); err != nil {
			edgeStmt.Close()
			tx.Rollback()
			return fmt.Errorf("graphdb: insert edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	edgeStmt.Close()

	return tx.Commit()
}

var createGraphTablesSQL = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		metadata TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		type TEXT NOT NULL,
		graph_type TEXT NOT NULL,
		metadata TEXT NOT NULL
	)`,
}
