// Package cfg provides control flow graph (CFG) construction and analysis.
//
// This package defines the CFG data model (blocks, edges, dominators and path
// enumeration) for flow-sensitive analysis; it has no builder that derives a
// CFG from a statement sequence. CFGs are essential for advanced static analysis including:
//   - Data flow analysis
//   - Taint propagation
//   - Dead code detection
//   - Reachability analysis
//
// # Basic Blocks
//
// A BasicBlock represents a maximal sequence of instructions with:
//   - Single entry point (at the beginning)
//   - Single exit point (at the end)
//   - No internal branches
//
// # Control Flow Graph
//
// Assemble a CFG from blocks and edges, then walk it:
//
//	g := cfg.NewControlFlowGraph("myapp.handler")
//	g.AddBlock(&cfg.BasicBlock{ID: "b1", Type: cfg.BlockTypeNormal})
//	g.AddEdge(g.EntryBlockID, "b1")
//	g.AddEdge("b1", g.ExitBlockID)
//	for id, block := range g.Blocks {
//	    fmt.Printf("Block %s: %s\n", id, block.Type)
//	    for _, succID := range block.Successors {
//	        fmt.Printf("  -> Block %s\n", succID)
//	    }
//	}
//
// # Block Types
//
// The package defines several block types:
//   - BlockTypeEntry: Function entry point
//   - BlockTypeExit: Function exit point
//   - BlockTypeNormal: Straight-line code
//   - BlockTypeConditional: If statements, ternary operators
//   - BlockTypeLoop: While/for loop headers
//   - BlockTypeSwitch: Switch/match statements
//   - BlockTypeTry: Try blocks
//   - BlockTypeCatch: Exception handlers
//   - BlockTypeFinally: Finally blocks
//
// # Usage Example
//
//	// Build CFG for a function
//	g := cfg.NewControlFlowGraph("myapp.process_payment")
//
//	// Create basic blocks (the entry and exit blocks already exist)
//	cond := &cfg.BasicBlock{
//	    ID:   "cond",
//	    Type: cfg.BlockTypeConditional,
//	}
//	g.AddBlock(cond)
//	g.AddEdge(g.EntryBlockID, cond.ID)
//
//	// Analyze control flow
//	for _, block := range g.Blocks {
//	    if block.Type == cfg.BlockTypeConditional {
//	        // Analyze both branches
//	    }
//	}
package cfg
