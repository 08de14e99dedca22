package taint

import "github.com/TheAuditorTool/auditor-core/graph/callgraph/core"

// tarjanState holds the working set for one run of Tarjan's algorithm.
type tarjanState struct {
	edges    map[string][]string
	index    map[string]int
	lowlink  map[string]int
	onStack  map[string]bool
	stack    []string
	counter  int
	sccs     [][]string
}

// TopologicalSCCs returns cg's strongly connected components in reverse
// topological order (callees before callers), so a bottom-up fixed-point
// pass over the result never needs a caller's summary before its callees
// have been analyzed at least once. Self-recursive and mutually-recursive
// functions land in the same component.
func TopologicalSCCs(cg *core.CallGraph) [][]string {
	st := &tarjanState{
		edges:   cg.Edges,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	for fn := range cg.Functions {
		if _, seen := st.index[fn]; !seen {
			st.strongconnect(fn)
		}
	}
	// Functions that only ever appear as callees (no Functions entry) still
	// need a component so the fixed-point loop can see them.
	for caller, callees := range cg.Edges {
		if _, seen := st.index[caller]; !seen {
			st.strongconnect(caller)
		}
		for _, callee := range callees {
			if _, seen := st.index[callee]; !seen {
				st.strongconnect(callee)
			}
		}
	}

	return st.sccs
}

func (st *tarjanState) strongconnect(v string) {
	st.index[v] = st.counter
	st.lowlink[v] = st.counter
	st.counter++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range st.edges[v] {
		if _, seen := st.index[w]; !seen {
			st.strongconnect(w)
			if st.lowlink[w] < st.lowlink[v] {
				st.lowlink[v] = st.lowlink[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.lowlink[v] {
				st.lowlink[v] = st.index[w]
			}
		}
	}

	if st.lowlink[v] != st.index[v] {
		return
	}

	var component []string
	for {
		n := len(st.stack) - 1
		w := st.stack[n]
		st.stack = st.stack[:n]
		st.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}
	st.sccs = append(st.sccs, component)
}
