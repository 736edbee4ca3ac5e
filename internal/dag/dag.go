// Package dag provides directed graph operations for dependency ordering.
// It supports cycle detection with path reporting and deterministic
// topological sorting; the engine uses one graph for scalars and one for
// tables, both keyed by name.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph over string-keyed nodes. An edge from a to b
// means b depends on a.
type Graph struct {
	nodes   map[string]struct{}
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]struct{}),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
}

// AddEdge records that dependent relies on dependency. Both nodes must
// already exist; self-loops are rejected.
func (g *Graph) AddEdge(dependency, dependent string) error {
	if _, ok := g.nodes[dependency]; !ok {
		return fmt.Errorf("node %q does not exist", dependency)
	}
	if _, ok := g.nodes[dependent]; !ok {
		return fmt.Errorf("node %q does not exist", dependent)
	}
	if dependency == dependent {
		return fmt.Errorf("self-loop on %q", dependency)
	}
	if !contains(g.edges[dependency], dependent) {
		g.edges[dependency] = append(g.edges[dependency], dependent)
	}
	if !contains(g.parents[dependent], dependency) {
		g.parents[dependent] = append(g.parents[dependent], dependency)
	}
	return nil
}

// Has reports whether the node exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Dependencies returns the direct dependencies of a node, sorted.
func (g *Graph) Dependencies(id string) []string {
	out := append([]string(nil), g.parents[id]...)
	sort.Strings(out)
	return out
}

// Dependents returns the direct dependents of a node, sorted.
func (g *Graph) Dependents(id string) []string {
	out := append([]string(nil), g.edges[id]...)
	sort.Strings(out)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.edges {
		n += len(deps)
	}
	return n
}

// FindCycle looks for a cycle and returns its path when one exists, e.g.
// [a b a]. Detection is a DFS with a recursion stack; the path is
// reconstructed from the DFS parent chain.
func (g *Graph) FindCycle() ([]string, bool) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range sorted(g.edges[id]) {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for cur := id; cur != next; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, id := range g.sortedNodes() {
		if !visited[id] {
			if dfs(id) {
				return cycle, true
			}
		}
	}
	return nil, false
}

// TopologicalSort returns all nodes ordered so every node follows its
// dependencies. The order is deterministic: ties break on node name.
// A cyclic graph yields an error naming the cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cycle, found := g.FindCycle(); found {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	var order []string
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range sorted(g.parents[id]) {
			visit(dep)
		}
		order = append(order, id)
	}
	for _, id := range g.sortedNodes() {
		visit(id)
	}
	return order, nil
}

// Levels groups nodes by dependency depth: level 0 has no dependencies,
// and every node sits one level past its deepest dependency. Nodes within
// a level are sorted.
func (g *Graph) Levels() ([][]string, error) {
	if cycle, found := g.FindCycle(); found {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	depth := make(map[string]int)
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 0
		for _, dep := range g.parents[id] {
			if pd := levelOf(dep) + 1; pd > d {
				d = pd
			}
		}
		depth[id] = d
		return d
	}

	max := 0
	for id := range g.nodes {
		if d := levelOf(id); d > max {
			max = d
		}
	}
	levels := make([][]string, max+1)
	for id, d := range depth {
		levels[d] = append(levels[d], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

func (g *Graph) sortedNodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
