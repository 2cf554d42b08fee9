package domain

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// StepGraph is the append-only DAG of steps for one run.
//
// Invariants, checked after every insertion:
//   - node ids are unique
//   - every dependency refers to an already-present node
//   - the dependency relation is acyclic
//
// A graph is owned by a single run and is not safe for concurrent mutation.
type StepGraph struct {
	nodes []StepNode
	index map[string]int
}

// NewStepGraph returns an empty graph.
func NewStepGraph() *StepGraph {
	return &StepGraph{index: make(map[string]int)}
}

// Len returns the number of recorded steps.
func (g *StepGraph) Len() int { return len(g.nodes) }

// Has reports whether a node with the given id has been recorded.
func (g *StepGraph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (g *StepGraph) Node(id string) (StepNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return StepNode{}, false
	}
	return g.nodes[i].clone(), true
}

// Nodes returns copies of all recorded steps in insertion order.
func (g *StepGraph) Nodes() []StepNode {
	out := make([]StepNode, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// LastID returns the id of the most recently appended node, or "" on an empty graph.
func (g *StepGraph) LastID() string {
	if len(g.nodes) == 0 {
		return ""
	}
	return g.nodes[len(g.nodes)-1].ID
}

// Append validates node against the graph invariants and records it.
// Validation is fail-fast: the first broken invariant is returned and the
// graph is left unchanged.
func (g *StepGraph) Append(node StepNode) error {
	if err := g.checkNode(node); err != nil {
		return err
	}
	g.nodes = append(g.nodes, node.clone())
	g.index[node.ID] = len(g.nodes) - 1
	if err := g.checkAcyclic(); err != nil {
		// Roll back so a failed run leaves no partial state behind.
		g.nodes = g.nodes[:len(g.nodes)-1]
		delete(g.index, node.ID)
		return err
	}
	return nil
}

// checkNode verifies the shape of a single candidate node.
func (g *StepGraph) checkNode(node StepNode) error {
	switch {
	case node.ID == "":
		return fmt.Errorf("%w: step id is required", ErrInvalidStep)
	case node.Operation == "":
		return fmt.Errorf("%w: operation is required on step %q", ErrInvalidStep, node.ID)
	case node.Rule == "":
		return fmt.Errorf("%w: rule name is required on step %q", ErrInvalidStep, node.ID)
	case node.Input == "":
		return fmt.Errorf("%w: input expression is required on step %q", ErrInvalidStep, node.ID)
	case node.Output == "":
		return fmt.Errorf("%w: output expression is required on step %q", ErrInvalidStep, node.ID)
	}
	if g.Has(node.ID) {
		return fmt.Errorf("%w: duplicate step id %q", ErrInvalidStep, node.ID)
	}
	for _, dep := range node.DependsOn {
		if dep == node.ID {
			return fmt.Errorf("%w: step %q depends on itself", ErrInvalidStep, node.ID)
		}
		if !g.Has(dep) {
			return fmt.Errorf("%w: unknown dependency %q referenced by %q", ErrInvalidStep, dep, node.ID)
		}
	}
	return nil
}

// checkAcyclic proves the dependency relation has no cycles using Kahn's
// algorithm: if the count of fully processed nodes differs from the total,
// a cycle exists.
func (g *StepGraph) checkAcyclic() error {
	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n.ID] += 0
		for _, dep := range n.DependsOn {
			indegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	// Seed in insertion order so traversal stays deterministic.
	var queue []string
	for _, n := range g.nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if processed != len(g.nodes) {
		return fmt.Errorf("%w: cycle detected in step graph", ErrInvalidStep)
	}
	return nil
}

// Validate re-checks every invariant over the whole graph and aggregates all
// findings. Used for the bulk pass after a structured rule's batch.
func (g *StepGraph) Validate() error {
	var errs error
	seen := make(map[string]struct{}, len(g.nodes))
	for _, n := range g.nodes {
		if _, dup := seen[n.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate step id %q", ErrInvalidStep, n.ID))
		}
		seen[n.ID] = struct{}{}
	}
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if _, ok := seen[dep]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: unknown dependency %q referenced by %q", ErrInvalidStep, dep, n.ID))
			}
		}
	}
	if err := g.checkAcyclic(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// graphJSON is the wire shape of a StepGraph.
type graphJSON struct {
	Nodes []StepNode `json:"nodes"`
}

// MarshalJSON serializes the graph as {"nodes": [...]} in insertion order.
func (g *StepGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{Nodes: g.nodes})
}

// UnmarshalJSON rebuilds a graph from its wire shape, re-validating invariants.
func (g *StepGraph) UnmarshalJSON(data []byte) error {
	var wire graphJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	rebuilt := NewStepGraph()
	for _, n := range wire.Nodes {
		if err := rebuilt.Append(n); err != nil {
			return err
		}
	}
	*g = *rebuilt
	return nil
}
