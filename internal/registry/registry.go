// Package registry holds the plugin catalog: rules selected by priority,
// renderers looked up by format, solvers looked up by name.
//
// A registry is assembled once at startup and treated as read-only afterwards.
// Under that discipline concurrent runs never contend; the mutex only covers
// the construction phase.
package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Registry manages the available rules, renderers and solvers.
type Registry struct {
	mu        sync.RWMutex
	rules     []domain.Rule
	renderers []ports.Renderer
	solvers   []ports.Solver
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// RegisterRule adds a rule to the catalog. Registration order breaks
// priority ties, so built-in rules keep a fixed selection order and callers
// can append overrides deterministically.
func (r *Registry) RegisterRule(rule domain.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

// RegisterRules adds a batch of rules in order.
func (r *Registry) RegisterRules(rules ...domain.Rule) {
	for _, rule := range rules {
		r.RegisterRule(rule)
	}
}

// RegisterRenderer adds an output renderer. The first renderer registered for
// a format wins lookups.
func (r *Registry) RegisterRenderer(p ports.Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers = append(r.renderers, p)
}

// RegisterSolver adds a named solver.
func (r *Registry) RegisterSolver(p ports.Solver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solvers = append(r.solvers, p)
}

// Rules returns the rules for one operation, highest priority first. The sort
// is stable: rules of equal priority keep their registration order.
func (r *Registry) Rules(op domain.Operation) []domain.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Rule
	for _, rule := range r.rules {
		if rule.Operation == op {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Select returns the highest-priority rule whose Match accepts the goal.
// The second return is false when no rule matches.
func (r *Registry) Select(op domain.Operation, g domain.Goal, rc domain.RuleContext) (domain.Rule, bool) {
	for _, rule := range r.Rules(op) {
		if rule.Match == nil || rule.Match(g, rc) {
			return rule, true
		}
	}
	return domain.Rule{}, false
}

// Renderer returns the renderer registered for the given format name.
func (r *Registry) Renderer(format string) (ports.Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.renderers {
		if p.Format() == format {
			return p, true
		}
	}
	return nil, false
}

// Formats returns the registered renderer format names in registration order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.renderers))
	for i, p := range r.renderers {
		out[i] = p.Format()
	}
	return out
}

// Solver returns the solver registered under the given name.
func (r *Registry) Solver(name string) (ports.Solver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.solvers {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Operations returns the distinct operations that have at least one rule, in
// the canonical operation order.
func (r *Registry) Operations() []domain.Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	have := make(map[domain.Operation]bool, len(r.rules))
	for _, rule := range r.rules {
		have[rule.Operation] = true
	}
	var out []domain.Operation
	for _, op := range domain.Operations() {
		if have[op] {
			out = append(out, op)
		}
	}
	return out
}
