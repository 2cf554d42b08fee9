// Package engine drives rule selection and application over step graphs.
//
// The engine never invents steps. It only selects among registered rules by
// operation and priority, applies the chosen rule, and validates what the rule
// emitted. Iterative operations rewrite a goal toward a fixpoint, recording
// one sequential node per application; matrix operations run one structured
// rule exactly once and record the node batch it returns.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/registry"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// DefaultMaxSteps bounds the iterative loop of a single run.
const DefaultMaxSteps = 64

// Engine resolves requests into recorded step graphs.
type Engine struct {
	reg      *registry.Registry
	alg      ports.Algebra
	log      *slog.Logger
	maxSteps int
	metrics  Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxSteps overrides the iterative step bound. Values below 1 are ignored.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithMetrics sets the measurement sink. Nil is ignored.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New assembles an engine over a rule registry and an algebra backend.
func New(reg *registry.Registry, alg ports.Algebra, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		alg:      alg,
		log:      logging.NewNop(),
		maxSteps: DefaultMaxSteps,
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps returns the configured iterative step bound.
func (e *Engine) MaxSteps() int { return e.maxSteps }

// Run resolves one request. Errors with domain.IsUserError are request
// problems; a *domain.StepValidationError is a rule bug.
func (e *Engine) Run(ctx context.Context, req domain.Request) (*domain.EngineResult, error) {
	start := time.Now()
	res, err := e.run(ctx, req)

	steps := 0
	if res != nil && res.Graph != nil {
		steps = res.Graph.Len()
	}
	elapsed := time.Since(start)
	e.metrics.RunCompleted(req.Operation.String(), outcomeOf(err), steps, elapsed)
	if err != nil {
		e.log.Error("run failed", "operation", req.Operation, "error", err)
		return nil, err
	}
	e.log.Info("run completed", "operation", req.Operation, "steps", steps, "duration", elapsed)
	return res, nil
}

func (e *Engine) run(ctx context.Context, req domain.Request) (*domain.EngineResult, error) {
	op, err := domain.ParseOperation(req.Operation.String())
	if err != nil {
		return nil, err
	}
	if op.IsMatrix() {
		return e.runStructured(ctx, op, req)
	}
	return e.runIterative(ctx, op, req)
}

// runIterative selects and applies rules until the goal resolves, a rule
// reports a fixpoint, no rule matches, or the step bound is hit. Exhausting
// the bound is not an error: the partial rewrite is still a valid result.
func (e *Engine) runIterative(ctx context.Context, op domain.Operation, req domain.Request) (*domain.EngineResult, error) {
	variable, order := req.Variable, req.Order
	if op == domain.OpDifferentiate {
		if variable == "" {
			variable = "x"
		}
		if order == 0 {
			order = 1
		}
		if order < 1 || order > 10 {
			return nil, fmt.Errorf("%w: got %d", domain.ErrOrderOutOfRange, order)
		}
	}

	parsed, err := e.alg.Parse(req.Expression)
	if err != nil {
		return nil, err
	}

	goal := domain.Goal{Expr: parsed}
	var warnings []string
	var resultMeta map[string]any
	// pendingMeta is merged into the first recorded node, then dropped.
	var pendingMeta map[string]any

	if op == domain.OpDifferentiate {
		canon, err := e.alg.Simplify(parsed)
		if err != nil {
			return nil, err
		}
		if !containsVariable(e.alg, canon, variable) {
			warnings = append(warnings, fmt.Sprintf(
				"Expression '%s' does not contain variable '%s'. The derivative will be 0 or a constant.",
				req.Expression, variable))
			resultMeta = map[string]any{domain.MetaVariableAbsent: true}
			pendingMeta = map[string]any{domain.MetaVariableAbsent: true}
			e.log.Warn("variable absent from expression", "expression", req.Expression, "variable", variable)
		}
		goal = domain.Goal{
			Expr:    e.alg.PendingDerivative(canon, variable, order),
			Pending: &domain.PendingDerivative{Variable: variable, Order: order},
		}
	}

	rc := domain.RuleContext{Operation: op, Variable: variable, Order: order}
	graph := domain.NewStepGraph()
	current := goal

	for i := 0; i < e.maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule, ok := e.reg.Select(op, current, rc)
		if !ok {
			if graph.Len() == 0 {
				return nil, fmt.Errorf("%w %q", domain.ErrNoRuleAvailable, op)
			}
			break
		}
		app, err := rule.Apply(current, rc)
		if err != nil {
			return nil, err
		}
		if app.Noop {
			// A rule may still hand back a canonicalized goal with its no-op.
			if app.Goal.Expr != nil {
				current = app.Goal
			}
			break
		}
		inText := e.alg.Format(current.Expr)
		outText := e.alg.Format(app.Goal.Expr)
		// Unflagged fixpoints terminate the same way flagged ones do.
		if outText == inText {
			break
		}

		meta := app.Metadata
		if pendingMeta != nil {
			merged := make(map[string]any, len(meta)+len(pendingMeta))
			for k, v := range meta {
				merged[k] = v
			}
			for k, v := range pendingMeta {
				merged[k] = v
			}
			meta = merged
			pendingMeta = nil
		}
		if err := e.record(graph, domain.StepNode{
			ID:          fmt.Sprintf("step_%03d", graph.Len()+1),
			Operation:   op,
			Rule:        rule.Name,
			Input:       inText,
			Output:      outText,
			Explanation: app.Explanation,
			DependsOn:   fallbackDeps(app.DependsOn, graph.LastID()),
			Metadata:    meta,
		}, rule.Name); err != nil {
			return nil, err
		}
		e.metrics.RuleApplied(op.String(), rule.Name)

		current = app.Goal
		if current.Resolved() {
			break
		}
	}

	if op == domain.OpDifferentiate && current.Resolved() {
		current, err = e.finalSimplify(graph, op, current, rc)
		if err != nil {
			return nil, err
		}
	}

	return &domain.EngineResult{
		Operation: op,
		Input:     req.Expression,
		Output:    e.alg.Format(current.Expr),
		Graph:     graph,
		Warnings:  warnings,
		Metadata:  resultMeta,
	}, nil
}

// finalSimplify gives the catalog one closing pass over the resolved goal.
// Only rules that match resolved goals can fire here. A failed or no-op pass
// leaves the result as is.
func (e *Engine) finalSimplify(graph *domain.StepGraph, op domain.Operation, current domain.Goal, rc domain.RuleContext) (domain.Goal, error) {
	rule, ok := e.reg.Select(op, current, rc)
	if !ok {
		return current, nil
	}
	app, err := rule.Apply(current, rc)
	if err != nil {
		e.log.Warn("final simplification failed", "rule", rule.Name, "error", err)
		return current, nil
	}
	if app.Noop {
		if app.Goal.Expr != nil {
			current = app.Goal
		}
		return current, nil
	}
	inText := e.alg.Format(current.Expr)
	outText := e.alg.Format(app.Goal.Expr)
	if outText == inText {
		return current, nil
	}
	if err := e.record(graph, domain.StepNode{
		ID:          fmt.Sprintf("step_%03d", graph.Len()+1),
		Operation:   op,
		Rule:        rule.Name,
		Input:       inText,
		Output:      outText,
		Explanation: app.Explanation,
		DependsOn:   fallbackDeps(app.DependsOn, graph.LastID()),
		Metadata:    app.Metadata,
	}, rule.Name); err != nil {
		return current, err
	}
	e.metrics.RuleApplied(op.String(), rule.Name)
	return app.Goal, nil
}

// runStructured parses operands, applies the single registered rule for the
// operation, and records the node batch it emitted. A failed application
// leaves no partial graph behind.
func (e *Engine) runStructured(ctx context.Context, op domain.Operation, req domain.Request) (*domain.EngineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exprText := req.Expression
	second := req.MatrixB
	if op == domain.OpMatrixMultiply && second == "" {
		// Legacy combined form: both operands in one string.
		left, right, found := strings.Cut(exprText, "|||")
		if !found {
			return nil, domain.InputErrorf(
				"matrix_multiply needs a second operand: pass matrix_b or two matrices separated by '|||', e.g. [[1,2],[3,4]]|||[[5,6],[7,8]]")
		}
		exprText, second = strings.TrimSpace(left), strings.TrimSpace(right)
	}

	a, err := e.alg.ParseMatrix(exprText)
	if err != nil {
		return nil, err
	}
	rc := domain.RuleContext{Operation: op}
	if op == domain.OpMatrixMultiply {
		b, err := e.alg.ParseMatrix(second)
		if err != nil {
			return nil, err
		}
		rc.Second = b
	}

	goal := domain.Goal{Expr: a}
	rule, ok := e.reg.Select(op, goal, rc)
	if !ok {
		return nil, fmt.Errorf("%w %q", domain.ErrNoRuleAvailable, op)
	}
	app, err := rule.Apply(goal, rc)
	if err != nil {
		return nil, err
	}

	graph := domain.NewStepGraph()
	for _, spec := range app.Steps {
		node := domain.StepNode{
			ID:          spec.ID,
			Operation:   op,
			Rule:        spec.Rule,
			Input:       spec.Input,
			Output:      spec.Output,
			Explanation: spec.Explanation,
			DependsOn:   spec.DependsOn,
			Metadata:    spec.Metadata,
		}
		if node.Rule == "" {
			node.Rule = rule.Name
		}
		if err := e.record(graph, node, rule.Name); err != nil {
			return nil, err
		}
	}
	if err := graph.Validate(); err != nil {
		return nil, domain.NewStepValidationError(rule.Name, err)
	}
	e.metrics.RuleApplied(op.String(), rule.Name)

	output := app.Output
	if output == "" {
		output = e.alg.Format(app.Goal.Expr)
	}
	return &domain.EngineResult{
		Operation: op,
		Input:     req.Expression,
		Output:    output,
		Graph:     graph,
		Metadata:  app.Metadata,
	}, nil
}

// record appends one node, attributing any invariant violation to the rule
// that emitted it.
func (e *Engine) record(graph *domain.StepGraph, node domain.StepNode, rule string) error {
	if err := graph.Append(node); err != nil {
		return domain.NewStepValidationError(rule, err)
	}
	e.log.Debug("step recorded", "id", node.ID, "rule", rule)
	return nil
}

// fallbackDeps returns the rule-supplied dependencies, defaulting to the
// previous node so sequential runs chain linearly.
func fallbackDeps(deps []string, last string) []string {
	if len(deps) > 0 {
		return deps
	}
	if last == "" {
		return nil
	}
	return []string{last}
}

func containsVariable(alg ports.Algebra, e domain.Expr, variable string) bool {
	for _, v := range alg.FreeVariables(e) {
		if v == variable {
			return true
		}
	}
	return false
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domain.IsUserError(err):
		return OutcomeUserError
	case errors.Is(err, domain.ErrInvalidStep):
		return OutcomeInvalidStep
	default:
		return OutcomeError
	}
}
