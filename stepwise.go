package stepwise

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/internal/engine"
	"github.com/aretw0/stepwise/internal/registry"
	"github.com/aretw0/stepwise/internal/render"
	"github.com/aretw0/stepwise/internal/rules/calculus"
	"github.com/aretw0/stepwise/internal/rules/linalg"
	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/internal/validate"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Version is the library version reported by front ends.
const Version = "0.1.0"

// Engine is the high-level entry point for the stepwise library. It assembles
// the algebra backend, the plugin registry and the step engine, and exposes a
// validated Run plus renderer lookup to front ends.
type Engine struct {
	backend   ports.Algebra
	registry  *registry.Registry
	engine    *engine.Engine
	logger    *slog.Logger
	maxSteps  int
	metrics   engine.Metrics
	rules     []domain.Rule
	renderers []ports.Renderer
	solvers   []ports.Solver
}

// Option configures the Engine during New.
type Option func(*Engine)

// WithLogger sets the structured logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps overrides the iterative step bound.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMetrics wires a measurement sink into the engine.
func WithMetrics(m engine.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithBackend injects a custom algebra backend, bypassing the built-in exact
// symbolic one.
func WithBackend(alg ports.Algebra) Option {
	return func(e *Engine) {
		e.backend = alg
	}
}

// WithRules registers additional rules after the built-in catalog. Equal
// priorities resolve in registration order, so extras can shadow built-ins
// only by outranking them.
func WithRules(rules ...domain.Rule) Option {
	return func(e *Engine) {
		e.rules = append(e.rules, rules...)
	}
}

// WithRenderer registers an additional output renderer. The first renderer
// for a format wins, so extras cannot displace built-in formats.
func WithRenderer(renderers ...ports.Renderer) Option {
	return func(e *Engine) {
		e.renderers = append(e.renderers, renderers...)
	}
}

// WithSolver registers a named solver plugin.
func WithSolver(solvers ...ports.Solver) Option {
	return func(e *Engine) {
		e.solvers = append(e.solvers, solvers...)
	}
}

// New initializes the stepwise Engine: the exact symbolic backend, a registry
// holding the built-in rule catalog and renderers plus any caller extras, and
// the step engine over both. The registry is sealed after this call; nothing
// mutates it during request processing.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.backend == nil {
		e.backend = symbolic.NewBackend()
	}

	reg := registry.New()
	reg.RegisterRules(calculus.Rules()...)
	reg.RegisterRules(linalg.Rules()...)
	reg.RegisterRules(e.rules...)
	for _, r := range render.Builtin() {
		reg.RegisterRenderer(r)
	}
	for _, r := range e.renderers {
		reg.RegisterRenderer(r)
	}
	for _, s := range e.solvers {
		reg.RegisterSolver(s)
	}
	e.registry = reg

	var engOpts []engine.Option
	if e.logger != nil {
		engOpts = append(engOpts, engine.WithLogger(e.logger))
	}
	if e.maxSteps > 0 {
		engOpts = append(engOpts, engine.WithMaxSteps(e.maxSteps))
	}
	if e.metrics != nil {
		engOpts = append(engOpts, engine.WithMetrics(e.metrics))
	}
	e.engine = engine.New(reg, e.backend, engOpts...)
	return e, nil
}

// Run sanitizes the request and resolves it into an EngineResult. It is safe
// for concurrent use: each run owns its graph and the registry is read-only.
func (e *Engine) Run(ctx context.Context, req domain.Request) (*domain.EngineResult, error) {
	op, err := domain.ParseOperation(req.Operation.String())
	if err != nil {
		return nil, err
	}
	req.Operation = op

	if op.IsMatrix() {
		if req.Expression, err = validate.Matrix(req.Expression); err != nil {
			return nil, err
		}
		if req.MatrixB != "" {
			if req.MatrixB, err = validate.Matrix(req.MatrixB); err != nil {
				return nil, err
			}
		}
	} else {
		if req.Expression, err = validate.Expression(req.Expression); err != nil {
			return nil, err
		}
		if req.Variable != "" {
			if req.Variable, err = validate.Variable(req.Variable); err != nil {
				return nil, err
			}
		}
	}

	return e.engine.Run(ctx, req)
}

// Render formats a finished result with the renderer registered for format.
func (e *Engine) Render(result *domain.EngineResult, format string, verbosity domain.Verbosity) (string, error) {
	r, ok := e.registry.Renderer(format)
	if !ok {
		return "", domain.InputErrorf("unknown output format %q", format)
	}
	return r.Render(result, verbosity)
}

// Formats returns the registered renderer format names.
func (e *Engine) Formats() []string {
	return e.registry.Formats()
}

// Operations returns the operations the registry can serve.
func (e *Engine) Operations() []domain.Operation {
	return e.registry.Operations()
}

// Registry exposes the assembled plugin registry, read-only by convention.
// External plugin discovery registers through it before the first run.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Backend exposes the algebra backend driving this engine.
func (e *Engine) Backend() ports.Algebra {
	return e.backend
}

// MaxSteps returns the iterative step bound in effect.
func (e *Engine) MaxSteps() int {
	return e.engine.MaxSteps()
}
