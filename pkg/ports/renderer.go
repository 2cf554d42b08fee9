package ports

import "github.com/aretw0/stepwise/pkg/domain"

// Renderer turns an EngineResult into a presentable string for one output
// format. Render must not mutate the result or its graph.
type Renderer interface {
	// Format returns the format name the renderer serves, e.g. "text" or "json".
	Format() string

	// Render produces the output at the requested verbosity.
	Render(result *domain.EngineResult, verbosity domain.Verbosity) (string, error)
}

// Solver is the secondary plugin kind held by the registry: a named equation
// solver, looked up by name rather than selected by priority.
type Solver interface {
	// Name returns the solver's registry key.
	Name() string

	// Solve returns the solutions of equation for the given variable, as
	// canonical expression texts.
	Solve(equation string, variable string) ([]string, error)
}
