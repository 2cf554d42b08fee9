package ports

import "github.com/aretw0/stepwise/pkg/domain"

// Algebra is the backend the engine and rules consume as a library of tree
// operations; the core never performs its own arithmetic.
//
// Implementations must be deterministic: identical inputs yield identical
// outputs, including formatting order.
type Algebra interface {
	// Parse turns boundary text into an expression tree. Syntax errors are
	// user errors (domain.ErrInvalidInput).
	Parse(text string) (domain.Expr, error)

	// ParseMatrix turns a JSON matrix literal like [[1,2],[3,4]] into a
	// matrix value. String entries are parsed as symbolic expressions.
	ParseMatrix(text string) (domain.Expr, error)

	// Format prints the canonical text of an expression. This is the form
	// recorded on step nodes and compared for fixpoint detection.
	Format(e domain.Expr) string

	// Simplify canonicalizes an expression (constant folding, like terms,
	// identity removal).
	Simplify(e domain.Expr) (domain.Expr, error)

	// PendingDerivative wraps e in an unevaluated derivative of the given
	// order with respect to variable.
	PendingDerivative(e domain.Expr, variable string, order int) domain.Expr

	// HasPending reports whether any unevaluated derivative remains in e.
	HasPending(e domain.Expr) bool

	// FreeVariables returns the free symbol names of e in sorted order.
	FreeVariables(e domain.Expr) []string
}
