package symbolic

import (
	"github.com/aretw0/stepwise/pkg/domain"
)

// String renders the matrix in its JSON array form, making *Matrix usable
// wherever a domain expression is expected.
func (m *Matrix) String() string { return m.Format() }

// Backend exposes the package as a ports.Algebra implementation. It is
// stateless; the zero value is ready to use.
type Backend struct{}

// NewBackend returns the exact-arithmetic algebra backend.
func NewBackend() *Backend { return &Backend{} }

// Name identifies the backend in logs and metadata.
func (b *Backend) Name() string { return "exact" }

func (b *Backend) Parse(text string) (domain.Expr, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (b *Backend) ParseMatrix(text string) (domain.Expr, error) {
	m, err := ParseMatrix(text)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *Backend) Format(e domain.Expr) string {
	switch x := e.(type) {
	case Expr:
		return Format(x)
	case *Matrix:
		return x.Format()
	}
	return e.String()
}

func (b *Backend) Simplify(e domain.Expr) (domain.Expr, error) {
	x, ok := e.(Expr)
	if !ok {
		// Matrices are already entry-wise simplified.
		return e, nil
	}
	return Simplify(x), nil
}

func (b *Backend) PendingDerivative(e domain.Expr, variable string, order int) domain.Expr {
	x, ok := e.(Expr)
	if !ok {
		return e
	}
	return DerivOf(x, variable, order)
}

func (b *Backend) HasPending(e domain.Expr) bool {
	x, ok := e.(Expr)
	return ok && HasPending(x)
}

func (b *Backend) FreeVariables(e domain.Expr) []string {
	x, ok := e.(Expr)
	if !ok {
		return nil
	}
	return FreeSymbols(x)
}
