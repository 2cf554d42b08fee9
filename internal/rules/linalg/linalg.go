// Package linalg implements the structured matrix-operation rule catalog.
//
// Unlike the iterative calculus rules, every rule here runs exactly once per
// request and returns its whole explanatory node batch in Application.Steps;
// the engine owns insertion and validation. Node ids are descriptive
// (element_0_1, det_2x2, rref_scale_0) rather than sequential.
package linalg

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Rules returns the matrix-operation catalog in registration order, one rule
// per operation.
func Rules() []domain.Rule {
	return []domain.Rule{
		multiplyMatrices(),
		determinantCofactor(),
		inverseMatrix(),
		rrefGaussian(),
		eigenvaluesCharacteristic(),
		luDecomposition(),
	}
}

func goalMatrix(g domain.Goal) (*symbolic.Matrix, bool) {
	m, ok := g.Expr.(*symbolic.Matrix)
	return m, ok
}

// matchMatrix accepts any goal carrying a backend matrix. Shape requirements
// are checked inside Apply so that the user sees a precise error instead of a
// silent non-match.
func matchMatrix(g domain.Goal, _ domain.RuleContext) bool {
	_, ok := goalMatrix(g)
	return ok
}

func matrixRule(name string, op domain.Operation, apply func(domain.Goal, domain.RuleContext) (domain.Application, error)) domain.Rule {
	return domain.Rule{
		Name:      name,
		Operation: op,
		Priority:  100,
		Domains:   []domain.Domain{domain.DomainLinearAlgebra},
		Match:     matchMatrix,
		Apply:     apply,
	}
}

// explain builds the summary explanation of a structured application. The
// detailed level falls back to the concise text.
func explain(concise, teacher string) domain.Explanation {
	return domain.Explanation{Concise: concise, Teacher: teacher}
}

func shapeMeta(m *symbolic.Matrix) map[string]any {
	return map[string]any{domain.MetaShape: fmt.Sprintf("%dx%d", m.Rows(), m.Cols())}
}
