package linalg

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

func inverseMatrix() domain.Rule {
	return matrixRule("inverse_matrix", domain.OpMatrixInverse, applyInverse)
}

func applyInverse(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("matrix inverse needs a matrix operand")
	}
	inv, err := a.Inverse()
	if err != nil {
		return domain.Application{}, err
	}
	det, err := a.Det()
	if err != nil {
		return domain.Application{}, err
	}
	detText := symbolic.Format(det)
	n := a.Rows()

	var steps []domain.StepSpec
	var expl domain.Explanation
	if n == 2 {
		e00, e01 := symbolic.Format(a.At(0, 0)), symbolic.Format(a.At(0, 1))
		e10, e11 := symbolic.Format(a.At(1, 0)), symbolic.Format(a.At(1, 1))
		ad := symbolic.Format(symbolic.Simplify(symbolic.MulOf(a.At(0, 0), a.At(1, 1))))
		bc := symbolic.Format(symbolic.Simplify(symbolic.MulOf(a.At(0, 1), a.At(1, 0))))
		negB := symbolic.Format(symbolic.Simplify(symbolic.Neg(a.At(0, 1))))
		negC := symbolic.Format(symbolic.Simplify(symbolic.Neg(a.At(1, 0))))
		steps = append(steps,
			domain.StepSpec{
				ID:     "det_calc",
				Rule:   "inverse_2x2",
				Input:  fmt.Sprintf("det(A) = ad - bc = (%s)(%s) - (%s)(%s)", e00, e11, e01, e10),
				Output: detText,
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Calculate determinant: %s - %s = %s", ad, bc, detText),
				},
			},
			domain.StepSpec{
				ID:     "inverse_formula",
				Rule:   "inverse_2x2",
				Input:  fmt.Sprintf("A^-1 = (1/%s) * [[%s, %s], [%s, %s]]", detText, e11, negB, negC, e00),
				Output: inv.Format(),
				Explanation: domain.Explanation{
					Concise: "Apply 2×2 inverse formula: swap diagonal, negate off-diagonal, divide by determinant",
				},
			},
		)
		expl = explain(
			"Calculate inverse using 2×2 formula: A^-1 = (1/det(A)) * adj(A)",
			"For a 2×2 matrix [[a,b],[c,d]], the inverse is (1/(ad-bc)) * [[d,-b],[-c,a]]. This swaps the diagonal elements, negates the off-diagonal elements, and divides everything by the determinant.",
		)
	} else {
		steps = append(steps,
			domain.StepSpec{
				ID:     "det_calc",
				Rule:   "inverse_adjugate",
				Input:  "det(A)",
				Output: detText,
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Calculate determinant of %d×%d matrix: %s", n, n, detText),
				},
			},
			domain.StepSpec{
				ID:     "adjugate_calc",
				Rule:   "inverse_adjugate",
				Input:  "Compute adjugate matrix (transpose of cofactor matrix)",
				Output: "Adjugate calculated",
				Explanation: domain.Explanation{
					Concise: "Form the matrix of cofactors, then transpose it to get the adjugate",
				},
			},
			domain.StepSpec{
				ID:     "inverse_result",
				Rule:   "inverse_adjugate",
				Input:  fmt.Sprintf("A^-1 = (1/%s) * adj(A)", detText),
				Output: inv.Format(),
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Multiply adjugate matrix by 1/%s to get the inverse", detText),
				},
			},
		)
		expl = explain(
			fmt.Sprintf("Calculate %d×%d inverse using adjugate method: A^-1 = (1/det(A)) * adj(A)", n, n),
			"The inverse is computed using the adjugate (adjoint) matrix. The adjugate is the transpose of the cofactor matrix. Dividing the adjugate by the determinant gives the inverse. The result satisfies A * A^-1 = I (identity matrix).",
		)
	}

	return domain.Application{
		Goal:        g.WithExpr(inv).ResolvedGoal(),
		Output:      inv.Format(),
		Steps:       steps,
		Explanation: expl,
		Metadata:    shapeMeta(a),
	}, nil
}
