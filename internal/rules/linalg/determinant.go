package linalg

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

func determinantCofactor() domain.Rule {
	return matrixRule("determinant_cofactor", domain.OpMatrixDeterminant, applyDeterminant)
}

func applyDeterminant(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("determinant needs a matrix operand")
	}
	det, err := a.Det()
	if err != nil {
		return domain.Application{}, err
	}
	detText := symbolic.Format(det)

	var steps []domain.StepSpec
	var expl domain.Explanation
	switch n := a.Rows(); n {
	case 1:
		expl = explain(
			fmt.Sprintf("For a 1×1 matrix, the determinant is simply the element itself: %s", detText),
			"A 1×1 matrix contains just one number, so that number is its determinant.",
		)
	case 2:
		e00, e01 := symbolic.Format(a.At(0, 0)), symbolic.Format(a.At(0, 1))
		e10, e11 := symbolic.Format(a.At(1, 0)), symbolic.Format(a.At(1, 1))
		ad := symbolic.Format(symbolic.Simplify(symbolic.MulOf(a.At(0, 0), a.At(1, 1))))
		bc := symbolic.Format(symbolic.Simplify(symbolic.MulOf(a.At(0, 1), a.At(1, 0))))
		steps = append(steps, domain.StepSpec{
			ID:     "det_2x2",
			Rule:   "determinant_2x2",
			Input:  fmt.Sprintf("det([[%s, %s], [%s, %s]])", e00, e01, e10, e11),
			Output: detText,
			Explanation: domain.Explanation{
				Concise: fmt.Sprintf("For a 2×2 matrix, det = ad - bc = (%s)(%s) - (%s)(%s) = %s - %s = %s",
					e00, e11, e01, e10, ad, bc, detText),
			},
		})
		expl = explain(
			"Calculate determinant using 2×2 formula: ad - bc",
			"For a 2×2 matrix [[a,b],[c,d]], the determinant is ad-bc. This represents the signed area of the parallelogram formed by the row vectors.",
		)
	default:
		if n == 3 {
			parts := make([]string, 0, 3)
			for j := 0; j < 3; j++ {
				minor := a.Minor(0, j)
				md, err := minor.Det()
				if err != nil {
					return domain.Application{}, err
				}
				sign := "+"
				if j%2 == 1 {
					sign = "-"
				}
				parts = append(parts, fmt.Sprintf("%s%s·det(M%d) = %s%s·(%s)",
					sign, symbolic.Format(a.At(0, j)), j, sign, symbolic.Format(a.At(0, j)), symbolic.Format(md)))
				steps = append(steps, domain.StepSpec{
					ID:     fmt.Sprintf("minor_0_%d", j),
					Rule:   "cofactor_expansion",
					Input:  fmt.Sprintf("Minor M[0,%d] = det(%s)", j, minor.Format()),
					Output: symbolic.Format(md),
					Explanation: domain.Explanation{
						Concise: fmt.Sprintf("Calculate 2×2 minor by removing row 0 and column %d", j),
					},
				})
			}
			steps = append(steps, domain.StepSpec{
				ID:     "cofactor_sum",
				Rule:   "cofactor_expansion",
				Input:  "det(A) = " + strings.Join(parts, " + "),
				Output: detText,
				Explanation: domain.Explanation{
					Concise: "Sum the cofactor terms to get the determinant",
				},
			})
		}
		expl = explain(
			fmt.Sprintf("Calculate %d×%d determinant using cofactor expansion along the first row", n, n),
			"Cofactor expansion breaks down an n×n determinant into n smaller (n-1)×(n-1) determinants. For each element in the first row, multiply it by its cofactor (with alternating signs) and sum them.",
		)
	}

	return domain.Application{
		Goal:        g.WithExpr(det).ResolvedGoal(),
		Output:      detText,
		Steps:       steps,
		Explanation: expl,
		Metadata:    shapeMeta(a),
	}, nil
}
