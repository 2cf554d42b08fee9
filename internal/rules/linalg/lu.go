package linalg

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

func luDecomposition() domain.Rule {
	return matrixRule("lu_decomposition", domain.OpMatrixLU, applyLU)
}

// luReport keeps the factor order fixed in the serialized result.
type luReport struct {
	P json.RawMessage `json:"P"`
	L json.RawMessage `json:"L"`
	U json.RawMessage `json:"U"`
}

func applyLU(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("lu decomposition needs a matrix operand")
	}
	if !a.IsNumeric() {
		return domain.Application{}, domain.InputErrorf("lu decomposition requires a numeric matrix")
	}
	p, l, u, err := a.LU()
	if err != nil {
		return domain.Application{}, err
	}
	m, n := a.Rows(), a.Cols()

	steps := []domain.StepSpec{
		{
			ID:     "lu_start",
			Rule:   "lu_initialize",
			Input:  a.Format(),
			Output: fmt.Sprintf("Starting %d×%d matrix", m, n),
			Explanation: domain.Explanation{
				Concise: "Decompose A into PA = LU using Gaussian elimination with partial pivoting",
			},
		},
		{
			ID:     "lu_pivot",
			Rule:   "lu_permutation",
			Input:  "Apply partial pivoting",
			Output: p.Format(),
			Explanation: domain.Explanation{
				Concise: "Permutation matrix P records row swaps for numerical stability",
			},
		},
		{
			ID:     "lu_lower",
			Rule:   "lu_lower_triangular",
			Input:  "Compute lower triangular matrix L",
			Output: l.Format(),
			Explanation: domain.Explanation{
				Concise: "L is lower triangular with 1s on diagonal, stores elimination multipliers",
			},
		},
		{
			ID:     "lu_upper",
			Rule:   "lu_upper_triangular",
			Input:  "Compute upper triangular matrix U",
			Output: u.Format(),
			Explanation: domain.Explanation{
				Concise: "U is upper triangular, result of Gaussian elimination",
			},
		},
		{
			ID:     "lu_verify",
			Rule:   "lu_verification",
			Input:  "Verify PA = LU",
			Output: "Decomposition verified",
			Explanation: domain.Explanation{
				Concise: "Multiplying L and U gives PA, confirming correct decomposition",
			},
		},
	}

	out, err := json.Marshal(luReport{
		P: json.RawMessage(p.Format()),
		L: json.RawMessage(l.Format()),
		U: json.RawMessage(u.Format()),
	})
	if err != nil {
		return domain.Application{}, fmt.Errorf("encode lu report: %w", err)
	}

	return domain.Application{
		Goal:   g.ResolvedGoal(),
		Output: string(out),
		Steps:  steps,
		Explanation: explain(
			fmt.Sprintf("LU decomposition of %d×%d matrix: PA = LU", m, n),
			"LU decomposition factors a matrix into lower and upper triangular matrices. This is useful for solving systems of linear equations efficiently, computing determinants (det(A) = det(L)·det(U)), and matrix inversion. Partial pivoting (permutation matrix P) ensures numerical stability by choosing the largest pivot element at each step. Once computed, LU decomposition can be reused to solve Ax = b for multiple right-hand sides.",
		),
		Metadata: shapeMeta(a),
	}, nil
}
