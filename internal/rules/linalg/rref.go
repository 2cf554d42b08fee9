package linalg

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

func rrefGaussian() domain.Rule {
	return matrixRule("rref_gaussian", domain.OpMatrixRREF, applyRREF)
}

func applyRREF(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("rref needs a matrix operand")
	}
	m, n := a.Rows(), a.Cols()
	reduced, ops := a.RREF()

	steps := make([]domain.StepSpec, 0, len(ops)+2)
	steps = append(steps, domain.StepSpec{
		ID:     "rref_start",
		Rule:   "rref_initialize",
		Input:  a.Format(),
		Output: fmt.Sprintf("Starting %d×%d matrix", m, n),
		Explanation: domain.Explanation{
			Concise: "Begin row reduction to transform matrix to RREF",
		},
	})

	performed := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case symbolic.RowSwap:
			performed = append(performed, fmt.Sprintf("R%d ↔ R%d", op.Row+1, op.Other+1))
			steps = append(steps, domain.StepSpec{
				ID:     fmt.Sprintf("rref_swap_%d_%d", op.Row, op.Other),
				Rule:   "rref_swap",
				Input:  fmt.Sprintf("Swap row %d with row %d", op.Row+1, op.Other+1),
				Output: op.After.Format(),
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Move nonzero pivot to row %d", op.Row+1),
				},
			})
		case symbolic.RowScale:
			factor := symbolic.Format(op.Factor)
			performed = append(performed, fmt.Sprintf("R%d → (1/%s) * R%d", op.Row+1, factor, op.Row+1))
			steps = append(steps, domain.StepSpec{
				ID:     fmt.Sprintf("rref_scale_%d", op.Row),
				Rule:   "rref_scale",
				Input:  fmt.Sprintf("Divide row %d by %s", op.Row+1, factor),
				Output: op.After.Format(),
				Explanation: domain.Explanation{
					Concise: "Scale row to make pivot = 1",
				},
			})
		case symbolic.RowEliminate:
			factor := symbolic.Format(op.Factor)
			performed = append(performed, fmt.Sprintf("R%d → R%d - (%s) * R%d", op.Row+1, op.Row+1, factor, op.Other+1))
			steps = append(steps, domain.StepSpec{
				ID:     fmt.Sprintf("rref_eliminate_%d_%d", op.Row, op.Other),
				Rule:   "rref_eliminate",
				Input:  fmt.Sprintf("Eliminate entry at row %d, column %d", op.Row+1, op.Col+1),
				Output: op.After.Format(),
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Subtract %s times row %d from row %d", factor, op.Other+1, op.Row+1),
				},
			})
		}
	}

	steps = append(steps, domain.StepSpec{
		ID:     "rref_complete",
		Rule:   "rref_final",
		Input:  "All row operations complete",
		Output: reduced.Format(),
		Explanation: domain.Explanation{
			Concise: "Matrix is now in reduced row echelon form",
		},
	})

	opsText := "None needed (already in RREF)"
	if len(performed) > 0 {
		opsText = strings.Join(performed, "; ")
	}
	return domain.Application{
		Goal:   g.WithExpr(reduced).ResolvedGoal(),
		Output: reduced.Format(),
		Steps:  steps,
		Explanation: explain(
			fmt.Sprintf("Transform %d×%d matrix to RREF using %d row operations", m, n, len(performed)),
			fmt.Sprintf("RREF is computed through systematic row operations: (1) Find pivot (leading nonzero) in each column, (2) Swap rows to position pivot correctly, (3) Scale row to make pivot = 1, (4) Eliminate all other entries in pivot column. The result is unique for any matrix and useful for solving linear systems, finding rank, and determining linear independence. Operations performed: %s", opsText),
		),
		Metadata: shapeMeta(a),
	}, nil
}
