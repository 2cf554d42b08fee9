package linalg

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// elementNodeCap bounds the per-element nodes so large products do not drown
// the graph; remaining elements are covered by the result matrix itself.
const elementNodeCap = 8

func multiplyMatrices() domain.Rule {
	return matrixRule("multiply_matrices", domain.OpMatrixMultiply, applyMultiply)
}

func applyMultiply(g domain.Goal, rc domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("matrix multiplication needs a matrix operand")
	}
	b, ok := rc.Second.(*symbolic.Matrix)
	if !ok {
		return domain.Application{}, domain.InputErrorf("matrix multiplication needs a second matrix operand")
	}
	product, err := a.Mul(b)
	if err != nil {
		return domain.Application{}, err
	}

	m, n, p := a.Rows(), a.Cols(), b.Cols()
	var steps []domain.StepSpec
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			if len(steps) >= elementNodeCap {
				continue
			}
			terms := make([]string, 0, n)
			products := make([]string, 0, n)
			for k := 0; k < n; k++ {
				av, bv := a.At(i, k), b.At(k, j)
				terms = append(terms, fmt.Sprintf("(%s)·(%s)", symbolic.Format(av), symbolic.Format(bv)))
				products = append(products, symbolic.Format(symbolic.Simplify(symbolic.MulOf(av, bv))))
			}
			sum := symbolic.Format(product.At(i, j))
			steps = append(steps, domain.StepSpec{
				ID:     fmt.Sprintf("element_%d_%d", i, j),
				Rule:   "multiply_element",
				Input:  fmt.Sprintf("C[%d,%d] = %s", i, j, strings.Join(terms, " + ")),
				Output: sum,
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Calculate element (%d,%d) by taking row %d of A times column %d of B: %s = %s",
						i, j, i, j, strings.Join(products, " + "), sum),
				},
			})
		}
	}

	return domain.Application{
		Goal:   g.WithExpr(product).ResolvedGoal(),
		Output: product.Format(),
		Steps:  steps,
		Explanation: explain(
			fmt.Sprintf("Multiply %d×%d matrix A by %d×%d matrix B to get %d×%d matrix C. Each element C[i,j] is the dot product of row i from A and column j from B.",
				m, n, n, p, m, p),
			fmt.Sprintf("Matrix multiplication works by taking each row of the first matrix and each column of the second matrix, multiplying corresponding elements, and summing them up. The result has dimensions %d×%d.",
				m, p),
		),
		Metadata: shapeMeta(product),
	}, nil
}
