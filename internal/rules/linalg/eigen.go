package linalg

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

func eigenvaluesCharacteristic() domain.Rule {
	return matrixRule("eigenvalues_characteristic", domain.OpMatrixEigenvalues, applyEigenvalues)
}

// eigenReport is the composite result of an eigenvalue run. Eigenvector lists
// are keyed by the exact rendering of their eigenvalue.
type eigenReport struct {
	Eigenvalues  []eigenEntry                 `json:"eigenvalues"`
	Eigenvectors map[string][]json.RawMessage `json:"eigenvectors"`
}

type eigenEntry struct {
	Value        any `json:"value"`
	Multiplicity int `json:"multiplicity"`
}

func applyEigenvalues(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
	a, ok := goalMatrix(g)
	if !ok {
		return domain.Application{}, domain.InputErrorf("eigenvalues need a matrix operand")
	}
	pairs, err := a.Eigen()
	if err != nil {
		return domain.Application{}, err
	}
	n := a.Rows()

	steps := []domain.StepSpec{
		{
			ID:     "eigenvalues_start",
			Rule:   "eigenvalues_initialize",
			Input:  a.Format(),
			Output: fmt.Sprintf("Starting %d×%d matrix", n, n),
			Explanation: domain.Explanation{
				Concise: "Find eigenvalues λ by solving det(A - λI) = 0",
			},
		},
		{
			ID:     "eigenvalues_characteristic",
			Rule:   "eigenvalues_characteristic_poly",
			Input:  "Compute characteristic polynomial det(A - λI)",
			Output: fmt.Sprintf("Found %d distinct eigenvalue(s)", len(pairs)),
			Explanation: domain.Explanation{
				Concise: "The characteristic polynomial gives the eigenvalues when solved",
			},
		},
	}

	report := eigenReport{Eigenvectors: map[string][]json.RawMessage{}}
	for i, pair := range pairs {
		exact := symbolic.Format(pair.Value)
		approx := strconv.FormatFloat(pair.Approx, 'g', -1, 64)
		steps = append(steps, domain.StepSpec{
			ID:     fmt.Sprintf("eigenvalue_%d", i),
			Rule:   "eigenvalue_found",
			Input:  fmt.Sprintf("λ%d = %s", i+1, exact),
			Output: fmt.Sprintf("Multiplicity: %d", pair.Multiplicity),
			Explanation: domain.Explanation{
				Concise: fmt.Sprintf("Eigenvalue λ%d = %s with algebraic multiplicity %d", i+1, approx, pair.Multiplicity),
			},
		})
		for j, vec := range pair.Vectors {
			steps = append(steps, domain.StepSpec{
				ID:     fmt.Sprintf("eigenvector_%d_%d", i, j),
				Rule:   "eigenvector_found",
				Input:  fmt.Sprintf("Solve (A - %sI)v = 0", exact),
				Output: vec.Format(),
				Explanation: domain.Explanation{
					Concise: fmt.Sprintf("Eigenvector v%d for λ%d: satisfies Av = %sv", j+1, i+1, approx),
				},
			})
		}

		report.Eigenvalues = append(report.Eigenvalues, eigenEntry{
			Value:        symbolic.EntryValue(pair.Value),
			Multiplicity: pair.Multiplicity,
		})
		vecs := make([]json.RawMessage, len(pair.Vectors))
		for j, vec := range pair.Vectors {
			vecs[j] = json.RawMessage(vec.Format())
		}
		report.Eigenvectors[exact] = vecs
	}

	out, err := json.Marshal(report)
	if err != nil {
		return domain.Application{}, fmt.Errorf("encode eigenvalue report: %w", err)
	}

	return domain.Application{
		Goal:   g.ResolvedGoal(),
		Output: string(out),
		Steps:  steps,
		Explanation: explain(
			fmt.Sprintf("Found %d distinct eigenvalue(s) for %d×%d matrix", len(pairs), n, n),
			"Eigenvalues are found by solving the characteristic equation det(A - λI) = 0. Each eigenvalue λ has corresponding eigenvectors v that satisfy Av = λv. Eigenvalues represent how much a matrix scales vectors in certain directions. The algebraic multiplicity is how many times an eigenvalue appears as a root. Eigenvectors form the basis for understanding matrix transformations and diagonalization.",
		),
		Metadata: shapeMeta(a),
	}, nil
}
