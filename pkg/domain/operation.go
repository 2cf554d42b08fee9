package domain

import "fmt"

// Operation identifies the requested transformation kind.
type Operation string

// Iterative operations rewrite toward a fixpoint; matrix operations run one
// structured rule exactly once.
const (
	OpDifferentiate Operation = "differentiate"
	OpExpand        Operation = "expand"
	OpFactor        Operation = "factor"
	OpSimplify      Operation = "simplify"

	OpMatrixMultiply    Operation = "matrix_multiply"
	OpMatrixDeterminant Operation = "matrix_determinant"
	OpMatrixInverse     Operation = "matrix_inverse"
	OpMatrixRREF        Operation = "matrix_rref"
	OpMatrixEigenvalues Operation = "matrix_eigenvalues"
	OpMatrixLU          Operation = "matrix_lu"
)

// operations lists every recognized operation in its canonical order.
var operations = []Operation{
	OpDifferentiate,
	OpExpand,
	OpFactor,
	OpSimplify,
	OpMatrixMultiply,
	OpMatrixDeterminant,
	OpMatrixInverse,
	OpMatrixRREF,
	OpMatrixEigenvalues,
	OpMatrixLU,
}

// Operations returns all recognized operations in canonical order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// IsMatrix reports whether the operation runs in one-shot structured mode.
func (o Operation) IsMatrix() bool {
	switch o {
	case OpMatrixMultiply, OpMatrixDeterminant, OpMatrixInverse,
		OpMatrixRREF, OpMatrixEigenvalues, OpMatrixLU:
		return true
	}
	return false
}

// String returns the wire name of the operation.
func (o Operation) String() string { return string(o) }

// ParseOperation maps a wire name onto a recognized Operation.
// Unknown names are a user error.
func ParseOperation(s string) (Operation, error) {
	for _, op := range operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}
