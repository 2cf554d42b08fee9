package domain

import (
	"errors"
	"fmt"
)

// User/input errors. Recoverable: the caller should fix the request and retry.
var (
	// ErrInvalidInput marks any recoverable user mistake (syntax, ranges, shapes).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownOperation is returned when the requested operation name is not recognized.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrNoRuleAvailable is returned when a recognized operation has no registered rule.
	ErrNoRuleAvailable = errors.New("no rule available for operation")

	// ErrOrderOutOfRange is returned for derivative orders outside [1, 10].
	ErrOrderOutOfRange = errors.New("derivative order must be between 1 and 10")

	// ErrDimensionMismatch is returned when matrix operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("matrix dimension mismatch")

	// ErrNotSquare is returned when a square matrix is required but not supplied.
	ErrNotSquare = errors.New("matrix must be square")

	// ErrSingularMatrix is returned when an inverse of a singular matrix is requested.
	ErrSingularMatrix = errors.New("matrix is singular")
)

// ErrInvalidStep marks an engine-invariant violation inside the step graph.
// It always indicates a bug in a rule, never a user mistake.
var ErrInvalidStep = errors.New("invalid step")

// ErrResultNotFound is returned when a result id cannot be found in a store.
var ErrResultNotFound = errors.New("result not found")

// InputErrorf wraps a formatted message as a recoverable user error.
func InputErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// DimensionErrorf reports incompatible shapes for a matrix product.
func DimensionErrorf(ar, ac, br, bc int) error {
	return fmt.Errorf("%w: cannot multiply matrices: A is %d×%d, B is %d×%d; number of columns in A (%d) must equal number of rows in B (%d)",
		ErrDimensionMismatch, ar, ac, br, bc, ac, br)
}

// NotSquareErrorf reports a non-square matrix handed to an operation that
// needs one.
func NotSquareErrorf(op string, rows, cols int) error {
	return fmt.Errorf("%w: %s requires a square matrix, got %d×%d", ErrNotSquare, op, rows, cols)
}

// SingularMatrixError reports an inverse of a matrix with determinant zero.
func SingularMatrixError() error {
	return fmt.Errorf("%w: determinant is 0, matrix cannot be inverted", ErrSingularMatrix)
}

// IsUserError reports whether err is a recoverable input problem rather than
// an engine bug or backend failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownOperation) ||
		errors.Is(err, ErrNoRuleAvailable) ||
		errors.Is(err, ErrOrderOutOfRange) ||
		errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrNotSquare) ||
		errors.Is(err, ErrSingularMatrix)
}

// StepValidationError reports a structural invariant broken by a specific rule.
// Callers can distinguish "fix your input" from "file a bug against rule X" by
// matching on this type (or on ErrInvalidStep).
type StepValidationError struct {
	Rule string
	Err  error
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("invalid step emitted by rule %s: %v", e.Rule, e.Err)
}

func (e *StepValidationError) Unwrap() error { return e.Err }

// NewStepValidationError wraps err as an invariant violation attributed to rule.
func NewStepValidationError(rule string, err error) *StepValidationError {
	if !errors.Is(err, ErrInvalidStep) {
		err = fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	return &StepValidationError{Rule: rule, Err: err}
}
