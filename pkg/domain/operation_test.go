package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	for _, op := range Operations() {
		got, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := ParseOperation("integrate")
	require.ErrorIs(t, err, ErrUnknownOperation)
	assert.Contains(t, err.Error(), `"integrate"`)
	assert.True(t, IsUserError(err))

	_, err = ParseOperation("")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestOperationsReturnsCopy(t *testing.T) {
	ops := Operations()
	require.NotEmpty(t, ops)
	ops[0] = Operation("tampered")
	assert.Equal(t, OpDifferentiate, Operations()[0])
}

func TestOperationIsMatrix(t *testing.T) {
	matrix := []Operation{
		OpMatrixMultiply, OpMatrixDeterminant, OpMatrixInverse,
		OpMatrixRREF, OpMatrixEigenvalues, OpMatrixLU,
	}
	for _, op := range matrix {
		assert.True(t, op.IsMatrix(), op)
	}

	iterative := []Operation{OpDifferentiate, OpExpand, OpFactor, OpSimplify}
	for _, op := range iterative {
		assert.False(t, op.IsMatrix(), op)
	}
}

func TestParseVerbosity(t *testing.T) {
	cases := map[string]Verbosity{
		"":         VerbosityConcise,
		"concise":  VerbosityConcise,
		"detailed": VerbosityDetailed,
		"teacher":  VerbosityTeacher,
	}
	for in, want := range cases {
		got, err := ParseVerbosity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseVerbosity("loud")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), `"loud"`)
}
