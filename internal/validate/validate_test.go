package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/domain"
)

func TestExpressionAcceptsMath(t *testing.T) {
	for _, expr := range []string{
		"x**2 + sin(x)",
		"3*x^2 - 1/2",
		"sqrt(x) * cos(theta_1)",
		"(a + b)*(a - b)",
		"2.5*x + 0.1",
	} {
		got, err := Expression(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, expr, got)
	}

	got, err := Expression("  x + 1  ")
	require.NoError(t, err)
	assert.Equal(t, "x + 1", got, "surrounding whitespace is stripped")
}

func TestExpressionRejects(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want string
	}{
		{"empty", "", "expression cannot be empty"},
		{"whitespace only", "   ", "expression cannot be empty"},
		{"too long", strings.Repeat("x+", 251), "expression too long (max 500 characters)"},
		{"dunder", "__import__", "forbidden pattern"},
		{"import", "import os", "forbidden pattern"},
		{"eval", "eval(x)", "forbidden pattern"},
		{"statement separator", "x; y", "forbidden pattern"},
		{"lambda", "lambda x", "forbidden pattern"},
		{"path traversal", "../etc/passwd", "forbidden pattern"},
		{"sql", "x DROP   TABLE runs", "forbidden pattern"},
		{"sql case insensitive", "drop table runs", "forbidden pattern"},
		{"equals sign", "x = 2", "invalid characters"},
		{"hash", "x + #", "invalid characters"},
		{"too many closing", "x + 1)", "too many closing"},
		{"unclosed opening", "((x + 1)", "unclosed opening"},
		{"division by zero", "1/0", "division by zero"},
		{"division by zero spaced", "x / 0 + 1", "division by zero"},
		{"division by zero parenthesized", "(1/0)", "division by zero"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Expression(tc.expr)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.want)
			assert.True(t, domain.IsUserError(err))
		})
	}
}

func TestExpressionAllowsZeroDenominatorDigits(t *testing.T) {
	// 0.5 and 10 are not literal zero denominators.
	for _, expr := range []string{"1/0.5", "x/10", "x/(y + 0)"} {
		_, err := Expression(expr)
		assert.NoError(t, err, expr)
	}
}

func TestVariable(t *testing.T) {
	for _, name := range []string{"x", "theta_1", "_t", "Y"} {
		got, err := Variable(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}

	got, err := Variable(" x ")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "cannot be empty"},
		{"too long", strings.Repeat("a", 21), "too long (max 20 characters)"},
		{"leading digit", "2x", "must start with a letter or underscore"},
		{"hyphen", "a-b", "must start with a letter or underscore"},
		{"dunder", "a__b", "double underscores"},
		{"function name", "sin", "conflicts with a built-in"},
		{"constant", "pi", "conflicts with a built-in"},
		{"euler", "E", "conflicts with a built-in"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Variable(tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMatrix(t *testing.T) {
	got, err := Matrix(" [[1,2],[3,4]] ")
	require.NoError(t, err)
	assert.Equal(t, "[[1,2],[3,4]]", got)

	_, err = Matrix("[[1.5, -2],[x, y]]")
	assert.NoError(t, err, "floats, signs, and symbols are matrix entries")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "matrix cannot be empty"},
		{"no brackets", "1,2,3", "double brackets"},
		{"half open", "[[1,2],[3,4]", "double brackets"},
		{"unbalanced", "[[1],[2]]]", "unbalanced brackets"},
		{"operators", "[[2*x,0],[0,1]]", "invalid characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Matrix(tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
