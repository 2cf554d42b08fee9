package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type litExpr string

func (l litExpr) String() string { return string(l) }

func TestExplanationAt(t *testing.T) {
	full := Explanation{Concise: "c", Detailed: "d", Teacher: "t"}
	assert.Equal(t, "c", full.At(VerbosityConcise))
	assert.Equal(t, "d", full.At(VerbosityDetailed))
	assert.Equal(t, "t", full.At(VerbosityTeacher))

	noTeacher := Explanation{Concise: "c", Detailed: "d"}
	assert.Equal(t, "d", noTeacher.At(VerbosityTeacher), "teacher falls back to detailed")

	conciseOnly := Explanation{Concise: "c"}
	assert.Equal(t, "c", conciseOnly.At(VerbosityConcise))
	assert.Equal(t, "c", conciseOnly.At(VerbosityDetailed))
	assert.Equal(t, "c", conciseOnly.At(VerbosityTeacher))

	skipDetailed := Explanation{Concise: "c", Teacher: "t"}
	assert.Equal(t, "t", skipDetailed.At(VerbosityTeacher))
	assert.Equal(t, "c", skipDetailed.At(VerbosityDetailed))
}

func TestGoalStateTransitions(t *testing.T) {
	pending := Goal{Expr: litExpr("Derivative(x**2, x)"), Pending: &PendingDerivative{Variable: "x", Order: 1}}
	assert.False(t, pending.Resolved())

	moved := pending.WithExpr(litExpr("2*x"))
	assert.False(t, moved.Resolved(), "WithExpr keeps outstanding work")
	assert.Equal(t, litExpr("2*x"), moved.Expr)
	assert.Same(t, pending.Pending, moved.Pending)

	done := moved.ResolvedGoal()
	assert.True(t, done.Resolved())
	assert.Equal(t, litExpr("2*x"), done.Expr)

	assert.True(t, Goal{Expr: litExpr("4")}.Resolved(), "no pending work means resolved")
}
