package domain

// Expr is the algebra backend's native expression tree, handled opaquely by the
// engine. Rules and the backend know the concrete node types; the core only
// threads values through and prints them at the run boundary.
type Expr interface {
	// String returns a human-readable form. The canonical text recorded on
	// step nodes comes from the backend's Format, not from String.
	String() string
}

// PendingDerivative describes outstanding differentiation work: the variable to
// differentiate by and how many orders remain.
type PendingDerivative struct {
	Variable string `json:"variable"`
	Order    int    `json:"order"`
}

// Goal is the unit of work a run transforms. The expression evolves step by
// step; Pending is non-nil while derivative work remains and nil once the
// expression is fully resolved. Modeling the request state here keeps control
// flow out of band instead of only smuggled inside the expression tree.
type Goal struct {
	Expr    Expr
	Pending *PendingDerivative
}

// Resolved reports whether no derivative work remains on the goal.
func (g Goal) Resolved() bool { return g.Pending == nil }

// WithExpr returns a copy of the goal carrying a new expression.
func (g Goal) WithExpr(e Expr) Goal {
	return Goal{Expr: e, Pending: g.Pending}
}

// ResolvedGoal returns a copy of the goal with all derivative work cleared.
func (g Goal) ResolvedGoal() Goal {
	return Goal{Expr: g.Expr}
}
