// Package calculus implements the differentiation and algebra rule catalog.
//
// Differentiation works on pending-derivative markers inside the goal
// expression: each rule inspects the outermost marker, rewrites it into
// closed form or into smaller pending derivatives, and canonicalizes the
// result. Priorities arrange the catalog so that named, pedagogically
// specific rules win over the backend fallback, which in turn wins over the
// final simplification pass.
package calculus

import (
	"errors"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

const backendName = "exact"

var errNoPending = errors.New("calculus: goal has no pending derivative")

// Rules returns the full built-in catalog in registration order. Ties in
// priority are resolved by this order, so it is part of the contract.
func Rules() []domain.Rule {
	return append(DiffRules(), AlgebraRules()...)
}

// DiffRules returns the differentiation catalog.
func DiffRules() []domain.Rule {
	rules := []domain.Rule{
		expandHigherOrder(),
		diffConstant(),
		diffIdentity(),
		sumRule(),
		constantMultiple(),
		quotientRule(),
		powerRule(),
		productRule(),
		logarithmicDifferentiation(),
	}
	rules = append(rules, chainRules()...)
	return append(rules, evaluateFallback(), simplifyResult())
}

// AlgebraRules returns the expand, factor and simplify catalog.
func AlgebraRules() []domain.Rule {
	return []domain.Rule{
		expandExpression(),
		factorExpression(),
		simplifyTrig(),
	}
}

// goalExpr extracts the backend tree from a goal. Rules in this package only
// fire on goals carrying the exact backend's expressions.
func goalExpr(g domain.Goal) (symbolic.Expr, bool) {
	e, ok := g.Expr.(symbolic.Expr)
	return e, ok
}

// firstPending returns the outermost pending derivative of the goal, or nil.
func firstPending(g domain.Goal) *symbolic.Deriv {
	e, ok := goalExpr(g)
	if !ok {
		return nil
	}
	return symbolic.FirstPending(e)
}

// matchPending builds a Match func that fires when the outermost pending
// derivative satisfies pred.
func matchPending(pred func(*symbolic.Deriv) bool) func(domain.Goal, domain.RuleContext) bool {
	return func(g domain.Goal, _ domain.RuleContext) bool {
		d := firstPending(g)
		return d != nil && pred(d)
	}
}

// rewritePending replaces the outermost pending derivative with repl's result
// and canonicalizes the whole tree. The goal's pending state is cleared once
// no marker remains.
func rewritePending(g domain.Goal, repl func(*symbolic.Deriv) symbolic.Expr) (domain.Goal, error) {
	e, ok := goalExpr(g)
	if !ok {
		return g, errNoPending
	}
	d := symbolic.FirstPending(e)
	if d == nil {
		return g, errNoPending
	}
	out, ok := symbolic.ReplaceFirstPending(e, repl(d))
	if !ok {
		return g, errNoPending
	}
	canon := symbolic.Simplify(out)
	next := g.WithExpr(canon)
	if !symbolic.HasPending(canon) {
		next = next.ResolvedGoal()
	}
	return next, nil
}

// pendingRule assembles the shared shape of a single-marker rewrite rule:
// pred gates on the outermost pending derivative, repl builds its
// replacement, expl narrates the step.
func pendingRule(name string, priority int, pred func(*symbolic.Deriv) bool, repl func(*symbolic.Deriv) symbolic.Expr, expl func(*symbolic.Deriv) domain.Explanation) domain.Rule {
	return domain.Rule{
		Name:      name,
		Operation: domain.OpDifferentiate,
		Priority:  priority,
		Domains:   []domain.Domain{domain.DomainCalculus},
		Match:     matchPending(pred),
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			d := firstPending(g)
			if d == nil {
				return domain.Application{}, errNoPending
			}
			next, err := rewritePending(g, repl)
			if err != nil {
				return domain.Application{}, err
			}
			return domain.Application{Goal: next, Explanation: expl(d)}, nil
		},
	}
}

func explain(concise, teacher string) domain.Explanation {
	return domain.Explanation{Concise: concise, Teacher: teacher}
}

// noop reports an application that left the goal untouched.
func noop(g domain.Goal, text string) domain.Application {
	return domain.Application{
		Goal:        g,
		Explanation: domain.Explanation{Concise: text},
		Metadata:    map[string]any{domain.MetaNoop: true},
		Noop:        true,
	}
}
