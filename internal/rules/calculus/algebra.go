package calculus

import (
	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// matchWhole gates on the goal carrying a backend expression; the algebra
// rules transform the whole tree and always volunteer, reporting a no-op when
// nothing changes.
func matchWhole(g domain.Goal, _ domain.RuleContext) bool {
	_, ok := goalExpr(g)
	return ok
}

func expandExpression() domain.Rule {
	return domain.Rule{
		Name:      "expand_expression",
		Operation: domain.OpExpand,
		Priority:  100,
		Domains:   []domain.Domain{domain.DomainAlgebra},
		Match:     matchWhole,
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			e, ok := goalExpr(g)
			if !ok {
				return domain.Application{}, errNoPending
			}
			// Canonicalize first: the parse tree's associativity must not
			// masquerade as an expansion of already-expanded input.
			canon := symbolic.Simplify(e)
			expanded := symbolic.ExpandExpr(canon)
			if symbolic.Equal(expanded, canon) {
				return noop(g.WithExpr(canon), "Expression is already expanded."), nil
			}
			return domain.Application{
				Goal: g.WithExpr(expanded),
				Explanation: explain(
					"Expand using distributive law: multiply out products and powers.",
					"Expanding means writing (a+b)² as a²+2ab+b², distributing multiplication over addition.",
				),
			}, nil
		},
	}
}

func factorExpression() domain.Rule {
	return domain.Rule{
		Name:      "factor_expression",
		Operation: domain.OpFactor,
		Priority:  100,
		Domains:   []domain.Domain{domain.DomainAlgebra},
		Match:     matchWhole,
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			e, ok := goalExpr(g)
			if !ok {
				return domain.Application{}, errNoPending
			}
			canon := symbolic.Simplify(e)
			factored := symbolic.FactorExpr(canon)
			if symbolic.Equal(factored, canon) {
				return noop(g.WithExpr(canon), "Expression cannot be factored further."), nil
			}
			return domain.Application{
				Goal: g.WithExpr(factored),
				Explanation: explain(
					"Factor by extracting common terms and recognizing patterns.",
					"Factoring means writing x²+5x+6 as (x+2)(x+3), finding common factors and grouping.",
				),
			}, nil
		},
	}
}

func simplifyTrig() domain.Rule {
	return domain.Rule{
		Name:      "simplify_trig",
		Operation: domain.OpSimplify,
		Priority:  100,
		Domains:   []domain.Domain{domain.DomainAlgebra, domain.DomainTrigonometry},
		Match:     matchWhole,
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			e, ok := goalExpr(g)
			if !ok {
				return domain.Application{}, errNoPending
			}
			// Canonicalize before probing for identities so that a plain
			// algebraic cleanup is not misreported as a trig rewrite.
			canon := symbolic.Simplify(e)
			if trig := symbolic.TrigSimplify(canon); !symbolic.Equal(trig, canon) {
				return domain.Application{
					Goal: g.WithExpr(trig),
					Explanation: explain(
						"Apply trigonometric identities (sin²+cos²=1, double angles, etc.).",
						"Use fundamental trig identities to combine or reduce trigonometric expressions.",
					),
				}, nil
			}
			if !symbolic.Equal(canon, e) {
				return domain.Application{
					Goal: g.WithExpr(canon),
					Explanation: explain(
						"Simplify algebraically.",
						"Combine like terms, cancel common factors, and reduce to simpler form.",
					),
				}, nil
			}
			return noop(g, "Expression is already simplified."), nil
		},
	}
}
