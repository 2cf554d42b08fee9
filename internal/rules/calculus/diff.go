package calculus

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// expandHigherOrder collapses an order-n marker by evaluating all n passes in
// the backend. Showing each pass as its own chain of steps would repeat the
// first-order trace n times, so the whole computation becomes one step.
func expandHigherOrder() domain.Rule {
	return pendingRule("expand_higher_order", 150,
		func(d *symbolic.Deriv) bool { return d.Order > 1 },
		func(d *symbolic.Deriv) symbolic.Expr {
			return symbolic.DiffN(d.Expr, d.Variable, d.Order)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			name, notation := orderName(d.Order, d.Variable)
			return explain(
				fmt.Sprintf("Compute %s derivative: %s[%s]", name, notation, symbolic.Format(d.Expr)),
				fmt.Sprintf("The %s derivative %s means differentiating %d times with respect to %s. For polynomials, each differentiation reduces the degree by 1 and multiplies by the current power.",
					name, notation, d.Order, d.Variable),
			)
		})
}

// orderName names a derivative order and its Leibniz notation.
func orderName(order int, variable string) (string, string) {
	switch order {
	case 2:
		return "second", fmt.Sprintf("d²/d%s²", variable)
	case 3:
		return "third", fmt.Sprintf("d³/d%s³", variable)
	case 4:
		return "fourth", fmt.Sprintf("d⁴/d%s⁴", variable)
	case 5:
		return "fifth", fmt.Sprintf("d⁵/d%s⁵", variable)
	}
	return fmt.Sprintf("%dth", order), fmt.Sprintf("d^%d/d%s^%d", order, variable, order)
}

func diffConstant() domain.Rule {
	return pendingRule("diff_constant", 100,
		func(d *symbolic.Deriv) bool { return symbolic.IsConstantIn(d.Expr, d.Variable) },
		func(d *symbolic.Deriv) symbolic.Expr { return symbolic.N(0) },
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Derivative of a constant is 0.",
				"If a term does not depend on the variable, changing it cannot change the term's value, so the rate of change is 0.",
			)
		})
}

func diffIdentity() domain.Rule {
	return pendingRule("diff_identity", 100,
		func(d *symbolic.Deriv) bool {
			s, ok := d.Expr.(*symbolic.Sym)
			return ok && s.Name == d.Variable
		},
		func(d *symbolic.Deriv) symbolic.Expr { return symbolic.N(1) },
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				fmt.Sprintf("Derivative of %s with respect to %s is 1.", d.Variable, d.Variable),
				"The function f(x)=x increases by 1 for every +1 in x, so its slope is 1.",
			)
		})
}

func sumRule() domain.Rule {
	return pendingRule("sum_rule", 90,
		func(d *symbolic.Deriv) bool {
			_, ok := d.Expr.(*symbolic.Add)
			return ok
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			sum := d.Expr.(*symbolic.Add)
			terms := make([]symbolic.Expr, len(sum.Terms))
			for i, t := range sum.Terms {
				terms[i] = symbolic.DerivOf(t, d.Variable, 1)
			}
			return symbolic.AddOf(terms...)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Differentiate term-by-term using linearity: d/dx(f+g)=f'+g'.",
				"Linearity means we can differentiate each term separately and then add the results.",
			)
		})
}

func constantMultiple() domain.Rule {
	split := func(d *symbolic.Deriv) (consts, varying []symbolic.Expr) {
		m, ok := d.Expr.(*symbolic.Mul)
		if !ok {
			return nil, nil
		}
		for _, f := range m.Factors {
			if symbolic.IsConstantIn(f, d.Variable) {
				consts = append(consts, f)
			} else {
				varying = append(varying, f)
			}
		}
		return consts, varying
	}
	return pendingRule("constant_multiple", 95,
		func(d *symbolic.Deriv) bool {
			consts, varying := split(d)
			return len(consts) > 0 && len(varying) > 0
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			consts, varying := split(d)
			inner := varying[0]
			if len(varying) > 1 {
				inner = symbolic.MulOf(varying...)
			}
			factors := append(consts, symbolic.DerivOf(inner, d.Variable, 1))
			return symbolic.MulOf(factors...)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Factor out constants: d/dx(c·u)=c·u'.",
				"Constants don't change with x, so they factor out of the derivative.",
			)
		})
}

// reciprocalIndex finds the first factor of the form g**-1, or -1.
func reciprocalIndex(m *symbolic.Mul) int {
	for i, f := range m.Factors {
		p, ok := f.(*symbolic.Pow)
		if !ok {
			continue
		}
		if n, ok := p.Exp.(*symbolic.Num); ok && n.IsNegOne() {
			return i
		}
	}
	return -1
}

func quotientRule() domain.Rule {
	return pendingRule("quotient_rule", 80,
		func(d *symbolic.Deriv) bool {
			m, ok := d.Expr.(*symbolic.Mul)
			return ok && reciprocalIndex(m) >= 0
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			m := d.Expr.(*symbolic.Mul)
			i := reciprocalIndex(m)
			den := m.Factors[i].(*symbolic.Pow).Base
			rest := make([]symbolic.Expr, 0, len(m.Factors)-1)
			for j, f := range m.Factors {
				if j != i {
					rest = append(rest, f)
				}
			}
			var num symbolic.Expr
			switch len(rest) {
			case 0:
				num = symbolic.N(1)
			case 1:
				num = rest[0]
			default:
				num = symbolic.MulOf(rest...)
			}
			fp := symbolic.DerivOf(num, d.Variable, 1)
			gp := symbolic.DerivOf(den, d.Variable, 1)
			return symbolic.Div(
				symbolic.Sub(symbolic.MulOf(fp, den), symbolic.MulOf(num, gp)),
				symbolic.PowOf(den, symbolic.N(2)),
			)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Apply quotient rule: d/dx(f/g) = (f'·g - f·g') / g².",
				"When dividing functions, use the quotient rule: derivative of numerator times denominator minus numerator times derivative of denominator, all over denominator squared.",
			)
		})
}

func powerRule() domain.Rule {
	return pendingRule("power_rule", 85,
		func(d *symbolic.Deriv) bool {
			p, ok := d.Expr.(*symbolic.Pow)
			return ok && symbolic.IsConstantIn(p.Exp, d.Variable)
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			p := d.Expr.(*symbolic.Pow)
			return symbolic.MulOf(
				p.Exp,
				symbolic.PowOf(p.Base, symbolic.Sub(p.Exp, symbolic.N(1))),
				symbolic.DerivOf(p.Base, d.Variable, 1),
			)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Apply power rule with chain: d/dx(u^n)=n·u^(n-1)·u'.",
				"If u depends on x, we differentiate u^n like the usual power rule, then multiply by u' to account for how u changes with x.",
			)
		})
}

// productRule splits the leading factor off an n-ary product; the remaining
// factors are differentiated as one block and picked apart on later passes.
func productRule() domain.Rule {
	return pendingRule("product_rule", 80,
		func(d *symbolic.Deriv) bool {
			m, ok := d.Expr.(*symbolic.Mul)
			return ok && len(m.Factors) >= 2
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			m := d.Expr.(*symbolic.Mul)
			f := m.Factors[0]
			var g symbolic.Expr
			if len(m.Factors) == 2 {
				g = m.Factors[1]
			} else {
				g = symbolic.MulOf(m.Factors[1:]...)
			}
			return symbolic.AddOf(
				symbolic.MulOf(f, symbolic.DerivOf(g, d.Variable, 1)),
				symbolic.MulOf(g, symbolic.DerivOf(f, d.Variable, 1)),
			)
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Apply product rule: d/dx(f·g)=f·g' + g·f'.",
				"Think of f·g as one quantity times another. If either changes, the product changes; the product rule accounts for both contributions.",
			)
		})
}

func logarithmicDifferentiation() domain.Rule {
	return pendingRule("logarithmic_differentiation", 80,
		func(d *symbolic.Deriv) bool {
			p, ok := d.Expr.(*symbolic.Pow)
			return ok && symbolic.ContainsSymbol(p.Base, d.Variable) && symbolic.ContainsSymbol(p.Exp, d.Variable)
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			p := d.Expr.(*symbolic.Pow)
			return symbolic.MulOf(p, symbolic.AddOf(
				symbolic.MulOf(symbolic.Fn("log", p.Base), symbolic.DerivOf(p.Exp, d.Variable, 1)),
				symbolic.MulOf(symbolic.Div(p.Exp, p.Base), symbolic.DerivOf(p.Base, d.Variable, 1)),
			))
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(
				"Apply logarithmic differentiation: d/dx(u^v) = u^v·[ln(u)·v' + (v/u)·u'].",
				"When both base and exponent depend on x, use logarithmic differentiation: take ln of both sides, differentiate, then solve for dy/dx.",
			)
		})
}

// evaluateFallback hands any remaining marker to the backend in one opaque
// step, keeping the loop total when no named rule recognizes the shape.
func evaluateFallback() domain.Rule {
	return domain.Rule{
		Name:      "evaluate_derivative_fallback",
		Operation: domain.OpDifferentiate,
		Priority:  -50,
		Domains:   []domain.Domain{domain.DomainCalculus},
		Match:     matchPending(func(*symbolic.Deriv) bool { return true }),
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			next, err := rewritePending(g, func(d *symbolic.Deriv) symbolic.Expr {
				return symbolic.DiffN(d.Expr, d.Variable, d.Order)
			})
			if err != nil {
				return domain.Application{}, err
			}
			return domain.Application{
				Goal:        next,
				Explanation: domain.Explanation{Concise: "Fallback: evaluate derivative (backend)."},
				Metadata:    map[string]any{"backend": backendName},
			}, nil
		},
	}
}

// simplifyResult canonicalizes a fully resolved goal. It only matches once no
// derivative work remains, so it runs as the closing pass of a run.
func simplifyResult() domain.Rule {
	return domain.Rule{
		Name:      "simplify_result",
		Operation: domain.OpDifferentiate,
		Priority:  -200,
		Domains:   []domain.Domain{domain.DomainCalculus},
		Match: func(g domain.Goal, _ domain.RuleContext) bool {
			_, ok := goalExpr(g)
			return ok && g.Resolved()
		},
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			e, ok := goalExpr(g)
			if !ok {
				return domain.Application{}, errNoPending
			}
			canon := symbolic.Simplify(e)
			if trig := symbolic.TrigSimplify(canon); !symbolic.Equal(trig, canon) {
				return domain.Application{
					Goal:        g.WithExpr(trig),
					Explanation: explain("Apply trigonometric identities to simplify.", "Use identities like sin²+cos²=1, double angle formulas, etc."),
					Metadata:    map[string]any{"backend": backendName},
				}, nil
			}
			if !symbolic.Equal(canon, e) {
				return domain.Application{
					Goal:        g.WithExpr(canon),
					Explanation: explain("Simplify algebraically.", "We simplify the expression to a standard, cleaner form."),
					Metadata:    map[string]any{"backend": backendName},
				}, nil
			}
			return noop(g, "No further simplification."), nil
		},
	}
}
