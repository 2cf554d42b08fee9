package calculus

import (
	"strings"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// chainEntry describes one outer-function derivative d/du f(u). outer builds
// the outer factor; the chain factor u' is left as a pending derivative for
// later passes. A nil outer means the whole call differentiates to zero.
type chainEntry struct {
	fn      string
	concise string
	teacher string
	outer   func(u symbolic.Expr) symbolic.Expr
}

// chainCatalog lists the chain rules in registration order. All entries share
// priority 85, so this order decides which fires first on equal footing.
var chainCatalog = []chainEntry{
	{
		fn:      "sin",
		concise: "Apply chain rule: d/dx(sin(u))=cos(u)·u'.",
		teacher: "Outer function: sin(·). Inner function: u. Differentiate the outer (cos) and multiply by the derivative of the inner (u').",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("cos", u) },
	},
	{
		fn:      "cos",
		concise: "Apply chain rule: d/dx(cos(u))=-sin(u)·u'.",
		teacher: "Differentiate the outer (cos→-sin) and multiply by the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Neg(symbolic.Fn("sin", u)) },
	},
	{
		fn:      "tan",
		concise: "Apply chain rule: d/dx(tan(u))=sec(u)^2·u'.",
		teacher: "Derivative of tan is sec^2; multiply by the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.PowOf(symbolic.Fn("sec", u), symbolic.N(2)) },
	},
	{
		fn:      "sec",
		concise: "Apply chain rule: d/dx(sec(u))=sec(u)·tan(u)·u'.",
		teacher: "Derivative of sec is sec·tan; multiply by the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.MulOf(symbolic.Fn("sec", u), symbolic.Fn("tan", u)) },
	},
	{
		fn:      "csc",
		concise: "Apply chain rule: d/dx(csc(u))=-csc(u)·cot(u)·u'.",
		teacher: "Derivative of csc is -csc·cot; multiply by the inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Neg(symbolic.MulOf(symbolic.Fn("csc", u), symbolic.Fn("cot", u)))
		},
	},
	{
		fn:      "cot",
		concise: "Apply chain rule: d/dx(cot(u))=-csc(u)^2·u'.",
		teacher: "Derivative of cot is -csc^2; multiply by the inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Neg(symbolic.PowOf(symbolic.Fn("csc", u), symbolic.N(2)))
		},
	},
	{
		fn:      "exp",
		concise: "Apply chain rule: d/dx(e^u)=e^u·u'.",
		teacher: "The derivative of e^u is itself times the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("exp", u) },
	},
	{
		fn:      "log",
		concise: "Apply chain rule: d/dx(ln(u))=u'/u.",
		teacher: "Differentiate log by dividing the inner derivative by the inner function.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Div(symbolic.N(1), u) },
	},
	{
		fn:      "asin",
		concise: "Apply chain rule: d/dx(arcsin(u))=u'/sqrt(1-u^2).",
		teacher: "Derivative of arcsin uses 1/sqrt(1-u^2); include inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.Sqrt(symbolic.Sub(symbolic.N(1), symbolic.PowOf(u, symbolic.N(2)))))
		},
	},
	{
		fn:      "acos",
		concise: "Apply chain rule: d/dx(arccos(u))=-u'/sqrt(1-u^2).",
		teacher: "Derivative of arccos is -1/sqrt(1-u^2); include inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Neg(symbolic.Div(symbolic.N(1), symbolic.Sqrt(symbolic.Sub(symbolic.N(1), symbolic.PowOf(u, symbolic.N(2))))))
		},
	},
	{
		fn:      "atan",
		concise: "Apply chain rule: d/dx(arctan(u))=u'/(1+u^2).",
		teacher: "Derivative of arctan uses 1/(1+u^2); include inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.AddOf(symbolic.N(1), symbolic.PowOf(u, symbolic.N(2))))
		},
	},
	{
		fn:      "asec",
		concise: "Apply chain rule: d/dx(arcsec(u))=u'/(|u|·√(u²-1)).",
		teacher: "Inverse secant differentiates to u' over (absolute value of u times sqrt(u²-1)).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.MulOf(symbolic.Fn("Abs", u), symbolic.Sqrt(symbolic.Sub(symbolic.PowOf(u, symbolic.N(2)), symbolic.N(1)))))
		},
	},
	{
		fn:      "acsc",
		concise: "Apply chain rule: d/dx(arccsc(u))=-u'/(|u|·√(u²-1)).",
		teacher: "Inverse cosecant differentiates to negative u' over (absolute value of u times sqrt(u²-1)).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Neg(symbolic.Div(symbolic.N(1), symbolic.MulOf(symbolic.Fn("Abs", u), symbolic.Sqrt(symbolic.Sub(symbolic.PowOf(u, symbolic.N(2)), symbolic.N(1))))))
		},
	},
	{
		fn:      "acot",
		concise: "Apply chain rule: d/dx(arccot(u))=-u'/(1+u²).",
		teacher: "Inverse cotangent differentiates to negative u' over (1+u²).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Neg(symbolic.Div(symbolic.N(1), symbolic.AddOf(symbolic.N(1), symbolic.PowOf(u, symbolic.N(2)))))
		},
	},
	{
		fn:      "sinh",
		concise: "Apply chain rule: d/dx(sinh(u))=cosh(u)·u'.",
		teacher: "Hyperbolic sine differentiates to hyperbolic cosine times the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("cosh", u) },
	},
	{
		fn:      "cosh",
		concise: "Apply chain rule: d/dx(cosh(u))=sinh(u)·u'.",
		teacher: "Hyperbolic cosine differentiates to hyperbolic sine times the inner derivative.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("sinh", u) },
	},
	{
		fn:      "tanh",
		concise: "Apply chain rule: d/dx(tanh(u))=sech²(u)·u'.",
		teacher: "Hyperbolic tangent differentiates to hyperbolic secant squared times the inner derivative.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.PowOf(symbolic.Fn("cosh", u), symbolic.N(2)))
		},
	},
	{
		fn:      "asinh",
		concise: "Apply chain rule: d/dx(asinh(u))=u'/sqrt(u²+1).",
		teacher: "Inverse hyperbolic sine differentiates to u' over sqrt(u²+1).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.Sqrt(symbolic.AddOf(symbolic.PowOf(u, symbolic.N(2)), symbolic.N(1))))
		},
	},
	{
		fn:      "acosh",
		concise: "Apply chain rule: d/dx(acosh(u))=u'/sqrt(u²-1).",
		teacher: "Inverse hyperbolic cosine differentiates to u' over sqrt(u²-1).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.Sqrt(symbolic.Sub(symbolic.PowOf(u, symbolic.N(2)), symbolic.N(1))))
		},
	},
	{
		fn:      "atanh",
		concise: "Apply chain rule: d/dx(atanh(u))=u'/(1-u²).",
		teacher: "Inverse hyperbolic tangent differentiates to u' over (1-u²).",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.N(1), symbolic.Sub(symbolic.N(1), symbolic.PowOf(u, symbolic.N(2))))
		},
	},
	{
		fn:      "erf",
		concise: "Apply chain rule to error function: d/dx[erf(u)] = (2/√π)·exp(-u²)·u'",
		teacher: "The error function erf(u) is the Gaussian distribution integral. Its derivative follows from the fundamental theorem of calculus: d/dx[erf(u)] = (2/√π)·exp(-u²)·du/dx.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.MulOf(
				symbolic.Div(symbolic.N(2), symbolic.Sqrt(symbolic.Pi)),
				symbolic.Fn("exp", symbolic.Neg(symbolic.PowOf(u, symbolic.N(2)))),
			)
		},
	},
	{
		fn:      "gamma",
		concise: "Apply chain rule to gamma function: d/dx[Γ(u)] = Γ(u)·ψ(u)·u' where ψ is the digamma function",
		teacher: "The gamma function Γ(u) generalizes factorials. Its derivative is Γ(u)·ψ(u)·du/dx where ψ (psi) is the digamma function, the logarithmic derivative of gamma.",
		outer: func(u symbolic.Expr) symbolic.Expr {
			return symbolic.MulOf(symbolic.Fn("gamma", u), symbolic.Fn("polygamma", symbolic.N(0), u))
		},
	},
	{
		fn:      "Heaviside",
		concise: "Apply chain rule to Heaviside step function: d/dx[H(u)] = δ(u)·u' where δ is the Dirac delta",
		teacher: "The Heaviside function H(u) is 0 for u<0 and 1 for u>0. Its derivative is the Dirac delta δ(u), a generalized function representing an infinitely sharp spike at u=0.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("DiracDelta", u) },
	},
	{
		fn:      "Abs",
		concise: "Apply chain rule to absolute value: d/dx[|u|] = sign(u)·u'",
		teacher: "The absolute value function |u| has derivative sign(u)·du/dx, where sign(u) = u/|u| for u≠0. Note that |u| is not differentiable at u=0.",
		outer:   func(u symbolic.Expr) symbolic.Expr { return symbolic.Fn("sign", u) },
	},
	{
		fn:      "floor",
		concise: "Derivative of floor function: d/dx[⌊u⌋] = 0 (except at integers where undefined)",
		teacher: "The floor function ⌊u⌋ is a step function that's constant between integers. At non-integer points, its derivative is 0. At integer values of u, the derivative is undefined (the function has a jump discontinuity).",
	},
	{
		fn:      "ceiling",
		concise: "Derivative of ceiling function: d/dx[⌈u⌉] = 0 (except at integers where undefined)",
		teacher: "The ceiling function ⌈u⌉ rounds up to the nearest integer. Like floor, it's piecewise constant, so its derivative is 0 at non-integer points and undefined at integer jumps.",
	},
}

func chainRules() []domain.Rule {
	out := make([]domain.Rule, len(chainCatalog))
	for i, entry := range chainCatalog {
		out[i] = chainDiffRule(entry)
	}
	return out
}

// chainDiffRule fires when the outermost pending derivative's operand is
// exactly the entry's function call. Composites like x·sin(x) are deliberately
// left to the product and sum rules, which peel them into chain-sized pieces.
func chainDiffRule(entry chainEntry) domain.Rule {
	return pendingRule("chain_rule_"+strings.ToLower(entry.fn), 85,
		func(d *symbolic.Deriv) bool {
			c, ok := d.Expr.(*symbolic.Call)
			return ok && c.Fn == entry.fn && len(c.Args) == 1
		},
		func(d *symbolic.Deriv) symbolic.Expr {
			u := d.Expr.(*symbolic.Call).Args[0]
			if entry.outer == nil {
				return symbolic.N(0)
			}
			return symbolic.MulOf(entry.outer(u), symbolic.DerivOf(u, d.Variable, 1))
		},
		func(d *symbolic.Deriv) domain.Explanation {
			return explain(entry.concise, entry.teacher)
		})
}
