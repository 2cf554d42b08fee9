package symbolic

// DiffExpr computes the derivative of e with respect to the variable and
// returns it unsimplified. Callers that want a canonical result pass the
// tree through Simplify.
func DiffExpr(e Expr, variable string) Expr {
	switch x := e.(type) {
	case *Num:
		return N(0)
	case *Sym:
		if x.Name == variable {
			return N(1)
		}
		return N(0)
	case *Add:
		terms := make([]Expr, len(x.Terms))
		for i, t := range x.Terms {
			terms[i] = DiffExpr(t, variable)
		}
		return AddOf(terms...)
	case *Mul:
		return diffMul(x, variable)
	case *Pow:
		return diffPow(x, variable)
	case *Call:
		return diffCall(x, variable)
	case *Deriv:
		if x.Variable == variable {
			return DerivOf(x.Expr, variable, x.Order+1)
		}
		return DerivOf(x, variable, 1)
	}
	return N(0)
}

// DiffN applies DiffExpr n times, simplifying between passes so repeated
// differentiation does not balloon the tree.
func DiffN(e Expr, variable string, n int) Expr {
	out := e
	for i := 0; i < n; i++ {
		out = Simplify(DiffExpr(out, variable))
	}
	return out
}

// Product rule generalized to k factors: sum over i of
// f_i' * prod(f_j, j != i).
func diffMul(m *Mul, variable string) Expr {
	terms := make([]Expr, 0, len(m.Factors))
	for i := range m.Factors {
		factors := make([]Expr, len(m.Factors))
		copy(factors, m.Factors)
		factors[i] = DiffExpr(m.Factors[i], variable)
		terms = append(terms, MulOf(factors...))
	}
	return AddOf(terms...)
}

func diffPow(p *Pow, variable string) Expr {
	baseConst := IsConstantIn(p.Base, variable)
	expConst := IsConstantIn(p.Exp, variable)
	switch {
	case baseConst && expConst:
		return N(0)
	case expConst:
		// n*u^(n-1)*u'
		return MulOf(
			p.Exp,
			PowOf(p.Base, Sub(p.Exp, N(1))),
			DiffExpr(p.Base, variable),
		)
	case baseConst:
		// b^v*ln(b)*v'
		return MulOf(
			PowOf(p.Base, p.Exp),
			Fn("log", p.Base),
			DiffExpr(p.Exp, variable),
		)
	default:
		// u^v*(v'*ln(u) + v*u'/u)
		return MulOf(
			PowOf(p.Base, p.Exp),
			AddOf(
				MulOf(DiffExpr(p.Exp, variable), Fn("log", p.Base)),
				MulOf(p.Exp, Div(DiffExpr(p.Base, variable), p.Base)),
			),
		)
	}
}

func diffCall(c *Call, variable string) Expr {
	if c.Fn == "polygamma" && len(c.Args) == 2 {
		n, u := c.Args[0], c.Args[1]
		return MulOf(Fn("polygamma", Simplify(AddOf(n, N(1))), u), DiffExpr(u, variable))
	}
	if c.Fn == "DiracDelta" && len(c.Args) == 2 {
		u, k := c.Args[0], c.Args[1]
		return MulOf(Fn("DiracDelta", u, Simplify(AddOf(k, N(1)))), DiffExpr(u, variable))
	}
	u := c.Arg()
	outer := outerDerivative(c.Fn, u)
	if outer == nil {
		return DerivOf(c, variable, 1)
	}
	return MulOf(outer, DiffExpr(u, variable))
}

// outerDerivative returns d/du f(u) for a unary function, or nil when the
// function has no closed-form derivative here.
func outerDerivative(fn string, u Expr) Expr {
	switch fn {
	case "sin":
		return Fn("cos", u)
	case "cos":
		return Neg(Fn("sin", u))
	case "tan":
		return PowOf(Fn("sec", u), N(2))
	case "sec":
		return MulOf(Fn("sec", u), Fn("tan", u))
	case "csc":
		return Neg(MulOf(Fn("csc", u), Fn("cot", u)))
	case "cot":
		return Neg(PowOf(Fn("csc", u), N(2)))
	case "asin":
		return Div(N(1), Sqrt(Sub(N(1), PowOf(u, N(2)))))
	case "acos":
		return Neg(Div(N(1), Sqrt(Sub(N(1), PowOf(u, N(2))))))
	case "atan":
		return Div(N(1), AddOf(N(1), PowOf(u, N(2))))
	case "asec":
		return Div(N(1), MulOf(Fn("Abs", u), Sqrt(Sub(PowOf(u, N(2)), N(1)))))
	case "acsc":
		return Neg(Div(N(1), MulOf(Fn("Abs", u), Sqrt(Sub(PowOf(u, N(2)), N(1))))))
	case "acot":
		return Neg(Div(N(1), AddOf(N(1), PowOf(u, N(2)))))
	case "sinh":
		return Fn("cosh", u)
	case "cosh":
		return Fn("sinh", u)
	case "tanh":
		return Div(N(1), PowOf(Fn("cosh", u), N(2)))
	case "sech":
		return Neg(MulOf(Fn("sech", u), Fn("tanh", u)))
	case "asinh":
		return Div(N(1), Sqrt(AddOf(PowOf(u, N(2)), N(1))))
	case "acosh":
		return Div(N(1), Sqrt(Sub(PowOf(u, N(2)), N(1))))
	case "atanh":
		return Div(N(1), Sub(N(1), PowOf(u, N(2))))
	case "exp":
		return Fn("exp", u)
	case "log":
		return Div(N(1), u)
	case "erf":
		return MulOf(Div(N(2), Sqrt(Pi)), Fn("exp", Neg(PowOf(u, N(2)))))
	case "gamma":
		return MulOf(Fn("gamma", u), Fn("polygamma", N(0), u))
	case "Heaviside":
		return Fn("DiracDelta", u)
	case "DiracDelta":
		return Fn("DiracDelta", u, N(1))
	case "Abs":
		return Fn("sign", u)
	case "sign":
		return MulOf(N(2), Fn("DiracDelta", u))
	case "floor", "ceiling":
		return N(0)
	}
	return nil
}
