package symbolic

import (
	"math/big"
	"sort"
)

// Powers of sums above this stay unexpanded.
const maxExpandExp = 16

// ExpandExpr distributes products over sums and expands small integer powers
// of sums, then canonicalizes the result.
func ExpandExpr(e Expr) Expr {
	return Simplify(AddOf(expandTerms(e)...))
}

// expandTerms rewrites e as a flat list of product terms.
func expandTerms(e Expr) []Expr {
	switch x := e.(type) {
	case *Add:
		var out []Expr
		for _, t := range flattenAdd(x) {
			out = append(out, expandTerms(t)...)
		}
		return out
	case *Mul:
		out := []Expr{N(1)}
		for _, f := range flattenMul(x) {
			out = crossMultiply(out, expandTerms(f))
		}
		return out
	case *Pow:
		return expandPow(x)
	case *Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = Simplify(AddOf(expandTerms(a)...))
		}
		return []Expr{Fn(x.Fn, args...)}
	case *Deriv:
		return []Expr{DerivOf(Simplify(AddOf(expandTerms(x.Expr)...)), x.Variable, x.Order)}
	}
	return []Expr{e}
}

func expandPow(p *Pow) []Expr {
	base := Simplify(AddOf(expandTerms(p.Base)...))
	exp := Simplify(AddOf(expandTerms(p.Exp)...))
	n, ok := exp.(*Num)
	if !ok || !n.IsInteger() {
		return []Expr{PowOf(base, exp)}
	}
	k, ok := n.Int64()
	if !ok || k < 2 || k > maxExpandExp {
		return []Expr{PowOf(base, exp)}
	}
	baseTerms := expandTerms(base)
	if len(baseTerms) == 1 {
		return []Expr{PowOf(base, exp)}
	}
	out := []Expr{N(1)}
	for i := int64(0); i < k; i++ {
		out = crossMultiply(out, baseTerms)
	}
	return out
}

func crossMultiply(as, bs []Expr) []Expr {
	out := make([]Expr, 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			out = append(out, MulOf(a, b))
		}
	}
	return out
}

// FactorExpr pulls the greatest common factor out of a sum and factors
// quadratics with rational roots. Expressions that do not factor come back
// simplified but otherwise unchanged.
func FactorExpr(e Expr) Expr {
	s := Simplify(ExpandExpr(e))
	if f, ok := factorPolynomial(s); ok {
		return f
	}
	if f, ok := factorCommon(s); ok {
		return f
	}
	return Simplify(e)
}

// factorCommon extracts the shared numeric and symbolic content of a sum:
// 2*x + 2 becomes 2*(x + 1), x**2 + x becomes x*(x + 1).
func factorCommon(e Expr) (Expr, bool) {
	a, ok := e.(*Add)
	if !ok {
		return nil, false
	}
	terms := flattenAdd(a)
	if len(terms) < 2 {
		return nil, false
	}

	type part struct {
		coeff  *big.Rat
		powers map[string]*big.Rat
		bases  map[string]Expr
	}
	parts := make([]part, len(terms))
	for i, t := range terms {
		coeff, rest := splitCoeff(t)
		powers := map[string]*big.Rat{}
		bases := map[string]Expr{}
		if rest != nil {
			factors := []Expr{rest}
			if m, ok := rest.(*Mul); ok {
				factors = flattenMul(m)
			}
			for _, f := range factors {
				base, exp := f, new(big.Rat).SetInt64(1)
				if p, ok := f.(*Pow); ok {
					if n, ok := p.Exp.(*Num); ok {
						base, exp = p.Base, n.Rat()
					}
				}
				key := sortKey(base)
				if prev, ok := powers[key]; ok {
					prev.Add(prev, exp)
				} else {
					powers[key] = exp
					bases[key] = base
				}
			}
		}
		parts[i] = part{coeff: coeff, powers: powers, bases: bases}
	}

	gcd := ratGCD(parts[0].coeff, parts[1].coeff)
	for _, p := range parts[2:] {
		gcd = ratGCD(gcd, p.coeff)
	}
	if parts[0].coeff.Sign() < 0 {
		gcd.Neg(gcd)
	}

	firstKeys := make([]string, 0, len(parts[0].powers))
	for key := range parts[0].powers {
		firstKeys = append(firstKeys, key)
	}
	sort.Strings(firstKeys)

	sharedKeys := make([]string, 0, len(firstKeys))
	shared := map[string]*big.Rat{}
	for _, key := range firstKeys {
		minExp := new(big.Rat).Set(parts[0].powers[key])
		all := true
		for _, p := range parts[1:] {
			other, ok := p.powers[key]
			if !ok || other.Sign() <= 0 {
				all = false
				break
			}
			if other.Cmp(minExp) < 0 {
				minExp.Set(other)
			}
		}
		if all && minExp.Sign() > 0 {
			sharedKeys = append(sharedKeys, key)
			shared[key] = minExp
		}
	}

	one := new(big.Rat).SetInt64(1)
	if gcd.Cmp(one) == 0 && len(sharedKeys) == 0 {
		return nil, false
	}

	outer := []Expr{NewNum(gcd)}
	for _, key := range sharedKeys {
		outer = append(outer, PowOf(parts[0].bases[key], NewNum(shared[key])))
	}
	inv := new(big.Rat).Inv(gcd)
	inner := make([]Expr, len(terms))
	for i, t := range terms {
		q := []Expr{NewNum(inv), t}
		for _, key := range sharedKeys {
			q = append(q, PowOf(parts[0].bases[key], NewNum(new(big.Rat).Neg(shared[key]))))
		}
		inner[i] = MulOf(q...)
	}
	outer = append(outer, Simplify(AddOf(inner...)))
	return Simplify(MulOf(outer...)), true
}

// ratGCD returns the positive gcd of two rationals:
// gcd(a/b, c/d) = gcd(a*d, c*b) / (b*d).
func ratGCD(a, b *big.Rat) *big.Rat {
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.Num()), new(big.Int).Abs(b.Num()))
	if num.Sign() == 0 {
		return new(big.Rat).SetInt64(1)
	}
	den := new(big.Int).Mul(a.Denom(), b.Denom())
	g := new(big.Int).GCD(nil, nil, a.Denom(), b.Denom())
	den.Div(den, g)
	return new(big.Rat).SetFrac(num, den)
}

// factorPolynomial factors univariate quadratics with rational roots,
// including quadratics in a power of the variable (x**4 - 1 factors through
// the substitution u = x**2).
func factorPolynomial(e Expr) (Expr, bool) {
	vars := FreeSymbols(e)
	if len(vars) != 1 {
		return nil, false
	}
	v := vars[0]
	coeffs, stride, ok := quadraticCoeffs(e, v)
	if !ok || coeffs[2].Sign() == 0 {
		return nil, false
	}
	a, b, c := coeffs[2], coeffs[1], coeffs[0]

	// discriminant b^2 - 4ac must be a perfect rational square
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(new(big.Rat).SetInt64(4), new(big.Rat).Mul(a, c)))
	sq, ok := ratSqrt(disc)
	if !ok {
		return nil, false
	}

	twoA := new(big.Rat).Mul(new(big.Rat).SetInt64(2), a)
	r1 := new(big.Rat).Sub(new(big.Rat).Neg(b), sq)
	r1.Quo(r1, twoA)
	r2 := new(big.Rat).Add(new(big.Rat).Neg(b), sq)
	r2.Quo(r2, twoA)

	u := Expr(S(v))
	if stride > 1 {
		u = PowOf(S(v), N(int64(stride)))
	}

	// Clear root denominators so factors print with integer coefficients:
	// roots p/q give factors (q*u - p), with the leftover constant up front.
	lead := new(big.Rat).Set(a)
	f1, s1 := linearFactor(u, r1)
	f2, s2 := linearFactor(u, r2)
	lead.Quo(lead, s1)
	lead.Quo(lead, s2)

	var out Expr
	if r1.Cmp(r2) == 0 {
		out = PowOf(f1, N(2))
	} else {
		out = MulOf(recursiveFactor(f1), recursiveFactor(f2))
	}
	if lead.Cmp(new(big.Rat).SetInt64(1)) != 0 {
		out = MulOf(NewNum(lead), out)
	}
	return Simplify(out), true
}

// linearFactor builds (q*u - p) for a root p/q, returning the factor and the
// scale q that was absorbed into it.
func linearFactor(u Expr, root *big.Rat) (Expr, *big.Rat) {
	q := new(big.Rat).SetFrac(root.Denom(), big.NewInt(1))
	p := new(big.Rat).SetFrac(root.Num(), big.NewInt(1))
	f := Simplify(Sub(MulOf(NewNum(q), u), NewNum(p)))
	return f, q
}

// recursiveFactor re-factors a subfactor, used when a substitution quadratic
// leaves factors like x**2 - 1 behind.
func recursiveFactor(e Expr) Expr {
	if f, ok := factorPolynomial(e); ok {
		return f
	}
	return e
}

// quadraticCoeffs reads e as a*u**2 + b*u + c where u = v**stride. Returns
// [c, b, a] and the stride.
func quadraticCoeffs(e Expr, v string) ([3]*big.Rat, int, bool) {
	var zero [3]*big.Rat
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = flattenAdd(a)
	}
	byDeg := map[int]*big.Rat{}
	for _, t := range terms {
		coeff, rest := splitCoeff(t)
		deg := 0
		switch r := rest.(type) {
		case nil:
		case *Sym:
			if r.Name != v {
				return zero, 0, false
			}
			deg = 1
		case *Pow:
			base, ok := r.Base.(*Sym)
			if !ok || base.Name != v {
				return zero, 0, false
			}
			n, ok := r.Exp.(*Num)
			if !ok || !n.IsInteger() || !n.IsPositive() {
				return zero, 0, false
			}
			k, ok := n.Int64()
			if !ok {
				return zero, 0, false
			}
			deg = int(k)
		default:
			return zero, 0, false
		}
		if prev, ok := byDeg[deg]; ok {
			prev.Add(prev, coeff)
		} else {
			byDeg[deg] = coeff
		}
	}

	degrees := make([]int, 0, len(byDeg))
	for d := range byDeg {
		if d > 0 && byDeg[d].Sign() != 0 {
			degrees = append(degrees, d)
		}
	}
	stride := 0
	maxDeg := 0
	for _, d := range degrees {
		stride = intGCD(stride, d)
		if d > maxDeg {
			maxDeg = d
		}
	}
	if stride == 0 {
		return zero, 0, false
	}
	// A lone even-degree term gcds to itself, reading x**2 - 1 as linear in
	// u = x**2. Re-read it as a quadratic in the half-degree power.
	if maxDeg/stride != 2 && maxDeg%2 == 0 {
		half := maxDeg / 2
		fits := half > 0
		for _, d := range degrees {
			if d%half != 0 {
				fits = false
				break
			}
		}
		if fits {
			stride = half
		}
	}
	coeffs := [3]*big.Rat{new(big.Rat), new(big.Rat), new(big.Rat)}
	if c, ok := byDeg[0]; ok {
		coeffs[0].Set(c)
	}
	for _, d := range degrees {
		idx := d / stride
		if idx > 2 {
			return zero, 0, false
		}
		coeffs[idx].Add(coeffs[idx], byDeg[d])
	}
	return coeffs, stride, true
}

func intGCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// ratSqrt returns the exact square root of a non-negative rational, if one
// exists.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	check := new(big.Rat).SetFrac(new(big.Int).Mul(num, num), new(big.Int).Mul(den, den))
	if check.Cmp(r) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

// TrigSimplify applies the Pythagorean identities to a sum:
// sin(u)**2 + cos(u)**2 collapses to 1, cosh(u)**2 - sinh(u)**2 to 1, and
// 1 + tan(u)**2 / 1 + cot(u)**2 rewrite to sec / csc squares.
func TrigSimplify(e Expr) Expr {
	return Simplify(trigOnce(Simplify(e)))
}

func trigOnce(e Expr) Expr {
	switch x := e.(type) {
	case *Add:
		return trigAdd(x)
	case *Mul:
		factors := make([]Expr, len(x.Factors))
		for i, f := range x.Factors {
			factors[i] = trigOnce(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(trigOnce(x.Base), trigOnce(x.Exp))
	case *Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = trigOnce(a)
		}
		return Fn(x.Fn, args...)
	case *Deriv:
		return DerivOf(trigOnce(x.Expr), x.Variable, x.Order)
	}
	return e
}

// squareTerm matches c*f(u)**2 and returns the coefficient, function name,
// and argument key.
func squareTerm(t Expr) (*big.Rat, string, Expr, bool) {
	coeff, rest := splitCoeff(t)
	p, ok := rest.(*Pow)
	if !ok {
		return nil, "", nil, false
	}
	n, ok := p.Exp.(*Num)
	if !ok || n.Rat().Cmp(big.NewRat(2, 1)) != 0 {
		return nil, "", nil, false
	}
	c, ok := p.Base.(*Call)
	if !ok || len(c.Args) != 1 {
		return nil, "", nil, false
	}
	return coeff, c.Fn, c.Arg(), true
}

func trigAdd(a *Add) Expr {
	terms := flattenAdd(a)
	for i := range terms {
		terms[i] = trigOnce(terms[i])
	}

	pair := map[string]string{"sin": "cos", "cos": "sin", "cosh": "sinh", "sinh": "cosh"}
	used := make([]bool, len(terms))
	var out []Expr
	for i, t := range terms {
		if used[i] {
			continue
		}
		ci, fi, ui, ok := squareTerm(t)
		if !ok {
			continue
		}
		want, ok := pair[fi]
		if !ok {
			continue
		}
		for j := i + 1; j < len(terms); j++ {
			if used[j] {
				continue
			}
			cj, fj, uj, ok := squareTerm(terms[j])
			if !ok || fj != want || !Equal(ui, uj) {
				continue
			}
			switch fi {
			case "sin", "cos":
				// c*sin(u)**2 + c*cos(u)**2 = c
				if ci.Cmp(cj) != 0 {
					continue
				}
				out = append(out, NewNum(ci))
			case "cosh":
				// c*cosh(u)**2 - c*sinh(u)**2 = c
				if new(big.Rat).Neg(ci).Cmp(cj) != 0 {
					continue
				}
				out = append(out, NewNum(ci))
			case "sinh":
				// c*sinh(u)**2 - c*cosh(u)**2 = -c
				if new(big.Rat).Neg(ci).Cmp(cj) != 0 {
					continue
				}
				out = append(out, NewNum(cj))
			}
			used[i], used[j] = true, true
			break
		}
	}

	// 1 + tan(u)**2 -> sec(u)**2, 1 + cot(u)**2 -> csc(u)**2
	constant := new(big.Rat)
	constIdx := -1
	for i, t := range terms {
		if used[i] {
			continue
		}
		if n, ok := t.(*Num); ok {
			constant.Add(constant, n.Rat())
			constIdx = i
		}
	}
	if constIdx >= 0 && constant.Sign() > 0 {
		for i, t := range terms {
			if used[i] || i == constIdx {
				continue
			}
			ci, fi, ui, ok := squareTerm(t)
			if !ok || ci.Cmp(constant) != 0 {
				continue
			}
			switch fi {
			case "tan":
				used[i], used[constIdx] = true, true
				out = append(out, MulOf(NewNum(ci), PowOf(Fn("sec", ui), N(2))))
			case "cot":
				used[i], used[constIdx] = true, true
				out = append(out, MulOf(NewNum(ci), PowOf(Fn("csc", ui), N(2))))
			}
			if used[constIdx] {
				break
			}
		}
	}

	for i, t := range terms {
		if !used[i] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return N(0)
	}
	return AddOf(out...)
}
